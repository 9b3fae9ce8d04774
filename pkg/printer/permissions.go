package printer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/berkguzel/iamgen/pkg/access"
	"github.com/berkguzel/iamgen/pkg/catalog"
	"github.com/berkguzel/iamgen/pkg/types"
	"github.com/fatih/color"
)

var (
	green     = color.New(color.FgGreen).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
	red       = color.New(color.FgRed).SprintFunc()
	bold      = color.New(color.Bold).SprintFunc()
	checkmark = green("✅")
	warning   = yellow("⚠️")
	danger    = red("❌")
)

// Issues writes one line per issue, errors marked with a cross and warnings
// with a warning sign.
func (p *Printer) Issues(issues []types.Issue) {
	for _, issue := range issues {
		icon := warning
		if issue.IsError() {
			icon = danger
		}
		fmt.Fprintf(p.writer, "%s %s\n", icon, issue.Error())
	}
}

// Levels writes, per statement, its actions grouped by access level.
func (p *Printer) Levels(reports []types.Report) {
	for _, r := range reports {
		fmt.Fprintf(p.writer, "\n%s %s\n", bold("→"), r.String())
		for _, level := range levelNames(r.ByLevel) {
			actions := r.ByLevel[level]
			fmt.Fprintf(p.writer, "  %s (%d)\n", level, len(actions))
			for _, action := range actions {
				fmt.Fprintf(p.writer, "    %s %s\n", checkmark, action)
			}
		}
		if len(r.Unknown) > 0 {
			fmt.Fprintf(p.writer, "  Unknown (%d)\n", len(r.Unknown))
			for _, action := range r.Unknown {
				fmt.Fprintf(p.writer, "    %s %s\n", warning, action)
			}
		}
		for _, perm := range r.Permissions {
			if perm.IsHighRisk {
				p.printPermissionLine(perm)
			}
		}
	}
	fmt.Fprintln(p.writer)
}

func (p *Printer) printPermissionLine(perm types.PermissionDisplay) {
	var icon string

	switch {
	case perm.IsHighRisk:
		icon = danger
	case perm.IsBroad:
		icon = warning
	default:
		icon = checkmark
	}

	// Pad the action string for alignment
	actionPadded := fmt.Sprintf("%-20s", perm.Action)

	line := fmt.Sprintf("    %s %s on %s", icon, actionPadded, formatResource(perm.Resource))
	if perm.Risk != "" {
		line += " (" + perm.Risk + ")"
	}
	fmt.Fprintln(p.writer, line)
}

func formatResource(resource string) string {
	if resource == "*" {
		return "all resources"
	}
	return resource
}

// Services writes the prefix and name of every service in the registry.
func (p *Printer) Services(registry *catalog.Registry) {
	for _, prefix := range registry.Prefixes() {
		svc, _ := registry.Lookup(prefix)
		fmt.Fprintf(p.writer, "%s%s (%d actions)\n", bold(padRight(prefix, 16)), svc.Name, len(svc.Actions))
	}
}

// Actions writes the actions of svc grouped by access level. A non-empty
// levels list restricts the output to those levels.
func (p *Printer) Actions(svc *catalog.Service, levels ...access.Level) {
	if len(levels) == 0 {
		levels = access.All()
	}
	fmt.Fprintf(p.writer, "%s %s (%s)\n", bold("→"), svc.Name, svc.Prefix)
	for _, level := range levels {
		names := svc.ActionsByLevel(level)
		if len(names) == 0 {
			continue
		}
		fmt.Fprintf(p.writer, "\n  %s (%d)\n", bold(level.String()), len(names))
		for _, name := range names {
			fmt.Fprintf(p.writer, "    %s%s\n", padRight(svc.Token(name), 40), resourceTypes(svc.Actions[name]))
		}
	}
}

func resourceTypes(a *catalog.ActionDescriptor) string {
	if len(a.ResourceTypes) == 0 {
		return formatResource("*")
	}
	names := make([]string, 0, len(a.ResourceTypes))
	for name, ref := range a.ResourceTypes {
		if ref.Required {
			name += "*"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
