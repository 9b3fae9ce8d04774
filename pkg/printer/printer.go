package printer

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/berkguzel/iamgen/pkg/access"
	"github.com/berkguzel/iamgen/pkg/policy"
	"github.com/berkguzel/iamgen/pkg/types"
)

type Printer struct {
	writer io.Writer
}

func New(w io.Writer) *Printer {
	return &Printer{writer: w}
}

// Document writes doc as indented JSON followed by a newline.
func (p *Printer) Document(doc *policy.Document) error {
	out, err := doc.MarshalIndent()
	if err != nil {
		return fmt.Errorf("failed to marshal policy document: %v", err)
	}
	_, err = fmt.Fprintln(p.writer, string(out))
	return err
}

// Reports writes an overview table of the analyzed statements. With
// showPerms every action/resource pair is listed as well; riskOnly keeps
// only broad or high-risk rows.
func (p *Printer) Reports(reports []types.Report, showPerms, riskOnly bool) {
	if showPerms {
		p.permissionsTable(reports, riskOnly)
		return
	}

	p.printStatementTableHeader()

	for _, r := range reports {
		// Skip if risk-only flag is set and no high-risk permissions
		if riskOnly && !hasRisk(r.Permissions) {
			continue
		}

		fmt.Fprintf(p.writer, "| %-30s | %-7s | %-22s | %-10s | %-12s |\n",
			truncateString(statementName(r), 30),
			truncateString(determineService(r.Permissions), 7),
			truncateString(determineAccessLevel(r), 22),
			truncateString(determineResourceScope(r.Permissions), 10),
			truncateString(determineConditions(r.Permissions), 12),
		)
	}

	p.printStatementSeparator()
}

func (p *Printer) permissionsTable(reports []types.Report, riskOnly bool) {
	// Calculate max resource length
	maxResourceLen := 52 // minimum width
	for _, r := range reports {
		for _, perm := range r.Permissions {
			if len(perm.Resource) > maxResourceLen {
				maxResourceLen = len(perm.Resource) + 2 // add some padding
			}
		}
	}

	p.printPermissionsTableHeader(maxResourceLen)

	for _, r := range reports {
		for _, perm := range r.Permissions {
			risky := perm.IsBroad || perm.IsHighRisk
			if riskOnly && !risky {
				continue
			}
			scope := " ✅ "
			if risky {
				scope = " 🚨 "
			}

			fmt.Fprintf(p.writer, "| %-30s | %-35s | %-*s | %-5s |\n",
				truncateString(statementName(r), 30),
				truncateString(perm.Action, 35),
				maxResourceLen,
				perm.Resource,
				scope,
			)
		}
	}

	p.printPermissionsSeparator(maxResourceLen)
}

func statementName(r types.Report) string {
	name := r.Sid
	if name == "" {
		name = "(no sid)"
	}
	return name + " [" + r.Effect + "]"
}

func hasRisk(permissions []types.PermissionDisplay) bool {
	for _, perm := range permissions {
		if perm.IsBroad || perm.IsHighRisk {
			return true
		}
	}
	return false
}

// determineAccessLevel summarizes the access level index of a statement.
func determineAccessLevel(r types.Report) string {
	for _, perm := range r.Permissions {
		if perm.Action == "*" || strings.HasSuffix(perm.Action, ":*") {
			return "Full Access"
		}
	}

	readOnly := len(r.ByLevel) > 0
	for level := range r.ByLevel {
		if level != access.List.String() && level != access.Read.String() {
			readOnly = false
		}
	}
	if readOnly && len(r.Unknown) == 0 {
		return "Read-Only"
	}

	if pm := r.ByLevel[access.PermissionsManagement.String()]; len(pm) > 0 {
		return access.PermissionsManagement.String()
	}
	if len(r.ByLevel) == 0 && len(r.Unknown) > 0 {
		return "Unknown"
	}
	return "Limited Access"
}

func determineService(permissions []types.PermissionDisplay) string {
	if len(permissions) == 0 {
		return "Unknown"
	}

	services := make(map[string]bool)
	for _, perm := range permissions {
		// Extract service from the action (e.g., "ec2:DescribeInstances" -> "EC2")
		parts := strings.SplitN(perm.Action, ":", 2)
		services[strings.ToUpper(parts[0])] = true
	}
	if len(services) > 1 {
		return "Multiple"
	}
	for s := range services {
		return s
	}
	return "Unknown"
}

func determineResourceScope(permissions []types.PermissionDisplay) string {
	hasWildcard := false
	resourceCount := make(map[string]bool)

	for _, perm := range permissions {
		resourceCount[perm.Resource] = true
		if strings.Contains(perm.Resource, "*") {
			hasWildcard = true
		}
	}

	if hasWildcard {
		return "*"
	} else if len(resourceCount) > 1 {
		return "Multiple"
	}
	return "Single"
}

func determineConditions(permissions []types.PermissionDisplay) string {
	for _, perm := range permissions {
		if perm.HasCondition {
			return "Yes"
		}
	}
	return "No"
}

// levelNames returns the keys of byLevel in canonical access level order.
func levelNames(byLevel map[string][]string) []string {
	var names []string
	for _, level := range access.All() {
		if _, ok := byLevel[level.String()]; ok {
			names = append(names, level.String())
		}
	}
	var rest []string
	for name := range byLevel {
		if _, err := access.Parse(name); err != nil {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(names, rest...)
}

func truncateString(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}

func (p *Printer) printStatementTableHeader() {
	p.printStatementSeparator()
	fmt.Fprintf(p.writer, "| %-30s | %-7s | %-22s | %-10s | %-12s |\n",
		"STATEMENT",
		"SERVICE",
		"ACCESS LEVEL",
		"RESOURCE",
		"CONDITION",
	)
	p.printStatementSeparator()
}

func (p *Printer) printStatementSeparator() {
	fmt.Fprintln(p.writer, "+--------------------------------+---------+------------------------+------------+--------------+")
}

func (p *Printer) printPermissionsTableHeader(resourceWidth int) {
	p.printPermissionsSeparator(resourceWidth)
	fmt.Fprintf(p.writer, "| %-30s | %-35s | %-*s | %-5s |\n",
		"STATEMENT",
		"ACTION",
		resourceWidth,
		"RESOURCE",
		"SCOPE",
	)
	p.printPermissionsSeparator(resourceWidth)
}

func (p *Printer) printPermissionsSeparator(resourceWidth int) {
	fmt.Fprintf(p.writer, "+--------------------------------+-------------------------------------+%s+-------+\n",
		strings.Repeat("-", resourceWidth+2))
}

func padRight(str string, length int) string {
	if len(str) >= length {
		return str[:length-1] + " "
	}
	return str + strings.Repeat(" ", length-len(str))
}
