package options

import (
	"fmt"
	"io"
	"strings"

	"github.com/berkguzel/iamgen/pkg/access"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

const (
	CommandBuild    = "build"
	CommandActions  = "actions"
	CommandServices = "services"
	CommandInspect  = "inspect"
)

// ErrHelp is returned by Parse when help was asked for.
var ErrHelp = pflag.ErrHelp

// ResourceSpec is one --resource value: either a raw ARN (or "*") or a
// resource type of a service with its identifier values.
type ResourceSpec struct {
	ARN     string
	Service string
	Type    string
	Values  map[string]string
}

// ConditionSpec is one --condition value. An empty Operator means the
// default operator of Key.
type ConditionSpec struct {
	Operator string
	Key      string
	Values   []string
}

type PrincipalSpec struct {
	Kind  string
	Value string
}

type Options struct {
	Command string
	Help    bool

	// Common
	ConfigPath string
	LogLevel   string
	Profile    string
	Partition  string
	Region     string
	Account    string

	// build
	Service      string
	Actions      []string
	Matching     []string
	Resources    []ResourceSpec
	Conditions   []ConditionSpec
	Principals   []PrincipalSpec
	Effect       string
	Sid          string
	NotAction    bool
	NotResource  bool
	Expand       bool
	ExpandSet    bool
	Strict       bool
	AccessLevels []access.Level

	// inspect
	File      string
	ShowPerms bool
	RiskOnly  bool
	Levels    bool

	rawLevels     []string
	rawResources  []string
	rawConditions []string
	rawPrincipals []string
}

func NewOptions() *Options {
	return &Options{
		Effect: "Allow",
	}
}

// Parse reads the sub-command and its flags from args, which must not
// include the program name.
func (o *Options) Parse(args []string) error {
	if len(args) == 0 {
		o.Help = true
		return ErrHelp
	}

	o.Command = args[0]
	switch o.Command {
	case CommandBuild, CommandActions, CommandServices, CommandInspect:
	case "-h", "--help", "help":
		o.Command = ""
		o.Help = true
		return ErrHelp
	default:
		return errors.Errorf("unknown command %q", o.Command)
	}

	fs := o.flags()
	if err := fs.Parse(args[1:]); err != nil {
		if err == pflag.ErrHelp {
			o.Help = true
		}
		return err
	}
	o.ExpandSet = fs.Changed("expand")

	for _, l := range o.rawLevels {
		level, err := access.Parse(l)
		if err != nil {
			return err
		}
		o.AccessLevels = append(o.AccessLevels, level)
	}
	for _, r := range o.rawResources {
		spec, err := ParseResource(r)
		if err != nil {
			return err
		}
		o.Resources = append(o.Resources, spec)
	}
	for _, c := range o.rawConditions {
		spec, err := ParseCondition(c)
		if err != nil {
			return err
		}
		o.Conditions = append(o.Conditions, spec)
	}
	for _, p := range o.rawPrincipals {
		spec, err := ParsePrincipal(p)
		if err != nil {
			return err
		}
		o.Principals = append(o.Principals, spec)
	}

	return o.validate(fs.Args())
}

func (o *Options) flags() *pflag.FlagSet {
	fs := pflag.NewFlagSet(o.Command, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.ConfigPath, "config", "", "config file (default ~/.iamgen.yaml, or $IAMGEN_CONFIG)")
	fs.StringVar(&o.LogLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&o.Profile, "profile", "", "AWS shared config profile")
	fs.StringVar(&o.Partition, "partition", "", "ARN partition")
	fs.StringVar(&o.Region, "region", "", "region for ${Region}")
	fs.StringVar(&o.Account, "account", "", "account id for ${Account}")

	switch o.Command {
	case CommandBuild:
		fs.StringVarP(&o.Service, "service", "s", "", "service prefix for bare action names and resource types")
		fs.StringSliceVarP(&o.Actions, "action", "a", nil, "actions to add, bare (GetObject) or full (s3:GetObject)")
		fs.StringSliceVar(&o.Matching, "match", nil, "add every action of --service matching a glob or /regex/")
		fs.StringArrayVarP(&o.rawResources, "resource", "r", nil, "resource: type:Key=Val,..., service/type:..., a raw ARN or *")
		fs.StringArrayVarP(&o.rawConditions, "condition", "c", nil, "condition: [Operator::]key=v1,v2")
		fs.StringArrayVar(&o.rawPrincipals, "principal", nil, "principal: Kind=value (AWS, Service, Federated, CanonicalUser) or *")
		fs.StringVar(&o.Effect, "effect", "Allow", "Allow or Deny")
		fs.StringVar(&o.Sid, "sid", "", "statement id")
		fs.BoolVar(&o.NotAction, "not-action", false, "emit NotAction instead of Action")
		fs.BoolVar(&o.NotResource, "not-resource", false, "emit NotResource instead of Resource")
		fs.BoolVar(&o.Expand, "expand", false, "never collapse single-element lists to a scalar")
		fs.BoolVar(&o.Strict, "strict", false, "exit with status 1 on error-level issues")
		fs.StringSliceVar(&o.rawLevels, "access-level", nil, "add every action of --service at these access levels")
	case CommandActions:
		fs.StringVarP(&o.Service, "service", "s", "", "service prefix")
		fs.StringSliceVar(&o.rawLevels, "access-level", nil, "only list these access levels")
	case CommandInspect:
		fs.BoolVar(&o.ShowPerms, "permissions", false, "list every action/resource pair")
		fs.BoolVar(&o.RiskOnly, "risk-only", false, "only show broad or high-risk permissions")
		fs.BoolVar(&o.Levels, "levels", false, "group actions by access level")
	}
	return fs
}

func (o *Options) validate(rest []string) error {
	switch o.Command {
	case CommandBuild:
		if len(o.Actions) == 0 && len(o.Matching) == 0 && len(o.AccessLevels) == 0 {
			return errors.New("build needs at least one --action, --match or --access-level")
		}
		if o.Service == "" {
			if len(o.Matching) > 0 || len(o.AccessLevels) > 0 {
				return errors.New("--match and --access-level need --service")
			}
			for _, a := range o.Actions {
				if !strings.Contains(a, ":") && a != "*" {
					return errors.Errorf("action %q has no service prefix and --service is not set", a)
				}
			}
		}
		if o.Effect != "Allow" && o.Effect != "Deny" {
			return errors.Errorf("effect must be Allow or Deny, got %q", o.Effect)
		}
		for _, r := range o.Resources {
			if r.ARN == "" && r.Service == "" && o.Service == "" {
				return errors.Errorf("resource type %q needs --service or a service/ prefix", r.Type)
			}
		}
	case CommandActions:
		if o.Service == "" && len(rest) > 0 {
			o.Service = rest[0]
			rest = rest[1:]
		}
		if o.Service == "" {
			return errors.New("actions needs --service")
		}
	case CommandInspect:
		if len(rest) == 0 {
			return errors.New("inspect needs a policy file, or - for stdin")
		}
		o.File = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		return errors.Errorf("unexpected arguments %v", rest)
	}
	return nil
}

// ParseResource parses "type:Key=Val,Key=Val", "service/type:Key=Val",
// a bare "type", a raw ARN or "*".
func ParseResource(s string) (ResourceSpec, error) {
	if s == "*" || strings.HasPrefix(s, "arn:") {
		return ResourceSpec{ARN: s}, nil
	}

	head, rest, _ := strings.Cut(s, ":")
	spec := ResourceSpec{Type: head, Values: map[string]string{}}
	if svc, typ, ok := strings.Cut(head, "/"); ok {
		spec.Service, spec.Type = svc, typ
	}
	if spec.Type == "" {
		return ResourceSpec{}, errors.Errorf("resource %q has no type", s)
	}
	if rest == "" {
		return spec, nil
	}
	for _, pair := range strings.Split(rest, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return ResourceSpec{}, errors.Errorf("resource %q: %q is not Key=Value", s, pair)
		}
		spec.Values[k] = v
	}
	return spec, nil
}

// ParseCondition parses "[Operator::]key=v1,v2".
func ParseCondition(s string) (ConditionSpec, error) {
	var spec ConditionSpec
	body := s
	// "::" only separates the operator when it comes before the first "="
	if i := strings.Index(s, "::"); i > 0 && (strings.Index(s, "=") < 0 || i < strings.Index(s, "=")) {
		spec.Operator, body = s[:i], s[i+2:]
	}
	key, values, ok := strings.Cut(body, "=")
	if !ok || key == "" {
		return ConditionSpec{}, errors.Errorf("condition %q is not [Operator::]key=value", s)
	}
	spec.Key = key
	spec.Values = strings.Split(values, ",")
	return spec, nil
}

// ParsePrincipal parses "Kind=value" or "*".
func ParsePrincipal(s string) (PrincipalSpec, error) {
	if s == "*" {
		return PrincipalSpec{Kind: "*"}, nil
	}
	kind, value, ok := strings.Cut(s, "=")
	if !ok || kind == "" || value == "" {
		return PrincipalSpec{}, errors.Errorf("principal %q is not Kind=value", s)
	}
	return PrincipalSpec{Kind: kind, Value: value}, nil
}

// Usage writes the help text for the command in o, or the general help.
func (o *Options) Usage(w io.Writer) {
	if o.Command == "" {
		fmt.Fprint(w, `Usage: iamgen <command> [flags]

Commands:
  build      assemble a policy statement from service action tables
  actions    list the actions of a service by access level
  services   list the known services
  inspect    analyze an existing policy document

Run "iamgen <command> --help" for the flags of a command.
`)
		return
	}
	scratch := &Options{Command: o.Command}
	fs := scratch.flags()
	fmt.Fprintf(w, "Usage: iamgen %s [flags]\n\nFlags:\n", o.Command)
	fmt.Fprint(w, fs.FlagUsages())
}
