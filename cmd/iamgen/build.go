package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/berkguzel/iamgen/internal/config"
	"github.com/berkguzel/iamgen/internal/options"
	awsenv "github.com/berkguzel/iamgen/pkg/aws"
	"github.com/berkguzel/iamgen/pkg/catalog"
	"github.com/berkguzel/iamgen/pkg/condition"
	"github.com/berkguzel/iamgen/pkg/service"
	"github.com/berkguzel/iamgen/pkg/statement"
	"github.com/berkguzel/iamgen/pkg/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// build assembles one statement from the build flags. Every service an
// action, resource or condition key refers to gets its own builder, all of
// them writing into the same statement.
func build(ctx context.Context, opts *options.Options, cfg *config.Config, registry *catalog.Registry, lg *zap.Logger) (*statement.Statement, error) {
	profile := opts.Profile
	if profile == "" {
		profile = cfg.Profile
	}
	envCtx, err := awsenv.LoadContext(ctx, awsenv.Options{
		Profile:   profile,
		Partition: opts.Partition,
		Region:    opts.Region,
		Account:   opts.Account,
	})
	if err != nil {
		return nil, err
	}
	arnCtx := cfg.Fill(envCtx).WithDefaults()
	lg.Debug("resolved ARN context",
		zap.String("partition", arnCtx.Partition),
		zap.String("region", arnCtx.Region),
		zap.String("account", arnCtx.Account),
	)

	expand := cfg.Expand
	if opts.ExpandSet {
		expand = opts.Expand
	}

	stmt := statement.New(
		statement.WithSid(opts.Sid),
		statement.WithEffect(statement.Effect(opts.Effect)),
		statement.WithCollapse(!expand),
	)

	builders := make(map[string]*service.Builder)
	builderFor := func(prefix string) (*service.Builder, bool) {
		if b, ok := builders[prefix]; ok {
			return b, true
		}
		svc, ok := registry.Lookup(prefix)
		if !ok {
			return nil, false
		}
		b := service.New(svc, service.WithStatement(stmt), service.WithContext(arnCtx))
		builders[prefix] = b
		return b, true
	}

	var primary *service.Builder
	if opts.Service != "" {
		b, ok := builderFor(opts.Service)
		if !ok {
			return nil, errors.Errorf("unknown service %q, known services are %v", opts.Service, registry.Prefixes())
		}
		primary = b
	}

	for _, a := range opts.Actions {
		prefix, name, qualified := strings.Cut(a, ":")
		switch {
		case a == "*" || (!qualified && primary == nil):
			stmt.To(a)
		case !qualified:
			primary.To(a)
		default:
			if b, ok := builderFor(prefix); ok {
				b.To(name)
				continue
			}
			stmt.To(a).Report(types.NewWarning(types.UnknownAction,
				"service %q of %s is not in the catalog", prefix, a))
		}
	}
	if primary != nil {
		primary.AllMatchingActions(opts.Matching...)
		for _, level := range opts.AccessLevels {
			primary.AllActionsAt(level)
		}
	}

	for _, r := range opts.Resources {
		if r.ARN != "" {
			stmt.On(r.ARN)
			continue
		}
		prefix := r.Service
		if prefix == "" {
			prefix = opts.Service
		}
		b, ok := builderFor(prefix)
		if !ok {
			return nil, errors.Errorf("unknown service %q for resource type %q", prefix, r.Type)
		}
		b.On(r.Type, r.Values)
	}

	for _, c := range opts.Conditions {
		prefix, _, _ := strings.Cut(c.Key, ":")
		b, ok := builderFor(prefix)
		if !ok {
			b = primary
		}

		op := c.Operator
		if op == "" {
			op = defaultOperator(b, c.Key)
		}
		values, err := conditionValues(op, c.Values)
		if err != nil {
			return nil, errors.Wrapf(err, "condition %s", c.Key)
		}
		if b != nil {
			b.IfOp(op, c.Key, values...)
		} else {
			stmt.If(op, c.Key, values...)
		}
	}

	for _, p := range opts.Principals {
		if p.Kind == statement.PrincipalAll {
			stmt.Principal(statement.PrincipalAll)
			continue
		}
		stmt.Principal(p.Kind, p.Value)
	}

	if opts.NotAction {
		stmt.NotAction()
	}
	if opts.NotResource {
		stmt.NotResource()
	}
	return stmt, nil
}

func defaultOperator(b *service.Builder, key string) string {
	if b != nil {
		return b.DefaultOperator(key)
	}
	if op, ok := condition.GlobalKeyOperator(key); ok {
		return op
	}
	return condition.StringLike
}

// conditionValues converts flag values to the JSON type the operator
// compares against.
func conditionValues(operator string, raw []string) ([]any, error) {
	base := operator
	if i := strings.LastIndex(base, ":"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, "IfExists")

	values := make([]any, 0, len(raw))
	for _, v := range raw {
		switch {
		case strings.HasPrefix(base, "Numeric"):
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				values = append(values, n)
				continue
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, errors.Errorf("%q is not a number", v)
			}
			values = append(values, f)
		case base == condition.Bool || base == condition.Null:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, errors.Errorf("%q is not a boolean", v)
			}
			values = append(values, b)
		default:
			values = append(values, v)
		}
	}
	return values, nil
}
