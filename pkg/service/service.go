// Package service exposes one builder for every AWS service, driven by the
// action table of that service.
package service

import (
	"strings"

	"github.com/berkguzel/iamgen/pkg/access"
	"github.com/berkguzel/iamgen/pkg/arn"
	"github.com/berkguzel/iamgen/pkg/catalog"
	"github.com/berkguzel/iamgen/pkg/condition"
	"github.com/berkguzel/iamgen/pkg/statement"
	"github.com/berkguzel/iamgen/pkg/types"
)

// Builder adds actions, resources and conditions of one service to a
// statement. Several builders may share one statement to mix services.
type Builder struct {
	*statement.Statement

	svc      *catalog.Service
	resolver *arn.Resolver
}

type config struct {
	ctx      arn.Context
	ctxSet   bool
	stmt     *statement.Statement
	stmtOpts []statement.Option
}

type Option func(*config)

// WithContext sets the partition, region and account used for ARN
// templates. Without it the process default from arn.Default applies.
func WithContext(ctx arn.Context) Option {
	return func(c *config) {
		c.ctx = ctx
		c.ctxSet = true
	}
}

// WithStatement makes the builder write into an existing statement.
func WithStatement(s *statement.Statement) Option {
	return func(c *config) {
		c.stmt = s
	}
}

func WithSid(sid string) Option {
	return func(c *config) {
		c.stmtOpts = append(c.stmtOpts, statement.WithSid(sid))
	}
}

func WithEffect(effect statement.Effect) Option {
	return func(c *config) {
		c.stmtOpts = append(c.stmtOpts, statement.WithEffect(effect))
	}
}

func WithCollapse(collapse bool) Option {
	return func(c *config) {
		c.stmtOpts = append(c.stmtOpts, statement.WithCollapse(collapse))
	}
}

func New(svc *catalog.Service, opts ...Option) *Builder {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.ctxSet {
		cfg.ctx = arn.Default()
	}
	stmt := cfg.stmt
	if stmt == nil {
		stmt = statement.New(cfg.stmtOpts...)
	} else {
		for _, opt := range cfg.stmtOpts {
			opt(stmt)
		}
	}
	return &Builder{
		Statement: stmt,
		svc:       svc,
		resolver:  arn.NewResolver(cfg.ctx),
	}
}

// For returns a builder for a service of the default catalog.
func For(prefix string, opts ...Option) (*Builder, bool) {
	svc, ok := catalog.Default().Lookup(prefix)
	if !ok {
		return nil, false
	}
	return New(svc, opts...), true
}

func (b *Builder) Service() *catalog.Service {
	return b.svc
}

// To adds actions given by bare name ("GetObject") or full token
// ("s3:GetObject"). Actions missing from the table are still added and
// reported as UnknownAction.
func (b *Builder) To(actions ...string) *Builder {
	for _, a := range actions {
		name := strings.TrimPrefix(a, b.svc.Prefix+":")
		if _, ok := b.svc.Action(name); !ok && !strings.ContainsAny(name, "*?") {
			b.Report(types.NewWarning(types.UnknownAction,
				"%s is not in the %s action table", b.svc.Token(name), b.svc.Prefix))
		}
		b.Statement.To(b.svc.Token(name))
	}
	return b
}

// AllActions adds "prefix:*".
func (b *Builder) AllActions() *Builder {
	b.Statement.To(b.svc.Token("*"))
	return b
}

func (b *Builder) AllListActions() *Builder {
	return b.AllActionsAt(access.List)
}

func (b *Builder) AllReadActions() *Builder {
	return b.AllActionsAt(access.Read)
}

func (b *Builder) AllWriteActions() *Builder {
	return b.AllActionsAt(access.Write)
}

func (b *Builder) AllPermissionsManagementActions() *Builder {
	return b.AllActionsAt(access.PermissionsManagement)
}

func (b *Builder) AllTaggingActions() *Builder {
	return b.AllActionsAt(access.Tagging)
}

// AllActionsAt adds every action of the table classified at level.
func (b *Builder) AllActionsAt(level access.Level) *Builder {
	for _, name := range b.svc.ActionsByLevel(level) {
		b.Statement.To(b.svc.Token(name))
	}
	return b
}

// AllMatchingActions adds every action of the table matching one of the
// patterns (see catalog.Service.MatchActions).
func (b *Builder) AllMatchingActions(patterns ...string) *Builder {
	for _, p := range patterns {
		names, err := b.svc.MatchActions(p)
		if err != nil {
			b.Report(types.NewWarning(types.InvalidPattern, "%v", err))
			continue
		}
		for _, name := range names {
			b.Statement.To(b.svc.Token(name))
		}
	}
	return b
}

// On resolves the ARN template of resourceType with values and adds the
// result. Identifiers without a value become "*" and are reported as
// MissingPlaceholder.
func (b *Builder) On(resourceType string, values map[string]string) *Builder {
	rt, ok := b.svc.ResourceType(resourceType)
	if !ok {
		b.Report(types.NewWarning(types.UnknownResourceType,
			"%s has no resource type %q", b.svc.Prefix, resourceType))
		return b
	}
	res := b.resolver.Resolve(rt.ARNTemplate, values)
	for _, name := range res.Missing {
		b.Report(types.NewError(types.MissingPlaceholder,
			"%s %s: no value for ${%s}, using *", b.svc.Prefix, resourceType, name))
	}
	b.Statement.On(res.ARN)
	return b
}

// OnARN adds ARNs that are already resolved.
func (b *Builder) OnARN(arns ...string) *Builder {
	b.Statement.On(arns...)
	return b
}

// If adds a condition using the default operator of key: the one of its
// type in the service table, or of the global key, or StringLike.
func (b *Builder) If(key string, values ...any) *Builder {
	return b.IfOp(b.DefaultOperator(key), key, values...)
}

// IfOp adds a condition with an explicit operator. An empty operator falls
// back to the default of key.
func (b *Builder) IfOp(operator, key string, values ...any) *Builder {
	if operator == "" {
		operator = b.DefaultOperator(key)
	}
	if _, ok := b.svc.ConditionKey(key); !ok {
		if _, global := condition.GlobalKeyOperator(key); !global {
			b.Report(types.NewWarning(types.UnknownConditionKey,
				"condition key %q is not known to %s", key, b.svc.Prefix))
		}
	}
	b.Statement.If(operator, key, values...)
	return b
}

func (b *Builder) DefaultOperator(key string) string {
	if k, ok := b.svc.ConditionKey(key); ok {
		return k.Type.DefaultOperator()
	}
	if op, ok := condition.GlobalKeyOperator(key); ok {
		return op
	}
	return condition.StringLike
}

// ActionsAt lists the statement actions of this service classified at
// level.
func (b *Builder) ActionsAt(level access.Level) []string {
	var out []string
	for _, token := range b.Statement.Actions() {
		a, ok := b.svc.Action(token)
		if ok && a.AccessLevel == level {
			out = append(out, token)
		}
	}
	return out
}

func (b *Builder) Deny() *Builder {
	b.Statement.Deny()
	return b
}

func (b *Builder) Allow() *Builder {
	b.Statement.Allow()
	return b
}

func (b *Builder) NotAction() *Builder {
	b.Statement.NotAction()
	return b
}

func (b *Builder) NotResource() *Builder {
	b.Statement.NotResource()
	return b
}
