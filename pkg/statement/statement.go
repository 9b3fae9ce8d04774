// Package statement accumulates the actions, resources and conditions of
// one IAM policy statement and serializes them.
//
// Every mutation returns the receiver so calls chain. Nothing here panics or
// returns an error from a mutation; misuse is recorded and surfaced by
// Validate.
package statement

import (
	"github.com/berkguzel/iamgen/pkg/condition"
	"github.com/berkguzel/iamgen/pkg/types"
)

type Effect string

const (
	Allow Effect = "Allow"
	Deny  Effect = "Deny"
)

// Principal kinds used in resource-based policies.
const (
	PrincipalAWS           = "AWS"
	PrincipalService       = "Service"
	PrincipalFederated     = "Federated"
	PrincipalCanonicalUser = "CanonicalUser"
	PrincipalAll           = "*"
)

type Statement struct {
	sid       string
	effect    Effect
	effectSet bool

	actions     []string
	actionIndex map[string]struct{}
	notAction   bool

	resources   []string
	notResource bool

	principals    *principalSet
	notPrincipals *principalSet

	conditions *condition.Block
	collapse   bool

	issues []types.Issue
}

type Option func(*Statement)

func WithSid(sid string) Option {
	return func(s *Statement) {
		s.sid = sid
	}
}

func WithEffect(effect Effect) Option {
	return func(s *Statement) {
		s.SetEffect(effect)
	}
}

// WithCollapse controls whether single element lists are emitted as plain
// strings. It is on by default; both forms are valid IAM.
func WithCollapse(collapse bool) Option {
	return func(s *Statement) {
		s.collapse = collapse
	}
}

func New(opts ...Option) *Statement {
	s := &Statement{
		effect:      Allow,
		actionIndex: make(map[string]struct{}),
		conditions:  condition.New(),
		collapse:    true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// To adds actions. Duplicates are dropped and the first position is kept.
func (s *Statement) To(actions ...string) *Statement {
	if s.actionIndex == nil {
		s.actionIndex = make(map[string]struct{})
	}
	for _, a := range actions {
		if _, ok := s.actionIndex[a]; ok {
			continue
		}
		s.actionIndex[a] = struct{}{}
		s.actions = append(s.actions, a)
	}
	return s
}

// SetEffect sets the effect. Changing an effect that was already set
// overwrites it and records an EffectConflict issue.
func (s *Statement) SetEffect(effect Effect) *Statement {
	if s.effectSet && s.effect != effect {
		s.issues = append(s.issues, types.NewError(types.EffectConflict,
			"effect changed from %s to %s", s.effect, effect))
	}
	s.effect = effect
	s.effectSet = true
	return s
}

func (s *Statement) Allow() *Statement {
	return s.SetEffect(Allow)
}

func (s *Statement) Deny() *Statement {
	return s.SetEffect(Deny)
}

// On adds already resolved resource ARNs. Order is kept and duplicates are
// not collapsed.
func (s *Statement) On(arns ...string) *Statement {
	s.resources = append(s.resources, arns...)
	return s
}

// If adds a condition. Values for the same operator and key accumulate.
func (s *Statement) If(operator, key string, values ...any) *Statement {
	if s.conditions == nil {
		s.conditions = condition.New()
	}
	s.conditions.Add(operator, key, values...)
	return s
}

// NotAction makes the action list serialize as NotAction.
func (s *Statement) NotAction() *Statement {
	s.notAction = true
	return s
}

// NotResource makes the resource list serialize as NotResource.
func (s *Statement) NotResource() *Statement {
	s.notResource = true
	return s
}

// Principal adds principals of kind. PrincipalAll takes no values.
func (s *Statement) Principal(kind string, values ...string) *Statement {
	if s.principals == nil {
		s.principals = newPrincipalSet()
	}
	s.principals.add(kind, values...)
	return s
}

func (s *Statement) NotPrincipal(kind string, values ...string) *Statement {
	if s.notPrincipals == nil {
		s.notPrincipals = newPrincipalSet()
	}
	s.notPrincipals.add(kind, values...)
	return s
}

// Report records an issue found by a collaborator, for example an ARN
// template that could not be fully resolved.
func (s *Statement) Report(issue types.Issue) *Statement {
	s.issues = append(s.issues, issue)
	return s
}

func (s *Statement) Sid() string {
	return s.sid
}

func (s *Statement) Effect() Effect {
	return s.effect
}

func (s *Statement) Actions() []string {
	return append([]string(nil), s.actions...)
}

func (s *Statement) Resources() []string {
	return append([]string(nil), s.resources...)
}

func (s *Statement) Conditions() *condition.Block {
	return s.conditions.Clone()
}

type principalSet struct {
	all   bool
	kinds map[string][]string
}

func newPrincipalSet() *principalSet {
	return &principalSet{kinds: make(map[string][]string)}
}

func (p *principalSet) add(kind string, values ...string) {
	if kind == PrincipalAll {
		p.all = true
		return
	}
	existing := p.kinds[kind]
	for _, v := range values {
		dup := false
		for _, e := range existing {
			if e == v {
				dup = true
				break
			}
		}
		if !dup {
			existing = append(existing, v)
		}
	}
	p.kinds[kind] = existing
}

func (p *principalSet) serialize(collapse bool) any {
	if p == nil {
		return nil
	}
	if p.all {
		return PrincipalAll
	}
	if len(p.kinds) == 0 {
		return nil
	}
	out := make(map[string]any, len(p.kinds))
	for kind, values := range p.kinds {
		out[kind] = list(values, collapse)
	}
	return out
}
