// Package catalog holds the per-service action tables: which actions a
// service exposes, their access level, the resource types they apply to and
// the condition keys they support.
package catalog

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/berkguzel/iamgen/pkg/access"
	"github.com/berkguzel/iamgen/pkg/condition"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// KeyType is the data type of a condition key as listed in the AWS
// service authorization reference.
type KeyType string

const (
	TypeString        KeyType = "String"
	TypeARN           KeyType = "ARN"
	TypeNumeric       KeyType = "Numeric"
	TypeBool          KeyType = "Bool"
	TypeDate          KeyType = "Date"
	TypeIPAddress     KeyType = "IPAddress"
	TypeArrayOfString KeyType = "ArrayOfString"
	TypeArrayOfARN    KeyType = "ArrayOfARN"
)

// DefaultOperator is the operator applied when a condition on a key of this
// type is added without an explicit one.
func (t KeyType) DefaultOperator() string {
	switch t {
	case TypeARN, TypeArrayOfARN:
		return condition.ArnLike
	case TypeNumeric:
		return condition.NumericEquals
	case TypeBool:
		return condition.Bool
	case TypeDate:
		return condition.DateEquals
	case TypeIPAddress:
		return condition.IpAddress
	default:
		return condition.StringLike
	}
}

func (t KeyType) valid() bool {
	switch t {
	case TypeString, TypeARN, TypeNumeric, TypeBool, TypeDate, TypeIPAddress, TypeArrayOfString, TypeArrayOfARN:
		return true
	}
	return false
}

type ResourceRef struct {
	Required bool `json:"required,omitempty"`
}

type ActionDescriptor struct {
	Name          string                 `json:"-"`
	URL           string                 `json:"url"`
	Description   string                 `json:"description"`
	AccessLevel   access.Level           `json:"accessLevel"`
	ResourceTypes map[string]ResourceRef `json:"resourceTypes,omitempty"`
	ConditionKeys []string               `json:"conditions,omitempty"`
}

type ResourceTypeDescriptor struct {
	Name          string   `json:"-"`
	ARNTemplate   string   `json:"arn"`
	ConditionKeys []string `json:"conditionKeys,omitempty"`
}

type ConditionKeyDescriptor struct {
	Name        string  `json:"-"`
	Description string  `json:"description,omitempty"`
	Type        KeyType `json:"type"`
}

// Service is the action table of one AWS service.
type Service struct {
	Prefix        string                             `json:"prefix"`
	Name          string                             `json:"name"`
	Actions       map[string]*ActionDescriptor       `json:"actions"`
	ResourceTypes map[string]*ResourceTypeDescriptor `json:"resourceTypes,omitempty"`
	ConditionKeys map[string]*ConditionKeyDescriptor `json:"conditionKeys,omitempty"`
}

// Load parses a YAML service table and checks that it is self-consistent.
func Load(data []byte) (*Service, error) {
	svc := new(Service)
	if err := yaml.Unmarshal(data, svc); err != nil {
		return nil, errors.Wrap(err, "failed to parse service table")
	}
	if err := svc.check(); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) check() error {
	if s.Prefix == "" {
		return errors.New("service table has no prefix")
	}
	if len(s.Actions) == 0 {
		return errors.Errorf("service %q declares no actions", s.Prefix)
	}
	for name, key := range s.ConditionKeys {
		if key == nil {
			return errors.Errorf("service %q: condition key %q is empty", s.Prefix, name)
		}
		if !key.Type.valid() {
			return errors.Errorf("service %q: condition key %q has unknown type %q", s.Prefix, name, key.Type)
		}
		key.Name = name
	}
	for name, rt := range s.ResourceTypes {
		if rt == nil {
			return errors.Errorf("service %q: resource type %q is empty", s.Prefix, name)
		}
		if rt.ARNTemplate == "" {
			return errors.Errorf("service %q: resource type %q has no ARN template", s.Prefix, name)
		}
		rt.Name = name
	}
	for name, action := range s.Actions {
		if action == nil {
			return errors.Errorf("service %q: action %q is empty", s.Prefix, name)
		}
		if !action.AccessLevel.Valid() {
			return errors.Errorf("service %q: action %q has no access level", s.Prefix, name)
		}
		for rt := range action.ResourceTypes {
			if _, ok := s.ResourceTypes[rt]; !ok {
				return errors.Errorf("service %q: action %q references undeclared resource type %q", s.Prefix, name, rt)
			}
		}
		action.Name = name
	}
	return nil
}

// Token is the fully qualified "prefix:Action" form of an action name.
func (s *Service) Token(action string) string {
	return s.Prefix + ":" + action
}

func (s *Service) Action(name string) (*ActionDescriptor, bool) {
	name = strings.TrimPrefix(name, s.Prefix+":")
	a, ok := s.Actions[name]
	return a, ok
}

func (s *Service) ResourceType(name string) (*ResourceTypeDescriptor, bool) {
	rt, ok := s.ResourceTypes[name]
	return rt, ok
}

// ConditionKey finds the descriptor of a condition key. Templated keys such
// as "s3:ExistingObjectTag/${TagKey}" match any key sharing their literal
// prefix.
func (s *Service) ConditionKey(name string) (*ConditionKeyDescriptor, bool) {
	if k, ok := s.ConditionKeys[name]; ok {
		return k, true
	}
	for _, candidate := range s.conditionKeyNames() {
		i := strings.Index(candidate, "${")
		if i <= 0 {
			continue
		}
		if strings.HasPrefix(name, candidate[:i]) {
			return s.ConditionKeys[candidate], true
		}
	}
	return nil, false
}

func (s *Service) conditionKeyNames() []string {
	names := make([]string, 0, len(s.ConditionKeys))
	for k := range s.ConditionKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ActionNames returns every action name in lexical order.
func (s *Service) ActionNames() []string {
	names := make([]string, 0, len(s.Actions))
	for k := range s.Actions {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ActionsByLevel returns the sorted names of the actions classified at level.
func (s *Service) ActionsByLevel(level access.Level) []string {
	var names []string
	for _, name := range s.ActionNames() {
		if s.Actions[name].AccessLevel == level {
			names = append(names, name)
		}
	}
	return names
}

// MatchActions returns the sorted action names matching pattern. A pattern
// wrapped in slashes is a regular expression, anything else a glob using *
// and ?. A leading "prefix:" is ignored.
func (s *Service) MatchActions(pattern string) ([]string, error) {
	pattern = strings.TrimPrefix(pattern, s.Prefix+":")

	var match func(string) bool
	if len(pattern) > 1 && strings.HasPrefix(pattern, "/") && strings.HasSuffix(pattern, "/") {
		re, err := regexp.Compile(pattern[1 : len(pattern)-1])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid action pattern %q", pattern)
		}
		match = re.MatchString
	} else {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, errors.Wrapf(err, "invalid action pattern %q", pattern)
		}
		match = func(name string) bool {
			ok, _ := path.Match(pattern, name)
			return ok
		}
	}

	var names []string
	for _, name := range s.ActionNames() {
		if match(name) {
			names = append(names, name)
		}
	}
	return names, nil
}
