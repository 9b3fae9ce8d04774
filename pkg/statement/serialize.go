package statement

import "encoding/json"

// Output is the serialized form of a statement. Field order is the JSON key
// order; Action, Resource and Principal hold either a string or a []string.
type Output struct {
	Sid          string                    `json:"Sid,omitempty"`
	Effect       Effect                    `json:"Effect"`
	Principal    any                       `json:"Principal,omitempty"`
	NotPrincipal any                       `json:"NotPrincipal,omitempty"`
	Action       any                       `json:"Action,omitempty"`
	NotAction    any                       `json:"NotAction,omitempty"`
	Resource     any                       `json:"Resource,omitempty"`
	NotResource  any                       `json:"NotResource,omitempty"`
	Condition    map[string]map[string]any `json:"Condition,omitempty"`
}

// Build projects the current state into an Output. It does not mutate the
// statement, so calling it repeatedly yields equal values.
func (s *Statement) Build() Output {
	out := Output{
		Sid:          s.sid,
		Effect:       s.effect,
		Principal:    s.principals.serialize(s.collapse),
		NotPrincipal: s.notPrincipals.serialize(s.collapse),
		Condition:    s.conditions.Serialize(s.collapse),
	}
	if out.Effect == "" {
		out.Effect = Allow
	}

	if len(s.actions) > 0 {
		actions := list(s.actions, s.collapse)
		if s.notAction {
			out.NotAction = actions
		} else {
			out.Action = actions
		}
	}

	switch {
	case len(s.resources) == 0:
		out.Resource = "*"
	case s.notResource:
		out.NotResource = list(s.resources, s.collapse)
	default:
		out.Resource = list(s.resources, s.collapse)
	}

	return out
}

// JSON marshals the built statement.
func (s *Statement) JSON() ([]byte, error) {
	return json.Marshal(s.Build())
}

func list(values []string, collapse bool) any {
	if collapse && len(values) == 1 {
		return values[0]
	}
	return append([]string(nil), values...)
}
