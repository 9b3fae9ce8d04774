package policy

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/berkguzel/iamgen/pkg/statement"
)

const Version = "2012-10-17"

// Document is an IAM policy document assembled from built statements.
type Document struct {
	Version   string             `json:"Version"`
	Statement []statement.Output `json:"Statement"`
}

func NewDocument(stmts ...*statement.Statement) *Document {
	doc := &Document{Version: Version, Statement: []statement.Output{}}
	for _, s := range stmts {
		doc.Statement = append(doc.Statement, s.Build())
	}
	return doc
}

func (d *Document) Add(s *statement.Statement) *Document {
	d.Statement = append(d.Statement, s.Build())
	return d
}

func (d *Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

func (d *Document) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Statement is a statement read back from an existing document.
type Statement struct {
	Sid          string                            `json:"Sid,omitempty"`
	Effect       string                            `json:"Effect"`
	Principal    interface{}                       `json:"Principal,omitempty"`
	NotPrincipal interface{}                       `json:"NotPrincipal,omitempty"`
	Action       interface{}                       `json:"Action,omitempty"`    // Can be string or []string
	NotAction    interface{}                       `json:"NotAction,omitempty"` // Can be string or []string
	Resource     interface{}                       `json:"Resource,omitempty"`
	NotResource  interface{}                       `json:"NotResource,omitempty"`
	Condition    map[string]map[string]interface{} `json:"Condition,omitempty"`
}

func (s Statement) Actions() []string {
	return stringList(s.Action)
}

func (s Statement) NotActions() []string {
	return stringList(s.NotAction)
}

func (s Statement) Resources() []string {
	return stringList(s.Resource)
}

func (s Statement) NotResources() []string {
	return stringList(s.NotResource)
}

func (s Statement) HasCondition() bool {
	return len(s.Condition) > 0
}

type ParsedDocument struct {
	Version   string
	Statement []Statement
}

type rawDocument struct {
	Version   string          `json:"Version"`
	Statement json.RawMessage `json:"Statement"`
}

// Parse reads a policy document. Statement may be one object or an array.
func Parse(data []byte) (*ParsedDocument, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse policy document: %v", err)
	}

	doc := &ParsedDocument{Version: raw.Version}
	trimmed := bytes.TrimSpace(raw.Statement)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return nil, fmt.Errorf("policy document has no Statement")
	case trimmed[0] == '{':
		var single Statement
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("failed to parse statement: %v", err)
		}
		doc.Statement = []Statement{single}
	default:
		if err := json.Unmarshal(trimmed, &doc.Statement); err != nil {
			return nil, fmt.Errorf("failed to parse statements: %v", err)
		}
	}
	return doc, nil
}

func stringList(v interface{}) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	}
	return nil
}
