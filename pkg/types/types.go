package types

import "fmt"

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type IssueCode string

const (
	EmptyActions        IssueCode = "EmptyActions"
	EmptyActionToken    IssueCode = "EmptyActionToken"
	MalformedAction     IssueCode = "MalformedAction"
	EffectConflict      IssueCode = "EffectConflict"
	MissingPlaceholder  IssueCode = "MissingPlaceholder"
	InvalidResource     IssueCode = "InvalidResource"
	UnresolvedARN       IssueCode = "UnresolvedARN"
	UnknownAction       IssueCode = "UnknownAction"
	UnknownResourceType IssueCode = "UnknownResourceType"
	UnknownConditionKey IssueCode = "UnknownConditionKey"
	InvalidPattern      IssueCode = "InvalidPattern"
)

// Issue is a caller-misuse condition found while building a statement.
// Issues are data; escalating them is up to the caller.
type Issue struct {
	Severity Severity
	Code     IssueCode
	Message  string
}

func NewError(code IssueCode, format string, args ...interface{}) Issue {
	return Issue{Severity: SeverityError, Code: code, Message: fmt.Sprintf(format, args...)}
}

func NewWarning(code IssueCode, format string, args ...interface{}) Issue {
	return Issue{Severity: SeverityWarning, Code: code, Message: fmt.Sprintf(format, args...)}
}

func (i Issue) IsError() bool {
	return i.Severity == SeverityError
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s: %s", i.Code, i.Message)
}

// PermissionDisplay is one action/resource pair of an analyzed statement.
type PermissionDisplay struct {
	Action       string
	Resource     string
	Effect       string
	AccessLevel  string
	IsBroad      bool
	IsHighRisk   bool
	HasCondition bool
	// Risk describes why the pair is high risk, empty for most pairs.
	Risk string
}

func (p PermissionDisplay) String() string {
	return fmt.Sprintf("%s %s on %s (Broad: %t, High Risk: %t, Has Condition: %t)",
		p.Effect, p.Action, p.Resource, p.IsBroad, p.IsHighRisk, p.HasCondition)
}

// Report summarizes one statement of a policy document.
type Report struct {
	Sid         string
	Effect      string
	Permissions []PermissionDisplay
	ByLevel     map[string][]string
	Unknown     []string
}

func (r Report) String() string {
	name := r.Sid
	if name == "" {
		name = "(no sid)"
	}
	return fmt.Sprintf("Statement: %s (%s) with %d permissions", name, r.Effect, len(r.Permissions))
}
