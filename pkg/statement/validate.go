package statement

import (
	"strings"

	"github.com/berkguzel/iamgen/pkg/arn"
	"github.com/berkguzel/iamgen/pkg/types"
	"github.com/hashicorp/go-multierror"
)

// Validate returns the issues recorded while building plus those found by
// inspecting the current state.
func (s *Statement) Validate() []types.Issue {
	issues := append([]types.Issue(nil), s.issues...)

	if len(s.actions) == 0 {
		issues = append(issues, types.NewError(types.EmptyActions, "statement has no actions"))
	}
	for _, a := range s.actions {
		switch {
		case a == "":
			issues = append(issues, types.NewError(types.EmptyActionToken, "empty action token"))
		case a == "*":
		case !strings.Contains(a, ":") || strings.HasPrefix(a, ":") || strings.HasSuffix(a, ":"):
			issues = append(issues, types.NewWarning(types.MalformedAction,
				"action %q is not of the form service:Action", a))
		}
	}
	for _, r := range s.resources {
		if strings.Contains(r, "${") {
			issues = append(issues, types.NewWarning(types.UnresolvedARN,
				"resource %q still contains a ${...} placeholder", r))
		}
		if !arn.IsValid(r) {
			issues = append(issues, types.NewWarning(types.InvalidResource,
				"resource %q is neither * nor an ARN", r))
		}
	}

	return issues
}

// Err folds the error-level issues of Validate into one error, or returns
// nil when there are none.
func (s *Statement) Err() error {
	var result *multierror.Error
	for _, issue := range s.Validate() {
		if issue.IsError() {
			result = multierror.Append(result, issue)
		}
	}
	return result.ErrorOrNil()
}
