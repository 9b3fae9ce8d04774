package statement

import (
	"encoding/json"
	"testing"

	"github.com/berkguzel/iamgen/pkg/condition"
	"github.com/berkguzel/iamgen/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshal(t *testing.T, s *Statement) string {
	t.Helper()
	out, err := s.JSON()
	require.NoError(t, err)
	return string(out)
}

func TestToDeduplicates(t *testing.T) {
	s := New().
		To("s3:GetObject").
		To("s3:PutObject", "s3:GetObject").
		To("s3:GetObject")

	assert.Equal(t, []string{"s3:GetObject", "s3:PutObject"}, s.Actions())
}

func TestOnKeepsDuplicates(t *testing.T) {
	s := New().To("s3:GetObject").
		On("arn:aws:s3:::b/1", "arn:aws:s3:::b/2").
		On("arn:aws:s3:::b/1")

	assert.Equal(t, []string{"arn:aws:s3:::b/1", "arn:aws:s3:::b/2", "arn:aws:s3:::b/1"}, s.Resources())
}

func TestConditionMerge(t *testing.T) {
	s := New().To("s3:ListBucket").
		If(condition.StringLike, "s3:prefix", "a").
		If(condition.StringLike, "s3:prefix", "b")

	assert.JSONEq(t, `{
		"Effect": "Allow",
		"Action": "s3:ListBucket",
		"Resource": "*",
		"Condition": {"StringLike": {"s3:prefix": ["a", "b"]}}
	}`, marshal(t, s))
}

func TestBuildTwoActionsDefaults(t *testing.T) {
	s := New().To("sqs:SendMessage", "sqs:ReceiveMessage")

	raw := marshal(t, s)
	assert.JSONEq(t, `{
		"Effect": "Allow",
		"Action": ["sqs:SendMessage", "sqs:ReceiveMessage"],
		"Resource": "*"
	}`, raw)

	var generic map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &generic))
	assert.NotContains(t, generic, "Condition")
	assert.NotContains(t, generic, "Sid")
}

func TestDenyOverridesDefault(t *testing.T) {
	s := New().To("s3:DeleteBucket").Deny()

	assert.Equal(t, Deny, s.Build().Effect)
	assert.Empty(t, s.Validate())
}

func TestEffectConflictIsReported(t *testing.T) {
	s := New(WithEffect(Allow)).To("s3:GetObject").Deny()

	assert.Equal(t, Deny, s.Effect())
	issues := s.Validate()
	require.Len(t, issues, 1)
	assert.Equal(t, types.EffectConflict, issues[0].Code)
	assert.Error(t, s.Err())

	same := New().To("s3:GetObject").Deny().Deny()
	assert.Empty(t, same.Validate())
}

func TestBuildIsDeterministic(t *testing.T) {
	s := New(WithSid("ReadData")).
		To("s3:GetObject", "s3:ListBucket").
		On("arn:aws:s3:::bucket", "arn:aws:s3:::bucket/*").
		If(condition.StringLike, "s3:prefix", "home/", "docs/").
		If(condition.Bool, "aws:SecureTransport", true).
		If(condition.NumericLessThan, "s3:max-keys", 100).
		Principal(PrincipalAWS, "arn:aws:iam::123456789012:root")

	first := marshal(t, s)
	second := marshal(t, s)
	assert.Equal(t, first, second)
	assert.Equal(t, s.Build(), s.Build())
}

func TestBuildDoesNotAliasState(t *testing.T) {
	s := New(WithCollapse(false)).To("s3:GetObject").On("arn:aws:s3:::b/k")
	out := s.Build()
	out.Action.([]string)[0] = "mutated"
	out.Resource.([]string)[0] = "mutated"

	assert.Equal(t, []string{"s3:GetObject"}, s.Actions())
	assert.Equal(t, []string{"arn:aws:s3:::b/k"}, s.Resources())
}

func TestWithCollapseDisabled(t *testing.T) {
	s := New(WithCollapse(false)).
		To("s3:GetObject").
		On("arn:aws:s3:::bucket/key").
		If(condition.StringLike, "s3:x-amz-server-side-encryption", "aws:kms")

	assert.JSONEq(t, `{
		"Effect": "Allow",
		"Action": ["s3:GetObject"],
		"Resource": ["arn:aws:s3:::bucket/key"],
		"Condition": {"StringLike": {"s3:x-amz-server-side-encryption": ["aws:kms"]}}
	}`, marshal(t, s))
}

func TestNotActionAndNotResource(t *testing.T) {
	s := New().Deny().
		To("iam:*", "organizations:*").NotAction().
		On("arn:aws:iam::123456789012:role/admin").NotResource()

	assert.JSONEq(t, `{
		"Effect": "Deny",
		"NotAction": ["iam:*", "organizations:*"],
		"NotResource": "arn:aws:iam::123456789012:role/admin"
	}`, marshal(t, s))
}

func TestPrincipals(t *testing.T) {
	s := New(WithSid("Trust")).
		To("sts:AssumeRole").
		Principal(PrincipalService, "ec2.amazonaws.com").
		Principal(PrincipalService, "lambda.amazonaws.com", "ec2.amazonaws.com").
		Principal(PrincipalAWS, "arn:aws:iam::123456789012:root")

	assert.JSONEq(t, `{
		"Sid": "Trust",
		"Effect": "Allow",
		"Principal": {
			"AWS": "arn:aws:iam::123456789012:root",
			"Service": ["ec2.amazonaws.com", "lambda.amazonaws.com"]
		},
		"Action": "sts:AssumeRole",
		"Resource": "*"
	}`, marshal(t, s))

	public := New().To("s3:GetObject").Principal(PrincipalAll).NotPrincipal(PrincipalAWS, "arn:aws:iam::123456789012:user/x")
	assert.JSONEq(t, `{
		"Effect": "Allow",
		"Principal": "*",
		"NotPrincipal": {"AWS": "arn:aws:iam::123456789012:user/x"},
		"Action": "s3:GetObject",
		"Resource": "*"
	}`, marshal(t, public))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		build     func() *Statement
		wantCodes []types.IssueCode
		wantErr   bool
	}{
		{
			name:      "no actions",
			build:     func() *Statement { return New() },
			wantCodes: []types.IssueCode{types.EmptyActions},
			wantErr:   true,
		},
		{
			name:      "empty action token",
			build:     func() *Statement { return New().To("") },
			wantCodes: []types.IssueCode{types.EmptyActionToken},
			wantErr:   true,
		},
		{
			name:      "malformed action",
			build:     func() *Statement { return New().To("GetObject", "s3:", "s3:GetObject") },
			wantCodes: []types.IssueCode{types.MalformedAction, types.MalformedAction},
		},
		{
			name:  "wildcard action",
			build: func() *Statement { return New().To("*") },
		},
		{
			name:      "invalid resource",
			build:     func() *Statement { return New().To("s3:GetObject").On("bucket/key", "*", "arn:aws:s3:::b") },
			wantCodes: []types.IssueCode{types.InvalidResource},
		},
		{
			name:      "placeholder left in resource",
			build:     func() *Statement { return New().To("s3:GetObject").On("arn:aws:s3:::${BucketName}") },
			wantCodes: []types.IssueCode{types.UnresolvedARN},
		},
		{
			name: "reported issue",
			build: func() *Statement {
				return New().To("s3:GetObject").Report(types.NewError(types.MissingPlaceholder, "ObjectName has no value"))
			},
			wantCodes: []types.IssueCode{types.MissingPlaceholder},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.build()
			var codes []types.IssueCode
			for _, issue := range s.Validate() {
				codes = append(codes, issue.Code)
			}
			assert.Equal(t, tt.wantCodes, codes)
			if tt.wantErr {
				assert.Error(t, s.Err())
			} else {
				assert.NoError(t, s.Err())
			}
		})
	}
}

func TestValidateDoesNotAccumulate(t *testing.T) {
	s := New()
	assert.Len(t, s.Validate(), 1)
	assert.Len(t, s.Validate(), 1)
}

func TestEmptyStatementStillBuilds(t *testing.T) {
	out := New().Build()
	assert.Equal(t, Allow, out.Effect)
	assert.Nil(t, out.Action)
	assert.Equal(t, "*", out.Resource)
}

func TestZeroValueStatement(t *testing.T) {
	var s Statement
	s.To("s3:GetObject").If(condition.StringLike, "s3:prefix", "a")

	out := s.Build()
	assert.Equal(t, Allow, out.Effect)
	assert.Equal(t, []string{"s3:GetObject"}, out.Action)
}

func TestConditionsReturnsCopy(t *testing.T) {
	s := New().To("s3:ListBucket").If(condition.StringLike, "s3:prefix", "a")
	c := s.Conditions()
	c.Add(condition.StringLike, "s3:prefix", "b")

	assert.Equal(t, []any{"a"}, s.Conditions().Values(condition.StringLike, "s3:prefix"))
}
