package service

import (
	"testing"

	"github.com/berkguzel/iamgen/pkg/access"
	"github.com/berkguzel/iamgen/pkg/arn"
	"github.com/berkguzel/iamgen/pkg/catalog"
	"github.com/berkguzel/iamgen/pkg/condition"
	"github.com/berkguzel/iamgen/pkg/statement"
	"github.com/berkguzel/iamgen/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func s3(t *testing.T, opts ...Option) *Builder {
	t.Helper()
	b, ok := For("s3", opts...)
	require.True(t, ok)
	return b
}

func codes(issues []types.Issue) []types.IssueCode {
	var out []types.IssueCode
	for _, i := range issues {
		out = append(out, i.Code)
	}
	return out
}

func TestGetObjectWithEncryptionCondition(t *testing.T) {
	b := s3(t).
		To("GetObject").
		On("object", map[string]string{"BucketName": "bucket", "ObjectName": "key*"}).
		If("s3:x-amz-server-side-encryption", "aws:kms")

	out, err := b.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"Effect": "Allow",
		"Action": "s3:GetObject",
		"Resource": "arn:aws:s3:::bucket/key*",
		"Condition": {"StringLike": {"s3:x-amz-server-side-encryption": "aws:kms"}}
	}`, string(out))
	assert.Empty(t, b.Validate())
}

func TestTwoActionsNoResources(t *testing.T) {
	b, ok := For("sqs")
	require.True(t, ok)
	b.To("SendMessage", "sqs:ReceiveMessage")

	out := b.Build()
	assert.Equal(t, []string{"sqs:SendMessage", "sqs:ReceiveMessage"}, out.Action)
	assert.Equal(t, "*", out.Resource)
	assert.Nil(t, out.Condition)
}

func TestDeny(t *testing.T) {
	b := s3(t).To("DeleteBucket").Deny()
	assert.Equal(t, statement.Deny, b.Build().Effect)

	withOption := s3(t, WithEffect(statement.Deny)).To("DeleteBucket")
	assert.Equal(t, statement.Deny, withOption.Build().Effect)
}

func TestToReportsUnknownAction(t *testing.T) {
	b := s3(t).To("GetObject", "Teleport", "Get*")

	assert.Equal(t, []string{"s3:GetObject", "s3:Teleport", "s3:Get*"}, b.Actions())
	assert.Equal(t, []types.IssueCode{types.UnknownAction}, codes(b.Validate()))
}

func TestOnResolution(t *testing.T) {
	tests := []struct {
		name         string
		opts         []Option
		resourceType string
		values       map[string]string
		expected     []string
		wantCodes    []types.IssueCode
	}{
		{
			name:         "bucket with default partition",
			resourceType: "bucket",
			values:       map[string]string{"BucketName": "my-bucket"},
			expected:     []string{"arn:aws:s3:::my-bucket"},
		},
		{
			name:         "missing object name becomes wildcard",
			resourceType: "object",
			values:       map[string]string{"BucketName": "my-bucket"},
			expected:     []string{"arn:aws:s3:::my-bucket/*"},
			wantCodes:    []types.IssueCode{types.MissingPlaceholder},
		},
		{
			name:         "access point uses context",
			opts:         []Option{WithContext(arn.Context{Partition: "aws-cn", Region: "cn-north-1", Account: "123456789012"})},
			resourceType: "accesspoint",
			values:       map[string]string{"AccessPointName": "ap"},
			expected:     []string{"arn:aws-cn:s3:cn-north-1:123456789012:accesspoint/ap"},
		},
		{
			name:         "access point without context",
			opts:         []Option{WithContext(arn.Context{})},
			resourceType: "accesspoint",
			values:       map[string]string{"AccessPointName": "ap"},
			expected:     []string{"arn:aws:s3:*:*:accesspoint/ap"},
		},
		{
			name:         "unknown resource type",
			resourceType: "volume",
			wantCodes:    []types.IssueCode{types.UnknownResourceType},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := s3(t, tt.opts...).To("GetObject").On(tt.resourceType, tt.values)
			assert.Equal(t, tt.expected, b.Resources())
			assert.Equal(t, tt.wantCodes, codes(b.Validate()))
			for _, r := range b.Resources() {
				assert.NotContains(t, r, "${")
			}
		})
	}
}

func TestIfDefaultOperators(t *testing.T) {
	b := s3(t).
		To("ListBucket").
		If("s3:prefix", "home/").
		If("s3:prefix", "docs/").
		If("s3:max-keys", 100).
		If("s3:DataAccessPointArn", "arn:aws:s3:us-east-1:123456789012:accesspoint/ap").
		If("s3:ExistingObjectTag/team", "red").
		If("aws:SecureTransport", true).
		If("aws:SourceIp", "10.0.0.0/8").
		If("custom:thing", "x")

	c := b.Conditions()
	assert.Equal(t, []any{"home/", "docs/"}, c.Values(condition.StringLike, "s3:prefix"))
	assert.Equal(t, []any{int64(100)}, c.Values(condition.NumericEquals, "s3:max-keys"))
	assert.Equal(t, []any{"arn:aws:s3:us-east-1:123456789012:accesspoint/ap"}, c.Values(condition.ArnLike, "s3:DataAccessPointArn"))
	assert.Equal(t, []any{"red"}, c.Values(condition.StringLike, "s3:ExistingObjectTag/team"))
	assert.Equal(t, []any{true}, c.Values(condition.Bool, "aws:SecureTransport"))
	assert.Equal(t, []any{"10.0.0.0/8"}, c.Values(condition.IpAddress, "aws:SourceIp"))
	assert.Equal(t, []any{"x"}, c.Values(condition.StringLike, "custom:thing"))

	assert.Equal(t, []types.IssueCode{types.UnknownConditionKey}, codes(b.Validate()))
}

func TestIfOp(t *testing.T) {
	b := s3(t).To("ListBucket").
		IfOp(condition.StringEquals, "s3:prefix", "a").
		IfOp("", "s3:prefix", "b").
		IfOp(condition.ForAnyValue(condition.StringEquals), "s3:RequestObjectTagKeys", "team", "env")

	c := b.Conditions()
	assert.Equal(t, []any{"a"}, c.Values(condition.StringEquals, "s3:prefix"))
	assert.Equal(t, []any{"b"}, c.Values(condition.StringLike, "s3:prefix"))
	assert.Equal(t, []any{"team", "env"}, c.Values("ForAnyValue:StringEquals", "s3:RequestObjectTagKeys"))
}

func TestAccessLevelExpansion(t *testing.T) {
	b := s3(t).AllWriteActions()
	assert.Equal(t, []string{
		"s3:AbortMultipartUpload",
		"s3:CreateBucket",
		"s3:DeleteBucket",
		"s3:DeleteObject",
		"s3:PutObject",
	}, b.Actions())

	b = s3(t).AllListActions().AllTaggingActions()
	assert.Equal(t, []string{
		"s3:ListAllMyBuckets",
		"s3:ListBucket",
		"s3:ListBucketMultipartUploads",
		"s3:DeleteObjectTagging",
		"s3:PutObjectTagging",
	}, b.Actions())

	b = s3(t).AllPermissionsManagementActions().AllReadActions()
	assert.Equal(t, []string{"s3:PutBucketPolicy", "s3:PutObjectAcl"}, b.ActionsAt(access.PermissionsManagement))
	assert.Contains(t, b.ActionsAt(access.Read), "s3:GetObject")
	assert.Empty(t, b.ActionsAt(access.Write))
}

func TestAllActionsAndMatching(t *testing.T) {
	b := s3(t).AllActions()
	assert.Equal(t, []string{"s3:*"}, b.Actions())
	assert.Empty(t, b.Validate())

	b = s3(t).AllMatchingActions("GetObject*", "/^List.*Uploads$/", "/(/")
	assert.Equal(t, []string{
		"s3:GetObject",
		"s3:GetObjectAcl",
		"s3:GetObjectTagging",
		"s3:ListBucketMultipartUploads",
	}, b.Actions())
	assert.Equal(t, []types.IssueCode{types.InvalidPattern}, codes(b.Validate()))
}

func TestSharedStatementAcrossServices(t *testing.T) {
	stmt := statement.New(statement.WithSid("ReadEncrypted"))
	ctx := WithContext(arn.Context{Region: "eu-west-1", Account: "123456789012"})

	s3b := New(mustLookup(t, "s3"), WithStatement(stmt), ctx)
	kms := New(mustLookup(t, "kms"), WithStatement(stmt), ctx)

	s3b.To("GetObject").On("object", map[string]string{"BucketName": "data", "ObjectName": "*"})
	kms.To("Decrypt").On("key", map[string]string{"KeyId": "1234"}).If("kms:ViaService", "s3.eu-west-1.amazonaws.com")

	out := stmt.Build()
	assert.Equal(t, "ReadEncrypted", out.Sid)
	assert.Equal(t, []string{"s3:GetObject", "kms:Decrypt"}, out.Action)
	assert.Equal(t, []string{
		"arn:aws:s3:::data/*",
		"arn:aws:kms:eu-west-1:123456789012:key/1234",
	}, out.Resource)
	assert.Equal(t, map[string]map[string]any{
		condition.StringLike: {"kms:ViaService": "s3.eu-west-1.amazonaws.com"},
	}, out.Condition)

	assert.Equal(t, []string{"kms:Decrypt"}, kms.ActionsAt(access.Write))
	assert.Empty(t, s3b.ActionsAt(access.Write))
}

func TestWithStatementAppliesOptions(t *testing.T) {
	stmt := statement.New()
	New(mustLookup(t, "sts"), WithStatement(stmt), WithSid("Assume"), WithCollapse(false)).To("AssumeRole")

	out := stmt.Build()
	assert.Equal(t, "Assume", out.Sid)
	assert.Equal(t, []string{"sts:AssumeRole"}, out.Action)
}

func TestForUnknownService(t *testing.T) {
	b, ok := For("teleport")
	assert.False(t, ok)
	assert.Nil(t, b)
}

func TestNotActionNotResource(t *testing.T) {
	b := s3(t).Deny().To("DeleteBucket").NotAction().
		On("bucket", map[string]string{"BucketName": "keep"}).NotResource()

	out := b.Build()
	assert.Equal(t, "s3:DeleteBucket", out.NotAction)
	assert.Nil(t, out.Action)
	assert.Equal(t, "arn:aws:s3:::keep", out.NotResource)
}

func mustLookup(t *testing.T, prefix string) *catalog.Service {
	t.Helper()
	svc, ok := catalog.Default().Lookup(prefix)
	require.True(t, ok)
	return svc
}

func TestOnReportsPlaceholderInValue(t *testing.T) {
	b := s3(t).To("GetObject").On("bucket", map[string]string{"BucketName": "${ObjectName}"})

	assert.Equal(t, []string{"arn:aws:s3:::${ObjectName}"}, b.Resources())
	assert.Equal(t, []types.IssueCode{types.UnresolvedARN}, codes(b.Validate()))
}
