package analyzer

import "strings"

// High-risk permissions that should trigger warnings
var HighRiskPermissions = map[string]string{
	"*":                "Full account access",
	"iam:*":            "Full IAM access",
	"s3:*":             "Full S3 access",
	"dynamodb:*":       "Full DynamoDB access",
	"secretsmanager:*": "Full Secrets Manager access",
	"kms:*":            "Full KMS access",
	"ec2:*":            "Full EC2 access",
	"sts:*":            "Full STS access",
}

func isHighRiskPermission(action, resource string) bool {
	return riskDescription(action, resource) != ""
}

// riskDescription returns the HighRiskPermissions entry for a wildcard
// resource grant of action.
func riskDescription(action, resource string) string {
	if resource != "*" {
		return ""
	}
	return HighRiskPermissions[action]
}

func isHighRiskService(action string) bool {
	highRiskServices := []string{
		"iam:",
		"kms:",
		"secretsmanager:",
		"sts:",
	}

	for _, service := range highRiskServices {
		if strings.HasPrefix(action, service) {
			return true
		}
	}

	// Also consider any action with full service access (*) as high risk
	return strings.HasSuffix(action, ":*")
}
