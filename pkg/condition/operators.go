package condition

import "strings"

const (
	StringEquals              = "StringEquals"
	StringNotEquals           = "StringNotEquals"
	StringEqualsIgnoreCase    = "StringEqualsIgnoreCase"
	StringNotEqualsIgnoreCase = "StringNotEqualsIgnoreCase"
	StringLike                = "StringLike"
	StringNotLike             = "StringNotLike"

	NumericEquals            = "NumericEquals"
	NumericNotEquals         = "NumericNotEquals"
	NumericLessThan          = "NumericLessThan"
	NumericLessThanEquals    = "NumericLessThanEquals"
	NumericGreaterThan       = "NumericGreaterThan"
	NumericGreaterThanEquals = "NumericGreaterThanEquals"

	DateEquals            = "DateEquals"
	DateNotEquals         = "DateNotEquals"
	DateLessThan          = "DateLessThan"
	DateLessThanEquals    = "DateLessThanEquals"
	DateGreaterThan       = "DateGreaterThan"
	DateGreaterThanEquals = "DateGreaterThanEquals"

	Bool = "Bool"

	BinaryEquals = "BinaryEquals"

	IpAddress    = "IpAddress"
	NotIpAddress = "NotIpAddress"

	ArnEquals    = "ArnEquals"
	ArnNotEquals = "ArnNotEquals"
	ArnLike      = "ArnLike"
	ArnNotLike   = "ArnNotLike"

	Null = "Null"
)

const (
	forAnyValuePrefix  = "ForAnyValue:"
	forAllValuesPrefix = "ForAllValues:"
	ifExistsSuffix     = "IfExists"
)

// ForAnyValue qualifies op for multivalued context keys.
func ForAnyValue(op string) string {
	return forAnyValuePrefix + strings.TrimPrefix(op, forAnyValuePrefix)
}

// ForAllValues qualifies op for multivalued context keys.
func ForAllValues(op string) string {
	return forAllValuesPrefix + strings.TrimPrefix(op, forAllValuesPrefix)
}

// IfExists makes op match when the key is absent from the request context.
func IfExists(op string) string {
	if strings.HasSuffix(op, ifExistsSuffix) {
		return op
	}
	return op + ifExistsSuffix
}

// global condition keys available in every service, with the operator used
// when the caller does not pick one.
var globalKeys = map[string]string{
	"aws:CalledVia":              StringLike,
	"aws:CurrentTime":            DateEquals,
	"aws:EpochTime":              DateEquals,
	"aws:MultiFactorAuthAge":     NumericEquals,
	"aws:MultiFactorAuthPresent": Bool,
	"aws:PrincipalAccount":       StringLike,
	"aws:PrincipalArn":           ArnLike,
	"aws:PrincipalOrgID":         StringLike,
	"aws:PrincipalTag/":          StringLike,
	"aws:PrincipalType":          StringLike,
	"aws:RequestTag/":            StringLike,
	"aws:RequestedRegion":        StringLike,
	"aws:ResourceAccount":        StringLike,
	"aws:ResourceTag/":           StringLike,
	"aws:SecureTransport":        Bool,
	"aws:SourceAccount":          StringLike,
	"aws:SourceArn":              ArnLike,
	"aws:SourceIp":               IpAddress,
	"aws:SourceVpc":              StringLike,
	"aws:SourceVpce":             StringLike,
	"aws:TagKeys":                StringLike,
	"aws:TokenIssueTime":         DateEquals,
	"aws:UserAgent":              StringLike,
	"aws:ViaAWSService":          Bool,
	"aws:VpcSourceIp":            IpAddress,
	"aws:userid":                 StringLike,
	"aws:username":               StringLike,
	"aws:PrincipalIsAWSService":  Bool,
	"aws:PrincipalServiceName":   StringLike,
	"aws:SourceOrgID":            StringLike,
	"aws:ResourceOrgID":          StringLike,
}

// GlobalKeyOperator returns the default operator of a global aws: condition
// key. Tag keys such as aws:RequestTag/team match by prefix.
func GlobalKeyOperator(key string) (string, bool) {
	if op, ok := globalKeys[key]; ok {
		return op, true
	}
	if i := strings.Index(key, "/"); i > 0 {
		if op, ok := globalKeys[key[:i+1]]; ok {
			return op, true
		}
	}
	return "", false
}
