// Package arn resolves ARN templates such as
// "arn:${Partition}:s3:::${BucketName}" into concrete resource ARNs.
package arn

import (
	"regexp"
	"strings"
	"sync"

	awsarn "github.com/aws/aws-sdk-go-v2/aws/arn"
)

const (
	PlaceholderPartition = "Partition"
	PlaceholderRegion    = "Region"
	PlaceholderAccount   = "Account"

	DefaultPartition = "aws"
	Wildcard         = "*"
)

var placeholderRe = regexp.MustCompile(`\$\{([^}]+)\}`)

// Context carries the partition, region and account used when a template
// placeholder is not supplied by the caller.
type Context struct {
	Partition string `json:"partition,omitempty"`
	Region    string `json:"region,omitempty"`
	Account   string `json:"account,omitempty"`
}

func DefaultContext() Context {
	return Context{
		Partition: DefaultPartition,
		Region:    Wildcard,
		Account:   Wildcard,
	}
}

// WithDefaults fills empty fields from DefaultContext.
func (c Context) WithDefaults() Context {
	d := DefaultContext()
	if c.Partition == "" {
		c.Partition = d.Partition
	}
	if c.Region == "" {
		c.Region = d.Region
	}
	if c.Account == "" {
		c.Account = d.Account
	}
	return c
}

// PartitionForRegion maps a region name onto the partition it lives in.
func PartitionForRegion(region string) string {
	switch {
	case strings.HasPrefix(region, "cn-"):
		return "aws-cn"
	case strings.HasPrefix(region, "us-gov-"):
		return "aws-us-gov"
	case strings.HasPrefix(region, "us-isob-"):
		return "aws-iso-b"
	case strings.HasPrefix(region, "us-iso-"):
		return "aws-iso"
	default:
		return DefaultPartition
	}
}

// Placeholders lists the placeholder names of template in order of appearance.
func Placeholders(template string) []string {
	matches := placeholderRe.FindAllStringSubmatch(template, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// IsValid reports whether s is the wildcard or a syntactically valid ARN.
func IsValid(s string) bool {
	if s == Wildcard {
		return true
	}
	if !awsarn.IsARN(s) {
		return false
	}
	_, err := awsarn.Parse(s)
	return err == nil
}

var (
	defaultOnce sync.Once
	defaultCtx  = DefaultContext()
)

// SetDefault configures the process-wide default context. Only the first
// call has any effect; it reports whether this call was the one applied.
func SetDefault(c Context) bool {
	applied := false
	defaultOnce.Do(func() {
		defaultCtx = c.WithDefaults()
		applied = true
	})
	return applied
}

// Default returns the process-wide default context.
func Default() Context {
	return defaultCtx
}
