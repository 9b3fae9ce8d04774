// Package aws derives the ARN context (partition, region, account) from the
// local AWS environment. It only reads environment variables and the shared
// config files; it never calls an AWS API.
package aws

import (
	"context"
	"os"

	awsarn "github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/berkguzel/iamgen/pkg/arn"
	"github.com/pkg/errors"
)

const (
	EnvAccountID = "AWS_ACCOUNT_ID"
	EnvRoleARN   = "AWS_ROLE_ARN"
)

// Options overrides what would otherwise be read from the environment.
type Options struct {
	Profile   string
	Partition string
	Region    string
	Account   string
}

// LoadContext resolves an arn.Context. Explicit options win over the
// environment; anything still unknown is left empty so that
// arn.Context.WithDefaults can fill it in.
func LoadContext(ctx context.Context, opts Options) (arn.Context, error) {
	region := opts.Region
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}

	// Fall back to the shared config profile
	if region == "" {
		var loadOpts []func(*config.LoadOptions) error
		if opts.Profile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
		}
		cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return arn.Context{}, errors.Wrap(err, "failed to load AWS config")
		}
		region = cfg.Region
	}

	account := opts.Account
	if account == "" {
		account = os.Getenv(EnvAccountID)
	}

	partition := opts.Partition

	// A web identity role (IRSA) tells us both account and partition
	if roleARN := os.Getenv(EnvRoleARN); roleARN != "" && (account == "" || partition == "") {
		parsed, err := awsarn.Parse(roleARN)
		if err != nil {
			return arn.Context{}, errors.Wrapf(err, "invalid %s %q", EnvRoleARN, roleARN)
		}
		if account == "" {
			account = parsed.AccountID
		}
		if partition == "" {
			partition = parsed.Partition
		}
	}

	if partition == "" && region != "" {
		partition = arn.PartitionForRegion(region)
	}

	return arn.Context{
		Partition: partition,
		Region:    region,
		Account:   account,
	}, nil
}
