// Package config loads the optional iamgen YAML configuration file.
package config

import (
	"os"

	"github.com/berkguzel/iamgen/pkg/arn"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

const (
	EnvConfigPath = "IAMGEN_CONFIG"
	DefaultPath   = "~/.iamgen.yaml"
)

// Config holds the defaults that apply when neither a flag nor the AWS
// environment provides a value.
type Config struct {
	Profile   string `json:"profile,omitempty"`
	Partition string `json:"partition,omitempty"`
	Region    string `json:"region,omitempty"`
	Account   string `json:"account,omitempty"`
	Expand    bool   `json:"expand,omitempty"`
	LogLevel  string `json:"logLevel,omitempty"`

	// Path is the file the configuration was read from, empty if none.
	Path string `json:"-"`
}

// Path picks the configuration file: explicit, then $IAMGEN_CONFIG, then
// DefaultPath. It reports whether the choice was the default.
func Path(explicit string) (string, bool, error) {
	path, isDefault := explicit, false
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path, isDefault = DefaultPath, true
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to expand config path %q", path)
	}
	return expanded, isDefault, nil
}

// Load reads the configuration file chosen by Path. A missing default
// file yields an empty Config; a missing file that was asked for is an
// error.
func Load(explicit string) (*Config, error) {
	path, isDefault, err := Path(explicit)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && isDefault {
			return &Config{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read config %q", path)
	}

	cfg := new(Config)
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %q", path)
	}
	cfg.Path = path
	return cfg, nil
}

// Fill sets the empty fields of ctx from the configuration.
func (c *Config) Fill(ctx arn.Context) arn.Context {
	if ctx.Partition == "" {
		ctx.Partition = c.Partition
		if ctx.Partition == "" && c.Region != "" && ctx.Region == "" {
			ctx.Partition = arn.PartitionForRegion(c.Region)
		}
	}
	if ctx.Region == "" {
		ctx.Region = c.Region
	}
	if ctx.Account == "" {
		ctx.Account = c.Account
	}
	return ctx
}
