package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/berkguzel/iamgen/internal/config"
	"github.com/berkguzel/iamgen/internal/logutil"
	"github.com/berkguzel/iamgen/internal/options"
	"github.com/berkguzel/iamgen/pkg/analyzer"
	"github.com/berkguzel/iamgen/pkg/catalog"
	"github.com/berkguzel/iamgen/pkg/policy"
	"github.com/berkguzel/iamgen/pkg/printer"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

func main() {
	opts := options.NewOptions()
	if err := opts.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, options.ErrHelp) {
			opts.Usage(os.Stdout)
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		opts.Usage(os.Stderr)
		os.Exit(2)
	}

	if err := run(context.Background(), opts, os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options.Options, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	logLevel := opts.LogLevel
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	lg, err := logutil.New(logLevel)
	if err != nil {
		return err
	}
	defer lg.Sync()

	if cfg.Path != "" {
		lg.Debug("loaded config", zap.String("path", cfg.Path))
	}

	registry := catalog.Default()
	out := printer.New(stdout)

	switch opts.Command {
	case options.CommandServices:
		out.Services(registry)
		return nil

	case options.CommandActions:
		svc, ok := registry.Lookup(opts.Service)
		if !ok {
			return errors.Errorf("unknown service %q, known services are %v", opts.Service, registry.Prefixes())
		}
		out.Actions(svc, opts.AccessLevels...)
		return nil

	case options.CommandInspect:
		return inspect(opts, registry, stdin, out, lg)

	case options.CommandBuild:
		stmt, err := build(ctx, opts, cfg, registry, lg)
		if err != nil {
			return err
		}
		if err := out.Document(policy.NewDocument(stmt)); err != nil {
			return err
		}
		issues := stmt.Validate()
		printer.New(stderr).Issues(issues)
		lg.Debug("built statement",
			zap.Int("actions", len(stmt.Actions())),
			zap.Int("resources", len(stmt.Resources())),
			zap.Int("issues", len(issues)),
		)
		if opts.Strict {
			if err := stmt.Err(); err != nil {
				return errors.Wrap(err, "statement has error-level issues")
			}
		}
		return nil
	}

	return errors.Errorf("unknown command %q", opts.Command)
}

func inspect(opts *options.Options, registry *catalog.Registry, stdin io.Reader, out *printer.Printer, lg *zap.Logger) error {
	var (
		data []byte
		err  error
	)
	if opts.File == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(opts.File)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to read %q", opts.File)
	}

	doc, err := policy.Parse(data)
	if err != nil {
		return err
	}
	lg.Debug("parsed policy document",
		zap.String("version", doc.Version),
		zap.Int("statements", len(doc.Statement)),
	)

	reports := analyzer.New(registry).Analyze(doc)
	for _, r := range reports {
		for _, perm := range r.Permissions {
			if perm.IsHighRisk {
				lg.Debug("high-risk permission", zap.Stringer("permission", perm))
			}
		}
	}
	if opts.Levels {
		out.Levels(reports)
		return nil
	}
	out.Reports(reports, opts.ShowPerms, opts.RiskOnly)
	return nil
}
