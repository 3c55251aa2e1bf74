package conformance

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/cirque-irc/conformance/flags"
	"github.com/cirque-irc/conformance/resolver"
)

// Config carries everything one orchestration run needs. Ambient process
// state (env overrides, .env files) is read here, once, so the components
// downstream stay pure.
type Config struct {
	// Build/test config
	BuildTarget string
	TargetDir   string

	// Fixture config
	FixtureRepo     string
	FixtureRevision string
	FixtureDir      string

	// Category table
	CategoryConfig string

	// Output
	LogDir   string
	Progress bool

	// Scheduling
	RunInterval time.Duration

	// External tools
	CargoBin  string
	GitBin    string
	PytestBin string

	Log *slog.Logger
}

// NewConfig creates a new Config instance from the CLI context.
func NewConfig(ctx *cli.Context, log *slog.Logger) (*Config, error) {
	// A .env next to the invocation is a convenience for local runs;
	// its absence is not an error.
	_ = godotenv.Load()

	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	targetDir := ctx.String(flags.TargetDir.Name)
	if targetDir == "" {
		targetDir = os.Getenv(resolver.EnvTargetDir)
	}

	buildTarget := ctx.String(flags.BuildTarget.Name)
	if buildTarget == "" {
		return nil, fmt.Errorf("build target is required")
	}

	return &Config{
		BuildTarget:     buildTarget,
		TargetDir:       targetDir,
		FixtureRepo:     ctx.String(flags.FixtureRepo.Name),
		FixtureRevision: ctx.String(flags.FixtureRevision.Name),
		FixtureDir:      ctx.String(flags.FixtureDir.Name),
		CategoryConfig:  ctx.String(flags.Categories.Name),
		LogDir:          ctx.String(flags.LogDir.Name),
		Progress:        ctx.Bool(flags.Progress.Name),
		RunInterval:     ctx.Duration(flags.RunInterval.Name),
		CargoBin:        ctx.String(flags.CargoBin.Name),
		GitBin:          ctx.String(flags.GitBin.Name),
		PytestBin:       ctx.String(flags.PytestBin.Name),
		Log:             log,
	}, nil
}
