package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/cirque-irc/conformance/fixture"
	"github.com/cirque-irc/conformance/resolver"
)

const EnvVarPrefix = "CIRQUE_CONFORMANCE"

func prefixEnvVars(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	BuildTarget = &cli.StringFlag{
		Name:    "build-target",
		Value:   "chirc-compat",
		EnvVars: prefixEnvVars("BUILD_TARGET"),
		Usage:   "Binary target to build and test (eg. 'chirc-compat')",
	}
	TargetDir = &cli.StringFlag{
		Name:    "target-dir",
		Value:   "",
		EnvVars: append(prefixEnvVars("TARGET_DIR"), resolver.EnvTargetDir),
		Usage:   "Build output root directory (defaults to ./target)",
	}
	FixtureRepo = &cli.StringFlag{
		Name:    "fixture-repo",
		Value:   fixture.RepositoryURL,
		EnvVars: prefixEnvVars("FIXTURE_REPO"),
		Usage:   "URL of the protocol test fixture repository",
	}
	FixtureRevision = &cli.StringFlag{
		Name:    "fixture-revision",
		Value:   fixture.PinnedRevision,
		EnvVars: prefixEnvVars("FIXTURE_REVISION"),
		Usage:   "Pinned fixture commit",
	}
	FixtureDir = &cli.StringFlag{
		Name:    "fixture-dir",
		Value:   fixture.DefaultDir,
		EnvVars: prefixEnvVars("FIXTURE_DIR"),
		Usage:   "Local fixture checkout directory",
	}
	Categories = &cli.StringFlag{
		Name:    "categories",
		Value:   "",
		EnvVars: prefixEnvVars("CATEGORIES"),
		Usage:   "Path to a category config file overriding the built-in table (eg. 'categories.yaml')",
	}
	LogDir = &cli.StringFlag{
		Name:    "logdir",
		Value:   "logs",
		EnvVars: prefixEnvVars("LOGDIR"),
		Usage:   "Directory for per-run suite output logs",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between batches (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	CargoBin = &cli.StringFlag{
		Name:    "cargo-binary",
		Value:   "cargo",
		EnvVars: prefixEnvVars("CARGO_BINARY"),
		Usage:   "Path to the cargo binary used for the build step",
	}
	GitBin = &cli.StringFlag{
		Name:    "git-binary",
		Value:   "git",
		EnvVars: prefixEnvVars("GIT_BINARY"),
		Usage:   "Path to the git binary used for fixture sync",
	}
	PytestBin = &cli.StringFlag{
		Name:    "pytest-binary",
		Value:   "pytest",
		EnvVars: prefixEnvVars("PYTEST_BINARY"),
		Usage:   "Path to the pytest binary driving the external suite",
	}
	Progress = &cli.BoolFlag{
		Name:    "progress",
		Value:   false,
		EnvVars: prefixEnvVars("PROGRESS"),
		Usage:   "Render a progress bar across categories",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVars("LOG_LEVEL"),
		Usage:   "Log level (debug, info, warn, error)",
	}
)

var requiredFlags = []cli.Flag{
	BuildTarget,
}

var optionalFlags = []cli.Flag{
	TargetDir,
	FixtureRepo,
	FixtureRevision,
	FixtureDir,
	Categories,
	LogDir,
	RunInterval,
	CargoBin,
	GitBin,
	PytestBin,
	Progress,
	LogLevel,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		name := f.Names()[0]
		if ctx.String(name) == "" {
			return fmt.Errorf("flag %s is required", name)
		}
	}
	return nil
}
