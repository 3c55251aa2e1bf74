package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	conformance "github.com/cirque-irc/conformance"
	"github.com/cirque-irc/conformance/exitcodes"
	"github.com/cirque-irc/conformance/flags"
	"github.com/cirque-irc/conformance/service"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "cirque-conformance"
	app.Usage = "Cirque IRC Conformance Orchestrator"
	app.Description = "cirque-conformance drives external protocol conformance suites against the cirque server"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			if conformance.IsRuntimeError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
			} else if conformance.IsTestFailureError(err) {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			} else {
				cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.TestFailure))
			}
		}
	}

	// Start sidecar servers
	svc := service.New()
	svc.Start(context.Background())
	defer svc.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		// The exit handler above has already mapped the code; this path is
		// only reached if it declined to exit.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcodes.RuntimeErr)
	}
}

func run(ctx *cli.Context) error {
	log := newLogger(ctx.String(flags.LogLevel.Name))
	slog.SetDefault(log)

	cfg, err := conformance.NewConfig(ctx, log)
	if err != nil {
		return conformance.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	orch, err := conformance.New(ctx.Context, cfg, Version)
	if err != nil {
		return conformance.NewRuntimeError(fmt.Errorf("failed to create orchestrator: %w", err))
	}

	if err := orch.Start(ctx.Context); err != nil {
		return err
	}

	if cfg.RunInterval > 0 {
		// Interval mode: block until interrupted, then stop cleanly.
		<-ctx.Context.Done()
		return orch.Stop(context.Background())
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
