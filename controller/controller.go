// Package controller implements the integration contract required by the
// irctest framework: spawn a server instance for one test session and
// expose its process handle and bound port back to the framework.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/cirque-irc/conformance/proc"
	"github.com/cirque-irc/conformance/resolver"
)

const (
	// BinaryName is the irctest compatibility shim of the server.
	BinaryName = "irctest-compat"
	// ServerName is the fixed name the server announces to clients.
	ServerName = "My.Little.Server"
)

// Options carries the parameterized startup options of the controller
// contract. SSL, RunServices, Faketime and Config are accepted for
// interface compatibility but are not mapped to any launch argument.
type Options struct {
	Password    string
	SSL         bool
	RunServices bool
	Faketime    string
	Config      any
}

type starter interface {
	Start(ctx context.Context, cmd proc.Command) (*proc.Handle, error)
}

// Controller owns one server process per Run invocation. Termination and
// crash detection belong to the consuming framework, which is why the
// process handle is exposed rather than hidden.
type Controller struct {
	resolver *resolver.Resolver
	starter  starter
	log      *slog.Logger

	handle *proc.Handle
	port   int
}

// New creates a controller resolving binaries through res.
func New(res *resolver.Resolver, runner *proc.Runner, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		resolver: res,
		starter:  runner,
		log:      log,
	}
}

// Run launches exactly one server process listening on port and records
// its handle for the framework to query. It returns as soon as the spawn
// succeeds; the server keeps running for the framework to interact with.
func (c *Controller) Run(ctx context.Context, hostname string, port int, opts Options) error {
	if port <= 0 {
		return fmt.Errorf("port is required")
	}

	logIgnoredOptions(c.log, opts)

	exe := c.resolver.Resolve(BinaryName)
	args := BuildArgs(port, opts)
	c.log.Debug("Launching server for test session",
		"exe", exe, "hostname", hostname, "port", port)

	handle, err := c.starter.Start(ctx, proc.Command{Path: exe, Args: args})
	if err != nil {
		return fmt.Errorf("launching server %s: %w", exe, err)
	}

	c.handle = handle
	c.port = port
	return nil
}

// BuildArgs maps connection parameters to the server's command line.
// The password flag is only forwarded when a password is set.
func BuildArgs(port int, opts Options) []string {
	args := []string{
		"-p", strconv.Itoa(port),
		"--server-name", ServerName,
	}
	if opts.Password != "" {
		args = append(args, "--password", opts.Password)
	}
	return args
}

// Process returns the live server process, or nil before Run.
func (c *Controller) Process() *os.Process {
	if c.handle == nil {
		return nil
	}
	return c.handle.Process()
}

// Port returns the port the server was launched on.
func (c *Controller) Port() int {
	return c.port
}

func logIgnoredOptions(log *slog.Logger, opts Options) {
	if opts.SSL {
		log.Debug("Ignoring unsupported option", "option", "ssl")
	}
	if opts.RunServices {
		log.Debug("Ignoring unsupported option", "option", "run_services")
	}
	if opts.Faketime != "" {
		log.Debug("Ignoring unsupported option", "option", "faketime")
	}
	if opts.Config != nil {
		log.Debug("Ignoring unsupported option", "option", "config")
	}
}
