package radon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/panbanda/radonlens/pkg/models"
)

// DefaultExecutable is the command looked up when none is configured.
const DefaultExecutable = "radon"

// Client runs radon queries for single files.
type Client struct {
	runner   Runner
	lookPath func(string) (string, error)
	logger   *slog.Logger

	mu             sync.Mutex
	executable     string
	installCommand string
	version        Version
}

// Option is a functional option for configuring Client.
type Option func(*Client)

// WithRunner sets the process runner.
func WithRunner(r Runner) Option {
	return func(c *Client) {
		c.runner = r
	}
}

// WithLookPath replaces exec.LookPath for executable resolution.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(c *Client) {
		c.lookPath = fn
	}
}

// WithLogger sets the logger used for query tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithInstallCommand sets the command offered by the "Install Radon" fix.
func WithInstallCommand(cmd string) Option {
	return func(c *Client) {
		if cmd != "" {
			c.installCommand = cmd
		}
	}
}

// New creates a client for the given executable name or path.
func New(executable string, opts ...Option) *Client {
	if executable == "" {
		executable = DefaultExecutable
	}
	c := &Client{
		runner:     ExecRunner{},
		lookPath:   exec.LookPath,
		logger:     slog.New(slog.DiscardHandler),
		executable:     executable,
		installCommand: DefaultInstallCommand,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Executable returns the configured executable name or path.
func (c *Client) Executable() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.executable
}

// SetExecutable points the client at another executable and forgets the memoized version.
func (c *Client) SetExecutable(executable string) {
	if executable == "" {
		executable = DefaultExecutable
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if executable != c.executable {
		c.executable = executable
		c.version = nil
	}
}

// InstallCommand returns the command offered by the "Install Radon" fix.
func (c *Client) InstallCommand() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.installCommand
}

// SetInstallCommand changes the command offered by the "Install Radon" fix.
// An empty command restores DefaultInstallCommand.
func (c *Client) SetInstallCommand(cmd string) {
	if cmd == "" {
		cmd = DefaultInstallCommand
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.installCommand = cmd
}

// ResetVersion forgets the memoized version so the next check runs `radon -v` again.
func (c *Client) ResetVersion() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version = nil
}

// ResolveExecutable finds the configured executable on PATH.
// Names containing a path separator are checked directly.
func (c *Client) ResolveExecutable() (string, error) {
	name := c.Executable()
	path, err := c.lookPath(name)
	if err != nil {
		return "", NewError(ToolNotFound, fmt.Sprintf("Couldn't find executable %q.", name), err).
			withInstallCommand(c.InstallCommand())
	}
	return path, nil
}

// QueryVersion returns radon's version, running `radon -v` at most once per
// successful result.
func (c *Client) QueryVersion(ctx context.Context) (Version, error) {
	c.mu.Lock()
	cached := c.version
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	out, err := c.run(ctx, "-v")
	if err != nil {
		return nil, err
	}
	v, err := ParseVersion(string(out))
	if err != nil {
		return nil, NewError(ToolInvocationFailed, "radon printed an unrecognized version", err)
	}

	c.mu.Lock()
	if c.version == nil {
		c.version = v
	}
	v = c.version
	c.mu.Unlock()

	c.logger.Debug("radon version detected", "version", v.String())
	return v, nil
}

// CheckVersion queries the version and applies the minimum-version gate.
func (c *Client) CheckVersion(ctx context.Context) (Version, error) {
	v, err := c.QueryVersion(ctx)
	if err != nil {
		return nil, err
	}
	if err := RequireVersion(v); err != nil {
		var rerr *Error
		if errors.As(err, &rerr) {
			rerr.withInstallCommand(c.InstallCommand())
		}
		return v, err
	}
	return v, nil
}

// QueryComplexity runs `radon cc <path> -j -a --show-closures`.
func (c *Client) QueryComplexity(ctx context.Context, path string) ([]models.Rating, error) {
	out, err := c.run(ctx, "cc", path, "-j", "-a", "--show-closures")
	if err != nil {
		return nil, err
	}
	ratings, err := ParseComplexity(out, path)
	if err != nil {
		return nil, NewError(ToolInvocationFailed, "radon cc printed invalid JSON", err)
	}
	return ratings, nil
}

// QueryMaintainability runs `radon mi <path> -j -s`.
func (c *Client) QueryMaintainability(ctx context.Context, path string) (models.Maintainability, error) {
	out, err := c.run(ctx, "mi", path, "-j", "-s")
	if err != nil {
		return models.Maintainability{}, err
	}
	m, err := ParseMaintainability(out, path)
	if err != nil {
		return models.Maintainability{}, NewError(ToolInvocationFailed, "radon mi printed invalid JSON", err)
	}
	return m, nil
}

// QuerySourceInfo runs `radon raw <path> -j`.
func (c *Client) QuerySourceInfo(ctx context.Context, path string) (models.SourceInfo, error) {
	out, err := c.run(ctx, "raw", path, "-j")
	if err != nil {
		return models.SourceInfo{}, err
	}
	info, err := ParseSourceInfo(out, path)
	if err != nil {
		return models.SourceInfo{}, NewError(ToolInvocationFailed, "radon raw printed invalid JSON", err)
	}
	return info, nil
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	exe, err := c.ResolveExecutable()
	if err != nil {
		return nil, err
	}
	c.logger.Debug("running radon", "executable", exe, "args", args)
	out, err := c.runner.Run(ctx, exe, args...)
	if err != nil {
		return nil, NewError(ToolInvocationFailed, fmt.Sprintf("radon %s failed", args[0]), err)
	}
	return out, nil
}
