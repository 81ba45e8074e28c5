package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/radonlens/internal/lens"
	"github.com/panbanda/radonlens/internal/logging"
	"github.com/panbanda/radonlens/internal/output"
	"github.com/panbanda/radonlens/pkg/config"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

// loadConfig loads the file named by --config, or the first config found in
// the working directory. The returned path is empty when running on defaults.
func loadConfig(c *cli.Context) (*config.Config, string, error) {
	path := c.String("config")
	if path == "" {
		found, ok := config.Find(".")
		if !ok {
			return config.DefaultConfig(), "", nil
		}
		path = found
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	return cfg, path, nil
}

// newLogger builds the stderr logger for a command.
func newLogger(c *cli.Context, cfg *config.Config) *slog.Logger {
	return logging.FromConfig(c.App.ErrWriter, cfg.Logging, c.Bool("verbose"))
}

// newLens builds a lens service from the global flags.
func newLens(c *cli.Context) (*lens.Service, *config.Config, error) {
	cfg, path, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	svc := lens.New(
		lens.WithConfig(cfg),
		lens.WithConfigPath(path),
		lens.WithLogger(newLogger(c, cfg)),
	)
	return svc, cfg, nil
}

// outputFormat picks the --format flag when set and the config default otherwise.
func outputFormat(c *cli.Context, cfg *config.Config) output.Format {
	if c.IsSet("format") || cfg.Output.Format == "" {
		return output.ParseFormat(c.String("format"))
	}
	return output.ParseFormat(cfg.Output.Format)
}

// newFormatter opens the --output destination, colored only on a terminal.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := outputFormat(c, cfg)
	if path := c.String("output"); path != "" {
		return output.NewFormatter(format, path, false)
	}
	colored := cfg.Output.Color && !color.NoColor
	return output.NewWriterFormatter(format, c.App.Writer, colored), nil
}

// messages returns a text formatter on stdout for command status lines.
func messages(c *cli.Context, cfg *config.Config) *output.Formatter {
	return output.NewWriterFormatter(output.FormatText, c.App.Writer, cfg.Output.Color && !color.NoColor)
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "radonlens",
		Usage:     "Radon complexity and maintainability lens for Python files",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Description: `radonlens runs radon on Python files and turns its cyclomatic complexity
ranks and maintainability index into annotations placed on each function,
method and class, plus a per-file maintainability indicator.

It runs one-shot over files and directories, watches a tree for changes, or
serves editor and assistant hosts over the Model Context Protocol.

Requires radon 5.1 or later.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{config.EnvPath},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, markdown, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose output",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("no-color") {
				color.NoColor = true
			}
			return nil
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			watchCmd(),
			mcpCmd(),
			enableCmd(),
			disableCmd(),
			installCmd(),
			versionCmd(),
			configCmd(),
		},
	}
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}
