package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/radonlens/internal/lens"
	"github.com/panbanda/radonlens/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for editor and LLM integration",
		Description: `Starts an MCP server over stdio transport. The host reports document
lifecycle events through tools, and radonlens answers with radon annotations
and the maintainability indicator of each Python file.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "radonlens": {
        "command": "radonlens",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - document_opened     Register a file and compute its metrics
  - document_saved      Recompute metrics after a save
  - document_edited     Record unsaved text; ratings hide until the next save
  - document_focused    Make a file the active document
  - document_closed     Forget a file and its metrics
  - get_annotations     Annotations and maintainability status of a file
  - get_status          Lens state, radon executable, recent failures
  - set_enabled         Turn annotations on or off
  - install_radon       Run the configured install command

Resources:
  - radonlens://annotations   Annotations of the active document (subscribable)`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "active",
				Usage: "Python file to focus when the server starts",
			},
		},
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP registry manifest",
				Action: runMCPManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, path, err := loadConfig(c)
	if err != nil {
		return err
	}
	server := mcpserver.NewServer(version, newLogger(c, cfg),
		lens.WithConfig(cfg),
		lens.WithConfigPath(path),
	)

	if err := server.Lens().WatchConfig(); err != nil && !errors.Is(err, lens.ErrNoConfigFile) {
		return fmt.Errorf("watching config: %w", err)
	}
	ctx := context.Background()
	if err := server.Lens().Start(ctx, c.String("active")); err != nil {
		return err
	}
	return server.Run(ctx)
}

func runMCPManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(data))
	return nil
}
