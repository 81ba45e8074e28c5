package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/radonlens/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the configuration loaded from --config, the first config file found
in the working directory, or the defaults.`,
				Action: runConfigShowCmd,
			},
			{
				Name:   "validate",
				Usage:  "Validate a configuration file",
				Action: runConfigValidateCmd,
			},
			{
				Name:      "init",
				Usage:     "Write a default configuration file",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: runConfigInitCmd,
			},
		},
	}
}

func runConfigShowCmd(c *cli.Context) error {
	cfg, path, err := loadConfig(c)
	if err != nil {
		return err
	}
	if path == "" {
		path = config.DefaultPath
		fmt.Fprintln(c.App.ErrWriter, "# No config file found, showing defaults")
	} else {
		fmt.Fprintf(c.App.ErrWriter, "# Loaded from %s\n", path)
	}
	data, err := cfg.Marshal(path)
	if err != nil {
		return err
	}
	fmt.Fprint(c.App.Writer, string(data))
	return nil
}

func runConfigValidateCmd(c *cli.Context) error {
	cfg, path, err := loadConfig(c)
	if err != nil {
		color.Red("Configuration validation failed:")
		return err
	}
	if err := cfg.Validate(); err != nil {
		color.Red("Configuration validation failed:")
		return err
	}
	if path != "" {
		messages(c, cfg).Success("Configuration valid: %s", path)
	} else {
		messages(c, cfg).Warning("No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigInitCmd(c *cli.Context) error {
	path := config.DefaultPath
	if c.Args().Len() > 0 {
		path = c.Args().First()
	}
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	messages(c, config.DefaultConfig()).Success("Wrote %s", path)
	return nil
}
