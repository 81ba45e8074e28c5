package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/radonlens/pkg/radon"
)

func enableCmd() *cli.Command {
	return &cli.Command{
		Name:  "enable",
		Usage: "Turn annotations on and save the choice to the config file",
		Action: func(c *cli.Context) error {
			return setEnabled(c, true)
		},
	}
}

func disableCmd() *cli.Command {
	return &cli.Command{
		Name:  "disable",
		Usage: "Turn annotations off and save the choice to the config file",
		Action: func(c *cli.Context) error {
			return setEnabled(c, false)
		},
	}
}

func setEnabled(c *cli.Context, enabled bool) error {
	svc, cfg, err := newLens(c)
	if err != nil {
		return err
	}
	defer svc.Shutdown()

	if svc.ConfigPath() == "" {
		return fmt.Errorf("no config file found; run 'radonlens config init' first")
	}
	if err := svc.SetEnabled(enabled); err != nil {
		return err
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	messages(c, cfg).Success("Annotations %s in %s", state, svc.ConfigPath())
	return nil
}

func installCmd() *cli.Command {
	return &cli.Command{
		Name:  "install",
		Usage: "Install radon with the configured install command",
		Description: `Runs radon.install_command through the shell, then checks that the
installed radon meets the minimum version.`,
		Action: runInstallCmd,
	}
}

func runInstallCmd(c *cli.Context) error {
	svc, cfg, err := newLens(c)
	if err != nil {
		return err
	}
	defer svc.Shutdown()

	ctx := context.Background()
	fmt.Fprintf(c.App.ErrWriter, "Running: %s\n", svc.InstallCommand())
	out, err := svc.Install(ctx)
	if out != "" {
		fmt.Fprint(c.App.ErrWriter, out)
	}
	if err != nil {
		return err
	}
	v, err := svc.Version(ctx)
	if err != nil {
		return err
	}
	messages(c, cfg).Success("radon %s installed", v)
	return nil
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Aliases: []string{"check"},
		Usage:   "Print the radonlens version and check the installed radon",
		Action:  runVersionCmd,
	}
}

func runVersionCmd(c *cli.Context) error {
	fmt.Fprintf(c.App.Writer, "radonlens %s\n", version)

	svc, cfg, err := newLens(c)
	if err != nil {
		return err
	}
	defer svc.Shutdown()

	v, err := svc.Version(context.Background())
	if err != nil {
		var rerr *radon.Error
		if errors.As(err, &rerr) {
			for _, fix := range rerr.SuggestedFixes {
				fmt.Fprintf(c.App.ErrWriter, "  - %s: %s%s\n", fix.Label, fix.Setting, fix.Command)
			}
		}
		return err
	}
	messages(c, cfg).Success("%s %s (minimum %s)", svc.Executable(), v, radon.MinVersion)
	return nil
}
