package lens

import (
	"context"
	"errors"
	"fmt"

	"github.com/panbanda/radonlens/pkg/config"
)

// ErrNoConfigFile is returned by WatchConfig when the service runs on defaults.
var ErrNoConfigFile = errors.New("no config file to watch")

// WatchConfig reloads the config file whenever it changes. A new executable
// takes effect on the next refresh; a new enable flag re-renders every document.
func (s *Service) WatchConfig() error {
	path := s.ConfigPath()
	if path == "" {
		return ErrNoConfigFile
	}
	r, err := config.Watch(path, s.applyConfig)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.reloader = r
	s.mu.Unlock()
	return nil
}

func (s *Service) applyConfig(cfg *config.Config, err error) {
	if err != nil {
		s.logger.Warn("config reload failed", "path", s.ConfigPath(), "error", err)
		return
	}

	s.gateway.SetExecutable(cfg.Radon.Executable)
	s.gateway.SetInstallCommand(cfg.Radon.InstallCommand)

	s.mu.Lock()
	changed := s.enabled != cfg.Radon.Enable
	s.enabled = cfg.Radon.Enable
	s.config = cfg
	s.mu.Unlock()

	s.logger.Info("config reloaded", "executable", cfg.Radon.Executable, "enabled", cfg.Radon.Enable)
	if changed {
		s.emit("")
	}
}

// InstallCommand returns the command that installs radon.
func (s *Service) InstallCommand() string {
	return s.gateway.InstallCommand()
}

// Install runs the configured install command through the shell and returns
// its output. The memoized radon version is dropped so the next refresh
// checks the new installation.
func (s *Service) Install(ctx context.Context) (string, error) {
	cmd := s.InstallCommand()
	if cmd == "" {
		return "", errors.New("no install command configured")
	}
	s.logger.Info("installing radon", "command", cmd)
	out, err := s.runner.Run(ctx, "sh", "-c", cmd)
	if err != nil {
		return string(out), fmt.Errorf("installing radon: %w", err)
	}
	s.gateway.ResetVersion()
	return string(out), nil
}
