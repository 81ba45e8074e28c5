package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/radonlens/internal/lens"
	"github.com/panbanda/radonlens/internal/output"
	"github.com/panbanda/radonlens/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Watch a directory and re-annotate Python files as they change",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "debounce",
				Usage: "Quiet period before a change is processed (default: watch.debounce_ms)",
			},
			&cli.BoolFlag{
				Name:  "initial",
				Usage: "Annotate every Python file once before watching",
			},
		},
		Action: runWatchCmd,
	}
}

func runWatchCmd(c *cli.Context) error {
	paths := getPaths(c)
	svc, cfg, err := newLens(c)
	if err != nil {
		return err
	}
	defer svc.Shutdown()

	debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
	if c.IsSet("debounce") {
		debounce = c.Duration("debounce")
	}

	watcher, err := watch.NewWatcher(paths[0], cfg, debounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()
	watcher.SetLogger(newLogger(c, cfg))

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := svc.WatchConfig(); err != nil && !errors.Is(err, lens.ErrNoConfigFile) {
		return fmt.Errorf("watching config: %w", err)
	}

	var printMu sync.Mutex
	svc.OnChange(func(id string) {
		printMu.Lock()
		defer printMu.Unlock()
		if id == "" {
			if formatter.Format() != output.FormatText {
				return
			}
			if svc.Enabled() {
				formatter.Info("Annotations enabled")
			} else {
				formatter.Info("Annotations disabled")
			}
			return
		}
		if err := printDocument(svc, formatter, id); err != nil {
			formatter.Error("%s: %v", id, err)
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher.SetCallback(func(ch watch.Change) {
		if err := applyChange(ctx, svc, ch); err != nil {
			printMu.Lock()
			formatter.Error("%s %s: %v", ch.Kind, ch.Path, err)
			printMu.Unlock()
		}
	})

	files, err := watcher.Seed()
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", watcher.Root(), err)
	}
	if c.Bool("initial") {
		for _, f := range files {
			if _, err := svc.OpenFile(ctx, f); err != nil {
				formatter.Error("%s: %v", f, err)
			}
		}
	}
	color.New(color.FgCyan).Fprintf(c.App.ErrWriter, "Watching %s (%d directories, %d Python files). Press Ctrl+C to stop.\n",
		watcher.Root(), len(watcher.WatchedDirs()), len(files))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(c.App.ErrWriter, "\nStopping watch...")
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := watcher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// applyChange forwards a filesystem change to the lens as a lifecycle event.
func applyChange(ctx context.Context, svc *lens.Service, ch watch.Change) error {
	var err error
	switch ch.Kind {
	case watch.Opened:
		_, err = svc.Open(ctx, ch.Path, ch.Content)
	case watch.Saved:
		_, err = svc.Save(ctx, ch.Path, ch.Content)
	case watch.Closed:
		_, err = svc.Close(ctx, ch.Path)
	}
	return err
}

// printDocument renders the current report of one document.
func printDocument(svc *lens.Service, formatter *output.Formatter, id string) error {
	annotations, err := svc.Annotations(id)
	if err != nil {
		return err
	}
	report := &output.DocumentReport{Document: id, Annotations: annotations}
	if st, ok := svc.StatusOf(id); ok {
		report.Status = &st
	}
	return formatter.Output(report)
}
