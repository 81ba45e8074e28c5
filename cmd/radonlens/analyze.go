package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/radonlens/internal/fileproc"
	"github.com/panbanda/radonlens/internal/lens"
	"github.com/panbanda/radonlens/internal/output"
	"github.com/panbanda/radonlens/internal/progress"
	"github.com/panbanda/radonlens/pkg/config"
	"github.com/panbanda/radonlens/pkg/watch"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Annotate Python files with radon complexity and maintainability",
		ArgsUsage: "[path...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of radon processes to run at once (default: number of CPUs)",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Do not show a progress bar",
			},
		},
		Action: runAnalyzeCmd,
	}
}

func runAnalyzeCmd(c *cli.Context) error {
	svc, cfg, err := newLens(c)
	if err != nil {
		return err
	}
	defer svc.Shutdown()

	files, err := collectFiles(getPaths(c), cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No Python files found")
		return nil
	}

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := svc.Version(ctx); err != nil {
		return err
	}

	tracker := progress.NewTrackerTo(c.App.ErrWriter, "Analyzing", len(files))
	if c.Bool("no-progress") {
		tracker = progress.Discard()
	}

	reports, errs := fileproc.ForEachFile(ctx, files, c.Int("workers"), func(ctx context.Context, path string) (output.DocumentReport, error) {
		return analyzeFile(ctx, svc, path)
	}, tracker.Tick)

	report := &output.AnalysisReport{Root: rootOf(getPaths(c))}
	next := 0
	for _, path := range files {
		if err, failed := errs.For(path); failed {
			report.Documents = append(report.Documents, output.DocumentReport{Document: path, Error: err.Error()})
			continue
		}
		report.Documents = append(report.Documents, reports[next])
		next++
	}

	if n := report.Failed(); n > 0 {
		tracker.FinishFailed(n)
	} else {
		tracker.Finish()
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()
	if err := formatter.Output(report); err != nil {
		return err
	}
	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d of %d files failed", n, len(files))
	}
	return nil
}

// analyzeFile refreshes one file and renders its report.
func analyzeFile(ctx context.Context, svc *lens.Service, path string) (output.DocumentReport, error) {
	id, err := svc.Refresh(ctx, path)
	if err != nil {
		return output.DocumentReport{}, err
	}
	annotations, err := svc.Annotations(id)
	if err != nil {
		return output.DocumentReport{}, err
	}
	report := output.DocumentReport{Document: id, Annotations: annotations}
	if st, ok := svc.StatusOf(id); ok {
		report.Status = &st
	}
	// Drop the buffer and cache entry; analyze never revisits a file.
	_, _ = svc.Close(ctx, id)
	return report, nil
}

// collectFiles expands paths into a sorted list of Python files. Directories
// are walked, skipping the configured excluded directories. Files named
// explicitly are kept whatever their extension.
func collectFiles(paths []string, cfg *config.Config) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		if !info.IsDir() {
			add(filepath.Clean(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if path != p && isExcludedDir(d.Name(), cfg) {
					return filepath.SkipDir
				}
				return nil
			}
			if watch.IsPython(path) && !cfg.ShouldExclude(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func isExcludedDir(name string, cfg *config.Config) bool {
	for _, dir := range cfg.Watch.Dirs {
		if name == dir {
			return true
		}
	}
	return false
}

func rootOf(paths []string) string {
	if len(paths) != 1 {
		return ""
	}
	abs, err := filepath.Abs(paths[0])
	if err != nil {
		return paths[0]
	}
	return abs
}
