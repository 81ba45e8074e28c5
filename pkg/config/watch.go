package config

import (
	"fmt"
	"path/filepath"

	"github.com/knadh/koanf/providers/file"
)

// Reloader reloads a config file whenever it changes on disk.
type Reloader struct {
	path     string
	provider *file.File
}

// Watch starts watching path and calls onChange with the reloaded config.
// onChange receives an error when the file was removed or no longer parses;
// a removed file stops the watch.
func Watch(path string, onChange func(*Config, error)) (*Reloader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	r := &Reloader{path: abs, provider: file.Provider(abs)}
	err = r.provider.Watch(func(_ interface{}, err error) {
		if err != nil {
			onChange(nil, err)
			return
		}
		onChange(Load(abs))
	})
	if err != nil {
		return nil, fmt.Errorf("watching %s: %w", abs, err)
	}
	return r, nil
}

// Path returns the watched file.
func (r *Reloader) Path() string {
	return r.path
}

// Close stops watching.
func (r *Reloader) Close() error {
	return r.provider.Unwatch()
}
