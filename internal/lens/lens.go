// Package lens wires the radon gateway, document buffers, metrics cache,
// refresh orchestrator and renderer into one service that hosts drive with
// editor lifecycle events.
package lens

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/panbanda/radonlens/internal/cache"
	"github.com/panbanda/radonlens/internal/logging"
	"github.com/panbanda/radonlens/internal/refresh"
	"github.com/panbanda/radonlens/internal/render"
	"github.com/panbanda/radonlens/pkg/config"
	"github.com/panbanda/radonlens/pkg/document"
	"github.com/panbanda/radonlens/pkg/radon"
)

// Service is the radon lens for a set of open documents.
type Service struct {
	config     *config.Config
	configPath string
	notifier   refresh.Notifier
	logger     *slog.Logger
	runner     radon.Runner
	radonOpts  []radon.Option

	gateway  *radon.Client
	buffers  *document.Store
	cache    *cache.Cache
	orch     *refresh.Orchestrator
	renderer *render.Renderer

	mu       sync.RWMutex
	active   string
	enabled  bool
	reloader *config.Reloader
	onChange []func(id string)
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithConfigPath sets the file that SetEnabled persists to and WatchConfig reloads.
func WithConfigPath(path string) Option {
	return func(s *Service) {
		s.configPath = path
	}
}

// WithNotifier sets where refresh failures are reported.
func WithNotifier(n refresh.Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithRunner sets the process runner used for radon and the install command.
func WithRunner(r radon.Runner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithRadonOptions passes extra options to the radon client.
func WithRadonOptions(opts ...radon.Option) Option {
	return func(s *Service) {
		s.radonOpts = append(s.radonOpts, opts...)
	}
}

// New creates a lens service.
func New(opts ...Option) *Service {
	s := &Service{
		notifier: refresh.NopNotifier{},
		logger:   logging.NewDiscardLogger(),
		runner:   radon.ExecRunner{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config, s.configPath = config.LoadOrDefault()
	}
	s.enabled = s.config.Radon.Enable

	radonOpts := append([]radon.Option{
		radon.WithRunner(s.runner),
		radon.WithLogger(s.logger),
		radon.WithInstallCommand(s.config.Radon.InstallCommand),
	}, s.radonOpts...)
	s.gateway = radon.New(s.config.Radon.Executable, radonOpts...)
	s.buffers = document.NewStore()
	s.cache = cache.New()
	s.orch = refresh.New(s.gateway, s.buffers, s.cache,
		refresh.WithNotifier(s.notifier),
		refresh.WithLogger(s.logger),
	)
	s.orch.OnChange(s.emit)
	s.renderer = render.New(s.cache, s.buffers, s.Enabled)
	return s
}

// Start focuses the initially active document, if any, so its metrics are
// computed right away.
func (s *Service) Start(ctx context.Context, active string) error {
	if active == "" {
		return nil
	}
	_, err := s.Focus(ctx, active)
	return err
}

// OnChange registers fn to be called with the id of every document whose
// annotations changed. An empty id means all documents.
func (s *Service) OnChange(fn func(id string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// OnStatus registers fn to be called whenever the status indicator changes.
func (s *Service) OnStatus(fn func(render.Status)) {
	s.renderer.OnStatus(fn)
}

func (s *Service) emit(id string) {
	s.mu.RLock()
	listeners := append([]func(string){}, s.onChange...)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(id)
	}
}

func (s *Service) handle(ctx context.Context, kind refresh.EventKind, id string) error {
	return s.orch.Handle(ctx, refresh.Event{Kind: kind, Document: id})
}

// Open registers a document with its text and schedules a refresh.
func (s *Service) Open(ctx context.Context, path, text string) (string, error) {
	id, err := document.NormalizeID(path)
	if err != nil {
		return "", err
	}
	s.buffers.Open(id, text)
	return id, s.handle(ctx, refresh.Opened, id)
}

// OpenFile opens a document with its content read from disk.
func (s *Service) OpenFile(ctx context.Context, path string) (string, error) {
	text, err := readText(path)
	if err != nil {
		return "", err
	}
	return s.Open(ctx, path, text)
}

// Save records the saved text of a document and schedules a refresh.
func (s *Service) Save(ctx context.Context, path, text string) (string, error) {
	id, err := document.NormalizeID(path)
	if err != nil {
		return "", err
	}
	s.buffers.Update(id, text)
	return id, s.handle(ctx, refresh.Saved, id)
}

// Edit records unsaved text. The document's ratings are cleared until the
// next save, since their positions no longer match the buffer.
func (s *Service) Edit(ctx context.Context, path, text string) (string, error) {
	id, err := document.NormalizeID(path)
	if err != nil {
		return "", err
	}
	if _, changed := s.buffers.Update(id, text); !changed {
		return id, nil
	}
	return id, s.handle(ctx, refresh.Edited, id)
}

// Focus makes a document the active one and schedules a refresh. A document
// that was never opened is read from disk.
func (s *Service) Focus(ctx context.Context, path string) (string, error) {
	id, err := document.NormalizeID(path)
	if err != nil {
		return "", err
	}
	if _, ok := s.buffers.Get(id); !ok {
		text, err := readText(id)
		if err != nil {
			return "", err
		}
		s.buffers.Open(id, text)
	}
	s.mu.Lock()
	s.active = id
	s.mu.Unlock()
	return id, s.handle(ctx, refresh.ActiveChanged, id)
}

// Close forgets a document and its metrics. The buffer goes first so a
// refresh that has not started yet finds the document closed.
func (s *Service) Close(ctx context.Context, path string) (string, error) {
	id, err := document.NormalizeID(path)
	if err != nil {
		return "", err
	}
	s.buffers.Close(id)
	s.mu.Lock()
	if s.active == id {
		s.active = ""
	}
	s.mu.Unlock()
	return id, s.handle(ctx, refresh.Closed, id)
}

// Dispatch delivers a lifecycle event by kind. text is used by Opened,
// Saved and Edited; an empty text on Opened or Saved reads the file.
func (s *Service) Dispatch(ctx context.Context, kind refresh.EventKind, path, text string) (string, error) {
	switch kind {
	case refresh.Opened:
		if text == "" {
			return s.OpenFile(ctx, path)
		}
		return s.Open(ctx, path, text)
	case refresh.Saved:
		if text == "" {
			t, err := readText(path)
			if err != nil {
				return "", err
			}
			text = t
		}
		return s.Save(ctx, path, text)
	case refresh.Edited:
		return s.Edit(ctx, path, text)
	case refresh.ActiveChanged:
		return s.Focus(ctx, path)
	case refresh.Closed:
		return s.Close(ctx, path)
	default:
		return "", fmt.Errorf("unsupported lifecycle event %s", kind)
	}
}

// Refresh opens path from disk when needed and refreshes it synchronously.
func (s *Service) Refresh(ctx context.Context, path string) (string, error) {
	id, err := document.NormalizeID(path)
	if err != nil {
		return "", err
	}
	if _, ok := s.buffers.Get(id); !ok {
		text, err := readText(id)
		if err != nil {
			return id, err
		}
		s.buffers.Open(id, text)
	}
	return id, s.orch.Refresh(ctx, id)
}

// Annotations renders the annotations of a document. Rendering also moves
// the status indicator to that document.
func (s *Service) Annotations(path string) ([]render.Annotation, error) {
	id, err := document.NormalizeID(path)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(id), nil
}

// Status returns the status indicator of the last rendered document.
func (s *Service) Status() render.Status {
	return s.renderer.Status()
}

// StatusOf builds the status indicator of one document without touching the
// shared indicator.
func (s *Service) StatusOf(path string) (render.Status, bool) {
	id, err := document.NormalizeID(path)
	if err != nil {
		return render.Status{}, false
	}
	snap, ok := s.cache.Snapshot(id)
	if !ok || !s.Enabled() {
		return render.Status{}, false
	}
	return render.StatusFor(id, snap.Maintainability), true
}

// State returns the refresh state of a document.
func (s *Service) State(path string) refresh.State {
	id, err := document.NormalizeID(path)
	if err != nil {
		return refresh.Idle
	}
	return s.orch.State(id)
}

// Active returns the id of the active document, or "" when none is.
func (s *Service) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Documents returns the ids of all open documents.
func (s *Service) Documents() []string {
	return s.buffers.IDs()
}

// CacheStats returns counters about the metrics cache.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.GetStats()
}

// Enabled reports whether annotations are rendered.
func (s *Service) Enabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// SetEnabled turns rendering on or off and persists the choice to the
// config file when one is known. Every document is signalled as changed.
func (s *Service) SetEnabled(enabled bool) error {
	s.mu.Lock()
	s.enabled = enabled
	s.config.Radon.Enable = enabled
	cfg := *s.config
	path := s.configPath
	s.mu.Unlock()

	s.emit("")
	if path == "" {
		return nil
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

// ConfigPath returns the config file in use, or "" when running on defaults.
func (s *Service) ConfigPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.configPath
}

// Executable returns the configured radon executable.
func (s *Service) Executable() string {
	return s.gateway.Executable()
}

// Version runs the version gate and returns the installed radon version.
func (s *Service) Version(ctx context.Context) (radon.Version, error) {
	return s.gateway.CheckVersion(ctx)
}

// Wait blocks until scheduled refreshes finish.
func (s *Service) Wait() {
	s.orch.Wait()
}

// Shutdown stops watching the config file and waits for scheduled refreshes.
func (s *Service) Shutdown() error {
	s.mu.Lock()
	r := s.reloader
	s.reloader = nil
	s.mu.Unlock()

	s.orch.Wait()
	if r != nil {
		return r.Close()
	}
	return nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
