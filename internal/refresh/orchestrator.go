// Package refresh keeps the metrics cache in step with document lifecycle events.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/pool"

	"github.com/panbanda/radonlens/internal/cache"
	"github.com/panbanda/radonlens/pkg/document"
	"github.com/panbanda/radonlens/pkg/models"
	"github.com/panbanda/radonlens/pkg/radon"
)

// Gateway runs the radon queries a refresh needs.
type Gateway interface {
	CheckVersion(ctx context.Context) (radon.Version, error)
	QueryComplexity(ctx context.Context, path string) ([]models.Rating, error)
	QueryMaintainability(ctx context.Context, path string) (models.Maintainability, error)
	QuerySourceInfo(ctx context.Context, path string) (models.SourceInfo, error)
}

// Buffers gives access to the live text of open documents.
type Buffers interface {
	Get(id string) (*document.Document, bool)
}

// Notifier surfaces refresh failures to the user.
type Notifier interface {
	// Remediate offers the error's suggested fixes.
	Remediate(ctx context.Context, err *radon.Error)
	// Error shows a plain failure message.
	Error(ctx context.Context, message string)
}

// NopNotifier drops all notifications.
type NopNotifier struct{}

func (NopNotifier) Remediate(context.Context, *radon.Error) {}
func (NopNotifier) Error(context.Context, string)           {}

type docState struct {
	gen   uint64
	state State
}

// Orchestrator dispatches lifecycle events to cache updates and refreshes.
type Orchestrator struct {
	gateway  Gateway
	buffers  Buffers
	cache    *cache.Cache
	notifier Notifier
	logger   *slog.Logger
	handlers map[EventKind]func(context.Context, string)

	mu      sync.Mutex
	docs    map[string]*docState
	nextGen uint64

	listenersMu sync.RWMutex
	listeners   []func(id string)

	inflight conc.WaitGroup
}

// Option is a functional option for configuring Orchestrator.
type Option func(*Orchestrator)

// WithNotifier sets where refresh failures are reported.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// WithLogger sets the orchestrator logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// New creates an orchestrator writing into c.
func New(gw Gateway, buffers Buffers, c *cache.Cache, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway:  gw,
		buffers:  buffers,
		cache:    c,
		notifier: NopNotifier{},
		logger:   slog.New(slog.DiscardHandler),
		docs:     make(map[string]*docState),
	}
	o.handlers = map[EventKind]func(context.Context, string){
		Opened:        o.startRefresh,
		Saved:         o.startRefresh,
		ActiveChanged: o.startRefresh,
		Edited:        o.invalidate,
		Closed:        o.evict,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// OnChange registers fn to be called with the document ID whenever its
// annotations may have changed.
func (o *Orchestrator) OnChange(fn func(id string)) {
	o.listenersMu.Lock()
	defer o.listenersMu.Unlock()
	o.listeners = append(o.listeners, fn)
}

func (o *Orchestrator) emit(id string) {
	o.listenersMu.RLock()
	listeners := append([]func(string){}, o.listeners...)
	o.listenersMu.RUnlock()
	for _, fn := range listeners {
		fn(id)
	}
}

// Handle dispatches ev. Refreshes run in the background; use Wait to block on them.
// Closed is expected after the document's buffer was closed.
func (o *Orchestrator) Handle(ctx context.Context, ev Event) error {
	h, ok := o.handlers[ev.Kind]
	if !ok {
		return fmt.Errorf("no handler for %s", ev.Kind)
	}
	o.logger.Debug("lifecycle event", "event", ev.Kind.String(), "document", ev.Document)
	h(ctx, ev.Document)
	return nil
}

// Wait blocks until every background refresh has finished.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// State returns the refresh state of id.
func (o *Orchestrator) State(id string) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if ds, ok := o.docs[id]; ok {
		return ds.state
	}
	return Idle
}

func (o *Orchestrator) startRefresh(ctx context.Context, id string) {
	// Radon processes outlive the request that triggered them.
	ctx = context.WithoutCancel(ctx)
	o.inflight.Go(func() {
		_ = o.Refresh(ctx, id)
	})
}

func (o *Orchestrator) invalidate(_ context.Context, id string) {
	o.cache.ClearRatings(id)
	o.emit(id)
}

func (o *Orchestrator) evict(_ context.Context, id string) {
	o.mu.Lock()
	delete(o.docs, id)
	o.cache.Evict(id)
	o.mu.Unlock()
}

// Refresh runs a full refresh of id and waits for it. Failures are reported
// to the notifier and returned; the cache is left untouched on failure.
func (o *Orchestrator) Refresh(ctx context.Context, id string) error {
	err := o.refresh(ctx, id)
	if err != nil {
		o.logger.Warn("refresh failed", "document", id, "error", err)
		o.report(ctx, err)
	}
	return err
}

func (o *Orchestrator) refresh(ctx context.Context, id string) error {
	gen, ok := o.begin(id)
	if !ok {
		o.logger.Debug("skipping refresh of closed document", "document", id)
		return nil
	}
	defer o.finish(id, gen)

	if _, err := o.gateway.CheckVersion(ctx); err != nil {
		return err
	}

	o.transition(id, gen, Querying)
	var (
		ratings []models.Rating
		mi      models.Maintainability
		info    models.SourceInfo
	)
	p := pool.New().WithContext(ctx).WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		ratings, err = o.gateway.QueryComplexity(ctx, id)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		mi, err = o.gateway.QueryMaintainability(ctx, id)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		info, err = o.gateway.QuerySourceInfo(ctx, id)
		return err
	})
	if err := p.Wait(); err != nil {
		return err
	}

	o.transition(id, gen, Resolving)
	doc, ok := o.buffers.Get(id)
	if !ok {
		o.logger.Debug("document closed before resolution", "document", id)
		return nil
	}
	snap := models.Snapshot{
		Ratings:         document.ResolveRatings(doc, ratings),
		Maintainability: mi,
		SourceInfo:      info,
	}
	if !o.commit(id, gen, snap) {
		o.logger.Debug("discarding superseded refresh", "document", id, "generation", gen)
		return nil
	}
	o.logger.Debug("refreshed", "document", id, "ratings", len(snap.Ratings), "mi", mi.Index)
	o.emit(id)
	return nil
}

// begin starts a new generation for id. It refuses documents that are not
// open, so a refresh scheduled before a close never recreates their state.
func (o *Orchestrator) begin(id string) (uint64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, open := o.buffers.Get(id); !open {
		return 0, false
	}
	o.nextGen++
	ds, ok := o.docs[id]
	if !ok {
		ds = &docState{}
		o.docs[id] = ds
	}
	ds.gen = o.nextGen
	ds.state = VersionChecking
	return ds.gen, true
}

// current reports whether gen is still the latest refresh of an open id.
// Callers hold o.mu.
func (o *Orchestrator) current(id string, gen uint64) (*docState, bool) {
	ds, ok := o.docs[id]
	if !ok || ds.gen != gen {
		return nil, false
	}
	return ds, true
}

func (o *Orchestrator) transition(id string, gen uint64, s State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if ds, ok := o.current(id, gen); ok {
		ds.state = s
	}
}

func (o *Orchestrator) commit(id string, gen uint64, snap models.Snapshot) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.current(id, gen); !ok {
		return false
	}
	o.cache.SetSnapshot(id, snap)
	return true
}

func (o *Orchestrator) finish(id string, gen uint64) {
	o.transition(id, gen, Idle)
}

func (o *Orchestrator) report(ctx context.Context, err error) {
	var rerr *radon.Error
	if errors.As(err, &rerr) && radon.IsRemediable(rerr) {
		o.notifier.Remediate(ctx, rerr)
		return
	}
	o.notifier.Error(ctx, err.Error())
}
