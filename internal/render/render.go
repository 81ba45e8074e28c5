// Package render turns cached radon metrics into inline annotations and a
// maintainability status indicator.
package render

import (
	"sync"

	"github.com/panbanda/radonlens/internal/cache"
	"github.com/panbanda/radonlens/pkg/document"
	"github.com/panbanda/radonlens/pkg/models"
)

// Annotation is one inline note attached to a text range.
type Annotation struct {
	Range   models.Range `json:"range" toon:"range"`
	Rank    string       `json:"rank,omitempty" toon:"rank,omitempty"`
	Title   string       `json:"title" toon:"title"`
	Tooltip string       `json:"tooltip" toon:"tooltip"`
}

// Buffers gives access to the live text of open documents.
type Buffers interface {
	Get(id string) (*document.Document, bool)
}

// Renderer reads the cache and produces annotations on request.
type Renderer struct {
	cache   *cache.Cache
	buffers Buffers
	enabled func() bool

	mu       sync.RWMutex
	status   Status
	onStatus []func(Status)
}

// New creates a renderer. enabled is consulted on every render.
func New(c *cache.Cache, buffers Buffers, enabled func() bool) *Renderer {
	if enabled == nil {
		enabled = func() bool { return true }
	}
	return &Renderer{cache: c, buffers: buffers, enabled: enabled}
}

// OnStatus registers fn to be called whenever the status indicator is updated.
func (r *Renderer) OnStatus(fn func(Status)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onStatus = append(r.onStatus, fn)
}

// Status returns the last indicator produced by Render.
func (r *Renderer) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// Render returns the annotations of id: one per resolved rating, closures
// included, followed by the file's maintainability on its first word.
// Nothing is rendered, and the indicator is left alone, when rendering is
// disabled or the document has no ratings or maintainability cached.
func (r *Renderer) Render(id string) []Annotation {
	if !r.enabled() {
		return []Annotation{}
	}
	snap, ok := r.cache.Snapshot(id)
	if !ok || len(snap.Ratings) == 0 {
		return []Annotation{}
	}

	r.updateStatus(StatusFor(id, snap.Maintainability))

	annotations := make([]Annotation, 0, models.CountRatings(snap.Ratings)+1)
	for _, rating := range snap.Ratings {
		rating.Walk(func(x models.Rating) {
			if !x.Resolved() {
				return
			}
			msg := RatingMessage(x)
			annotations = append(annotations, Annotation{Range: *x.Range, Rank: x.Rank, Title: msg, Tooltip: msg})
		})
	}

	doc, ok := r.buffers.Get(id)
	if !ok {
		return annotations
	}
	anchor, ok := doc.FirstWordRange()
	if !ok {
		return annotations
	}
	msg := MaintainabilityMessage(doc.Basename(), snap.Maintainability)
	return append(annotations, Annotation{
		Range:   anchor,
		Rank:    snap.Maintainability.Rank,
		Title:   msg,
		Tooltip: msg + "\n\n" + SourceInfoSummary(snap.SourceInfo),
	})
}

func (r *Renderer) updateStatus(s Status) {
	r.mu.Lock()
	r.status = s
	listeners := append([]func(Status){}, r.onStatus...)
	r.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}
