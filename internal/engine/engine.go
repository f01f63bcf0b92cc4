// Package engine is the serialized owner of the clipboard-history core.
// One mutex guards the store, search, and friction detector; the watcher
// and the URL-title fetcher hand their results back in through it, so
// none of the owned components need locking of their own.
package engine

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/hpungsan/clipd/internal/clip"
	"github.com/hpungsan/clipd/internal/config"
	"github.com/hpungsan/clipd/internal/friction"
	"github.com/hpungsan/clipd/internal/history"
	"github.com/hpungsan/clipd/internal/search"
	"github.com/hpungsan/clipd/internal/watch"
)

// titleFetchTimeout bounds a URL-title fetch; a slow page must never
// hold resources long after the entry stopped mattering.
const titleFetchTimeout = 10 * time.Second

// Engine wires the core components behind the external surface the UI
// and platform collaborators consume.
type Engine struct {
	mu sync.Mutex

	cfg      *config.Config
	store    *history.Store
	friction *friction.Detector
	watcher  *watch.Watcher
	board    watch.Clipboard

	titleClient *http.Client
	enrich      bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithURLTitleEnrichment toggles out-of-band page-title fetching for
// url-kind captures. Off by default: CLI one-shot commands have no
// session to enrich.
func WithURLTitleEnrichment(enabled bool) Option {
	return func(e *Engine) { e.enrich = enabled }
}

// WithTitleClient overrides the HTTP client used for title fetches.
func WithTitleClient(client *http.Client) Option {
	return func(e *Engine) { e.titleClient = client }
}

// New creates an Engine. persist may be nil for an in-memory session;
// cb may be nil when watching is never started (pure CLI use).
func New(cfg *config.Config, persist history.Persistence, cb watch.Clipboard, opts ...Option) *Engine {
	e := &Engine{
		cfg:         cfg,
		store:       history.New(cfg, persist),
		friction:    friction.New(),
		titleClient: &http.Client{Timeout: titleFetchTimeout},
	}
	if cb != nil {
		e.board = cb
		e.watcher = watch.New(cb, cfg.PollInterval(), cfg.MinImagePx, e.onCaptured)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartWatching begins clipboard monitoring. Idempotent.
func (e *Engine) StartWatching() {
	if e.watcher != nil {
		e.watcher.Start()
	}
}

// StopWatching halts monitoring; no capture lands after it returns.
// Idempotent. Called without holding the engine lock: the poll goroutine
// may be blocked on that lock mid-capture, and Stop waits for it.
func (e *Engine) StopWatching() {
	if e.watcher != nil {
		e.watcher.Stop()
	}
}

// Watching reports whether the clipboard poll is running.
func (e *Engine) Watching() bool {
	return e.watcher != nil && e.watcher.Watching()
}

// onCaptured receives watcher events on the poll goroutine and applies
// them under the engine lock.
func (e *Engine) onCaptured(c watch.Captured) {
	e.mu.Lock()
	entry, err := e.store.Add(c.Payload, c.Kind, c.Source)
	e.mu.Unlock()

	if err != nil {
		// Oversized or empty payloads are dropped by design; the store
		// already logged the interesting cases.
		return
	}
	e.maybeEnrich(entry)
}

// Add captures content directly, outside the watcher path. Returns a
// snapshot; later enrichment is visible through Get, not the returned
// value.
func (e *Engine) Add(p clip.Payload, kind clip.Kind, src *clip.SourceApp) (clip.Entry, error) {
	e.mu.Lock()
	entry, err := e.store.Add(p, kind, src)
	var snap clip.Entry
	if err == nil {
		snap = *entry
	}
	e.mu.Unlock()

	if err != nil {
		return clip.Entry{}, err
	}
	e.maybeEnrich(entry)
	return snap, nil
}

// Delete removes one entry; no-op if absent.
func (e *Engine) Delete(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Delete(id)
}

// Clear removes all entries.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Clear()
}

// FetchAll returns the history, newest first, truncated to the
// effective limit.
func (e *Engine) FetchAll() []clip.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.FetchAll()
}

// Get returns one entry by id.
func (e *Engine) Get(id string) (clip.Entry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(id)
}

// Search ranks the current history window against a query.
func (e *Engine) Search(query string) []clip.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return search.Filter(e.store.FetchAll(), query)
}

// TrackActivation records an explicit "item used" event: the entry's
// use counter and recency update, the friction detector sees the click,
// and the content goes back on the clipboard when the adapter supports
// writes.
func (e *Engine) TrackActivation(id string) bool {
	e.mu.Lock()
	if !e.store.Touch(id) {
		e.mu.Unlock()
		return false
	}
	e.friction.TrackClick(id)
	entry, _ := e.store.Get(id)
	e.mu.Unlock()

	// The clipboard write happens outside the lock; the watcher will see
	// the change next tick and refresh the entry as a duplicate.
	if w, ok := e.board.(watch.Writer); ok {
		if err := w.Write(entry.Payload.Display()); err != nil {
			log.Printf("engine: clipboard write failed: %v", err)
		}
	}
	return true
}

// ShouldShowFrictionGuide reads the friction detector's suggestion
// signal.
func (e *Engine) ShouldShowFrictionGuide() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.friction.ShouldShowGuide()
}

// DismissFrictionGuide records that the user waved the suggestion away.
func (e *Engine) DismissFrictionGuide() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.friction.UserDismissedGuide()
}

// MarkFrictionGuideShown counts one on-screen appearance of the guide.
func (e *Engine) MarkFrictionGuideShown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.friction.MarkGuideShown()
}

// ResetFrictionDetection clears a pending detection that no longer
// applies, for example after the history window closed.
func (e *Engine) ResetFrictionDetection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.friction.ResetDetection()
}

// SetEnhancedPasteActive feeds the capability signal the guide is
// gated on: an active enhanced paste suppresses the suggestion.
func (e *Engine) SetEnhancedPasteActive(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.friction.SetEnhancedPasteActive(active)
}

// AcceptFrictionGuide records that the user took the suggestion.
func (e *Engine) AcceptFrictionGuide() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.friction.UserAcceptedGuide()
}

// FrictionState exposes the detector state for status surfaces.
func (e *Engine) FrictionState() friction.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.friction.State()
}

// SetPro updates the externally supplied subscription capability; the
// effective history limit follows on the next read.
func (e *Engine) SetPro(pro bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.SetPro(pro)
}

// Stats summarizes the live history.
func (e *Engine) Stats() history.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.CollectStats()
}

// maybeEnrich kicks off a one-shot URL-title fetch for a url-kind entry.
// Runs out-of-band; the result re-enters through the engine lock. A
// failed or slow fetch never blocks capture or search.
func (e *Engine) maybeEnrich(entry *clip.Entry) {
	if !e.enrich || entry.Kind != clip.KindURL {
		return
	}

	e.mu.Lock()
	first := entry.URLTitle == nil && e.store.MarkEnrichAttempt(entry.ContentHash)
	e.mu.Unlock()
	if !first {
		return
	}

	id := entry.ID
	rawURL := entry.Payload.Display()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), titleFetchTimeout)
		defer cancel()

		title, err := history.FetchURLTitle(ctx, e.titleClient, rawURL)
		if err != nil {
			log.Printf("engine: url title fetch failed: %v", err)
			return
		}

		e.mu.Lock()
		e.store.SetURLTitle(id, title)
		e.mu.Unlock()
	}()
}
