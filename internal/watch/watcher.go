// Package watch polls the system clipboard for changes and turns them
// into typed capture events.
package watch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hpungsan/clipd/internal/clip"
)

// Clipboard abstracts the platform pasteboard. Implementations can poll
// a native change counter or derive a token from content.
type Clipboard interface {
	// ChangeToken returns an opaque token that differs whenever the
	// clipboard content has changed.
	ChangeToken() (string, error)

	// Files returns the file-path representation, if present.
	Files() ([]string, bool)

	// Image returns the PNG-encoded image representation with its pixel
	// dimensions, if present. Adapters normalize to PNG before handing
	// bytes over.
	Image() (data []byte, width, height int, ok bool)

	// Text returns the string representation, if present.
	Text() (string, bool)

	// SourceApp identifies the producing application, when the platform
	// exposes it.
	SourceApp() *clip.SourceApp
}

// Writer is implemented by clipboards that accept writes. Activating a
// history entry puts its content back on the clipboard through this.
type Writer interface {
	Write(text string) error
}

// Captured is one clipboard change, already typed and classified.
// Exactly one Captured is emitted per clipboard change even when several
// representations are present at once.
type Captured struct {
	Payload clip.Payload
	Kind    clip.Kind
	Source  *clip.SourceApp
}

// Watcher is a two-state machine (idle, monitoring) around a
// fixed-interval clipboard poll. Start and Stop are idempotent, and no
// capture is delivered after Stop returns.
type Watcher struct {
	cb         Clipboard
	interval   time.Duration
	minImagePx int
	emit       func(Captured)

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	lastToken string
}

// New creates a Watcher in the idle state. emit is called from the poll
// goroutine, one call per clipboard change.
func New(cb Clipboard, interval time.Duration, minImagePx int, emit func(Captured)) *Watcher {
	return &Watcher{
		cb:         cb,
		interval:   interval,
		minImagePx: minImagePx,
		emit:       emit,
	}
}

// Watching reports whether the watcher is in the monitoring state.
func (w *Watcher) Watching() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancel != nil
}

// Start transitions idle to monitoring: the current change token is
// recorded as the baseline so pre-existing clipboard content is not
// captured, then the poll begins. Calling Start while monitoring is a
// no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	if token, err := w.cb.ChangeToken(); err == nil {
		w.lastToken = token
	} else {
		w.lastToken = ""
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.loop(ctx, w.done)
}

// Stop transitions monitoring to idle and waits for the poll goroutine
// to exit, so no queued capture fires after Stop returns. Calling Stop
// while idle is a no-op.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *Watcher) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.poll(ctx)
		}
	}
}

// poll runs one tick: compare change tokens, and on a change extract the
// highest-priority representation (files > image > text), classify, and
// emit. Read failures are ignored; the next tick retries.
func (w *Watcher) poll(ctx context.Context) {
	token, err := w.cb.ChangeToken()
	if err != nil {
		return
	}
	if token == w.lastToken {
		return
	}
	w.lastToken = token

	captured, ok := w.extract()
	if !ok {
		return
	}

	// A Stop racing the extraction must win: never emit once cancelled.
	if ctx.Err() != nil {
		return
	}
	w.emit(captured)
}

// extract picks one representation per change, in priority order.
func (w *Watcher) extract() (Captured, bool) {
	src := w.cb.SourceApp()

	if paths, ok := w.cb.Files(); ok && len(paths) > 0 {
		return Captured{
			Payload: clip.FilePayload{Paths: paths},
			Kind:    clip.KindFile,
			Source:  src,
		}, true
	}

	if data, width, height, ok := w.cb.Image(); ok {
		if width < w.minImagePx || height < w.minImagePx {
			// Tiny images are UI chrome (cursors, favicons), not content.
			log.Printf("watch: dropping %dx%d image below %dpx floor", width, height, w.minImagePx)
			return Captured{}, false
		}
		return Captured{
			Payload: clip.ImagePayload{Data: data, Width: width, Height: height},
			Kind:    clip.KindImage,
			Source:  src,
		}, true
	}

	if text, ok := w.cb.Text(); ok {
		text = clip.NormalizeText(text)
		if text == "" {
			return Captured{}, false
		}
		return Captured{
			Payload: clip.TextPayload{Text: text},
			Kind:    clip.Classify(text),
			Source:  src,
		}, true
	}

	return Captured{}, false
}
