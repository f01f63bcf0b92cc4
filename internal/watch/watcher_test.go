package watch

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/hpungsan/clipd/internal/clip"
)

// fakeClipboard is a scriptable Clipboard.
type fakeClipboard struct {
	mu     sync.Mutex
	token  string
	err    error
	files  []string
	image  []byte
	width  int
	height int
	text   string
	source *clip.SourceApp
}

func (f *fakeClipboard) set(fn func(*fakeClipboard)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeClipboard) ChangeToken() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.err
}

func (f *fakeClipboard) Files() ([]string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files, f.files != nil
}

func (f *fakeClipboard) Image() ([]byte, int, int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.image, f.width, f.height, f.image != nil
}

func (f *fakeClipboard) Text() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, f.text != ""
}

func (f *fakeClipboard) SourceApp() *clip.SourceApp {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.source
}

// collector gathers emitted captures.
type collector struct {
	mu       sync.Mutex
	captured []Captured
}

func (c *collector) emit(cap Captured) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.captured = append(c.captured, cap)
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.captured)
}

func (c *collector) last() Captured {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.captured[len(c.captured)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}

func testWatcher(cb *fakeClipboard) (*Watcher, *collector) {
	c := &collector{}
	w := New(cb, 5*time.Millisecond, 16, c.emit)
	return w, c
}

func TestWatcher_CapturesOnTokenChange(t *testing.T) {
	cb := &fakeClipboard{token: "t0", text: "baseline"}
	w, c := testWatcher(cb)

	w.Start()
	defer w.Stop()

	// Baseline content is not captured.
	time.Sleep(20 * time.Millisecond)
	if c.count() != 0 {
		t.Fatalf("captured %d before any change, want 0", c.count())
	}

	cb.set(func(f *fakeClipboard) { f.token = "t1"; f.text = "hello clipboard" })
	waitFor(t, func() bool { return c.count() == 1 })

	got := c.last()
	if got.Kind != clip.KindText {
		t.Errorf("Kind = %q, want %q", got.Kind, clip.KindText)
	}
	if got.Payload.(clip.TextPayload).Text != "hello clipboard" {
		t.Errorf("Payload = %#v", got.Payload)
	}
}

func TestWatcher_OneCapturePerChange(t *testing.T) {
	cb := &fakeClipboard{token: "t0", text: "x"}
	w, c := testWatcher(cb)

	w.Start()
	defer w.Stop()

	cb.set(func(f *fakeClipboard) { f.token = "t1"; f.text = "changed" })
	waitFor(t, func() bool { return c.count() == 1 })

	// Token stays t1: many ticks pass, nothing new is emitted.
	time.Sleep(50 * time.Millisecond)
	if c.count() != 1 {
		t.Fatalf("captured %d, want 1 (one capture per change)", c.count())
	}
}

func TestWatcher_RepresentationPriority(t *testing.T) {
	// All three representations present at once: files win.
	cb := &fakeClipboard{token: "t0"}
	w, c := testWatcher(cb)

	w.Start()
	defer w.Stop()

	cb.set(func(f *fakeClipboard) {
		f.token = "t1"
		f.files = []string{"/tmp/a.txt"}
		f.image = []byte{1, 2, 3}
		f.width, f.height = 100, 100
		f.text = "also text"
	})
	waitFor(t, func() bool { return c.count() == 1 })

	got := c.last()
	if got.Kind != clip.KindFile {
		t.Fatalf("Kind = %q, want %q (files outrank image and text)", got.Kind, clip.KindFile)
	}

	// Image outranks text.
	cb.set(func(f *fakeClipboard) {
		f.token = "t2"
		f.files = nil
	})
	waitFor(t, func() bool { return c.count() == 2 })
	if got := c.last(); got.Kind != clip.KindImage {
		t.Fatalf("Kind = %q, want %q (image outranks text)", got.Kind, clip.KindImage)
	}
}

func TestWatcher_RejectsTinyImages(t *testing.T) {
	cb := &fakeClipboard{token: "t0"}
	w, c := testWatcher(cb)

	w.Start()
	defer w.Stop()

	cb.set(func(f *fakeClipboard) {
		f.token = "t1"
		f.image = []byte{1}
		f.width, f.height = 100, 8 // shorter than the 16px floor
	})

	time.Sleep(50 * time.Millisecond)
	if c.count() != 0 {
		t.Fatalf("captured %d, want 0 (tiny image is UI chrome)", c.count())
	}
}

func TestWatcher_DropsEmptyText(t *testing.T) {
	cb := &fakeClipboard{token: "t0", text: "x"}
	w, c := testWatcher(cb)

	w.Start()
	defer w.Stop()

	cb.set(func(f *fakeClipboard) { f.token = "t1"; f.text = "   \n\t  " })
	time.Sleep(50 * time.Millisecond)
	if c.count() != 0 {
		t.Fatalf("captured %d, want 0 (whitespace-only is dropped)", c.count())
	}
}

func TestWatcher_IgnoresReadErrors(t *testing.T) {
	cb := &fakeClipboard{token: "t0", err: fmt.Errorf("pasteboard busy")}
	w, c := testWatcher(cb)

	w.Start()
	defer w.Stop()

	time.Sleep(20 * time.Millisecond)

	// Error clears: the next tick picks up the change.
	cb.set(func(f *fakeClipboard) { f.err = nil; f.token = "t1"; f.text = "recovered" })
	waitFor(t, func() bool { return c.count() == 1 })
}

func TestWatcher_StartStopIdempotent(t *testing.T) {
	cb := &fakeClipboard{token: "t0"}
	w, _ := testWatcher(cb)

	if w.Watching() {
		t.Fatal("new watcher should be idle")
	}

	w.Start()
	w.Start() // second start is a no-op
	if !w.Watching() {
		t.Fatal("watcher should be monitoring after Start")
	}

	w.Stop()
	w.Stop() // second stop is a no-op
	if w.Watching() {
		t.Fatal("watcher should be idle after Stop")
	}
}

func TestWatcher_NoCaptureAfterStop(t *testing.T) {
	cb := &fakeClipboard{token: "t0", text: "x"}
	w, c := testWatcher(cb)

	w.Start()
	w.Stop()

	cb.set(func(f *fakeClipboard) { f.token = "t1"; f.text = "late change" })
	time.Sleep(50 * time.Millisecond)
	if c.count() != 0 {
		t.Fatalf("captured %d after Stop, want 0", c.count())
	}
}

func TestWatcher_RestartRecordsNewBaseline(t *testing.T) {
	cb := &fakeClipboard{token: "t0", text: "old"}
	w, c := testWatcher(cb)

	w.Start()
	w.Stop()

	// Content changed while idle; restart treats it as the baseline.
	cb.set(func(f *fakeClipboard) { f.token = "t5"; f.text = "while idle" })
	w.Start()
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)
	if c.count() != 0 {
		t.Fatalf("captured %d, want 0 (idle-time change becomes baseline)", c.count())
	}

	cb.set(func(f *fakeClipboard) { f.token = "t6"; f.text = "fresh" })
	waitFor(t, func() bool { return c.count() == 1 })
}
