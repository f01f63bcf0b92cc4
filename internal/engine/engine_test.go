package engine

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/clipd/internal/clip"
	"github.com/hpungsan/clipd/internal/config"
	"github.com/hpungsan/clipd/internal/watch"
)

// fakeClipboard is a scriptable watch.Clipboard for driving captures.
type fakeClipboard struct {
	mu      sync.Mutex
	token   string
	text    string
	written string
}

func (f *fakeClipboard) set(token, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	f.text = text
}

func (f *fakeClipboard) ChangeToken() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, nil
}

func (f *fakeClipboard) Files() ([]string, bool) { return nil, false }

func (f *fakeClipboard) Image() ([]byte, int, int, bool) { return nil, 0, 0, false }

func (f *fakeClipboard) Text() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text, true
}

func (f *fakeClipboard) SourceApp() *clip.SourceApp { return nil }

func (f *fakeClipboard) Write(text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = text
	return nil
}

func (f *fakeClipboard) lastWritten() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.written
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
	t.Fatal("condition not met before deadline")
}

func testEngine(t *testing.T, cb *fakeClipboard, opts ...Option) *Engine {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.PollIntervalMS = 5
	var board watch.Clipboard
	if cb != nil {
		board = cb
	}
	e := New(cfg, nil, board, opts...)
	t.Cleanup(e.StopWatching)
	return e
}

func TestCaptureFlow(t *testing.T) {
	cb := &fakeClipboard{}
	cb.set("baseline", "already on the clipboard")
	e := testEngine(t, cb)

	e.StartWatching()
	require.True(t, e.Watching())

	cb.set("t1", "hello from the watcher")
	waitFor(t, func() bool { return len(e.FetchAll()) == 1 })

	entries := e.FetchAll()
	require.Len(t, entries, 1)
	assert.Equal(t, clip.KindText, entries[0].Kind)
	assert.Equal(t, "hello from the watcher", entries[0].Payload.Display())

	e.StopWatching()
	assert.False(t, e.Watching())

	// Nothing lands after Stop returns.
	cb.set("t2", "too late")
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, e.FetchAll(), 1)
}

func TestStopWhileCapturing(t *testing.T) {
	// Stop must not deadlock against an in-flight capture holding the
	// engine lock.
	cb := &fakeClipboard{}
	cb.set("baseline", "")
	e := testEngine(t, cb)

	e.StartWatching()
	for i := 0; i < 20; i++ {
		cb.set("t", "bursty content")
		time.Sleep(time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		e.StopWatching()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("StopWatching did not return")
	}
}

func TestAddSearchDeleteClear(t *testing.T) {
	e := testEngine(t, nil)

	first, err := e.Add(clip.TextPayload{Text: "grocery list: milk eggs"}, clip.KindText, nil)
	require.NoError(t, err)
	second, err := e.Add(clip.TextPayload{Text: "deploy checklist"}, clip.KindText, nil)
	require.NoError(t, err)

	got := e.Search("checklist")
	require.Len(t, got, 1)
	assert.Equal(t, second.ID, got[0].ID)

	// Empty query returns the whole window.
	assert.Len(t, e.Search("  "), 2)

	e.Delete(second.ID)
	_, ok := e.Get(second.ID)
	assert.False(t, ok)
	_, ok = e.Get(first.ID)
	assert.True(t, ok)

	e.Clear()
	assert.Empty(t, e.FetchAll())
}

func TestTrackActivationFeedsFriction(t *testing.T) {
	e := testEngine(t, nil)

	entry, err := e.Add(clip.TextPayload{Text: "pasted over and over"}, clip.KindText, nil)
	require.NoError(t, err)

	assert.False(t, e.TrackActivation("missing"))
	for i := 0; i < 3; i++ {
		require.True(t, e.TrackActivation(entry.ID))
	}

	got, ok := e.Get(entry.ID)
	require.True(t, ok)
	assert.Equal(t, 3, got.UseCount)
	assert.True(t, e.ShouldShowFrictionGuide())

	e.SetEnhancedPasteActive(true)
	assert.False(t, e.ShouldShowFrictionGuide())
}

func TestActivationWritesClipboard(t *testing.T) {
	cb := &fakeClipboard{}
	e := testEngine(t, cb)

	entry, err := e.Add(clip.TextPayload{Text: "paste me again"}, clip.KindText, nil)
	require.NoError(t, err)

	require.True(t, e.TrackActivation(entry.ID))
	assert.Equal(t, "paste me again", cb.lastWritten())
}

func TestFrictionGuideLifecycle(t *testing.T) {
	e := testEngine(t, nil)

	entry, err := e.Add(clip.TextPayload{Text: "repeat"}, clip.KindText, nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		e.TrackActivation(entry.ID)
	}
	require.True(t, e.ShouldShowFrictionGuide())

	e.DismissFrictionGuide()
	assert.False(t, e.ShouldShowFrictionGuide())
}

func TestSetProExpandsWindow(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FreeLimit = 2
	cfg.ProLimit = 10
	e := New(cfg, nil, nil)

	for _, s := range []string{"a", "b", "c"} {
		_, err := e.Add(clip.TextPayload{Text: s}, clip.KindText, nil)
		require.NoError(t, err)
	}
	assert.Len(t, e.FetchAll(), 2)

	e.SetPro(true)
	_, err := e.Add(clip.TextPayload{Text: "d"}, clip.KindText, nil)
	require.NoError(t, err)
	assert.Len(t, e.FetchAll(), 3)
}

func TestURLTitleEnrichment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><head><title>Landing Page</title></head></html>"))
	}))
	defer srv.Close()

	e := testEngine(t, nil,
		WithURLTitleEnrichment(true),
		WithTitleClient(srv.Client()),
	)

	entry, err := e.Add(clip.TextPayload{Text: srv.URL}, clip.KindURL, nil)
	require.NoError(t, err)

	waitFor(t, func() bool {
		got, ok := e.Get(entry.ID)
		return ok && got.URLTitle != nil
	})
	got, _ := e.Get(entry.ID)
	assert.Equal(t, "Landing Page", *got.URLTitle)
}

func TestEnrichmentOffByDefault(t *testing.T) {
	e := testEngine(t, nil)

	entry, err := e.Add(clip.TextPayload{Text: "https://example.invalid/page"}, clip.KindURL, nil)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	got, ok := e.Get(entry.ID)
	require.True(t, ok)
	assert.Nil(t, got.URLTitle)
}

func TestStats(t *testing.T) {
	e := testEngine(t, nil)
	_, err := e.Add(clip.TextPayload{Text: "alpha"}, clip.KindText, nil)
	require.NoError(t, err)
	_, err = e.Add(clip.TextPayload{Text: "https://example.com"}, clip.KindURL, nil)
	require.NoError(t, err)

	stats := e.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.ByKind[clip.KindText])
	assert.Equal(t, 1, stats.ByKind[clip.KindURL])
}
