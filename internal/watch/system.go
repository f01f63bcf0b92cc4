package watch

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/hpungsan/clipd/internal/clip"
)

// SystemClipboard adapts the OS clipboard through atotto/clipboard.
// Text-only: the library exposes no file, image, or source-app
// representations, and no native change counter, so the change token is
// a hash of the current text. Platform adapters with richer pasteboard
// access implement the same Clipboard interface.
type SystemClipboard struct {
	mu       sync.Mutex
	lastText string
}

// NewSystemClipboard creates the default OS clipboard adapter.
func NewSystemClipboard() *SystemClipboard {
	return &SystemClipboard{}
}

// ChangeToken reads the clipboard and returns a content hash. The read
// is cached so the Text call on the same tick does not hit the OS twice.
func (s *SystemClipboard) ChangeToken() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.lastText = text
	s.mu.Unlock()

	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:]), nil
}

// Files always reports absent: atotto/clipboard is text-only.
func (s *SystemClipboard) Files() ([]string, bool) { return nil, false }

// Image always reports absent: atotto/clipboard is text-only.
func (s *SystemClipboard) Image() ([]byte, int, int, bool) { return nil, 0, 0, false }

// Text returns the text cached by the last ChangeToken call.
func (s *SystemClipboard) Text() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastText == "" {
		return "", false
	}
	return s.lastText, true
}

// SourceApp is unknown through this adapter.
func (s *SystemClipboard) SourceApp() *clip.SourceApp { return nil }

// Write places text on the OS clipboard. Used by the activate flow so a
// selected history entry becomes pasteable again.
func (s *SystemClipboard) Write(text string) error {
	return clipboard.WriteAll(text)
}

var _ Clipboard = (*SystemClipboard)(nil)
