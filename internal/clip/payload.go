package clip

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Payload is the typed content of a captured clipboard item.
// Exactly one of the three variants is ever stored per entry.
type Payload interface {
	// Bytes returns the normalized byte content used for fingerprinting.
	Bytes() []byte

	// Display returns the text that search queries match against.
	Display() string

	// Size returns the payload size in bytes, used for the capture ceiling.
	Size() int

	isPayload()
}

// TextPayload holds plain text content. Text is stored trimmed.
type TextPayload struct {
	Text string
}

func (p TextPayload) Bytes() []byte   { return []byte(p.Text) }
func (p TextPayload) Display() string { return p.Text }
func (p TextPayload) Size() int       { return len(p.Text) }
func (p TextPayload) isPayload()      {}

// ImagePayload holds an encoded image. Data is the PNG-encoded bytes;
// duplicate detection hashes the encoded bytes, not perceptual content,
// so a re-saved copy of the same picture is a distinct entry.
type ImagePayload struct {
	Data   []byte
	Width  int
	Height int
}

func (p ImagePayload) Bytes() []byte { return p.Data }

func (p ImagePayload) Display() string {
	return fmt.Sprintf("Image %d×%d", p.Width, p.Height)
}

func (p ImagePayload) Size() int  { return len(p.Data) }
func (p ImagePayload) isPayload() {}

// FilePayload holds an ordered list of file paths. The newline-joined
// path string is the dedup identity.
type FilePayload struct {
	Paths []string
}

func (p FilePayload) Bytes() []byte { return []byte(strings.Join(p.Paths, "\n")) }

func (p FilePayload) Display() string {
	names := make([]string, len(p.Paths))
	for i, path := range p.Paths {
		names[i] = filepath.Base(path)
	}
	return strings.Join(names, " ")
}

func (p FilePayload) Size() int {
	n := 0
	for _, path := range p.Paths {
		n += len(path)
	}
	return n
}

func (p FilePayload) isPayload() {}
