package clip

import "time"

// SourceApp identifies the application that produced a clipboard change.
// Advisory only; capture never depends on it.
type SourceApp struct {
	BundleID string `json:"bundle_id"`
	Name     string `json:"name"`
}

// Entry is one captured clipboard history record.
type Entry struct {
	// ID is a ULID that uniquely identifies this entry
	ID string

	// Payload is the typed content (text, image, or file list)
	Payload Payload

	// Kind is the classification tag derived from the payload
	Kind Kind

	// ContentHash is the SHA-256 hex of the normalized payload bytes;
	// the store never holds two live entries with the same hash
	ContentHash string

	// Preview is a bounded single-line summary, derived once at creation
	Preview string

	// CreatedAt is the recency signal: refreshed when the same content
	// reappears or is activated, it drives ordering and eviction
	CreatedAt time.Time

	// UseCount counts explicit activations, never passive captures
	UseCount int

	// SourceApp is the producing application, when known (nullable)
	SourceApp *SourceApp

	// URLTitle is a lazily fetched page title for url-kind entries;
	// absent until a fetch succeeds (nullable)
	URLTitle *string
}

// Summary represents an entry's metadata without the payload bytes.
// Used for browse operations (list, search, stats) to reduce data transfer.
type Summary struct {
	ID        string     `json:"id"`
	Kind      Kind       `json:"kind"`
	Preview   string     `json:"preview"`
	CreatedAt int64      `json:"created_at"`
	UseCount  int        `json:"use_count"`
	SourceApp *SourceApp `json:"source_app,omitempty"`
	URLTitle  *string    `json:"url_title,omitempty"`
}

// ToSummary converts an Entry to a Summary by stripping the payload.
func (e *Entry) ToSummary() Summary {
	return Summary{
		ID:        e.ID,
		Kind:      e.Kind,
		Preview:   e.Preview,
		CreatedAt: e.CreatedAt.UnixMilli(),
		UseCount:  e.UseCount,
		SourceApp: e.SourceApp,
		URLTitle:  e.URLTitle,
	}
}
