// Package history owns the captured clipboard entries: dedup by content
// hash, recency ordering, and tier-limited eviction.
//
// The store does no internal locking. All mutation is serialized by a
// single owner (see internal/engine); tests call it directly.
package history

import (
	"crypto/rand"
	"log"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/clipd/internal/clip"
	"github.com/hpungsan/clipd/internal/config"
	"github.com/hpungsan/clipd/internal/errors"
)

// Persistence is the injected storage backend. Failures are tolerated:
// writes degrade to in-memory-only, a failed load yields an empty history.
type Persistence interface {
	Save(*clip.Entry) error
	Delete(id string) error
	Clear() error
	LoadAll() ([]*clip.Entry, error)
}

// Store holds the live entry collection. The hash index is layered over an
// insertion-ordered arena, so inserts never scan the full table and
// eviction ties (equal CreatedAt) resolve by insertion sequence.
type Store struct {
	cfg     *config.Config
	persist Persistence // may be nil (in-memory only)
	now     func() time.Time

	entries []*clip.Entry // insertion order
	byHash  map[string]*clip.Entry
	byID    map[string]*clip.Entry

	isPro       bool
	enrichTried map[string]bool
}

// New creates a Store and loads any persisted history. A load failure is
// logged and the session starts empty rather than failing.
func New(cfg *config.Config, persist Persistence) *Store {
	s := &Store{
		cfg:         cfg,
		persist:     persist,
		now:         time.Now,
		byHash:      make(map[string]*clip.Entry),
		byID:        make(map[string]*clip.Entry),
		isPro:       cfg.IsPro,
		enrichTried: make(map[string]bool),
	}

	if persist != nil {
		loaded, err := persist.LoadAll()
		if err != nil {
			log.Printf("history: load failed, starting empty: %v", err)
			return s
		}
		for _, e := range loaded {
			if _, dup := s.byHash[e.ContentHash]; dup {
				continue
			}
			s.entries = append(s.entries, e)
			s.byHash[e.ContentHash] = e
			s.byID[e.ID] = e
		}
	}
	return s
}

// SetNow overrides the clock for tests.
func (s *Store) SetNow(now func() time.Time) { s.now = now }

// SetPro updates the externally supplied subscription capability.
func (s *Store) SetPro(pro bool) { s.isPro = pro }

// Pro reports the current capability flag.
func (s *Store) Pro() bool { return s.isPro }

// EffectiveLimit returns the live-entry ceiling for the current
// capability. It is evaluated at call time, not fixed at write time.
// A non-positive limit means unbounded.
func (s *Store) EffectiveLimit() int {
	if s.isPro {
		return s.cfg.ProLimit
	}
	return s.cfg.FreeLimit
}

// Add captures a payload. Duplicate content (equal fingerprint) refreshes
// CreatedAt and SourceApp on the existing entry without creating a new id;
// new content is inserted and the oldest entries evicted past the
// effective limit. Payloads over the configured ceiling are dropped.
func (s *Store) Add(p clip.Payload, kind clip.Kind, src *clip.SourceApp) (*clip.Entry, error) {
	if max := s.sizeCeiling(p); p.Size() > max {
		log.Printf("history: dropping oversized %s payload (%d bytes, max %d)", kind, p.Size(), max)
		return nil, errors.NewContentTooLarge(max, p.Size())
	}

	hash := clip.Fingerprint(p)
	if hash == "" {
		return nil, errors.NewInvalidRequest("payload is empty")
	}

	if existing, ok := s.byHash[hash]; ok {
		existing.CreatedAt = s.now()
		existing.SourceApp = src
		s.save(existing)
		return existing, nil
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	entry := &clip.Entry{
		ID:          id,
		Payload:     p,
		Kind:        normalizeKind(p, kind),
		ContentHash: hash,
		Preview:     clip.Preview(p, s.cfg.PreviewChars),
		CreatedAt:   s.now(),
		SourceApp:   src,
	}

	s.entries = append(s.entries, entry)
	s.byHash[hash] = entry
	s.byID[entry.ID] = entry
	s.save(entry)
	s.evict()

	return entry, nil
}

// Delete removes one entry; no-op if absent.
func (s *Store) Delete(id string) {
	entry, ok := s.byID[id]
	if !ok {
		return
	}
	s.remove(entry)
	if s.persist != nil {
		if err := s.persist.Delete(id); err != nil {
			log.Printf("history: persist delete failed: %v", err)
		}
	}
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.entries = nil
	s.byHash = make(map[string]*clip.Entry)
	s.byID = make(map[string]*clip.Entry)
	if s.persist != nil {
		if err := s.persist.Clear(); err != nil {
			log.Printf("history: persist clear failed: %v", err)
		}
	}
}

// FetchAll returns entry snapshots ordered by CreatedAt descending,
// truncated to the effective limit. Entries with equal CreatedAt keep
// their insertion order relative to each other.
func (s *Store) FetchAll() []clip.Entry {
	out := make([]clip.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, *e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit := s.EffectiveLimit(); limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Get returns a snapshot of one entry.
func (s *Store) Get(id string) (clip.Entry, bool) {
	entry, ok := s.byID[id]
	if !ok {
		return clip.Entry{}, false
	}
	return *entry, true
}

// Touch records an explicit activation: the use counter increments and
// the recency signal refreshes, the same as content reappearing.
func (s *Store) Touch(id string) bool {
	entry, ok := s.byID[id]
	if !ok {
		return false
	}
	entry.UseCount++
	entry.CreatedAt = s.now()
	s.save(entry)
	return true
}

// Len returns the live entry count.
func (s *Store) Len() int { return len(s.entries) }

// Stats summarizes the live history.
type Stats struct {
	Total     int               `json:"total"`
	ByKind    map[clip.Kind]int `json:"by_kind"`
	TotalUses int               `json:"total_uses"`
	Limit     int               `json:"limit"`
	Pro       bool              `json:"pro"`
}

// CollectStats computes summary counts over the live entries.
func (s *Store) CollectStats() Stats {
	st := Stats{
		Total:  len(s.entries),
		ByKind: make(map[clip.Kind]int),
		Limit:  s.EffectiveLimit(),
		Pro:    s.isPro,
	}
	for _, e := range s.entries {
		st.ByKind[e.Kind]++
		st.TotalUses += e.UseCount
	}
	return st
}

// MarkEnrichAttempt records a URL-title fetch attempt for a content hash.
// Returns true only on the first attempt this session; failed fetches are
// never retried automatically.
func (s *Store) MarkEnrichAttempt(hash string) bool {
	if s.enrichTried[hash] {
		return false
	}
	s.enrichTried[hash] = true
	return true
}

// SetURLTitle writes back a fetched page title. Returns false if the
// entry no longer exists (evicted or deleted while the fetch ran).
func (s *Store) SetURLTitle(id, title string) bool {
	entry, ok := s.byID[id]
	if !ok {
		return false
	}
	entry.URLTitle = &title
	s.save(entry)
	return true
}

// evict deletes the oldest-by-CreatedAt entries until the live count is
// at or under the effective limit. UseCount never factors in; recency
// alone governs survival. The arena scan takes the first of any
// CreatedAt tie, so ties die in insertion order.
func (s *Store) evict() {
	limit := s.EffectiveLimit()
	if limit <= 0 {
		return
	}
	for len(s.entries) > limit {
		oldest := s.entries[0]
		for _, e := range s.entries[1:] {
			if e.CreatedAt.Before(oldest.CreatedAt) {
				oldest = e
			}
		}
		s.remove(oldest)
		if s.persist != nil {
			if err := s.persist.Delete(oldest.ID); err != nil {
				log.Printf("history: persist delete failed: %v", err)
			}
		}
	}
}

func (s *Store) remove(entry *clip.Entry) {
	delete(s.byHash, entry.ContentHash)
	delete(s.byID, entry.ID)
	for i, e := range s.entries {
		if e == entry {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
}

// save persists an entry best-effort: a write failure is logged and the
// in-memory operation stands.
func (s *Store) save(entry *clip.Entry) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(entry); err != nil {
		log.Printf("history: persist save failed: %v", err)
	}
}

// sizeCeiling returns the capture ceiling for a payload variant.
func (s *Store) sizeCeiling(p clip.Payload) int {
	if _, ok := p.(clip.ImagePayload); ok {
		return s.cfg.MaxImageBytes
	}
	return s.cfg.MaxTextBytes
}

// normalizeKind keeps the stored kind consistent with the payload
// variant: an image payload is always image-kind, a file list file-kind.
func normalizeKind(p clip.Payload, kind clip.Kind) clip.Kind {
	switch p.(type) {
	case clip.ImagePayload:
		return clip.KindImage
	case clip.FilePayload:
		return clip.KindFile
	}
	if !kind.Valid() {
		return clip.KindText
	}
	return kind
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
