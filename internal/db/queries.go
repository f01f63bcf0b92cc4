package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/clipd/internal/clip"
)

// Payload type discriminators for the entries table.
const (
	payloadText  = "text"
	payloadImage = "image"
	payloadFile  = "file"
)

// Entries is the SQLite persistence adapter for clipboard history.
// It satisfies the history.Persistence interface.
type Entries struct {
	db *sql.DB
}

// NewEntries creates an Entries adapter over an initialized database.
func NewEntries(db *sql.DB) *Entries {
	return &Entries{db: db}
}

// Save inserts or updates an entry. The entry id is the upsert key; a
// duplicate capture refreshes the mutable columns in place.
func (e *Entries) Save(entry *clip.Entry) error {
	payloadType, content, width, height := encodePayload(entry.Payload)

	var bundle, name sql.NullString
	if entry.SourceApp != nil {
		bundle = toNullString(entry.SourceApp.BundleID)
		name = toNullString(entry.SourceApp.Name)
	}
	var urlTitle sql.NullString
	if entry.URLTitle != nil {
		urlTitle = sql.NullString{String: *entry.URLTitle, Valid: true}
	}

	query := `
		INSERT INTO entries (
			id, kind, payload_type, content, width, height,
			content_hash, preview, created_at, use_count,
			source_bundle, source_name, url_title
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			use_count = excluded.use_count,
			source_bundle = excluded.source_bundle,
			source_name = excluded.source_name,
			url_title = excluded.url_title
	`

	_, err := e.db.Exec(query,
		entry.ID, string(entry.Kind), payloadType, content, width, height,
		entry.ContentHash, entry.Preview, entry.CreatedAt.UnixMilli(), entry.UseCount,
		bundle, name, urlTitle,
	)
	if err != nil {
		return fmt.Errorf("save entry %s: %w", entry.ID, err)
	}
	return nil
}

// Delete removes an entry. Deleting an absent id is not an error.
func (e *Entries) Delete(id string) error {
	if _, err := e.db.Exec("DELETE FROM entries WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	return nil
}

// Clear removes all entries.
func (e *Entries) Clear() error {
	if _, err := e.db.Exec("DELETE FROM entries"); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	return nil
}

// LoadAll returns every persisted entry in insertion order (oldest first,
// rowid breaking created_at ties) so the in-memory arena rebuilds with the
// same eviction tie-break as the original session.
func (e *Entries) LoadAll() ([]*clip.Entry, error) {
	rows, err := e.db.Query(`
		SELECT id, kind, payload_type, content, width, height,
			content_hash, preview, created_at, use_count,
			source_bundle, source_name, url_title
		FROM entries
		ORDER BY created_at ASC, rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	defer rows.Close()

	var entries []*clip.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (*clip.Entry, error) {
	var (
		entry         clip.Entry
		kind          string
		payloadType   string
		content       []byte
		width, height sql.NullInt64
		createdAt     int64
		bundle, name  sql.NullString
		urlTitle      sql.NullString
	)

	err := rows.Scan(
		&entry.ID, &kind, &payloadType, &content, &width, &height,
		&entry.ContentHash, &entry.Preview, &createdAt, &entry.UseCount,
		&bundle, &name, &urlTitle,
	)
	if err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}

	entry.Kind = clip.Kind(kind)
	entry.Payload = decodePayload(payloadType, content, int(width.Int64), int(height.Int64))
	entry.CreatedAt = time.UnixMilli(createdAt)
	if bundle.Valid || name.Valid {
		entry.SourceApp = &clip.SourceApp{BundleID: bundle.String, Name: name.String}
	}
	if urlTitle.Valid {
		title := urlTitle.String
		entry.URLTitle = &title
	}
	return &entry, nil
}

func encodePayload(p clip.Payload) (payloadType string, content []byte, width, height sql.NullInt64) {
	switch v := p.(type) {
	case clip.ImagePayload:
		return payloadImage, v.Data,
			sql.NullInt64{Int64: int64(v.Width), Valid: true},
			sql.NullInt64{Int64: int64(v.Height), Valid: true}
	case clip.FilePayload:
		return payloadFile, []byte(strings.Join(v.Paths, "\n")), sql.NullInt64{}, sql.NullInt64{}
	case clip.TextPayload:
		return payloadText, []byte(v.Text), sql.NullInt64{}, sql.NullInt64{}
	default:
		return payloadText, p.Bytes(), sql.NullInt64{}, sql.NullInt64{}
	}
}

func decodePayload(payloadType string, content []byte, width, height int) clip.Payload {
	switch payloadType {
	case payloadImage:
		return clip.ImagePayload{Data: content, Width: width, Height: height}
	case payloadFile:
		if len(content) == 0 {
			return clip.FilePayload{}
		}
		return clip.FilePayload{Paths: strings.Split(string(content), "\n")}
	default:
		return clip.TextPayload{Text: string(content)}
	}
}

func toNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
