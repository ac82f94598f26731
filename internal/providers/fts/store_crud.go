package fts

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Upsert inserts doc or replaces the document with the same URI. The
// original ID is kept on replace.
func (s *Store) Upsert(doc *Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	if doc.IndexedAt.IsZero() {
		doc.IndexedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO documents (id, uri, title, content, bytes, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(uri) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			bytes = excluded.bytes,
			indexed_at = excluded.indexed_at
	`,
		doc.ID,
		doc.URI,
		doc.Title,
		doc.Content,
		doc.Bytes,
		formatTime(doc.IndexedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.URI, err)
	}
	return nil
}

// Get retrieves a document by URI. It returns nil, nil when absent.
func (s *Store) Get(uri string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		doc       Document
		indexedAt string
	)
	err := s.db.QueryRow(`
		SELECT id, uri, title, content, bytes, indexed_at
		FROM documents WHERE uri = ?
	`, uri).Scan(&doc.ID, &doc.URI, &doc.Title, &doc.Content, &doc.Bytes, &indexedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", uri, err)
	}
	if doc.IndexedAt, err = parseTime(indexedAt); err != nil {
		return nil, fmt.Errorf("parse indexed_at: %w", err)
	}
	return &doc, nil
}

// Delete removes uri and every document below it (uri + "/..."). It
// returns the number of documents removed.
func (s *Store) Delete(uri string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := escapeLike(strings.TrimSuffix(uri, "/")) + "/%"
	res, err := s.db.Exec(`
		DELETE FROM documents WHERE uri = ? OR uri LIKE ? ESCAPE '\'
	`, uri, prefix)
	if err != nil {
		return 0, fmt.Errorf("delete documents %s: %w", uri, err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored documents.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
