package fts

import (
	"fmt"
	"strings"
	"unicode"
)

// SearchOptions narrows a search.
type SearchOptions struct {
	Limit  int
	Offset int
	// Columns restricts matching to these FTS columns (title, content).
	Columns []string
	// URIPrefix keeps only documents whose URI starts with it.
	URIPrefix string
}

// columns is the set of searchable FTS columns.
var columns = map[string]bool{"title": true, "content": true}

// Search runs a full-text query ranked by bm25. Free text is tokenized and
// each term is quoted, so FTS5 operators in user input are taken literally.
func (s *Store) Search(text string, opts SearchOptions) ([]Hit, error) {
	match := buildMatch(text, opts.Columns)
	if match == "" {
		return nil, nil
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT d.uri, d.title, bm25(documents_fts) AS score,
			   snippet(documents_fts, 1, '[', ']', '...', 12)
		FROM documents_fts
		JOIN documents d ON d.rowid = documents_fts.rowid
		WHERE documents_fts MATCH ?`
	args := []interface{}{match}
	if opts.URIPrefix != "" {
		query += ` AND d.uri LIKE ? ESCAPE '\'`
		args = append(args, escapeLike(opts.URIPrefix)+"%")
	}
	query += `
		ORDER BY rank
		LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.URI, &h.Title, &h.Score, &h.Snippet); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		// bm25 is lower-is-better; flip it so higher scores rank first.
		h.Score = -h.Score
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

// buildMatch turns free text into an FTS5 match expression of quoted terms.
func buildMatch(text string, cols []string) string {
	terms := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '_'
	})
	if len(terms) == 0 {
		return ""
	}
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	expr := strings.Join(quoted, " ")

	var keep []string
	for _, c := range cols {
		c = strings.ToLower(strings.TrimSpace(c))
		if columns[c] {
			keep = append(keep, c)
		}
	}
	if len(keep) == 0 {
		return expr
	}
	return "{" + strings.Join(keep, " ") + "}: (" + expr + ")"
}
