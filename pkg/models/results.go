package models

// QueryParams is the closed set of parameters a query provider accepts.
type QueryParams struct {
	// Limit caps the number of hits returned. Zero means provider default.
	Limit int `json:"limit,omitempty"`
	// Offset skips the first hits.
	Offset int `json:"offset,omitempty"`
	// Fields restricts which fields are matched, when the provider supports it.
	Fields []string `json:"fields,omitempty"`
	// Filters are exact-match constraints, e.g. {"scheme": "file"}.
	Filters map[string]string `json:"filters,omitempty"`
}

// WithDefaults returns a copy with a zero Limit replaced by limit.
func (p QueryParams) WithDefaults(limit int) QueryParams {
	if p.Limit <= 0 {
		p.Limit = limit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// SearchResult is a single hit produced by a query provider.
type SearchResult struct {
	// URI identifies the matched resource.
	URI string `json:"uri" yaml:"uri"`
	// Score is the provider-specific relevance; higher is better.
	Score float64 `json:"score" yaml:"score"`
	// Snippet is an excerpt around the match, if available.
	Snippet string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
	// Source is the name of the provider that produced the hit.
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// IndexStats summarises one indexer run.
type IndexStats struct {
	// URI is the identifier that was indexed.
	URI string `json:"uri" yaml:"uri"`
	// Indexer is the name of the indexer that ran.
	Indexer string `json:"indexer" yaml:"indexer"`
	// Documents is the number of streams stored.
	Documents int `json:"documents" yaml:"documents"`
	// Skipped is the number of streams ignored.
	Skipped int `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	// Bytes is the total content size read.
	Bytes int64 `json:"bytes" yaml:"bytes"`
}
