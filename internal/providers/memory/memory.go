// Package memory is an in-process indexer and query provider. Documents are
// kept as token sets and ranked by Ochiai overlap with the query.
package memory

import (
	"fmt"
	"io"
	"log"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/ShayCichocki/switchyard/internal/plugin"
	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

// Name is the group, indexer and query provider name.
const Name = "memory"

// maxDocBytes caps how much of a stream is read.
const maxDocBytes = 1 << 20

var wordRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

type document struct {
	uri     string
	tokens  map[string]struct{}
	preview string
}

// Index is the shared document table.
type Index struct {
	mu   sync.RWMutex
	docs map[string]*document
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{docs: make(map[string]*document)}
}

// Len returns the number of documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

func (ix *Index) put(uri, text string) {
	d := &document{uri: uri, tokens: tokenSet(text), preview: previewOf(text)}
	ix.mu.Lock()
	ix.docs[uri] = d
	ix.mu.Unlock()
}

// previewLen caps the snippet in runes.
const previewLen = 120

// previewOf collapses whitespace and cuts after previewLen runes.
func previewOf(text string) string {
	preview := strings.Join(strings.Fields(text), " ")
	n := 0
	for i := range preview {
		if n == previewLen {
			return preview[:i] + "..."
		}
		n++
	}
	return preview
}

// remove drops uri and everything below it.
func (ix *Index) remove(uri string) int {
	prefix := strings.TrimSuffix(uri, "/") + "/"
	ix.mu.Lock()
	defer ix.mu.Unlock()
	n := 0
	for k := range ix.docs {
		if k == uri || strings.HasPrefix(k, prefix) {
			delete(ix.docs, k)
			n++
		}
	}
	return n
}

type scored struct {
	doc   *document
	score float64
}

// search ranks every document containing at least one query token. Ties
// are broken by URI so results are stable.
func (ix *Index) search(text string, params models.QueryParams) []scored {
	q := tokenSet(text)
	if len(q) == 0 {
		return nil
	}
	prefix := params.Filters["prefix"]

	ix.mu.RLock()
	var out []scored
	for _, d := range ix.docs {
		if prefix != "" && !strings.HasPrefix(d.uri, prefix) {
			continue
		}
		if s := ochiai(q, d.tokens); s > 0 {
			out = append(out, scored{doc: d, score: s})
		}
	}
	ix.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].doc.uri < out[j].doc.uri
	})
	offset := max(params.Offset, 0)
	if offset >= len(out) {
		return nil
	}
	out = out[offset:]
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out
}

func tokenSet(s string) map[string]struct{} {
	tokens := wordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

// ochiai is |A∩B| / sqrt(|A||B|).
func ochiai(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	return float64(inter) / math.Sqrt(float64(len(a))*float64(len(b)))
}

// Indexer reads streams into the shared Index.
type Indexer struct {
	*plugin.Toggle
	index *Index
	// schemes limits Handles; empty accepts every scheme.
	schemes []string
}

var _ plugin.Indexer = (*Indexer)(nil)

func (x *Indexer) Handles(uri *url.URL) bool {
	if uri == nil {
		return false
	}
	if len(x.schemes) == 0 {
		return true
	}
	for _, s := range x.schemes {
		if strings.EqualFold(uri.Scheme, s) {
			return true
		}
	}
	return false
}

func (x *Indexer) Index(streams []plugin.Stream) *task.Task[*models.Report] {
	return task.New("index:"+x.Name(), func() (*models.Report, error) {
		stats := models.IndexStats{Indexer: x.Name()}
		if len(streams) == 1 {
			stats.URI = streams[0].URI().String()
		}
		for _, s := range streams {
			rc, err := s.Open()
			if err != nil {
				return nil, fmt.Errorf("open %s: %w", s.URI(), err)
			}
			data, err := io.ReadAll(io.LimitReader(rc, maxDocBytes))
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", s.URI(), err)
			}
			x.index.put(s.URI().String(), string(data))
			stats.Documents++
			stats.Bytes += int64(len(data))
		}
		r := models.NewReport(stats)
		r.Source = x.Name()
		return r, nil
	})
}

func (x *Indexer) Unindex(uri *url.URL) error {
	n := x.index.remove(uri.String())
	log.Printf("[memory] removed %d documents for %s", n, uri)
	return nil
}

// Query ranks documents in the shared Index.
type Query struct {
	*plugin.Toggle
	index *Index
}

var _ plugin.Query = (*Query)(nil)

// Query returns a QueryReport whose value is a []models.SearchResult.
func (q *Query) Query(text string, params models.QueryParams) (*models.Report, error) {
	report := models.NewQueryReport()
	report.Source = q.Name()
	hits := q.index.search(text, params)
	if len(hits) == 0 {
		return report, nil
	}
	results := make([]models.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = models.SearchResult{URI: h.doc.uri, Score: h.score, Snippet: h.doc.preview, Source: q.Name()}
	}
	report.Value = results
	return report, nil
}

// Group bundles an indexer and a query provider over one Index.
type Group struct {
	plugin.BaseGroup
	index *Index
}

// NewGroup returns the memory group. schemes limits which URIs the indexer
// accepts; none means all.
func NewGroup(schemes ...string) *Group {
	ix := NewIndex()
	g := &Group{index: ix}
	g.BaseGroup = plugin.BaseGroup{
		GroupName: Name,
		Indexers:  []plugin.Indexer{&Indexer{Toggle: plugin.NewToggle(Name), index: ix, schemes: schemes}},
		Queries:   []plugin.Query{&Query{Toggle: plugin.NewToggle(Name), index: ix}},
	}
	return g
}

// Index returns the shared document table.
func (g *Group) Index() *Index { return g.index }
