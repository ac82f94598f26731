package fts

import (
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ShayCichocki/switchyard/internal/plugin"
	"github.com/ShayCichocki/switchyard/internal/settings"
	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

// Name is the group, indexer and query provider name.
const Name = "fts"

// DefaultMaxBytes caps how much of a stream is stored.
const DefaultMaxBytes int64 = 8 << 20

// DefaultExtensions are the file extensions indexed when none are configured.
var DefaultExtensions = []string{".txt", ".md", ".rst", ".go", ".json", ".yaml", ".yml", ".csv", ".html", ".xml", ".log"}

// Options configures the group.
type Options struct {
	// DBPath is the SQLite file. Empty uses DefaultDBPath.
	DBPath     string
	Extensions []string
	MaxBytes   int64
}

// limits are the indexer settings that the settings hook may change.
type limits struct {
	mu         sync.RWMutex
	extensions map[string]bool
	maxBytes   int64
}

func (l *limits) set(exts []string, maxBytes int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(exts) > 0 {
		l.extensions = make(map[string]bool, len(exts))
		for _, e := range exts {
			e = strings.ToLower(strings.TrimSpace(e))
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			l.extensions[e] = true
		}
	}
	if maxBytes > 0 {
		l.maxBytes = maxBytes
	}
}

func (l *limits) accepts(p string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.extensions[strings.ToLower(path.Ext(p))]
}

func (l *limits) max() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.maxBytes
}

// Group is the fts provider group: one indexer and one query provider
// sharing a Store.
type Group struct {
	plugin.BaseGroup
	store   *Store
	indexer *Indexer
	query   *Query
}

// Open opens and migrates the store and builds the group.
func Open(opts Options) (*Group, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = DefaultDBPath()
	}
	store, err := OpenStore(dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate %s: %w", dbPath, err)
	}

	lim := &limits{maxBytes: DefaultMaxBytes}
	lim.set(DefaultExtensions, 0)
	lim.set(opts.Extensions, opts.MaxBytes)

	g := &Group{
		store:   store,
		indexer: &Indexer{Toggle: plugin.NewToggle(Name), store: store, limits: lim},
		query:   &Query{Toggle: plugin.NewToggle(Name), store: store},
	}
	g.BaseGroup = plugin.BaseGroup{
		GroupName: Name,
		Indexers:  []plugin.Indexer{g.indexer},
		Queries:   []plugin.Query{g.query},
		Ext: plugin.Extensions{
			Settings: func(h *settings.Holder) error {
				lim.set(h.Strings("extensions"), int64(h.Int("max_bytes", 0)))
				return nil
			},
			Shutdown: store.Close,
		},
	}
	return g, nil
}

// Store returns the backing store.
func (g *Group) Store() *Store { return g.store }

// Indexer returns the group's indexer.
func (g *Group) Indexer() *Indexer { return g.indexer }

// Query returns the group's query provider.
func (g *Group) Query() *Query { return g.query }

// Indexer stores streams in the FTS table.
type Indexer struct {
	*plugin.Toggle
	store  *Store
	limits *limits
}

var _ plugin.Indexer = (*Indexer)(nil)

// Handles accepts file URIs with an indexed extension, and directories.
func (x *Indexer) Handles(uri *url.URL) bool {
	p, ok := plugin.FilePath(uri)
	if !ok {
		return false
	}
	if x.limits.accepts(p) {
		return true
	}
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// Index returns a task that upserts one document per accepted stream.
// Streams with other extensions or non-UTF-8 content are skipped.
func (x *Indexer) Index(streams []plugin.Stream) *task.Task[*models.Report] {
	return task.New("index:"+x.Name(), func() (*models.Report, error) {
		stats := models.IndexStats{Indexer: x.Name()}
		if len(streams) == 1 {
			stats.URI = streams[0].URI().String()
		}
		maxBytes := x.limits.max()
		for _, s := range streams {
			if !x.limits.accepts(s.URI().Path) {
				stats.Skipped++
				continue
			}
			content, err := readLimited(s, maxBytes)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", s.URI(), err)
			}
			if !utf8.Valid(content) {
				stats.Skipped++
				continue
			}
			doc := &Document{
				URI:     s.URI().String(),
				Title:   filepath.Base(s.URI().Path),
				Content: string(content),
				Bytes:   int64(len(content)),
			}
			if err := x.store.Upsert(doc); err != nil {
				return nil, err
			}
			stats.Documents++
			stats.Bytes += doc.Bytes
		}
		log.Printf("[fts] indexed %d documents (%d skipped)", stats.Documents, stats.Skipped)
		r := models.NewReport(stats)
		r.Source = x.Name()
		return r, nil
	})
}

// Unindex removes uri and everything below it.
func (x *Indexer) Unindex(uri *url.URL) error {
	n, err := x.store.Delete(uri.String())
	if err != nil {
		return err
	}
	log.Printf("[fts] removed %d documents for %s", n, uri)
	return nil
}

func readLimited(s plugin.Stream, maxBytes int64) ([]byte, error) {
	rc, err := s.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxBytes))
}

// Query searches the FTS table.
type Query struct {
	*plugin.Toggle
	store *Store
}

var _ plugin.Query = (*Query)(nil)

// Query returns a QueryReport whose value is a []models.SearchResult.
// The "prefix" filter restricts hits to URIs starting with its value.
func (q *Query) Query(text string, params models.QueryParams) (*models.Report, error) {
	hits, err := q.store.Search(text, SearchOptions{
		Limit:     params.Limit,
		Offset:    params.Offset,
		Columns:   params.Fields,
		URIPrefix: params.Filters["prefix"],
	})
	if err != nil {
		return nil, err
	}
	report := models.NewQueryReport()
	report.Source = q.Name()
	if len(hits) == 0 {
		return report, nil
	}
	results := make([]models.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = models.SearchResult{URI: h.URI, Score: h.Score, Snippet: h.Snippet, Source: q.Name()}
	}
	report.Value = results
	return report, nil
}
