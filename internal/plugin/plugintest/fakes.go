// Package plugintest provides in-memory providers for tests.
package plugintest

import (
	"bytes"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ShayCichocki/switchyard/internal/plugin"
	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

// MemStream is a Stream over an in-memory byte slice.
type MemStream struct {
	Location *url.URL
	Data     []byte
}

func (s *MemStream) URI() *url.URL { return s.Location }
func (s *MemStream) Size() int64   { return int64(len(s.Data)) }
func (s *MemStream) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.Data)), nil
}

// MustURI parses s or panics.
func MustURI(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Storage is a fake storage provider serving one scheme.
type Storage struct {
	*plugin.Toggle
	SchemeName string
	// Content maps URI strings to stream data. Unknown URIs yield one empty stream.
	Content map[string][]byte
	// Err makes At fail.
	Err error

	Calls atomic.Int32
}

// NewStorage returns an enabled fake storage for scheme.
func NewStorage(name, scheme string) *Storage {
	return &Storage{Toggle: plugin.NewToggle(name), SchemeName: scheme, Content: map[string][]byte{}}
}

func (s *Storage) Scheme() string { return s.SchemeName }

func (s *Storage) Handles(uri *url.URL) bool {
	return uri != nil && strings.EqualFold(uri.Scheme, s.SchemeName)
}

func (s *Storage) At(uri *url.URL) ([]plugin.Stream, error) {
	s.Calls.Add(1)
	if s.Err != nil {
		return nil, s.Err
	}
	return []plugin.Stream{&MemStream{Location: uri, Data: s.Content[uri.String()]}}, nil
}

// Indexer is a fake indexer recording what it was asked to do.
type Indexer struct {
	*plugin.Toggle
	// Accept decides Handles; nil accepts everything.
	Accept func(uri *url.URL) bool
	Delay  time.Duration
	Err    error
	// UnindexErr makes Unindex fail.
	UnindexErr error

	mu        sync.Mutex
	indexed   []string
	unindexed []string
}

// NewIndexer returns an enabled fake indexer accepting every URI.
func NewIndexer(name string) *Indexer {
	return &Indexer{Toggle: plugin.NewToggle(name)}
}

// AcceptScheme restricts Handles to one scheme.
func (x *Indexer) AcceptScheme(scheme string) *Indexer {
	x.Accept = func(u *url.URL) bool { return strings.EqualFold(u.Scheme, scheme) }
	return x
}

func (x *Indexer) Handles(uri *url.URL) bool {
	if x.Accept == nil {
		return true
	}
	return x.Accept(uri)
}

func (x *Indexer) Index(streams []plugin.Stream) *task.Task[*models.Report] {
	return task.New("index:"+x.Name(), func() (*models.Report, error) {
		if x.Delay > 0 {
			time.Sleep(x.Delay)
		}
		if x.Err != nil {
			return nil, x.Err
		}
		stats := models.IndexStats{Indexer: x.Name()}
		for _, s := range streams {
			stats.URI = s.URI().String()
			stats.Documents++
			stats.Bytes += s.Size()
		}
		x.mu.Lock()
		x.indexed = append(x.indexed, stats.URI)
		x.mu.Unlock()
		r := models.NewReport(stats)
		r.Source = x.Name()
		return r, nil
	})
}

func (x *Indexer) Unindex(uri *url.URL) error {
	x.mu.Lock()
	x.unindexed = append(x.unindexed, uri.String())
	x.mu.Unlock()
	return x.UnindexErr
}

// Indexed returns the URIs indexed so far.
func (x *Indexer) Indexed() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.indexed...)
}

// Unindexed returns the URIs unindexed so far.
func (x *Indexer) Unindexed() []string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]string(nil), x.unindexed...)
}

// Query is a fake query provider returning a single hit named after itself.
type Query struct {
	*plugin.Toggle
	Delay time.Duration
	Err   error
	// Nil makes Query return a nil report.
	Nil bool

	Calls    atomic.Int32
	finished atomic.Int64
}

// NewQuery returns an enabled fake query provider.
func NewQuery(name string) *Query {
	return &Query{Toggle: plugin.NewToggle(name)}
}

func (q *Query) Query(text string, params models.QueryParams) (*models.Report, error) {
	q.Calls.Add(1)
	if q.Delay > 0 {
		time.Sleep(q.Delay)
	}
	q.finished.Store(time.Now().UnixNano())
	if q.Err != nil {
		return nil, q.Err
	}
	if q.Nil {
		return nil, nil
	}
	r := models.NewQueryReport()
	r.Source = q.Name()
	r.Value = []models.SearchResult{{URI: "mem://" + q.Name() + "/" + text, Score: 1, Source: q.Name()}}
	return r, nil
}

// FinishedAt returns when the last Query call returned.
func (q *Query) FinishedAt() time.Time {
	return time.Unix(0, q.finished.Load())
}

// ErrBoom is a generic injected failure.
var ErrBoom = errors.New("boom")

// Group bundles providers into a BaseGroup.
func Group(name string, providers ...plugin.Provider) *plugin.BaseGroup {
	g := &plugin.BaseGroup{GroupName: name}
	for _, p := range providers {
		if s, ok := p.(plugin.Storage); ok {
			g.Storage = append(g.Storage, s)
		}
		if x, ok := p.(plugin.Indexer); ok {
			g.Indexers = append(g.Indexers, x)
		}
		if q, ok := p.(plugin.Query); ok {
			g.Queries = append(g.Queries, q)
		}
	}
	return g
}
