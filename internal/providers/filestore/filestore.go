// Package filestore is the built-in storage provider for local files.
package filestore

import (
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ShayCichocki/switchyard/internal/plugin"
	"github.com/ShayCichocki/switchyard/internal/settings"
)

const (
	// Name is the provider and group name.
	Name = "filestore"
	// Scheme is the URI scheme served.
	Scheme = "file"
)

// Storage serves file: URIs, optionally confined under a root directory.
type Storage struct {
	*plugin.Toggle

	mu   sync.RWMutex
	root string
}

var _ plugin.Storage = (*Storage)(nil)

// New creates the storage. An empty root allows any absolute path.
func New(root string) (*Storage, error) {
	s := &Storage{Toggle: plugin.NewToggle(Name)}
	if err := s.SetRoot(root); err != nil {
		return nil, err
	}
	return s, nil
}

// SetRoot changes the confinement directory.
func (s *Storage) SetRoot(root string) error {
	if root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("resolve root %q: %w", root, err)
		}
		root = filepath.Clean(abs)
	}
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
	return nil
}

// Root returns the confinement directory, or "".
func (s *Storage) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

func (s *Storage) Scheme() string { return Scheme }

// Handles reports whether uri is a file URI inside the root.
func (s *Storage) Handles(uri *url.URL) bool {
	path, ok := plugin.FilePath(uri)
	if !ok || !filepath.IsAbs(path) {
		return false
	}
	return s.within(filepath.Clean(path))
}

func (s *Storage) within(path string) bool {
	root := s.Root()
	if root == "" {
		return true
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// At returns one stream for a regular file, or one per regular file under a
// directory in lexical order. Hidden directories below the top are skipped.
func (s *Storage) At(uri *url.URL) ([]plugin.Stream, error) {
	if !s.Handles(uri) {
		return nil, fmt.Errorf("filestore: %s is outside %q", uri, s.Root())
	}
	path, _ := plugin.FilePath(uri)
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		if !info.Mode().IsRegular() {
			return []plugin.Stream{}, nil
		}
		return []plugin.Stream{newStream(path, info.Size())}, nil
	}

	streams := []plugin.Stream{}
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != path && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		streams = append(streams, newStream(p, fi.Size()))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}
	return streams, nil
}

// Group bundles the storage with a settings hook reading "root".
func Group(s *Storage) *plugin.BaseGroup {
	return &plugin.BaseGroup{
		GroupName: Name,
		Storage:   []plugin.Storage{s},
		Ext: plugin.Extensions{
			Settings: func(h *settings.Holder) error {
				if root := h.String("root", ""); root != "" {
					return s.SetRoot(root)
				}
				return nil
			},
		},
	}
}

type fileStream struct {
	uri  *url.URL
	path string
	size int64
}

func newStream(path string, size int64) *fileStream {
	return &fileStream{uri: plugin.FileURI(path), path: path, size: size}
}

func (f *fileStream) URI() *url.URL { return f.uri }
func (f *fileStream) Size() int64   { return f.size }

func (f *fileStream) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}
