package plugin

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// ParseURI parses an identifier. Bare paths become file URIs with an
// absolute path.
func ParseURI(s string) (*url.URL, error) {
	if s == "" {
		return nil, fmt.Errorf("empty identifier")
	}
	if strings.Contains(s, "://") || strings.HasPrefix(s, "file:") {
		u, err := url.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse identifier %q: %w", s, err)
		}
		return u, nil
	}
	abs, err := filepath.Abs(s)
	if err != nil {
		return nil, fmt.Errorf("resolve path %q: %w", s, err)
	}
	return FileURI(abs), nil
}

// FileURI builds a file:// URI for an absolute path.
func FileURI(path string) *url.URL {
	return &url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
}

// FilePath returns the local path of a file URI. Opaque forms such as
// file:relative are returned as-is.
func FilePath(uri *url.URL) (string, bool) {
	if uri == nil || !strings.EqualFold(uri.Scheme, "file") {
		return "", false
	}
	if uri.Path != "" {
		return filepath.FromSlash(uri.Path), true
	}
	if uri.Opaque != "" {
		return filepath.FromSlash(uri.Opaque), true
	}
	return "", false
}
