package registry

import (
	"log"
	"net/url"
	"strings"

	"github.com/ShayCichocki/switchyard/internal/plugin"
)

// StorageFor returns the first enabled storage provider that handles uri.
func (r *Registry) StorageFor(uri *url.URL) (plugin.Storage, bool) {
	if uri == nil {
		return nil, false
	}
	for _, s := range r.StorageProviders(true) {
		if s.Handles(uri) {
			return s, true
		}
	}
	log.Printf("[resolver] could not get storage for: %s", uri)
	return nil, false
}

// StorageForScheme looks up storage by a bare scheme token such as "file".
// An empty or malformed scheme is reported as not found.
func (r *Registry) StorageForScheme(scheme string) (plugin.Storage, bool) {
	scheme = strings.TrimSuffix(strings.TrimSpace(scheme), ":")
	if scheme == "" {
		return nil, false
	}
	uri, err := url.Parse(scheme + ":")
	if err != nil || !strings.EqualFold(uri.Scheme, scheme) {
		log.Printf("[resolver] invalid scheme %q: %v", scheme, err)
		return nil, false
	}
	return r.StorageFor(uri)
}

// Resolve returns the streams for uri from the first enabled storage that
// handles it. A miss or a storage error yields an empty slice.
func (r *Registry) Resolve(uri *url.URL) []plugin.Stream {
	s, ok := r.StorageFor(uri)
	if !ok {
		log.Printf("[resolver] could not resolve uri: %s", uri)
		return []plugin.Stream{}
	}
	streams, err := s.At(uri)
	if err != nil {
		log.Printf("[resolver] storage %s failed to resolve %s: %v", s.Name(), uri, err)
		return []plugin.Stream{}
	}
	if streams == nil {
		streams = []plugin.Stream{}
	}
	return streams
}
