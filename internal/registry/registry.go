// Package registry holds the provider groups known to the process and
// resolves resource identifiers to storage providers.
//
// Group membership is fixed once registration is done; only the enabled
// flags of individual providers change afterwards. Lookups preserve group
// registration order and then within-group order, and name matching is
// case-insensitive with the earliest registration winning.
package registry

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/ShayCichocki/switchyard/internal/plugin"
	"github.com/ShayCichocki/switchyard/internal/settings"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

// ErrProviderNotFound is matched by NotFoundError via errors.Is.
var ErrProviderNotFound = errors.New("provider not found")

// NotFoundError reports a failed lookup by name.
type NotFoundError struct {
	Kind      models.Kind
	Name      string
	Available []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s (available: %s)", e.Kind, e.Name, strings.Join(e.Available, ", "))
}

// Is makes errors.Is(err, ErrProviderNotFound) true.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrProviderNotFound
}

// entry is a registered group with its extensions captured at registration.
type entry struct {
	group plugin.Group
	ext   plugin.Extensions
}

// Registry is an ordered collection of provider groups.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

// New creates a registry holding groups in the given order.
func New(groups ...plugin.Group) *Registry {
	r := &Registry{}
	for _, g := range groups {
		r.Register(g)
	}
	return r
}

// Register appends g. Its optional hooks are read here, once.
func (r *Registry) Register(g plugin.Group) {
	if g == nil {
		return
	}
	ext := g.Extensions()

	r.mu.Lock()
	for _, e := range r.entries {
		if strings.EqualFold(e.group.Name(), g.Name()) {
			log.Printf("[registry] WARNING: group %q registered twice; lookups prefer the first", g.Name())
			break
		}
	}
	r.entries = append(r.entries, entry{group: g, ext: ext})
	r.mu.Unlock()

	log.Printf("[registry] registered group %q (storage=%d indexers=%d queries=%d ext=%v)",
		g.Name(), len(g.StorageProviders()), len(g.IndexProviders()), len(g.QueryProviders()), ext.Capabilities())
}

// Groups returns the registered groups in order.
func (r *Registry) Groups() []plugin.Group {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]plugin.Group, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.group
	}
	return out
}

func (r *Registry) snapshot() []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entry(nil), r.entries...)
}

// StorageProviders flattens the storage providers of every group.
func (r *Registry) StorageProviders(onlyEnabled bool) []plugin.Storage {
	var out []plugin.Storage
	for _, e := range r.snapshot() {
		for _, s := range e.group.StorageProviders() {
			if onlyEnabled && !s.Enabled() {
				continue
			}
			out = append(out, s)
		}
	}
	return out
}

// Indexers flattens the indexers of every group.
func (r *Registry) Indexers(onlyEnabled bool) []plugin.Indexer {
	var out []plugin.Indexer
	for _, e := range r.snapshot() {
		for _, x := range e.group.IndexProviders() {
			if onlyEnabled && !x.Enabled() {
				continue
			}
			out = append(out, x)
		}
	}
	return out
}

// Queriers flattens the query providers of every group.
func (r *Registry) Queriers(onlyEnabled bool) []plugin.Query {
	var out []plugin.Query
	for _, e := range r.snapshot() {
		for _, q := range e.group.QueryProviders() {
			if onlyEnabled && !q.Enabled() {
				continue
			}
			out = append(out, q)
		}
	}
	return out
}

// Providers returns the providers of kind as the common Provider interface.
func (r *Registry) Providers(kind models.Kind, onlyEnabled bool) []plugin.Provider {
	var out []plugin.Provider
	switch kind {
	case models.KindStorage:
		for _, p := range r.StorageProviders(onlyEnabled) {
			out = append(out, p)
		}
	case models.KindIndexer:
		for _, p := range r.Indexers(onlyEnabled) {
			out = append(out, p)
		}
	case models.KindQuery:
		for _, p := range r.Queriers(onlyEnabled) {
			out = append(out, p)
		}
	}
	return out
}

// FindByName returns the first provider of kind whose name matches
// case-insensitively.
func (r *Registry) FindByName(kind models.Kind, name string, onlyEnabled bool) (plugin.Provider, bool) {
	for _, p := range r.Providers(kind, onlyEnabled) {
		if strings.EqualFold(p.Name(), name) {
			return p, true
		}
	}
	log.Printf("[registry] unable to retrieve %s: %s", kind, name)
	return nil, false
}

// IndexerByName is FindByName for indexers.
func (r *Registry) IndexerByName(name string, onlyEnabled bool) (plugin.Indexer, bool) {
	for _, x := range r.Indexers(onlyEnabled) {
		if strings.EqualFold(x.Name(), name) {
			return x, true
		}
	}
	log.Printf("[registry] unable to retrieve indexer: %s", name)
	return nil, false
}

// QueryByName is FindByName for query providers.
func (r *Registry) QueryByName(name string, onlyEnabled bool) (plugin.Query, bool) {
	for _, q := range r.Queriers(onlyEnabled) {
		if strings.EqualFold(q.Name(), name) {
			return q, true
		}
	}
	log.Printf("[registry] unable to retrieve query provider: %s", name)
	return nil, false
}

// Names lists provider names of kind, in registry order.
func (r *Registry) Names(kind models.Kind, onlyEnabled bool) []string {
	providers := r.Providers(kind, onlyEnabled)
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	return names
}

// NotFound builds the lookup error for name, listing every registered name of kind.
func (r *Registry) NotFound(kind models.Kind, name string) *NotFoundError {
	return &NotFoundError{Kind: kind, Name: name, Available: r.Names(kind, false)}
}

// SetEnabled toggles every provider of kind named name. Duplicates across
// groups are all toggled so the flag is consistent for the name.
func (r *Registry) SetEnabled(kind models.Kind, name string, enabled bool) error {
	found := false
	for _, p := range r.Providers(kind, false) {
		if strings.EqualFold(p.Name(), name) {
			p.SetEnabled(enabled)
			found = true
		}
	}
	if !found {
		return &NotFoundError{Kind: kind, Name: name, Available: r.Names(kind, false)}
	}
	log.Printf("[registry] %s %s enabled=%t", kind, name, enabled)
	return nil
}

// Configure loads <settingsDir>/<group>.yaml for every group that declares
// the settings hook. Failures are collected and returned together.
func (r *Registry) Configure(settingsDir string) error {
	var errs []error
	for _, e := range r.snapshot() {
		if e.ext.Settings == nil {
			continue
		}
		h, err := settings.Load(settingsDir, e.group.Name())
		if err != nil {
			errs = append(errs, fmt.Errorf("group %s: %w", e.group.Name(), err))
			continue
		}
		if err := e.ext.Settings(h); err != nil {
			errs = append(errs, fmt.Errorf("configure group %s: %w", e.group.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// AttachPlatform hands p to every group that declares the platform hook.
func (r *Registry) AttachPlatform(p plugin.Platform) {
	for _, e := range r.snapshot() {
		if e.ext.Platform != nil {
			e.ext.Platform(p)
		}
	}
}

// Shutdown calls every group's shutdown hook, in registration order.
func (r *Registry) Shutdown() error {
	var errs []error
	for _, e := range r.snapshot() {
		if e.ext.Shutdown == nil {
			continue
		}
		if err := e.ext.Shutdown(); err != nil {
			errs = append(errs, fmt.Errorf("shutdown group %s: %w", e.group.Name(), err))
		}
	}
	return errors.Join(errs...)
}
