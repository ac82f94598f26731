// Package settings loads and stores the per-group settings blob.
//
// Each provider group owns one YAML document at <dir>/<group>.yaml. The
// content is opaque to the core; groups read it through a Holder.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Holder is a group's settings document. It is safe for concurrent use.
type Holder struct {
	path string

	mu     sync.RWMutex
	values map[string]any
}

// Load reads <dir>/<group>.yaml. A missing file yields an empty holder bound
// to that path so that Save creates it.
func Load(dir, group string) (*Holder, error) {
	if group == "" {
		return nil, errors.New("settings: empty group name")
	}
	path := filepath.Join(dir, group+".yaml")
	h := &Holder{path: path, values: make(map[string]any)}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return h, nil
		}
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &h.values); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if h.values == nil {
		h.values = make(map[string]any)
	}
	return h, nil
}

// New returns an in-memory holder, mostly useful in tests.
func New(values map[string]any) *Holder {
	if values == nil {
		values = make(map[string]any)
	}
	return &Holder{values: values}
}

// Path returns the backing file path, or "" for in-memory holders.
func (h *Holder) Path() string { return h.path }

// Raw returns a shallow copy of the top-level values.
func (h *Holder) Raw() map[string]any {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[string]any, len(h.values))
	for k, v := range h.values {
		out[k] = v
	}
	return out
}

// lookup walks a dotted key through nested maps.
func (h *Holder) lookup(key string) (any, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var cur any = h.values
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the value at key, or def.
func (h *Holder) String(key, def string) string {
	v, ok := h.lookup(key)
	if !ok {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return def
	default:
		return fmt.Sprint(s)
	}
}

// Int returns the integer at key, or def.
func (h *Holder) Int(key string, def int) int {
	v, ok := h.lookup(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// Bool returns the boolean at key, or def.
func (h *Holder) Bool(key string, def bool) bool {
	v, ok := h.lookup(key)
	if !ok {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// Strings returns the string list at key. Scalars become one-element lists.
func (h *Holder) Strings(key string) []string {
	v, ok := h.lookup(key)
	if !ok || v == nil {
		return nil
	}
	switch list := v.(type) {
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return append([]string(nil), list...)
	default:
		return []string{fmt.Sprint(list)}
	}
}

// Set stores value at a dotted key, creating intermediate maps.
func (h *Holder) Set(key string, value any) {
	h.mu.Lock()
	defer h.mu.Unlock()

	parts := strings.Split(key, ".")
	cur := h.values
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[part] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// Save writes the document back to its path.
func (h *Holder) Save() error {
	if h.path == "" {
		return errors.New("settings: holder has no backing file")
	}
	h.mu.RLock()
	data, err := yaml.Marshal(h.values)
	h.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	return os.WriteFile(h.path, data, 0644)
}
