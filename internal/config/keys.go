package config

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/switchyard/pkg/models"
)

// ProviderKey names one provider of one kind.
type ProviderKey struct {
	Kind models.Kind
	Name string
}

func (k ProviderKey) String() string {
	return string(k.Kind) + ":" + k.Name
}

// ParseProviderKey parses "kind:name". A bare name is rejected because
// the same name may exist for several kinds.
func ParseProviderKey(s string) (ProviderKey, error) {
	kind, name, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || strings.TrimSpace(name) == "" {
		return ProviderKey{}, fmt.Errorf("invalid provider key %q: expected kind:name", s)
	}
	k, err := models.ParseKind(kind)
	if err != nil {
		return ProviderKey{}, fmt.Errorf("invalid provider key %q: %w", s, err)
	}
	return ProviderKey{Kind: k, Name: strings.TrimSpace(name)}, nil
}

// ParseDisabled parses the providers.disabled list.
func ParseDisabled(entries []string) ([]ProviderKey, error) {
	keys := make([]ProviderKey, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e) == "" {
			continue
		}
		k, err := ParseProviderKey(e)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
