package models

import (
	"fmt"
	"strings"
)

// Kind identifies the capability a provider offers.
type Kind string

const (
	// KindStorage providers resolve identifiers to readable streams.
	KindStorage Kind = "storage"
	// KindIndexer providers build indexes from streams.
	KindIndexer Kind = "indexer"
	// KindQuery providers answer queries against their indexes.
	KindQuery Kind = "query"
)

// Kinds lists every capability kind in display order.
var Kinds = []Kind{KindStorage, KindIndexer, KindQuery}

// Valid returns true if the kind is a known value.
func (k Kind) Valid() bool {
	switch k {
	case KindStorage, KindIndexer, KindQuery:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind parses a kind name case-insensitively.
// "index" and "indexing" are accepted for KindIndexer.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "storage":
		return KindStorage, nil
	case "indexer", "index", "indexing":
		return KindIndexer, nil
	case "query":
		return KindQuery, nil
	default:
		return "", fmt.Errorf("unknown provider kind %q", s)
	}
}
