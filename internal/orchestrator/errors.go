package orchestrator

import (
	"errors"

	"github.com/ShayCichocki/switchyard/internal/registry"
)

var (
	// ErrNoStorage means no enabled storage provider handles the identifier.
	ErrNoStorage = errors.New("no storage plugin detected")
	// ErrProviderNotFound means a provider lookup by name failed.
	ErrProviderNotFound = registry.ErrProviderNotFound
	// ErrPathNotHandled means the named provider rejects the identifier.
	ErrPathNotHandled = errors.New("path not handled")
)
