package plugin

import (
	"net/url"

	"github.com/ShayCichocki/switchyard/internal/settings"
	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

// Group is a named bundle of providers loaded as a unit.
type Group interface {
	Name() string
	StorageProviders() []Storage
	IndexProviders() []Indexer
	QueryProviders() []Query
	Extensions() Extensions
}

// Capability names an optional group hook.
type Capability string

const (
	CapabilityPlatform Capability = "platform"
	CapabilitySettings Capability = "settings"
	CapabilityShutdown Capability = "shutdown"
)

// Extensions lists the optional hooks a group declares. Nil fields are
// simply not called.
type Extensions struct {
	// Platform receives the proxy to the core once the controller exists.
	Platform func(p Platform)
	// Settings receives the group's settings document.
	Settings func(h *settings.Holder) error
	// Shutdown releases the group's resources.
	Shutdown func() error
}

// Has reports whether the hook for c is declared.
func (e Extensions) Has(c Capability) bool {
	switch c {
	case CapabilityPlatform:
		return e.Platform != nil
	case CapabilitySettings:
		return e.Settings != nil
	case CapabilityShutdown:
		return e.Shutdown != nil
	default:
		return false
	}
}

// Capabilities returns the declared hooks in a stable order.
func (e Extensions) Capabilities() []Capability {
	var out []Capability
	for _, c := range []Capability{CapabilityPlatform, CapabilitySettings, CapabilityShutdown} {
		if e.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Platform is the view of the core handed to groups that ask for it.
type Platform interface {
	Resolve(uri *url.URL) []Stream
	StorageFor(uri *url.URL) (Storage, bool)
	DispatchQuery(sources []string, text string, params models.QueryParams) *task.Task[*models.Report]
	DispatchIndexAll(uri *url.URL) *task.Task[*models.Report]
}

// BaseGroup implements Group from plain fields.
type BaseGroup struct {
	GroupName string
	Storage   []Storage
	Indexers  []Indexer
	Queries   []Query
	Ext       Extensions
}

var _ Group = (*BaseGroup)(nil)

func (g *BaseGroup) Name() string                { return g.GroupName }
func (g *BaseGroup) StorageProviders() []Storage { return g.Storage }
func (g *BaseGroup) IndexProviders() []Indexer   { return g.Indexers }
func (g *BaseGroup) QueryProviders() []Query     { return g.Queries }
func (g *BaseGroup) Extensions() Extensions      { return g.Ext }
