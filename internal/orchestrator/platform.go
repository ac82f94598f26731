package orchestrator

import (
	"net/url"

	"github.com/ShayCichocki/switchyard/internal/plugin"
	"github.com/ShayCichocki/switchyard/internal/task"
	"github.com/ShayCichocki/switchyard/pkg/models"
)

// platform is the narrow view of the controller handed to groups.
type platform struct {
	c *Controller
}

var _ plugin.Platform = platform{}

// Platform returns the view of the controller that groups may call back into.
func (c *Controller) Platform() plugin.Platform {
	return platform{c: c}
}

func (p platform) Resolve(uri *url.URL) []plugin.Stream {
	return p.c.Resolve(uri)
}

func (p platform) StorageFor(uri *url.URL) (plugin.Storage, bool) {
	return p.c.StorageFor(uri)
}

func (p platform) DispatchQuery(sources []string, text string, params models.QueryParams) *task.Task[*models.Report] {
	return p.c.DispatchQueryMany(sources, text, params)
}

func (p platform) DispatchIndexAll(uri *url.URL) *task.Task[*models.Report] {
	return p.c.DispatchIndexAll(uri)
}
