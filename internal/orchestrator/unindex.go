package orchestrator

import (
	"log"
	"net/url"
)

// Unindex removes uri from every enabled indexer, synchronously. It does
// nothing when no storage handles uri. Indexer errors are logged and do not
// stop the remaining indexers.
func (c *Controller) Unindex(uri *url.URL) {
	if _, ok := c.registry.StorageFor(uri); !ok {
		log.Printf("[unindex] no storage plugin for %s", uri)
		return
	}
	for _, x := range c.registry.Indexers(true) {
		if err := x.Unindex(uri); err != nil {
			log.Printf("[unindex] %s failed for %s: %v", x.Name(), uri, err)
			c.events.Emit(Event{Type: EventUnindex, Provider: x.Name(), URI: uri.String(), Error: err})
			continue
		}
		c.logger.Record("unindex", "uri", uri, "provider", x.Name())
		c.events.Emit(Event{Type: EventUnindex, Provider: x.Name(), URI: uri.String()})
	}
}
