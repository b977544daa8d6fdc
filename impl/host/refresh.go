package host

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// Refresher owns the manifest time-to-live policy: it drives FetchManifests
// on a fixed interval so cached manifests never grow older than the TTL.
type Refresher struct {
	host *Host
	ttl  time.Duration
}

// NewRefresher creates a Refresher driving the passed host every ttl period.
func NewRefresher(h *Host, ttl time.Duration) *Refresher {
	return &Refresher{host: h, ttl: ttl}
}

// Run refreshes immediately, then once per TTL period until the context is
// canceled. Each cycle runs to completion - cancellation is only observed
// between cycles, matching the no-cancellation policy of in-flight fetches.
func (r *Refresher) Run(ctx context.Context) {
	r.host.FetchManifests()
	ticker := time.NewTicker(r.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug("manifest refresher stopped")
			return
		case <-ticker.C:
			r.host.FetchManifests()
		}
	}
}
