package provider

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// catalogRefresher is implemented by aggregator providers whose
// product catalog CatalogSyncer keeps warm in the background.
type catalogRefresher interface {
	refreshCatalogNow(ctx context.Context)
}

func (p *EndOfLifeDateProvider) refreshCatalogNow(ctx context.Context) { p.http.refreshCatalog(ctx) }
func (p *EOLStatusProvider) refreshCatalogNow(ctx context.Context)     { p.http.refreshCatalog(ctx) }

// CatalogSyncer periodically refreshes the aggregator providers'
// private full-catalog cache so a user-facing lookup never pays the
// all.json round trip cold.
type CatalogSyncer struct {
	registry *Registry
	log      zerolog.Logger
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewCatalogSyncer(registry *Registry, log zerolog.Logger, interval time.Duration) *CatalogSyncer {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &CatalogSyncer{registry: registry, log: log, interval: interval, stop: make(chan struct{}), done: make(chan struct{})}
}

func (s *CatalogSyncer) Start() {
	go s.loop()
}

func (s *CatalogSyncer) Stop() {
	close(s.stop)
	<-s.done
}

func (s *CatalogSyncer) loop() {
	defer close(s.done)
	// Warm the catalog once at startup rather than waiting a full interval.
	s.syncOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.syncOnce()
		}
	}
}

func (s *CatalogSyncer) syncOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, id := range s.registry.List() {
		p, ok := s.registry.Get(id)
		if !ok {
			continue
		}
		refresher, ok := p.(catalogRefresher)
		if !ok {
			continue
		}
		refresher.refreshCatalogNow(ctx)
		s.log.Debug().Str("provider", id).Msg("catalog refreshed")
	}
}
