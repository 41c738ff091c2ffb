package services

import (
	"context"
	"sync"
	"time"

	"github.com/artisnova/aria/internal/logger"
)

// DefaultSweepInterval is how often the sweeper reclaims expired entries.
const DefaultSweepInterval = 15 * time.Minute

// Sweeper periodically purges expired cache entries to bound storage
// growth. Lazy expiry on read keeps the cache correct without it; the
// sweep only reclaims space for keys nobody asks for anymore.
type Sweeper struct {
	cache    *TieredCache
	interval time.Duration

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewSweeper creates a sweeper over the tiered cache.
func NewSweeper(cache *TieredCache, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{cache: cache, interval: interval}
}

// Start launches the sweep loop in the background. Calling Start on a
// running sweeper is a no-op.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.wg.Add(1)
	go s.run(ctx)
}

// Stop shuts the sweep loop down and waits for it to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Sweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Sweep runs one reclaim pass immediately.
func (s *Sweeper) Sweep(ctx context.Context) {
	removed, err := s.cache.PurgeExpired(ctx)
	if err != nil {
		logger.Warn("cache sweep: %v", err)
		return
	}
	if removed > 0 {
		logger.Debug("cache sweep reclaimed %d entries", removed)
	}
}
