package pricing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Resolver caches the active tier and re-resolves it on a fixed interval so
// long-lived sessions cross stage boundaries without a restart.
type Resolver struct {
	logger   *zap.Logger
	tiers    []Tier
	interval time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	current Tier
	state   State
}

func NewResolver(logger *zap.Logger, tiers []Tier, interval time.Duration) *Resolver {
	r := &Resolver{
		logger:   logger,
		tiers:    tiers,
		interval: interval,
		now:      time.Now,
	}
	r.refresh()
	return r
}

// Run re-resolves until ctx is cancelled. Last write wins on the cached state.
func (r *Resolver) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh()
		}
	}
}

func (r *Resolver) refresh() {
	tier, state := Resolve(r.tiers, r.now())

	r.mu.Lock()
	changed := state != r.state || tier.ID != r.current.ID
	r.current = tier
	r.state = state
	r.mu.Unlock()

	if changed && r.logger != nil {
		r.logger.Info("pricing stage changed",
			zap.String("stage", tier.Name), zap.String("state", state.String()))
	}
}

// Current returns the cached active tier and open/closed state.
func (r *Resolver) Current() (Tier, State) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current, r.state
}

// Tiers returns the full static stage table for display.
func (r *Resolver) Tiers() []Tier {
	return r.tiers
}
