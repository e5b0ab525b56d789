// Package slots tracks per-bucket occupancy, where a bucket is one
// (category, gender) pairing with a fixed slot capacity.
package slots

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Source yields the authoritative bucket counts, keyed "{CATEGORY}_{GENDER}".
type Source interface {
	BucketCounts(ctx context.Context) (map[string]int, error)
}

// Counter keeps a cached occupancy snapshot refreshed on an interval and on
// demand before quota-sensitive validation. The cache is advisory only; the
// data layer makes the final accept/reject call.
type Counter struct {
	logger *zap.Logger
	src    Source
	gauge  *prometheus.GaugeVec

	mu       sync.RWMutex
	counts   map[string]int
	interval time.Duration
}

func NewCounter(logger *zap.Logger, src Source, interval time.Duration, reg prometheus.Registerer) *Counter {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "registration_bucket_occupancy",
		Help: "Registered athletes per category/gender bucket.",
	}, []string{"category", "gender"})
	if reg != nil {
		reg.MustRegister(gauge)
	}

	return &Counter{
		logger:   logger,
		src:      src,
		gauge:    gauge,
		counts:   map[string]int{},
		interval: interval,
	}
}

// Run refreshes the snapshot until ctx is cancelled. A failed refresh keeps
// the previous snapshot; staleness is bounded by the next tick.
func (c *Counter) Run(ctx context.Context) {
	for {
		c.mu.RLock()
		interval := c.interval
		c.mu.RUnlock()

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
			if err := c.Refresh(ctx); err != nil {
				c.logger.Warn("slot count refresh failed", zap.Error(err))
			}
		}
	}
}

// Refresh fetches counts from the source and replaces the snapshot.
func (c *Counter) Refresh(ctx context.Context) error {
	counts, err := c.src.BucketCounts(ctx)
	if err != nil {
		return fmt.Errorf("slots.Refresh failed: %w", err)
	}

	c.mu.Lock()
	c.counts = counts
	c.mu.Unlock()

	for key, n := range counts {
		cat, gen, ok := splitKey(key)
		if ok {
			c.gauge.WithLabelValues(cat, gen).Set(float64(n))
		}
	}
	return nil
}

// Snapshot returns a copy of the cached counts.
func (c *Counter) Snapshot() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Count returns the cached occupancy of one bucket.
func (c *Counter) Count(key string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts[key]
}

// SetInterval changes the refresh period; picked up on the next tick.
func (c *Counter) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.interval = d
	c.mu.Unlock()
}

func splitKey(key string) (category, gender string, ok bool) {
	i := strings.LastIndex(key, "_")
	if i <= 0 || i == len(key)-1 {
		return "", "", false
	}
	return key[:i], key[i+1:], true
}
