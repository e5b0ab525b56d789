package slots

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSource struct {
	counts map[string]int
	err    error
	calls  int32
}

func (s *stubSource) BucketCounts(ctx context.Context) (map[string]int, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return s.counts, nil
}

func TestCounter(t *testing.T) {
	ctx := context.Background()

	t.Run("it should start with an empty snapshot", func(t *testing.T) {
		c := NewCounter(zap.NewNop(), &stubSource{}, time.Minute, nil)
		assert.Empty(t, c.Snapshot())
		assert.Equal(t, 0, c.Count("PRINCIPIANTE_MASCULINO"))
	})

	t.Run("it should replace the snapshot on refresh", func(t *testing.T) {
		src := &stubSource{counts: map[string]int{"PRINCIPIANTE_MASCULINO": 5}}
		c := NewCounter(zap.NewNop(), src, time.Minute, prometheus.NewRegistry())

		require.NoError(t, c.Refresh(ctx))
		assert.Equal(t, 5, c.Count("PRINCIPIANTE_MASCULINO"))

		src.counts = map[string]int{"PRINCIPIANTE_MASCULINO": 6, "INTERMEDIO_FEMENINO": 1}
		require.NoError(t, c.Refresh(ctx))
		assert.Equal(t, 6, c.Count("PRINCIPIANTE_MASCULINO"))
		assert.Equal(t, 1, c.Count("INTERMEDIO_FEMENINO"))
	})

	t.Run("it should keep the previous snapshot when the source fails", func(t *testing.T) {
		src := &stubSource{counts: map[string]int{"INTERMEDIO_MASCULINO": 3}}
		c := NewCounter(zap.NewNop(), src, time.Minute, nil)
		require.NoError(t, c.Refresh(ctx))

		src.err = errors.New("db down")
		require.Error(t, c.Refresh(ctx))
		assert.Equal(t, 3, c.Count("INTERMEDIO_MASCULINO"))
	})

	t.Run("it should hand out copies, not the live map", func(t *testing.T) {
		src := &stubSource{counts: map[string]int{"INTERMEDIO_FEMENINO": 2}}
		c := NewCounter(zap.NewNop(), src, time.Minute, nil)
		require.NoError(t, c.Refresh(ctx))

		snap := c.Snapshot()
		snap["INTERMEDIO_FEMENINO"] = 99
		assert.Equal(t, 2, c.Count("INTERMEDIO_FEMENINO"))
	})

	t.Run("it should refresh on the configured interval", func(t *testing.T) {
		src := &stubSource{counts: map[string]int{}}
		c := NewCounter(zap.NewNop(), src, 5*time.Millisecond, nil)

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			c.Run(runCtx)
			close(done)
		}()

		assert.Eventually(t, func() bool { return atomic.LoadInt32(&src.calls) >= 2 }, time.Second, time.Millisecond)
		cancel()
		<-done
	})

	t.Run("it should ignore a non-positive interval update", func(t *testing.T) {
		c := NewCounter(zap.NewNop(), &stubSource{}, time.Minute, nil)
		c.SetInterval(0)
		c.SetInterval(-time.Second)

		c.mu.RLock()
		defer c.mu.RUnlock()
		assert.Equal(t, time.Minute, c.interval)
	})
}

func TestSplitKey(t *testing.T) {
	cat, gen, ok := splitKey("PRINCIPIANTE_MASCULINO")
	require.True(t, ok)
	assert.Equal(t, "PRINCIPIANTE", cat)
	assert.Equal(t, "MASCULINO", gen)

	_, _, ok = splitKey("nounderscore")
	assert.False(t, ok)
}
