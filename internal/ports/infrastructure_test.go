package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequenceSource replays fixed uniforms; Normal returns the mean.
type sequenceSource struct {
	values []float64
	next   int
}

func (s *sequenceSource) Float64() float64 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func (s *sequenceSource) Normal(mean, _ float64) float64 { return mean }

// mapCache implements CacheStore over a plain map.
type mapCache struct{ data map[string][]byte }

func (m *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mapCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mapCache) Clear(context.Context) error {
	m.data = make(map[string][]byte)
	return nil
}

func TestInterfaces_Implementation(t *testing.T) {
	var _ RandomSource = (*sequenceSource)(nil)
	var _ CacheStore = (*mapCache)(nil)
	var _ MetricsCollector = NoopMetrics{}

	src := &sequenceSource{values: []float64{0.25, 0.75}}
	assert.Equal(t, 0.25, src.Float64())
	assert.Equal(t, 0.75, src.Float64())
	assert.Equal(t, 0.25, src.Float64())
	assert.Equal(t, 10.0, src.Normal(10, 3))
}

func TestCacheStore_Operations(t *testing.T) {
	ctx := context.Background()
	cache := &mapCache{data: make(map[string][]byte)}

	require.NoError(t, cache.Set(ctx, "key1", []byte("value1"), time.Hour))

	val, exists, err := cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []byte("value1"), val)

	require.NoError(t, cache.Delete(ctx, "key1"))
	_, exists, err = cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, cache.Set(ctx, "key2", []byte("v"), 0))
	require.NoError(t, cache.Clear(ctx))
	assert.Empty(t, cache.data)
}

func TestNoopMetrics(t *testing.T) {
	var m MetricsCollector = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.RecordLatency("simulate", time.Second, nil)
		m.RecordCounter("seasons", 1, map[string]string{"mode": "simulation"})
		m.RecordGauge("players", 20, nil)
		m.RecordHistogram("winner_total", 123.5, nil)
	})
}
