package shipments

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChartCacheStoresEntry(t *testing.T) {
	cache := NewChartCache(time.Minute)
	calls := 0
	render := func() (string, error) {
		calls++
		return "html", nil
	}

	first, err := cache.GetOrRender("key", render)
	require.NoError(t, err)
	second, err := cache.GetOrRender("key", render)
	require.NoError(t, err)

	assert.Equal(t, "html", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestChartCacheExpiresAndSkipsErrors(t *testing.T) {
	cache := NewChartCache(2 * time.Millisecond)
	calls := 0
	render := func() (string, error) {
		calls++
		return "fresh", nil
	}
	_, _ = cache.GetOrRender("key", render)
	time.Sleep(5 * time.Millisecond)
	_, _ = cache.GetOrRender("key", render)
	assert.Equal(t, 2, calls)

	_, err := cache.GetOrRender("bad", func() (string, error) { return "", errors.New("boom") })
	assert.Error(t, err)
	html, err := cache.GetOrRender("bad", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", html)
}

func TestChartCacheSweepsExpiredKeys(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	cache := NewChartCache(time.Minute)
	cache.now = func() time.Time { return now }
	render := func() (string, error) { return "html", nil }

	for _, key := range []string{"a", "b", "c"} {
		_, err := cache.GetOrRender(key, render)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, cache.Prune())

	now = now.Add(2 * time.Minute)
	_, err := cache.GetOrRender("d", render)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Prune())

	now = now.Add(2 * time.Minute)
	assert.Zero(t, cache.Prune())
}

func TestCountsHashDependsOnCounts(t *testing.T) {
	a := []StatusCount{{Tab: TabPickup, Status: StatusPickup, Count: 1}}
	b := []StatusCount{{Tab: TabPickup, Status: StatusPickup, Count: 2}}
	assert.Equal(t, countsHash("t", a), countsHash("t", a))
	assert.NotEqual(t, countsHash("t", a), countsHash("t", b))
	assert.NotEqual(t, countsHash("t", a), countsHash("u", a))
}

func TestStatusChartRendersBar(t *testing.T) {
	chart := NewStatusChart(WithChartCache(nil), WithChartAssetsHost("https://cdn.example.com/echarts/"))
	html, err := chart.Render("Shipments by status", CountByTab(sampleRecords(), "admin", DefaultRoles()))
	require.NoError(t, err)
	assert.Contains(t, html, "Shipments by status")
	assert.Contains(t, html, "Payment Done")
	assert.Contains(t, html, "https://cdn.example.com/echarts/")
}

func TestStatusChartUsesCache(t *testing.T) {
	cache := &countingCache{}
	chart := NewStatusChart(WithChartCache(cache))
	counts := CountByTab(sampleRecords(), "admin", DefaultRoles())

	_, err := chart.Render("Board", counts)
	require.NoError(t, err)
	require.Len(t, cache.keys, 1)
	assert.Equal(t, "status:"+countsHash("Board", counts), cache.keys[0])
}

type countingCache struct {
	keys []string
}

func (c *countingCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	c.keys = append(c.keys, key)
	return "<div></div>", nil
}
