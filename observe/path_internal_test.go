package observe

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// should only keep the paths watchers use
func TestPathCacheHoldsWatchPaths(t *testing.T) {
	sys := CreateSystem(nil)
	store := sys.Observe(map[string]any{"a": map[string]any{"b": 1}}).(*Record)

	for i := 0; i < 100; i++ {
		_, err := sys.Get(store, "a.b."+strconv.Itoa(i))
		require.NoError(t, err)
	}
	assert.Empty(t, sys.paths)

	_, err := sys.Watch(store, "a.b", nil)
	require.NoError(t, err)
	_, err = sys.Watch(store, "a.b", nil)
	require.NoError(t, err)
	assert.Len(t, sys.paths, 1)

	v, err := sys.Get(store, "a.b")
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

// should stop caching once the cache is full
func TestPathCacheBounded(t *testing.T) {
	sys := CreateSystem(nil)
	store := sys.Observe(map[string]any{}).(*Record)

	for i := 0; i < maxCachedPaths+10; i++ {
		_, err := sys.Watch(store, "k"+strconv.Itoa(i), nil)
		require.NoError(t, err)
	}
	assert.Len(t, sys.paths, maxCachedPaths)
}
