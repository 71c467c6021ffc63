package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	values  map[string]string
	ttls    map[string]time.Duration
	failGet error
	failSet error
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	if m.failGet != nil {
		return "", m.failGet
	}
	v, ok := m.values[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	if m.failSet != nil {
		return m.failSet
	}
	m.values[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

type cachedThing struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestJSONCache(t *testing.T) {
	ctx := context.Background()
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})

	t.Run("round trips values under the prefix", func(t *testing.T) {
		store := newMemStore()
		cache := NewJSONCache(store, "clover:", logger)

		cache.Set(ctx, "trending", []cachedThing{{Name: "a", Score: 3}}, time.Minute)
		assert.Equal(t, time.Minute, store.ttls["clover:trending"])

		var got []cachedThing
		require.True(t, cache.Get(ctx, "trending", &got))
		assert.Equal(t, []cachedThing{{Name: "a", Score: 3}}, got)

		cache.Delete(ctx, "trending")
		assert.False(t, cache.Get(ctx, "trending", &got))
	})

	t.Run("missing key is a miss", func(t *testing.T) {
		cache := NewJSONCache(newMemStore(), "clover:", logger)
		var got []cachedThing
		assert.False(t, cache.Get(ctx, "nope", &got))
	})

	t.Run("store errors read as misses", func(t *testing.T) {
		store := newMemStore()
		store.failGet = errors.New("connection reset")
		cache := NewJSONCache(store, "clover:", logger)

		var got []cachedThing
		assert.False(t, cache.Get(ctx, "trending", &got))
	})

	t.Run("corrupt values read as misses", func(t *testing.T) {
		store := newMemStore()
		store.values["clover:trending"] = "{not json"
		cache := NewJSONCache(store, "clover:", logger)

		var got []cachedThing
		assert.False(t, cache.Get(ctx, "trending", &got))
	})

	t.Run("write failures are dropped", func(t *testing.T) {
		store := newMemStore()
		store.failSet = errors.New("readonly replica")
		cache := NewJSONCache(store, "clover:", logger)

		cache.Set(ctx, "trending", cachedThing{Name: "x"}, time.Minute)
		assert.Empty(t, store.values)
	})
}
