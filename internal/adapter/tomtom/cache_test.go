package tomtom

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/cargosense-risk/internal/domain"
)

type countingGeocoder struct {
	coords map[string]domain.Coordinate
	err    error
	calls  int
}

func (g *countingGeocoder) Geocode(_ context.Context, name string) (domain.Coordinate, bool, error) {
	g.calls++
	if g.err != nil {
		return domain.Coordinate{}, false, g.err
	}
	c, ok := g.coords[name]
	return c, ok, nil
}

func TestCachedGeocoder(t *testing.T) {
	ctx := context.Background()

	t.Run("second lookup hits the cache", func(t *testing.T) {
		inner := &countingGeocoder{coords: map[string]domain.Coordinate{
			"BUDAPEST": {Lat: 47.4979, Lon: 19.0402},
		}}
		c := NewCachedGeocoder(inner, 10, testMetrics())

		first, found, err := c.Geocode(ctx, "BUDAPEST")
		require.NoError(t, err)
		require.True(t, found)

		second, found, err := c.Geocode(ctx, "BUDAPEST")
		require.NoError(t, err)
		require.True(t, found)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, inner.calls)
	})

	t.Run("not-found results are not cached", func(t *testing.T) {
		inner := &countingGeocoder{coords: map[string]domain.Coordinate{}}
		c := NewCachedGeocoder(inner, 10, testMetrics())

		_, found, err := c.Geocode(ctx, "NOWHERE")
		require.NoError(t, err)
		assert.False(t, found)

		_, _, err = c.Geocode(ctx, "NOWHERE")
		require.NoError(t, err)
		assert.Equal(t, 2, inner.calls)
	})

	t.Run("errors are not cached", func(t *testing.T) {
		inner := &countingGeocoder{err: errors.New("upstream down")}
		c := NewCachedGeocoder(inner, 10, testMetrics())

		_, _, err := c.Geocode(ctx, "BUDAPEST")
		require.Error(t, err)
		_, _, err = c.Geocode(ctx, "BUDAPEST")
		require.Error(t, err)
		assert.Equal(t, 2, inner.calls)
	})
}

func TestLRUCache(t *testing.T) {
	t.Run("evicts least recently used at capacity", func(t *testing.T) {
		c := newLRUCache(2)
		c.put("a", domain.Coordinate{Lat: 1})
		c.put("b", domain.Coordinate{Lat: 2})
		c.put("c", domain.Coordinate{Lat: 3}) // evicts "a"

		_, ok := c.get("a")
		assert.False(t, ok)
		got, ok := c.get("b")
		require.True(t, ok)
		assert.Equal(t, 2.0, got.Lat)
	})

	t.Run("get refreshes recency", func(t *testing.T) {
		c := newLRUCache(2)
		c.put("a", domain.Coordinate{Lat: 1})
		c.put("b", domain.Coordinate{Lat: 2})

		_, ok := c.get("a")
		require.True(t, ok)

		c.put("c", domain.Coordinate{Lat: 3}) // evicts "b", not "a"
		_, ok = c.get("a")
		assert.True(t, ok)
		_, ok = c.get("b")
		assert.False(t, ok)
	})

	t.Run("put updates existing entry", func(t *testing.T) {
		c := newLRUCache(2)
		c.put("a", domain.Coordinate{Lat: 1})
		c.put("a", domain.Coordinate{Lat: 9})

		got, ok := c.get("a")
		require.True(t, ok)
		assert.Equal(t, 9.0, got.Lat)
	})
}
