package tiles

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/paulmach/orb/maptile"
	"golang.org/x/sync/singleflight"

	"trailmap/internal/metrics"
)

// Key returns the z/x/y cache key of a tile.
func Key(t maptile.Tile) string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// Manager caches decoded tiles in memory and coalesces concurrent requests
// for the same tile. Failures are not cached.
type Manager struct {
	src   Source
	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]image.Image
}

func NewManager(src Source) *Manager {
	return &Manager{
		src:   src,
		cache: make(map[string]image.Image),
	}
}

func (m *Manager) Fetch(ctx context.Context, t maptile.Tile) (image.Image, error) {
	key := Key(t)

	m.mu.RLock()
	img, ok := m.cache[key]
	m.mu.RUnlock()
	if ok {
		metrics.TileCache.WithLabelValues("hit").Inc()
		return img, nil
	}
	metrics.TileCache.WithLabelValues("miss").Inc()

	v, err, _ := m.group.Do(key, func() (interface{}, error) {
		img, err := m.src.Fetch(ctx, t)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.cache[key] = img
		m.mu.Unlock()
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// Len is the number of cached tiles.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.cache)
}

func (m *Manager) Clear() {
	m.mu.Lock()
	m.cache = make(map[string]image.Image)
	m.mu.Unlock()
}
