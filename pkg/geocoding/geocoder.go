// Package geocoding resolves city names to coordinates with a shared cache
// and one in-flight request per address.
package geocoding

import (
	"context"
	"strings"
	"time"

	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/pkg/logger"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// lookupTimeout bounds one shared flight, independent of its callers.
const lookupTimeout = 15 * time.Second

type Geocoder struct {
	cache    Cache
	provider Provider
	group    singleflight.Group
	timeout  time.Duration
}

// New builds a Geocoder. A nil provider (no API key) caches every address
// as unresolved.
func New(cache Cache, provider Provider) *Geocoder {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Geocoder{cache: cache, provider: provider, timeout: lookupTimeout}
}

// CacheKey is the lowercased, trimmed address.
func CacheKey(address string) string {
	// Casers are stateful; one per call.
	return cases.Lower(language.Und).String(strings.TrimSpace(address))
}

// Coordinates never fails because of the provider: errors are logged and
// the address is remembered as unresolved.
func (g *Geocoder) Coordinates(ctx context.Context, address string) (*domain.LatLng, error) {
	key := CacheKey(address)
	if key == "" {
		return nil, nil
	}

	if pos, ok, err := g.cache.Get(ctx, key); err != nil {
		logger.Log.Warn("geocode cache read failed", "key", key, "error", err)
	} else if ok {
		return pos, nil
	}

	// The flight is shared, so it must not die with the caller that started it.
	v, err, _ := g.group.Do(key, func() (interface{}, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()

		// A flight that just landed may have filled the cache.
		if pos, ok, err := g.cache.Get(flightCtx, key); err == nil && ok {
			return pos, nil
		}
		pos := g.lookup(flightCtx, key, address)
		if flightCtx.Err() != nil {
			// Timed out: unknown, not unresolved.
			return pos, nil
		}
		if err := g.cache.Set(flightCtx, key, pos); err != nil {
			logger.Log.Warn("geocode cache write failed", "key", key, "error", err)
		}
		return pos, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.LatLng), nil
}

func (g *Geocoder) lookup(ctx context.Context, key, address string) *domain.LatLng {
	if g.provider == nil {
		return nil
	}
	pos, err := g.provider.Lookup(ctx, strings.TrimSpace(address))
	if err != nil {
		logger.Log.Warn("geocode lookup failed", "key", key, "error", err)
		return nil
	}
	return pos
}
