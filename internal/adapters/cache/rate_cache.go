package cache

import (
	"fmt"
	"time"

	"nbprates/internal/domain"

	"github.com/dgraph-io/ristretto"
)

// RistrettoRateCache holds looked-up rates by code and effective date.
type RistrettoRateCache struct {
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewRateCache creates a cache of at most maxItems rates. A zero ttl keeps entries until evicted.
func NewRateCache(maxItems int64, ttl time.Duration) (*RistrettoRateCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create rate cache failed: %w", err)
	}
	return &RistrettoRateCache{cache: c, ttl: ttl}, nil
}

func (c *RistrettoRateCache) Get(key domain.RateKey) (domain.Rate, bool) {
	if v, ok := c.cache.Get(key.String()); ok {
		r, ok := v.(domain.Rate)
		return r, ok
	}
	return domain.Rate{}, false
}

func (c *RistrettoRateCache) Set(rate domain.Rate) {
	if c.ttl > 0 {
		c.cache.SetWithTTL(rate.Key().String(), rate, 1, c.ttl)
		return
	}
	c.cache.Set(rate.Key().String(), rate, 1)
}

func (c *RistrettoRateCache) CleanBatch(keys []domain.RateKey) {
	for _, key := range keys {
		c.cache.Del(key.String())
	}
}

func (c *RistrettoRateCache) Close() { c.cache.Close() }
