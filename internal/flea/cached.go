package flea

import (
	"fmt"
	"time"

	"github.com/stashbroker/broker/pkg/cache"
)

// CachedEstimator wraps Estimator with a TTL cache so repeated table
// rebuilds within the TTL don't re-scan the listing index per template.
type CachedEstimator struct {
	estimator *Estimator
	cache     cache.Cache
	ttl       time.Duration
}

// NewCachedEstimator creates a new cached estimator.
func NewCachedEstimator(estimator *Estimator, c cache.Cache) *CachedEstimator {
	return &CachedEstimator{
		estimator: estimator,
		cache:     c,
		ttl:       1 * time.Hour,
	}
}

// RepresentativePrice returns the cached representative price, computing
// and caching it on a miss.
func (c *CachedEstimator) RepresentativePrice(templateID string) (float64, error) {
	key := fmt.Sprintf("fleaprice:%s", templateID)

	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			if price, ok := cached.(float64); ok {
				return price, nil
			}
		}
	}

	price, err := c.estimator.RepresentativePrice(templateID)
	if err != nil {
		return 0, err
	}

	if c.cache != nil {
		c.cache.Set(key, price, c.ttl)
	}

	return price, nil
}
