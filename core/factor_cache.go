package core

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/signalsfoundry/laserhazard/model"
)

// DefaultFactorCacheSize bounds the memo used by long-running processes.
const DefaultFactorCacheSize = 4096

type factorKey struct {
	wavelengthNm, exposureTimeS, angularSubtenseMrad float64
}

// FactorCache memoizes ComputeCorrectionFactors on the exact input tuple.
// The mapping is constant, so entries are only ever evicted for size.
// It is safe for concurrent use.
type FactorCache struct {
	entries *lru.Cache[factorKey, model.CorrectionFactorSet]
}

// NewFactorCache builds a cache holding at most size entries.
func NewFactorCache(size int) (*FactorCache, error) {
	if size <= 0 {
		size = DefaultFactorCacheSize
	}
	entries, err := lru.New[factorKey, model.CorrectionFactorSet](size)
	if err != nil {
		return nil, fmt.Errorf("create factor cache: %w", err)
	}
	return &FactorCache{entries: entries}, nil
}

// Factors implements FactorSource.
func (c *FactorCache) Factors(wavelengthNm, exposureTimeS, angularSubtenseMrad float64) model.CorrectionFactorSet {
	key := factorKey{wavelengthNm, exposureTimeS, angularSubtenseMrad}
	if f, ok := c.entries.Get(key); ok {
		return f
	}
	f := ComputeCorrectionFactors(wavelengthNm, exposureTimeS, angularSubtenseMrad)
	c.entries.Add(key, f)
	return f
}

// Len reports how many factor sets are cached.
func (c *FactorCache) Len() int { return c.entries.Len() }
