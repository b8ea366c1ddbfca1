package estimate

import (
	"math/rand/v2"
	"sync"
)

// Jitter draws bounded random wait adjustments. It is safe for concurrent use.
type Jitter struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewJitter(src rand.Source) *Jitter {
	return &Jitter{rng: rand.New(src)}
}

// NewSeededJitter returns a reproducible jitter source.
func NewSeededJitter(seed uint64) *Jitter {
	return NewJitter(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Minutes returns a value in [lo, hi]. A nil Jitter always returns lo.
func (j *Jitter) Minutes(lo, hi int) int {
	if j == nil || hi <= lo {
		return lo
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return lo + j.rng.IntN(hi-lo+1)
}
