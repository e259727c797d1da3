package util

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// DefaultUserAgents are realistic desktop browser identities used when the
// config does not supply a pool.
var DefaultUserAgents = []string{
	// Chrome on Windows
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	// Chrome on Mac
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	// Firefox on Windows
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/119.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:120.0) Gecko/20100101 Firefox/120.0",
	// Firefox on Mac
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/119.0",
	// Safari on Mac
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	// Edge on Windows
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36 Edg/119.0.0.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
	// Chrome on Linux
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// Rotator hands out user agents, never the same one twice in a row when the
// pool has more than one entry.
type Rotator struct {
	mu   sync.Mutex
	pool []string
	last int
	rng  *rand.Rand
}

func NewRotator(pool []string) (*Rotator, error) {
	return NewSeededRotator(pool, time.Now().UnixNano())
}

// NewSeededRotator is the deterministic variant for tests.
func NewSeededRotator(pool []string, seed int64) (*Rotator, error) {
	if len(pool) == 0 {
		return nil, errors.New("user agent pool is empty")
	}
	p := make([]string, len(pool))
	copy(p, pool)
	return &Rotator{
		pool: p,
		last: -1,
		rng:  rand.New(rand.NewSource(seed)),
	}, nil
}

func (r *Rotator) Next() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.pool) == 1 {
		r.last = 0
		return r.pool[0]
	}

	// draw from the pool minus the previous pick
	i := r.rng.Intn(len(r.pool) - 1)
	if r.last >= 0 && i >= r.last {
		i++
	}
	r.last = i
	return r.pool[i]
}

func (r *Rotator) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pool)
}
