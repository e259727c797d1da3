package util

import (
	"context"
	"errors"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ErrRateLimitExceeded is returned by TryAcquire when a grant cannot be
// satisfied immediately. Acquire never returns it; it waits instead.
var ErrRateLimitExceeded = errors.New("rate limit exceeded")

// Limiter enforces the courtesy policy for one job board:
//   - consecutive grants are spaced by a random delay in [minDelay, maxDelay]
//   - at most maxPerWindow grants inside the trailing window (one hour)
//
// Each board owns its own Limiter; the budget is never shared across boards.
type Limiter struct {
	mu     sync.Mutex
	grants []time.Time // grant times still inside the window, oldest first
	last   time.Time   // previous grant
	delay  time.Duration

	minDelay     time.Duration
	maxDelay     time.Duration
	maxPerWindow int
	window       time.Duration

	rng *rand.Rand
	now func() time.Time
}

func NewLimiter(maxPerHour int, minDelay, maxDelay time.Duration) *Limiter {
	l := &Limiter{
		minDelay:     minDelay,
		maxDelay:     maxDelay,
		maxPerWindow: maxPerHour,
		window:       time.Hour,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
	}
	l.delay = l.nextDelay()
	return l
}

// Acquire blocks until both constraints are satisfiable, then records the
// grant. It fails only when ctx is done.
func (l *Limiter) Acquire(ctx context.Context) error {
	for {
		l.mu.Lock()
		wait := l.nextWait()
		if wait <= 0 {
			l.grant()
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}

// TryAcquire grants immediately or returns ErrRateLimitExceeded.
func (l *Limiter) TryAcquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.nextWait() > 0 {
		return ErrRateLimitExceeded
	}
	l.grant()
	return nil
}

// Window reports the sliding-window duration (the 429 backoff unit).
func (l *Limiter) Window() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.window
}

// nextWait computes how long the caller must still wait. Zero means a grant
// is available now. Caller holds l.mu.
func (l *Limiter) nextWait() time.Duration {
	now := l.now()
	l.prune(now)

	var wait time.Duration
	if !l.last.IsZero() {
		if d := l.delay - now.Sub(l.last); d > wait {
			wait = d
		}
	}
	if l.maxPerWindow > 0 && len(l.grants) >= l.maxPerWindow {
		// wait for the oldest grant to slide out of the window
		if d := l.grants[0].Add(l.window).Sub(now); d > wait {
			wait = d
		}
	}
	return wait
}

func (l *Limiter) grant() {
	now := l.now()
	l.grants = append(l.grants, now)
	l.last = now
	l.delay = l.nextDelay()
}

func (l *Limiter) prune(now time.Time) {
	cut := now.Add(-l.window)
	i := 0
	for i < len(l.grants) && !l.grants[i].After(cut) {
		i++
	}
	if i > 0 {
		l.grants = append(l.grants[:0], l.grants[i:]...)
	}
}

// nextDelay draws the spacing to enforce before the next grant.
func (l *Limiter) nextDelay() time.Duration {
	if l.maxDelay <= l.minDelay {
		return l.minDelay
	}
	return l.minDelay + time.Duration(l.rng.Int63n(int64(l.maxDelay-l.minDelay)+1))
}

// HostLimiter rate-limits per hostname as a courtesy floor for secondary
// fetches (detail pages, pagination) on top of the board Limiter.
type HostLimiter struct {
	mu sync.Mutex
	m  map[string]*rate.Limiter
	r  rate.Limit
	b  int
}

func NewHostLimiter(reqPerSec float64, burst int) *HostLimiter {
	return &HostLimiter{
		m: make(map[string]*rate.Limiter),
		r: rate.Limit(reqPerSec),
		b: burst,
	}
}

func (hl *HostLimiter) limiterFor(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	if lim, ok := hl.m[host]; ok {
		return lim
	}
	lim := rate.NewLimiter(hl.r, hl.b)
	hl.m[host] = lim
	return lim
}

func (hl *HostLimiter) WaitURL(ctx context.Context, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return hl.limiterFor("_").Wait(ctx)
	}
	return hl.limiterFor(u.Host).Wait(ctx)
}
