package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"leadscout-engine/internal/config"
	"leadscout-engine/internal/domain"
	"leadscout-engine/internal/process"
	"leadscout-engine/internal/scrape/indeed"
	"leadscout-engine/internal/scrape/types"
	"leadscout-engine/internal/scrape/util"
	"leadscout-engine/internal/scrape/wellfound"
)

// board pairs a fetcher with its limiter window, the backoff unit after a
// 429.
type board struct {
	fetcher types.Fetcher
	window  time.Duration
}

// Runner walks every (role, location) query across the enabled boards.
// Boards run concurrently, each with its own rate limiter and user-agent
// rotator; roles run serially inside a board.
type Runner struct {
	cfg    config.Config
	boards []board

	// RawDir, when set, receives a JSON snapshot of the uncleaned leads.
	RawDir string

	maxTransientRetries int
	transientBackoff    time.Duration

	now func() time.Time

	mu    sync.Mutex
	raws  []types.RawLead
	dedup *process.Deduplicator
}

func NewRunner(cfg config.Config, proxy *util.Proxy) (*Runner, error) {
	r := &Runner{
		cfg:                 cfg,
		maxTransientRetries: 3,
		transientBackoff:    time.Second,
		now:                 time.Now,
		dedup:               process.NewDeduplicator(),
	}

	pool := cfg.UserAgents
	if len(pool) == 0 {
		pool = util.DefaultUserAgents
	}

	newBoard := func(build func(*util.Limiter, *util.Rotator) types.Fetcher) error {
		lim := util.NewLimiter(cfg.RateLimit.MaxRequestsPerHour, cfg.RateLimit.MinDelay(), cfg.RateLimit.MaxDelay())
		rot, err := util.NewRotator(pool)
		if err != nil {
			return err
		}
		r.boards = append(r.boards, board{fetcher: build(lim, rot), window: lim.Window()})
		return nil
	}

	if cfg.Sources.Wellfound.Enabled {
		err := newBoard(func(lim *util.Limiter, rot *util.Rotator) types.Fetcher {
			return wellfound.New(wellfound.Config{}, lim, rot, proxy)
		})
		if err != nil {
			return nil, err
		}
	}
	if cfg.Sources.Indeed.Enabled {
		err := newBoard(func(lim *util.Limiter, rot *util.Rotator) types.Fetcher {
			return indeed.New(indeed.Config{}, lim, rot, proxy)
		})
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// AddBoard registers an extra fetcher with its 429 backoff window. Used by
// tests and custom board wiring.
func (r *Runner) AddBoard(f types.Fetcher, window time.Duration) {
	r.boards = append(r.boards, board{fetcher: f, window: window})
}

// Run executes every query and returns the run report plus the deduplicated
// postings, newest first.
func (r *Runner) Run(ctx context.Context) (*RunResult, []domain.JobPosting, error) {
	res := newRunResult(r.cfg.Search.Roles, r.now())
	res.RunID = uuid.NewString()
	log.Printf("[run] %s: %d board(s), %d role(s)", res.RunID, len(r.boards), len(r.cfg.Search.Roles))

	var g errgroup.Group
	for _, b := range r.boards {
		b := b
		g.Go(func() error {
			r.runBoard(ctx, b, res)
			return nil
		})
	}
	_ = g.Wait()

	postings := r.dedup.Finalize()

	res.FinishedAt = r.now()
	res.TotalAfterDedup = len(postings)
	if len(postings) > 0 {
		sum := 0.0
		for _, p := range postings {
			sum += p.DataQualityScore
		}
		res.AvgQualityScore = sum / float64(len(postings))
	}

	if r.RawDir != "" {
		if err := r.snapshotRaws(res.RunID); err != nil {
			log.Printf("[run] raw snapshot failed: %v", err)
		}
	}
	return res, postings, nil
}

func (r *Runner) runBoard(ctx context.Context, b board, res *RunResult) {
	for _, role := range r.cfg.Search.Roles {
		if ctx.Err() != nil {
			// run timeout: stop issuing new fetches
			log.Printf("[%s] run deadline hit, skipping remaining roles", b.fetcher.Name())
			return
		}

		q := types.Query{
			Role:       role,
			Location:   r.cfg.Search.Location,
			MaxResults: r.cfg.Search.MaxResultsPerRole,
		}

		leads, err := r.fetchWithRetry(ctx, b, q)
		if err != nil {
			kind := types.Classify(err)
			log.Printf("[%s] role=%q failed (%s): %v", b.fetcher.Name(), role, kind, err)
			r.mu.Lock()
			rr := res.role(role)
			rr.Failures = append(rr.Failures, BoardFailure{Board: b.fetcher.Name(), Kind: kind, Err: err.Error()})
			res.ErrorCounts[kind]++
			r.mu.Unlock()
			continue
		}

		log.Printf("[%s] role=%q leads=%d", b.fetcher.Name(), role, len(leads))
		scrapedAt := r.now()
		for _, lead := range leads {
			r.dedup.Add(process.Normalize(lead, scrapedAt))
		}

		r.mu.Lock()
		r.raws = append(r.raws, leads...)
		rr := res.role(role)
		rr.Fetched += len(leads)
		rr.OKBoards++
		res.TotalFetched += len(leads)
		r.mu.Unlock()
	}
}

// fetchWithRetry applies the retry policy: transient errors get bounded
// exponential backoff, a 429 gets one retry after a full limiter window,
// blocked and parse failures surface immediately.
func (r *Runner) fetchWithRetry(ctx context.Context, b board, q types.Query) ([]types.RawLead, error) {
	transient := 0
	retriedAfter429 := false

	for {
		leads, err := b.fetcher.Fetch(ctx, q)
		if err == nil {
			return leads, nil
		}

		switch types.Classify(err) {
		case types.KindBlocked, types.KindParse:
			return nil, err

		case types.KindRateLimited:
			if retriedAfter429 {
				return nil, err
			}
			retriedAfter429 = true
			log.Printf("[%s] 429 for role=%q, backing off %s", b.fetcher.Name(), q.Role, b.window)
			if serr := sleepCtx(ctx, b.window); serr != nil {
				return nil, err
			}

		default: // transient
			transient++
			if transient > r.maxTransientRetries {
				return nil, err
			}
			backoff := r.transientBackoff << (transient - 1)
			log.Printf("[%s] transient error for role=%q, retry %d/%d in %s: %v",
				b.fetcher.Name(), q.Role, transient, r.maxTransientRetries, backoff, err)
			if serr := sleepCtx(ctx, backoff); serr != nil {
				return nil, err
			}
		}
	}
}

func (r *Runner) snapshotRaws(runID string) error {
	r.mu.Lock()
	raws := r.raws
	r.mu.Unlock()

	if err := os.MkdirAll(r.RawDir, 0o755); err != nil {
		return err
	}
	short := runID
	if len(short) > 8 {
		short = short[:8]
	}
	path := filepath.Join(r.RawDir, fmt.Sprintf("raw_leads_%s_%s.json", r.now().Format("20060102_150405"), short))
	b, err := json.MarshalIndent(raws, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
