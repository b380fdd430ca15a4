package runner

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultTickLength gives a 20 Hz clock
	DefaultTickLength = 50 * time.Millisecond
	// maxCatchUp bounds how many tick lengths one tick may cover after a stall
	maxCatchUp = 4
)

// Ticker advances every realtime round. service.GameService satisfies it.
type Ticker interface {
	TickLive(ctx context.Context, elapsedMS int64) ([]string, error)
}

// Publisher is told which rounds changed after each tick
type Publisher interface {
	Publish(ctx context.Context, sessionIDs []string)
}

// Runner is the server clock for realtime sessions
type Runner struct {
	tickLength time.Duration
	ticker     Ticker
	publishers []Publisher
	log        logrus.FieldLogger
	now        func() time.Time
}

// NewRunner creates a runner driving t
func NewRunner(t Ticker, opts ...RunnerOpt) *Runner {
	r := &Runner{
		tickLength: DefaultTickLength,
		ticker:     t,
		log:        logrus.StandardLogger(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Start ticks until ctx is cancelled. Elapsed time is measured between
// ticks so a slow tick does not slow the rounds down.
func (r *Runner) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.tickLength)
	defer ticker.Stop()

	last := r.now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			var ms int64
			ms, last = elapsedSince(last, r.now(), r.tickLength*maxCatchUp)
			r.Tick(ctx, ms)
		}
	}
}

// elapsedSince returns the whole milliseconds between last and now, capped at
// limit, and the instant they account for. The sub-millisecond remainder stays
// behind for the next tick.
func elapsedSince(last, now time.Time, limit time.Duration) (int64, time.Time) {
	elapsed := now.Sub(last)
	if elapsed > limit {
		last = now.Add(-limit)
		elapsed = limit
	}
	ms := elapsed.Milliseconds()
	return ms, last.Add(time.Duration(ms) * time.Millisecond)
}

// Tick advances realtime rounds by elapsedMS and publishes the ones that
// changed. Failures are logged; the clock keeps running.
func (r *Runner) Tick(ctx context.Context, elapsedMS int64) []string {
	if elapsedMS <= 0 {
		return nil
	}

	updated, err := r.ticker.TickLive(ctx, elapsedMS)
	if err != nil && ctx.Err() == nil {
		r.log.WithError(err).WithField("elapsed_ms", elapsedMS).Warn("tick failed")
	}
	if len(updated) == 0 {
		return updated
	}

	for _, p := range r.publishers {
		p.Publish(ctx, updated)
	}
	return updated
}
