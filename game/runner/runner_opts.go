package runner

import (
	"time"

	"github.com/sirupsen/logrus"
)

// RunnerOpt configures a Runner
type RunnerOpt func(*Runner)

// WithTickLength sets the clock period. Non-positive values keep the default.
func WithTickLength(tickLength time.Duration) RunnerOpt {
	return func(r *Runner) {
		if tickLength > 0 {
			r.tickLength = tickLength
		}
	}
}

// WithPublisher adds a publisher notified of the sessions each tick changed
func WithPublisher(p Publisher) RunnerOpt {
	return func(r *Runner) {
		r.publishers = append(r.publishers, p)
	}
}

// WithLogger sets the logger for tick failures
func WithLogger(l logrus.FieldLogger) RunnerOpt {
	return func(r *Runner) {
		r.log = l
	}
}

func withClock(now func() time.Time) RunnerOpt {
	return func(r *Runner) {
		r.now = now
	}
}
