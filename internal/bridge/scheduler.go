package bridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/banshee-data/depthbridge/internal/monitoring"
	"github.com/banshee-data/depthbridge/internal/timeutil"
)

// ErrNothingToPublish is returned when no publication job is enabled; the
// process has no reason to run and should exit with an explanation.
var ErrNothingToPublish = errors.New("bridge: no publication job enabled, check config")

// Job is one periodic publication: Fire reads the shared buffer and hands
// at most one message to the link. A failed Fire is logged and the next
// tick proceeds normally; ticks are never accumulated or retried.
type Job struct {
	Name   string
	Period time.Duration
	Fire   func() error
}

// Scheduler runs its jobs on independent tickers, decoupled from the
// frame-acquisition cadence.
type Scheduler struct {
	clock timeutil.Clock
	jobs  []Job
}

// NewScheduler returns a scheduler over the given jobs, or
// ErrNothingToPublish when there are none.
func NewScheduler(clock timeutil.Clock, jobs ...Job) (*Scheduler, error) {
	if len(jobs) == 0 {
		return nil, ErrNothingToPublish
	}
	return &Scheduler{clock: clock, jobs: jobs}, nil
}

// Run fires each job at its period until ctx is cancelled, then returns
// after all job goroutines have unwound.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, job := range s.jobs {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			ticker := s.clock.NewTicker(job.Period)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C():
					if err := job.Fire(); err != nil {
						monitoring.Logf("job %s: %v", job.Name, err)
					}
				}
			}
		}(job)
	}
	wg.Wait()
}
