// Package scheduler fires the recurring jobs: the morning nudge dispatch,
// the midday challenge reminder, the evening spot reminder and the nightly
// finalization sweep. Jobs are independent; a job that exhausts its retries
// is abandoned until its next firing.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"cavemindAPI/internal/apperr"
	"cavemindAPI/middleware"
)

const (
	maxAttempts = 3
	retryDelay  = 3 * time.Second
	jobTimeout  = 2 * time.Minute
)

// Job is one scheduled unit of work. Implementations read their own data
// through the shared pool; no state is carried between firings.
type Job func(ctx context.Context) error

type Scheduler struct {
	cron  *cron.Cron
	sleep func(time.Duration)
}

func New(loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithLocation(loc)),
		sleep: time.Sleep,
	}
}

// Register adds a job at the given cron spec, wrapped in RunSafe.
func (s *Scheduler) Register(spec, name string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.RunSafe(context.Background(), name, job)
	})
	return err
}

// Start begins the trigger loop. Call after all jobs are registered.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("scheduler: started with %d jobs", len(s.cron.Entries()))
}

// Stop halts the trigger loop and returns a context that is done once any
// running job has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunSafe executes a job with bounded retry: up to maxAttempts tries, a
// fixed delay between them, but only for transient persistence errors. Any
// other failure is logged and abandoned immediately. A job failing every
// attempt is simply skipped until its next scheduled firing.
func (s *Scheduler) RunSafe(ctx context.Context, name string, job Job) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
		err := job(jobCtx)
		cancel()

		if err == nil {
			if attempt > 1 {
				log.Printf("scheduler: job %q succeeded on attempt %d", name, attempt)
			} else {
				log.Printf("scheduler: job %q completed", name)
			}
			middleware.RecordJobRun(name, "success")
			return
		}

		if !apperr.IsTransient(err) {
			log.Printf("scheduler: job %q failed: %v", name, err)
			middleware.RecordJobRun(name, "failed")
			return
		}

		log.Printf("scheduler: job %q hit transient error on attempt %d: %v", name, attempt, err)
		middleware.RecordJobRun(name, "retried")
		if attempt < maxAttempts {
			s.sleep(retryDelay)
		}
	}
	log.Printf("scheduler: job %q abandoned after %d attempts", name, maxAttempts)
	middleware.RecordJobRun(name, "abandoned")
}
