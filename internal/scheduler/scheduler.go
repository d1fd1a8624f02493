// Package scheduler runs the periodic maintenance jobs: challenge
// generation and achievement reconciliation.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"paceline.app/community/internal/metrics"
	"paceline.app/community/pkg/apperror"
)

const jobTimeout = 10 * time.Minute

type Scheduler struct {
	cron *cron.Cron
	jobs []Job
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		// Overlapping ticks of a slow job are skipped rather than stacked.
		cron: cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		jobs: make([]Job, 0),
	}
}

// Register adds a job and schedules it when it has a cron spec.
func (s *Scheduler) Register(job Job) error {
	s.jobs = append(s.jobs, job)

	schedule := job.Schedule()
	if schedule == "" {
		log.Printf("📝 [%s] Registered as on-demand job (no schedule)", job.Name())
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.run(context.Background(), job) }); err != nil {
		return fmt.Errorf("schedule %s with %q: %w", job.Name(), schedule, err)
	}
	log.Printf("📅 [%s] Scheduled with cron: %s", job.Name(), schedule)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("🚀 Scheduler started with %d registered jobs", len(s.jobs))
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("🛑 Scheduler stopped")
}

// RunByName executes a registered job immediately.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			log.Printf("🎯 [%s] Running on-demand execution...", name)
			return s.run(ctx, job)
		}
	}
	return fmt.Errorf("job %q not found: %w", name, apperror.ErrNotFound)
}

func (s *Scheduler) Jobs() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}

func (s *Scheduler) run(ctx context.Context, job Job) error {
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	if err := job.Execute(ctx); err != nil {
		metrics.JobRunsTotal.WithLabelValues(job.Name(), "error").Inc()
		log.Printf("❌ [%s] Job failed after %s: %v", job.Name(), time.Since(start).Round(time.Millisecond), err)
		return err
	}
	metrics.JobRunsTotal.WithLabelValues(job.Name(), "success").Inc()
	log.Printf("✅ [%s] Job completed in %s", job.Name(), time.Since(start).Round(time.Millisecond))
	return nil
}
