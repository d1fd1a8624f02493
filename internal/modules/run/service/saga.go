package service

import (
	"log"
	"time"

	"github.com/google/uuid"
	"paceline.app/community/internal/metrics"
	achievementDto "paceline.app/community/internal/modules/achievement/dto"
)

// StepStatus is the outcome of one cascade step for one run.
type StepStatus string

const (
	StepSucceeded StepStatus = "succeeded"
	StepSkipped   StepStatus = "skipped"
	StepFailed    StepStatus = "failed"
)

type StepOutcome struct {
	Step   string
	Status StepStatus
	Err    error
}

// RunReport is the cascade record of one newly stored run. A failed step
// never stops the steps after it.
type RunReport struct {
	RunID    uuid.UUID
	Steps    []StepOutcome
	Unlocked []achievementDto.AchievementSummary
}

// Failed lists the steps that did not complete.
func (r *RunReport) Failed() []string {
	var out []string
	for _, s := range r.Steps {
		if s.Status == StepFailed {
			out = append(out, s.Step)
		}
	}
	return out
}

func (r *RunReport) run(step string, fn func() (StepStatus, error)) {
	start := time.Now()
	status, err := fn()
	if err != nil {
		status = StepFailed
	}
	metrics.SyncStepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	metrics.SyncStepTotal.WithLabelValues(step, string(status)).Inc()

	if err != nil {
		log.Printf("⚠️ [sync] run=%s step=%s status=%s err=%v", r.RunID, step, status, err)
	} else {
		log.Printf("[sync] run=%s step=%s status=%s", r.RunID, step, status)
	}

	r.Steps = append(r.Steps, StepOutcome{Step: step, Status: status, Err: err})
}
