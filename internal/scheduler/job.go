package scheduler

import "context"

// Job is a unit of background work. Jobs with an empty schedule only run
// on demand, from the CLI or at startup.
type Job interface {
	// Name identifies the job in logs, metrics and the CLI.
	Name() string

	// Schedule is a robfig/cron spec such as "5 0 * * *" or "@hourly".
	Schedule() string

	Execute(ctx context.Context) error
}
