package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label value constants to prevent typos
const (
	// Run insert results
	ResultInserted  = "inserted"
	ResultDuplicate = "duplicate"
	ResultFailed    = "failed"

	// Cascade steps
	StepPersonalBests = "personal_bests"
	StepStreak        = "streak"
	StepAchievements  = "achievements"
	StepChallenges    = "challenges"
	StepEvents        = "events"
	StepShoe          = "shoe"
	StepActivityLog   = "activity_log"

	// Leaderboard modes
	ModeYearlyDistance = "yearly_distance"
	ModeBestTime       = "best_time"

	// Scheduled jobs
	JobChallengeGeneration = "challenge_generation"
	JobReconcile           = "reconcile"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint", "status_code"},
	)
)

// Sync pipeline metrics
var (
	RunsSyncedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "runs_synced_total",
			Help: "Runs received by sync, by insert result",
		},
		[]string{"result"},
	)

	SyncStepTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_step_total",
			Help: "Cascade step outcomes for newly inserted runs",
		},
		[]string{"step", "status"},
	)

	SyncStepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_step_duration_seconds",
			Help:    "Duration of each cascade step",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"step"},
	)

	AchievementsUnlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "achievements_unlocked_total",
			Help: "Achievements unlocked, by category",
		},
		[]string{"category"},
	)
)

// Leaderboard metrics
var (
	LeaderboardQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "leaderboard_query_duration_seconds",
			Help:    "Leaderboard query latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"mode"},
	)

	LeaderboardCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leaderboard_cache_total",
			Help: "Leaderboard page cache lookups, by hit or miss",
		},
		[]string{"mode", "outcome"},
	)
)

// Scheduler metrics
var (
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduled_job_runs_total",
			Help: "Scheduled job executions, by result",
		},
		[]string{"job", "result"},
	)
)
