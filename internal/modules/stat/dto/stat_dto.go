package dto

type CommunityStats struct {
	TotalUsers           int64 `json:"total_users"`
	LeaderboardOptIns    int64 `json:"leaderboard_opt_ins"`
	TotalRuns            int64 `json:"total_runs"`
	EligibleRuns         int64 `json:"eligible_runs"`
	RunsLast7Days        int64 `json:"runs_last_7_days"`
	ActiveChallenges     int64 `json:"active_challenges"`
	UpcomingEvents       int64 `json:"upcoming_events"`
	AchievementsUnlocked int64 `json:"achievements_unlocked"`
}
