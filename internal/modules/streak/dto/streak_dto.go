package dto

type StreakResponse struct {
	CurrentStreak   int     `json:"current_streak"`
	LongestStreak   int     `json:"longest_streak"`
	LastRunDate     *string `json:"last_run_date"`
	StreakStartDate *string `json:"streak_start_date"`
}
