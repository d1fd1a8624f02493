package service

import (
	"fmt"
	"strings"
	"time"

	"paceline.app/community/internal/entity"
)

var weeklyRaceCategories = []string{"5K", "10K"}

const monthlyDistanceTargetKM = 100.0

// startOfISOWeek returns Monday 00:00 UTC of the week containing t.
func startOfISOWeek(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
}

// WeeklyRaces builds the 5K and 10K races for the week containing now and
// the week after. Series ids use the ISO week, e.g. weekly_5k_2026-W42.
func WeeklyRaces(now time.Time) []entity.Challenge {
	first := startOfISOWeek(now)

	var out []entity.Challenge
	for _, monday := range []time.Time{first, first.AddDate(0, 0, 7)} {
		end := monday.AddDate(0, 0, 7).Add(-time.Second)
		year, week := monday.ISOWeek()

		for _, category := range weeklyRaceCategories {
			category := category
			description := fmt.Sprintf("Post your fastest %s between Monday and Sunday. Only treadmill-verified runs count.", category)
			out = append(out, entity.Challenge{
				Title:            fmt.Sprintf("Weekly %s Race: %s - %s", category, monday.Format("Jan 2"), end.Format("Jan 2")),
				Description:      &description,
				ChallengeType:    entity.ChallengeWeeklyRace,
				DistanceCategory: &category,
				StartsAt:         monday,
				EndsAt:           end,
				SeriesID:         fmt.Sprintf("weekly_%s_%d-W%02d", strings.ToLower(category), year, week),
			})
		}
	}
	return out
}

// MonthlyDistance builds the cumulative distance challenge for the month
// containing now.
func MonthlyDistance(now time.Time) entity.Challenge {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	target := monthlyDistanceTargetKM
	description := fmt.Sprintf("Run %.0f km in total during %s.", target, start.Format("January"))

	return entity.Challenge{
		Title:              fmt.Sprintf("%s Distance Challenge: Run %.0fkm", start.Format("January"), target),
		Description:        &description,
		ChallengeType:      entity.ChallengeMonthlyDistance,
		CumulativeTargetKM: &target,
		StartsAt:           start,
		EndsAt:             end,
		SeriesID:           "monthly_distance_" + start.Format("2006-01"),
	}
}
