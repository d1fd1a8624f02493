package service

import (
	"fmt"
	"time"

	"paceline.app/community/internal/entity"
	leaderboardRepo "paceline.app/community/internal/modules/leaderboard/repository"
)

type ageBucket struct {
	low  int
	high int // inclusive; 0 means open ended
}

var ageGroups = map[string]ageBucket{
	"18-29": {18, 29},
	"30-39": {30, 39},
	"40-49": {40, 49},
	"50-59": {50, 59},
	"60+":   {60, 0},
}

// ageFilter maps an age group to a half-open range of birth dates: a runner
// is in [low, high+1) years old on ref.
func ageFilter(group string, ref time.Time) (after, onOrBefore *string, err error) {
	bucket, ok := ageGroups[group]
	if !ok {
		return nil, nil, fmt.Errorf("unknown age group %q", group)
	}

	ref = ref.UTC()
	latest := ref.AddDate(-bucket.low, 0, 0).Format(entity.DateLayout)
	onOrBefore = &latest
	if bucket.high > 0 {
		earliest := ref.AddDate(-(bucket.high + 1), 0, 0).Format(entity.DateLayout)
		after = &earliest
	}
	return after, onOrBefore, nil
}

func buildFilter(gender, ageGroup string, ref time.Time) (leaderboardRepo.Filter, error) {
	var f leaderboardRepo.Filter
	if gender != "" {
		f.Gender = &gender
	}
	if ageGroup != "" {
		after, onOrBefore, err := ageFilter(ageGroup, ref)
		if err != nil {
			return f, err
		}
		f.BornAfter = after
		f.BornOnOrBefore = onOrBefore
	}
	return f, nil
}
