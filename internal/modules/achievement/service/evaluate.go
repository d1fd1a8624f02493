package service

import "paceline.app/community/internal/entity"

// Snapshot is everything a rule may look at, read once per evaluation.
type Snapshot struct {
	Unlocked      map[string]bool
	LifetimeKM    float64
	LongestRunKM  float64
	RunCount      int64
	LongestStreak int
	PersonalBests map[string]int
}

// Evaluate returns the definitions the snapshot newly qualifies for, in
// definition order. Already unlocked ids are never returned.
func Evaluate(defs []entity.AchievementDefinition, snap Snapshot) []entity.AchievementDefinition {
	var out []entity.AchievementDefinition
	for _, def := range defs {
		if snap.Unlocked[def.ID] {
			continue
		}
		if qualifies(def, snap) {
			out = append(out, def)
		}
	}
	return out
}

func qualifies(def entity.AchievementDefinition, snap Snapshot) bool {
	switch def.Category {
	case entity.AchievementDistance:
		return snap.LifetimeKM >= def.Threshold
	case entity.AchievementStreak:
		// Longest, so a broken streak keeps the credit it earned.
		return float64(snap.LongestStreak) >= def.Threshold
	case entity.AchievementPerformance:
		if def.DistanceCategory == nil {
			return false
		}
		best, ok := snap.PersonalBests[*def.DistanceCategory]
		return ok && float64(best) <= def.Threshold
	case entity.AchievementMilestone:
		if def.Threshold == 0 {
			return snap.RunCount > 0
		}
		return snap.LongestRunKM >= def.Threshold
	default:
		return false
	}
}
