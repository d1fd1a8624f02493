package testutil

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"paceline.app/community/internal/entity"
	"paceline.app/community/pkg/splits"
)

// EvenSplits builds a table of n kilometers at a constant pace.
func EvenSplits(t *testing.T, n, secPerKM int) datatypes.JSON {
	t.Helper()
	table := make([]splits.Split, n)
	for i := range table {
		secs := (i + 1) * secPerKM
		table[i] = splits.Split{Kilometer: i + 1, Time: fmt.Sprintf("%d:%02d", secs/60, secs%60)}
	}
	raw, err := json.Marshal(table)
	if err != nil {
		t.Fatalf("marshal splits: %v", err)
	}
	return raw
}

// EligibleRun is an unsaved treadmill run of km whole kilometers.
func EligibleRun(t *testing.T, userID uuid.UUID, at time.Time, km, secPerKM int) *entity.Run {
	t.Helper()
	return &entity.Run{
		ID:                    uuid.New(),
		UserID:                userID,
		CompletedAt:           at,
		DistanceKM:            float64(km),
		DurationSeconds:       float64(km * secPerKM),
		AvgPaceSecPerKM:       float64(secPerKM),
		DataSource:            entity.DataSourceBluetoothFTMS,
		IsLeaderboardEligible: true,
		KMSplits:              EvenSplits(t, km, secPerKM),
	}
}
