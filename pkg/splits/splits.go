// Package splits extracts segment times from per-kilometer split tables.
//
// A split table holds one entry per completed kilometer. Each entry carries
// the cumulative elapsed time at that kilometer mark as a clock string
// ("M:SS" or "H:MM:SS").
package splits

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrMalformedClock = errors.New("malformed clock value")

type Split struct {
	Kilometer int    `json:"kilometer"`
	Pace      string `json:"pace,omitempty"`
	Time      string `json:"time"`
}

// Decode reads a JSON split table. An empty input yields no splits.
func Decode(raw []byte) ([]Split, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var out []Split
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode splits: %w", err)
	}
	return out, nil
}

// ParseClock converts "M:SS" or "H:MM:SS" into seconds.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, s)
	}

	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrMalformedClock, s)
		}
		total = total*60 + n
	}
	return total, nil
}

// Cumulative orders the table by kilometer and returns the cumulative
// seconds at each mark. A single unparseable entry fails the whole table.
func Cumulative(table []Split) ([]int, error) {
	ordered := make([]Split, len(table))
	copy(ordered, table)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Kilometer < ordered[j].Kilometer
	})

	out := make([]int, len(ordered))
	for i, s := range ordered {
		secs, err := ParseClock(s.Time)
		if err != nil {
			return nil, err
		}
		out[i] = secs
	}
	return out, nil
}

// FastestWindow returns the minimum positive elapsed time over every window
// of exactly targetKM consecutive kilometers. The window ending at index e
// covers cumulative[e] minus the mark just before its start, or
// cumulative[e] itself when it starts at the first kilometer.
func FastestWindow(cumulative []int, targetKM int) (int, bool) {
	if targetKM <= 0 || len(cumulative) < targetKM {
		return 0, false
	}

	best := 0
	for start := 0; start+targetKM <= len(cumulative); start++ {
		end := start + targetKM - 1
		elapsed := cumulative[end]
		if start > 0 {
			elapsed -= cumulative[start-1]
		}
		if elapsed > 0 && (best == 0 || elapsed < best) {
			best = elapsed
		}
	}
	return best, best > 0
}

// FastestSegment is Cumulative followed by FastestWindow. Malformed tables
// report no time.
func FastestSegment(table []Split, targetKM int) (int, bool) {
	if len(table) < targetKM {
		return 0, false
	}
	cumulative, err := Cumulative(table)
	if err != nil {
		return 0, false
	}
	return FastestWindow(cumulative, targetKM)
}

// QualifyingTime is the race-standing time of a run over a course of
// courseKM: the run must cover the full course, and the fastest window of
// the course's whole kilometers is used.
func QualifyingTime(runKM, courseKM float64, table []Split) (int, bool) {
	if courseKM <= 0 || runKM < courseKM {
		return 0, false
	}
	return FastestSegment(table, int(courseKM))
}
