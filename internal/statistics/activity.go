package statistics

import (
	"strings"
	"time"

	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// Timeframes accepted by the activity heatmap.
const (
	TimeframeMonth   = "month"
	TimeframeQuarter = "quarter"
	TimeframeYear    = "year"
)

// TimeframeStart resolves a heatmap timeframe to its start time. Unknown
// values fall back to a year.
func TimeframeStart(timeframe string, now time.Time) time.Time {
	switch strings.ToLower(strings.TrimSpace(timeframe)) {
	case TimeframeMonth:
		return now.AddDate(0, -1, 0)
	case TimeframeQuarter:
		return now.AddDate(0, -3, 0)
	default:
		return now.AddDate(-1, 0, 0)
	}
}

// ComputeActivityHeatmap sums session word counts per calendar date for
// sessions started at or after from. Dates without sessions are absent.
func ComputeActivityHeatmap(sessions []models.StudySession, from time.Time) map[string]int {
	activity := make(map[string]int)
	for _, s := range sessions {
		if s.StartTime.Before(from) {
			continue
		}
		activity[DateOf(s.StartTime).Format(dayLayout)] += s.TotalWords
	}
	return activity
}
