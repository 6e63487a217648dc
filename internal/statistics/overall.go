// Package statistics derives reporting views from persisted sessions, books
// and word review histories. Every function is pure and degrades to zero or
// fallback values on sparse data instead of failing.
package statistics

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

const dayLayout = "2006-01-02"

// ComputeOverallStats sums the cached book counters and walks the sessions to
// derive streaks and study days.
func ComputeOverallStats(sessions []models.StudySession, books []models.VocabularyBook) models.OverallStats {
	stats := models.OverallStats{
		TotalWords:   lo.SumBy(books, func(b models.VocabularyBook) int { return b.TotalWords }),
		KnownWords:   lo.SumBy(books, func(b models.VocabularyBook) int { return b.KnownWords }),
		UnknownWords: lo.SumBy(books, func(b models.VocabularyBook) int { return b.UnknownWords }),
	}
	if stats.TotalWords > 0 {
		stats.MasteryRate = roundHalfUp(float64(stats.KnownWords) / float64(stats.TotalWords) * 100)
	}
	stats.TotalStudyTimeMs = lo.SumBy(sessions, func(s models.StudySession) int64 { return s.Duration.Milliseconds() })

	studyDays, current, longest := computeStreaks(sessions)
	stats.StudyDays = studyDays
	stats.CurrentStreak = current
	stats.LongestStreak = longest
	if studyDays > 0 {
		stats.AverageWordsPerDay = math.Round(float64(stats.TotalWords)/float64(studyDays)*10) / 10
	}
	return stats
}

// computeStreaks walks sessions in start order. Consecutive sessions one day
// apart extend the streak, a larger gap restarts it at 1 and sessions on the
// same day leave it unchanged.
func computeStreaks(sessions []models.StudySession) (studyDays, current, longest int) {
	sorted := make([]models.StudySession, len(sessions))
	copy(sorted, sessions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.Before(sorted[j].StartTime)
	})

	days := make(map[string]struct{})
	var last *time.Time
	for _, s := range sorted {
		day := DateOf(s.StartTime)
		days[day.Format(dayLayout)] = struct{}{}

		if last == nil {
			current = 1
		} else {
			gap := daysBetween(*last, day)
			switch {
			case gap == 1:
				current++
			case gap > 1:
				current = 1
			}
		}
		if current > longest {
			longest = current
		}
		last = &day
	}
	return len(days), current, longest
}

// DateOf truncates a timestamp to its UTC calendar date.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}

// roundHalfUp rounds like the chart front end does: halves go up.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
