package statistics

import (
	"time"

	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

const (
	monthLayout    = "2006-01"
	progressMonths = 12
)

// ComputeMonthlyProgress buckets sessions into the twelve calendar months
// ending with the month of end. Every month is present, oldest first.
func ComputeMonthlyProgress(sessions []models.StudySession, end time.Time) []models.MonthlyProgress {
	end = end.UTC()
	first := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(progressMonths - 1), 0)

	progress := make([]models.MonthlyProgress, progressMonths)
	index := make(map[string]int, progressMonths)
	for i := range progress {
		m := first.AddDate(0, i, 0)
		key := m.Format(monthLayout)
		progress[i] = models.MonthlyProgress{Month: key, Label: m.Format("Jan")}
		index[key] = i
	}

	for _, s := range sessions {
		if s.StartTime.After(end) {
			continue
		}
		i, ok := index[s.StartTime.UTC().Format(monthLayout)]
		if !ok {
			continue
		}
		progress[i].Learned += s.TotalWords
		progress[i].Mastered += s.KnownWords
	}
	return progress
}
