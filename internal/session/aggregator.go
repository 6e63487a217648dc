// Package session holds the open/closed state machine of a study session.
// It never touches word state; callers apply the review to the word separately.
package session

import (
	"fmt"
	"time"

	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// Start creates an open session with no results.
func Start(userID, bookID int64, at time.Time) *models.StudySession {
	return &models.StudySession{
		UserID:      userID,
		BookID:      bookID,
		StartTime:   at,
		WordResults: []models.WordResult{},
	}
}

// RecordResult appends one reviewed word to an open session.
func RecordResult(s *models.StudySession, wordID int64, known bool, timeSpent time.Duration, at time.Time) error {
	if s == nil {
		return fmt.Errorf("record result: %w", models.ErrSessionNotFound)
	}
	if s.Closed() {
		return fmt.Errorf("record result for session %d: %w", s.ID, models.ErrSessionClosed)
	}
	if timeSpent < 0 {
		return fmt.Errorf("time spent must not be negative, got %v: %w", timeSpent, models.ErrValidation)
	}

	s.WordResults = append(s.WordResults, models.WordResult{
		SessionID:  s.ID,
		WordID:     wordID,
		Known:      known,
		TimeSpent:  timeSpent,
		ReviewedAt: at,
	})
	return nil
}

// Close ends the session and freezes its counters. A closed session is never
// reopened or recomputed; a second Close fails and leaves it untouched.
func Close(s *models.StudySession, endTime time.Time) (models.SessionSummary, error) {
	if s == nil {
		return models.SessionSummary{}, fmt.Errorf("close session: %w", models.ErrSessionNotFound)
	}
	if s.Closed() {
		return models.SessionSummary{}, fmt.Errorf("close session %d: %w", s.ID, models.ErrSessionClosed)
	}
	if endTime.Before(s.StartTime) {
		return models.SessionSummary{}, fmt.Errorf("end time %s precedes start time %s: %w",
			endTime.Format(time.RFC3339), s.StartTime.Format(time.RFC3339), models.ErrValidation)
	}

	known := 0
	for _, r := range s.WordResults {
		if r.Known {
			known++
		}
	}

	end := endTime
	s.EndTime = &end
	s.Duration = endTime.Sub(s.StartTime)
	s.TotalWords = len(s.WordResults)
	s.KnownWords = known
	s.UnknownWords = s.TotalWords - known

	return Summarize(s), nil
}

// Summarize returns the frozen counters of a session.
func Summarize(s *models.StudySession) models.SessionSummary {
	return models.SessionSummary{
		SessionID:    s.ID,
		Duration:     s.Duration,
		TotalWords:   s.TotalWords,
		KnownWords:   s.KnownWords,
		UnknownWords: s.UnknownWords,
	}
}
