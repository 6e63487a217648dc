package spaced_repetition

import (
	"fmt"
	"sort"
	"time"

	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// ApplyReviewResult records one known/unknown classification on the word and
// reschedules it. isKnown always follows the latest outcome, it is never
// derived from familiarity.
func ApplyReviewResult(word *models.Word, known bool, at time.Time) error {
	if word == nil {
		return fmt.Errorf("apply review result: %w", models.ErrWordNotFound)
	}

	word.StatusHistory = append(word.StatusHistory, models.StatusEntry{
		Status: models.StatusFor(known),
		Date:   at,
	})
	word.ReviewCount++

	if known {
		word.Familiarity = clampFamiliarity(word.Familiarity + 1)
	} else {
		word.Familiarity = clampFamiliarity(word.Familiarity - 1)
		word.IncorrectCount++
	}

	word.IsKnown = known
	reviewedAt := at
	word.LastReviewedAt = &reviewedAt

	next := ComputeNextReview(word.ReviewCount, at)
	word.NextReviewAt = &next
	return nil
}

func clampFamiliarity(f int) int {
	if f < models.MinFamiliarity {
		return models.MinFamiliarity
	}
	if f > models.MaxFamiliarity {
		return models.MaxFamiliarity
	}
	return f
}

// IsDue reports whether the word should be offered for review at now:
// it is scheduled at or before now and its latest outcome was "unknown".
func IsDue(word models.Word, now time.Time) bool {
	if word.IsKnown || word.NextReviewAt == nil {
		return false
	}
	return !word.NextReviewAt.After(now)
}

// DueWords filters the words due at now and orders them by next review date.
func DueWords(words []models.Word, now time.Time) []models.Word {
	var due []models.Word
	for _, w := range words {
		if IsDue(w, now) {
			due = append(due, w)
		}
	}
	SortByNextReview(due)
	return due
}

// SortByNextReview orders words by NextReviewAt ascending; unscheduled words go last.
func SortByNextReview(words []models.Word) {
	sort.SliceStable(words, func(i, j int) bool {
		a, b := words[i].NextReviewAt, words[j].NextReviewAt
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})
}
