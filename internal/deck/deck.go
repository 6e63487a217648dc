// Package deck builds flashcard decks from the words of a book.
package deck

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/nnimab/Smart-vocabulary-book/internal/spaced_repetition"
	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// Mode represents the order in which cards are presented
type Mode string

const (
	// Ordered keeps the book's insertion order
	Ordered Mode = "ordered"
	// Random shuffles the whole book
	Random Mode = "random"
	// Review puts due words first, then the least familiar ones
	Review Mode = "review"
)

// ParseMode validates a mode name; empty means Ordered.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return Ordered, nil
	case Ordered, Random, Review:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown deck mode %q: %w", s, models.ErrValidation)
}

// Card is one flashcard of a deck.
type Card struct {
	Word models.Word `json:"word"`
	Due  bool        `json:"due"`
}

// Builder creates decks. The random source is injectable so shuffles are reproducible in tests.
type Builder struct {
	mu  sync.Mutex // guards rnd
	rnd *rand.Rand
}

// NewBuilder creates a deck builder; a nil rnd is seeded from the clock.
func NewBuilder(rnd *rand.Rand) *Builder {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Builder{rnd: rnd}
}

// Build arranges words for the given mode and keeps at most limit cards (limit <= 0 keeps all).
// The input slice is not modified.
func (b *Builder) Build(words []models.Word, mode Mode, limit int, now time.Time) []Card {
	deck := make([]models.Word, len(words))
	copy(deck, words)

	switch mode {
	case Random:
		b.mu.Lock()
		b.rnd.Shuffle(len(deck), func(i, j int) {
			deck[i], deck[j] = deck[j], deck[i]
		})
		b.mu.Unlock()
	case Review:
		sortForReview(deck, now)
	}

	// Limit to requested count
	if limit > 0 && len(deck) > limit {
		deck = deck[:limit]
	}

	cards := make([]Card, 0, len(deck))
	for _, w := range deck {
		cards = append(cards, Card{Word: w, Due: spaced_repetition.IsDue(w, now)})
	}
	return cards
}

func sortForReview(words []models.Word, now time.Time) {
	sort.SliceStable(words, func(i, j int) bool {
		a, b := words[i], words[j]
		aDue, bDue := spaced_repetition.IsDue(a, now), spaced_repetition.IsDue(b, now)
		if aDue != bDue {
			return aDue
		}
		if aDue && !a.NextReviewAt.Equal(*b.NextReviewAt) {
			return a.NextReviewAt.Before(*b.NextReviewAt)
		}
		return a.Familiarity < b.Familiarity
	})
}
