package models

import "time"

// VocabularyBook is a named collection of words owned by a user.
// TotalWords, KnownWords and UnknownWords are a cache refreshed from Words.
type VocabularyBook struct {
	ID           int64      `json:"id" db:"id"`
	UserID       int64      `json:"user_id" db:"user_id"`
	Name         string     `json:"name" db:"name"`
	Description  string     `json:"description" db:"description"`
	Tags         StringList `json:"tags" db:"tags"`
	TotalWords   int        `json:"total_words" db:"total_words"`
	KnownWords   int        `json:"known_words" db:"known_words"`
	UnknownWords int        `json:"unknown_words" db:"unknown_words"`
	LastStudied  *time.Time `json:"last_studied,omitempty" db:"last_studied"`
	Words        []Word     `json:"words,omitempty" db:"-"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// RefreshStats recomputes the cached counters from the given word set.
func (b *VocabularyBook) RefreshStats(words []Word) {
	known := 0
	for _, w := range words {
		if w.IsKnown {
			known++
		}
	}
	b.TotalWords = len(words)
	b.KnownWords = known
	b.UnknownWords = b.TotalWords - known
}
