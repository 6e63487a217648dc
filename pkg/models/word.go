package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReviewStatus is the outcome recorded for a single review event.
type ReviewStatus string

const (
	StatusKnown   ReviewStatus = "known"
	StatusUnknown ReviewStatus = "unknown"
)

// StatusFor maps a known/unknown classification to its persisted status.
func StatusFor(known bool) ReviewStatus {
	if known {
		return StatusKnown
	}
	return StatusUnknown
}

// Familiarity bounds.
const (
	MinFamiliarity = 0
	MaxFamiliarity = 5
)

// StatusEntry is one element of a word's append-only review log.
type StatusEntry struct {
	Status ReviewStatus `json:"status" db:"status"`
	Date   time.Time    `json:"date" db:"date"`
}

// Word represents a vocabulary item under review
type Word struct {
	ID             int64         `json:"id" db:"id"`
	BookID         int64         `json:"book_id" db:"book_id"`
	Word           string        `json:"word" db:"word"`
	Definition     string        `json:"definition" db:"definition"`
	Examples       StringList    `json:"examples" db:"examples"`
	Pronunciation  string        `json:"pronunciation" db:"pronunciation"`
	Familiarity    int           `json:"familiarity" db:"familiarity"` // 0-5
	IsKnown        bool          `json:"is_known" db:"is_known"`
	ReviewCount    int           `json:"review_count" db:"review_count"`
	IncorrectCount int           `json:"incorrect_count" db:"incorrect_count"`
	LastReviewedAt *time.Time    `json:"last_reviewed_at,omitempty" db:"last_reviewed_at"`
	NextReviewAt   *time.Time    `json:"next_review_at,omitempty" db:"next_review_at"`
	StatusHistory  []StatusEntry `json:"status_history" db:"-"`
	CreatedAt      time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at" db:"updated_at"`
}

// StringList is stored as a JSON array in a text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported type %T for StringList", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode string list: %w", err)
	}
	*l = out
	return nil
}
