package models

import "time"

// WordResult is one reviewed word inside a study session.
type WordResult struct {
	ID         int64         `json:"-" db:"id"`
	SessionID  int64         `json:"-" db:"session_id"`
	WordID     int64         `json:"word_id" db:"word_id"`
	Known      bool          `json:"known" db:"known"`
	TimeSpent  time.Duration `json:"time_spent" db:"time_spent_ns"`
	ReviewedAt time.Time     `json:"reviewed_at" db:"reviewed_at"`
}

// StudySession is one bounded review sitting of a user against a book.
// The word counters are only meaningful once EndTime is set.
type StudySession struct {
	ID           int64         `json:"id" db:"id"`
	UserID       int64         `json:"user_id" db:"user_id"`
	BookID       int64         `json:"book_id" db:"book_id"`
	BookName     string        `json:"book_name,omitempty" db:"book_name"`
	StartTime    time.Time     `json:"start_time" db:"start_time"`
	EndTime      *time.Time    `json:"end_time,omitempty" db:"end_time"`
	Duration     time.Duration `json:"duration" db:"duration_ns"`
	TotalWords   int           `json:"total_words" db:"total_words"`
	KnownWords   int           `json:"known_words" db:"known_words"`
	UnknownWords int           `json:"unknown_words" db:"unknown_words"`
	WordResults  []WordResult  `json:"word_results" db:"-"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// Closed reports whether the session has been ended.
func (s *StudySession) Closed() bool {
	return s.EndTime != nil
}

// SessionSummary is returned when a session is closed.
type SessionSummary struct {
	SessionID    int64         `json:"session_id"`
	Duration     time.Duration `json:"duration"`
	TotalWords   int           `json:"total_words"`
	KnownWords   int           `json:"known_words"`
	UnknownWords int           `json:"unknown_words"`
}
