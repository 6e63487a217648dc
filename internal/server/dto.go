package server

import (
	"time"

	"github.com/samber/lo"

	"github.com/nnimab/Smart-vocabulary-book/internal/service"
	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// Requests

type bookRequest struct {
	UserID      int64    `json:"userId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (r bookRequest) input() service.BookInput {
	return service.BookInput{Name: r.Name, Description: r.Description, Tags: r.Tags}
}

type wordRequest struct {
	Word          string   `json:"word"`
	Definition    string   `json:"definition"`
	Pronunciation string   `json:"pronunciation"`
	Examples      []string `json:"examples"`
}

func (r wordRequest) input() service.WordInput {
	return service.WordInput{
		Word:          r.Word,
		Definition:    r.Definition,
		Pronunciation: r.Pronunciation,
		Examples:      r.Examples,
	}
}

// importRequest carries either structured words or pasted text.
type importRequest struct {
	Words []wordRequest `json:"words"`
	Text  string        `json:"text"`
}

type familiarityRequest struct {
	IsKnown *bool `json:"isKnown"`
}

func (r familiarityRequest) validate() error {
	if r.IsKnown == nil {
		return badRequest("isKnown is required")
	}
	return nil
}

type startSessionRequest struct {
	UserID int64 `json:"userId"`
	BookID int64 `json:"bookId"`
}

func (r startSessionRequest) validate() error {
	if r.UserID <= 0 || r.BookID <= 0 {
		return badRequest("userId and bookId are required")
	}
	return nil
}

type reviewRequest struct {
	WordID      int64 `json:"wordId"`
	Known       *bool `json:"known"`
	TimeSpentMs int64 `json:"timeSpent"`
}

func (r reviewRequest) validate() error {
	if r.WordID <= 0 {
		return badRequest("wordId is required")
	}
	if r.Known == nil {
		return badRequest("known is required")
	}
	return nil
}

func (r reviewRequest) input() service.ReviewInput {
	return service.ReviewInput{
		WordID:    r.WordID,
		Known:     *r.Known,
		TimeSpent: time.Duration(r.TimeSpentMs) * time.Millisecond,
	}
}

type userRequest struct {
	Name                string `json:"name"`
	NotificationEnabled *bool  `json:"notificationEnabled"`
	NotificationHour    *int   `json:"notificationHour"`
	WordsPerDay         *int   `json:"wordsPerDay"`
}

func (r userRequest) input() service.UserInput {
	return service.UserInput{
		Name:                r.Name,
		NotificationEnabled: r.NotificationEnabled,
		NotificationHour:    r.NotificationHour,
		WordsPerDay:         r.WordsPerDay,
	}
}

// Responses. Durations leave the API in milliseconds.

type wordResultResponse struct {
	WordID      int64     `json:"word_id"`
	Known       bool      `json:"known"`
	TimeSpentMs int64     `json:"time_spent"`
	ReviewedAt  time.Time `json:"reviewed_at"`
}

type sessionResponse struct {
	ID           int64                `json:"id"`
	UserID       int64                `json:"user_id"`
	BookID       int64                `json:"book_id"`
	BookName     string               `json:"book_name,omitempty"`
	StartTime    time.Time            `json:"start_time"`
	EndTime      *time.Time           `json:"end_time,omitempty"`
	DurationMs   int64                `json:"duration"`
	TotalWords   int                  `json:"total_words"`
	KnownWords   int                  `json:"known_words"`
	UnknownWords int                  `json:"unknown_words"`
	WordResults  []wordResultResponse `json:"word_results"`
}

type summaryResponse struct {
	SessionID    int64 `json:"session_id"`
	DurationMs   int64 `json:"duration"`
	TotalWords   int   `json:"total_words"`
	KnownWords   int   `json:"known_words"`
	UnknownWords int   `json:"unknown_words"`
}

type reviewResponse struct {
	Word   *models.Word           `json:"word"`
	Result wordResultResponse     `json:"result"`
	Book   *models.VocabularyBook `json:"book,omitempty"`
}

type sessionPageResponse struct {
	Sessions []sessionResponse `json:"sessions"`
	Total    int               `json:"total"`
}

func toWordResult(r models.WordResult) wordResultResponse {
	return wordResultResponse{
		WordID:      r.WordID,
		Known:       r.Known,
		TimeSpentMs: r.TimeSpent.Milliseconds(),
		ReviewedAt:  r.ReviewedAt,
	}
}

func toSession(s models.StudySession) sessionResponse {
	return sessionResponse{
		ID:           s.ID,
		UserID:       s.UserID,
		BookID:       s.BookID,
		BookName:     s.BookName,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		DurationMs:   s.Duration.Milliseconds(),
		TotalWords:   s.TotalWords,
		KnownWords:   s.KnownWords,
		UnknownWords: s.UnknownWords,
		WordResults: lo.Map(s.WordResults, func(r models.WordResult, _ int) wordResultResponse {
			return toWordResult(r)
		}),
	}
}

func toSummary(s models.SessionSummary) summaryResponse {
	return summaryResponse{
		SessionID:    s.SessionID,
		DurationMs:   s.Duration.Milliseconds(),
		TotalWords:   s.TotalWords,
		KnownWords:   s.KnownWords,
		UnknownWords: s.UnknownWords,
	}
}
