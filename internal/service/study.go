package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nnimab/Smart-vocabulary-book/internal/database"
	"github.com/nnimab/Smart-vocabulary-book/internal/session"
	"github.com/nnimab/Smart-vocabulary-book/internal/spaced_repetition"
	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// Session list paging bounds.
const (
	DefaultSessionPageSize = 10
	MaxSessionPageSize     = 100
)

// StudyService runs study sessions and records reviews.
type StudyService struct {
	base
}

// NewStudyService creates a new study service
func NewStudyService(db *database.DB, opts ...Option) *StudyService {
	return &StudyService{base: newBase(db, opts)}
}

// ReviewInput is one known/unknown answer given during a session.
type ReviewInput struct {
	WordID    int64
	Known     bool
	TimeSpent time.Duration
}

// ReviewOutcome is the state after a review was recorded.
type ReviewOutcome struct {
	Word   *models.Word           `json:"word"`
	Result models.WordResult      `json:"result"`
	Book   *models.VocabularyBook `json:"book,omitempty"`
}

// SessionPage is one page of a user's session history.
type SessionPage struct {
	Sessions []models.StudySession `json:"sessions"`
	Total    int                   `json:"total"`
}

// StartSession opens a session for one of the user's books and stamps the book as studied.
func (s *StudyService) StartSession(ctx context.Context, userID, bookID int64) (*models.StudySession, error) {
	now := s.now()
	var sess *models.StudySession

	err := s.db.InTx(ctx, func(r *database.Repositories) error {
		book, err := ownedBook(ctx, r, userID, bookID)
		if err != nil {
			return err
		}

		sess = session.Start(userID, bookID, now)
		sess.BookName = book.Name
		sess.CreatedAt = now
		sess.UpdatedAt = now
		if err := r.Sessions.Create(ctx, sess); err != nil {
			return err
		}
		return r.Books.TouchLastStudied(ctx, bookID, now)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "book_id": bookID, "session_id": sess.ID}).Info("study session started")
	return sess, nil
}

// ReviewWord records a result in an open session and applies it to the word.
// The word update, the session append and the book counter refresh commit together.
func (s *StudyService) ReviewWord(ctx context.Context, sessionID int64, in ReviewInput) (*ReviewOutcome, error) {
	now := s.now()
	out := &ReviewOutcome{}

	err := s.db.InTx(ctx, func(r *database.Repositories) error {
		sess, err := r.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		word, err := r.Words.GetByID(ctx, in.WordID)
		if err != nil {
			return err
		}
		if _, err := ownedBook(ctx, r, sess.UserID, word.BookID); err != nil {
			if isNotFound(err) {
				return fmt.Errorf("word %d is not in the user's books: %w", in.WordID, models.ErrWordNotFound)
			}
			return err
		}

		if err := session.RecordResult(sess, word.ID, in.Known, in.TimeSpent, now); err != nil {
			return err
		}
		if err := spaced_repetition.ApplyReviewResult(word, in.Known, now); err != nil {
			return err
		}
		word.UpdatedAt = now

		if err := r.Words.SaveReview(ctx, word); err != nil {
			return err
		}
		result := sess.WordResults[len(sess.WordResults)-1]
		if err := r.Sessions.AppendResult(ctx, sess.ID, &result); err != nil {
			return err
		}
		book, err := refreshBookStats(ctx, r, word.BookID, now)
		if err != nil {
			return err
		}
		book.Words = nil

		out.Word = word
		out.Result = result
		out.Book = book
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"session_id":   sessionID,
		"word_id":      in.WordID,
		"known":        in.Known,
		"familiarity":  out.Word.Familiarity,
		"next_review":  out.Word.NextReviewAt,
		"review_count": out.Word.ReviewCount,
	}).Debug("word reviewed")
	return out, nil
}

// EndSession closes an open session and persists its summary.
func (s *StudyService) EndSession(ctx context.Context, sessionID int64) (models.SessionSummary, error) {
	now := s.now()
	var summary models.SessionSummary

	err := s.db.InTx(ctx, func(r *database.Repositories) error {
		sess, err := r.Sessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		summary, err = session.Close(sess, now)
		if err != nil {
			return err
		}
		sess.UpdatedAt = now
		if err := r.Sessions.Close(ctx, sess); err != nil {
			return err
		}

		// the book may have been deleted while the session was open
		if _, err := refreshBookStats(ctx, r, sess.BookID, now); err != nil && !isNotFound(err) {
			return err
		}
		return nil
	})
	if err != nil {
		return models.SessionSummary{}, err
	}

	s.log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"duration":   summary.Duration.String(),
		"total":      summary.TotalWords,
		"known":      summary.KnownWords,
	}).Info("study session ended")
	return summary, nil
}

// UpdateWordFamiliarity applies a review outside of any session.
func (s *StudyService) UpdateWordFamiliarity(ctx context.Context, wordID int64, known bool) (*models.Word, error) {
	now := s.now()
	var word *models.Word

	err := s.db.InTx(ctx, func(r *database.Repositories) error {
		var err error
		word, err = r.Words.GetByID(ctx, wordID)
		if err != nil {
			return err
		}
		if err := spaced_repetition.ApplyReviewResult(word, known, now); err != nil {
			return err
		}
		word.UpdatedAt = now
		if err := r.Words.SaveReview(ctx, word); err != nil {
			return err
		}
		if word.BookID == 0 {
			return nil
		}
		_, err = refreshBookStats(ctx, r, word.BookID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return word, nil
}

// DueWords returns the user's words due for review now, earliest first.
func (s *StudyService) DueWords(ctx context.Context, userID int64) ([]models.Word, error) {
	words, err := s.db.Repositories().Words.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	due := spaced_repetition.DueWords(words, s.now())
	if due == nil {
		due = []models.Word{}
	}
	return due, nil
}

// ListSessions returns the user's sessions, newest first.
func (s *StudyService) ListSessions(ctx context.Context, userID int64, limit, offset int) (*SessionPage, error) {
	if limit <= 0 {
		limit = DefaultSessionPageSize
	}
	if limit > MaxSessionPageSize {
		limit = MaxSessionPageSize
	}
	if offset < 0 {
		offset = 0
	}

	sessions, total, err := s.db.Repositories().Sessions.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return &SessionPage{Sessions: sessions, Total: total}, nil
}

// GetSession returns a session with its word results.
func (s *StudyService) GetSession(ctx context.Context, sessionID int64) (*models.StudySession, error) {
	return s.db.Repositories().Sessions.GetByID(ctx, sessionID)
}
