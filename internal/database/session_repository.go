package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

const sessionSelect = `SELECT s.id, s.user_id, s.book_id, COALESCE(b.name, '') AS book_name,
	s.start_time, s.end_time, s.duration_ns, s.total_words, s.known_words, s.unknown_words,
	s.created_at, s.updated_at
	FROM study_sessions s
	LEFT JOIN vocabulary_books b ON b.id = s.book_id`

// SessionRepository handles database operations for study sessions
type SessionRepository struct {
	q sqlx.ExtContext
}

// NewSessionRepository creates a new repository instance
func NewSessionRepository(q sqlx.ExtContext) *SessionRepository {
	return &SessionRepository{q: q}
}

// Create inserts a new (open) session
func (r *SessionRepository) Create(ctx context.Context, s *models.StudySession) error {
	id, err := insertReturningID(ctx, r.q, `
		INSERT INTO study_sessions (user_id, book_id, start_time, end_time, duration_ns,
			total_words, known_words, unknown_words, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		s.UserID, s.BookID, utc(s.StartTime), utcPtr(s.EndTime), int64(s.Duration),
		s.TotalWords, s.KnownWords, s.UnknownWords, utc(s.CreatedAt), utc(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	s.ID = id
	return nil
}

// GetByID returns a session with its word results
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*models.StudySession, error) {
	var s models.StudySession
	if err := sqlx.GetContext(ctx, r.q, &s, r.q.Rebind(sessionSelect+" WHERE s.id = ?"), id); err != nil {
		return nil, fmt.Errorf("failed to get session by ID: %w", mapNoRows(err, models.ErrSessionNotFound))
	}

	s.WordResults = []models.WordResult{}
	err := sqlx.SelectContext(ctx, r.q, &s.WordResults, r.q.Rebind(`
		SELECT id, session_id, word_id, known, time_spent_ns, reviewed_at
		FROM session_word_results WHERE session_id = ? ORDER BY id`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session results: %w", err)
	}
	return &s, nil
}

// AppendResult stores one reviewed word of the session
func (r *SessionRepository) AppendResult(ctx context.Context, sessionID int64, result *models.WordResult) error {
	id, err := insertReturningID(ctx, r.q, `
		INSERT INTO session_word_results (session_id, word_id, known, time_spent_ns, reviewed_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		sessionID, result.WordID, result.Known, int64(result.TimeSpent), utc(result.ReviewedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to append session result: %w", err)
	}
	result.ID = id
	result.SessionID = sessionID
	return nil
}

// Close persists the end time and counters. Only open sessions are updated,
// so a concurrent second close fails with ErrSessionClosed.
func (r *SessionRepository) Close(ctx context.Context, s *models.StudySession) error {
	err := execAffecting(ctx, r.q, models.ErrSessionClosed, `
		UPDATE study_sessions
		SET end_time = ?, duration_ns = ?, total_words = ?, known_words = ?, unknown_words = ?, updated_at = ?
		WHERE id = ? AND end_time IS NULL`,
		utcPtr(s.EndTime), int64(s.Duration), s.TotalWords, s.KnownWords, s.UnknownWords, utc(s.UpdatedAt),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

// ListByUser returns one page of the user's sessions, newest first, and the total count
func (r *SessionRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]models.StudySession, int, error) {
	var total int
	if err := sqlx.GetContext(ctx, r.q, &total, r.q.Rebind("SELECT COUNT(*) FROM study_sessions WHERE user_id = ?"), userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	sessions := []models.StudySession{}
	err := sqlx.SelectContext(ctx, r.q, &sessions, r.q.Rebind(
		sessionSelect+" WHERE s.user_id = ? ORDER BY s.start_time DESC, s.id DESC LIMIT ? OFFSET ?"),
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, total, nil
}

// ListAllByUser returns every session of the user in start order, without word results
func (r *SessionRepository) ListAllByUser(ctx context.Context, userID int64) ([]models.StudySession, error) {
	sessions := []models.StudySession{}
	err := sqlx.SelectContext(ctx, r.q, &sessions, r.q.Rebind(
		sessionSelect+" WHERE s.user_id = ? ORDER BY s.start_time, s.id"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}
