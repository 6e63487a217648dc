package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

const wordColumns = `id, COALESCE(book_id, 0) AS book_id, word, definition, examples, pronunciation,
	familiarity, is_known, review_count, incorrect_count, last_reviewed_at, next_review_at,
	created_at, updated_at`

// WordRepository handles database operations for words
type WordRepository struct {
	q sqlx.ExtContext
}

// NewWordRepository creates a new repository instance
func NewWordRepository(q sqlx.ExtContext) *WordRepository {
	return &WordRepository{q: q}
}

// Create inserts a new word together with any status history it already carries.
func (r *WordRepository) Create(ctx context.Context, word *models.Word) error {
	if word.Examples == nil {
		word.Examples = models.StringList{}
	}
	id, err := insertReturningID(ctx, r.q, `
		INSERT INTO words (book_id, word, definition, examples, pronunciation, familiarity, is_known,
			review_count, incorrect_count, last_reviewed_at, next_review_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		word.BookID, word.Word, word.Definition, word.Examples, word.Pronunciation,
		word.Familiarity, word.IsKnown, word.ReviewCount, word.IncorrectCount,
		utcPtr(word.LastReviewedAt), utcPtr(word.NextReviewAt),
		utc(word.CreatedAt), utc(word.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	word.ID = id

	for _, entry := range word.StatusHistory {
		if err := r.appendHistory(ctx, word.ID, entry); err != nil {
			return err
		}
	}
	if word.StatusHistory == nil {
		word.StatusHistory = []models.StatusEntry{}
	}
	return nil
}

// CreateBatch inserts every word, stopping at the first failure.
// Run it inside a transaction to get all-or-nothing behavior.
func (r *WordRepository) CreateBatch(ctx context.Context, words []models.Word) error {
	for i := range words {
		if err := r.Create(ctx, &words[i]); err != nil {
			return fmt.Errorf("word %d (%q): %w", i+1, words[i].Word, err)
		}
	}
	return nil
}

// GetByID returns a word by ID, including its status history
func (r *WordRepository) GetByID(ctx context.Context, id int64) (*models.Word, error) {
	var word models.Word
	err := sqlx.GetContext(ctx, r.q, &word, r.q.Rebind("SELECT "+wordColumns+" FROM words WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get word by ID: %w", mapNoRows(err, models.ErrWordNotFound))
	}

	words := []models.Word{word}
	if err := r.loadHistory(ctx, words); err != nil {
		return nil, err
	}
	return &words[0], nil
}

// ListByBook returns the words of a book in insertion order
func (r *WordRepository) ListByBook(ctx context.Context, bookID int64) ([]models.Word, error) {
	return r.list(ctx, "SELECT "+wordColumns+" FROM words WHERE book_id = ? ORDER BY id", bookID)
}

// ListByUser returns every word in any of the user's books
func (r *WordRepository) ListByUser(ctx context.Context, userID int64) ([]models.Word, error) {
	return r.list(ctx, `SELECT `+wordColumns+` FROM words
		WHERE book_id IN (SELECT id FROM vocabulary_books WHERE user_id = ?)
		ORDER BY id`, userID)
}

func (r *WordRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Word, error) {
	words := []models.Word{}
	if err := sqlx.SelectContext(ctx, r.q, &words, r.q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	if err := r.loadHistory(ctx, words); err != nil {
		return nil, err
	}
	return words, nil
}

// SaveReview persists the review-state fields of a word and appends the
// newest status history entry.
func (r *WordRepository) SaveReview(ctx context.Context, word *models.Word) error {
	err := execAffecting(ctx, r.q, models.ErrWordNotFound, `
		UPDATE words
		SET familiarity = ?, is_known = ?, review_count = ?, incorrect_count = ?,
			last_reviewed_at = ?, next_review_at = ?, updated_at = ?
		WHERE id = ?`,
		word.Familiarity, word.IsKnown, word.ReviewCount, word.IncorrectCount,
		utcPtr(word.LastReviewedAt), utcPtr(word.NextReviewAt), utc(word.UpdatedAt),
		word.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save word review: %w", err)
	}

	if n := len(word.StatusHistory); n > 0 {
		return r.appendHistory(ctx, word.ID, word.StatusHistory[n-1])
	}
	return nil
}

// Delete removes a word and its history
func (r *WordRepository) Delete(ctx context.Context, id int64) error {
	if err := execAffecting(ctx, r.q, models.ErrWordNotFound, "DELETE FROM words WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete word: %w", err)
	}
	return nil
}

// DeleteByBook removes every word of a book and returns how many were deleted
func (r *WordRepository) DeleteByBook(ctx context.Context, bookID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, r.q.Rebind("DELETE FROM words WHERE book_id = ?"), bookID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete words by book: %w", err)
	}
	return res.RowsAffected()
}

func (r *WordRepository) appendHistory(ctx context.Context, wordID int64, entry models.StatusEntry) error {
	_, err := r.q.ExecContext(ctx,
		r.q.Rebind("INSERT INTO word_status_history (word_id, status, date) VALUES (?, ?, ?)"),
		wordID, string(entry.Status), utc(entry.Date),
	)
	if err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}
	return nil
}

type historyRow struct {
	WordID int64 `db:"word_id"`
	models.StatusEntry
}

// loadHistory fills StatusHistory for every word with one query.
func (r *WordRepository) loadHistory(ctx context.Context, words []models.Word) error {
	if len(words) == 0 {
		return nil
	}

	ids := make([]int64, len(words))
	byID := make(map[int64]int, len(words))
	for i := range words {
		ids[i] = words[i].ID
		byID[words[i].ID] = i
		words[i].StatusHistory = []models.StatusEntry{}
	}

	query, args, err := sqlx.In("SELECT word_id, status, date FROM word_status_history WHERE word_id IN (?) ORDER BY id", ids)
	if err != nil {
		return fmt.Errorf("failed to build history query: %w", err)
	}

	var rows []historyRow
	if err := sqlx.SelectContext(ctx, r.q, &rows, r.q.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load status history: %w", err)
	}
	for _, row := range rows {
		i := byID[row.WordID]
		words[i].StatusHistory = append(words[i].StatusHistory, row.StatusEntry)
	}
	return nil
}
