package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

const bookColumns = `id, user_id, name, description, tags, total_words, known_words, unknown_words,
	last_studied, created_at, updated_at`

// BookRepository handles database operations for vocabulary books
type BookRepository struct {
	q sqlx.ExtContext
}

// NewBookRepository creates a new repository instance
func NewBookRepository(q sqlx.ExtContext) *BookRepository {
	return &BookRepository{q: q}
}

// Create inserts a new book
func (r *BookRepository) Create(ctx context.Context, book *models.VocabularyBook) error {
	if book.Tags == nil {
		book.Tags = models.StringList{}
	}
	id, err := insertReturningID(ctx, r.q, `
		INSERT INTO vocabulary_books (user_id, name, description, tags, total_words, known_words,
			unknown_words, last_studied, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		book.UserID, book.Name, book.Description, book.Tags,
		book.TotalWords, book.KnownWords, book.UnknownWords,
		utcPtr(book.LastStudied), utc(book.CreatedAt), utc(book.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create book: %w", err)
	}
	book.ID = id
	return nil
}

// Save updates every stored column of the book, including the word counters.
func (r *BookRepository) Save(ctx context.Context, book *models.VocabularyBook) error {
	err := execAffecting(ctx, r.q, models.ErrBookNotFound, `
		UPDATE vocabulary_books
		SET name = ?, description = ?, tags = ?, total_words = ?, known_words = ?,
			unknown_words = ?, last_studied = ?, updated_at = ?
		WHERE id = ?`,
		book.Name, book.Description, book.Tags, book.TotalWords, book.KnownWords,
		book.UnknownWords, utcPtr(book.LastStudied), utc(book.UpdatedAt),
		book.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save book: %w", err)
	}
	return nil
}

// GetByID returns a book by ID
func (r *BookRepository) GetByID(ctx context.Context, id int64) (*models.VocabularyBook, error) {
	var book models.VocabularyBook
	err := sqlx.GetContext(ctx, r.q, &book, r.q.Rebind("SELECT "+bookColumns+" FROM vocabulary_books WHERE id = ?"), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get book by ID: %w", mapNoRows(err, models.ErrBookNotFound))
	}
	return &book, nil
}

// ListByUser returns the user's books, most recently updated first
func (r *BookRepository) ListByUser(ctx context.Context, userID int64) ([]models.VocabularyBook, error) {
	books := []models.VocabularyBook{}
	err := sqlx.SelectContext(ctx, r.q, &books, r.q.Rebind(
		"SELECT "+bookColumns+" FROM vocabulary_books WHERE user_id = ? ORDER BY updated_at DESC, id DESC"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// Latest returns the user's most recently updated book
func (r *BookRepository) Latest(ctx context.Context, userID int64) (*models.VocabularyBook, error) {
	var book models.VocabularyBook
	err := sqlx.GetContext(ctx, r.q, &book, r.q.Rebind(
		"SELECT "+bookColumns+" FROM vocabulary_books WHERE user_id = ? ORDER BY updated_at DESC, id DESC LIMIT 1"), userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest book: %w", mapNoRows(err, models.ErrBookNotFound))
	}
	return &book, nil
}

// TouchLastStudied stamps the time the book was last opened for study
func (r *BookRepository) TouchLastStudied(ctx context.Context, id int64, at time.Time) error {
	err := execAffecting(ctx, r.q, models.ErrBookNotFound,
		"UPDATE vocabulary_books SET last_studied = ?, updated_at = ? WHERE id = ?", utc(at), utc(at), id)
	if err != nil {
		return fmt.Errorf("failed to update last studied: %w", err)
	}
	return nil
}

// Delete removes a book. Words that are still attached lose their book reference.
func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	if err := execAffecting(ctx, r.q, models.ErrBookNotFound, "DELETE FROM vocabulary_books WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	return nil
}
