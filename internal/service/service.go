// Package service coordinates the review engine with persistence. Every
// operation that writes more than one row runs inside a single transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nnimab/Smart-vocabulary-book/internal/database"
	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// Option customizes a service.
type Option func(*base)

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(b *base) { b.clock = clock }
}

// WithLogger sets the logger used for audit entries.
func WithLogger(log logrus.FieldLogger) Option {
	return func(b *base) { b.log = log }
}

type base struct {
	db    *database.DB
	log   logrus.FieldLogger
	clock func() time.Time
}

func newBase(db *database.DB, opts []Option) base {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	b := base{db: db, log: discard, clock: time.Now}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

func (b *base) now() time.Time {
	return b.clock().UTC()
}

// refreshBookStats recomputes a book's cached counters from its current words.
func refreshBookStats(ctx context.Context, r *database.Repositories, bookID int64, now time.Time) (*models.VocabularyBook, error) {
	book, err := r.Books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	words, err := r.Words.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	book.RefreshStats(words)
	book.UpdatedAt = now
	if err := r.Books.Save(ctx, book); err != nil {
		return nil, err
	}
	book.Words = words
	return book, nil
}

// ownedBook loads a book and hides books of other users behind ErrBookNotFound.
func ownedBook(ctx context.Context, r *database.Repositories, userID, bookID int64) (*models.VocabularyBook, error) {
	book, err := r.Books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		return nil, fmt.Errorf("book %d of user %d: %w", bookID, userID, models.ErrBookNotFound)
	}
	return book, nil
}

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), models.ErrValidation)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return validationf("%s is required", field)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}
