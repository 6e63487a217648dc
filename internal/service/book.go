package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/nnimab/Smart-vocabulary-book/internal/database"
	"github.com/nnimab/Smart-vocabulary-book/internal/deck"
	"github.com/nnimab/Smart-vocabulary-book/internal/excel"
	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// BookService manages vocabulary books and their words.
type BookService struct {
	base
	decks *deck.Builder
}

// NewBookService creates a new book service
func NewBookService(db *database.DB, rnd *rand.Rand, opts ...Option) *BookService {
	return &BookService{base: newBase(db, opts), decks: deck.NewBuilder(rnd)}
}

// BookInput holds the editable fields of a book.
type BookInput struct {
	Name        string
	Description string
	Tags        []string
}

func (in BookInput) normalize() (BookInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := required("name", in.Name); err != nil {
		return in, err
	}
	in.Tags = lo.Uniq(lo.Compact(lo.Map(in.Tags, func(t string, _ int) string {
		return strings.TrimSpace(t)
	})))
	return in, nil
}

// WordInput holds the fields of a new word.
type WordInput struct {
	Word          string
	Definition    string
	Pronunciation string
	Examples      []string
}

func (in WordInput) toWord(bookID int64) (models.Word, error) {
	word := strings.TrimSpace(in.Word)
	definition := strings.TrimSpace(in.Definition)
	if err := required("word", word); err != nil {
		return models.Word{}, err
	}
	if err := required("definition", definition); err != nil {
		return models.Word{}, err
	}
	return models.Word{
		BookID:        bookID,
		Word:          word,
		Definition:    definition,
		Pronunciation: strings.TrimSpace(in.Pronunciation),
		Examples:      models.StringList(lo.Compact(in.Examples)),
		StatusHistory: []models.StatusEntry{},
	}, nil
}

// ImportResult reports a committed import.
type ImportResult struct {
	Imported int                    `json:"imported"`
	Book     *models.VocabularyBook `json:"book"`
}

// CreateBook creates an empty book for the user.
func (s *BookService) CreateBook(ctx context.Context, userID int64, in BookInput) (*models.VocabularyBook, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	repos := s.db.Repositories()
	if _, err := repos.Users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	now := s.now()
	book := &models.VocabularyBook{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		Tags:        in.Tags,
		Words:       []models.Word{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repos.Books.Create(ctx, book); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "book_id": book.ID}).Info("book created")
	return book, nil
}

// UpdateBook replaces the editable fields of a book.
func (s *BookService) UpdateBook(ctx context.Context, bookID int64, in BookInput) (*models.VocabularyBook, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	repos := s.db.Repositories()
	book, err := repos.Books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	book.Name = in.Name
	book.Description = in.Description
	book.Tags = in.Tags
	book.UpdatedAt = s.now()
	if err := repos.Books.Save(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook returns a book with its words.
func (s *BookService) GetBook(ctx context.Context, bookID int64) (*models.VocabularyBook, error) {
	repos := s.db.Repositories()
	book, err := repos.Books.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.Words, err = repos.Words.ListByBook(ctx, bookID); err != nil {
		return nil, err
	}
	return book, nil
}

// ListBooks returns the user's books without words, most recently updated first.
func (s *BookService) ListBooks(ctx context.Context, userID int64) ([]models.VocabularyBook, error) {
	return s.db.Repositories().Books.ListByUser(ctx, userID)
}

// CurrentBook returns the requested book when it belongs to the user, otherwise
// the user's most recently updated book.
func (s *BookService) CurrentBook(ctx context.Context, userID, currentBookID int64) (*models.VocabularyBook, error) {
	repos := s.db.Repositories()

	var (
		book *models.VocabularyBook
		err  error
	)
	if currentBookID > 0 {
		book, err = ownedBook(ctx, repos, userID, currentBookID)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
	}
	if book == nil {
		if book, err = repos.Books.Latest(ctx, userID); err != nil {
			return nil, err
		}
	}

	if book.Words, err = repos.Words.ListByBook(ctx, book.ID); err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteBook removes a book. With deleteWords its words are removed in the
// same transaction; otherwise they are kept detached from any book.
func (s *BookService) DeleteBook(ctx context.Context, bookID int64, deleteWords bool) error {
	var deleted int64
	err := s.db.InTx(ctx, func(r *database.Repositories) error {
		if _, err := r.Books.GetByID(ctx, bookID); err != nil {
			return err
		}
		if deleteWords {
			n, err := r.Words.DeleteByBook(ctx, bookID)
			if err != nil {
				return err
			}
			deleted = n
		}
		return r.Books.Delete(ctx, bookID)
	})
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"book_id": bookID, "words_deleted": deleted}).Info("book deleted")
	return nil
}

// AddWord adds a new word to a book and refreshes the book counters.
func (s *BookService) AddWord(ctx context.Context, bookID int64, in WordInput) (*models.Word, error) {
	word, err := in.toWord(bookID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	word.CreatedAt = now
	word.UpdatedAt = now

	err = s.db.InTx(ctx, func(r *database.Repositories) error {
		if _, err := r.Books.GetByID(ctx, bookID); err != nil {
			return err
		}
		if err := r.Words.Create(ctx, &word); err != nil {
			return err
		}
		_, err := refreshBookStats(ctx, r, bookID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &word, nil
}

// DeleteWord removes a word from a book and refreshes the book counters.
func (s *BookService) DeleteWord(ctx context.Context, bookID, wordID int64) (*models.VocabularyBook, error) {
	now := s.now()
	var book *models.VocabularyBook

	err := s.db.InTx(ctx, func(r *database.Repositories) error {
		word, err := r.Words.GetByID(ctx, wordID)
		if err != nil {
			return err
		}
		if word.BookID != bookID {
			return fmt.Errorf("word %d in book %d: %w", wordID, bookID, models.ErrWordNotFound)
		}
		if err := r.Words.Delete(ctx, wordID); err != nil {
			return err
		}
		book, err = refreshBookStats(ctx, r, bookID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// ImportWords stores parsed rows in a book. Nothing is written unless every row is stored.
func (s *BookService) ImportWords(ctx context.Context, bookID int64, rows []excel.Row) (*ImportResult, error) {
	if len(rows) == 0 {
		return nil, excel.ErrEmptyImport
	}

	now := s.now()
	words := make([]models.Word, 0, len(rows))
	for _, row := range rows {
		w, err := WordInput{
			Word:          row.Word,
			Definition:    row.Definition,
			Pronunciation: row.Pronunciation,
			Examples:      row.Examples,
		}.toWord(bookID)
		if err != nil {
			return nil, validationf("row %d: %v", row.Line, err)
		}
		w.CreatedAt = now
		w.UpdatedAt = now
		words = append(words, w)
	}

	var book *models.VocabularyBook
	err := s.db.InTx(ctx, func(r *database.Repositories) error {
		if _, err := r.Books.GetByID(ctx, bookID); err != nil {
			return err
		}
		if err := r.Words.CreateBatch(ctx, words); err != nil {
			return err
		}
		var err error
		book, err = refreshBookStats(ctx, r, bookID, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"book_id": bookID, "imported": len(words)}).Info("words imported")
	return &ImportResult{Imported: len(words), Book: book}, nil
}

// Deck builds a flashcard deck from a book.
func (s *BookService) Deck(ctx context.Context, bookID int64, mode deck.Mode, limit int) ([]deck.Card, error) {
	repos := s.db.Repositories()
	if _, err := repos.Books.GetByID(ctx, bookID); err != nil {
		return nil, err
	}
	words, err := repos.Words.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return s.decks.Build(words, mode, limit, s.now()), nil
}
