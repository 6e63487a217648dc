package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config describes how to reach the database.
type Config struct {
	Driver  string
	DSN     string
	DataDir string // used for the default SQLite file when DSN is empty
}

// DB is the process-wide database handle. It is opened once at startup and
// closed at shutdown; every repository receives it (or a transaction) explicitly.
type DB struct {
	*sqlx.DB
}

// Open establishes a connection to the database and creates the schema.
func Open(cfg Config) (*DB, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	dsn := cfg.DSN
	if driver == DriverSQLite && dsn == "" {
		dataDir := cfg.DataDir
		if dataDir == "" {
			dataDir = "data"
		}
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "vocabulary.db")
	}

	conn, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
	}

	db := &DB{DB: conn}
	if err := db.initializeSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	if db == nil || db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

// Repositories returns repositories bound to the connection pool.
func (db *DB) Repositories() *Repositories {
	return NewRepositories(db.DB)
}

// InTx runs fn inside a transaction. Any error returned by fn, or a panic,
// rolls every write back.
func (db *DB) InTx(ctx context.Context, fn func(r *Repositories) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(NewRepositories(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Repositories groups the repositories sharing one connection or transaction.
type Repositories struct {
	Words    *WordRepository
	Books    *BookRepository
	Sessions *SessionRepository
	Users    *UserRepository
}

// NewRepositories binds all repositories to q, which is either *sqlx.DB or *sqlx.Tx.
func NewRepositories(q sqlx.ExtContext) *Repositories {
	return &Repositories{
		Words:    NewWordRepository(q),
		Books:    NewBookRepository(q),
		Sessions: NewSessionRepository(q),
		Users:    NewUserRepository(q),
	}
}

// initializeSchema creates necessary tables if they don't exist
func (db *DB) initializeSchema() error {
	pk := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == DriverPostgres {
		pk = "BIGSERIAL PRIMARY KEY"
	}

	tables := []struct {
		name string
		ddl  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id {{pk}},
				name TEXT NOT NULL,
				telegram_chat_id BIGINT UNIQUE,
				notification_enabled BOOLEAN NOT NULL DEFAULT TRUE,
				notification_hour INTEGER NOT NULL DEFAULT 9,
				words_per_day INTEGER NOT NULL DEFAULT 20,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`},
		{"vocabulary_books", `
			CREATE TABLE IF NOT EXISTS vocabulary_books (
				id {{pk}},
				user_id BIGINT NOT NULL REFERENCES users(id),
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				tags TEXT NOT NULL DEFAULT '[]',
				total_words INTEGER NOT NULL DEFAULT 0,
				known_words INTEGER NOT NULL DEFAULT 0,
				unknown_words INTEGER NOT NULL DEFAULT 0,
				last_studied TIMESTAMP,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`},
		{"words", `
			CREATE TABLE IF NOT EXISTS words (
				id {{pk}},
				book_id BIGINT REFERENCES vocabulary_books(id) ON DELETE SET NULL,
				word TEXT NOT NULL,
				definition TEXT NOT NULL,
				examples TEXT NOT NULL DEFAULT '[]',
				pronunciation TEXT NOT NULL DEFAULT '',
				familiarity INTEGER NOT NULL DEFAULT 0 CHECK (familiarity BETWEEN 0 AND 5),
				is_known BOOLEAN NOT NULL DEFAULT FALSE,
				review_count INTEGER NOT NULL DEFAULT 0,
				incorrect_count INTEGER NOT NULL DEFAULT 0,
				last_reviewed_at TIMESTAMP,
				next_review_at TIMESTAMP,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`},
		{"word_status_history", `
			CREATE TABLE IF NOT EXISTS word_status_history (
				id {{pk}},
				word_id BIGINT NOT NULL REFERENCES words(id) ON DELETE CASCADE,
				status TEXT NOT NULL CHECK (status IN ('known', 'unknown')),
				date TIMESTAMP NOT NULL
			)`},
		{"study_sessions", `
			CREATE TABLE IF NOT EXISTS study_sessions (
				id {{pk}},
				user_id BIGINT NOT NULL REFERENCES users(id),
				book_id BIGINT NOT NULL,
				start_time TIMESTAMP NOT NULL,
				end_time TIMESTAMP,
				duration_ns BIGINT NOT NULL DEFAULT 0,
				total_words INTEGER NOT NULL DEFAULT 0,
				known_words INTEGER NOT NULL DEFAULT 0,
				unknown_words INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`},
		{"session_word_results", `
			CREATE TABLE IF NOT EXISTS session_word_results (
				id {{pk}},
				session_id BIGINT NOT NULL REFERENCES study_sessions(id) ON DELETE CASCADE,
				word_id BIGINT NOT NULL,
				known BOOLEAN NOT NULL,
				time_spent_ns BIGINT NOT NULL CHECK (time_spent_ns >= 0),
				reviewed_at TIMESTAMP NOT NULL
			)`},
	}

	for _, t := range tables {
		if _, err := db.Exec(strings.ReplaceAll(t.ddl, "{{pk}}", pk)); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_words_book ON words(book_id)",
		"CREATE INDEX IF NOT EXISTS idx_history_word ON word_status_history(word_id)",
		"CREATE INDEX IF NOT EXISTS idx_sessions_user_start ON study_sessions(user_id, start_time)",
		"CREATE INDEX IF NOT EXISTS idx_results_session ON session_word_results(session_id)",
	}
	for _, ddl := range indexes {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
