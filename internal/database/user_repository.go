package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

const userColumns = `id, name, telegram_chat_id, notification_enabled, notification_hour, words_per_day,
	created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	q sqlx.ExtContext
}

// NewUserRepository creates a new repository instance
func NewUserRepository(q sqlx.ExtContext) *UserRepository {
	return &UserRepository{q: q}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	id, err := insertReturningID(ctx, r.q, `
		INSERT INTO users (name, telegram_chat_id, notification_enabled, notification_hour, words_per_day,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		user.Name, user.TelegramChatID, user.NotificationEnabled, user.NotificationHour, user.WordsPerDay,
		utc(user.CreatedAt), utc(user.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetByTelegramChat returns the user linked to a Telegram chat
func (r *UserRepository) GetByTelegramChat(ctx context.Context, chatID int64) (*models.User, error) {
	return r.get(ctx, "SELECT "+userColumns+" FROM users WHERE telegram_chat_id = ?", chatID)
}

func (r *UserRepository) get(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	if err := sqlx.GetContext(ctx, r.q, &user, r.q.Rebind(query), arg); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", mapNoRows(err, models.ErrUserNotFound))
	}
	return &user, nil
}

// Update saves the user's notification settings
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	err := execAffecting(ctx, r.q, models.ErrUserNotFound, `
		UPDATE users
		SET name = ?, notification_enabled = ?, notification_hour = ?, words_per_day = ?, updated_at = ?
		WHERE id = ?`,
		user.Name, user.NotificationEnabled, user.NotificationHour, user.WordsPerDay, utc(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// SetTelegramChat links a Telegram chat to the user
func (r *UserRepository) SetTelegramChat(ctx context.Context, userID, chatID int64, at time.Time) error {
	err := execAffecting(ctx, r.q, models.ErrUserNotFound,
		"UPDATE users SET telegram_chat_id = ?, updated_at = ? WHERE id = ?", chatID, utc(at), userID)
	if err != nil {
		return fmt.Errorf("failed to link telegram chat: %w", err)
	}
	return nil
}

// ListForNotification returns users with notifications enabled for the given hour
func (r *UserRepository) ListForNotification(ctx context.Context, hour int) ([]models.User, error) {
	users := []models.User{}
	err := sqlx.SelectContext(ctx, r.q, &users, r.q.Rebind(
		"SELECT "+userColumns+" FROM users WHERE notification_enabled = ? AND notification_hour = ? ORDER BY id"),
		true, hour)
	if err != nil {
		return nil, fmt.Errorf("failed to get users for notification: %w", err)
	}
	return users, nil
}
