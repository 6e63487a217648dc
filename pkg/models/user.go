package models

import "time"

// User owns books and sessions and optionally receives Telegram reminders.
type User struct {
	ID                  int64     `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	TelegramChatID      *int64    `json:"telegram_chat_id,omitempty" db:"telegram_chat_id"`
	NotificationEnabled bool      `json:"notification_enabled" db:"notification_enabled"`
	NotificationHour    int       `json:"notification_hour" db:"notification_hour"` // 0-23
	WordsPerDay         int       `json:"words_per_day" db:"words_per_day"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
