package service

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nnimab/Smart-vocabulary-book/internal/database"
	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// Defaults for new users.
const (
	DefaultNotificationHour = 9
	DefaultWordsPerDay      = 20
)

// UserService manages users and their reminder settings.
type UserService struct {
	base
}

// NewUserService creates a new user service
func NewUserService(db *database.DB, opts ...Option) *UserService {
	return &UserService{base: newBase(db, opts)}
}

// UserInput holds the editable fields of a user. Nil fields keep their current or default value.
type UserInput struct {
	Name                string
	NotificationEnabled *bool
	NotificationHour    *int
	WordsPerDay         *int
}

func (in UserInput) apply(u *models.User) error {
	u.Name = strings.TrimSpace(in.Name)
	if err := required("name", u.Name); err != nil {
		return err
	}
	if in.NotificationEnabled != nil {
		u.NotificationEnabled = *in.NotificationEnabled
	}
	if in.NotificationHour != nil {
		if *in.NotificationHour < 0 || *in.NotificationHour > 23 {
			return validationf("notification hour must be between 0 and 23, got %d", *in.NotificationHour)
		}
		u.NotificationHour = *in.NotificationHour
	}
	if in.WordsPerDay != nil {
		if *in.WordsPerDay < 1 {
			return validationf("words per day must be positive, got %d", *in.WordsPerDay)
		}
		u.WordsPerDay = *in.WordsPerDay
	}
	return nil
}

// CreateUser registers a new user.
func (s *UserService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	now := s.now()
	user := &models.User{
		NotificationEnabled: true,
		NotificationHour:    DefaultNotificationHour,
		WordsPerDay:         DefaultWordsPerDay,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := in.apply(user); err != nil {
		return nil, err
	}
	if err := s.db.Repositories().Users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID}).Info("user created")
	return user, nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.db.Repositories().Users.GetByID(ctx, userID)
}

// UpdateUser changes a user's name and reminder settings.
func (s *UserService) UpdateUser(ctx context.Context, userID int64, in UserInput) (*models.User, error) {
	repos := s.db.Repositories()
	user, err := repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := in.apply(user); err != nil {
		return nil, err
	}
	user.UpdatedAt = s.now()
	if err := repos.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LinkTelegram attaches a Telegram chat to the user so reminders can be delivered.
func (s *UserService) LinkTelegram(ctx context.Context, userID, chatID int64) (*models.User, error) {
	repos := s.db.Repositories()
	if err := repos.Users.SetTelegramChat(ctx, userID, chatID, s.now()); err != nil {
		return nil, err
	}
	return repos.Users.GetByID(ctx, userID)
}

// UserByTelegramChat returns the user linked to a chat.
func (s *UserService) UserByTelegramChat(ctx context.Context, chatID int64) (*models.User, error) {
	return s.db.Repositories().Users.GetByTelegramChat(ctx, chatID)
}

// UsersToNotify returns users with reminders enabled for the given hour.
func (s *UserService) UsersToNotify(ctx context.Context, hour int) ([]models.User, error) {
	return s.db.Repositories().Users.ListForNotification(ctx, hour)
}
