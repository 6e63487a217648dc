package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// Default notification window, in hours of the scheduler's time zone.
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier delivers a due-review reminder to a user
type Notifier interface {
	SendReminder(ctx context.Context, user models.User, dueCount int) error
}

// UserSource lists users who want reminders at a given hour
type UserSource interface {
	UsersToNotify(ctx context.Context, hour int) ([]models.User, error)
}

// DueSource lists the words a user should review now
type DueSource interface {
	DueWords(ctx context.Context, userID int64) ([]models.Word, error)
}

// Config holds the scheduler settings
type Config struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	users     UserSource
	due       DueSource
	notifier  Notifier
	cfg       Config
	log       logrus.FieldLogger
	clock     func() time.Time
}

// New creates a new scheduler instance
func New(cfg Config, users UserSource, due DueSource, notifier Notifier, log logrus.FieldLogger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(cfg.Location),
		users:     users,
		due:       due,
		notifier:  notifier,
		cfg:       cfg,
		log:       log,
		clock:     time.Now,
	}
}

// Run schedules the hourly reminder check and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	// Check at the top of every hour
	_, err := s.scheduler.Cron("0 * * * *").Do(func() {
		if _, err := s.CheckAndSendReminders(ctx); err != nil {
			s.log.WithError(err).Error("reminder check failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	s.scheduler.StartAsync()
	s.log.WithFields(logrus.Fields{
		"start_hour": s.cfg.StartHour,
		"end_hour":   s.cfg.EndHour,
	}).Info("reminder scheduler started")

	<-ctx.Done()
	s.scheduler.Stop()
	s.log.Info("reminder scheduler stopped")
	return nil
}

// CheckAndSendReminders notifies every user whose reminder hour is now and who
// has words due. It returns the number of reminders sent.
func (s *Scheduler) CheckAndSendReminders(ctx context.Context) (int, error) {
	currentHour := s.clock().In(s.cfg.Location).Hour()

	if currentHour < s.cfg.StartHour || currentHour > s.cfg.EndHour {
		s.log.WithFields(logrus.Fields{
			"hour":       currentHour,
			"start_hour": s.cfg.StartHour,
			"end_hour":   s.cfg.EndHour,
		}).Debug("outside notification hours, skipping reminders")
		return 0, nil
	}

	// Get users who should receive notifications at the current hour
	users, err := s.users.UsersToNotify(ctx, currentHour)
	if err != nil {
		return 0, fmt.Errorf("failed to get users for notification: %w", err)
	}

	sent := 0
	for _, user := range users {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		count, err := s.DueCount(ctx, user)
		if err != nil {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to get due words")
			continue
		}
		if count == 0 {
			continue
		}

		if err := s.notifier.SendReminder(ctx, user, count); err != nil {
			s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to send reminder")
			continue
		}
		sent++
	}
	return sent, nil
}

// DueCount returns how many due words a reminder should announce, capped at
// the user's daily preference.
func (s *Scheduler) DueCount(ctx context.Context, user models.User) (int, error) {
	words, err := s.due.DueWords(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	count := len(words)
	if user.WordsPerDay > 0 && count > user.WordsPerDay {
		count = user.WordsPerDay
	}
	return count, nil
}

// LogNotifier writes reminders to the log; it stands in when no bot is configured.
type LogNotifier struct {
	Log logrus.FieldLogger
}

// SendReminder implements Notifier.
func (n LogNotifier) SendReminder(_ context.Context, user models.User, dueCount int) error {
	n.Log.WithFields(logrus.Fields{"user_id": user.ID, "due": dueCount}).Info("words due for review")
	return nil
}
