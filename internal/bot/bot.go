// Package bot delivers review reminders over Telegram and lets linked users
// review due words from the chat.
package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// sender is the part of the Telegram API the bot uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Users links chats to users
type Users interface {
	LinkTelegram(ctx context.Context, userID, chatID int64) (*models.User, error)
	UserByTelegramChat(ctx context.Context, chatID int64) (*models.User, error)
}

// Study exposes the review queue
type Study interface {
	DueWords(ctx context.Context, userID int64) ([]models.Word, error)
	UpdateWordFamiliarity(ctx context.Context, wordID int64, known bool) (*models.Word, error)
}

// Stats exposes the summary statistics
type Stats interface {
	Overall(ctx context.Context, userID int64) (models.OverallStats, error)
}

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// Bot represents the Telegram bot application
type Bot struct {
	api     sender
	updates func(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	stop    func()
	cfg     Config
	users   Users
	study   Study
	stats   Stats
	log     logrus.FieldLogger
}

// New connects to Telegram with the configured token
func New(cfg Config, users Users, study Study, stats Stats, log logrus.FieldLogger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is not set")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	api.Debug = cfg.Debug
	log.WithField("account", api.Self.UserName).Info("telegram bot authorized")

	b := newBot(api, cfg, users, study, stats, log)
	b.updates = api.GetUpdatesChan
	b.stop = api.StopReceivingUpdates
	return b, nil
}

func newBot(api sender, cfg Config, users Users, study Study, stats Stats, log logrus.FieldLogger) *Bot {
	defaults := DefaultConfig()
	if cfg.DueBatchSize <= 0 {
		cfg.DueBatchSize = defaults.DueBatchSize
	}
	if cfg.UpdateTimeout <= 0 {
		cfg.UpdateTimeout = defaults.UpdateTimeout
	}
	return &Bot{api: api, cfg: cfg, users: users, study: study, stats: stats, log: log}
}

// Run handles incoming updates until ctx is cancelled
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.cfg.UpdateTimeout

	updates := b.updates(updateConfig)
	for {
		select {
		case <-ctx.Done():
			b.stop()
			b.log.Info("telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// SendReminder implements the scheduler Notifier. Users without a linked chat are skipped.
func (b *Bot) SendReminder(_ context.Context, user models.User, dueCount int) error {
	if user.TelegramChatID == nil {
		b.log.WithField("user_id", user.ID).Debug("no telegram chat linked, reminder skipped")
		return nil
	}

	wordForm := "words"
	if dueCount == 1 {
		wordForm = "word"
	}
	msg := tgbotapi.NewMessage(*user.TelegramChatID,
		fmt.Sprintf("You have %d %s to review! Tap Review now to start.", dueCount, wordForm))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "🎯 Review now", CallbackData: callbackDue}}})

	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder to user %d: %w", user.ID, err)
	}
	b.log.WithFields(logrus.Fields{"user_id": user.ID, "due": dueCount}).Info("reminder sent")
	return nil
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).WithField("chat_id", chatID).Warn("failed to send message")
	}
}
