package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// Callback data
const (
	callbackDue     = "due"
	callbackStats   = "stats"
	callbackKnown   = "known_"
	callbackUnknown = "unknown_"
)

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message != nil:
		b.reply(update.Message.Chat.ID, "I don't understand. Use /menu to show the main menu.")
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	switch message.Command() {
	case "start":
		b.handleStartCommand(ctx, chatID, message.CommandArguments())
	case "menu":
		b.showMainMenu(chatID)
	case "due":
		b.handleDue(ctx, chatID)
	case "stats":
		b.handleStats(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Use /menu to show the main menu.")
	}
}

// handleStartCommand links the chat to the account id given as argument: /start <user id>
func (b *Bot) handleStartCommand(ctx context.Context, chatID int64, args string) {
	args = strings.TrimSpace(args)
	if args == "" {
		if user, err := b.users.UserByTelegramChat(ctx, chatID); err == nil {
			b.reply(chatID, fmt.Sprintf("Welcome back, %s! Use /due to review your words.", user.Name))
			return
		}
		b.reply(chatID, "Welcome! Link your account with /start <your user id> to receive review reminders.")
		return
	}

	userID, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		b.reply(chatID, "The user id must be a number, for example /start 42.")
		return
	}
	user, err := b.users.LinkTelegram(ctx, userID, chatID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			b.reply(chatID, "No account with that id exists.")
			return
		}
		b.log.WithError(err).WithField("user_id", userID).Error("failed to link telegram chat")
		b.reply(chatID, "❌ Could not link your account. Please try again.")
		return
	}

	b.log.WithFields(logrus.Fields{"user_id": user.ID, "chat_id": chatID}).Info("telegram chat linked")
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ Linked to %s. You will get reminders at %02d:00.", user.Name, user.NotificationHour))
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).Warn("failed to send message")
	}
}

// linkedUser resolves the chat's user or tells the chat how to link one.
func (b *Bot) linkedUser(ctx context.Context, chatID int64) (*models.User, bool) {
	user, err := b.users.UserByTelegramChat(ctx, chatID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			b.log.WithError(err).WithField("chat_id", chatID).Error("failed to resolve chat user")
		}
		b.reply(chatID, "This chat is not linked yet. Use /start <your user id> first.")
		return nil, false
	}
	return user, true
}

func (b *Bot) handleDue(ctx context.Context, chatID int64) {
	user, ok := b.linkedUser(ctx, chatID)
	if !ok {
		return
	}
	due, err := b.study.DueWords(ctx, user.ID)
	if err != nil {
		b.log.WithError(err).WithField("user_id", user.ID).Error("failed to get due words")
		b.reply(chatID, "❌ Could not load your review queue. Please try again.")
		return
	}
	if len(due) == 0 {
		b.reply(chatID, "🎉 Nothing to review right now!")
		return
	}

	total := len(due)
	if len(due) > b.cfg.DueBatchSize {
		due = due[:b.cfg.DueBatchSize]
	}
	b.reply(chatID, fmt.Sprintf("%d words are due. Here are the first %d:", total, len(due)))
	for _, w := range due {
		b.sendCard(chatID, w)
	}
}

func (b *Bot) sendCard(chatID int64, w models.Word) {
	escape := func(s string) string { return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, s) }

	var text strings.Builder
	fmt.Fprintf(&text, "*%s*", escape(w.Word))
	if w.Pronunciation != "" {
		fmt.Fprintf(&text, " %s", escape(w.Pronunciation))
	}
	// definition hidden behind a spoiler
	fmt.Fprintf(&text, "\n\n||%s||", escape(w.Definition))

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{
		{Text: "✅ Known", CallbackData: callbackKnown + strconv.FormatInt(w.ID, 10)},
		{Text: "❌ Unknown", CallbackData: callbackUnknown + strconv.FormatInt(w.ID, 10)},
	}})
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).WithField("word_id", w.ID).Warn("failed to send card")
	}
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) {
	user, ok := b.linkedUser(ctx, chatID)
	if !ok {
		return
	}
	stats, err := b.stats.Overall(ctx, user.ID)
	if err != nil {
		b.log.WithError(err).WithField("user_id", user.ID).Error("failed to get statistics")
		b.reply(chatID, "❌ Could not load your statistics. Please try again.")
		return
	}
	b.reply(chatID, formatStats(stats))
}

func formatStats(s models.OverallStats) string {
	return fmt.Sprintf("📊 Your progress\n\n"+
		"Words: %d (%d known, %d to learn)\n"+
		"Mastery: %d%%\n"+
		"Study days: %d\n"+
		"Current streak: %d days (longest %d)\n"+
		"Average: %.1f words per day",
		s.TotalWords, s.KnownWords, s.UnknownWords,
		s.MasteryRate,
		s.StudyDays,
		s.CurrentStreak, s.LongestStreak,
		s.AverageWordsPerDay)
}

func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	answer := ""

	switch data := callback.Data; {
	case data == callbackDue:
		b.handleDue(ctx, chatID)
	case data == callbackStats:
		b.handleStats(ctx, chatID)
	case strings.HasPrefix(data, callbackKnown):
		answer = b.handleReview(ctx, chatID, strings.TrimPrefix(data, callbackKnown), true)
	case strings.HasPrefix(data, callbackUnknown):
		answer = b.handleReview(ctx, chatID, strings.TrimPrefix(data, callbackUnknown), false)
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, answer)); err != nil {
		b.log.WithError(err).Debug("failed to answer callback")
	}
}

// handleReview applies a known/unknown answer from a card. Only words that are
// due for the chat's user are accepted.
func (b *Bot) handleReview(ctx context.Context, chatID int64, rawID string, known bool) string {
	wordID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return "Invalid card"
	}
	user, ok := b.linkedUser(ctx, chatID)
	if !ok {
		return ""
	}

	due, err := b.study.DueWords(ctx, user.ID)
	if err != nil {
		b.log.WithError(err).WithField("user_id", user.ID).Error("failed to get due words")
		return "Please try again"
	}
	if !lo.ContainsBy(due, func(w models.Word) bool { return w.ID == wordID }) {
		return "This card was already reviewed"
	}

	word, err := b.study.UpdateWordFamiliarity(ctx, wordID, known)
	if err != nil {
		b.log.WithError(err).WithField("word_id", wordID).Error("failed to record review")
		return "Please try again"
	}
	return fmt.Sprintf("%s: next review %s", word.Word, word.NextReviewAt.Format("Jan 2"))
}

// showMainMenu shows the main menu
func (b *Bot) showMainMenu(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Main Menu - choose an option:")
	msg.ReplyMarkup = createKeyboard(b.MainMenuButtons())
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).Warn("failed to send menu")
	}
}

// MainMenuButtons returns the buttons for the main menu
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{
			{Text: "🎯 Review due words", CallbackData: callbackDue},
			{Text: "📊 Statistics", CallbackData: callbackStats},
		},
	}
}
