package bot

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

type fakeAPI struct {
	sent     []tgbotapi.MessageConfig
	requests []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) texts() []string {
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.Text
	}
	return out
}

type fakeUsers struct {
	byChat map[int64]*models.User
	byID   map[int64]*models.User
}

func (f *fakeUsers) LinkTelegram(_ context.Context, userID, chatID int64) (*models.User, error) {
	u, ok := f.byID[userID]
	if !ok {
		return nil, fmt.Errorf("link: %w", models.ErrUserNotFound)
	}
	u.TelegramChatID = &chatID
	f.byChat[chatID] = u
	return u, nil
}

func (f *fakeUsers) UserByTelegramChat(_ context.Context, chatID int64) (*models.User, error) {
	u, ok := f.byChat[chatID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return u, nil
}

type fakeStudy struct {
	due      []models.Word
	reviewed map[int64]bool
}

func (f *fakeStudy) DueWords(context.Context, int64) ([]models.Word, error) {
	return f.due, nil
}

func (f *fakeStudy) UpdateWordFamiliarity(_ context.Context, wordID int64, known bool) (*models.Word, error) {
	f.reviewed[wordID] = known
	next := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)
	return &models.Word{ID: wordID, Word: "abate", NextReviewAt: &next}, nil
}

type fakeStats struct{}

func (fakeStats) Overall(context.Context, int64) (models.OverallStats, error) {
	return models.OverallStats{TotalWords: 10, KnownWords: 6, UnknownWords: 4, MasteryRate: 60, StudyDays: 3, CurrentStreak: 2, LongestStreak: 3, AverageWordsPerDay: 3.3}, nil
}

func newTestBot() (*Bot, *fakeAPI, *fakeUsers, *fakeStudy) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	api := &fakeAPI{}
	users := &fakeUsers{
		byChat: map[int64]*models.User{},
		byID:   map[int64]*models.User{1: {ID: 1, Name: "ann", NotificationHour: 9}},
	}
	study := &fakeStudy{reviewed: map[int64]bool{}}
	return newBot(api, Config{DueBatchSize: 2}, users, study, fakeStats{}, logger), api, users, study
}

func command(chatID int64, text, cmd string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd) + 1}},
	}}
}

func callback(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}}
}

func TestStartLinksChat(t *testing.T) {
	ctx := context.Background()
	b, api, users, _ := newTestBot()

	b.handleUpdate(ctx, command(77, "/start 1", "start"))
	require.Contains(t, users.byChat, int64(77))
	assert.Contains(t, api.texts()[0], "Linked to ann")
	assert.Contains(t, api.texts()[0], "09:00")

	b.handleUpdate(ctx, command(78, "/start 9", "start"))
	assert.Equal(t, "No account with that id exists.", api.texts()[1])

	b.handleUpdate(ctx, command(79, "/start abc", "start"))
	assert.Contains(t, api.texts()[2], "must be a number")
}

func TestDueRequiresLinkedChat(t *testing.T) {
	b, api, _, _ := newTestBot()
	b.handleUpdate(context.Background(), command(5, "/due", "due"))
	assert.Contains(t, api.texts()[0], "not linked")
}

func TestDueSendsCardsAndAcceptsAnswers(t *testing.T) {
	ctx := context.Background()
	b, api, _, study := newTestBot()
	b.handleUpdate(ctx, command(77, "/start 1", "start"))
	api.sent = nil

	study.due = []models.Word{
		{ID: 10, Word: "abate", Definition: "to lessen."},
		{ID: 11, Word: "benign", Definition: "gentle"},
		{ID: 12, Word: "candid", Definition: "frank"},
	}
	b.handleUpdate(ctx, command(77, "/due", "due"))

	require.Len(t, api.sent, 3)
	assert.Equal(t, "3 words are due. Here are the first 2:", api.sent[0].Text)
	assert.Equal(t, tgbotapi.ModeMarkdownV2, api.sent[1].ParseMode)
	assert.Contains(t, api.sent[1].Text, `||to lessen\.||`)

	b.handleUpdate(ctx, callback(77, "unknown_10"))
	assert.Equal(t, map[int64]bool{10: false}, study.reviewed)
	require.Len(t, api.requests, 1)
	cb, ok := api.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "abate: next review Mar 12", cb.Text)

	// words that are not due are never reviewed from a stale card
	b.handleUpdate(ctx, callback(77, "known_99"))
	assert.NotContains(t, study.reviewed, int64(99))
}

func TestStatsCommand(t *testing.T) {
	ctx := context.Background()
	b, api, _, _ := newTestBot()
	b.handleUpdate(ctx, command(77, "/start 1", "start"))

	b.handleUpdate(ctx, command(77, "/stats", "stats"))
	text := api.texts()[1]
	assert.Contains(t, text, "Words: 10 (6 known, 4 to learn)")
	assert.Contains(t, text, "Mastery: 60%")
	assert.Contains(t, text, "Average: 3.3 words per day")
}

func TestSendReminder(t *testing.T) {
	b, api, _, _ := newTestBot()

	require.NoError(t, b.SendReminder(context.Background(), models.User{ID: 1}, 3))
	assert.Empty(t, api.sent)

	chat := int64(77)
	require.NoError(t, b.SendReminder(context.Background(), models.User{ID: 1, TelegramChatID: &chat}, 1))
	require.Len(t, api.sent, 1)
	assert.Equal(t, chat, api.sent[0].ChatID)
	assert.Equal(t, "You have 1 word to review! Tap Review now to start.", api.sent[0].Text)
}

func TestRunStopsOnCancel(t *testing.T) {
	b, _, _, _ := newTestBot()
	updates := make(chan tgbotapi.Update)
	stopped := false
	b.updates = func(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel { return updates }
	b.stop = func() { stopped = true }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, b.Run(ctx))
	assert.True(t, stopped)
}
