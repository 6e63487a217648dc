package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnimab/Smart-vocabulary-book/internal/database"
	"github.com/nnimab/Smart-vocabulary-book/internal/deck"
	"github.com/nnimab/Smart-vocabulary-book/internal/excel"
	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

var t0 = time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixture struct {
	db    *database.DB
	clock *fakeClock
	users *UserService
	books *BookService
	study *StudyService
	stats *StatsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	clock := &fakeClock{now: t0}
	opt := WithClock(clock.Now)
	return &fixture{
		db:    db,
		clock: clock,
		users: NewUserService(db, opt),
		books: NewBookService(db, rand.New(rand.NewSource(1)), opt),
		study: NewStudyService(db, opt),
		stats: NewStatsService(db, opt),
	}
}

func (f *fixture) user(t *testing.T, name string) *models.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), UserInput{Name: name})
	require.NoError(t, err)
	return u
}

func (f *fixture) book(t *testing.T, userID int64, words ...string) (*models.VocabularyBook, []*models.Word) {
	t.Helper()
	ctx := context.Background()
	b, err := f.books.CreateBook(ctx, userID, BookInput{Name: "GRE", Tags: []string{"exam", " exam ", ""}})
	require.NoError(t, err)

	var out []*models.Word
	for _, w := range words {
		word, err := f.books.AddWord(ctx, b.ID, WordInput{Word: w, Definition: "definition of " + w})
		require.NoError(t, err)
		out = append(out, word)
	}
	return b, out
}

func TestBookCacheTracksWordSet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "ann")
	b, words := f.book(t, u.ID, "a", "b", "c", "d", "e", "f", "g", "h", "i", "j")
	assert.Equal(t, models.StringList{"exam"}, b.Tags)

	for _, w := range words[:6] {
		_, err := f.study.UpdateWordFamiliarity(ctx, w.ID, true)
		require.NoError(t, err)
	}

	got, err := f.books.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 6, 4}, []int{got.TotalWords, got.KnownWords, got.UnknownWords})

	_, err = f.books.AddWord(ctx, b.ID, WordInput{Word: "k", Definition: "eleventh"})
	require.NoError(t, err)

	got, err = f.books.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []int{11, 6, 5}, []int{got.TotalWords, got.KnownWords, got.UnknownWords})
	assert.Len(t, got.Words, 11)

	after, err := f.books.DeleteWord(ctx, b.ID, words[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 5, 5}, []int{after.TotalWords, after.KnownWords, after.UnknownWords})
}

func TestStudySessionFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "ann")
	b, words := f.book(t, u.ID, "abate", "benign")

	sess, err := f.study.StartSession(ctx, u.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, sess.Closed())

	f.clock.Advance(time.Minute)
	out, err := f.study.ReviewWord(ctx, sess.ID, ReviewInput{WordID: words[0].ID, Known: true, TimeSpent: 3 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Word.Familiarity)
	assert.True(t, out.Word.IsKnown)
	assert.Equal(t, t0.Add(time.Minute).AddDate(0, 0, 2), *out.Word.NextReviewAt)
	assert.Equal(t, 1, out.Book.KnownWords)

	f.clock.Advance(time.Minute)
	_, err = f.study.ReviewWord(ctx, sess.ID, ReviewInput{WordID: words[1].ID, Known: false, TimeSpent: 5 * time.Second})
	require.NoError(t, err)

	f.clock.Advance(3 * time.Minute)
	summary, err := f.study.EndSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionSummary{SessionID: sess.ID, Duration: 5 * time.Minute, TotalWords: 2, KnownWords: 1, UnknownWords: 1}, summary)

	stored, err := f.study.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, stored.Closed())
	assert.Equal(t, "GRE", stored.BookName)
	require.Len(t, stored.WordResults, 2)
	assert.Equal(t, 5*time.Second, stored.WordResults[1].TimeSpent)

	book, err := f.books.GetBook(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, book.LastStudied)
	assert.WithinDuration(t, t0, *book.LastStudied, time.Millisecond)

	// closed sessions reject both another close and another review
	_, err = f.study.EndSession(ctx, sess.ID)
	assert.True(t, errors.Is(err, models.ErrInvalidState))

	_, err = f.study.ReviewWord(ctx, sess.ID, ReviewInput{WordID: words[0].ID, Known: true})
	assert.True(t, errors.Is(err, models.ErrInvalidState))

	word, err := f.db.Repositories().Words.GetByID(ctx, words[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, word.ReviewCount)
	assert.Len(t, word.StatusHistory, 1)
}

func TestReviewWordRejectsNegativeTimeWithoutWriting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "ann")
	b, words := f.book(t, u.ID, "abate")

	sess, err := f.study.StartSession(ctx, u.ID, b.ID)
	require.NoError(t, err)

	_, err = f.study.ReviewWord(ctx, sess.ID, ReviewInput{WordID: words[0].ID, Known: true, TimeSpent: -time.Second})
	assert.True(t, errors.Is(err, models.ErrValidation))

	word, err := f.db.Repositories().Words.GetByID(ctx, words[0].ID)
	require.NoError(t, err)
	assert.Zero(t, word.ReviewCount)
	assert.Empty(t, word.StatusHistory)

	stored, err := f.study.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.WordResults)
}

func TestReviewWordOfAnotherUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ann, bo := f.user(t, "ann"), f.user(t, "bo")
	annBook, _ := f.book(t, ann.ID, "abate")
	_, boWords := f.book(t, bo.ID, "benign")

	sess, err := f.study.StartSession(ctx, ann.ID, annBook.ID)
	require.NoError(t, err)

	_, err = f.study.ReviewWord(ctx, sess.ID, ReviewInput{WordID: boWords[0].ID, Known: true})
	assert.True(t, errors.Is(err, models.ErrWordNotFound))

	_, err = f.study.StartSession(ctx, bo.ID, annBook.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDueWords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "ann")
	_, words := f.book(t, u.ID, "abate", "benign", "candid")

	_, err := f.study.UpdateWordFamiliarity(ctx, words[0].ID, false)
	require.NoError(t, err)
	_, err = f.study.UpdateWordFamiliarity(ctx, words[1].ID, true)
	require.NoError(t, err)

	due, err := f.study.DueWords(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, due)

	f.clock.Advance(48 * time.Hour)
	due, err = f.study.DueWords(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, words[0].ID, due[0].ID)
}

func TestImportWordsIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "ann")
	b, _ := f.book(t, u.ID)

	_, err := f.books.ImportWords(ctx, b.ID, []excel.Row{
		{Line: 1, Word: "abate", Definition: "to lessen"},
		{Line: 2, Word: "benign", Definition: " "},
	})
	assert.True(t, errors.Is(err, models.ErrValidation))

	got, err := f.books.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Words)

	rows, err := excel.ParseText("abate: to lessen\nbenign: gentle\n")
	require.NoError(t, err)
	res, err := f.books.ImportWords(ctx, b.ID, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.Book.TotalWords)
	assert.Equal(t, 2, res.Book.UnknownWords)

	_, err = f.books.ImportWords(ctx, 999, rows)
	assert.True(t, errors.Is(err, models.ErrBookNotFound))
}

func TestDeleteBook(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "ann")
	keep, kept := f.book(t, u.ID, "abate")
	drop, dropped := f.book(t, u.ID, "benign")

	require.NoError(t, f.books.DeleteBook(ctx, drop.ID, true))
	_, err := f.db.Repositories().Words.GetByID(ctx, dropped[0].ID)
	assert.True(t, errors.Is(err, models.ErrWordNotFound))

	require.NoError(t, f.books.DeleteBook(ctx, keep.ID, false))
	orphan, err := f.db.Repositories().Words.GetByID(ctx, kept[0].ID)
	require.NoError(t, err)
	assert.Zero(t, orphan.BookID)

	assert.True(t, errors.Is(f.books.DeleteBook(ctx, keep.ID, false), models.ErrBookNotFound))
}

func TestCurrentBook(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ann, bo := f.user(t, "ann"), f.user(t, "bo")
	first, _ := f.book(t, ann.ID, "abate")
	f.clock.Advance(time.Hour)
	second, _ := f.book(t, ann.ID, "benign")
	boBook, _ := f.book(t, bo.ID)

	got, err := f.books.CurrentBook(ctx, ann.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Len(t, got.Words, 1)

	got, err = f.books.CurrentBook(ctx, ann.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	got, err = f.books.CurrentBook(ctx, ann.ID, boBook.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	_, err = f.books.CurrentBook(ctx, f.user(t, "cy").ID, 0)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestDeck(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "ann")
	b, words := f.book(t, u.ID, "abate", "benign", "candid")

	_, err := f.study.UpdateWordFamiliarity(ctx, words[2].ID, false)
	require.NoError(t, err)
	f.clock.Advance(72 * time.Hour)

	cards, err := f.books.Deck(ctx, b.ID, deck.Review, 2)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, words[2].ID, cards[0].Word.ID)
	assert.True(t, cards[0].Due)

	_, err = f.books.Deck(ctx, 999, deck.Ordered, 0)
	assert.True(t, errors.Is(err, models.ErrBookNotFound))
}

func TestStatsServiceOverall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "ann")
	b, words := f.book(t, u.ID, "abate", "benign")

	for day := 0; day < 2; day++ {
		sess, err := f.study.StartSession(ctx, u.ID, b.ID)
		require.NoError(t, err)
		_, err = f.study.ReviewWord(ctx, sess.ID, ReviewInput{WordID: words[day].ID, Known: true, TimeSpent: time.Second})
		require.NoError(t, err)
		f.clock.Advance(10 * time.Minute)
		_, err = f.study.EndSession(ctx, sess.ID)
		require.NoError(t, err)
		f.clock.Advance(24*time.Hour - 10*time.Minute)
	}

	stats, err := f.stats.Overall(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalWords)
	assert.Equal(t, 2, stats.KnownWords)
	assert.Equal(t, 100, stats.MasteryRate)
	assert.Equal(t, 2, stats.StudyDays)
	assert.Equal(t, 2, stats.CurrentStreak)
	assert.Equal(t, 2, stats.LongestStreak)
	assert.EqualValues(t, (20 * time.Minute).Milliseconds(), stats.TotalStudyTimeMs)

	activity, err := f.stats.Activity(ctx, u.ID, "month")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2024-03-10": 1, "2024-03-11": 1}, activity)

	monthly, err := f.stats.Monthly(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, monthly, 12)
	assert.Equal(t, models.MonthlyProgress{Month: "2024-03", Label: "Mar", Learned: 2, Mastered: 2}, monthly[11])

	curve, err := f.stats.MemoryCurve(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, curve.StandardCurve)
	assert.Equal(t, models.CurvePoint{Day: 0, Retention: 100}, curve.UserCurve[0])
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.users.CreateUser(ctx, UserInput{Name: "  "})
	assert.True(t, errors.Is(err, models.ErrValidation))

	hour := 24
	_, err = f.users.CreateUser(ctx, UserInput{Name: "ann", NotificationHour: &hour})
	assert.True(t, errors.Is(err, models.ErrValidation))

	u := f.user(t, "ann")
	assert.Equal(t, DefaultNotificationHour, u.NotificationHour)
	assert.Equal(t, DefaultWordsPerDay, u.WordsPerDay)
	assert.True(t, u.NotificationEnabled)

	hour = 7
	updated, err := f.users.UpdateUser(ctx, u.ID, UserInput{Name: "Ann", NotificationHour: &hour})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.NotificationHour)

	linked, err := f.users.LinkTelegram(ctx, u.ID, 555)
	require.NoError(t, err)
	require.NotNil(t, linked.TelegramChatID)

	byChat, err := f.users.UserByTelegramChat(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, u.ID, byChat.ID)

	toNotify, err := f.users.UsersToNotify(ctx, 7)
	require.NoError(t, err)
	require.Len(t, toNotify, 1)

	_, err = f.users.GetUser(ctx, 999)
	assert.True(t, errors.Is(err, models.ErrUserNotFound))
}

func TestListSessionsPaging(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := f.user(t, "ann")
	b, _ := f.book(t, u.ID)

	for i := 0; i < 3; i++ {
		_, err := f.study.StartSession(ctx, u.ID, b.ID)
		require.NoError(t, err)
		f.clock.Advance(time.Hour)
	}

	page, err := f.study.ListSessions(ctx, u.ID, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Sessions, 2)
	assert.True(t, page.Sessions[0].StartTime.After(page.Sessions[1].StartTime))

	page, err = f.study.ListSessions(ctx, u.ID, 0, 2)
	require.NoError(t, err)
	assert.Len(t, page.Sessions, 1)
}
