package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

type fakeUsers struct {
	byHour map[int][]models.User
	err    error
}

func (f *fakeUsers) UsersToNotify(_ context.Context, hour int) ([]models.User, error) {
	return f.byHour[hour], f.err
}

type fakeDue struct {
	counts map[int64]int
	fail   map[int64]bool
}

func (f *fakeDue) DueWords(_ context.Context, userID int64) ([]models.Word, error) {
	if f.fail[userID] {
		return nil, errors.New("db down")
	}
	return make([]models.Word, f.counts[userID]), nil
}

type sent struct {
	userID int64
	count  int
}

type fakeNotifier struct {
	sent []sent
}

func (f *fakeNotifier) SendReminder(_ context.Context, user models.User, dueCount int) error {
	f.sent = append(f.sent, sent{user.ID, dueCount})
	return nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestScheduler(hour int, users *fakeUsers, due *fakeDue, n *fakeNotifier) *Scheduler {
	s := New(Config{StartHour: 8, EndHour: 22}, users, due, n, quietLogger())
	s.clock = func() time.Time { return time.Date(2024, 3, 10, hour, 0, 5, 0, time.UTC) }
	return s
}

func TestCheckAndSendReminders(t *testing.T) {
	users := &fakeUsers{byHour: map[int][]models.User{
		9: {
			{ID: 1, WordsPerDay: 20},
			{ID: 2, WordsPerDay: 5},
			{ID: 3, WordsPerDay: 20},
			{ID: 4, WordsPerDay: 20},
		},
	}}
	due := &fakeDue{
		counts: map[int64]int{1: 3, 2: 12, 3: 0, 4: 7},
		fail:   map[int64]bool{4: true},
	}
	n := &fakeNotifier{}

	count, err := newTestScheduler(9, users, due, n).CheckAndSendReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []sent{{1, 3}, {2, 5}}, n.sent)
}

func TestCheckAndSendRemindersOutsideWindow(t *testing.T) {
	users := &fakeUsers{byHour: map[int][]models.User{23: {{ID: 1, WordsPerDay: 20}}}}
	n := &fakeNotifier{}

	count, err := newTestScheduler(23, users, &fakeDue{counts: map[int64]int{1: 3}}, n).CheckAndSendReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, n.sent)
}

func TestCheckAndSendRemindersUserLookupFails(t *testing.T) {
	users := &fakeUsers{err: errors.New("boom")}
	_, err := newTestScheduler(9, users, &fakeDue{}, &fakeNotifier{}).CheckAndSendReminders(context.Background())
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestScheduler(9, &fakeUsers{}, &fakeDue{}, &fakeNotifier{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
