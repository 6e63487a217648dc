package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

var start = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func TestStart(t *testing.T) {
	s := Start(1, 2, start)
	assert.Equal(t, int64(1), s.UserID)
	assert.Equal(t, int64(2), s.BookID)
	assert.Equal(t, start, s.StartTime)
	assert.False(t, s.Closed())
	assert.Empty(t, s.WordResults)
}

func TestRecordAndClose(t *testing.T) {
	s := Start(1, 2, start)
	require.NoError(t, RecordResult(s, 10, true, 1500*time.Millisecond, start.Add(time.Minute)))
	require.NoError(t, RecordResult(s, 11, false, 3*time.Second, start.Add(2*time.Minute)))
	require.NoError(t, RecordResult(s, 10, true, 0, start.Add(3*time.Minute)))

	summary, err := Close(s, start.Add(10*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, summary.Duration)
	assert.Equal(t, 3, summary.TotalWords)
	assert.Equal(t, 2, summary.KnownWords)
	assert.Equal(t, 1, summary.UnknownWords)
	assert.True(t, s.Closed())
	assert.Equal(t, start.Add(10*time.Minute), *s.EndTime)
}

func TestCloseEmptySession(t *testing.T) {
	s := Start(1, 2, start)
	summary, err := Close(s, start)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), summary.Duration)
	assert.Zero(t, summary.TotalWords)
}

func TestCloseTwiceIsRejected(t *testing.T) {
	s := Start(1, 2, start)
	require.NoError(t, RecordResult(s, 10, true, time.Second, start))
	first, err := Close(s, start.Add(time.Minute))
	require.NoError(t, err)

	_, err = Close(s, start.Add(time.Hour))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidState))

	assert.Equal(t, first, Summarize(s))
	assert.Equal(t, start.Add(time.Minute), *s.EndTime)
}

func TestRecordOnClosedSession(t *testing.T) {
	s := Start(1, 2, start)
	_, err := Close(s, start.Add(time.Minute))
	require.NoError(t, err)

	err = RecordResult(s, 10, true, time.Second, start.Add(2*time.Minute))
	assert.True(t, errors.Is(err, models.ErrInvalidState))
	assert.Empty(t, s.WordResults)
}

func TestRecordNegativeTimeSpent(t *testing.T) {
	s := Start(1, 2, start)
	err := RecordResult(s, 10, true, -time.Millisecond, start)
	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.Empty(t, s.WordResults)
}

func TestCloseBeforeStart(t *testing.T) {
	s := Start(1, 2, start)
	_, err := Close(s, start.Add(-time.Second))
	assert.True(t, errors.Is(err, models.ErrValidation))
	assert.False(t, s.Closed())
}

func TestNilSession(t *testing.T) {
	assert.True(t, errors.Is(RecordResult(nil, 1, true, 0, start), models.ErrNotFound))
	_, err := Close(nil, start)
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
