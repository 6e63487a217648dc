package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nnimab/Smart-vocabulary-book/internal/database"
	"github.com/nnimab/Smart-vocabulary-book/internal/statistics"
	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// StatsService serves the reporting views over persisted data.
type StatsService struct {
	base
}

// NewStatsService creates a new statistics service
func NewStatsService(db *database.DB, opts ...Option) *StatsService {
	return &StatsService{base: newBase(db, opts)}
}

// Overall returns the summary statistics of a user.
func (s *StatsService) Overall(ctx context.Context, userID int64) (models.OverallStats, error) {
	repos := s.db.Repositories()

	var (
		sessions []models.StudySession
		books    []models.VocabularyBook
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = repos.Sessions.ListAllByUser(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		books, err = repos.Books.ListByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return models.OverallStats{}, fmt.Errorf("failed to load statistics data: %w", err)
	}

	return statistics.ComputeOverallStats(sessions, books), nil
}

// Activity returns words studied per day since the start of the timeframe.
func (s *StatsService) Activity(ctx context.Context, userID int64, timeframe string) (map[string]int, error) {
	sessions, err := s.db.Repositories().Sessions.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	from := statistics.TimeframeStart(timeframe, s.now())
	return statistics.ComputeActivityHeatmap(sessions, from), nil
}

// Monthly returns the last twelve months of progress ending with the current month.
func (s *StatsService) Monthly(ctx context.Context, userID int64) ([]models.MonthlyProgress, error) {
	sessions, err := s.db.Repositories().Sessions.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return statistics.ComputeMonthlyProgress(sessions, s.now()), nil
}

// MemoryCurve compares the user's observed retention with the standard curve.
func (s *StatsService) MemoryCurve(ctx context.Context, userID int64) (models.MemoryCurve, error) {
	words, err := s.db.Repositories().Words.ListByUser(ctx, userID)
	if err != nil {
		return models.MemoryCurve{}, err
	}
	return statistics.ComputeMemoryCurve(words), nil
}
