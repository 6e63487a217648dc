package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

func TestComputeActivityHeatmap(t *testing.T) {
	sessions := []models.StudySession{
		sessionAt(day(2023, 12, 31, 8), 50, 10),
		sessionAt(day(2024, 1, 1, 8), 5, 3),
		sessionAt(day(2024, 1, 1, 18), 7, 3),
		sessionAt(day(2024, 1, 3, 8), 2, 0),
	}

	got := ComputeActivityHeatmap(sessions, day(2024, 1, 1, 0))
	assert.Equal(t, map[string]int{"2024-01-01": 12, "2024-01-03": 2}, got)
}

func TestComputeActivityHeatmapIncludesBoundary(t *testing.T) {
	from := day(2024, 1, 1, 8)
	got := ComputeActivityHeatmap([]models.StudySession{sessionAt(from, 4, 4)}, from)
	assert.Equal(t, 4, got["2024-01-01"])
}

func TestComputeActivityHeatmapEmpty(t *testing.T) {
	assert.Empty(t, ComputeActivityHeatmap(nil, time.Time{}))
}

func TestTimeframeStart(t *testing.T) {
	now := day(2024, 6, 15, 12)
	assert.Equal(t, day(2024, 5, 15, 12), TimeframeStart("month", now))
	assert.Equal(t, day(2024, 3, 15, 12), TimeframeStart("quarter", now))
	assert.Equal(t, day(2023, 6, 15, 12), TimeframeStart("year", now))
	assert.Equal(t, day(2023, 6, 15, 12), TimeframeStart("", now))
	assert.Equal(t, day(2023, 6, 15, 12), TimeframeStart("decade", now))
}
