package statistics

import (
	"sort"

	"github.com/nnimab/Smart-vocabulary-book/pkg/models"
)

// StandardCurve is the reference Ebbinghaus retention table (day -> percent).
var StandardCurve = []models.CurvePoint{
	{Day: 0, Retention: 100},
	{Day: 1, Retention: 70},
	{Day: 2, Retention: 60},
	{Day: 4, Retention: 50},
	{Day: 7, Retention: 40},
	{Day: 14, Retention: 30},
	{Day: 30, Retention: 20},
	{Day: 60, Retention: 15},
	{Day: 90, Retention: 10},
}

// CurveIntervals are the review gaps the user curve is measured at.
var CurveIntervals = []int{1, 2, 4, 7, 14, 30, 60, 90}

// intervalTolerance is the accepted relative distance between an observed
// gap and its nearest interval.
const intervalTolerance = 0.3

type retentionCount struct {
	correct int
	total   int
}

// ComputeMemoryCurve measures how often words were still known after each
// review gap. Intervals without observations use the standard curve value.
func ComputeMemoryCurve(words []models.Word) models.MemoryCurve {
	counts := make(map[int]*retentionCount, len(CurveIntervals))
	for _, interval := range CurveIntervals {
		counts[interval] = &retentionCount{}
	}

	for _, w := range words {
		if len(w.StatusHistory) < 2 {
			continue
		}
		history := make([]models.StatusEntry, len(w.StatusHistory))
		copy(history, w.StatusHistory)
		sort.SliceStable(history, func(i, j int) bool {
			return history[i].Date.Before(history[j].Date)
		})

		for i := 1; i < len(history); i++ {
			gap := roundHalfUp(history[i].Date.Sub(history[i-1].Date).Hours() / 24)
			nearest := nearestInterval(gap)
			if float64(abs(nearest-gap)) > float64(nearest)*intervalTolerance {
				continue
			}
			c := counts[nearest]
			c.total++
			if history[i].Status == models.StatusKnown {
				c.correct++
			}
		}
	}

	user := make([]models.CurvePoint, 0, len(CurveIntervals)+1)
	user = append(user, models.CurvePoint{Day: 0, Retention: 100})
	for _, interval := range CurveIntervals {
		c := counts[interval]
		retention := standardRetention(interval)
		if c.total > 0 {
			retention = roundHalfUp(float64(c.correct) / float64(c.total) * 100)
		}
		user = append(user, models.CurvePoint{Day: interval, Retention: retention})
	}
	sort.SliceStable(user, func(i, j int) bool { return user[i].Day < user[j].Day })

	standard := make([]models.CurvePoint, len(StandardCurve))
	copy(standard, StandardCurve)
	return models.MemoryCurve{StandardCurve: standard, UserCurve: user}
}

// nearestInterval picks the closest curve interval; ties go to the shorter one.
func nearestInterval(days int) int {
	best := CurveIntervals[0]
	for _, interval := range CurveIntervals[1:] {
		if abs(interval-days) < abs(best-days) {
			best = interval
		}
	}
	return best
}

func standardRetention(day int) int {
	for _, p := range StandardCurve {
		if p.Day == day {
			return p.Retention
		}
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
