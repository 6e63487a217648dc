package spaced_repetition

import "time"

// ReviewIntervals are the fixed review gaps in days, loosely following the
// Ebbinghaus forgetting curve. Past the end of the table the last gap repeats.
var ReviewIntervals = []int{1, 2, 4, 7, 15, 30}

// IntervalFor returns the gap in days used after the given number of reviews.
func IntervalFor(reviewCount int) int {
	if reviewCount < 0 {
		reviewCount = 0
	}
	if reviewCount >= len(ReviewIntervals) {
		reviewCount = len(ReviewIntervals) - 1
	}
	return ReviewIntervals[reviewCount]
}

// ComputeNextReview calculates the next review date from the review count.
// Whole calendar days are added, the time of day is kept.
func ComputeNextReview(reviewCount int, from time.Time) time.Time {
	return from.AddDate(0, 0, IntervalFor(reviewCount))
}
