package models

// OverallStats is the summary view of a user's study history.
type OverallStats struct {
	TotalWords         int     `json:"total_words"`
	KnownWords         int     `json:"known_words"`
	UnknownWords       int     `json:"unknown_words"`
	MasteryRate        int     `json:"mastery_rate"`
	TotalStudyTimeMs   int64   `json:"total_study_time"`
	StudyDays          int     `json:"study_days"`
	LongestStreak      int     `json:"longest_streak"`
	CurrentStreak      int     `json:"current_streak"`
	AverageWordsPerDay float64 `json:"average_words_per_day"`
}

// MonthlyProgress is one calendar month bucket of the progress chart.
type MonthlyProgress struct {
	Month    string `json:"month"` // YYYY-MM
	Label    string `json:"label"` // Jan, Feb, ...
	Learned  int    `json:"learned"`
	Mastered int    `json:"mastered"`
}

// CurvePoint is a retention percentage after a number of days.
type CurvePoint struct {
	Day       int `json:"day"`
	Retention int `json:"retention"`
}

// MemoryCurve compares the standard forgetting curve with the user's observed retention.
type MemoryCurve struct {
	StandardCurve []CurvePoint `json:"standard_curve"`
	UserCurve     []CurvePoint `json:"user_curve"`
}
