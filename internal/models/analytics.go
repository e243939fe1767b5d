package models

import "time"

// FailureRecord is an append-only record of one incorrectly answered
// question, written when an attempt is finished.
type FailureRecord struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	QuestionID     int64     `json:"question_id"`
	ThemeID        int64     `json:"theme_id"`
	AttemptID      int64     `json:"attempt_id"`
	FailedAt       time.Time `json:"failed_at"`
	SelectedAnswer *int      `json:"selected_answer"`
	CorrectAnswer  int       `json:"correct_answer"`
}

// UserThemeStats accumulates a user's lifetime counts for one theme. Rows are
// merged incrementally on every finished attempt and never reset.
type UserThemeStats struct {
	UserID                  int64     `json:"user_id"`
	ThemeID                 int64     `json:"theme_id"`
	TotalQuestionsAttempted int       `json:"total_questions_attempted"`
	CorrectAnswers          int       `json:"correct_answers"`
	IncorrectAnswers        int       `json:"incorrect_answers"`
	Unanswered              int       `json:"unanswered"`
	AccuracyRate            float64   `json:"accuracy_rate"`
	LastUpdated             time.Time `json:"last_updated"`
}

type FailureAnalytics struct {
	ThemeID       int64      `json:"theme_id"`
	ThemeName     string     `json:"theme_name"`
	ThemeCode     string     `json:"theme_code"`
	FailureCount  int        `json:"failure_count"`
	TotalAttempts int        `json:"total_attempts"`
	AccuracyRate  float64    `json:"accuracy_rate"`
	LastFailedAt  *time.Time `json:"last_failed_at"`
}

type StudyPlanItem struct {
	ThemeID                  int64   `json:"theme_id"`
	ThemeName                string  `json:"theme_name"`
	ThemeCode                string  `json:"theme_code"`
	Priority                 int     `json:"priority"`
	FailureCount             int     `json:"failure_count"`
	AccuracyRate             float64 `json:"accuracy_rate"`
	RecommendedPracticeCount int     `json:"recommended_practice_count"`
}

type StudyPlan struct {
	UserID         int64           `json:"user_id"`
	GeneratedAt    time.Time       `json:"generated_at"`
	WeakThemes     []StudyPlanItem `json:"weak_themes"`
	TotalWeakAreas int             `json:"total_weak_areas"`
}

type OverallStats struct {
	UserID                 int64   `json:"user_id"`
	TotalExamsCompleted    int     `json:"total_exams_completed"`
	TotalQuestionsAnswered int     `json:"total_questions_answered"`
	TotalCorrect           int     `json:"total_correct"`
	TotalIncorrect         int     `json:"total_incorrect"`
	TotalUnanswered        int     `json:"total_unanswered"`
	OverallAccuracy        float64 `json:"overall_accuracy"`
	AverageScore           float64 `json:"average_score"`
	BestScore              float64 `json:"best_score"`
	WeakThemesCount        int     `json:"weak_themes_count"`
}
