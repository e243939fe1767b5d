package analytics

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opositores/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertFailure(ctx context.Context, rec models.FailureRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO failure_records (user_id, question_id, theme_id, attempt_id, selected_answer, correct_answer)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.UserID, rec.QuestionID, rec.ThemeID, rec.AttemptID, rec.SelectedAnswer, rec.CorrectAnswer,
	)
	if err != nil {
		return fmt.Errorf("insert failure record: %w", err)
	}
	return nil
}

// MergeThemeStats folds one attempt's per-theme deltas into the user's
// cumulative row. The merge is a single upsert so concurrent finishers never
// lose an increment, and accuracy is recomputed in SQL over the new totals.
func (s *Store) MergeThemeStats(ctx context.Context, userID, themeID int64, correct, incorrect, unanswered int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_theme_stats
		   (user_id, theme_id, total_questions_attempted, correct_answers, incorrect_answers, unanswered, accuracy_rate, last_updated)
		 VALUES ($1, $2, $3 + $4 + $5, $3, $4, $5,
		   CASE WHEN $3 + $4 + $5 > 0
		        THEN ROUND($3::numeric / ($3 + $4 + $5) * 100, 2)
		        ELSE 0 END,
		   NOW())
		 ON CONFLICT (user_id, theme_id) DO UPDATE SET
		   total_questions_attempted = user_theme_stats.total_questions_attempted + EXCLUDED.total_questions_attempted,
		   correct_answers           = user_theme_stats.correct_answers + EXCLUDED.correct_answers,
		   incorrect_answers         = user_theme_stats.incorrect_answers + EXCLUDED.incorrect_answers,
		   unanswered                = user_theme_stats.unanswered + EXCLUDED.unanswered,
		   accuracy_rate = CASE
		     WHEN user_theme_stats.total_questions_attempted + EXCLUDED.total_questions_attempted > 0
		     THEN ROUND((user_theme_stats.correct_answers + EXCLUDED.correct_answers)::numeric
		            / (user_theme_stats.total_questions_attempted + EXCLUDED.total_questions_attempted) * 100, 2)
		     ELSE 0 END,
		   last_updated = NOW()`,
		userID, themeID, correct, incorrect, unanswered,
	)
	if err != nil {
		return fmt.Errorf("merge theme stats: %w", err)
	}
	return nil
}

// ListThemeStats returns the user's cumulative rows joined with theme names
// and all-time failure aggregates, worst accuracy first.
func (s *Store) ListThemeStats(ctx context.Context, userID int64, themeID *int64, limit int) ([]models.FailureAnalytics, error) {
	query := `
		SELECT s.theme_id, t.name, t.code,
		       COALESCE(f.failure_count, 0),
		       s.total_questions_attempted,
		       s.accuracy_rate,
		       f.last_failed_at
		FROM user_theme_stats s
		JOIN themes t ON t.id = s.theme_id
		LEFT JOIN (
			SELECT theme_id, COUNT(*) AS failure_count, MAX(failed_at) AS last_failed_at
			FROM failure_records WHERE user_id = $1 GROUP BY theme_id
		) f ON f.theme_id = s.theme_id
		WHERE s.user_id = $1`
	args := []interface{}{userID}
	if themeID != nil {
		query += ` AND s.theme_id = $2`
		args = append(args, *themeID)
	}
	args = append(args, limit)
	query += fmt.Sprintf(` ORDER BY s.accuracy_rate ASC LIMIT $%d`, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list theme stats: %w", err)
	}
	defer rows.Close()

	var out []models.FailureAnalytics
	for rows.Next() {
		var fa models.FailureAnalytics
		if err := rows.Scan(&fa.ThemeID, &fa.ThemeName, &fa.ThemeCode,
			&fa.FailureCount, &fa.TotalAttempts, &fa.AccuracyRate, &fa.LastFailedAt); err != nil {
			return nil, fmt.Errorf("scan theme stats: %w", err)
		}
		out = append(out, fa)
	}
	return out, rows.Err()
}

// WeakThemes selects themes below the accuracy threshold with at least
// minAttempted questions on record, weakest first.
func (s *Store) WeakThemes(ctx context.Context, userID int64, threshold float64, minAttempted, limit int) ([]models.FailureAnalytics, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.theme_id, t.name, t.code,
		        COALESCE(f.failure_count, 0),
		        s.total_questions_attempted,
		        s.accuracy_rate,
		        f.last_failed_at
		 FROM user_theme_stats s
		 JOIN themes t ON t.id = s.theme_id
		 LEFT JOIN (
		 	SELECT theme_id, COUNT(*) AS failure_count, MAX(failed_at) AS last_failed_at
		 	FROM failure_records WHERE user_id = $1 GROUP BY theme_id
		 ) f ON f.theme_id = s.theme_id
		 WHERE s.user_id = $1
		   AND s.accuracy_rate < $2
		   AND s.total_questions_attempted >= $3
		 ORDER BY s.accuracy_rate ASC
		 LIMIT $4`,
		userID, threshold, minAttempted, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("weak themes: %w", err)
	}
	defer rows.Close()

	var out []models.FailureAnalytics
	for rows.Next() {
		var fa models.FailureAnalytics
		if err := rows.Scan(&fa.ThemeID, &fa.ThemeName, &fa.ThemeCode,
			&fa.FailureCount, &fa.TotalAttempts, &fa.AccuracyRate, &fa.LastFailedAt); err != nil {
			return nil, fmt.Errorf("scan weak theme: %w", err)
		}
		out = append(out, fa)
	}
	return out, rows.Err()
}

type StatTotals struct {
	Attempted   int
	Correct     int
	Incorrect   int
	Unanswered  int
	Themes      int
	WeakThemes  int
	AvgAccuracy float64
}

func (s *Store) SumThemeStats(ctx context.Context, userID int64, weakThreshold float64) (StatTotals, error) {
	var t StatTotals
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_questions_attempted), 0),
		        COALESCE(SUM(correct_answers), 0),
		        COALESCE(SUM(incorrect_answers), 0),
		        COALESCE(SUM(unanswered), 0),
		        COUNT(*),
		        COUNT(*) FILTER (WHERE accuracy_rate < $2),
		        COALESCE(AVG(accuracy_rate), 0)
		 FROM user_theme_stats WHERE user_id = $1`,
		userID, weakThreshold,
	).Scan(&t.Attempted, &t.Correct, &t.Incorrect, &t.Unanswered, &t.Themes, &t.WeakThemes, &t.AvgAccuracy)
	if err != nil {
		return t, fmt.Errorf("sum theme stats: %w", err)
	}
	return t, nil
}

type ExamTotals struct {
	Finished int
	AvgScore float64
	MaxScore float64
}

// FinishedScores aggregates exam-level results over finished attempts with a
// recorded score.
func (s *Store) FinishedScores(ctx context.Context, userID int64) (ExamTotals, error) {
	var t ExamTotals
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(AVG(score), 0), COALESCE(MAX(score), 0)
		 FROM attempts
		 WHERE user_id = $1 AND finished_at IS NOT NULL AND score IS NOT NULL`,
		userID,
	).Scan(&t.Finished, &t.AvgScore, &t.MaxScore)
	if err != nil {
		return t, fmt.Errorf("finished scores: %w", err)
	}
	return t, nil
}
