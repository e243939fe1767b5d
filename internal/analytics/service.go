package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/opositores/backend/internal/models"
)

const (
	// WeakThreshold is the default accuracy percentage below which a theme
	// counts as a weak area.
	WeakThreshold = 70.0

	// minSampleSize keeps themes with too few attempted questions out of
	// rankings, so one bad answer does not dominate the study plan.
	minSampleSize = 3
)

// AnalyticsStore is the durable side of the aggregator. MergeThemeStats must
// be atomic per (user, theme) so concurrent finishers never lose increments.
type AnalyticsStore interface {
	InsertFailure(ctx context.Context, rec models.FailureRecord) error
	MergeThemeStats(ctx context.Context, userID, themeID int64, correct, incorrect, unanswered int) error
	ListThemeStats(ctx context.Context, userID int64, themeID *int64, limit int) ([]models.FailureAnalytics, error)
	WeakThemes(ctx context.Context, userID int64, threshold float64, minAttempted, limit int) ([]models.FailureAnalytics, error)
	SumThemeStats(ctx context.Context, userID int64, weakThreshold float64) (StatTotals, error)
	FinishedScores(ctx context.Context, userID int64) (ExamTotals, error)
}

type Service struct {
	store AnalyticsStore
}

func NewService(store AnalyticsStore) *Service {
	return &Service{store: store}
}

type themeDelta struct {
	correct    int
	incorrect  int
	unanswered int
}

// RecordAttemptResults consumes the ordered verdicts of a finished attempt:
// one failure record per incorrect answer, plus a cumulative stats merge for
// every theme the attempt touched. Themes absent from the verdicts are left
// alone.
func (s *Service) RecordAttemptResults(ctx context.Context, userID, attemptID int64, result *models.ScoreResult) error {
	deltas := map[int64]*themeDelta{}
	var themeOrder []int64

	for _, qr := range result.Results {
		d, ok := deltas[qr.ThemeID]
		if !ok {
			d = &themeDelta{}
			deltas[qr.ThemeID] = d
			themeOrder = append(themeOrder, qr.ThemeID)
		}
		switch qr.Status {
		case models.VerdictCorrect:
			d.correct++
		case models.VerdictIncorrect:
			d.incorrect++
			if err := s.store.InsertFailure(ctx, models.FailureRecord{
				UserID:         userID,
				QuestionID:     qr.QuestionID,
				ThemeID:        qr.ThemeID,
				AttemptID:      attemptID,
				SelectedAnswer: qr.SelectedAnswer,
				CorrectAnswer:  qr.CorrectAnswer,
			}); err != nil {
				return fmt.Errorf("record failure for question %d: %w", qr.QuestionID, err)
			}
		default:
			d.unanswered++
		}
	}

	for _, themeID := range themeOrder {
		d := deltas[themeID]
		if err := s.store.MergeThemeStats(ctx, userID, themeID, d.correct, d.incorrect, d.unanswered); err != nil {
			return fmt.Errorf("merge stats for theme %d: %w", themeID, err)
		}
	}
	return nil
}

// GetFailureAnalytics ranks the user's themes worst accuracy first, optionally
// narrowed to one theme.
func (s *Service) GetFailureAnalytics(ctx context.Context, userID int64, themeID *int64, top int) ([]models.FailureAnalytics, error) {
	return s.store.ListThemeStats(ctx, userID, themeID, top)
}

func (s *Service) GenerateStudyPlan(ctx context.Context, userID int64, threshold float64, maxThemes int) (*models.StudyPlan, error) {
	weak, err := s.store.WeakThemes(ctx, userID, threshold, minSampleSize, maxThemes)
	if err != nil {
		return nil, fmt.Errorf("generate study plan: %w", err)
	}

	plan := &models.StudyPlan{
		UserID:         userID,
		GeneratedAt:    time.Now(),
		WeakThemes:     make([]models.StudyPlanItem, 0, len(weak)),
		TotalWeakAreas: len(weak),
	}
	for i, fa := range weak {
		plan.WeakThemes = append(plan.WeakThemes, models.StudyPlanItem{
			ThemeID:                  fa.ThemeID,
			ThemeName:                fa.ThemeName,
			ThemeCode:                fa.ThemeCode,
			Priority:                 i + 1,
			FailureCount:             fa.FailureCount,
			AccuracyRate:             fa.AccuracyRate,
			RecommendedPracticeCount: RecommendedPracticeCount(fa.AccuracyRate),
		})
	}
	return plan, nil
}

// RecommendedPracticeCount maps an accuracy percentage onto a practice-item
// count through fixed bands. Deterministic from the accuracy value alone.
func RecommendedPracticeCount(accuracy float64) int {
	switch {
	case accuracy < 40:
		return 20
	case accuracy < 55:
		return 15
	case accuracy < 70:
		return 10
	default:
		return 5
	}
}

func (s *Service) GetOverallStats(ctx context.Context, userID int64) (*models.OverallStats, error) {
	themeTotals, err := s.store.SumThemeStats(ctx, userID, WeakThreshold)
	if err != nil {
		return nil, fmt.Errorf("overall stats: %w", err)
	}
	examTotals, err := s.store.FinishedScores(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("overall stats: %w", err)
	}

	// Overall accuracy is the unweighted mean of the per-theme accuracy
	// rates, not correct/attempted over the pooled counts.
	return &models.OverallStats{
		UserID:                 userID,
		TotalExamsCompleted:    examTotals.Finished,
		TotalQuestionsAnswered: themeTotals.Attempted,
		TotalCorrect:           themeTotals.Correct,
		TotalIncorrect:         themeTotals.Incorrect,
		TotalUnanswered:        themeTotals.Unanswered,
		OverallAccuracy:        round2(themeTotals.AvgAccuracy),
		AverageScore:           round2(examTotals.AvgScore),
		BestScore:              round2(examTotals.MaxScore),
		WeakThemesCount:        themeTotals.WeakThemes,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
