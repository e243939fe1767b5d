package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opositores/backend/internal/models"
)

type mergeCall struct {
	themeID                        int64
	correct, incorrect, unanswered int
}

type fakeAnalyticsStore struct {
	failures   []models.FailureRecord
	merges     []mergeCall
	weak       []models.FailureAnalytics
	statTotals StatTotals
	examTotals ExamTotals
}

func (f *fakeAnalyticsStore) InsertFailure(ctx context.Context, rec models.FailureRecord) error {
	f.failures = append(f.failures, rec)
	return nil
}

func (f *fakeAnalyticsStore) MergeThemeStats(ctx context.Context, userID, themeID int64, correct, incorrect, unanswered int) error {
	f.merges = append(f.merges, mergeCall{themeID, correct, incorrect, unanswered})
	return nil
}

func (f *fakeAnalyticsStore) ListThemeStats(ctx context.Context, userID int64, themeID *int64, limit int) ([]models.FailureAnalytics, error) {
	return f.weak, nil
}

func (f *fakeAnalyticsStore) WeakThemes(ctx context.Context, userID int64, threshold float64, minAttempted, limit int) ([]models.FailureAnalytics, error) {
	var out []models.FailureAnalytics
	for _, fa := range f.weak {
		if fa.AccuracyRate < threshold && fa.TotalAttempts >= minAttempted {
			out = append(out, fa)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeAnalyticsStore) SumThemeStats(ctx context.Context, userID int64, weakThreshold float64) (StatTotals, error) {
	return f.statTotals, nil
}

func (f *fakeAnalyticsStore) FinishedScores(ctx context.Context, userID int64) (ExamTotals, error) {
	return f.examTotals, nil
}

func intPtr(v int) *int { return &v }

func TestRecordAttemptResultsGroupsByTheme(t *testing.T) {
	store := &fakeAnalyticsStore{}
	svc := NewService(store)

	result := &models.ScoreResult{
		Results: []models.QuestionResult{
			{QuestionID: 1, ThemeID: 5, Status: models.VerdictCorrect},
			{QuestionID: 2, ThemeID: 5, Status: models.VerdictIncorrect, SelectedAnswer: intPtr(2), CorrectAnswer: 0},
			{QuestionID: 3, ThemeID: 9, Status: models.VerdictUnanswered},
			{QuestionID: 4, ThemeID: 5, Status: models.VerdictIncorrect, SelectedAnswer: intPtr(1), CorrectAnswer: 3},
		},
	}

	require.NoError(t, svc.RecordAttemptResults(context.Background(), 7, 100, result))

	// one failure record per incorrect answer
	require.Len(t, store.failures, 2)
	assert.Equal(t, int64(2), store.failures[0].QuestionID)
	assert.Equal(t, int64(4), store.failures[1].QuestionID)
	assert.Equal(t, int64(100), store.failures[0].AttemptID)
	assert.Equal(t, int64(7), store.failures[0].UserID)

	// one merge per touched theme, in first-appearance order
	require.Len(t, store.merges, 2)
	assert.Equal(t, mergeCall{themeID: 5, correct: 1, incorrect: 2}, store.merges[0])
	assert.Equal(t, mergeCall{themeID: 9, unanswered: 1}, store.merges[1])
}

func TestRecordAttemptResultsEmpty(t *testing.T) {
	store := &fakeAnalyticsStore{}
	svc := NewService(store)

	require.NoError(t, svc.RecordAttemptResults(context.Background(), 1, 1, &models.ScoreResult{}))
	assert.Empty(t, store.failures)
	assert.Empty(t, store.merges)
}

func TestRecommendedPracticeCountBands(t *testing.T) {
	tests := []struct {
		accuracy float64
		want     int
	}{
		{0, 20},
		{39.99, 20},
		{40, 15},
		{54.99, 15},
		{55, 10},
		{69.99, 10},
		{70, 5},
		{100, 5},
	}
	for _, tt := range tests {
		if got := RecommendedPracticeCount(tt.accuracy); got != tt.want {
			t.Errorf("RecommendedPracticeCount(%v) = %d, want %d", tt.accuracy, got, tt.want)
		}
	}
}

func TestGenerateStudyPlanOrderingAndCounts(t *testing.T) {
	store := &fakeAnalyticsStore{
		weak: []models.FailureAnalytics{
			{ThemeID: 1, ThemeName: "Constitución", AccuracyRate: 45, TotalAttempts: 8},
			{ThemeID: 2, ThemeName: "Procedimiento", AccuracyRate: 65, TotalAttempts: 12},
		},
	}
	svc := NewService(store)

	plan, err := svc.GenerateStudyPlan(context.Background(), 7, WeakThreshold, 10)
	require.NoError(t, err)
	require.Len(t, plan.WeakThemes, 2)
	assert.Equal(t, 2, plan.TotalWeakAreas)

	first, second := plan.WeakThemes[0], plan.WeakThemes[1]
	assert.Equal(t, int64(1), first.ThemeID)
	assert.Equal(t, 1, first.Priority)
	assert.Equal(t, 15, first.RecommendedPracticeCount)
	assert.Equal(t, int64(2), second.ThemeID)
	assert.Equal(t, 2, second.Priority)
	assert.Equal(t, 10, second.RecommendedPracticeCount)
}

func TestStudyPlanExcludesSmallSamples(t *testing.T) {
	store := &fakeAnalyticsStore{
		weak: []models.FailureAnalytics{
			{ThemeID: 1, AccuracyRate: 20, TotalAttempts: 2},
			{ThemeID: 2, AccuracyRate: 50, TotalAttempts: 3},
		},
	}
	svc := NewService(store)

	plan, err := svc.GenerateStudyPlan(context.Background(), 7, WeakThreshold, 10)
	require.NoError(t, err)
	require.Len(t, plan.WeakThemes, 1)
	assert.Equal(t, int64(2), plan.WeakThemes[0].ThemeID)
}

func TestGetOverallStats(t *testing.T) {
	store := &fakeAnalyticsStore{
		statTotals: StatTotals{Attempted: 60, Correct: 40, Incorrect: 15, Unanswered: 5, Themes: 4, WeakThemes: 2, AvgAccuracy: 61.254999},
		examTotals: ExamTotals{Finished: 3, AvgScore: 48.333333, MaxScore: 62.5},
	}
	svc := NewService(store)

	stats, err := svc.GetOverallStats(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalExamsCompleted)
	assert.Equal(t, 60, stats.TotalQuestionsAnswered)
	assert.Equal(t, 61.25, stats.OverallAccuracy)
	assert.Equal(t, 48.33, stats.AverageScore)
	assert.Equal(t, 62.5, stats.BestScore)
	assert.Equal(t, 2, stats.WeakThemesCount)
}

// Overall accuracy averages the per-theme accuracy rates unweighted, so a
// large theme at 91% and a tiny theme at 10% land at 50.50, not at the
// question-weighted correct/attempted ratio.
func TestGetOverallStatsUnweightedAccuracy(t *testing.T) {
	store := &fakeAnalyticsStore{
		// theme A: 91/100 correct (91.00), theme B: 1/10 correct (10.00)
		statTotals: StatTotals{Attempted: 110, Correct: 92, Incorrect: 18, Themes: 2, WeakThemes: 1, AvgAccuracy: 50.5},
	}
	svc := NewService(store)

	stats, err := svc.GetOverallStats(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 50.5, stats.OverallAccuracy)
	assert.Equal(t, 110, stats.TotalQuestionsAnswered)
	assert.Equal(t, 92, stats.TotalCorrect)
}

func TestGetOverallStatsNoData(t *testing.T) {
	svc := NewService(&fakeAnalyticsStore{})

	stats, err := svc.GetOverallStats(context.Background(), 7)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalQuestionsAnswered)
	assert.Zero(t, stats.OverallAccuracy)
	assert.Zero(t, stats.AverageScore)
}
