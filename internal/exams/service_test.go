package exams

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opositores/backend/internal/models"
)

// ── Fakes ───────────────────────────────────────────────

type fakeStore struct {
	exams    map[int64]*models.Exam
	attempts map[int64]*models.Attempt
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		exams:    map[int64]*models.Exam{},
		attempts: map[int64]*models.Attempt{},
	}
}

func (f *fakeStore) CreateExam(ctx context.Context, exam *models.Exam) (*models.Exam, error) {
	f.nextID++
	exam.ID = f.nextID
	exam.CreatedAt = time.Now()
	f.exams[exam.ID] = exam
	return exam, nil
}

func (f *fakeStore) GetExam(ctx context.Context, id int64) (*models.Exam, error) {
	return f.exams[id], nil
}

func (f *fakeStore) CreateAttempt(ctx context.Context, examID, userID int64) (*models.Attempt, error) {
	f.nextID++
	a := &models.Attempt{
		ID:        f.nextID,
		ExamID:    examID,
		UserID:    userID,
		Answers:   map[int64]*int{},
		StartedAt: time.Now(),
	}
	f.attempts[a.ID] = a
	return a, nil
}

func (f *fakeStore) GetAttempt(ctx context.Context, id int64) (*models.Attempt, error) {
	return f.attempts[id], nil
}

func (f *fakeStore) UpsertAnswer(ctx context.Context, attemptID, questionID int64, selected *int) (bool, error) {
	a := f.attempts[attemptID]
	if a.FinishedAt != nil {
		return false, nil
	}
	a.Answers[questionID] = selected
	return true, nil
}

func (f *fakeStore) FinishAttempt(ctx context.Context, attemptID int64, score float64, details *models.ScoreResult) (bool, error) {
	a := f.attempts[attemptID]
	if a.FinishedAt != nil {
		return false, nil
	}
	now := time.Now()
	a.FinishedAt = &now
	a.Score = &score
	a.Details = details
	return true, nil
}

func (f *fakeStore) ListUserAttempts(ctx context.Context, userID int64, limit, offset int) ([]models.Attempt, int, error) {
	var out []models.Attempt
	for _, a := range f.attempts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, len(out), nil
}

type fakeSampler struct {
	// pool maps theme id to available questions
	pool   map[int64][]models.Question
	nextID int64
}

func (f *fakeSampler) SampleQuestions(ctx context.Context, themeIDs []int64, count int) ([]models.Question, error) {
	var out []models.Question
	for _, id := range themeIDs {
		out = append(out, f.pool[id]...)
	}
	if len(out) > count {
		out = out[:count]
	}
	return out, nil
}

func (f *fakeSampler) addQuestions(themeID int64, n int) {
	for i := 0; i < n; i++ {
		f.nextID++
		f.pool[themeID] = append(f.pool[themeID], models.Question{
			ID:            f.nextID,
			ThemeID:       themeID,
			Text:          "q",
			Choices:       []string{"a", "b", "c"},
			CorrectAnswer: 0,
		})
	}
}

type fakeCatalog struct {
	themes []models.Theme
}

func (f *fakeCatalog) ListThemes(ctx context.Context, part *models.ThemePart) ([]models.Theme, error) {
	var out []models.Theme
	for _, t := range f.themes {
		if part == nil || t.Part == *part {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeRecorder struct {
	calls int
	err   error
	last  *models.ScoreResult
}

func (f *fakeRecorder) RecordAttemptResults(ctx context.Context, userID, attemptID int64, result *models.ScoreResult) error {
	f.calls++
	f.last = result
	return f.err
}

func newTestService() (*Service, *fakeStore, *fakeSampler, *fakeCatalog, *fakeRecorder) {
	store := newFakeStore()
	sampler := &fakeSampler{pool: map[int64][]models.Question{}}
	catalog := &fakeCatalog{}
	recorder := &fakeRecorder{}
	return NewService(store, sampler, catalog, recorder), store, sampler, catalog, recorder
}

// ── Assembly ────────────────────────────────────────────

func TestAssembleThemedExam(t *testing.T) {
	svc, _, sampler, _, _ := newTestService()
	sampler.addQuestions(1, 5)
	sampler.addQuestions(2, 5)

	exam, err := svc.Assemble(context.Background(), models.GenerateExamRequest{
		Type:          models.ExamTheoryMixed,
		Name:          "mixed drill",
		ThemeIDs:      []int64{1, 2},
		QuestionCount: 8,
	}, 42)
	require.NoError(t, err)
	assert.Len(t, exam.Questions, 8)
	assert.ElementsMatch(t, []int64{1, 2}, exam.ThemeIDs)
	assert.Equal(t, int64(42), exam.CreatedBy)
}

func TestAssembleRejectsEmptyThemes(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.Assemble(context.Background(), models.GenerateExamRequest{
		Type:          models.ExamTheoryTopic,
		QuestionCount: 5,
	}, 1)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAssembleRejectsUnknownType(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	_, err := svc.Assemble(context.Background(), models.GenerateExamRequest{
		Type: "ORAL_DEFENSE", ThemeIDs: []int64{1}, QuestionCount: 5,
	}, 1)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAssembleInsufficientPool(t *testing.T) {
	svc, _, sampler, _, _ := newTestService()
	sampler.addQuestions(1, 3)

	_, err := svc.Assemble(context.Background(), models.GenerateExamRequest{
		Type:          models.ExamTheoryTopic,
		ThemeIDs:      []int64{1},
		QuestionCount: 10,
	}, 1)

	var insufficient *InsufficientQuestionsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 10, insufficient.Requested)
	assert.Equal(t, 3, insufficient.Found)
}

func TestAssembleSimulacro(t *testing.T) {
	svc, _, sampler, catalog, _ := newTestService()
	catalog.themes = []models.Theme{
		{ID: 1, Part: models.PartGeneral},
		{ID: 2, Part: models.PartGeneral},
		{ID: 3, Part: models.PartSpecific},
		{ID: 4, Part: models.PartSpecific},
	}
	sampler.addQuestions(1, 10)
	sampler.addQuestions(2, 10)
	sampler.addQuestions(3, 20)
	sampler.addQuestions(4, 20)

	exam, err := svc.Assemble(context.Background(), models.GenerateExamRequest{
		Type: models.ExamSimulacro,
		Name: "simulacro 1",
		// caller's theme selection and count must be ignored
		ThemeIDs:      []int64{99},
		QuestionCount: 3,
	}, 1)
	require.NoError(t, err)
	assert.Len(t, exam.Questions, 40)

	general, specific := 0, 0
	for _, q := range exam.Questions {
		switch q.ThemeID {
		case 1, 2:
			general++
		case 3, 4:
			specific++
		}
	}
	assert.Equal(t, 12, general)
	assert.Equal(t, 28, specific)
	assert.NotContains(t, exam.ThemeIDs, int64(99))
}

func TestAssembleSimulacroShortSpecificPool(t *testing.T) {
	svc, _, sampler, catalog, _ := newTestService()
	catalog.themes = []models.Theme{
		{ID: 1, Part: models.PartGeneral},
		{ID: 2, Part: models.PartSpecific},
	}
	sampler.addQuestions(1, 12)
	sampler.addQuestions(2, 5)

	_, err := svc.Assemble(context.Background(), models.GenerateExamRequest{Type: models.ExamSimulacro}, 1)

	var insufficient *InsufficientQuestionsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, string(models.PartSpecific), insufficient.Pool)
	assert.Equal(t, 28, insufficient.Requested)
	assert.Equal(t, 5, insufficient.Found)
}

// ── Attempt lifecycle ───────────────────────────────────

func startedAttempt(t *testing.T, svc *Service, sampler *fakeSampler, userID int64) *models.Attempt {
	t.Helper()
	sampler.addQuestions(1, 4)
	exam, err := svc.Assemble(context.Background(), models.GenerateExamRequest{
		Type: models.ExamTheoryTopic, Name: "t", ThemeIDs: []int64{1}, QuestionCount: 4,
	}, userID)
	require.NoError(t, err)

	attempt, _, err := svc.Start(context.Background(), exam.ID, userID)
	require.NoError(t, err)
	return attempt
}

func TestStartUnknownExam(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	_, _, err := svc.Start(context.Background(), 404, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitAnswerOwnershipAndState(t *testing.T) {
	svc, _, sampler, _, _ := newTestService()
	attempt := startedAttempt(t, svc, sampler, 1)
	one := 1

	require.NoError(t, svc.SubmitAnswer(context.Background(), attempt.ID, 1, 1, &one))

	// another user cannot touch the attempt
	err := svc.SubmitAnswer(context.Background(), attempt.ID, 2, 1, &one)
	assert.ErrorIs(t, err, ErrForbidden)

	// finished attempts are immutable
	_, err = svc.Finish(context.Background(), attempt.ID, 1)
	require.NoError(t, err)
	err = svc.SubmitAnswer(context.Background(), attempt.ID, 1, 1, &one)
	assert.ErrorIs(t, err, ErrAttemptFinished)
}

func TestSubmitAnswerLastWriteWins(t *testing.T) {
	svc, store, sampler, _, _ := newTestService()
	attempt := startedAttempt(t, svc, sampler, 1)
	a, b := 0, 2

	require.NoError(t, svc.SubmitAnswer(context.Background(), attempt.ID, 1, 1, &a))
	require.NoError(t, svc.SubmitAnswer(context.Background(), attempt.ID, 1, 1, &b))
	assert.Equal(t, &b, store.attempts[attempt.ID].Answers[1])

	// explicit clear
	require.NoError(t, svc.SubmitAnswer(context.Background(), attempt.ID, 1, 1, nil))
	assert.Nil(t, store.attempts[attempt.ID].Answers[1])
}

// staleReadStore serves attempt reads from a snapshot taken before any
// finish, standing in for a finish that commits between the service's state
// check and the answer write.
type staleReadStore struct {
	*fakeStore
}

func (s *staleReadStore) GetAttempt(ctx context.Context, id int64) (*models.Attempt, error) {
	a, err := s.fakeStore.GetAttempt(ctx, id)
	if err != nil || a == nil {
		return a, err
	}
	stale := *a
	stale.FinishedAt = nil
	return &stale, nil
}

func TestSubmitAnswerLosesRaceWithFinish(t *testing.T) {
	store := newFakeStore()
	sampler := &fakeSampler{pool: map[int64][]models.Question{}}
	svc := NewService(&staleReadStore{store}, sampler, &fakeCatalog{}, &fakeRecorder{})
	attempt := startedAttempt(t, svc, sampler, 1)

	_, err := svc.Finish(context.Background(), attempt.ID, 1)
	require.NoError(t, err)

	// the stale read sees an active attempt, so only the store's
	// unfinished guard stands between the write and a finished attempt
	one := 1
	err = svc.SubmitAnswer(context.Background(), attempt.ID, 1, 1, &one)
	assert.ErrorIs(t, err, ErrAttemptFinished)
	assert.NotContains(t, store.attempts[attempt.ID].Answers, int64(1))
}

func TestFinishScoresAndRecords(t *testing.T) {
	svc, store, sampler, _, recorder := newTestService()
	attempt := startedAttempt(t, svc, sampler, 7)

	exam := store.exams[attempt.ExamID]
	correct := exam.Questions[0].CorrectAnswer
	wrong := correct + 1
	require.NoError(t, svc.SubmitAnswer(context.Background(), attempt.ID, 7, exam.Questions[0].QuestionID, &correct))
	require.NoError(t, svc.SubmitAnswer(context.Background(), attempt.ID, 7, exam.Questions[1].QuestionID, &wrong))

	result, err := svc.Finish(context.Background(), attempt.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Correct)
	assert.Equal(t, 1, result.Incorrect)
	assert.Equal(t, 2, result.Unanswered)
	assert.Equal(t, 1, recorder.calls)
	assert.Equal(t, result.FinalScore, *store.attempts[attempt.ID].Score)
}

func TestFinishTwiceIsInvalidState(t *testing.T) {
	svc, store, sampler, _, _ := newTestService()
	attempt := startedAttempt(t, svc, sampler, 1)

	first, err := svc.Finish(context.Background(), attempt.ID, 1)
	require.NoError(t, err)

	_, err = svc.Finish(context.Background(), attempt.ID, 1)
	assert.ErrorIs(t, err, ErrAttemptFinished)
	assert.Equal(t, first.FinalScore, *store.attempts[attempt.ID].Score)
}

func TestFinishSwallowsRecorderFailure(t *testing.T) {
	svc, store, sampler, _, recorder := newTestService()
	recorder.err = errors.New("analytics store down")
	attempt := startedAttempt(t, svc, sampler, 1)

	result, err := svc.Finish(context.Background(), attempt.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotNil(t, store.attempts[attempt.ID].FinishedAt)
	assert.Equal(t, 1, recorder.calls)
}

func TestGetResultsInAnyState(t *testing.T) {
	svc, _, sampler, _, _ := newTestService()
	attempt := startedAttempt(t, svc, sampler, 1)

	got, err := svc.GetResults(context.Background(), attempt.ID, 1)
	require.NoError(t, err)
	assert.Nil(t, got.FinishedAt)

	_, err = svc.Finish(context.Background(), attempt.ID, 1)
	require.NoError(t, err)

	got, err = svc.GetResults(context.Background(), attempt.ID, 1)
	require.NoError(t, err)
	assert.NotNil(t, got.FinishedAt)

	_, err = svc.GetResults(context.Background(), attempt.ID, 2)
	assert.ErrorIs(t, err, ErrForbidden)
}
