package exams

import (
	"context"
	"fmt"
	"log"

	"github.com/opositores/backend/internal/models"
)

const (
	simulacroGeneralCount  = 12
	simulacroSpecificCount = 28
)

// QuestionSampler draws random questions without replacement from the union
// of the given themes. It may return fewer than requested.
type QuestionSampler interface {
	SampleQuestions(ctx context.Context, themeIDs []int64, count int) ([]models.Question, error)
}

type ThemeCatalog interface {
	ListThemes(ctx context.Context, part *models.ThemePart) ([]models.Theme, error)
}

// ResultsRecorder receives the ordered per-question verdicts of a finished
// attempt. Recording is best-effort from the caller's point of view.
type ResultsRecorder interface {
	RecordAttemptResults(ctx context.Context, userID, attemptID int64, result *models.ScoreResult) error
}

// ExamStore is the durable side of exams and attempts. FinishAttempt must be
// a conditional update on the not-yet-finished predicate: it reports false
// when the attempt was already finished, without touching the stored score.
type ExamStore interface {
	CreateExam(ctx context.Context, exam *models.Exam) (*models.Exam, error)
	GetExam(ctx context.Context, id int64) (*models.Exam, error)
	CreateAttempt(ctx context.Context, examID, userID int64) (*models.Attempt, error)
	GetAttempt(ctx context.Context, id int64) (*models.Attempt, error)
	UpsertAnswer(ctx context.Context, attemptID, questionID int64, selected *int) (bool, error)
	FinishAttempt(ctx context.Context, attemptID int64, score float64, details *models.ScoreResult) (bool, error)
	ListUserAttempts(ctx context.Context, userID int64, limit, offset int) ([]models.Attempt, int, error)
}

type Service struct {
	store    ExamStore
	sampler  QuestionSampler
	themes   ThemeCatalog
	recorder ResultsRecorder
}

func NewService(store ExamStore, sampler QuestionSampler, themes ThemeCatalog, recorder ResultsRecorder) *Service {
	return &Service{store: store, sampler: sampler, themes: themes, recorder: recorder}
}

// Assemble builds an immutable exam from sampled question snapshots. For the
// mock exam type it ignores the caller's theme selection and question count
// and applies the fixed 12 general + 28 specific split instead.
func (s *Service) Assemble(ctx context.Context, req models.GenerateExamRequest, creator int64) (*models.Exam, error) {
	if !models.ValidExamTypes[req.Type] {
		return nil, fmt.Errorf("%w: unknown exam type %q", ErrInvalidRequest, req.Type)
	}

	exam := &models.Exam{
		Type:      req.Type,
		Name:      req.Name,
		CreatedBy: creator,
	}

	if req.Type == models.ExamSimulacro {
		questions, themeIDs, err := s.sampleSimulacro(ctx)
		if err != nil {
			return nil, err
		}
		exam.Questions = snapshotQuestions(questions)
		exam.ThemeIDs = themeIDs
		return s.store.CreateExam(ctx, exam)
	}

	if len(req.ThemeIDs) == 0 {
		return nil, fmt.Errorf("%w: theme_ids is required", ErrInvalidRequest)
	}
	if req.QuestionCount <= 0 {
		return nil, fmt.Errorf("%w: question_count must be positive", ErrInvalidRequest)
	}

	sampled, err := s.sampler.SampleQuestions(ctx, req.ThemeIDs, req.QuestionCount)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	if len(sampled) < req.QuestionCount {
		return nil, &InsufficientQuestionsError{Pool: "requested", Requested: req.QuestionCount, Found: len(sampled)}
	}

	exam.Questions = snapshotQuestions(sampled)
	exam.ThemeIDs = themeUnion(sampled)
	return s.store.CreateExam(ctx, exam)
}

func (s *Service) sampleSimulacro(ctx context.Context) ([]models.Question, []int64, error) {
	general, err := s.sampleSimulacroPool(ctx, models.PartGeneral, simulacroGeneralCount)
	if err != nil {
		return nil, nil, err
	}
	specific, err := s.sampleSimulacroPool(ctx, models.PartSpecific, simulacroSpecificCount)
	if err != nil {
		return nil, nil, err
	}

	questions := append(general, specific...)
	return questions, themeUnion(questions), nil
}

func (s *Service) sampleSimulacroPool(ctx context.Context, part models.ThemePart, count int) ([]models.Question, error) {
	themes, err := s.themes.ListThemes(ctx, &part)
	if err != nil {
		return nil, fmt.Errorf("list %s themes: %w", part, err)
	}
	themeIDs := make([]int64, 0, len(themes))
	for _, t := range themes {
		themeIDs = append(themeIDs, t.ID)
	}
	if len(themeIDs) == 0 {
		return nil, &InsufficientQuestionsError{Pool: string(part), Requested: count, Found: 0}
	}

	sampled, err := s.sampler.SampleQuestions(ctx, themeIDs, count)
	if err != nil {
		return nil, fmt.Errorf("sample %s pool: %w", part, err)
	}
	if len(sampled) < count {
		return nil, &InsufficientQuestionsError{Pool: string(part), Requested: count, Found: len(sampled)}
	}
	return sampled, nil
}

func (s *Service) GetExam(ctx context.Context, examID int64) (*models.Exam, error) {
	exam, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if exam == nil {
		return nil, fmt.Errorf("%w: exam %d", ErrNotFound, examID)
	}
	return exam, nil
}

// Start creates an active attempt with an empty answer map.
func (s *Service) Start(ctx context.Context, examID, userID int64) (*models.Attempt, *models.Exam, error) {
	exam, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return nil, nil, fmt.Errorf("get exam: %w", err)
	}
	if exam == nil {
		return nil, nil, fmt.Errorf("%w: exam %d", ErrNotFound, examID)
	}

	attempt, err := s.store.CreateAttempt(ctx, examID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("create attempt: %w", err)
	}
	return attempt, exam, nil
}

// SubmitAnswer upserts one answer while the attempt is active. Last write
// wins; a nil selection clears the answer. The question id is not checked
// against the exam: a foreign answer is stored and never matched by scoring.
// The store's own unfinished guard backstops the state check here, so a
// finish committing in between cannot mutate a finished attempt.
func (s *Service) SubmitAnswer(ctx context.Context, attemptID, userID, questionID int64, selected *int) error {
	attempt, err := s.ownedAttempt(ctx, attemptID, userID)
	if err != nil {
		return err
	}
	if attempt.FinishedAt != nil {
		return fmt.Errorf("%w: attempt %d", ErrAttemptFinished, attemptID)
	}

	written, err := s.store.UpsertAnswer(ctx, attemptID, questionID, selected)
	if err != nil {
		return fmt.Errorf("upsert answer: %w", err)
	}
	if !written {
		return fmt.Errorf("%w: attempt %d", ErrAttemptFinished, attemptID)
	}
	return nil
}

// Finish grades the attempt and makes it immutable. Scoring and the state
// transition are the user-facing contract; analytics recording afterwards is
// best-effort and its failure is logged, never surfaced.
func (s *Service) Finish(ctx context.Context, attemptID, userID int64) (*models.ScoreResult, error) {
	attempt, err := s.ownedAttempt(ctx, attemptID, userID)
	if err != nil {
		return nil, err
	}
	if attempt.FinishedAt != nil {
		return nil, fmt.Errorf("%w: attempt %d", ErrAttemptFinished, attemptID)
	}

	exam, err := s.store.GetExam(ctx, attempt.ExamID)
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}
	if exam == nil {
		return nil, fmt.Errorf("%w: exam %d", ErrNotFound, attempt.ExamID)
	}

	result := Score(exam.Questions, attempt.Answers)

	finished, err := s.store.FinishAttempt(ctx, attemptID, result.FinalScore, &result)
	if err != nil {
		return nil, fmt.Errorf("finish attempt: %w", err)
	}
	if !finished {
		return nil, fmt.Errorf("%w: attempt %d", ErrAttemptFinished, attemptID)
	}

	if err := s.recorder.RecordAttemptResults(ctx, userID, attemptID, &result); err != nil {
		log.Printf("WARN: failed to record attempt %d analytics: %v", attemptID, err)
	}
	return &result, nil
}

// GetResults returns the attempt in any state, so in-progress attempts can
// be polled.
func (s *Service) GetResults(ctx context.Context, attemptID, userID int64) (*models.Attempt, error) {
	return s.ownedAttempt(ctx, attemptID, userID)
}

func (s *Service) History(ctx context.Context, userID int64, limit, offset int) ([]models.Attempt, int, error) {
	return s.store.ListUserAttempts(ctx, userID, limit, offset)
}

func (s *Service) ownedAttempt(ctx context.Context, attemptID, userID int64) (*models.Attempt, error) {
	attempt, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt == nil {
		return nil, fmt.Errorf("%w: attempt %d", ErrNotFound, attemptID)
	}
	if attempt.UserID != userID {
		return nil, fmt.Errorf("%w: attempt %d", ErrForbidden, attemptID)
	}
	return attempt, nil
}

func snapshotQuestions(questions []models.Question) []models.QuestionSnapshot {
	snapshots := make([]models.QuestionSnapshot, 0, len(questions))
	for _, q := range questions {
		snapshots = append(snapshots, models.QuestionSnapshot{
			QuestionID:    q.ID,
			Text:          q.Text,
			Choices:       q.Choices,
			CorrectAnswer: q.CorrectAnswer,
			ThemeID:       q.ThemeID,
		})
	}
	return snapshots
}

func themeUnion(questions []models.Question) []int64 {
	seen := make(map[int64]bool)
	var union []int64
	for _, q := range questions {
		if !seen[q.ThemeID] {
			seen[q.ThemeID] = true
			union = append(union, q.ThemeID)
		}
	}
	return union
}
