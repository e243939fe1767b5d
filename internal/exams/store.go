package exams

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/opositores/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateExam persists the exam row and its question snapshots in one
// transaction, preserving sampling order via the position column.
func (s *Store) CreateExam(ctx context.Context, exam *models.Exam) (*models.Exam, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO exams (type, name, theme_ids, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		exam.Type, exam.Name, pq.Array(exam.ThemeIDs), exam.CreatedBy,
	).Scan(&exam.ID, &exam.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert exam: %w", err)
	}

	for i, q := range exam.Questions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO exam_questions (exam_id, position, question_id, text, choices, correct_answer, theme_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			exam.ID, i+1, q.QuestionID, q.Text, pq.Array(q.Choices), q.CorrectAnswer, q.ThemeID,
		)
		if err != nil {
			return nil, fmt.Errorf("insert exam question %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit exam: %w", err)
	}
	return exam, nil
}

func (s *Store) GetExam(ctx context.Context, id int64) (*models.Exam, error) {
	var exam models.Exam
	err := s.db.QueryRowContext(ctx,
		`SELECT id, type, name, theme_ids, created_by, created_at FROM exams WHERE id = $1`,
		id,
	).Scan(&exam.ID, &exam.Type, &exam.Name, pq.Array(&exam.ThemeIDs), &exam.CreatedBy, &exam.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, text, choices, correct_answer, theme_id
		 FROM exam_questions WHERE exam_id = $1 ORDER BY position`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("get exam questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q models.QuestionSnapshot
		if err := rows.Scan(&q.QuestionID, &q.Text, pq.Array(&q.Choices), &q.CorrectAnswer, &q.ThemeID); err != nil {
			return nil, fmt.Errorf("scan exam question: %w", err)
		}
		exam.Questions = append(exam.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &exam, nil
}

func (s *Store) CreateAttempt(ctx context.Context, examID, userID int64) (*models.Attempt, error) {
	attempt := &models.Attempt{
		ExamID:  examID,
		UserID:  userID,
		Answers: map[int64]*int{},
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO attempts (exam_id, user_id) VALUES ($1, $2)
		 RETURNING id, started_at`,
		examID, userID,
	).Scan(&attempt.ID, &attempt.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}
	return attempt, nil
}

func (s *Store) GetAttempt(ctx context.Context, id int64) (*models.Attempt, error) {
	var attempt models.Attempt
	var details []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT id, exam_id, user_id, started_at, finished_at, score, details
		 FROM attempts WHERE id = $1`,
		id,
	).Scan(&attempt.ID, &attempt.ExamID, &attempt.UserID, &attempt.StartedAt,
		&attempt.FinishedAt, &attempt.Score, &details)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if details != nil {
		var sr models.ScoreResult
		if err := json.Unmarshal(details, &sr); err != nil {
			return nil, fmt.Errorf("decode attempt details: %w", err)
		}
		attempt.Details = &sr
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id, selected_answer FROM attempt_answers WHERE attempt_id = $1`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("get attempt answers: %w", err)
	}
	defer rows.Close()

	attempt.Answers = map[int64]*int{}
	for rows.Next() {
		var questionID int64
		var selected *int
		if err := rows.Scan(&questionID, &selected); err != nil {
			return nil, fmt.Errorf("scan attempt answer: %w", err)
		}
		attempt.Answers[questionID] = selected
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &attempt, nil
}

// UpsertAnswer writes one answer, guarded by the attempt still being active:
// the INSERT sources its row from a SELECT on the unfinished predicate, so a
// finish committing after the caller's state check makes this a no-op. It
// reports false when no row was written.
func (s *Store) UpsertAnswer(ctx context.Context, attemptID, questionID int64, selected *int) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attempt_answers (attempt_id, question_id, selected_answer)
		 SELECT $1, $2, $3
		 WHERE EXISTS (SELECT 1 FROM attempts WHERE id = $1 AND finished_at IS NULL)
		 ON CONFLICT (attempt_id, question_id)
		 DO UPDATE SET selected_answer = EXCLUDED.selected_answer, answered_at = NOW()`,
		attemptID, questionID, selected,
	)
	if err != nil {
		return false, fmt.Errorf("upsert answer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FinishAttempt performs the single terminal transition. The WHERE clause on
// finished_at makes the update conditional, so of two concurrent finishers
// exactly one sees a row affected and the loser reports false.
func (s *Store) FinishAttempt(ctx context.Context, attemptID int64, score float64, details *models.ScoreResult) (bool, error) {
	payload, err := json.Marshal(details)
	if err != nil {
		return false, fmt.Errorf("encode attempt details: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE attempts SET finished_at = NOW(), score = $1, details = $2
		 WHERE id = $3 AND finished_at IS NULL`,
		score, payload, attemptID,
	)
	if err != nil {
		return false, fmt.Errorf("finish attempt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) ListUserAttempts(ctx context.Context, userID int64, limit, offset int) ([]models.Attempt, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count attempts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, exam_id, user_id, started_at, finished_at, score
		 FROM attempts WHERE user_id = $1
		 ORDER BY started_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list attempts: %w", err)
	}
	defer rows.Close()

	var attempts []models.Attempt
	for rows.Next() {
		var a models.Attempt
		if err := rows.Scan(&a.ID, &a.ExamID, &a.UserID, &a.StartedAt, &a.FinishedAt, &a.Score); err != nil {
			return nil, 0, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, total, rows.Err()
}
