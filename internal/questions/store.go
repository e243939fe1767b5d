package questions

import (
	"context"
	"database/sql"
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

func (s *Store) CreateQuestion(ctx context.Context, req models.CreateQuestionRequest, createdBy int64) (*models.Question, error) {
	var q models.Question
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO questions (theme_id, text, choices, correct_answer, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, theme_id, text, choices, correct_answer, created_by, created_at`,
		req.ThemeID, req.Text, pq.Array(req.Choices), req.CorrectAnswer, createdBy,
	).Scan(&q.ID, &q.ThemeID, &q.Text, pq.Array(&q.Choices), &q.CorrectAnswer, &q.CreatedBy, &q.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}
	return &q, nil
}

func (s *Store) GetQuestion(ctx context.Context, id int64) (*models.Question, error) {
	var q models.Question
	err := s.db.QueryRowContext(ctx,
		`SELECT id, theme_id, text, choices, correct_answer, COALESCE(created_by, 0), created_at
		 FROM questions WHERE id = $1`,
		id,
	).Scan(&q.ID, &q.ThemeID, &q.Text, pq.Array(&q.Choices), &q.CorrectAnswer, &q.CreatedBy, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get question: %w", err)
	}
	return &q, nil
}

func (s *Store) UpdateQuestion(ctx context.Context, id int64, req models.CreateQuestionRequest) (*models.Question, error) {
	var q models.Question
	err := s.db.QueryRowContext(ctx,
		`UPDATE questions SET theme_id = $1, text = $2, choices = $3, correct_answer = $4
		 WHERE id = $5
		 RETURNING id, theme_id, text, choices, correct_answer, COALESCE(created_by, 0), created_at`,
		req.ThemeID, req.Text, pq.Array(req.Choices), req.CorrectAnswer, id,
	).Scan(&q.ID, &q.ThemeID, &q.Text, pq.Array(&q.Choices), &q.CorrectAnswer, &q.CreatedBy, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	return &q, nil
}

func (s *Store) DeleteQuestion(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete question: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) ListQuestions(ctx context.Context, themeID *int64, limit, offset int) ([]models.Question, int, error) {
	var total int
	var err error
	if themeID != nil {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM questions WHERE theme_id = $1`, *themeID).Scan(&total)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&total)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("count questions: %w", err)
	}

	var rows *sql.Rows
	if themeID != nil {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, theme_id, text, choices, correct_answer, COALESCE(created_by, 0), created_at
			 FROM questions WHERE theme_id = $1
			 ORDER BY id LIMIT $2 OFFSET $3`,
			*themeID, limit, offset,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, theme_id, text, choices, correct_answer, COALESCE(created_by, 0), created_at
			 FROM questions ORDER BY id LIMIT $1 OFFSET $2`,
			limit, offset,
		)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.ThemeID, &q.Text, pq.Array(&q.Choices),
			&q.CorrectAnswer, &q.CreatedBy, &q.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, total, rows.Err()
}

func (s *Store) BulkCreate(ctx context.Context, reqs []models.CreateQuestionRequest, createdBy int64) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	inserted := 0
	for _, req := range reqs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO questions (theme_id, text, choices, correct_answer, created_by)
			 VALUES ($1, $2, $3, $4, $5)`,
			req.ThemeID, req.Text, pq.Array(req.Choices), req.CorrectAnswer, createdBy,
		)
		if err != nil {
			return 0, fmt.Errorf("insert question: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit bulk insert: %w", err)
	}
	return inserted, nil
}

// SampleQuestions draws up to count distinct questions at random, without
// replacement, from the union of the given themes. It may return fewer than
// requested when the pool is smaller; callers decide whether that is fatal.
func (s *Store) SampleQuestions(ctx context.Context, themeIDs []int64, count int) ([]models.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, theme_id, text, choices, correct_answer, COALESCE(created_by, 0), created_at
		 FROM questions
		 WHERE theme_id = ANY($1)
		 ORDER BY RANDOM()
		 LIMIT $2`,
		pq.Array(themeIDs), count,
	)
	if err != nil {
		return nil, fmt.Errorf("sample questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.ThemeID, &q.Text, pq.Array(&q.Choices),
			&q.CorrectAnswer, &q.CreatedBy, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sampled question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
