package practicalsets

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/lib/pq"

	"github.com/opositores/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateSet(ctx context.Context, req models.CreatePracticalSetRequest, createdBy int64) (*models.PracticalSet, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	set := &models.PracticalSet{
		Title:       req.Title,
		Description: req.Description,
		ThemeIDs:    req.ThemeIDs,
		CreatedBy:   createdBy,
		IsActive:    true,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO practical_sets (title, description, theme_ids, created_by)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		req.Title, req.Description, pq.Array(req.ThemeIDs), createdBy,
	).Scan(&set.ID, &set.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert practical set: %w", err)
	}

	for _, q := range req.Questions {
		var psq models.PracticalSetQuestion
		err := tx.QueryRowContext(ctx,
			`INSERT INTO practical_set_questions (set_id, position, text, choices, correct_answer)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			set.ID, q.Position, q.Text, pq.Array(q.Choices), q.CorrectAnswer,
		).Scan(&psq.ID)
		if err != nil {
			return nil, fmt.Errorf("insert set question %d: %w", q.Position, err)
		}
		psq.Position = q.Position
		psq.Text = q.Text
		psq.Choices = q.Choices
		psq.CorrectAnswer = q.CorrectAnswer
		set.Questions = append(set.Questions, psq)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit practical set: %w", err)
	}
	sortQuestions(set.Questions)
	return set, nil
}

func (s *Store) GetSet(ctx context.Context, id int64) (*models.PracticalSet, error) {
	var set models.PracticalSet
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, theme_ids, created_by, created_at, is_active
		 FROM practical_sets WHERE id = $1 AND is_active`,
		id,
	).Scan(&set.ID, &set.Title, &set.Description, pq.Array(&set.ThemeIDs),
		&set.CreatedBy, &set.CreatedAt, &set.IsActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get practical set: %w", err)
	}

	questions, err := s.setQuestions(ctx, id)
	if err != nil {
		return nil, err
	}
	set.Questions = questions
	return &set, nil
}

// GetRandomSet serves the "give me any drill" flow: one active set chosen
// uniformly, optionally restricted to sets touching a theme.
func (s *Store) GetRandomSet(ctx context.Context, themeID *int64) (*models.PracticalSet, error) {
	var id int64
	var err error
	if themeID != nil {
		err = s.db.QueryRowContext(ctx,
			`SELECT id FROM practical_sets
			 WHERE is_active AND $1 = ANY(theme_ids)
			 ORDER BY RANDOM() LIMIT 1`,
			*themeID,
		).Scan(&id)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT id FROM practical_sets WHERE is_active ORDER BY RANDOM() LIMIT 1`,
		).Scan(&id)
	}
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pick random set: %w", err)
	}
	return s.GetSet(ctx, id)
}

// ListSets returns summaries of active sets, newest first, optionally
// restricted to sets touching a theme.
func (s *Store) ListSets(ctx context.Context, themeID *int64) ([]models.PracticalSetSummary, error) {
	query := `
		SELECT p.id, p.title, p.description, p.theme_ids, p.created_by, p.created_at,
		       (SELECT COUNT(*) FROM practical_set_questions q WHERE q.set_id = p.id)
		FROM practical_sets p
		WHERE p.is_active`
	var args []interface{}
	if themeID != nil {
		query += ` AND $1 = ANY(p.theme_ids)`
		args = append(args, *themeID)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list practical sets: %w", err)
	}
	defer rows.Close()

	var sets []models.PracticalSetSummary
	for rows.Next() {
		var sum models.PracticalSetSummary
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Description, pq.Array(&sum.ThemeIDs),
			&sum.CreatedBy, &sum.CreatedAt, &sum.QuestionCount); err != nil {
			return nil, fmt.Errorf("scan practical set: %w", err)
		}
		sets = append(sets, sum)
	}
	return sets, rows.Err()
}

// DeactivateSet soft-deletes: the set disappears from listings but stays on
// disk for exams that reference its history.
func (s *Store) DeactivateSet(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE practical_sets SET is_active = FALSE WHERE id = $1 AND is_active`, id)
	if err != nil {
		return false, fmt.Errorf("deactivate practical set: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func sortQuestions(questions []models.PracticalSetQuestion) {
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].Position < questions[j].Position
	})
}

func (s *Store) setQuestions(ctx context.Context, setID int64) ([]models.PracticalSetQuestion, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, position, text, choices, correct_answer
		 FROM practical_set_questions WHERE set_id = $1 ORDER BY position`,
		setID,
	)
	if err != nil {
		return nil, fmt.Errorf("get set questions: %w", err)
	}
	defer rows.Close()

	var questions []models.PracticalSetQuestion
	for rows.Next() {
		var q models.PracticalSetQuestion
		if err := rows.Scan(&q.ID, &q.Position, &q.Text, pq.Array(&q.Choices), &q.CorrectAnswer); err != nil {
			return nil, fmt.Errorf("scan set question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
