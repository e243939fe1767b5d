package themes

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

func (s *Store) CreateTheme(ctx context.Context, req models.CreateThemeRequest) (*models.Theme, error) {
	var theme models.Theme
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO themes (code, name, part, sort_order)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, code, name, part, sort_order, created_at`,
		req.Code, req.Name, req.Part, req.SortOrder,
	).Scan(&theme.ID, &theme.Code, &theme.Name, &theme.Part, &theme.SortOrder, &theme.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create theme: %w", err)
	}
	return &theme, nil
}

func (s *Store) GetTheme(ctx context.Context, id int64) (*models.Theme, error) {
	var theme models.Theme
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, name, part, sort_order, created_at FROM themes WHERE id = $1`,
		id,
	).Scan(&theme.ID, &theme.Code, &theme.Name, &theme.Part, &theme.SortOrder, &theme.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get theme: %w", err)
	}
	return &theme, nil
}

func (s *Store) ListThemes(ctx context.Context, part *models.ThemePart) ([]models.Theme, error) {
	var rows *sql.Rows
	var err error

	if part != nil {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, code, name, part, sort_order, created_at
			 FROM themes WHERE part = $1 ORDER BY sort_order`,
			*part,
		)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT id, code, name, part, sort_order, created_at
			 FROM themes ORDER BY sort_order`,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	var themes []models.Theme
	for rows.Next() {
		var t models.Theme
		if err := rows.Scan(&t.ID, &t.Code, &t.Name, &t.Part, &t.SortOrder, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		themes = append(themes, t)
	}
	return themes, rows.Err()
}

func (s *Store) CountThemes(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM themes`).Scan(&count)
	return count, err
}
