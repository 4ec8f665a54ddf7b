package stories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/dbx"
	"github.com/dmitrijs2005/storykeeper/internal/server/models"
	"github.com/google/uuid"
)

const storyColumns = `id, title, content, country, author, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStory(row scanner) (*models.Story, error) {
	s := &models.Story{}
	if err := row.Scan(&s.ID, &s.Title, &s.Content, &s.Country, &s.Author, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns stories ordered by creation time. An empty author lists all.
func (r *PostgresRepository) List(ctx context.Context, author string) ([]*models.Story, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if author == "" {
		query := `SELECT ` + storyColumns + ` FROM stories ORDER BY created_at, id`
		rows, err = r.db.QueryContext(ctx, query)
	} else {
		query := `SELECT ` + storyColumns + ` FROM stories WHERE author = $1 ORDER BY created_at, id`
		rows, err = r.db.QueryContext(ctx, query, author)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select stories: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Story, 0)
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		result = append(result, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) get(ctx context.Context, id string, lock bool) (*models.Story, error) {
	// a malformed id can never match a uuid column
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + storyColumns + ` FROM stories WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	s, err := scanStory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

// Get returns the story with the given id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Story, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate returns the story with the given id and locks its row until
// the surrounding transaction ends.
func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Story, error) {
	return r.get(ctx, id, true)
}

// Create inserts story, assigning an id when it has none. Timestamps are set
// by the database.
func (r *PostgresRepository) Create(ctx context.Context, story *models.Story) (*models.Story, error) {
	if story.ID == "" {
		story.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO stories (id, title, content, country, author)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, story.ID, story.Title, story.Content, story.Country, story.Author).
		Scan(&story.CreatedAt, &story.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return story, nil
}

// Update writes the mutable fields of story and refreshes its UpdatedAt.
func (r *PostgresRepository) Update(ctx context.Context, story *models.Story) error {
	query :=
		`UPDATE stories SET title = $2, content = $3, country = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, story.ID, story.Title, story.Content, story.Country).
		Scan(&story.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the story with the given id.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// FillMissingCountry is safe to repeat: rows that already carry a country are
// never touched.
func (r *PostgresRepository) FillMissingCountry(ctx context.Context, country string) (int64, error) {
	query := `UPDATE stories SET country = $1, updated_at = now() WHERE country IS NULL`

	res, err := r.db.ExecContext(ctx, query, country)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
