package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"conferenceqa/internal/db"
	"conferenceqa/internal/domain"
)

const conferenceColumns = `id, slug, title, description, owner_id, created_at, updated_at`

type conferenceRepository struct {
	DB *sql.DB
}

// NewConferenceRepository returns a domain.ConferenceRepository implemented with Postgres.
func NewConferenceRepository(db *sql.DB) domain.ConferenceRepository {
	return &conferenceRepository{DB: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConference(row rowScanner) (*domain.Conference, error) {
	c := &domain.Conference{}
	var descNull sql.NullString
	if err := row.Scan(&c.ID, &c.Slug, &c.Title, &descNull, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if descNull.Valid {
		c.Description = &descNull.String
	}
	return c, nil
}

func (r *conferenceRepository) Create(ctx context.Context, c *domain.Conference) error {
	query := `
		INSERT INTO conferences (slug, title, description, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var desc sql.NullString
	if c.Description != nil {
		desc = sql.NullString{String: *c.Description, Valid: true}
	}
	err := r.DB.QueryRowContext(ctx, query, c.Slug, c.Title, desc, c.OwnerID, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	if err != nil {
		if db.IsUniqueViolation(err, "conferences_slug_key") {
			return domain.ErrDuplicateSlug
		}
		return err
	}
	return nil
}

func (r *conferenceRepository) GetByID(ctx context.Context, id string) (*domain.Conference, error) {
	query := `SELECT ` + conferenceColumns + ` FROM conferences WHERE id = $1`
	c, err := scanConference(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConferenceNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *conferenceRepository) GetBySlug(ctx context.Context, slug string) (*domain.Conference, error) {
	query := `SELECT ` + conferenceColumns + ` FROM conferences WHERE slug = $1`
	c, err := scanConference(r.DB.QueryRowContext(ctx, query, strings.TrimSpace(slug)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConferenceNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *conferenceRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Conference, int, error) {
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM conferences`).Scan(&total); err != nil {
		return nil, 0, err
	}
	query := `
		SELECT ` + conferenceColumns + `
		FROM conferences
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.DB.QueryContext(ctx, query, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	conferences := make([]*domain.Conference, 0)
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, 0, err
		}
		conferences = append(conferences, c)
	}
	return conferences, total, rows.Err()
}

func (r *conferenceRepository) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Conference, error) {
	query := `
		SELECT ` + conferenceColumns + `
		FROM conferences
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	conferences := make([]*domain.Conference, 0)
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, err
		}
		conferences = append(conferences, c)
	}
	return conferences, rows.Err()
}

func (r *conferenceRepository) Update(ctx context.Context, id string, title, description *string) (*domain.Conference, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	if title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *title)
		n++
	}
	if description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *description)
		n++
	}
	if n == 1 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE conferences SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, conferenceColumns)
	c, err := scanConference(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConferenceNotFound
		}
		return nil, err
	}
	return c, nil
}

// DeleteWithQuestions runs both deletes in one transaction so a question
// inserted concurrently cannot trip the questions foreign key halfway through.
func (r *conferenceRepository) DeleteWithQuestions(ctx context.Context, id string) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Lock the row first so new questions for it wait until we are done.
	var locked string
	err = tx.QueryRowContext(ctx, `SELECT id FROM conferences WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConferenceNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM questions WHERE conference_id = $1`, id); err != nil {
		return fmt.Errorf("delete questions: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM conferences WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete conference: %w", err)
	}
	return tx.Commit()
}
