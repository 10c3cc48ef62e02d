package postgres

import (
	"context"
	"database/sql"
	"errors"

	"conferenceqa/internal/db"
	"conferenceqa/internal/domain"
)

const userSelect = `SELECT id, email, password_hash, salt, name, created_at, updated_at FROM users`

type userRepository struct {
	DB *sql.DB
}

// NewUserRepository returns a domain.UserRepository implemented with Postgres.
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Salt, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts u and sets u.ID. A taken email yields domain.ErrDuplicateEmail.
func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, salt, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		u.Email, u.PasswordHash, u.Salt, u.Name, u.CreatedAt, u.UpdatedAt,
	).Scan(&u.ID)
	if db.IsUniqueViolation(err, "users_email_key") {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, userSelect+` WHERE email = $1`, email))
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, userSelect+` WHERE id = $1`, id))
}

// AssignRole is idempotent.
func (r *userRepository) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2) ON CONFLICT (user_id, role_id) DO NOTHING`,
		userID, roleID)
	return err
}
