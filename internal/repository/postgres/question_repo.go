package postgres

import (
	"context"
	"database/sql"
	"errors"

	"conferenceqa/internal/domain"
)

type questionRepository struct {
	DB *sql.DB
}

// NewQuestionRepository returns a domain.QuestionRepository implemented with Postgres.
func NewQuestionRepository(db *sql.DB) domain.QuestionRepository {
	return &questionRepository{DB: db}
}

func (r *questionRepository) Create(ctx context.Context, q *domain.Question) error {
	query := `
		INSERT INTO questions (conference_id, author, body, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, q.ConferenceID, q.Author, q.Body, q.CreatedAt).Scan(&q.ID)
}

func (r *questionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	query := `
		SELECT id, conference_id, author, body, created_at
		FROM questions
		WHERE id = $1
	`
	q := &domain.Question{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&q.ID, &q.ConferenceID, &q.Author, &q.Body, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

func (r *questionRepository) ListByConferenceID(ctx context.Context, conferenceID string) ([]*domain.Question, error) {
	query := `
		SELECT id, conference_id, author, body, created_at
		FROM questions
		WHERE conference_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, conferenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	questions := make([]*domain.Question, 0)
	for rows.Next() {
		q := &domain.Question{}
		if err := rows.Scan(&q.ID, &q.ConferenceID, &q.Author, &q.Body, &q.CreatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *questionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrQuestionNotFound
	}
	return nil
}
