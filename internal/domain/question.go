package domain

import (
	"context"
	"time"
)

// Question is a single submitted author and text pair tied to one conference.
// swagger:model Question
type Question struct {
	ID           string    `json:"id"`
	ConferenceID string    `json:"conference_id"`
	Author       string    `json:"author"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewQuestion returns a new Question for the given conference. ID is set by the repository on create.
func NewQuestion(conferenceID, author, body string, createdAt time.Time) *Question {
	return &Question{
		ConferenceID: conferenceID,
		Author:       author,
		Body:         body,
		CreatedAt:    createdAt,
	}
}

// QuestionRepository defines the interface for question storage.
type QuestionRepository interface {
	Create(ctx context.Context, q *Question) error
	GetByID(ctx context.Context, id string) (*Question, error)
	// ListByConferenceID returns questions ordered by creation time, oldest first.
	ListByConferenceID(ctx context.Context, conferenceID string) ([]*Question, error)
	Delete(ctx context.Context, id string) error
}

// QuestionLister loads the full question list of a conference.
// Live subscribers call it after every notification.
type QuestionLister interface {
	ListQuestions(ctx context.Context, conferenceID string) ([]*Question, error)
}

// QuestionService defines question submission, listing and moderation.
type QuestionService interface {
	QuestionLister
	// CreateQuestion resolves the conference by slug, persists the question and then
	// notifies live viewers of that conference. Returns ErrConferenceNotFound when the slug is unknown.
	CreateQuestion(ctx context.Context, conferenceSlug, author, body string) (*Question, error)
	// DeleteQuestion removes a question. The caller must own the question's conference.
	// No live notification is sent for deletions.
	DeleteQuestion(ctx context.Context, questionID, userID string) error
}
