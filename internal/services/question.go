package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"conferenceqa/internal/domain"
)

type questionService struct {
	conferenceRepo domain.ConferenceRepository
	questionRepo   domain.QuestionRepository
	notifier       domain.QuestionNotifier
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewQuestionService creates a QuestionService. notifier is told about every
// question after it has been stored.
func NewQuestionService(
	conferenceRepo domain.ConferenceRepository,
	questionRepo domain.QuestionRepository,
	notifier domain.QuestionNotifier,
	logger *slog.Logger,
	timeout time.Duration,
) domain.QuestionService {
	return &questionService{
		conferenceRepo: conferenceRepo,
		questionRepo:   questionRepo,
		notifier:       notifier,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *questionService) CreateQuestion(ctx context.Context, conferenceSlug, author, body string) (*domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	author = strings.TrimSpace(author)
	body = strings.TrimSpace(body)
	if author == "" || body == "" {
		return nil, fmt.Errorf("%w: author and body are required", domain.ErrInvalidInput)
	}

	conf, err := s.conferenceRepo.GetBySlug(ctx, strings.TrimSpace(conferenceSlug))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrConferenceNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}

	q := domain.NewQuestion(conf.ID, author, body, time.Now())
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("create question: %w", err)
	}

	// The question is stored; a lost notification only delays viewers until their next refetch.
	// A client hanging up after the insert must not suppress it.
	if err := s.notifier.NotifyNewQuestion(context.WithoutCancel(ctx), conf.TopicKey()); err != nil {
		s.logger.WarnContext(ctx, "new question notification failed",
			"conference_key", conf.TopicKey(), "question_id", q.ID, "error", err)
	}
	return q, nil
}

func (s *questionService) ListQuestions(ctx context.Context, conferenceID string) ([]*domain.Question, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.questionRepo.ListByConferenceID(ctx, conferenceID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if list == nil {
		list = []*domain.Question{}
	}
	return list, nil
}

func (s *questionService) DeleteQuestion(ctx context.Context, questionID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	q, err := s.questionRepo.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrQuestionNotFound
		}
		return fmt.Errorf("get question: %w", err)
	}
	conf, err := s.conferenceRepo.GetByID(ctx, q.ConferenceID)
	if err != nil {
		return fmt.Errorf("get conference: %w", err)
	}
	if conf.OwnerID != userID {
		return domain.ErrForbidden
	}
	if err := s.questionRepo.Delete(ctx, questionID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrQuestionNotFound
		}
		return fmt.Errorf("delete question: %w", err)
	}
	return nil
}
