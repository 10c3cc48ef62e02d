package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"conferenceqa/internal/domain"
)

type conferenceService struct {
	conferenceRepo domain.ConferenceRepository
	questionRepo   domain.QuestionRepository
	contextTimeout time.Duration
}

// NewConferenceService creates a ConferenceService backed by the given repositories.
func NewConferenceService(conferenceRepo domain.ConferenceRepository, questionRepo domain.QuestionRepository, timeout time.Duration) domain.ConferenceService {
	return &conferenceService{
		conferenceRepo: conferenceRepo,
		questionRepo:   questionRepo,
		contextTimeout: timeout,
	}
}

func (s *conferenceService) CreateConference(ctx context.Context, ownerID, title string, description *string) (*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ownerID == "" {
		return nil, fmt.Errorf("%w: conference owner is required", domain.ErrInvalidInput)
	}
	now := time.Now()
	conf := domain.NewConference(title, description, ownerID, now, now)
	if conf.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	if conf.Slug == "" {
		return nil, fmt.Errorf("%w: title must contain at least one letter or digit", domain.ErrInvalidInput)
	}
	if domain.IsReservedSlug(conf.Slug) {
		return nil, fmt.Errorf("%w: title %q is reserved", domain.ErrInvalidInput, conf.Title)
	}
	if err := s.conferenceRepo.Create(ctx, conf); err != nil {
		if errors.Is(err, domain.ErrDuplicateSlug) {
			return nil, err
		}
		return nil, fmt.Errorf("create conference: %w", err)
	}
	return conf, nil
}

func (s *conferenceService) ListConferences(ctx context.Context, params domain.PaginationParams) ([]*domain.Conference, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, total, err := s.conferenceRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("list conferences: %w", err)
	}
	if list == nil {
		list = []*domain.Conference{}
	}
	return list, total, nil
}

func (s *conferenceService) ListMyConferences(ctx context.Context, ownerID string) ([]*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	list, err := s.conferenceRepo.ListByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list conferences by owner: %w", err)
	}
	if list == nil {
		list = []*domain.Conference{}
	}
	return list, nil
}

func (s *conferenceService) GetConferenceBySlug(ctx context.Context, slug string) (*domain.ConferenceDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.ErrConferenceNotFound
	}
	conf, err := s.conferenceRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrConferenceNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	questions, err := s.questionRepo.ListByConferenceID(ctx, conf.ID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if questions == nil {
		questions = []*domain.Question{}
	}
	return &domain.ConferenceDetail{Conference: conf, Questions: questions}, nil
}

func (s *conferenceService) UpdateConference(ctx context.Context, conferenceID, ownerID string, title, description *string) (*domain.Conference, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedConference(ctx, conferenceID, ownerID); err != nil {
		return nil, err
	}
	if title != nil {
		t := strings.TrimSpace(*title)
		if t == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		title = &t
	}
	conf, err := s.conferenceRepo.Update(ctx, conferenceID, title, description)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrConferenceNotFound
		}
		return nil, fmt.Errorf("update conference: %w", err)
	}
	return conf, nil
}

func (s *conferenceService) DeleteConference(ctx context.Context, conferenceID, ownerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if _, err := s.ownedConference(ctx, conferenceID, ownerID); err != nil {
		return err
	}
	if err := s.conferenceRepo.DeleteWithQuestions(ctx, conferenceID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrConferenceNotFound
		}
		return fmt.Errorf("delete conference: %w", err)
	}
	return nil
}

// ownedConference loads the conference and checks that ownerID owns it.
func (s *conferenceService) ownedConference(ctx context.Context, conferenceID, ownerID string) (*domain.Conference, error) {
	conf, err := s.conferenceRepo.GetByID(ctx, conferenceID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrConferenceNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	if conf.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return conf, nil
}
