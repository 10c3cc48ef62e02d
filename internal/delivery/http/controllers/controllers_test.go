package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"conferenceqa/internal/delivery/http/helpers"
	"conferenceqa/internal/domain"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	confUUID     = "4f6c2a4e-8a3b-4c1d-9e2f-0a1b2c3d4e5f"
	questionUUID = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

// decodeEnvelope decodes the response envelope and, when dst is non-nil, re-decodes data into it.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dst any) helpers.APIResponse {
	t.Helper()
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	if dst != nil && envelope.Data != nil {
		raw, err := json.Marshal(envelope.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, dst))
	}
	return envelope
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	signUpUser  *domain.User
	signUpErr   error
	loginToken  string
	loginErr    error
	getByIDUser *domain.User
	getByIDErr  error
	lastEmail   string
	lastName    string
}

func (f *fakeAuthService) SignUp(ctx context.Context, email, password, name string) (*domain.User, error) {
	f.lastEmail, f.lastName = email, name
	return f.signUpUser, f.signUpErr
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, error) {
	f.lastEmail = email
	return f.loginToken, f.loginErr
}

func (f *fakeAuthService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return f.getByIDUser, f.getByIDErr
}

// fakeConferenceService implements domain.ConferenceService for handler tests.
type fakeConferenceService struct {
	created      *domain.Conference
	createErr    error
	list         []*domain.Conference
	total        int
	listErr      error
	detail       *domain.ConferenceDetail
	detailErr    error
	updated      *domain.Conference
	updateErr    error
	deleteErr    error
	lastOwnerID  string
	lastTitle    string
	lastParams   domain.PaginationParams
	lastSlug     string
	lastConfID   string
	lastUpdTitle *string
	deleteCalled bool
}

func (f *fakeConferenceService) CreateConference(ctx context.Context, ownerID, title string, description *string) (*domain.Conference, error) {
	f.lastOwnerID, f.lastTitle = ownerID, title
	return f.created, f.createErr
}

func (f *fakeConferenceService) ListConferences(ctx context.Context, params domain.PaginationParams) ([]*domain.Conference, int, error) {
	f.lastParams = params
	return f.list, f.total, f.listErr
}

func (f *fakeConferenceService) ListMyConferences(ctx context.Context, ownerID string) ([]*domain.Conference, error) {
	f.lastOwnerID = ownerID
	return f.list, f.listErr
}

func (f *fakeConferenceService) GetConferenceBySlug(ctx context.Context, slug string) (*domain.ConferenceDetail, error) {
	f.lastSlug = slug
	return f.detail, f.detailErr
}

func (f *fakeConferenceService) UpdateConference(ctx context.Context, conferenceID, ownerID string, title, description *string) (*domain.Conference, error) {
	f.lastConfID, f.lastOwnerID, f.lastUpdTitle = conferenceID, ownerID, title
	return f.updated, f.updateErr
}

func (f *fakeConferenceService) DeleteConference(ctx context.Context, conferenceID, ownerID string) error {
	f.lastConfID, f.lastOwnerID = conferenceID, ownerID
	f.deleteCalled = true
	return f.deleteErr
}

// fakeQuestionService implements domain.QuestionService for handler tests.
type fakeQuestionService struct {
	created      *domain.Question
	createErr    error
	list         []*domain.Question
	listErr      error
	deleteErr    error
	lastSlug     string
	lastAuthor   string
	lastBody     string
	lastConfID   string
	lastQID      string
	lastUserID   string
	deleteCalled bool
}

func (f *fakeQuestionService) CreateQuestion(ctx context.Context, conferenceSlug, author, body string) (*domain.Question, error) {
	f.lastSlug, f.lastAuthor, f.lastBody = conferenceSlug, author, body
	return f.created, f.createErr
}

func (f *fakeQuestionService) ListQuestions(ctx context.Context, conferenceID string) ([]*domain.Question, error) {
	f.lastConfID = conferenceID
	return f.list, f.listErr
}

func (f *fakeQuestionService) DeleteQuestion(ctx context.Context, questionID, userID string) error {
	f.lastQID, f.lastUserID = questionID, userID
	f.deleteCalled = true
	return f.deleteErr
}
