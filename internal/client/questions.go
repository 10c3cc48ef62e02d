// Package client talks to a running conference Q&A server: it fetches question
// lists over HTTP and follows a conference's live topic over WebSocket.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"conferenceqa/internal/domain"
)

// APIError is a non-2xx response decoded from the server's error envelope.
// It matches domain.ErrNotFound with errors.Is when the status is 404.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest:
		return domain.ErrInvalidInput
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	}
	return nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// QuestionsClient reads conferences and questions from the HTTP API.
// It implements domain.QuestionLister so a realtime.Subscriber can re-fetch through it.
type QuestionsClient struct {
	baseURL string
	client  *http.Client
}

// NewQuestionsClient returns a client for the server at baseURL (e.g. http://localhost:8080).
func NewQuestionsClient(baseURL string, client *http.Client) *QuestionsClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &QuestionsClient{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// GetConference returns the conference with the given slug and its questions.
func (c *QuestionsClient) GetConference(ctx context.Context, slug string) (*domain.ConferenceDetail, error) {
	var detail domain.ConferenceDetail
	if err := c.get(ctx, "/conferences/"+url.PathEscape(slug), nil, &detail); err != nil {
		return nil, fmt.Errorf("get conference %q: %w", slug, err)
	}
	if detail.Conference == nil {
		return nil, fmt.Errorf("get conference %q: empty response", slug)
	}
	return &detail, nil
}

// ListQuestions returns the questions of a conference in creation order.
func (c *QuestionsClient) ListQuestions(ctx context.Context, conferenceID string) ([]*domain.Question, error) {
	var list []*domain.Question
	q := url.Values{"conference_id": {conferenceID}}
	if err := c.get(ctx, "/questions", q, &list); err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if list == nil {
		list = []*domain.Question{}
	}
	return list, nil
}

func (c *QuestionsClient) get(ctx context.Context, path string, query url.Values, dest any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
