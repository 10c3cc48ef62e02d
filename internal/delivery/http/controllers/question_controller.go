package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"conferenceqa/internal/delivery/http/helpers"
	"conferenceqa/internal/delivery/http/middleware"
	"conferenceqa/internal/domain"
)

const (
	maxAuthorLen = 100
	maxBodyLen   = 2000
)

// CreateQuestionRequest is the request body for POST /questions.
type CreateQuestionRequest struct {
	Conference string `json:"conference"`
	Author     string `json:"author"`
	Body       string `json:"body"`
}

// Validate implements Validator.
func (c CreateQuestionRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Conference) == "" {
		errs = append(errs, "conference is required")
	}
	author := strings.TrimSpace(c.Author)
	if author == "" {
		errs = append(errs, "author is required")
	} else if len(author) > maxAuthorLen {
		errs = append(errs, "author must be at most 100 characters")
	}
	body := strings.TrimSpace(c.Body)
	if body == "" {
		errs = append(errs, "body is required")
	} else if len(body) > maxBodyLen {
		errs = append(errs, "body must be at most 2000 characters")
	}
	return errs
}

// QuestionSuccessResponse is the success envelope for POST /questions (201).
type QuestionSuccessResponse struct {
	Data  *domain.Question  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// QuestionListSuccessResponse is the success envelope for GET /questions.
type QuestionListSuccessResponse struct {
	Data  []*domain.Question `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

type QuestionController struct {
	Logger  *slog.Logger
	Service domain.QuestionService
}

func NewQuestionController(logger *slog.Logger, svc domain.QuestionService) *QuestionController {
	return &QuestionController{Logger: logger, Service: svc}
}

// CreateQuestion godoc
// @Summary Submit a question
// @Description Anyone may submit a question to a conference by slug. Live viewers of that conference are notified.
// @Tags questions
// @Accept json
// @Produce json
// @Param body body CreateQuestionRequest true "Conference slug, author and question text"
// @Success 201 {object} controllers.QuestionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /questions [post]
func (c *QuestionController) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req CreateQuestionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	q, err := c.Service.CreateQuestion(r.Context(), req.Conference, req.Author, req.Body)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, q)
}

// ListQuestions godoc
// @Summary List questions of a conference
// @Description Full question list of one conference in creation order. Live viewers call this after every notification.
// @Tags questions
// @Produce json
// @Param conference_id query string true "Conference ID (UUID)"
// @Success 200 {object} controllers.QuestionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /questions [get]
func (c *QuestionController) ListQuestions(w http.ResponseWriter, r *http.Request) {
	conferenceID, ok := requireUUID(w, "conference_id", r.URL.Query().Get("conference_id"))
	if !ok {
		return
	}
	list, err := c.Service.ListQuestions(r.Context(), conferenceID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Description Removes a question. Only the owner of the question's conference may delete. Live viewers are not notified.
// @Tags questions
// @Produce json
// @Security BearerAuth
// @Param questionID path string true "Question ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /questions/{questionID} [delete]
func (c *QuestionController) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, ok := requireUUID(w, "questionID", r.PathValue("questionID"))
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteQuestion(r.Context(), questionID, userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
