package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"conferenceqa/internal/delivery/http/helpers"
	"conferenceqa/internal/delivery/http/middleware"
	"conferenceqa/internal/domain"
)

const maxTitleLen = 200

// CreateConferenceRequest is the request body for POST /conferences.
type CreateConferenceRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// Validate implements Validator.
func (c CreateConferenceRequest) Validate() []string {
	var errs []string
	title := strings.TrimSpace(c.Title)
	if title == "" {
		errs = append(errs, "title is required")
	} else if len(title) > maxTitleLen {
		errs = append(errs, "title must be at most 200 characters")
	}
	return errs
}

// UpdateConferenceRequest is the request body for PATCH /conferences/{conferenceID}. Omitted fields are unchanged.
type UpdateConferenceRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// Validate implements Validator.
func (u UpdateConferenceRequest) Validate() []string {
	var errs []string
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			errs = append(errs, "title cannot be empty")
		} else if len(title) > maxTitleLen {
			errs = append(errs, "title must be at most 200 characters")
		}
	}
	return errs
}

// ConferenceSuccessResponse is the success envelope for single-conference responses.
type ConferenceSuccessResponse struct {
	Data  *domain.Conference `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ConferenceDetailSuccessResponse is the success envelope for GET /conferences/{slug}.
type ConferenceDetailSuccessResponse struct {
	Data  *domain.ConferenceDetail `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// ListConferencesResponse is the data payload for GET /conferences.
type ListConferencesResponse struct {
	Items      []*domain.Conference   `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

type ConferenceController struct {
	Logger  *slog.Logger
	Service domain.ConferenceService
}

func NewConferenceController(logger *slog.Logger, svc domain.ConferenceService) *ConferenceController {
	return &ConferenceController{Logger: logger, Service: svc}
}

// ListConferences godoc
// @Summary List conferences
// @Description Paginated list of all conferences, newest first.
// @Tags conferences
// @Produce json
// @Param page query int false "Page (1-based)" default(1)
// @Param page_size query int false "Page size (max 100)" default(20)
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences [get]
func (c *ConferenceController) ListConferences(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	list, total, err := c.Service.ListConferences(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListConferencesResponse{
		Items:      list,
		Pagination: helpers.NewPaginationMeta(params, total),
	})
}

// CreateConference godoc
// @Summary Create a conference
// @Description Creates a conference owned by the caller. The slug is derived from the title and never changes.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateConferenceRequest true "Conference data"
// @Success 201 {object} controllers.ConferenceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences [post]
func (c *ConferenceController) CreateConference(w http.ResponseWriter, r *http.Request) {
	var req CreateConferenceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	conf, err := c.Service.CreateConference(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, conf)
}

// ListMyConferences godoc
// @Summary List my conferences
// @Description Conferences owned by the authenticated organizer, newest first.
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the conferences"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/mine [get]
func (c *ConferenceController) ListMyConferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	list, err := c.Service.ListMyConferences(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, list)
}

// GetConference godoc
// @Summary Get a conference by slug
// @Description Returns the conference and its questions in creation order. Live updates are available on /conferences/{slug}/live.
// @Tags conferences
// @Produce json
// @Param slug path string true "Conference slug"
// @Success 200 {object} controllers.ConferenceDetailSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{slug} [get]
func (c *ConferenceController) GetConference(w http.ResponseWriter, r *http.Request) {
	detail, err := c.Service.GetConferenceBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, detail)
}

// UpdateConference godoc
// @Summary Update a conference
// @Description Changes title and/or description. Only the owner may update. The slug is unchanged.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conferenceID path string true "Conference ID (UUID)"
// @Param body body UpdateConferenceRequest true "Fields to change"
// @Success 200 {object} controllers.ConferenceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceID} [patch]
func (c *ConferenceController) UpdateConference(w http.ResponseWriter, r *http.Request) {
	conferenceID, ok := requireUUID(w, "conferenceID", r.PathValue("conferenceID"))
	if !ok {
		return
	}
	var req UpdateConferenceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	conf, err := c.Service.UpdateConference(r.Context(), conferenceID, userID, req.Title, req.Description)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, conf)
}

// DeleteConference godoc
// @Summary Delete a conference
// @Description Deletes the conference's questions and then the conference. Only the owner may delete.
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Param conferenceID path string true "Conference ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{conferenceID} [delete]
func (c *ConferenceController) DeleteConference(w http.ResponseWriter, r *http.Request) {
	conferenceID, ok := requireUUID(w, "conferenceID", r.PathValue("conferenceID"))
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteConference(r.Context(), conferenceID, userID); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
