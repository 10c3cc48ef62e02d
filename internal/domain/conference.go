package domain

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
)

// ErrDuplicateSlug is returned when a conference slug is already taken.
var ErrDuplicateSlug = errors.New("conference slug already in use")

// Conference is a named Q&A session that owns a set of questions.
// swagger:model Conference
type Conference struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewConference returns a new Conference with the slug derived from title. ID is set by the repository on create.
func NewConference(title string, description *string, ownerID string, createdAt, updatedAt time.Time) *Conference {
	return &Conference{
		Slug:        Slugify(title),
		Title:       strings.TrimSpace(title),
		Description: description,
		OwnerID:     ownerID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

// TopicKey is the key live question notifications for this conference are published and subscribed under.
// Publishers and subscribers must both derive it from here.
func (c *Conference) TopicKey() string {
	return c.Slug
}

var (
	slugSpaceRegexp   = regexp.MustCompile(`\s+`)
	slugInvalidRegexp = regexp.MustCompile(`[^a-z0-9_-]`)
)

// Slugify derives a URL-safe slug from a conference title: lowercased, whitespace runs
// replaced with "-", anything outside [a-z0-9_-] dropped.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugSpaceRegexp.ReplaceAllString(s, "-")
	return slugInvalidRegexp.ReplaceAllString(s, "")
}

// reservedSlugs collide with fixed routes under /conferences/.
var reservedSlugs = map[string]struct{}{
	"mine": {},
}

// IsReservedSlug reports whether slug is taken by a fixed route and cannot name a conference.
func IsReservedSlug(slug string) bool {
	_, ok := reservedSlugs[slug]
	return ok
}

// ConferenceDetail bundles a conference with its questions in creation order.
// swagger:model ConferenceDetail
type ConferenceDetail struct {
	Conference *Conference `json:"conference"`
	Questions  []*Question `json:"questions"`
}

// ConferenceRepository defines the interface for conference storage.
type ConferenceRepository interface {
	Create(ctx context.Context, c *Conference) error
	GetByID(ctx context.Context, id string) (*Conference, error)
	GetBySlug(ctx context.Context, slug string) (*Conference, error)
	List(ctx context.Context, params PaginationParams) ([]*Conference, int, error)
	ListByOwnerID(ctx context.Context, ownerID string) ([]*Conference, error)
	Update(ctx context.Context, id string, title, description *string) (*Conference, error)
	// DeleteWithQuestions removes the conference and all of its questions atomically.
	DeleteWithQuestions(ctx context.Context, id string) error
}

// ConferenceService defines organizer-facing conference operations.
type ConferenceService interface {
	CreateConference(ctx context.Context, ownerID, title string, description *string) (*Conference, error)
	ListConferences(ctx context.Context, params PaginationParams) ([]*Conference, int, error)
	ListMyConferences(ctx context.Context, ownerID string) ([]*Conference, error)
	// GetConferenceBySlug returns the conference and its questions in creation order.
	GetConferenceBySlug(ctx context.Context, slug string) (*ConferenceDetail, error)
	// UpdateConference changes title and/or description. The slug is never regenerated.
	UpdateConference(ctx context.Context, conferenceID, ownerID string, title, description *string) (*Conference, error)
	// DeleteConference removes the conference's questions and then the conference. Owner only.
	DeleteConference(ctx context.Context, conferenceID, ownerID string) error
}
