package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"time"

	"conferenceqa/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var errBoom = errors.New("boom")

// fakeConferenceRepo is an in-memory ConferenceRepository for tests.
type fakeConferenceRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Conference
	nextID    int
	createErr error
	deleteErr error
	deleted   []string
	// questions, when set, loses a conference's questions together with the conference.
	questions *fakeQuestionRepo
}

func newFakeConferenceRepo() *fakeConferenceRepo {
	return &fakeConferenceRepo{byID: make(map[string]*domain.Conference), nextID: 1}
}

func (f *fakeConferenceRepo) Create(ctx context.Context, c *domain.Conference) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Slug == c.Slug {
			return domain.ErrDuplicateSlug
		}
	}
	c.ID = fmt.Sprintf("conf-%d", f.nextID)
	f.nextID++
	f.byID[c.ID] = c
	return nil
}

func (f *fakeConferenceRepo) GetByID(ctx context.Context, id string) (*domain.Conference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrConferenceNotFound
}

func (f *fakeConferenceRepo) GetBySlug(ctx context.Context, slug string) (*domain.Conference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, domain.ErrConferenceNotFound
}

func (f *fakeConferenceRepo) sorted(keep func(*domain.Conference) bool) []*domain.Conference {
	var out []*domain.Conference
	for _, c := range f.byID {
		if keep(c) {
			out = append(out, c)
		}
	}
	// CreatedAt DESC to match repo
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (f *fakeConferenceRepo) List(ctx context.Context, params domain.PaginationParams) ([]*domain.Conference, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.sorted(func(*domain.Conference) bool { return true })
	start := min(params.Offset(), len(all))
	end := min(start+params.PageSize, len(all))
	return all[start:end], len(all), nil
}

func (f *fakeConferenceRepo) ListByOwnerID(ctx context.Context, ownerID string) ([]*domain.Conference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(c *domain.Conference) bool { return c.OwnerID == ownerID }), nil
}

func (f *fakeConferenceRepo) Update(ctx context.Context, id string, title, description *string) (*domain.Conference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrConferenceNotFound
	}
	if title != nil {
		c.Title = *title
	}
	if description != nil {
		c.Description = description
	}
	c.UpdatedAt = time.Now()
	return c, nil
}

func (f *fakeConferenceRepo) DeleteWithQuestions(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byID[id]; !ok {
		return domain.ErrConferenceNotFound
	}
	if f.questions != nil {
		f.questions.dropConference(id)
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeQuestionRepo is an in-memory QuestionRepository for tests.
// ops records calls in order so tests can check sequencing against the notifier.
type fakeQuestionRepo struct {
	mu          sync.Mutex
	questions   []*domain.Question
	nextID      int
	createErr   error
	listErr     error
	ops         *[]string
	afterCreate func()
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{nextID: 1}
}

func (f *fakeQuestionRepo) record(op string) {
	if f.ops != nil {
		*f.ops = append(*f.ops, op)
	}
}

func (f *fakeQuestionRepo) Create(ctx context.Context, q *domain.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	q.ID = fmt.Sprintf("q-%d", f.nextID)
	f.nextID++
	f.questions = append(f.questions, q)
	f.record("create:" + q.ID)
	if f.afterCreate != nil {
		f.afterCreate()
	}
	return nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, domain.ErrQuestionNotFound
}

func (f *fakeQuestionRepo) ListByConferenceID(ctx context.Context, conferenceID string) ([]*domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Question
	for _, q := range f.questions {
		if q.ConferenceID == conferenceID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, q := range f.questions {
		if q.ID == id {
			f.questions = slices.Delete(f.questions, i, i+1)
			return nil
		}
	}
	return domain.ErrQuestionNotFound
}

func (f *fakeQuestionRepo) dropConference(conferenceID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.questions = slices.DeleteFunc(f.questions, func(q *domain.Question) bool { return q.ConferenceID == conferenceID })
}

// fakeNotifier records NotifyNewQuestion calls.
type fakeNotifier struct {
	mu      sync.Mutex
	keys    []string
	ctxErrs []error
	err     error
	ops     *[]string
}

func (f *fakeNotifier) NotifyNewQuestion(ctx context.Context, conferenceKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, conferenceKey)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if f.ops != nil {
		*f.ops = append(*f.ops, "notify:"+conferenceKey)
	}
	return f.err
}

func (f *fakeNotifier) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.keys)
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	roles     map[string][]string
	nextID    int
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User), roles: make(map[string][]string), nextID: 1}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) AssignRole(ctx context.Context, userID, roleID string) error {
	f.roles[userID] = append(f.roles[userID], roleID)
	return nil
}

// fakeRoleRepo implements domain.RoleRepository for tests.
type fakeRoleRepo struct {
	byCode    map[string]*domain.Role
	listByUID map[string][]*domain.Role
	getErr    error
}

func newFakeRoleRepo() *fakeRoleRepo {
	return &fakeRoleRepo{
		byCode: map[string]*domain.Role{
			domain.RoleOrganizer: {ID: "role-organizer", Code: domain.RoleOrganizer},
		},
		listByUID: make(map[string][]*domain.Role),
	}
}

func (f *fakeRoleRepo) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if r, ok := f.byCode[code]; ok {
		return r, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRoleRepo) ListByUserID(ctx context.Context, userID string) ([]*domain.Role, error) {
	return f.listByUID[userID], nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) GenerateSalt() (string, error) { return "salt", nil }
func (fakePasswordHasher) Hash(salt, password string) (string, error) {
	return "hash-" + salt + password, nil
}
func (fakePasswordHasher) Compare(hash, salt, password string) error {
	if hash != "hash-"+salt+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer returns a predictable token.
type fakeTokenIssuer struct {
	gotRoles []string
}

func (f *fakeTokenIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	f.gotRoles = roles
	return "token-" + userID, nil
}

// fakeEmailService records welcome messages.
type fakeEmailService struct {
	sent []*domain.WelcomeMessageEmailData
	err  error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.sent = append(f.sent, data)
	return f.err
}
