package realtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"conferenceqa/internal/domain"
)

// testLogger discards output so tests don't assert on logs.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// fakeQuestionStore is an in-memory QuestionLister that counts list calls.
type fakeQuestionStore struct {
	mu     sync.Mutex
	byConf map[string][]*domain.Question
	nextID int
	calls  atomic.Int64
	err    error
}

func newFakeQuestionStore() *fakeQuestionStore {
	return &fakeQuestionStore{byConf: make(map[string][]*domain.Question)}
}

func (f *fakeQuestionStore) add(conferenceID, author, body string) *domain.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	q := domain.NewQuestion(conferenceID, author, body, time.Date(2025, 1, 1, 0, 0, f.nextID, 0, time.UTC))
	q.ID = fmt.Sprintf("q-%d", f.nextID)
	f.byConf[conferenceID] = append(f.byConf[conferenceID], q)
	return q
}

func (f *fakeQuestionStore) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeQuestionStore) ListQuestions(ctx context.Context, conferenceID string) ([]*domain.Question, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]*domain.Question, len(f.byConf[conferenceID]))
	copy(out, f.byConf[conferenceID])
	return out, nil
}

func (f *fakeQuestionStore) list(conferenceID string) []*domain.Question {
	qs, _ := f.ListQuestions(context.Background(), conferenceID)
	return qs
}

// chanSource is an EventSource whose events are pushed by the test.
type chanSource struct {
	mu      sync.Mutex
	ch      chan domain.NotificationEvent
	topics  []string
	unbound atomic.Int64
	err     error
}

func newChanSource() *chanSource {
	return &chanSource{ch: make(chan domain.NotificationEvent, 8)}
}

func (c *chanSource) Subscribe(ctx context.Context, topic string) (<-chan domain.NotificationEvent, func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, nil, c.err
	}
	c.topics = append(c.topics, topic)
	return c.ch, func() { c.unbound.Add(1) }, nil
}

var errBoom = errors.New("boom")
