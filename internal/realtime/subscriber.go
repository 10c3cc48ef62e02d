package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"conferenceqa/internal/domain"
)

// State is the lifecycle state of a Subscriber.
type State int

const (
	StateUnsubscribed State = iota
	StateSubscribed
)

func (s State) String() string {
	switch s {
	case StateSubscribed:
		return "subscribed"
	default:
		return "unsubscribed"
	}
}

// Subscriber keeps one viewer's copy of a conference's question list in sync.
// Every notification triggers a full re-fetch that replaces the local list, so
// duplicate or reordered notifications converge to the same state.
type Subscriber struct {
	source   domain.EventSource
	lister   domain.QuestionLister
	logger   *slog.Logger
	onChange func([]*domain.Question)

	// lifecycle serializes Subscribe and Unsubscribe.
	lifecycle sync.Mutex

	mu           sync.Mutex
	state        State
	key          string
	conferenceID string
	questions    []*domain.Question
	stop         context.CancelFunc
	unbind       func()
	done         chan struct{}
}

// SubscriberOption configures a Subscriber.
type SubscriberOption func(*Subscriber)

// WithOnChange registers fn to be called with a copy of the list after every successful re-fetch.
// fn runs on its own goroutine, one call at a time per subscription, so it may call
// Subscribe or Unsubscribe. Snapshots it has not consumed yet are replaced by newer ones.
func WithOnChange(fn func([]*domain.Question)) SubscriberOption {
	return func(s *Subscriber) { s.onChange = fn }
}

// NewSubscriber returns an unsubscribed Subscriber.
func NewSubscriber(source domain.EventSource, lister domain.QuestionLister, logger *slog.Logger, opts ...SubscriberOption) *Subscriber {
	s := &Subscriber{
		source: source,
		lister: lister,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe binds to the conference's topic and seeds the local list with initial.
// Subscribing to the key already bound is a no-op; a different key unbinds the old one first.
func (s *Subscriber) Subscribe(ctx context.Context, conferenceKey, conferenceID string, initial []*domain.Question) error {
	if conferenceKey == "" || conferenceID == "" {
		return fmt.Errorf("subscribe: conference key and id are required: %w", domain.ErrInvalidInput)
	}
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	same := s.state == StateSubscribed && s.key == conferenceKey && s.conferenceID == conferenceID
	s.mu.Unlock()
	if same {
		return nil
	}
	s.unsubscribe()

	loopCtx, stop := context.WithCancel(ctx)
	events, unbind, err := s.source.Subscribe(loopCtx, Topic(conferenceKey))
	if err != nil {
		stop()
		return fmt.Errorf("subscribe %s: %w", Topic(conferenceKey), err)
	}
	done := make(chan struct{})

	s.mu.Lock()
	s.state = StateSubscribed
	s.key = conferenceKey
	s.conferenceID = conferenceID
	s.questions = slices.Clone(initial)
	s.stop = stop
	s.unbind = unbind
	s.done = done
	s.mu.Unlock()

	var changes chan []*domain.Question
	if s.onChange != nil {
		changes = make(chan []*domain.Question, 1)
		go s.notify(changes, done)
	}

	s.logger.DebugContext(ctx, "subscribed", "topic", Topic(conferenceKey))
	go s.run(loopCtx, events, conferenceKey, conferenceID, done, changes)
	return nil
}

// Unsubscribe unbinds from the topic and waits for the event loop to exit.
// No re-fetch is issued after it returns.
func (s *Subscriber) Unsubscribe() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	s.unsubscribe()
}

func (s *Subscriber) unsubscribe() {
	s.mu.Lock()
	if s.state != StateSubscribed {
		s.mu.Unlock()
		return
	}
	done := s.done
	stop, unbind, key := s.resetLocked()
	s.mu.Unlock()

	stop()
	unbind()
	<-done
	s.logger.Debug("unsubscribed", "topic", Topic(key))
}

// detach returns the subscriber to UNSUBSCRIBED when the loop of generation gen
// ends on its own: the context was cancelled or the source closed its channel.
func (s *Subscriber) detach(gen chan struct{}) {
	s.mu.Lock()
	if s.state != StateSubscribed || s.done != gen {
		s.mu.Unlock()
		return
	}
	stop, unbind, key := s.resetLocked()
	s.mu.Unlock()

	stop()
	unbind()
	s.logger.Debug("subscription ended", "topic", Topic(key))
}

// resetLocked clears the binding and hands back what is needed to release it.
// s.mu must be held.
func (s *Subscriber) resetLocked() (stop context.CancelFunc, unbind func(), key string) {
	stop, unbind, key = s.stop, s.unbind, s.key
	s.state = StateUnsubscribed
	s.key = ""
	s.conferenceID = ""
	s.stop = nil
	s.unbind = nil
	s.done = nil
	return stop, unbind, key
}

// State returns the current lifecycle state.
func (s *Subscriber) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Questions returns a copy of the local question list.
func (s *Subscriber) Questions() []*domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.questions)
}

func (s *Subscriber) run(ctx context.Context, events <-chan domain.NotificationEvent, key, conferenceID string, done chan struct{}, changes chan []*domain.Question) {
	defer close(done)
	defer s.detach(done)
	if changes != nil {
		defer close(changes)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !s.wants(ev, key) {
				continue
			}
			closed := drain(events)
			s.refresh(ctx, conferenceID, done, changes)
			if closed {
				return
			}
		}
	}
}

func (s *Subscriber) wants(ev domain.NotificationEvent, key string) bool {
	if ev.ConferenceKey != "" && ev.ConferenceKey != key {
		return false
	}
	return ev.Kind == domain.EventNewQuestion || ev.Kind == domain.EventReconnected
}

// drain discards events already queued; one re-fetch covers them all.
// It reports whether the channel was closed.
func drain(events <-chan domain.NotificationEvent) bool {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return true
			}
		default:
			return false
		}
	}
}

func (s *Subscriber) refresh(ctx context.Context, conferenceID string, gen chan struct{}, changes chan []*domain.Question) {
	questions, err := s.lister.ListQuestions(ctx, conferenceID)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.WarnContext(ctx, "refetch questions failed", "conference_id", conferenceID, "err", err)
		}
		return
	}
	s.mu.Lock()
	if s.state != StateSubscribed || s.done != gen {
		s.mu.Unlock()
		return
	}
	s.questions = slices.Clone(questions)
	s.mu.Unlock()

	if changes != nil {
		offer(changes, slices.Clone(questions))
	}
}

// offer replaces any pending snapshot with qs without blocking the loop.
func offer(changes chan []*domain.Question, qs []*domain.Question) {
	for {
		select {
		case changes <- qs:
			return
		default:
		}
		select {
		case <-changes:
		default:
		}
	}
}

func (s *Subscriber) notify(changes <-chan []*domain.Question, gen chan struct{}) {
	for qs := range changes {
		s.mu.Lock()
		current := s.done == gen
		s.mu.Unlock()
		if current {
			s.onChange(qs)
		}
	}
}
