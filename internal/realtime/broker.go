package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"conferenceqa/internal/domain"
)

// ErrBrokerClosed is returned by Publish and Subscribe after Close.
var ErrBrokerClosed = errors.New("realtime: broker closed")

// DefaultBufferSize is the per-subscriber event buffer depth.
const DefaultBufferSize = 16

// Broker is an in-process topic fan-out. Delivery is best effort: a subscriber
// whose buffer is full misses the event.
type Broker struct {
	logger  *slog.Logger
	bufSize int

	mu     sync.RWMutex
	topics map[string]map[*subscription]struct{}
	closed bool
}

type subscription struct {
	topic string
	ch    chan domain.NotificationEvent
	once  sync.Once
}

var _ domain.EventSource = (*Broker)(nil)

// NewBroker returns an empty broker. bufSize <= 0 uses DefaultBufferSize.
func NewBroker(logger *slog.Logger, bufSize int) *Broker {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	return &Broker{
		logger:  logger,
		bufSize: bufSize,
		topics:  make(map[string]map[*subscription]struct{}),
	}
}

// Subscribe binds a new subscriber to topic. The subscription ends when cancel
// is called or ctx is done; either way the events channel is closed.
func (b *Broker) Subscribe(ctx context.Context, topic string) (<-chan domain.NotificationEvent, func(), error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, nil, ErrBrokerClosed
	}
	sub := &subscription{topic: topic, ch: make(chan domain.NotificationEvent, b.bufSize)}
	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[*subscription]struct{})
		b.topics[topic] = subs
	}
	subs[sub] = struct{}{}
	b.mu.Unlock()

	stop := context.AfterFunc(ctx, func() { b.remove(sub) })
	cancel := func() {
		stop()
		b.remove(sub)
	}
	return sub.ch, cancel, nil
}

func (b *Broker) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if subs, ok := b.topics[sub.topic]; ok {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(b.topics, sub.topic)
		}
	}
	sub.once.Do(func() { close(sub.ch) })
}

// Publish delivers event to every current subscriber of topic without blocking
// and returns how many subscribers received it.
func (b *Broker) Publish(ctx context.Context, topic string, event domain.NotificationEvent) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0, ErrBrokerClosed
	}
	delivered := 0
	for sub := range b.topics[topic] {
		select {
		case sub.ch <- event:
			delivered++
		default:
			b.logger.WarnContext(ctx, "dropping event for slow subscriber", "topic", topic, "event", event.Kind)
		}
	}
	return delivered, nil
}

// SubscriberCount returns the number of subscribers currently bound to topic.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Close ends every subscription and rejects further use.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for topic, subs := range b.topics {
		for sub := range subs {
			sub.once.Do(func() { close(sub.ch) })
		}
		delete(b.topics, topic)
	}
}
