package realtime

import (
	"context"
	"fmt"
	"log/slog"

	"conferenceqa/internal/domain"
)

// TopicPublisher sends an event on a named topic. *Broker implements it.
type TopicPublisher interface {
	Publish(ctx context.Context, topic string, event domain.NotificationEvent) (int, error)
}

// Publisher emits "new-question" notifications on the conference's topic.
type Publisher struct {
	bus    TopicPublisher
	logger *slog.Logger
}

var _ domain.QuestionNotifier = (*Publisher)(nil)

// NewPublisher returns a Publisher sending through bus.
func NewPublisher(bus TopicPublisher, logger *slog.Logger) *Publisher {
	return &Publisher{bus: bus, logger: logger}
}

// NotifyNewQuestion publishes exactly one new-question event for conferenceKey.
// It does not retry; the caller decides what a failure means.
func (p *Publisher) NotifyNewQuestion(ctx context.Context, conferenceKey string) error {
	if conferenceKey == "" {
		return fmt.Errorf("notify new question: empty conference key: %w", domain.ErrInvalidInput)
	}
	topic := Topic(conferenceKey)
	n, err := p.bus.Publish(ctx, topic, domain.NotificationEvent{
		ConferenceKey: conferenceKey,
		Kind:          domain.EventNewQuestion,
	})
	if err != nil {
		return fmt.Errorf("publish on %s: %w", topic, err)
	}
	p.logger.DebugContext(ctx, "published event", "topic", topic, "event", domain.EventNewQuestion, "recipients", n)
	return nil
}
