package domain

import "context"

// EventKind tags a live notification.
type EventKind string

const (
	// EventNewQuestion signals that a conference's question list gained an entry.
	EventNewQuestion EventKind = "new-question"
	// EventReconnected is emitted by remote event sources after a dropped
	// connection was re-established; events may have been missed meanwhile.
	EventReconnected EventKind = "reconnected"
)

// NotificationEvent is an ephemeral live message. It carries no question payload:
// receivers re-fetch the list.
type NotificationEvent struct {
	ConferenceKey string    `json:"conference_key"`
	Kind          EventKind `json:"event"`
}

// QuestionNotifier publishes live notifications about a conference's questions.
type QuestionNotifier interface {
	NotifyNewQuestion(ctx context.Context, conferenceKey string) error
}

// EventSource delivers notifications published on a topic. The returned cancel
// func unbinds the subscription and closes the channel; it is safe to call more than once.
type EventSource interface {
	Subscribe(ctx context.Context, topic string) (events <-chan NotificationEvent, cancel func(), err error)
}
