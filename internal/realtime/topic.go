// Package realtime implements live question fan-out: a per-conference topic
// broker, the publisher invoked after a question is stored, and the viewer-side
// subscriber that re-fetches the question list on every signal.
package realtime

import "strings"

// TopicPrefix scopes question topics. One topic exists per conference key.
const TopicPrefix = "questions-channel:"

// Topic returns the topic name for a conference key (see domain.Conference.TopicKey).
func Topic(conferenceKey string) string {
	return TopicPrefix + conferenceKey
}

// KeyFromTopic extracts the conference key from a topic name.
// ok is false when topic is not a question topic or the key is empty.
func KeyFromTopic(topic string) (key string, ok bool) {
	key, ok = strings.CutPrefix(topic, TopicPrefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
