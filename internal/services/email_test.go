package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferenceqa/internal/domain"
)

type stubRenderer struct{ err error }

func (r stubRenderer) Render(name string, data any) (string, string, string, error) {
	if r.err != nil {
		return "", "", "", r.err
	}
	return "subject:" + name, "<p>html</p>", "text", nil
}

type recordingMailer struct {
	to, subject string
	err         error
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, html, text string) error {
	m.to, m.subject = to, subject
	return m.err
}

func TestEmailService_SendWelcomeMessage(t *testing.T) {
	ctx := context.Background()
	data := &domain.WelcomeMessageEmailData{Email: "a@example.com", Name: "A"}

	t.Run("renders and sends", func(t *testing.T) {
		m := &recordingMailer{}
		svc := NewEmailService(m, stubRenderer{}, testLogger)
		require.NoError(t, svc.SendWelcomeMessage(ctx, data))
		assert.Equal(t, "a@example.com", m.to)
		assert.Equal(t, "subject:welcome", m.subject)
	})

	t.Run("nil data", func(t *testing.T) {
		svc := NewEmailService(&recordingMailer{}, stubRenderer{}, testLogger)
		assert.Error(t, svc.SendWelcomeMessage(ctx, nil))
	})

	t.Run("render error", func(t *testing.T) {
		m := &recordingMailer{}
		svc := NewEmailService(m, stubRenderer{err: errBoom}, testLogger)
		assert.ErrorIs(t, svc.SendWelcomeMessage(ctx, data), errBoom)
		assert.Empty(t, m.to)
	})

	t.Run("send error", func(t *testing.T) {
		svc := NewEmailService(&recordingMailer{err: errBoom}, stubRenderer{}, testLogger)
		assert.ErrorIs(t, svc.SendWelcomeMessage(ctx, data), errBoom)
	})
}
