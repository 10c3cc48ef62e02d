package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conferenceqa/internal/domain"
)

func TestConferenceService_CreateConference(t *testing.T) {
	desc := "talks"
	tests := []struct {
		name     string
		ownerID  string
		title    string
		wantSlug string
		errIs    error
	}{
		{name: "slug from title", ownerID: "user-1", title: "KX 2025", wantSlug: "kx-2025"},
		{name: "trims and collapses whitespace", ownerID: "user-1", title: "  Go   Days ", wantSlug: "go-days"},
		{name: "empty title", ownerID: "user-1", title: "   ", errIs: domain.ErrInvalidInput},
		{name: "title without slug characters", ownerID: "user-1", title: "!!!", errIs: domain.ErrInvalidInput},
		{name: "missing owner", title: "KX", errIs: domain.ErrInvalidInput},
		{name: "slug taken by a fixed route", ownerID: "user-1", title: "Mine", errIs: domain.ErrInvalidInput},
		{name: "reserved word inside a longer slug", ownerID: "user-1", title: "Mine 2025", wantSlug: "mine-2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewConferenceService(newFakeConferenceRepo(), newFakeQuestionRepo(), time.Second)
			c, err := svc.CreateConference(context.Background(), tt.ownerID, tt.title, &desc)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSlug, c.Slug)
			assert.Equal(t, tt.wantSlug, c.TopicKey())
			assert.Equal(t, tt.ownerID, c.OwnerID)
			assert.NotEmpty(t, c.ID)
		})
	}
}

func TestConferenceService_CreateConference_DuplicateSlug(t *testing.T) {
	svc := NewConferenceService(newFakeConferenceRepo(), newFakeQuestionRepo(), time.Second)
	_, err := svc.CreateConference(context.Background(), "user-1", "KX 2025", nil)
	require.NoError(t, err)
	_, err = svc.CreateConference(context.Background(), "user-2", "kx 2025", nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateSlug)
}

func TestConferenceService_GetConferenceBySlug(t *testing.T) {
	ctx := context.Background()
	confRepo := newFakeConferenceRepo()
	qRepo := newFakeQuestionRepo()
	svc := NewConferenceService(confRepo, qRepo, time.Second)

	conf, err := svc.CreateConference(ctx, "user-1", "KX 2025", nil)
	require.NoError(t, err)
	require.NoError(t, qRepo.Create(ctx, domain.NewQuestion(conf.ID, "ann", "first", time.Now())))
	require.NoError(t, qRepo.Create(ctx, domain.NewQuestion(conf.ID, "bob", "second", time.Now())))

	t.Run("with questions in order", func(t *testing.T) {
		detail, err := svc.GetConferenceBySlug(ctx, "kx-2025")
		require.NoError(t, err)
		assert.Equal(t, conf.ID, detail.Conference.ID)
		require.Len(t, detail.Questions, 2)
		assert.Equal(t, "first", detail.Questions[0].Body)
		assert.Equal(t, "second", detail.Questions[1].Body)
	})

	t.Run("empty conference returns empty list", func(t *testing.T) {
		_, err := svc.CreateConference(ctx, "user-1", "Empty", nil)
		require.NoError(t, err)
		detail, err := svc.GetConferenceBySlug(ctx, "empty")
		require.NoError(t, err)
		assert.NotNil(t, detail.Questions)
		assert.Empty(t, detail.Questions)
	})

	t.Run("unknown slug", func(t *testing.T) {
		_, err := svc.GetConferenceBySlug(ctx, "nope")
		assert.ErrorIs(t, err, domain.ErrConferenceNotFound)
	})
}

func TestConferenceService_ListConferences(t *testing.T) {
	ctx := context.Background()
	confRepo := newFakeConferenceRepo()
	svc := NewConferenceService(confRepo, newFakeQuestionRepo(), time.Second)
	for i, title := range []string{"a", "b", "c"} {
		c := domain.NewConference(title, nil, "user-1", time.Unix(int64(i), 0), time.Unix(int64(i), 0))
		require.NoError(t, confRepo.Create(ctx, c))
	}

	list, total, err := svc.ListConferences(ctx, domain.PaginationParams{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].Slug)

	mine, err := svc.ListMyConferences(ctx, "user-2")
	require.NoError(t, err)
	assert.NotNil(t, mine)
	assert.Empty(t, mine)
}

func TestConferenceService_UpdateConference(t *testing.T) {
	ctx := context.Background()
	svc := NewConferenceService(newFakeConferenceRepo(), newFakeQuestionRepo(), time.Second)
	conf, err := svc.CreateConference(ctx, "owner", "KX 2025", nil)
	require.NoError(t, err)

	newTitle := "Kotlin X 2025"
	t.Run("owner keeps slug", func(t *testing.T) {
		got, err := svc.UpdateConference(ctx, conf.ID, "owner", &newTitle, nil)
		require.NoError(t, err)
		assert.Equal(t, newTitle, got.Title)
		assert.Equal(t, "kx-2025", got.Slug)
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		_, err := svc.UpdateConference(ctx, conf.ID, "intruder", &newTitle, nil)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("blank title rejected", func(t *testing.T) {
		blank := "  "
		_, err := svc.UpdateConference(ctx, conf.ID, "owner", &blank, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing conference", func(t *testing.T) {
		_, err := svc.UpdateConference(ctx, "conf-x", "owner", &newTitle, nil)
		assert.ErrorIs(t, err, domain.ErrConferenceNotFound)
	})
}

func TestConferenceService_DeleteConference(t *testing.T) {
	ctx := context.Background()
	confRepo := newFakeConferenceRepo()
	qRepo := newFakeQuestionRepo()
	confRepo.questions = qRepo
	svc := NewConferenceService(confRepo, qRepo, time.Second)

	conf, err := svc.CreateConference(ctx, "owner", "KX 2025", nil)
	require.NoError(t, err)
	require.NoError(t, qRepo.Create(ctx, domain.NewQuestion(conf.ID, "ann", "q", time.Now())))

	assert.ErrorIs(t, svc.DeleteConference(ctx, conf.ID, "intruder"), domain.ErrForbidden)
	assert.Empty(t, confRepo.deleted)

	require.NoError(t, svc.DeleteConference(ctx, conf.ID, "owner"))
	assert.Equal(t, []string{conf.ID}, confRepo.deleted)
	remaining, _ := qRepo.ListByConferenceID(ctx, conf.ID)
	assert.Empty(t, remaining)

	assert.ErrorIs(t, svc.DeleteConference(ctx, conf.ID, "owner"), domain.ErrConferenceNotFound)
}

func TestConferenceService_DeleteConference_StoreFailureKeepsQuestions(t *testing.T) {
	ctx := context.Background()
	confRepo := newFakeConferenceRepo()
	qRepo := newFakeQuestionRepo()
	confRepo.questions = qRepo
	svc := NewConferenceService(confRepo, qRepo, time.Second)

	conf, err := svc.CreateConference(ctx, "owner", "KX 2025", nil)
	require.NoError(t, err)
	require.NoError(t, qRepo.Create(ctx, domain.NewQuestion(conf.ID, "ann", "q", time.Now())))

	confRepo.deleteErr = errBoom
	assert.ErrorIs(t, svc.DeleteConference(ctx, conf.ID, "owner"), errBoom)

	remaining, _ := qRepo.ListByConferenceID(ctx, conf.ID)
	assert.Len(t, remaining, 1)
	_, err = confRepo.GetByID(ctx, conf.ID)
	assert.NoError(t, err)
}
