package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/studiofit/gym-assistant-go/internal/errors"
	"github.com/studiofit/gym-assistant-go/internal/model"
)

func fixedScheduleService(repo *mockScheduleRepo) *ScheduleService {
	svc := NewScheduleService(repo)
	svc.now = func() time.Time {
		return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestScheduleService_GetSchedule(t *testing.T) {
	sessions := []model.SessionView{
		{SessionID: "s1", Title: "BodyPump", Date: "2026-09-01", StartTime: "17:30", Remaining: 16},
	}

	tests := []struct {
		name     string
		when     string
		wantDate string
	}{
		{"empty phrase means today", "", "2026-09-01"},
		{"heute", "heute", "2026-09-01"},
		{"today", "Today", "2026-09-01"},
		{"morgen", "morgen", "2026-09-02"},
		{"tomorrow", "tomorrow", "2026-09-02"},
		{"iso date passes through", "2026-09-15", "2026-09-15"},
		{"garbage falls back to today", "next full moon", "2026-09-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockScheduleRepo)
			repo.On("ListByDate", mock.Anything, tt.wantDate).Return(sessions, nil)
			svc := fixedScheduleService(repo)

			got, err := svc.GetSchedule(context.Background(), tt.when)

			require.NoError(t, err)
			assert.Equal(t, sessions, got)
			repo.AssertExpectations(t)
		})
	}
}

func TestScheduleService_ResolveSession(t *testing.T) {
	sessionID := "7f9e0a10-1b2c-4d3e-8f90-a1b2c3d4e5f6"

	t.Run("resolves by session id", func(t *testing.T) {
		repo := new(mockScheduleRepo)
		repo.On("FindSessionView", mock.Anything, sessionID).
			Return(&model.SessionView{SessionID: sessionID, Title: "Yoga"}, nil)
		svc := fixedScheduleService(repo)

		session, err := svc.ResolveSession(context.Background(), sessionID, "")

		require.NoError(t, err)
		assert.Equal(t, "Yoga", session.Title)
	})

	t.Run("unknown session id yields not found", func(t *testing.T) {
		repo := new(mockScheduleRepo)
		repo.On("FindSessionView", mock.Anything, sessionID).Return(nil, nil)
		svc := fixedScheduleService(repo)

		_, err := svc.ResolveSession(context.Background(), sessionID, "")

		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	})

	t.Run("resolves by title today", func(t *testing.T) {
		repo := new(mockScheduleRepo)
		repo.On("FindByTitle", mock.Anything, "yoga", "2026-09-01", "").
			Return([]model.SessionView{{SessionID: "s1", Title: "Yoga"}}, nil)
		svc := fixedScheduleService(repo)

		session, err := svc.ResolveSession(context.Background(), "yoga", "")

		require.NoError(t, err)
		assert.Equal(t, "s1", session.SessionID)
	})

	t.Run("falls through to tomorrow when today has no match", func(t *testing.T) {
		repo := new(mockScheduleRepo)
		repo.On("FindByTitle", mock.Anything, "yoga", "2026-09-01", "18:30").
			Return([]model.SessionView{}, nil)
		repo.On("FindByTitle", mock.Anything, "yoga", "2026-09-02", "18:30").
			Return([]model.SessionView{{SessionID: "s2", Title: "Yoga", StartTime: "18:30"}}, nil)
		svc := fixedScheduleService(repo)

		session, err := svc.ResolveSession(context.Background(), "yoga", "18:30")

		require.NoError(t, err)
		assert.Equal(t, "s2", session.SessionID)
	})

	t.Run("ambiguous title asks for a time", func(t *testing.T) {
		repo := new(mockScheduleRepo)
		repo.On("FindByTitle", mock.Anything, "yoga", "2026-09-01", "").
			Return([]model.SessionView{{SessionID: "s1"}, {SessionID: "s2"}}, nil)
		svc := fixedScheduleService(repo)

		_, err := svc.ResolveSession(context.Background(), "yoga", "")

		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidInput))
	})

	t.Run("no match on either day yields not found", func(t *testing.T) {
		repo := new(mockScheduleRepo)
		repo.On("FindByTitle", mock.Anything, "zumba", "2026-09-01", "").
			Return([]model.SessionView{}, nil)
		repo.On("FindByTitle", mock.Anything, "zumba", "2026-09-02", "").
			Return([]model.SessionView{}, nil)
		svc := fixedScheduleService(repo)

		_, err := svc.ResolveSession(context.Background(), "zumba", "")

		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
	})

	t.Run("blank reference is rejected", func(t *testing.T) {
		svc := fixedScheduleService(new(mockScheduleRepo))

		_, err := svc.ResolveSession(context.Background(), "   ", "")

		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeMissingRequired))
	})
}
