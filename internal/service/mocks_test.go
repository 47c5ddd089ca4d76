package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/studiofit/gym-assistant-go/internal/model"
)

type mockScheduleRepo struct {
	mock.Mock
}

func (m *mockScheduleRepo) ListByDate(ctx context.Context, date string) ([]model.SessionView, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SessionView), args.Error(1)
}

func (m *mockScheduleRepo) FindSessionView(ctx context.Context, sessionID string) (*model.SessionView, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionView), args.Error(1)
}

func (m *mockScheduleRepo) FindByTitle(ctx context.Context, title, date, startTime string) ([]model.SessionView, error) {
	args := m.Called(ctx, title, date, startTime)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SessionView), args.Error(1)
}

func (m *mockScheduleRepo) DeletePastSessions(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
