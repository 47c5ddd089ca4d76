package service

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/studiofit/gym-assistant-go/internal/errors"
	"github.com/studiofit/gym-assistant-go/internal/model"
	"github.com/studiofit/gym-assistant-go/internal/repository"
	"github.com/studiofit/gym-assistant-go/internal/util"
)

// ScheduleService answers schedule queries and resolves loose member
// references ("yoga tomorrow at 18:30") to concrete sessions.
type ScheduleService struct {
	schedules repository.ScheduleRepository
	now       func() time.Time
}

func NewScheduleService(schedules repository.ScheduleRepository) *ScheduleService {
	return &ScheduleService{
		schedules: schedules,
		now:       time.Now,
	}
}

// GetSchedule lists the sessions on the day the given phrase refers to,
// ordered by start time. Unparseable phrases fall back to today.
func (s *ScheduleService) GetSchedule(ctx context.Context, when string) ([]model.SessionView, error) {
	return s.schedules.ListByDate(ctx, s.dateFromWhen(when))
}

// ResolveSession turns a session reference into a single session. The
// reference may be a session ID or a class title, optionally narrowed by a
// start time. Titles are searched today first, then tomorrow.
func (s *ScheduleService) ResolveSession(ctx context.Context, ref, startTime string) (*model.SessionView, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperrors.MissingRequired("session")
	}

	if util.IsValidUUID(ref) {
		session, err := s.schedules.FindSessionView(ctx, ref)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, apperrors.NotFound("session")
		}
		return session, nil
	}

	today := s.now().Format("2006-01-02")
	tomorrow := s.now().AddDate(0, 0, 1).Format("2006-01-02")
	for _, date := range []string{today, tomorrow} {
		matches, err := s.schedules.FindByTitle(ctx, ref, date, startTime)
		if err != nil {
			return nil, err
		}
		switch len(matches) {
		case 0:
			continue
		case 1:
			return &matches[0], nil
		default:
			return nil, apperrors.InvalidInput("session", "multiple sessions match, specify a time")
		}
	}
	return nil, apperrors.NotFound("session")
}

// dateFromWhen maps a day phrase to a concrete date. Members write in
// German or English; ISO dates pass through unchanged.
func (s *ScheduleService) dateFromWhen(when string) string {
	switch strings.ToLower(strings.TrimSpace(when)) {
	case "", "heute", "today":
		return s.now().Format("2006-01-02")
	case "morgen", "tomorrow":
		return s.now().AddDate(0, 0, 1).Format("2006-01-02")
	}
	if t, err := time.Parse("2006-01-02", strings.TrimSpace(when)); err == nil {
		return t.Format("2006-01-02")
	}
	return s.now().Format("2006-01-02")
}
