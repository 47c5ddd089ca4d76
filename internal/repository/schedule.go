package repository

import (
	"context"
	"time"

	"github.com/studiofit/gym-assistant-go/internal/database"
	apperrors "github.com/studiofit/gym-assistant-go/internal/errors"
	"github.com/studiofit/gym-assistant-go/internal/model"
)

// sessionViewSelect projects a session joined with its class and the count
// of confirmed bookings. Dates and times are rendered in SQL so every
// caller sees the same string form.
const sessionViewSelect = `
	SELECT s.id AS session_id,
	       c.title,
	       c.coach,
	       c.capacity,
	       to_char(s.date, 'YYYY-MM-DD') AS date,
	       to_char(s.start_time, 'HH24:MI') AS start_time,
	       to_char(s.end_time, 'HH24:MI') AS end_time,
	       c.capacity - (
	           SELECT COUNT(*) FROM bookings b
	           WHERE b.session_id = s.id AND b.status = 'confirmed'
	       ) AS remaining
	FROM sessions s
	JOIN classes c ON c.id = s.class_id`

type ScheduleRepository interface {
	ListByDate(ctx context.Context, date string) ([]model.SessionView, error)
	FindSessionView(ctx context.Context, sessionID string) (*model.SessionView, error)
	// FindByTitle matches sessions on a date by class title, case
	// insensitively, optionally narrowed to a start time.
	FindByTitle(ctx context.Context, title, date, startTime string) ([]model.SessionView, error)
	DeletePastSessions(ctx context.Context, before time.Time) (int64, error)
}

type scheduleRepository struct {
	db database.DBTX
}

func NewScheduleRepository(db database.DBTX) ScheduleRepository {
	return &scheduleRepository{db: db}
}

func (r *scheduleRepository) ListByDate(ctx context.Context, date string) ([]model.SessionView, error) {
	sessions := []model.SessionView{}
	query := sessionViewSelect + `
		WHERE s.date = $1
		ORDER BY s.start_time, c.title`
	err := r.db.SelectContext(ctx, &sessions, query, date)
	if err != nil {
		return nil, apperrors.TransientStore(err)
	}
	return sessions, nil
}

func (r *scheduleRepository) FindSessionView(ctx context.Context, sessionID string) (*model.SessionView, error) {
	var session model.SessionView
	query := sessionViewSelect + ` WHERE s.id = $1`
	err := r.db.GetContext(ctx, &session, query, sessionID)
	return HandleNotFound(&session, err)
}

func (r *scheduleRepository) FindByTitle(ctx context.Context, title, date, startTime string) ([]model.SessionView, error) {
	sessions := []model.SessionView{}
	query := sessionViewSelect + `
		WHERE s.date = $1 AND c.title ILIKE $2`
	args := []any{date, "%" + title + "%"}
	if startTime != "" {
		query += ` AND to_char(s.start_time, 'HH24:MI') = $3`
		args = append(args, startTime)
	}
	query += ` ORDER BY s.start_time, c.title`
	err := r.db.SelectContext(ctx, &sessions, query, args...)
	if err != nil {
		return nil, apperrors.TransientStore(err)
	}
	return sessions, nil
}

func (r *scheduleRepository) DeletePastSessions(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM sessions WHERE date < $1`
	result, err := r.db.ExecContext(ctx, query, before.Format("2006-01-02"))
	if err != nil {
		return 0, apperrors.TransientStore(err)
	}
	return result.RowsAffected()
}
