package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/studiofit/gym-assistant-go/internal/database"
	apperrors "github.com/studiofit/gym-assistant-go/internal/errors"
	"github.com/studiofit/gym-assistant-go/internal/model"
)

const bookingDetailSelect = `
	SELECT b.id AS booking_id,
	       b.session_id,
	       b.member_id,
	       b.status,
	       c.title,
	       c.coach,
	       to_char(s.date, 'YYYY-MM-DD') AS date,
	       to_char(s.start_time, 'HH24:MI') AS start_time,
	       to_char(s.end_time, 'HH24:MI') AS end_time,
	       b.created_at
	FROM bookings b
	JOIN sessions s ON s.id = b.session_id
	JOIN classes c ON c.id = s.class_id`

type BookingRepository interface {
	// Book places a booking for the member on the session. The session row
	// is locked for the duration of the transaction, so concurrent bookings
	// on the same session serialize and the confirmed count never exceeds
	// capacity. Booking the same session twice keeps the original row and
	// re-derives the same status, making the operation idempotent.
	Book(ctx context.Context, sessionID, memberID string) (*model.BookingDetail, error)
	// Cancel marks the member's booking on the session as canceled and
	// returns the updated detail, or nil when no booking exists.
	Cancel(ctx context.Context, sessionID, memberID string) (*model.BookingDetail, error)
	FindDetailByID(ctx context.Context, bookingID string) (*model.BookingDetail, error)
	ListByMember(ctx context.Context, memberID string) ([]model.BookingDetail, error)
	DeleteCanceledBefore(ctx context.Context, before time.Time) (int64, error)
}

type bookingRepository struct {
	db *database.DB
}

// NewBookingRepository takes the full DB handle rather than DBTX because
// Book and Cancel manage their own transactions.
func NewBookingRepository(db *database.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Book(ctx context.Context, sessionID, memberID string) (*model.BookingDetail, error) {
	var detail *model.BookingDetail
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// Lock the session row. All bookings for this session queue here.
		var session struct {
			ID       string `db:"id"`
			Capacity int    `db:"capacity"`
		}
		lockQuery := `
			SELECT s.id, c.capacity
			FROM sessions s
			JOIN classes c ON c.id = s.class_id
			WHERE s.id = $1
			FOR UPDATE OF s`
		err := tx.GetContext(ctx, &session, lockQuery, sessionID)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("session")
		}
		if err != nil {
			return apperrors.TransientStore(err)
		}

		// Confirmed seats held by other members. Excluding the member's own
		// row makes a repeat booking land on the same status it got the
		// first time.
		var confirmed int
		countQuery := `
			SELECT COUNT(*) FROM bookings
			WHERE session_id = $1 AND status = 'confirmed' AND member_id <> $2`
		if err := tx.GetContext(ctx, &confirmed, countQuery, sessionID, memberID); err != nil {
			return apperrors.TransientStore(err)
		}

		status := model.BookingStatusConfirmed
		if confirmed >= session.Capacity {
			status = model.BookingStatusWaitlist
		}

		var bookingID string
		upsertQuery := `
			INSERT INTO bookings (id, session_id, member_id, status)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (session_id, member_id) DO UPDATE
			SET status = EXCLUDED.status
			RETURNING id`
		if err := tx.GetContext(ctx, &bookingID, upsertQuery, uuid.NewString(), sessionID, memberID, status); err != nil {
			return apperrors.TransientStore(err)
		}

		var d model.BookingDetail
		if err := tx.GetContext(ctx, &d, bookingDetailSelect+` WHERE b.id = $1`, bookingID); err != nil {
			return apperrors.TransientStore(err)
		}
		detail = &d
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.TransientStore(err)
	}
	return detail, nil
}

func (r *bookingRepository) Cancel(ctx context.Context, sessionID, memberID string) (*model.BookingDetail, error) {
	var detail *model.BookingDetail
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var bookingID string
		updateQuery := `
			UPDATE bookings
			SET status = 'canceled'
			WHERE session_id = $1 AND member_id = $2
			RETURNING id`
		err := tx.GetContext(ctx, &bookingID, updateQuery, sessionID, memberID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return apperrors.TransientStore(err)
		}

		var d model.BookingDetail
		if err := tx.GetContext(ctx, &d, bookingDetailSelect+` WHERE b.id = $1`, bookingID); err != nil {
			return apperrors.TransientStore(err)
		}
		detail = &d
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.TransientStore(err)
	}
	return detail, nil
}

func (r *bookingRepository) FindDetailByID(ctx context.Context, bookingID string) (*model.BookingDetail, error) {
	var detail model.BookingDetail
	err := r.db.GetContext(ctx, &detail, bookingDetailSelect+` WHERE b.id = $1`, bookingID)
	return HandleNotFound(&detail, err)
}

func (r *bookingRepository) ListByMember(ctx context.Context, memberID string) ([]model.BookingDetail, error) {
	details := []model.BookingDetail{}
	query := bookingDetailSelect + `
		WHERE b.member_id = $1 AND b.status <> 'canceled'
		ORDER BY s.date, s.start_time`
	err := r.db.SelectContext(ctx, &details, query, memberID)
	if err != nil {
		return nil, apperrors.TransientStore(err)
	}
	return details, nil
}

func (r *bookingRepository) DeleteCanceledBefore(ctx context.Context, before time.Time) (int64, error) {
	query := `DELETE FROM bookings WHERE status = 'canceled' AND created_at < $1`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, apperrors.TransientStore(err)
	}
	return result.RowsAffected()
}
