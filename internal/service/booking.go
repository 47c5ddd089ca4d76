package service

import (
	"context"
	"strings"

	apperrors "github.com/studiofit/gym-assistant-go/internal/errors"
	"github.com/studiofit/gym-assistant-go/internal/model"
	"github.com/studiofit/gym-assistant-go/internal/repository"
	"github.com/studiofit/gym-assistant-go/internal/util"
)

// BookingService is the capacity-aware booking engine. Status decisions
// happen inside the repository's locked transaction; this layer validates
// input and keeps IDs well formed.
type BookingService struct {
	bookings repository.BookingRepository
}

func NewBookingService(bookings repository.BookingRepository) *BookingService {
	return &BookingService{bookings: bookings}
}

// Book places the member on the session, confirmed while seats remain and
// waitlisted once the class is full. Booking the same session again
// returns the existing booking unchanged.
func (s *BookingService) Book(ctx context.Context, sessionID, memberID string) (*model.BookingDetail, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperrors.MissingRequired("sessionId")
	}
	if strings.TrimSpace(memberID) == "" {
		return nil, apperrors.MissingRequired("memberId")
	}
	if !util.IsValidUUID(sessionID) {
		return nil, apperrors.InvalidInput("sessionId", "must be a valid UUID")
	}
	return s.bookings.Book(ctx, sessionID, memberID)
}

// Cancel marks the member's booking on the session as canceled.
func (s *BookingService) Cancel(ctx context.Context, sessionID, memberID string) (*model.BookingDetail, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperrors.MissingRequired("sessionId")
	}
	if strings.TrimSpace(memberID) == "" {
		return nil, apperrors.MissingRequired("memberId")
	}

	detail, err := s.bookings.Cancel(ctx, sessionID, memberID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, apperrors.NotFound("booking")
	}
	return detail, nil
}

// FindDetail loads one booking with its session and class fields.
func (s *BookingService) FindDetail(ctx context.Context, bookingID string) (*model.BookingDetail, error) {
	if !util.IsValidUUID(bookingID) {
		return nil, apperrors.InvalidInput("bookingId", "must be a valid UUID")
	}

	detail, err := s.bookings.FindDetailByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, apperrors.NotFound("booking")
	}
	return detail, nil
}

// ListForMember returns the member's active bookings ordered by session
// start.
func (s *BookingService) ListForMember(ctx context.Context, memberID string) ([]model.BookingDetail, error) {
	return s.bookings.ListByMember(ctx, memberID)
}
