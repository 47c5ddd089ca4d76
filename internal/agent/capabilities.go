package agent

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/studiofit/gym-assistant-go/internal/capability"
	"github.com/studiofit/gym-assistant-go/internal/model"
	"github.com/studiofit/gym-assistant-go/internal/service"
)

// BuildRegistry assembles the fixed capability set the assistant may use.
// The member identity always comes from the authenticated webhook sender,
// never from model arguments.
func BuildRegistry(schedules *service.ScheduleService, bookings *service.BookingService) *capability.Registry {
	r := capability.NewRegistry()

	r.Register(capability.Capability{
		Name:        "get_schedule",
		Description: "List the class sessions for a day with remaining seats.",
		Params: []capability.Param{
			{Name: "when", Description: "Day to list: 'today', 'tomorrow', 'heute', 'morgen', or a YYYY-MM-DD date. Defaults to today."},
		},
		Handler: func(ctx context.Context, member *model.Member, args map[string]string) (any, error) {
			return schedules.GetSchedule(ctx, args["when"])
		},
	})

	r.Register(capability.Capability{
		Name:        "book_session",
		Description: "Book a spot in a class session for the member. Confirms while seats remain, otherwise waitlists.",
		Params: []capability.Param{
			{Name: "session", Description: "Session ID from get_schedule, or the class name.", Required: true},
			{Name: "time", Description: "Start time (HH:MM) to disambiguate when booking by class name."},
		},
		Handler: func(ctx context.Context, member *model.Member, args map[string]string) (any, error) {
			session, err := schedules.ResolveSession(ctx, args["session"], args["time"])
			if err != nil {
				return nil, err
			}
			return bookings.Book(ctx, session.SessionID, member.ID)
		},
	})

	r.Register(capability.Capability{
		Name:        "cancel_booking",
		Description: "Cancel the member's booking for a class session.",
		Params: []capability.Param{
			{Name: "session", Description: "Session ID or class name of the booking to cancel.", Required: true},
		},
		Handler: func(ctx context.Context, member *model.Member, args map[string]string) (any, error) {
			session, err := schedules.ResolveSession(ctx, args["session"], "")
			if err != nil {
				return nil, err
			}
			return bookings.Cancel(ctx, session.SessionID, member.ID)
		},
	})

	r.Register(capability.Capability{
		Name:        "get_my_bookings",
		Description: "List the member's upcoming confirmed and waitlisted bookings.",
		Handler: func(ctx context.Context, member *model.Member, args map[string]string) (any, error) {
			return bookings.ListForMember(ctx, member.ID)
		},
	})

	r.Register(capability.Capability{
		Name:        "handover_to_human",
		Description: "Flag the conversation for the front desk team when the member needs a person.",
		Params: []capability.Param{
			{Name: "note", Description: "Short summary of what the member needs.", Required: true},
		},
		Handler: func(ctx context.Context, member *model.Member, args map[string]string) (any, error) {
			log.Info().
				Str("memberId", member.ID).
				Str("phone", member.Phone).
				Str("note", args["note"]).
				Msg("Handover requested")
			return map[string]string{"status": "handover_requested"}, nil
		},
	})

	return r
}
