package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/studiofit/gym-assistant-go/internal/httputil"
	"github.com/studiofit/gym-assistant-go/internal/service"
)

// CalendarHandler serves bookings as downloadable iCalendar files.
type CalendarHandler struct {
	bookings *service.BookingService
}

func NewCalendarHandler(bookings *service.BookingService) *CalendarHandler {
	return &CalendarHandler{bookings: bookings}
}

// Download renders one booking as an .ics attachment.
func (h *CalendarHandler) Download(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingID")

	detail, err := h.bookings.FindDetail(r.Context(), bookingID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ics, err := service.RenderBookingICS(detail)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="booking.ics"`)
	w.Write([]byte(ics))
}
