package service

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/studiofit/gym-assistant-go/internal/errors"
	"github.com/studiofit/gym-assistant-go/internal/model"
)

// RenderBookingICS renders a booking as an iCalendar event with a reminder
// two hours before the session starts.
func RenderBookingICS(detail *model.BookingDetail) (string, error) {
	start, err := time.Parse("2006-01-02 15:04", detail.Date+" "+detail.StartTime)
	if err != nil {
		return "", apperrors.Internal("booking has an unparseable session time")
	}
	end, err := time.Parse("2006-01-02 15:04", detail.Date+" "+detail.EndTime)
	if err != nil {
		return "", apperrors.Internal("booking has an unparseable session time")
	}

	summary := detail.Title
	if detail.Coach != nil && *detail.Coach != "" {
		summary = fmt.Sprintf("%s (%s)", detail.Title, *detail.Coach)
	}

	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//StudioFit//Gym Assistant//EN",
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:%s@gym-bot", detail.BookingID),
		fmt.Sprintf("DTSTAMP:%s", time.Now().UTC().Format("20060102T150405Z")),
		fmt.Sprintf("DTSTART:%s", start.Format("20060102T150405")),
		fmt.Sprintf("DTEND:%s", end.Format("20060102T150405")),
		fmt.Sprintf("SUMMARY:%s", escapeICSText(summary)),
		fmt.Sprintf("DESCRIPTION:Booking status: %s", detail.Status),
		"LOCATION:StudioFit",
		"BEGIN:VALARM",
		"ACTION:DISPLAY",
		"DESCRIPTION:Class reminder",
		"TRIGGER:-PT2H",
		"END:VALARM",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n") + "\r\n", nil
}

func escapeICSText(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\n", "\\n",
	)
	return replacer.Replace(s)
}
