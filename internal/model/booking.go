package model

import "time"

// BookingDetail is a booking denormalized with its session and class
// fields, as returned by the booking engine for reply formatting and
// calendar export.
type BookingDetail struct {
	BookingID string        `db:"booking_id" json:"bookingId"`
	SessionID string        `db:"session_id" json:"sessionId"`
	MemberID  string        `db:"member_id" json:"-"`
	Status    BookingStatus `db:"status" json:"status"`
	Title     string        `db:"title" json:"title"`
	Coach     *string       `db:"coach" json:"coach,omitempty"`
	Date      string        `db:"date" json:"date"`
	StartTime string        `db:"start_time" json:"startTime"`
	EndTime   string        `db:"end_time" json:"endTime"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
}
