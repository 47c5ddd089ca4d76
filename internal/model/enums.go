package model

// BookingStatus is the closed set of states a booking can be in.
type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusWaitlist  BookingStatus = "waitlist"
	BookingStatusCanceled  BookingStatus = "canceled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusWaitlist, BookingStatusCanceled:
		return true
	}
	return false
}
