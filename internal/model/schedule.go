package model

// SessionView is the read-only projection of a session joined with its
// class, including the computed number of remaining seats. Date and times
// are formatted in SQL (YYYY-MM-DD / HH:MM) so the projection is stable
// across driver scan types.
type SessionView struct {
	SessionID string  `db:"session_id" json:"sessionId"`
	Title     string  `db:"title" json:"title"`
	Coach     *string `db:"coach" json:"coach,omitempty"`
	Capacity  int     `db:"capacity" json:"capacity"`
	Date      string  `db:"date" json:"date"`
	StartTime string  `db:"start_time" json:"startTime"`
	EndTime   string  `db:"end_time" json:"endTime"`
	Remaining int     `db:"remaining" json:"remaining"`
}
