package model

import "time"

// Member is a person identified by their phone number. Created lazily on
// first contact; never deleted by this service.
type Member struct {
	ID        string    `db:"id" json:"id"`
	Phone     string    `db:"phone" json:"phone"`
	Name      *string   `db:"name" json:"name,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
