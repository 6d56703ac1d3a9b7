package model

import "time"

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Reservation date ranges are end-exclusive: two reservations conflict iff
// startA < endB && startB < endA.
type Reservation struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID string    `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	MemberID   string    `json:"member_id" bson:"member_id" validate:"required"`
	StartDate  time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate    time.Time `json:"end_date" bson:"end_date" validate:"required,gtfield=StartDate"`
	Guests     int       `json:"guests" bson:"guests" validate:"required,min=1"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled"`

	CreatedAt   time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
}

// DurationDays is the whole-day length of the stay.
func (r *Reservation) DurationDays() int {
	return int(r.EndDate.Sub(r.StartDate).Hours() / 24)
}

// CreateReservationRequest is the create-reservation payload. Dates arrive as
// RFC3339 strings and are parsed by the validator before admission runs.
type CreateReservationRequest struct {
	PropertyID string `json:"property_id" validate:"required,mongodb"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"required"`
	Guests     int    `json:"guests" validate:"required,min=1"`
}
