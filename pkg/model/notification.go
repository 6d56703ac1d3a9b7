package model

import "time"

// Notification is the fire-and-forget side effect of property and reservation
// writes. It is published to the notifications topic and persisted by the
// notifications service.
type Notification struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID string    `json:"property_id" bson:"property_id" validate:"required"`
	AuthorID   string    `json:"author_id" bson:"author_id" validate:"required"`
	Message    string    `json:"message" bson:"message" validate:"required,min=1,max=500"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
