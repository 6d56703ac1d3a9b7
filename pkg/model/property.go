package model

import "time"

const (
	PropertyTypeHouse     = "House"
	PropertyTypeApartment = "Apartment"
	PropertyTypeFarmhouse = "Farmhouse"
	PropertyTypeLot       = "Lot"
	PropertyTypeOther     = "Other"
)

type Property struct {
	ID              string  `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name            string  `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Type            string  `json:"type" bson:"type" validate:"required,property_type"`
	TotalFractions  int     `json:"total_fractions" bson:"total_fractions" validate:"required,min=1,max=52"`
	PerFractionDays float64 `json:"per_fraction_days" bson:"per_fraction_days" validate:"omitempty,gt=0"`

	MinStayDays int `json:"min_stay_days" bson:"min_stay_days" validate:"required,min=1"`
	MaxStayDays int `json:"max_stay_days" bson:"max_stay_days" validate:"required,gtecsfield=MinStayDays"`

	// Zero means the cap is not configured.
	ActiveReservationLimit int `json:"active_reservation_limit,omitempty" bson:"active_reservation_limit,omitempty" validate:"omitempty,min=1"`
	HolidayLimit           int `json:"holiday_limit,omitempty" bson:"holiday_limit,omitempty" validate:"omitempty,min=1"`

	Address        Address  `json:"address,omitempty" bson:"address,omitempty"`
	EstimatedValue *float64 `json:"estimated_value,omitempty" bson:"estimated_value,omitempty" validate:"omitempty,gt=0"`

	RegisteredAt time.Time `json:"registered_at" bson:"registered_at" validate:"omitempty"`
}

type Address struct {
	PostalCode string `json:"postal_code,omitempty" bson:"postal_code,omitempty"`
	City       string `json:"city,omitempty" bson:"city,omitempty"`
	District   string `json:"district,omitempty" bson:"district,omitempty"`
	Street     string `json:"street,omitempty" bson:"street,omitempty"`
	Number     string `json:"number,omitempty" bson:"number,omitempty"`
	Complement string `json:"complement,omitempty" bson:"complement,omitempty"`
	Landmark   string `json:"landmark,omitempty" bson:"landmark,omitempty"`
}

// CreatePropertyRequest is the create-property payload. TotalFractions and the
// stay bounds are optional; the service fills them from configuration.
type CreatePropertyRequest struct {
	Name                   string   `json:"name" validate:"required,min=1,max=100"`
	Type                   string   `json:"type" validate:"required,property_type"`
	TotalFractions         *int     `json:"total_fractions,omitempty" validate:"omitempty,min=1,max=52"`
	MinStayDays            *int     `json:"min_stay_days,omitempty" validate:"omitempty,min=1"`
	MaxStayDays            *int     `json:"max_stay_days,omitempty" validate:"omitempty,min=1"`
	ActiveReservationLimit int      `json:"active_reservation_limit,omitempty" validate:"omitempty,min=1"`
	HolidayLimit           int      `json:"holiday_limit,omitempty" validate:"omitempty,min=1"`
	Address                Address  `json:"address,omitempty"`
	EstimatedValue         *float64 `json:"estimated_value,omitempty" validate:"omitempty,gt=0"`
}

// CreatedProperty is the trimmed create-property response body.
type CreatedProperty struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	RegisteredAt time.Time `json:"registered_at"`
}
