package model

import "time"

// ReservationLock is an advisory lock serializing concurrent bookings on a
// property. Mongo transactions only conflict on documents both writers touch;
// two overlapping bookings insert distinct documents, so the snapshot overlap
// check alone would let both commit. The lock's unique _id makes the second
// writer fail at insert.
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
