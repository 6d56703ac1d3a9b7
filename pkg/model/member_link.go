package model

import "time"

const (
	RoleMasterOwner = "master_owner"
	RoleCoOwner     = "co_owner"
)

// Pool selectors name the balance field a booking debits. They double as the
// stored field names.
const (
	PoolCurrentYear = "current_year_balance"
	PoolNextYear    = "next_year_balance"
)

// BalanceFor returns the stay-day balance of the given pool.
func (l *MemberLink) BalanceFor(pool string) float64 {
	if pool == PoolNextYear {
		return l.NextYearBalance
	}
	return l.CurrentYearBalance
}

// MemberLink ties a member to a property. It carries the member's fraction
// count and the two stay-day pools the quota ledger debits: the pro-rata pool
// for the running calendar year and the full pool for the next one.
// A member holds at most one link per property.
type MemberLink struct {
	ID         string `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PropertyID string `json:"property_id" bson:"property_id" validate:"required,mongodb"`
	MemberID   string `json:"member_id" bson:"member_id" validate:"required"`
	Role       string `json:"role" bson:"role" validate:"required,oneof=master_owner co_owner"`
	Fractions  int    `json:"fractions" bson:"fractions" validate:"required,min=1,max=52"`

	CurrentYearBalance float64 `json:"current_year_balance" bson:"current_year_balance" validate:"gte=0"`
	NextYearBalance    float64 `json:"next_year_balance" bson:"next_year_balance" validate:"gte=0"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
