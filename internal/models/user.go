package models

import "time"

// user role
const (
	RoleCustomer = "customer"
	RoleDasher   = "dasher"
)

// User is a registered customer or dasher.
type User struct {
	ID               uint64
	Login            string
	PasswordHash     string
	Role             string
	FlexBalanceCents int64
	SwipesRemaining  int
	CreatedAt        time.Time
}

// TokenPayload is carried inside the auth token.
type TokenPayload struct {
	UserID uint64
	Role   string
}

// Venue is a campus restaurant orders are placed against.
type Venue struct {
	ID        uint64
	Ref       string
	Name      string
	Location  string
	SwipeDeal bool
}

// UnknownVenueID is the sentinel venue used when catalog resolution
// fails at checkout. Order creation never blocks on a catalog lookup.
const UnknownVenueID uint64 = 0

// UnknownVenueLabel is the placeholder shown when venue enrichment fails.
const UnknownVenueLabel = "Unknown restaurant"
