package models

import "time"

// order status
const (
	OrderStatusPending    = "pending"
	OrderStatusClaimed    = "claimed"
	OrderStatusPreparing  = "preparing"
	OrderStatusDelivering = "delivering"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// payment method
const (
	PaymentMealSwipe      = "meal_swipe"
	PaymentFlex           = "flex"
	PaymentCard           = "card"
	PaymentSplitSwipeFlex = "split_swipe_flex"
	PaymentSplitSwipeCard = "split_swipe_card"
)

// MealSwipeValueCents is the credit one meal swipe is worth at regular venues.
// Swipe-deal venues cover the whole order with a single swipe.
const MealSwipeValueCents int64 = 842

// checkout fees
const (
	DeliveryFeeCents int64 = 299
	ServiceFeeCents  int64 = 150
)

// OrderItem is a single line of an order.
type OrderItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Quantity   int    `json:"quantity"`
}

// PaymentInfo is the simulated payment breakdown chosen at checkout.
type PaymentInfo struct {
	Method     string `json:"method"`
	UseSwipe   bool   `json:"use_swipe"`
	FlexCents  int64  `json:"flex_cents"`
	CardCents  int64  `json:"card_cents"`
	CardNumber string `json:"card_number,omitempty"`
}

// Order is the central order entity. ID is assigned by the store;
// LocalID keys the order before (or without) a backend id.
type Order struct {
	ID                   uint64       `json:"id"`
	LocalID              string       `json:"local_id,omitempty"`
	CustomerID           uint64       `json:"customer_id"`
	WorkerID             *uint64      `json:"worker_id,omitempty"`
	VenueID              uint64       `json:"venue_id"`
	Items                []OrderItem  `json:"items"`
	SubtotalCents        int64        `json:"subtotal_cents"`
	TipCents             int64        `json:"tip_cents"`
	DeliveryFeeCents     int64        `json:"delivery_fee_cents"`
	ServiceFeeCents      int64        `json:"service_fee_cents"`
	TotalCents           int64        `json:"total_cents"`
	Payment              *PaymentInfo `json:"payment,omitempty"`
	Building             string       `json:"building,omitempty"`
	Room                 string       `json:"room,omitempty"`
	DeliveryInstructions string       `json:"delivery_instructions,omitempty"`
	IsScheduled          bool         `json:"is_scheduled"`
	ScheduledFor         *time.Time   `json:"scheduled_for,omitempty"`
	Pin                  string       `json:"pin,omitempty"`
	VerificationCode     string       `json:"verification_code,omitempty"`
	Status               string       `json:"status"`
	CreatedAt            time.Time    `json:"created_at"`
}

// Terminal reports whether the status is final.
func Terminal(status string) bool {
	return status == OrderStatusDelivered || status == OrderStatusCancelled
}

// Deliverable reports whether an order in this status may still be
// confirmed as delivered. Confirmation can legitimately race status
// advancement, so every non-terminal status counts.
func Deliverable(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusClaimed, OrderStatusPreparing, OrderStatusDelivering:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is a legal status move.
// The delivery path is strictly monotonic; cancellation is reachable
// from any non-terminal state.
func CanTransition(from, to string) bool {
	if to == OrderStatusCancelled {
		return !Terminal(from)
	}
	switch from {
	case OrderStatusPending:
		return to == OrderStatusClaimed
	case OrderStatusClaimed:
		return to == OrderStatusPreparing
	case OrderStatusPreparing:
		return to == OrderStatusDelivering
	case OrderStatusDelivering:
		return to == OrderStatusDelivered
	}
	return false
}

// NextStatus returns the next status on the delivery path, or "" for
// terminal states.
func NextStatus(status string) string {
	switch status {
	case OrderStatusPending:
		return OrderStatusClaimed
	case OrderStatusClaimed:
		return OrderStatusPreparing
	case OrderStatusPreparing:
		return OrderStatusDelivering
	case OrderStatusDelivering:
		return OrderStatusDelivered
	}
	return ""
}

// Job is the dasher-facing projection of an unclaimed order.
type Job struct {
	OrderID       uint64
	VenueName     string
	VenueLocation string
	ItemCount     int
	TotalCents    int64
	TipCents      int64
	Building      string
	Room          string
	CreatedAt     time.Time
	ScheduledFor  *time.Time
	// MinutesUntilReady is derived at fetch time for scheduled jobs.
	MinutesUntilReady int
}
