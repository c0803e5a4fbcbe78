package models

import (
	"errors"
	"time"
)

var (
	ErrConflictData       = errors.New("data conflicts with existing data")
	ErrDataNotFound       = errors.New("data not found")
	ErrInvalidCredentials = errors.New("invalid login or password")
	ErrNoIdentity         = errors.New("no authenticated identity")
	ErrOrderClaimed       = errors.New("order already claimed")
	ErrOrderNotFound      = errors.New("order not found")
	ErrNotAssignedWorker  = errors.New("caller is not the assigned worker")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrCodeNotFound       = errors.New("code invalid or order already delivered")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidPayment     = errors.New("invalid payment breakdown")
	ErrInternalError      = errors.New("internal error")
)

// TooManyRequestsError is returned when an upstream service throttles
// us and names the wait before the next attempt.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

// NewTooManyRequestsError creates a TooManyRequestsError.
func NewTooManyRequestsError(retryAfter time.Duration) TooManyRequestsError {
	return TooManyRequestsError{RetryAfter: retryAfter}
}

func (e TooManyRequestsError) Error() string {
	return "too many requests"
}
