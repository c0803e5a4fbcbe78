package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phedde/luhn-algorithm"

	"campuseats/internal/models"
)

// paymentUsesSwipe reports whether the method spends a meal swipe.
func paymentUsesSwipe(method string) bool {
	switch method {
	case models.PaymentMealSwipe, models.PaymentSplitSwipeFlex, models.PaymentSplitSwipeCard:
		return true
	}
	return false
}

// paymentUsesCard reports whether the method charges a card.
func paymentUsesCard(method string) bool {
	return method == models.PaymentCard || method == models.PaymentSplitSwipeCard
}

// ValidatePayment checks a simulated payment breakdown against the
// order total. swipeDeal venues cover the whole order with one swipe;
// everywhere else a swipe is worth models.MealSwipeValueCents.
// flexBalanceCents < 0 means the balance is unknown and the ceiling
// check is skipped.
func ValidatePayment(p *models.PaymentInfo, totalCents int64, swipeDeal bool, flexBalanceCents int64) error {
	switch p.Method {
	case models.PaymentMealSwipe, models.PaymentFlex, models.PaymentCard,
		models.PaymentSplitSwipeFlex, models.PaymentSplitSwipeCard:
	default:
		return fmt.Errorf("%w: unknown method %q", models.ErrInvalidPayment, p.Method)
	}

	if p.FlexCents < 0 || p.CardCents < 0 {
		return fmt.Errorf("%w: negative amount", models.ErrInvalidPayment)
	}
	if paymentUsesSwipe(p.Method) != p.UseSwipe {
		return fmt.Errorf("%w: swipe flag does not match method", models.ErrInvalidPayment)
	}

	if paymentUsesCard(p.Method) {
		num, err := strconv.ParseInt(strings.ReplaceAll(p.CardNumber, " ", ""), 10, 64)
		if err != nil || !luhn.IsValid(num) {
			return fmt.Errorf("%w: invalid card number", models.ErrInvalidPayment)
		}
	}

	if flexBalanceCents >= 0 && p.FlexCents > flexBalanceCents {
		return fmt.Errorf("%w: flex amount exceeds balance", models.ErrInvalidPayment)
	}

	var swipeCredit int64
	if p.UseSwipe {
		swipeCredit = models.MealSwipeValueCents
		if swipeDeal {
			swipeCredit = totalCents
		}
	}
	if swipeCredit+p.FlexCents+p.CardCents < totalCents {
		return fmt.Errorf("%w: breakdown does not cover total", models.ErrInvalidPayment)
	}

	return nil
}
