package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"campuseats/internal/models"
)

func TestValidatePayment(t *testing.T) {
	const validCard = "4539148803436467"

	tests := []struct {
		name      string
		payment   models.PaymentInfo
		total     int64
		swipeDeal bool
		flex      int64
		wantErr   bool
	}{
		{
			name:    "card_covers_total",
			payment: models.PaymentInfo{Method: models.PaymentCard, CardCents: 1949, CardNumber: validCard},
			total:   1949,
			flex:    -1,
		},
		{
			name:    "card_with_spaces",
			payment: models.PaymentInfo{Method: models.PaymentCard, CardCents: 1949, CardNumber: "4539 1488 0343 6467"},
			total:   1949,
			flex:    -1,
		},
		{
			name:    "flex_covers_total",
			payment: models.PaymentInfo{Method: models.PaymentFlex, FlexCents: 1949},
			total:   1949,
			flex:    5000,
		},
		{
			name:      "single_swipe_covers_everything_at_deal_venue",
			payment:   models.PaymentInfo{Method: models.PaymentMealSwipe, UseSwipe: true},
			total:     1949,
			swipeDeal: true,
			flex:      -1,
		},
		{
			name:    "single_swipe_short_at_regular_venue",
			payment: models.PaymentInfo{Method: models.PaymentMealSwipe, UseSwipe: true},
			total:   1949,
			flex:    -1,
			wantErr: true,
		},
		{
			name:    "swipe_plus_flex_covers_remainder",
			payment: models.PaymentInfo{Method: models.PaymentSplitSwipeFlex, UseSwipe: true, FlexCents: 1949 - models.MealSwipeValueCents},
			total:   1949,
			flex:    5000,
		},
		{
			name:    "swipe_plus_card_covers_remainder",
			payment: models.PaymentInfo{Method: models.PaymentSplitSwipeCard, UseSwipe: true, CardCents: 1949 - models.MealSwipeValueCents, CardNumber: validCard},
			total:   1949,
			flex:    -1,
		},
		{
			name:    "unknown_method",
			payment: models.PaymentInfo{Method: "iou"},
			total:   100,
			flex:    -1,
			wantErr: true,
		},
		{
			name:    "negative_amount",
			payment: models.PaymentInfo{Method: models.PaymentFlex, FlexCents: -5},
			total:   100,
			flex:    -1,
			wantErr: true,
		},
		{
			name:    "swipe_flag_contradicts_method",
			payment: models.PaymentInfo{Method: models.PaymentFlex, UseSwipe: true, FlexCents: 1949},
			total:   1949,
			flex:    -1,
			wantErr: true,
		},
		{
			name:    "luhn_reject",
			payment: models.PaymentInfo{Method: models.PaymentCard, CardCents: 1949, CardNumber: "4539148803436468"},
			total:   1949,
			flex:    -1,
			wantErr: true,
		},
		{
			name:    "card_number_not_numeric",
			payment: models.PaymentInfo{Method: models.PaymentCard, CardCents: 1949, CardNumber: "not-a-card"},
			total:   1949,
			flex:    -1,
			wantErr: true,
		},
		{
			name:    "flex_exceeds_known_balance",
			payment: models.PaymentInfo{Method: models.PaymentFlex, FlexCents: 1949},
			total:   1949,
			flex:    1000,
			wantErr: true,
		},
		{
			name:    "flex_ceiling_skipped_when_balance_unknown",
			payment: models.PaymentInfo{Method: models.PaymentFlex, FlexCents: 1949},
			total:   1949,
			flex:    -1,
		},
		{
			name:    "breakdown_short_of_total",
			payment: models.PaymentInfo{Method: models.PaymentFlex, FlexCents: 1000},
			total:   1949,
			flex:    5000,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayment(&tt.payment, tt.total, tt.swipeDeal, tt.flex)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidPayment)
				return
			}
			assert.NoError(t, err)
		})
	}
}
