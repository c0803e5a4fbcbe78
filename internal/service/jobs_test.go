package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuseats/internal/models"
)

func seedPendingOrder(t *testing.T, store *fakeOrderStore, createdAt time.Time, tip int64) *models.Order {
	t.Helper()
	order, err := store.CreateOrder(context.Background(), &models.Order{
		CustomerID: 1,
		VenueID:    2,
		Items:      testItems(),
		TipCents:   tip,
		TotalCents: 1949,
		Status:     models.OrderStatusPending,
		CreatedAt:  createdAt,
	})
	require.NoError(t, err)
	return order
}

func TestJobService_AvailableJobs(t *testing.T) {
	store := newFakeOrderStore()
	now := time.Now()

	second := seedPendingOrder(t, store, now, 200)
	first := seedPendingOrder(t, store, now.Add(-time.Hour), 300)

	// claimed orders leave the pool
	claimed := seedPendingOrder(t, store, now.Add(-2*time.Hour), 0)
	_, err := store.ClaimOrder(context.Background(), claimed.ID, 3)
	require.NoError(t, err)

	svc := NewJobService(store, newFakeVenues(testVenue()), nil)

	jobs, err := svc.AvailableJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	// oldest order first
	assert.Equal(t, first.ID, jobs[0].OrderID)
	assert.Equal(t, second.ID, jobs[1].OrderID)

	assert.Equal(t, "Chick fil A", jobs[0].VenueName)
	assert.Equal(t, "The Commons, Floor 1", jobs[0].VenueLocation)
	assert.Equal(t, 2, jobs[0].ItemCount)
	assert.Equal(t, int64(1949), jobs[0].TotalCents)
	assert.Equal(t, int64(300), jobs[0].TipCents)
}

func TestJobService_AvailableJobs_EnrichmentFallback(t *testing.T) {
	store := newFakeOrderStore()
	seedPendingOrder(t, store, time.Now(), 0)

	venues := newFakeVenues()
	venues.err = models.ErrDataNotFound
	svc := NewJobService(store, venues, nil)

	jobs, err := svc.AvailableJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, models.UnknownVenueLabel, jobs[0].VenueName)
}

func TestJobService_ScheduledJobs(t *testing.T) {
	store := newFakeOrderStore()
	readyAt := time.Now().Add(45 * time.Minute)

	_, err := store.CreateOrder(context.Background(), &models.Order{
		CustomerID:   1,
		VenueID:      2,
		Items:        testItems(),
		Status:       models.OrderStatusPending,
		IsScheduled:  true,
		ScheduledFor: &readyAt,
	})
	require.NoError(t, err)

	svc := NewJobService(store, newFakeVenues(testVenue()), nil)

	jobs, err := svc.ScheduledJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	require.NotNil(t, jobs[0].ScheduledFor)
	assert.Greater(t, jobs[0].MinutesUntilReady, 0)
	assert.LessOrEqual(t, jobs[0].MinutesUntilReady, 45)

	// scheduled orders stay out of the immediate pool until due
	pool, err := svc.AvailableJobs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, pool)
}

func TestMinutesUntil(t *testing.T) {
	now := time.Now()

	assert.Equal(t, 0, minutesUntil(now, now.Add(-time.Minute)))
	assert.Equal(t, 1, minutesUntil(now, now.Add(10*time.Second)))
	assert.Equal(t, 45, minutesUntil(now, now.Add(45*time.Minute)))
}

func TestJobService_Claim(t *testing.T) {
	store := newFakeOrderStore()
	order := seedPendingOrder(t, store, time.Now(), 0)
	bus := &fakeBus{}
	svc := NewJobService(store, newFakeVenues(testVenue()), bus)

	_, err := svc.Claim(context.Background(), order.ID, 0)
	assert.ErrorIs(t, err, models.ErrNoIdentity)

	claimed, err := svc.Claim(context.Background(), order.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, claimed.WorkerID)
	assert.Equal(t, uint64(3), *claimed.WorkerID)
	assert.Equal(t, models.OrderStatusClaimed, claimed.Status)
	assert.Equal(t, 1, bus.count())

	// second claim loses
	_, err = svc.Claim(context.Background(), order.ID, 4)
	assert.ErrorIs(t, err, models.ErrOrderClaimed)
	assert.True(t, IsContention(err))

	_, err = svc.Claim(context.Background(), 999, 4)
	assert.ErrorIs(t, err, models.ErrOrderNotFound)
}

func TestJobService_Claim_ExactlyOneWinner(t *testing.T) {
	store := newFakeOrderStore()
	order := seedPendingOrder(t, store, time.Now(), 0)
	svc := NewJobService(store, newFakeVenues(testVenue()), nil)

	const workers = 16
	var wg sync.WaitGroup
	wins := make([]bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.Claim(context.Background(), order.ID, uint64(i+1)); err == nil {
				wins[i] = true
			}
		}(i)
	}
	wg.Wait()

	var winners int
	for _, won := range wins {
		if won {
			winners++
		}
	}
	assert.Equal(t, 1, winners)
}

func TestJobService_WorkerEarnings(t *testing.T) {
	store := newFakeOrderStore()
	ctx := context.Background()

	deliver := func(createdAt time.Time, tip int64) {
		order, err := store.CreateOrder(ctx, &models.Order{
			CustomerID:       1,
			TipCents:         tip,
			DeliveryFeeCents: models.DeliveryFeeCents,
			Status:           models.OrderStatusPending,
			CreatedAt:        createdAt,
		})
		require.NoError(t, err)
		_, err = store.ClaimOrder(ctx, order.ID, 3)
		require.NoError(t, err)
		require.NoError(t, store.MarkDelivered(ctx, order.ID))
	}

	now := time.Now()
	deliver(now.Add(-time.Hour), 300)       // today and this week
	deliver(now.Add(-3*24*time.Hour), 200)  // this week only
	deliver(now.Add(-30*24*time.Hour), 100) // older

	svc := NewJobService(store, newFakeVenues(), nil)

	earnings, err := svc.WorkerEarnings(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, earnings.TodayCount)
	assert.Equal(t, 2, earnings.WeekCount)
	// each delivery pays its tip plus the delivery fee
	assert.Equal(t, 600+3*models.DeliveryFeeCents, earnings.TotalCents)
	assert.Len(t, earnings.Deliveries, 3)

	_, err = svc.WorkerEarnings(ctx, 0)
	assert.ErrorIs(t, err, models.ErrNoIdentity)
}
