package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"campuseats/internal/logger"
	"campuseats/internal/models"
	"campuseats/internal/notify"
)

// JobRepository is interface for the worker-side view of the order pool
type JobRepository interface {
	// GetAvailableOrders returns unclaimed pending orders, oldest first
	GetAvailableOrders(ctx context.Context) ([]models.Order, error)
	// GetScheduledOrders returns unclaimed future-scheduled orders, soonest first
	GetScheduledOrders(ctx context.Context) ([]models.Order, error)
	// ClaimOrder conditionally assigns an order to a worker
	ClaimOrder(ctx context.Context, orderID, workerID uint64) (*models.Order, error)
	// GetDeliveredByWorker returns a worker's completed deliveries
	GetDeliveredByWorker(ctx context.Context, workerID uint64) ([]models.Order, error)
}

// VenueLookup resolves venue ids for job enrichment.
type VenueLookup interface {
	GetVenueByID(ctx context.Context, id uint64) (*models.Venue, error)
}

// Earnings summarizes a dasher's delivery history. Windows are
// computed over order creation time; status-change times are not
// tracked.
type Earnings struct {
	TodayCount int
	WeekCount  int
	TotalCents int64
	Deliveries []models.Order
}

// JobService maintains the dasher-facing job marketplace.
type JobService struct {
	repo   JobRepository
	venues VenueLookup
	bus    OrderPublisher
}

// NewJobService creates new JobService instance
func NewJobService(repo JobRepository, venues VenueLookup, bus OrderPublisher) *JobService {
	return &JobService{
		repo:   repo,
		venues: venues,
		bus:    bus,
	}
}

// toJob projects an order into its marketplace view. Venue enrichment
// failure degrades to a placeholder label, never drops the job.
func (js *JobService) toJob(ctx context.Context, order models.Order) models.Job {
	job := models.Job{
		OrderID:      order.ID,
		VenueName:    models.UnknownVenueLabel,
		TotalCents:   order.TotalCents,
		TipCents:     order.TipCents,
		Building:     order.Building,
		Room:         order.Room,
		CreatedAt:    order.CreatedAt,
		ScheduledFor: order.ScheduledFor,
	}
	for _, item := range order.Items {
		job.ItemCount += item.Quantity
	}

	venue, err := js.venues.GetVenueByID(ctx, order.VenueID)
	if err != nil {
		logger.Log.Debug("job venue enrichment failed",
			zap.Uint64("order", order.ID), zap.Uint64("venue", order.VenueID), zap.Error(err))
		return job
	}
	job.VenueName = venue.Name
	job.VenueLocation = venue.Location

	return job
}

// AvailableJobs returns the open job pool, oldest order first.
func (js *JobService) AvailableJobs(ctx context.Context) ([]models.Job, error) {
	orders, err := js.repo.GetAvailableOrders(ctx)
	if err != nil {
		return nil, err
	}

	jobs := make([]models.Job, 0, len(orders))
	for _, order := range orders {
		jobs = append(jobs, js.toJob(ctx, order))
	}
	return jobs, nil
}

// ScheduledJobs returns future-scheduled jobs, soonest first, with
// minutes-until-ready derived at fetch time.
func (js *JobService) ScheduledJobs(ctx context.Context) ([]models.Job, error) {
	orders, err := js.repo.GetScheduledOrders(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	jobs := make([]models.Job, 0, len(orders))
	for _, order := range orders {
		job := js.toJob(ctx, order)
		if order.ScheduledFor != nil {
			job.MinutesUntilReady = minutesUntil(now, *order.ScheduledFor)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// minutesUntil rounds up so a job due in any future amount of time
// shows at least one minute.
func minutesUntil(now, t time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Minute - 1) / time.Minute)
}

// Claim assigns the job to workerID. Exactly one concurrent claim can
// succeed; losers get models.ErrOrderClaimed and should refresh the
// pool.
func (js *JobService) Claim(ctx context.Context, orderID, workerID uint64) (*models.Order, error) {
	if workerID == 0 {
		return nil, models.ErrNoIdentity
	}
	order, err := js.repo.ClaimOrder(ctx, orderID, workerID)
	if err != nil {
		return nil, err
	}

	if js.bus != nil {
		if err := js.bus.PublishOrder(ctx, notify.EventUpdate, *order); err != nil {
			logger.Log.Debug("claim event publish failed", zap.Uint64("order", order.ID), zap.Error(err))
		}
	}

	return order, nil
}

// WorkerEarnings summarizes completed deliveries for a dasher. Each
// delivery pays out its tip plus the delivery fee.
func (js *JobService) WorkerEarnings(ctx context.Context, workerID uint64) (*Earnings, error) {
	if workerID == 0 {
		return nil, models.ErrNoIdentity
	}
	delivered, err := js.repo.GetDeliveredByWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	earnings := Earnings{Deliveries: delivered}
	for _, order := range delivered {
		earnings.TotalCents += order.TipCents + order.DeliveryFeeCents
		if order.CreatedAt.After(dayAgo) {
			earnings.TodayCount++
		}
		if order.CreatedAt.After(weekAgo) {
			earnings.WeekCount++
		}
	}
	return &earnings, nil
}
