package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campuseats/internal/credentials"
	"campuseats/internal/logger"
	"campuseats/internal/models"
	"campuseats/internal/notify"
)

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// CreateOrder inserts new order to database
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderByID returns order by backend id
	GetOrderByID(ctx context.Context, id uint64) (*models.Order, error)
	// GetOrdersByCustomer gets customer orders, newest first
	GetOrdersByCustomer(ctx context.Context, customerID uint64) ([]models.Order, error)
	// GetDeliverableByCode looks up a still-deliverable order by PIN or code
	GetDeliverableByCode(ctx context.Context, code string) (*models.Order, error)
	// MarkDelivered sets the order delivered if still deliverable
	MarkDelivered(ctx context.Context, orderID uint64) error
	// AdvanceStatus conditionally moves an order along the status path
	AdvanceStatus(ctx context.Context, orderID, workerID uint64, from, to string) error
	// CancelOrder cancels a non-terminal order
	CancelOrder(ctx context.Context, orderID uint64) error
}

// VenueResolver resolves client-supplied venue references.
type VenueResolver interface {
	GetVenueByRef(ctx context.Context, ref string) (*models.Venue, error)
}

// FlexBalanceReader reads a customer's stored flex balance.
type FlexBalanceReader interface {
	GetUserByID(ctx context.Context, id uint64) (*models.User, error)
}

// OrderPublisher fans order change events out to subscribed
// coordinators. Publishing is best-effort; the poll channel covers
// lost events.
type OrderPublisher interface {
	PublishOrder(ctx context.Context, event string, order models.Order) error
}

// ScheduleInfo is the optional ready-later request for an order.
type ScheduleInfo struct {
	IsScheduled  bool
	ScheduledFor time.Time
}

// CreateOrderParams collects the checkout input for one order.
type CreateOrderParams struct {
	VenueRef             string
	Items                []models.OrderItem
	TipCents             int64
	Building             string
	Room                 string
	DeliveryInstructions string
	Payment              *models.PaymentInfo
	Schedule             *ScheduleInfo
}

// CreateResult is the two-outcome result of order creation. When
// Persisted is false the order exists only on this client and workers
// will not see it; Warning says so.
type CreateResult struct {
	Order     *models.Order
	Persisted bool
	Warning   string
}

// OrderService owns order creation and the delivery-side lifecycle
// transitions.
type OrderService struct {
	repo   OrderRepository
	venues VenueResolver
	users  FlexBalanceReader
	bus    OrderPublisher
}

// NewOrderService creates new OrderService instance
func NewOrderService(repo OrderRepository, venues VenueResolver, users FlexBalanceReader, bus OrderPublisher) *OrderService {
	return &OrderService{
		repo:   repo,
		venues: venues,
		users:  users,
		bus:    bus,
	}
}

func (os *OrderService) publish(ctx context.Context, event string, order models.Order) {
	if os.bus == nil {
		return
	}
	if err := os.bus.PublishOrder(ctx, event, order); err != nil {
		logger.Log.Debug("order event publish failed", zap.Uint64("order", order.ID), zap.Error(err))
	}
}

// Create validates the cart, generates the delivery credentials and
// persists the order. A failed venue lookup falls back to the
// unknown-venue sentinel rather than blocking checkout. A failed
// persist degrades to a local-only order with Persisted=false.
func (os *OrderService) Create(ctx context.Context, customerID uint64, params CreateOrderParams) (*CreateResult, error) {
	if customerID == 0 {
		return nil, models.ErrNoIdentity
	}
	if len(params.Items) == 0 {
		return nil, models.ErrEmptyCart
	}

	var subtotal int64
	for _, item := range params.Items {
		if item.Quantity < 1 {
			return nil, models.ErrEmptyCart
		}
		subtotal += item.PriceCents * int64(item.Quantity)
	}
	if params.TipCents < 0 {
		return nil, models.ErrInvalidPayment
	}
	total := subtotal + params.TipCents + models.DeliveryFeeCents + models.ServiceFeeCents

	venueID := models.UnknownVenueID
	swipeDeal := false
	venue, err := os.venues.GetVenueByRef(ctx, params.VenueRef)
	if err != nil {
		logger.Log.Warn("venue lookup failed, using unknown venue",
			zap.String("ref", params.VenueRef), zap.Error(err))
	} else {
		venueID = venue.ID
		swipeDeal = venue.SwipeDeal
	}

	if params.Payment != nil {
		flexBalance := int64(-1)
		if user, err := os.users.GetUserByID(ctx, customerID); err == nil {
			flexBalance = user.FlexBalanceCents
		}
		if err := ValidatePayment(params.Payment, total, swipeDeal, flexBalance); err != nil {
			return nil, err
		}
	}

	order := &models.Order{
		LocalID:              uuid.NewString(),
		CustomerID:           customerID,
		VenueID:              venueID,
		Items:                params.Items,
		SubtotalCents:        subtotal,
		TipCents:             params.TipCents,
		DeliveryFeeCents:     models.DeliveryFeeCents,
		ServiceFeeCents:      models.ServiceFeeCents,
		TotalCents:           total,
		Payment:              params.Payment,
		Building:             params.Building,
		Room:                 params.Room,
		DeliveryInstructions: params.DeliveryInstructions,
		Pin:                  credentials.GeneratePin(),
		VerificationCode:     credentials.GenerateVerificationCode(),
		Status:               models.OrderStatusPending,
	}
	if params.Schedule != nil && params.Schedule.IsScheduled {
		t := params.Schedule.ScheduledFor
		order.IsScheduled = true
		order.ScheduledFor = &t
	}

	if _, err := os.repo.CreateOrder(ctx, order); err != nil {
		logger.Log.Error("order persist failed, keeping local order",
			zap.String("local_id", order.LocalID), zap.Error(err))
		order.CreatedAt = time.Now().UTC()
		return &CreateResult{
			Order:     order,
			Persisted: false,
			Warning:   "order saved locally only; workers may not see it until it is resubmitted",
		}, nil
	}

	os.publish(ctx, notify.EventInsert, *order)

	return &CreateResult{Order: order, Persisted: true}, nil
}

// ListCustomerOrders returns the customer's orders, newest first.
func (os *OrderService) ListCustomerOrders(ctx context.Context, customerID uint64) ([]models.Order, error) {
	if customerID == 0 {
		return nil, models.ErrNoIdentity
	}
	return os.repo.GetOrdersByCustomer(ctx, customerID)
}

// GetOrderForUser returns one order if the caller is its customer or
// its assigned worker.
func (os *OrderService) GetOrderForUser(ctx context.Context, orderID uint64, payload *models.TokenPayload) (*models.Order, error) {
	order, err := os.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID == payload.UserID {
		return order, nil
	}
	if order.WorkerID != nil && *order.WorkerID == payload.UserID {
		return order, nil
	}
	return nil, models.ErrOrderNotFound
}

// AdvanceStatus moves an order one step along
// claimed -> preparing -> delivering on behalf of the assigned worker.
func (os *OrderService) AdvanceStatus(ctx context.Context, orderID, workerID uint64, to string) (*models.Order, error) {
	if to != models.OrderStatusPreparing && to != models.OrderStatusDelivering {
		return nil, models.ErrInvalidTransition
	}

	order, err := os.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(order.Status, to) {
		return nil, models.ErrInvalidTransition
	}
	if err := os.repo.AdvanceStatus(ctx, orderID, workerID, order.Status, to); err != nil {
		return nil, err
	}

	order.Status = to
	os.publish(ctx, notify.EventUpdate, *order)

	return order, nil
}

// ConfirmDelivery resolves a typed PIN or scanned verification code to
// a still-deliverable order and marks it delivered. An unknown or
// already-used code returns models.ErrCodeNotFound; nothing is
// mutated in that case.
func (os *OrderService) ConfirmDelivery(ctx context.Context, code string) (*models.Order, error) {
	order, err := os.repo.GetDeliverableByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := os.repo.MarkDelivered(ctx, order.ID); err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusDelivered
	os.publish(ctx, notify.EventUpdate, *order)

	return order, nil
}

// Cancel cancels a non-terminal order on behalf of its customer.
func (os *OrderService) Cancel(ctx context.Context, orderID, customerID uint64) (*models.Order, error) {
	order, err := os.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, models.ErrOrderNotFound
	}
	if err := os.repo.CancelOrder(ctx, orderID); err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusCancelled
	os.publish(ctx, notify.EventUpdate, *order)

	return order, nil
}

// IsContention reports whether err means the job was claimed by
// another worker first.
func IsContention(err error) bool {
	return errors.Is(err, models.ErrOrderClaimed)
}
