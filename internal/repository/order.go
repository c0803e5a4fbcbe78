package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"campuseats/internal/models"
	"campuseats/internal/repository/postgres"
)

const orderColumns = `id, local_id, customer_id, worker_id, venue_id, items_json,
						subtotal_cents, tip_cents, delivery_fee_cents, service_fee_cents, total_cents,
						payment_json, building, room, delivery_instructions,
						is_scheduled, scheduled_for, pin, verification_code, status, created_at`

const (
	insertOrderQuery = `
						INSERT INTO orders (local_id, customer_id, venue_id, items_json,
							subtotal_cents, tip_cents, delivery_fee_cents, service_fee_cents, total_cents,
							payment_json, building, room, delivery_instructions,
							is_scheduled, scheduled_for, pin, verification_code, status)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
						RETURNING id, created_at
`
	selectOrderByIDQuery = `
						SELECT ` + orderColumns + ` FROM orders
						WHERE id = $1
`
	selectOrdersByCustomerQuery = `
						SELECT ` + orderColumns + ` FROM orders
						WHERE customer_id = $1
						ORDER BY created_at DESC
`
	selectAvailableOrdersQuery = `
						SELECT ` + orderColumns + ` FROM orders
						WHERE status = 'pending' AND worker_id IS NULL
							AND NOT (is_scheduled AND scheduled_for > now())
						ORDER BY created_at ASC
`
	selectScheduledOrdersQuery = `
						SELECT ` + orderColumns + ` FROM orders
						WHERE status = 'pending' AND worker_id IS NULL
							AND is_scheduled AND scheduled_for > now()
						ORDER BY scheduled_for ASC
`
	claimOrderQuery = `
						UPDATE orders
						SET worker_id = $2, status = 'claimed'
						WHERE id = $1 AND worker_id IS NULL AND status = 'pending'
						RETURNING ` + orderColumns + `
`
	advanceStatusQuery = `
						UPDATE orders
						SET status = $4
						WHERE id = $1 AND worker_id = $2 AND status = $3
`
	selectDeliverableByCodeQuery = `
						SELECT ` + orderColumns + ` FROM orders
						WHERE (pin = $1 OR verification_code = $1)
							AND status IN ('pending', 'claimed', 'preparing', 'delivering')
`
	markDeliveredQuery = `
						UPDATE orders
						SET status = 'delivered'
						WHERE id = $1 AND status IN ('pending', 'claimed', 'preparing', 'delivering')
`
	cancelOrderQuery = `
						UPDATE orders
						SET status = 'cancelled'
						WHERE id = $1 AND status NOT IN ('delivered', 'cancelled')
`
	selectDeliveredByWorkerQuery = `
						SELECT ` + orderColumns + ` FROM orders
						WHERE worker_id = $1 AND status = 'delivered'
						ORDER BY created_at DESC
`
)

// OrderRepository persists orders in Postgres.
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		order       models.Order
		itemsJSON   []byte
		paymentJSON []byte
	)
	err := row.Scan(&order.ID, &order.LocalID, &order.CustomerID, &order.WorkerID, &order.VenueID, &itemsJSON,
		&order.SubtotalCents, &order.TipCents, &order.DeliveryFeeCents, &order.ServiceFeeCents, &order.TotalCents,
		&paymentJSON, &order.Building, &order.Room, &order.DeliveryInstructions,
		&order.IsScheduled, &order.ScheduledFor, &order.Pin, &order.VerificationCode, &order.Status, &order.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	if len(paymentJSON) > 0 {
		order.Payment = &models.PaymentInfo{}
		if err := json.Unmarshal(paymentJSON, order.Payment); err != nil {
			return nil, fmt.Errorf("decode order payment: %w", err)
		}
	}
	return &order, nil
}

// CreateOrder inserts a new order and fills in the store-assigned id
// and creation time.
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("encode order items: %w", err)
	}
	var paymentJSON []byte
	if order.Payment != nil {
		paymentJSON, err = json.Marshal(order.Payment)
		if err != nil {
			return nil, fmt.Errorf("encode order payment: %w", err)
		}
	}

	err = or.db.QueryRow(ctx, insertOrderQuery,
		order.LocalID, order.CustomerID, order.VenueID, itemsJSON,
		order.SubtotalCents, order.TipCents, order.DeliveryFeeCents, order.ServiceFeeCents, order.TotalCents,
		paymentJSON, order.Building, order.Room, order.DeliveryInstructions,
		order.IsScheduled, order.ScheduledFor, order.Pin, order.VerificationCode, order.Status,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		if errCode := or.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return order, nil
}

// GetOrderByID returns an order by its backend id.
func (or *OrderRepository) GetOrderByID(ctx context.Context, id uint64) (*models.Order, error) {
	order, err := scanOrder(or.db.QueryRow(ctx, selectOrderByIDQuery, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, models.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (or *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := or.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			continue
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// GetOrdersByCustomer gets a customer's orders, newest first.
func (or *OrderRepository) GetOrdersByCustomer(ctx context.Context, customerID uint64) ([]models.Order, error) {
	return or.queryOrders(ctx, selectOrdersByCustomerQuery, customerID)
}

// GetAvailableOrders returns unclaimed pending orders, oldest first.
// Scheduled orders with a future ready time are excluded.
func (or *OrderRepository) GetAvailableOrders(ctx context.Context) ([]models.Order, error) {
	return or.queryOrders(ctx, selectAvailableOrdersQuery)
}

// GetScheduledOrders returns unclaimed orders scheduled for the
// future, soonest first.
func (or *OrderRepository) GetScheduledOrders(ctx context.Context) ([]models.Order, error) {
	return or.queryOrders(ctx, selectScheduledOrdersQuery)
}

// ClaimOrder assigns the order to workerID. The update is conditional
// on the order still being unclaimed; a lost race returns
// models.ErrOrderClaimed.
func (or *OrderRepository) ClaimOrder(ctx context.Context, orderID, workerID uint64) (*models.Order, error) {
	order, err := scanOrder(or.db.QueryRow(ctx, claimOrderQuery, orderID, workerID))
	if err == nil {
		return order, nil
	}
	if !postgres.IsNoRows(err) {
		return nil, err
	}

	// no row updated: claimed by someone else, or gone entirely
	if _, err := or.GetOrderByID(ctx, orderID); err != nil {
		return nil, err
	}
	return nil, models.ErrOrderClaimed
}

// AdvanceStatus moves an order from one status to the next on behalf
// of its assigned worker. The update is conditional on the expected
// current status.
func (or *OrderRepository) AdvanceStatus(ctx context.Context, orderID, workerID uint64, from, to string) error {
	cmd, err := or.db.Exec(ctx, advanceStatusQuery, orderID, workerID, from, to)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	order, err := or.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.WorkerID == nil || *order.WorkerID != workerID {
		return models.ErrNotAssignedWorker
	}
	return models.ErrInvalidTransition
}

// GetDeliverableByCode looks up a still-deliverable order by PIN or
// verification code.
func (or *OrderRepository) GetDeliverableByCode(ctx context.Context, code string) (*models.Order, error) {
	order, err := scanOrder(or.db.QueryRow(ctx, selectDeliverableByCodeQuery, code))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, models.ErrCodeNotFound
		}
		return nil, err
	}
	return order, nil
}

// MarkDelivered sets the order delivered if it is still deliverable.
func (or *OrderRepository) MarkDelivered(ctx context.Context, orderID uint64) error {
	cmd, err := or.db.Exec(ctx, markDeliveredQuery, orderID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrCodeNotFound
	}
	return nil
}

// CancelOrder cancels the order unless it is already terminal.
func (or *OrderRepository) CancelOrder(ctx context.Context, orderID uint64) error {
	cmd, err := or.db.Exec(ctx, cancelOrderQuery, orderID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return models.ErrInvalidTransition
	}
	return nil
}

// GetDeliveredByWorker returns a dasher's completed deliveries, newest
// first.
func (or *OrderRepository) GetDeliveredByWorker(ctx context.Context, workerID uint64) ([]models.Order, error) {
	return or.queryOrders(ctx, selectDeliveredByWorkerQuery, workerID)
}
