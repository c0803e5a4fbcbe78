// Package coordinator owns the client-side view of the order store:
// one customer's orders, or the marketplace of open jobs for a dasher.
// Two channels feed it — a push subscription and a polling safety
// net — and both converge on a single merge point, applyRemoteOrder.
package coordinator

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"campuseats/internal/localstore"
	"campuseats/internal/logger"
	"campuseats/internal/models"
	"campuseats/internal/notify"
)

// default poll intervals per role
const (
	DefaultCustomerPollInterval = 15 * time.Second
	DefaultWorkerPollInterval   = 10 * time.Second
)

// Role selects which slice of the order store a coordinator mirrors.
type Role int

const (
	RoleCustomer Role = iota
	RoleWorker
)

// Store is the order store contract the coordinator depends on. Any
// backend satisfying it can be substituted.
type Store interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	GetOrdersByCustomer(ctx context.Context, customerID uint64) ([]models.Order, error)
	GetAvailableOrders(ctx context.Context) ([]models.Order, error)
	ClaimOrder(ctx context.Context, orderID, workerID uint64) (*models.Order, error)
	AdvanceStatus(ctx context.Context, orderID, workerID uint64, from, to string) error
	GetDeliverableByCode(ctx context.Context, code string) (*models.Order, error)
	MarkDelivered(ctx context.Context, orderID uint64) error
}

// Subscriber is the push channel. Delivery is best-effort: the
// coordinator never assumes an event will arrive and polls regardless.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan notify.OrderEvent, error)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPollInterval overrides the role default poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Coordinator) { c.pollInterval = d }
}

// WithOnChange registers a callback invoked whenever a cached order's
// status changes. It runs on the coordinator's update goroutines and
// must not block.
func WithOnChange(fn func(models.Order)) Option {
	return func(c *Coordinator) { c.onChange = fn }
}

// WithScratch persists the session's orders to a local scratch store
// under identity, so unpersisted orders survive a restart. The scratch
// copy is a convenience; refreshes from the store still win.
func WithScratch(s *localstore.Store, identity string) Option {
	return func(c *Coordinator) {
		c.scratch = s
		c.identity = identity
	}
}

// Coordinator reconciles the local order cache with the store. One
// instance per client session; constructor-injected dependencies, no
// ambient singletons.
type Coordinator struct {
	store        Store
	sub          Subscriber
	role         Role
	userID       uint64
	pollInterval time.Duration
	onChange     func(models.Order)
	scratch      *localstore.Store
	identity     string

	mu     sync.Mutex
	cache  map[uint64]models.Order // authoritative rows by backend id
	local  map[string]models.Order // unpersisted orders by local id
	pool   map[uint64]models.Order // worker role: open job pool
	closed bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCustomer creates a coordinator mirroring one customer's orders.
func NewCustomer(store Store, sub Subscriber, customerID uint64, opts ...Option) *Coordinator {
	c := newCoordinator(store, sub, RoleCustomer, customerID)
	c.pollInterval = DefaultCustomerPollInterval
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewWorker creates a coordinator mirroring the open job pool for a
// dasher.
func NewWorker(store Store, sub Subscriber, workerID uint64, opts ...Option) *Coordinator {
	c := newCoordinator(store, sub, RoleWorker, workerID)
	c.pollInterval = DefaultWorkerPollInterval
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newCoordinator(store Store, sub Subscriber, role Role, userID uint64) *Coordinator {
	return &Coordinator{
		store:  store,
		sub:    sub,
		role:   role,
		userID: userID,
		cache:  make(map[uint64]models.Order),
		local:  make(map[string]models.Order),
		pool:   make(map[uint64]models.Order),
	}
}

// Run performs an initial refresh, then keeps the cache converged via
// the push subscription and the poll ticker until ctx is done or Stop
// is called.
func (c *Coordinator) Run(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	c.restoreScratch()

	if err := c.Refresh(ctx); err != nil {
		logger.Log.Warn("coordinator initial refresh failed", zap.Error(err))
	}

	if c.sub != nil {
		events, err := c.sub.Subscribe(ctx)
		if err != nil {
			// push channel is an optimization; polling still converges
			logger.Log.Warn("coordinator subscribe failed, relying on polling", zap.Error(err))
		} else {
			c.wg.Add(1)
			go func() {
				defer c.wg.Done()
				for ev := range events {
					if c.relevant(ev.Order) {
						c.applyRemoteOrder(ev.Order)
					}
				}
			}()
		}
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.Refresh(ctx); err != nil {
					logger.Log.Debug("coordinator poll failed", zap.Error(err))
				}
			}
		}
	}()

	return nil
}

// Stop tears the coordinator down. Responses still in flight are
// discarded; the cache no longer mutates.
func (c *Coordinator) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.persistScratch()
}

// restoreScratch seeds the cache from the scratch file. Rows with a
// backend id are stale copies the next refresh will overwrite; rows
// without one are unpersisted local orders being carried across
// restarts.
func (c *Coordinator) restoreScratch() {
	if c.scratch == nil {
		return
	}
	for _, order := range c.scratch.LoadOrders(c.identity) {
		if order.ID != 0 {
			c.applyRemoteOrder(order)
			continue
		}
		if order.LocalID != "" {
			c.mu.Lock()
			if !c.closed {
				c.local[order.LocalID] = order
			}
			c.mu.Unlock()
		}
	}
}

func (c *Coordinator) persistScratch() {
	if c.scratch == nil {
		return
	}
	if err := c.scratch.SaveOrders(c.identity, c.Orders()); err != nil {
		logger.Log.Debug("scratch save failed", zap.Error(err))
	}
}

// relevant filters push events to this coordinator's predicate:
// customers watch their own orders, workers watch everything touching
// the pool plus their own claimed jobs.
func (c *Coordinator) relevant(order models.Order) bool {
	if c.role == RoleCustomer {
		return order.CustomerID == c.userID
	}
	return true
}

// Refresh re-fetches this coordinator's slice of the store and merges
// it into the cache. For workers the pool view is replaced wholesale,
// so jobs claimed elsewhere disappear even if their push event was
// lost.
func (c *Coordinator) Refresh(ctx context.Context) error {
	switch c.role {
	case RoleCustomer:
		orders, err := c.store.GetOrdersByCustomer(ctx, c.userID)
		if err != nil {
			return err
		}
		for _, order := range orders {
			c.applyRemoteOrder(order)
		}
	case RoleWorker:
		orders, err := c.store.GetAvailableOrders(ctx)
		if err != nil {
			return err
		}
		c.replacePool(orders)
	}
	return nil
}

func poolEligible(order models.Order) bool {
	return order.Status == models.OrderStatusPending && order.WorkerID == nil
}

func (c *Coordinator) replacePool(orders []models.Order) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pool = make(map[uint64]models.Order, len(orders))
	for _, order := range orders {
		c.pool[order.ID] = order
	}
	c.mu.Unlock()

	for _, order := range orders {
		c.applyRemoteOrder(order)
	}
}

// applyRemoteOrder is the single merge point: every row arriving from
// either channel lands here. No version tokens are compared; the last
// arrival wins. Whole rows replace cached rows, never partial field
// merges.
func (c *Coordinator) applyRemoteOrder(order models.Order) {
	c.mu.Lock()
	if c.closed || order.ID == 0 {
		c.mu.Unlock()
		return
	}

	prev, known := c.cache[order.ID]
	c.cache[order.ID] = order

	// the authoritative row supersedes any local tentative version
	if order.LocalID != "" {
		delete(c.local, order.LocalID)
	}

	if poolEligible(order) {
		c.pool[order.ID] = order
	} else {
		delete(c.pool, order.ID)
	}

	changed := !known || prev.Status != order.Status
	fn := c.onChange
	c.mu.Unlock()

	if changed && fn != nil {
		fn(order)
	}
}

// Orders returns the cached orders for this session, newest first,
// including unpersisted local-only orders.
func (c *Coordinator) Orders() []models.Order {
	c.mu.Lock()
	orders := make([]models.Order, 0, len(c.cache)+len(c.local))
	for _, order := range c.cache {
		orders = append(orders, order)
	}
	for _, order := range c.local {
		orders = append(orders, order)
	}
	c.mu.Unlock()

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}

// Order returns one cached order by backend id.
func (c *Coordinator) Order(id uint64) (models.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	order, ok := c.cache[id]
	return order, ok
}

// Jobs returns the open job pool, oldest first.
func (c *Coordinator) Jobs() []models.Order {
	c.mu.Lock()
	jobs := make([]models.Order, 0, len(c.pool))
	for _, order := range c.pool {
		jobs = append(jobs, order)
	}
	c.mu.Unlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs
}

// CreateOrder persists a new order through the store. On persistence
// failure the order is kept as a local tentative row so the customer
// still sees it; ok reports whether the store accepted it.
func (c *Coordinator) CreateOrder(ctx context.Context, order models.Order) (persisted bool, err error) {
	created, err := c.store.CreateOrder(ctx, &order)
	if err != nil {
		c.mu.Lock()
		if !c.closed && order.LocalID != "" {
			if order.CreatedAt.IsZero() {
				order.CreatedAt = time.Now().UTC()
			}
			c.local[order.LocalID] = order
		}
		c.mu.Unlock()
		c.persistScratch()
		return false, err
	}

	c.applyRemoteOrder(*created)
	c.persistScratch()
	return true, nil
}

// Claim attempts the conditional claim. On success the job leaves the
// pool immediately; on contention the pool is re-fetched so the
// now-claimed job disappears from this view too.
func (c *Coordinator) Claim(ctx context.Context, orderID uint64) (*models.Order, error) {
	claimed, err := c.store.ClaimOrder(ctx, orderID, c.userID)
	if err != nil {
		if errors.Is(err, models.ErrOrderClaimed) || errors.Is(err, models.ErrOrderNotFound) {
			if rerr := c.Refresh(ctx); rerr != nil {
				logger.Log.Debug("pool refresh after lost claim failed", zap.Error(rerr))
			}
		}
		return nil, err
	}

	c.applyRemoteOrder(*claimed)
	return claimed, nil
}

// Advance moves a claimed job one step along the delivery path.
func (c *Coordinator) Advance(ctx context.Context, orderID uint64, to string) error {
	c.mu.Lock()
	order, ok := c.cache[orderID]
	c.mu.Unlock()
	if !ok {
		return models.ErrOrderNotFound
	}
	if !models.CanTransition(order.Status, to) {
		return models.ErrInvalidTransition
	}

	if err := c.store.AdvanceStatus(ctx, orderID, c.userID, order.Status, to); err != nil {
		return err
	}

	order.Status = to
	c.applyRemoteOrder(order)
	return nil
}

// ConfirmDelivery resolves a PIN or verification code to an order and
// marks it delivered. Locally cached orders are checked first; a miss
// falls back to a remote lookup. An unknown or spent code returns
// models.ErrCodeNotFound without mutating anything.
func (c *Coordinator) ConfirmDelivery(ctx context.Context, code string) (*models.Order, error) {
	order, ok := c.lookupByCode(code)
	if !ok {
		remote, err := c.store.GetDeliverableByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		order = *remote
	}

	if err := c.store.MarkDelivered(ctx, order.ID); err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusDelivered
	c.applyRemoteOrder(order)
	return &order, nil
}

func (c *Coordinator) lookupByCode(code string) (models.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, order := range c.cache {
		if models.Deliverable(order.Status) && (order.Pin == code || order.VerificationCode == code) {
			return order, true
		}
	}
	return models.Order{}, false
}
