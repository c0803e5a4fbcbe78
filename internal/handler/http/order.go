package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"campuseats/internal/models"
	"campuseats/internal/service"
)

type OrderService interface {
	Create(ctx context.Context, customerID uint64, params service.CreateOrderParams) (*service.CreateResult, error)
	ListCustomerOrders(ctx context.Context, customerID uint64) ([]models.Order, error)
	GetOrderForUser(ctx context.Context, orderID uint64, payload *models.TokenPayload) (*models.Order, error)
	AdvanceStatus(ctx context.Context, orderID, workerID uint64, to string) (*models.Order, error)
	ConfirmDelivery(ctx context.Context, code string) (*models.Order, error)
	Cancel(ctx context.Context, orderID, customerID uint64) (*models.Order, error)
}

// OrderHandler represents HTTP handler for order-related requests
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type createOrderRequest struct {
	VenueRef             string              `json:"venue_ref"`
	Items                []models.OrderItem  `json:"items"`
	TipCents             int64               `json:"tip_cents"`
	Building             string              `json:"building"`
	Room                 string              `json:"room"`
	DeliveryInstructions string              `json:"delivery_instructions"`
	Payment              *models.PaymentInfo `json:"payment,omitempty"`
	IsScheduled          bool                `json:"is_scheduled"`
	ScheduledFor         *time.Time          `json:"scheduled_for,omitempty"`
}

type createOrderResponse struct {
	Order     models.Order `json:"order"`
	Persisted bool         `json:"persisted"`
	Warning   string       `json:"warning,omitempty"`
}

// CreateOrder places a new order for the authenticated customer
// 201 — order created (persisted flag says whether workers will see it);
// 400 — bad request / empty cart;
// 401 — unauthorized;
// 422 — invalid payment breakdown;
// 500 — internal error.
func (oh *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := requireRole(w, r, models.RoleCustomer)
		if !ok {
			return
		}

		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		params := service.CreateOrderParams{
			VenueRef:             req.VenueRef,
			Items:                req.Items,
			TipCents:             req.TipCents,
			Building:             req.Building,
			Room:                 req.Room,
			DeliveryInstructions: req.DeliveryInstructions,
			Payment:              req.Payment,
		}
		if req.IsScheduled && req.ScheduledFor != nil {
			params.Schedule = &service.ScheduleInfo{IsScheduled: true, ScheduledFor: *req.ScheduledFor}
		}

		result, err := oh.svc.Create(r.Context(), payload.UserID, params)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrNoIdentity):
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			case errors.Is(err, models.ErrEmptyCart):
				http.Error(w, "cart is empty", http.StatusBadRequest)
			case errors.Is(err, models.ErrInvalidPayment):
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(createOrderResponse{
			Order:     *result.Order,
			Persisted: result.Persisted,
			Warning:   result.Warning,
		})
	}
}

// ListOrders returns the customer's orders, newest first
// 200 — orders returned;
// 204 — no orders;
// 401 — unauthorized;
// 500 — internal error.
func (oh *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := requireRole(w, r, models.RoleCustomer)
		if !ok {
			return
		}

		orders, err := oh.svc.ListCustomerOrders(r.Context(), payload.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if len(orders) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(orders)
	}
}

func orderIDParam(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
}

// GetOrder returns one order visible to the caller
// 200 — order returned;
// 401 — unauthorized;
// 404 — not found or not the caller's order;
// 500 — internal error.
func (oh *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, err := orderIDParam(r)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		order, err := oh.svc.GetOrderForUser(r.Context(), id, payload)
		if err != nil {
			if errors.Is(err, models.ErrOrderNotFound) {
				http.Error(w, "order not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(order)
	}
}

type advanceStatusRequest struct {
	Status string `json:"status"`
}

// AdvanceOrderStatus moves a claimed order along the delivery path
// 200 — status advanced;
// 401 — unauthorized;
// 403 — caller is not the assigned worker;
// 404 — order not found;
// 409 — transition not allowed from the current status;
// 500 — internal error.
func (oh *OrderHandler) AdvanceOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := requireRole(w, r, models.RoleDasher)
		if !ok {
			return
		}

		id, err := orderIDParam(r)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var req advanceStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		order, err := oh.svc.AdvanceStatus(r.Context(), id, payload.UserID, req.Status)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrOrderNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrNotAssignedWorker):
				http.Error(w, "not the assigned worker", http.StatusForbidden)
			case errors.Is(err, models.ErrInvalidTransition):
				http.Error(w, "invalid status transition", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(order)
	}
}

// CancelOrder cancels a non-terminal order
// 200 — cancelled;
// 401 — unauthorized;
// 404 — not found or not the caller's order;
// 409 — already delivered or cancelled;
// 500 — internal error.
func (oh *OrderHandler) CancelOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := requireRole(w, r, models.RoleCustomer)
		if !ok {
			return
		}

		id, err := orderIDParam(r)
		if err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		order, err := oh.svc.Cancel(r.Context(), id, payload.UserID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrOrderNotFound):
				http.Error(w, "order not found", http.StatusNotFound)
			case errors.Is(err, models.ErrInvalidTransition):
				http.Error(w, "order already completed", http.StatusConflict)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(order)
	}
}

type confirmDeliveryRequest struct {
	Code string `json:"code"`
}

type confirmDeliveryResponse struct {
	OrderID uint64 `json:"order_id"`
	Status  string `json:"status"`
}

// ConfirmDelivery marks an order delivered by PIN or scanned code
// 200 — delivery confirmed;
// 400 — bad request;
// 401 — unauthorized;
// 404 — code invalid or order already delivered;
// 500 — internal error.
func (oh *OrderHandler) ConfirmDelivery() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req confirmDeliveryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		order, err := oh.svc.ConfirmDelivery(r.Context(), req.Code)
		if err != nil {
			if errors.Is(err, models.ErrCodeNotFound) {
				http.Error(w, "code invalid or order already delivered", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(confirmDeliveryResponse{
			OrderID: order.ID,
			Status:  order.Status,
		})
	}
}
