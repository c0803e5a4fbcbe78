package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"campuseats/internal/models"
)

type UserService interface {
	Register(ctx context.Context, login, password, role string) (*models.User, error)
	Login(ctx context.Context, login, password string) (string, error)
	PaymentProfile(ctx context.Context, userID uint64) (flexCents int64, swipes int, err error)
}

// UserHandler represents HTTP handler for account-related requests
type UserHandler struct {
	svc UserService
}

// NewUserHandler creates new UserHandler instance
func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type registerRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterUser registers a customer or dasher account
// 201 — account created;
// 400 — bad request;
// 409 — login already taken;
// 500 — internal error.
func (uh *UserHandler) RegisterUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		if req.Role == "" {
			req.Role = models.RoleCustomer
		}

		_, err := uh.svc.Register(r.Context(), req.Login, req.Password, req.Role)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrConflictData):
				http.Error(w, "login already taken", http.StatusConflict)
			case errors.Is(err, models.ErrInvalidCredentials):
				http.Error(w, "bad request", http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		w.WriteHeader(http.StatusCreated)
	}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginUser authenticates and sets the auth cookie
// 200 — authenticated;
// 400 — bad request;
// 401 — invalid login or password;
// 500 — internal error.
func (uh *UserHandler) LoginUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		token, err := uh.svc.Login(r.Context(), req.Login, req.Password)
		if err != nil {
			if errors.Is(err, models.ErrInvalidCredentials) {
				http.Error(w, "invalid login or password", http.StatusUnauthorized)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "auth_token",
			Value:    token,
			Path:     "/",
			HttpOnly: true,
		})
		w.WriteHeader(http.StatusOK)
	}
}

type paymentProfileResponse struct {
	FlexCents       int64 `json:"flex_cents"`
	SwipesRemaining int   `json:"swipes_remaining"`
}

// GetPaymentProfile returns the caller's meal-plan standing
// 200 — profile returned;
// 401 — unauthorized;
// 500 — internal error.
func (uh *UserHandler) GetPaymentProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		flex, swipes, err := uh.svc.PaymentProfile(r.Context(), payload.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(paymentProfileResponse{
			FlexCents:       flex,
			SwipesRemaining: swipes,
		})
	}
}
