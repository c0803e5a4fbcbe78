package handler

import (
	"context"
	"net/http"

	"campuseats/internal/models"
	"campuseats/internal/service"
)

type contextKey string

const (
	authPayloadKey contextKey = "auth_payload"
)

// AuthMiddleware gets the token from the cookie and passes its
// payload to the context
func AuthMiddleware(ts service.TokenService) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie("auth_token")
			if err != nil {
				http.Error(w, "can not get cookie", http.StatusUnauthorized)
				return
			}

			payload, err := ts.VerifyToken(cookie.Value)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), authPayloadKey, payload)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// getAuthPayload extracts authorization token payload from context
func getAuthPayload(ctx context.Context, key contextKey) (*models.TokenPayload, bool) {
	payload, ok := ctx.Value(key).(*models.TokenPayload)
	if !ok || payload == nil {
		return nil, false
	}
	return payload, true
}

// requireRole extracts the payload and rejects callers lacking role.
func requireRole(w http.ResponseWriter, r *http.Request, role string) (*models.TokenPayload, bool) {
	payload, ok := getAuthPayload(r.Context(), authPayloadKey)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	if payload.Role != role {
		http.Error(w, "forbidden", http.StatusForbidden)
		return nil, false
	}
	return payload, true
}
