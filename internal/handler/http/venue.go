package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"campuseats/internal/models"
)

type VenueService interface {
	ListVenues(ctx context.Context) ([]models.Venue, error)
}

// VenueHandler serves the campus venue catalog.
type VenueHandler struct {
	svc VenueService
}

// NewVenueHandler creates new VenueHandler instance
func NewVenueHandler(svc VenueService) *VenueHandler {
	return &VenueHandler{svc: svc}
}

type venueResponse struct {
	ID        uint64 `json:"id"`
	Ref       string `json:"ref"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	SwipeDeal bool   `json:"swipe_deal"`
}

// ListVenues returns all venues
// 200 — venues returned;
// 500 — internal error.
func (vh *VenueHandler) ListVenues() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		venues, err := vh.svc.ListVenues(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp := make([]venueResponse, 0, len(venues))
		for _, venue := range venues {
			resp = append(resp, venueResponse{
				ID:        venue.ID,
				Ref:       venue.Ref,
				Name:      venue.Name,
				Location:  venue.Location,
				SwipeDeal: venue.SwipeDeal,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
