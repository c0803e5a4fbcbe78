package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"campuseats/internal/models"
	"campuseats/internal/service"
)

type JobService interface {
	AvailableJobs(ctx context.Context) ([]models.Job, error)
	ScheduledJobs(ctx context.Context) ([]models.Job, error)
	Claim(ctx context.Context, orderID, workerID uint64) (*models.Order, error)
	WorkerEarnings(ctx context.Context, workerID uint64) (*service.Earnings, error)
}

// JobHandler represents HTTP handler for dasher-facing job requests
type JobHandler struct {
	svc JobService
}

// NewJobHandler creates new JobHandler instance
func NewJobHandler(svc JobService) *JobHandler {
	return &JobHandler{svc: svc}
}

type jobResponse struct {
	OrderID           uint64     `json:"order_id"`
	VenueName         string     `json:"venue_name"`
	VenueLocation     string     `json:"venue_location,omitempty"`
	ItemCount         int        `json:"item_count"`
	TotalCents        int64      `json:"total_cents"`
	TipCents          int64      `json:"tip_cents"`
	Building          string     `json:"building,omitempty"`
	Room              string     `json:"room,omitempty"`
	CreatedAt         string     `json:"created_at"`
	ScheduledFor      *time.Time `json:"scheduled_for,omitempty"`
	MinutesUntilReady int        `json:"minutes_until_ready,omitempty"`
}

func toJobResponses(jobs []models.Job) []jobResponse {
	resp := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		resp = append(resp, jobResponse{
			OrderID:           job.OrderID,
			VenueName:         job.VenueName,
			VenueLocation:     job.VenueLocation,
			ItemCount:         job.ItemCount,
			TotalCents:        job.TotalCents,
			TipCents:          job.TipCents,
			Building:          job.Building,
			Room:              job.Room,
			CreatedAt:         job.CreatedAt.Format(time.RFC3339),
			ScheduledFor:      job.ScheduledFor,
			MinutesUntilReady: job.MinutesUntilReady,
		})
	}
	return resp
}

// ListAvailableJobs returns the open job pool, oldest first
// 200 — jobs returned;
// 401 — unauthorized;
// 403 — caller is not a dasher;
// 500 — internal error.
func (jh *JobHandler) ListAvailableJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireRole(w, r, models.RoleDasher); !ok {
			return
		}

		jobs, err := jh.svc.AvailableJobs(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(toJobResponses(jobs))
	}
}

// ListScheduledJobs returns future-scheduled jobs, soonest first
// 200 — jobs returned;
// 401 — unauthorized;
// 403 — caller is not a dasher;
// 500 — internal error.
func (jh *JobHandler) ListScheduledJobs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireRole(w, r, models.RoleDasher); !ok {
			return
		}

		jobs, err := jh.svc.ScheduledJobs(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(toJobResponses(jobs))
	}
}

// ClaimJob conditionally claims an open job for the caller
// 200 — job claimed;
// 401 — unauthorized;
// 403 — caller is not a dasher;
// 404 — no such job;
// 409 — job already claimed by another dasher;
// 500 — internal error.
func (jh *JobHandler) ClaimJob() http.HandlerFunc {
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

		order, err := jh.svc.Claim(r.Context(), id, payload.UserID)
		if err != nil {
			switch {
			case errors.Is(err, models.ErrOrderClaimed):
				http.Error(w, "job is gone", http.StatusConflict)
			case errors.Is(err, models.ErrOrderNotFound):
				http.Error(w, "job not found", http.StatusNotFound)
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

type earningsResponse struct {
	TodayCount int   `json:"today_count"`
	WeekCount  int   `json:"week_count"`
	TotalCents int64 `json:"total_cents"`
}

// GetEarnings summarizes the caller's completed deliveries
// 200 — earnings returned;
// 401 — unauthorized;
// 403 — caller is not a dasher;
// 500 — internal error.
func (jh *JobHandler) GetEarnings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := requireRole(w, r, models.RoleDasher)
		if !ok {
			return
		}

		earnings, err := jh.svc.WorkerEarnings(r.Context(), payload.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(earningsResponse{
			TodayCount: earnings.TodayCount,
			WeekCount:  earnings.WeekCount,
			TotalCents: earnings.TotalCents,
		})
	}
}
