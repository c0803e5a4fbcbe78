package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campuseats/internal/handler/http/mocks"
	"campuseats/internal/models"
	"campuseats/internal/service"
)

func TestJobHandler_ListAvailableJobs(t *testing.T) {
	createdAt := time.Now()
	tests := []struct {
		name           string
		token          *models.TokenPayload
		setup          func(t *testing.T) *mocks.MockJobService
		wantStatusCode int
		wantBody       []jobResponse
	}{
		{
			// 200 — jobs returned.
			name: "valid_request_return_200",
			token: &models.TokenPayload{
				UserID: 3,
				Role:   models.RoleDasher,
			},
			setup: func(t *testing.T) *mocks.MockJobService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockJobService(ctrl)
				svcMock.EXPECT().AvailableJobs(gomock.Any()).Return([]models.Job{
					{
						OrderID:    4,
						VenueName:  "Chick fil A",
						ItemCount:  2,
						TotalCents: 1949,
						TipCents:   300,
						Building:   "Sherman Hall",
						Room:       "214",
						CreatedAt:  createdAt,
					},
				}, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
			wantBody: []jobResponse{{
				OrderID:    4,
				VenueName:  "Chick fil A",
				ItemCount:  2,
				TotalCents: 1949,
				TipCents:   300,
				Building:   "Sherman Hall",
				Room:       "214",
				CreatedAt:  createdAt.Format(time.RFC3339),
			}},
		},
		{
			// 401 — unauthorized.
			name: "unauthorized_request_return_401",
			setup: func(t *testing.T) *mocks.MockJobService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockJobService(ctrl)
				svcMock.EXPECT().AvailableJobs(gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			// 403 — customers cannot browse the job pool.
			name: "customer_token_return_403",
			token: &models.TokenPayload{
				UserID: 1,
				Role:   models.RoleCustomer,
			},
			setup: func(t *testing.T) *mocks.MockJobService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockJobService(ctrl)
				svcMock.EXPECT().AvailableJobs(gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			// 500 — internal error.
			name: "internal_error_return_500",
			token: &models.TokenPayload{
				UserID: 3,
				Role:   models.RoleDasher,
			},
			setup: func(t *testing.T) *mocks.MockJobService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockJobService(ctrl)
				svcMock.EXPECT().AvailableJobs(gomock.Any()).Return(nil, models.ErrInternalError).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, "/api/jobs", nil)
			if err != nil {
				t.Fatal("cannot create request", zap.Error(err))
			}

			w := httptest.NewRecorder()
			st := tt.setup(t)
			ctx := context.WithValue(req.Context(), authPayloadKey, tt.token)

			handler := NewJobHandler(st)
			h := handler.ListAvailableJobs()
			h(w, req.WithContext(ctx))

			res := w.Result()
			defer res.Body.Close()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
			resBody, err := io.ReadAll(res.Body)
			require.NoError(t, err)

			if tt.wantBody != nil {
				var got []jobResponse
				err = json.Unmarshal(resBody, &got)
				require.NoError(t, err)

				if diff := cmp.Diff(tt.wantBody, got); diff != "" {
					t.Errorf("mismatch (-want +got):\n%s", diff)
				}
			}
		})
	}
}

func TestJobHandler_ClaimJob(t *testing.T) {
	tests := []struct {
		name           string
		token          *models.TokenPayload
		setup          func(t *testing.T) *mocks.MockJobService
		wantStatusCode int
	}{
		{
			// 200 — job claimed.
			name: "valid_request_return_200",
			token: &models.TokenPayload{
				UserID: 3,
				Role:   models.RoleDasher,
			},
			setup: func(t *testing.T) *mocks.MockJobService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				workerID := uint64(3)
				svcMock := mocks.NewMockJobService(ctrl)
				svcMock.EXPECT().Claim(gomock.Any(), uint64(4), uint64(3)).Return(&models.Order{
					ID:       4,
					WorkerID: &workerID,
					Status:   models.OrderStatusClaimed,
				}, nil).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusOK,
		},
		{
			// 409 — another dasher got there first.
			name: "contended_claim_return_409",
			token: &models.TokenPayload{
				UserID: 3,
				Role:   models.RoleDasher,
			},
			setup: func(t *testing.T) *mocks.MockJobService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockJobService(ctrl)
				svcMock.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrOrderClaimed).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusConflict,
		},
		{
			// 404 — no such job.
			name: "missing_job_return_404",
			token: &models.TokenPayload{
				UserID: 3,
				Role:   models.RoleDasher,
			},
			setup: func(t *testing.T) *mocks.MockJobService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockJobService(ctrl)
				svcMock.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, models.ErrOrderNotFound).AnyTimes()
				return svcMock
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			// 403 — customers cannot claim jobs.
			name: "customer_token_return_403",
			token: &models.TokenPayload{
				UserID: 1,
				Role:   models.RoleCustomer,
			},
			setup: func(t *testing.T) *mocks.MockJobService {

				ctrl := gomock.NewController(t)
				defer ctrl.Finish()

				svcMock := mocks.NewMockJobService(ctrl)
				svcMock.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
				return svcMock
			},
			wantStatusCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, "/api/jobs/4/claim", nil)
			if err != nil {
				t.Fatal("cannot create request", zap.Error(err))
			}

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "4")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, authPayloadKey, tt.token)

			w := httptest.NewRecorder()
			st := tt.setup(t)

			handler := NewJobHandler(st)
			h := handler.ClaimJob()
			h(w, req.WithContext(ctx))

			res := w.Result()
			assert.Equal(t, tt.wantStatusCode, res.StatusCode)
			defer res.Body.Close()
		})
	}
}

func TestJobHandler_GetEarnings(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svcMock := mocks.NewMockJobService(ctrl)
	svcMock.EXPECT().WorkerEarnings(gomock.Any(), uint64(3)).Return(&service.Earnings{
		TodayCount: 2,
		WeekCount:  5,
		TotalCents: 2495,
	}, nil)

	req, err := http.NewRequest(http.MethodGet, "/api/dasher/earnings", nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	ctx := context.WithValue(req.Context(), authPayloadKey, &models.TokenPayload{UserID: 3, Role: models.RoleDasher})

	h := NewJobHandler(svcMock).GetEarnings()
	h(w, req.WithContext(ctx))

	res := w.Result()
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	var got earningsResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&got))

	want := earningsResponse{TodayCount: 2, WeekCount: 5, TotalCents: 2495}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
