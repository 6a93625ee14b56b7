package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubDashboardService lets each test pin the reporting behavior per method.
type stubDashboardService struct {
	expiringFn func(ctx context.Context, days int) ([]models.ExpiringMember, error)
	chartFn    func(ctx context.Context, start, end *time.Time) (*models.RevenueChart, error)
	exportFn   func(ctx context.Context, from, until *time.Time) (*models.ExportData, error)
}

var _ services.DashboardService = (*stubDashboardService)(nil)

func (s *stubDashboardService) OverallStats(ctx context.Context) (*models.OverallStats, error) {
	return &models.OverallStats{}, nil
}

func (s *stubDashboardService) RevenueStats(ctx context.Context) (*models.RevenueStats, error) {
	return &models.RevenueStats{}, nil
}

func (s *stubDashboardService) TopMembersByUsage(ctx context.Context, limit int) ([]models.TopMember, error) {
	return nil, nil
}

func (s *stubDashboardService) TopMembersBySpend(ctx context.Context, limit int) ([]models.TopMember, error) {
	return nil, nil
}

func (s *stubDashboardService) ExpiringMembers(ctx context.Context, days int) ([]models.ExpiringMember, error) {
	return s.expiringFn(ctx, days)
}

func (s *stubDashboardService) RevenueChart(ctx context.Context, start, end *time.Time) (*models.RevenueChart, error) {
	return s.chartFn(ctx, start, end)
}

func (s *stubDashboardService) Export(ctx context.Context, from, until *time.Time) (*models.ExportData, error) {
	return s.exportFn(ctx, from, until)
}

func newDashboardTestRouter(svc services.DashboardService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewDashboardHandler(svc)
	router.GET("/dashboard/members/expiring", h.GetExpiringMembers)
	router.GET("/dashboard/revenue/chart", h.GetRevenueChart)
	router.GET("/dashboard/export/csv", h.ExportCSV)
	router.GET("/dashboard/export/json", h.ExportJSON)
	return router
}

func TestGetExpiringMembersHandler(t *testing.T) {
	var gotDays int
	svc := &stubDashboardService{
		expiringFn: func(ctx context.Context, days int) ([]models.ExpiringMember, error) {
			gotDays = days
			return []models.ExpiringMember{
				{MemberID: primitive.NewObjectID(), FullName: "Ana Cruz", Mobile: "9171234567", DaysUntilExpiry: 5},
			}, nil
		},
	}
	router := newDashboardTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/members/expiring?days=14", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 14, gotDays)

	var resp struct {
		Items []models.ExpiringMember `json:"items"`
		Count int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "Ana Cruz", resp.Items[0].FullName)
}

func TestGetRevenueChartRejectsBadDate(t *testing.T) {
	svc := &stubDashboardService{
		chartFn: func(ctx context.Context, start, end *time.Time) (*models.RevenueChart, error) {
			t.Fatal("service must not be called on a malformed date")
			return nil, nil
		},
	}
	router := newDashboardTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/revenue/chart?start_date=yesterday", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportCSVHandler(t *testing.T) {
	endTime := time.Date(2026, 8, 12, 17, 30, 0, 0, time.UTC)
	svc := &stubDashboardService{
		exportFn: func(ctx context.Context, from, until *time.Time) (*models.ExportData, error) {
			return &models.ExportData{
				GeneratedAt: time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC),
				Members: []*models.Member{{
					ID: primitive.NewObjectID(), Mobile: "9171234567", FullName: "Ana Cruz",
					HoursGranted: 100, HoursUsed: 40,
					RegistrationDate: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
				}},
				Purchases: []*models.Purchase{{
					ID: primitive.NewObjectID(), MemberID: primitive.NewObjectID(),
					Mobile: "9171234567", PlanName: "100-Hour Pack", AmountPaid: 5000, HoursGranted: 100,
					PurchaseDate:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
					RolloverStatus: models.RolloverPending,
				}},
				Sessions: []*models.GamingSession{{
					ID: primitive.NewObjectID(), MemberID: primitive.NewObjectID(),
					Mobile: "9171234567", Status: models.SessionCompleted,
					StartTime: time.Date(2026, 8, 12, 14, 0, 0, 0, time.UTC),
					EndTime:   &endTime, HoursConsumed: 3.5,
				}},
			}, nil
		},
	}
	router := newDashboardTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/export/csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ledger-export-2026-08-30.csv")

	body := w.Body.String()
	assert.Contains(t, body, "=== MEMBERS ===")
	assert.Contains(t, body, "=== PURCHASES ===")
	assert.Contains(t, body, "=== SESSIONS ===")
	assert.Contains(t, body, "Ana Cruz")
	assert.Contains(t, body, "100-Hour Pack")
	assert.Contains(t, body, "3.50")
}

func TestExportJSONHandlerPassesDateRange(t *testing.T) {
	var gotFrom, gotUntil *time.Time
	svc := &stubDashboardService{
		exportFn: func(ctx context.Context, from, until *time.Time) (*models.ExportData, error) {
			gotFrom, gotUntil = from, until
			return &models.ExportData{GeneratedAt: time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)}, nil
		},
	}
	router := newDashboardTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/export/json?start_date=2026-08-01&end_date=2026-08-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotFrom)
	require.NotNil(t, gotUntil)
	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), *gotFrom)
	// The inclusive end date becomes a half-open upper bound one day later.
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), *gotUntil)
	assert.True(t, strings.Contains(w.Header().Get("Content-Disposition"), ".json"))
}
