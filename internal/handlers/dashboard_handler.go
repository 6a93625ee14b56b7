package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/services"
)

// DashboardHandler handles reporting HTTP requests
type DashboardHandler struct {
	dashboardService services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetOverallStats handles GET /dashboard/stats
func (h *DashboardHandler) GetOverallStats(c *gin.Context) {
	stats, err := h.dashboardService.OverallStats(c)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetRevenueStats handles GET /dashboard/revenue
func (h *DashboardHandler) GetRevenueStats(c *gin.Context) {
	stats, err := h.dashboardService.RevenueStats(c)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetTopMembersByUsage handles GET /dashboard/top-usage
func (h *DashboardHandler) GetTopMembersByUsage(c *gin.Context) {
	limit := limitQuery(c, 10)

	members, err := h.dashboardService.TopMembersByUsage(c, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

// GetTopMembersBySpend handles GET /dashboard/top-spend
func (h *DashboardHandler) GetTopMembersBySpend(c *gin.Context) {
	limit := limitQuery(c, 10)

	members, err := h.dashboardService.TopMembersBySpend(c, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

// GetExpiringMembers handles GET /dashboard/members/expiring
func (h *DashboardHandler) GetExpiringMembers(c *gin.Context) {
	// Garbage or missing days falls back to the configured default.
	days, err := strconv.Atoi(c.DefaultQuery("days", "0"))
	if err != nil || days < 0 {
		days = 0
	}

	members, err := h.dashboardService.ExpiringMembers(c, days)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": members, "count": len(members)})
}

// GetRevenueChart handles GET /dashboard/revenue/chart
func (h *DashboardHandler) GetRevenueChart(c *gin.Context) {
	start, ok := dateQuery(c, "start_date")
	if !ok {
		return
	}
	end, ok := dateQuery(c, "end_date")
	if !ok {
		return
	}

	chart, err := h.dashboardService.RevenueChart(c, start, end)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, chart)
}

// ExportJSON handles GET /dashboard/export/json
func (h *DashboardHandler) ExportJSON(c *gin.Context) {
	from, until, ok := exportRange(c)
	if !ok {
		return
	}

	data, err := h.dashboardService.Export(c, from, until)
	if err != nil {
		writeError(c, err)
		return
	}

	filename := fmt.Sprintf("ledger-export-%s.json", data.GeneratedAt.Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.JSON(http.StatusOK, data)
}

// ExportCSV handles GET /dashboard/export/csv
func (h *DashboardHandler) ExportCSV(c *gin.Context) {
	from, until, ok := exportRange(c)
	if !ok {
		return
	}

	data, err := h.dashboardService.Export(c, from, until)
	if err != nil {
		writeError(c, err)
		return
	}

	filename := fmt.Sprintf("ledger-export-%s.csv", data.GeneratedAt.Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	writeExportCSV(w, data)
	w.Flush()
}

// dateQuery parses an optional YYYY-MM-DD query parameter. A malformed value
// answers 400 and returns ok=false.
func dateQuery(c *gin.Context, name string) (*time.Time, bool) {
	v := c.Query(name)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s format (YYYY-MM-DD)", name)})
		return nil, false
	}
	return &t, true
}

// exportRange reads the optional start_date/end_date parameters as a
// half-open [from, until) range with an inclusive end date.
func exportRange(c *gin.Context) (from, until *time.Time, ok bool) {
	from, ok = dateQuery(c, "start_date")
	if !ok {
		return nil, nil, false
	}
	end, ok := dateQuery(c, "end_date")
	if !ok {
		return nil, nil, false
	}
	if end != nil {
		u := end.AddDate(0, 0, 1)
		until = &u
	}
	return from, until, true
}

// writeExportCSV renders the ledger dump as one CSV stream with a section per
// record type.
func writeExportCSV(w *csv.Writer, data *models.ExportData) {
	w.Write([]string{"=== MEMBERS ==="})
	w.Write([]string{"id", "mobile", "fullName", "email", "currentPlan", "hoursGranted", "hoursUsed", "balanceHours", "expiryDate", "registrationDate"})
	for _, m := range data.Members {
		expiry := ""
		if m.ExpiryDate != nil {
			expiry = m.ExpiryDate.Format("2006-01-02")
		}
		w.Write([]string{
			m.ID.Hex(),
			m.Mobile,
			m.FullName,
			m.Email,
			m.CurrentPlan,
			formatHours(m.HoursGranted),
			formatHours(m.HoursUsed),
			formatHours(m.BalanceHours()),
			expiry,
			m.RegistrationDate.Format("2006-01-02"),
		})
	}

	w.Write([]string{})
	w.Write([]string{"=== PURCHASES ==="})
	w.Write([]string{"id", "memberId", "mobile", "planName", "amountPaid", "hoursGranted", "purchaseDate", "expiryDate", "rolloverDeadline", "rolloverStatus"})
	for _, p := range data.Purchases {
		w.Write([]string{
			p.ID.Hex(),
			p.MemberID.Hex(),
			p.Mobile,
			p.PlanName,
			formatHours(p.AmountPaid),
			formatHours(p.HoursGranted),
			p.PurchaseDate.Format("2006-01-02"),
			p.ExpiryDate.Format("2006-01-02"),
			p.RolloverDeadline.Format("2006-01-02"),
			string(p.RolloverStatus),
		})
	}

	w.Write([]string{})
	w.Write([]string{"=== SESSIONS ==="})
	w.Write([]string{"id", "memberId", "mobile", "date", "startTime", "endTime", "hoursConsumed", "station", "status"})
	for _, s := range data.Sessions {
		endTime := ""
		if s.EndTime != nil {
			endTime = s.EndTime.Format(time.RFC3339)
		}
		w.Write([]string{
			s.ID.Hex(),
			s.MemberID.Hex(),
			s.Mobile,
			s.Date.Format("2006-01-02"),
			s.StartTime.Format(time.RFC3339),
			endTime,
			formatHours(s.HoursConsumed),
			s.Station,
			string(s.Status),
		})
	}
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
