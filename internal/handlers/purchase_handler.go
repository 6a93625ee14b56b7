package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/untangle-ph/untangle-backend/internal/middleware"
	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/repositories"
	"github.com/untangle-ph/untangle-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PurchaseHandler handles purchase-ledger HTTP requests
type PurchaseHandler struct {
	purchaseService services.PurchaseService
}

// NewPurchaseHandler creates a new PurchaseHandler
func NewPurchaseHandler(purchaseService services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchaseService: purchaseService}
}

type createPurchaseRequest struct {
	MemberID     string  `json:"memberId" binding:"required"`
	PlanName     string  `json:"planName" binding:"required"`
	HoursGranted float64 `json:"hoursGranted" binding:"required"`
	AmountPaid   float64 `json:"amountPaid"`
	PurchaseDate string  `json:"purchaseDate"` // YYYY-MM-DD, defaults to today
}

type applyRolloverRequest struct {
	Force bool `json:"force"`
}

// CreatePurchase handles POST /purchases
func (h *PurchaseHandler) CreatePurchase(c *gin.Context) {
	var req createPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID format"})
		return
	}

	in := services.CreatePurchaseInput{
		MemberID:     memberID,
		PlanName:     req.PlanName,
		HoursGranted: req.HoursGranted,
		AmountPaid:   req.AmountPaid,
	}
	if req.PurchaseDate != "" {
		purchaseDate, err := time.Parse("2006-01-02", req.PurchaseDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchase date format (YYYY-MM-DD)"})
			return
		}
		in.PurchaseDate = &purchaseDate
	}
	if staffID, err := primitive.ObjectIDFromHex(middleware.StaffIDFromContext(c)); err == nil {
		in.CreatedBy = staffID
	}

	purchase, err := h.purchaseService.CreatePurchase(c, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewPurchaseResponse(purchase))
}

// GetPurchaseByID handles GET /purchases/:id
func (h *PurchaseHandler) GetPurchaseByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	purchase, err := h.purchaseService.GetPurchaseByID(c, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewPurchaseResponse(purchase))
}

// ListPurchases handles GET /purchases
func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	page, limit := pagination(c)

	var filter repositories.PurchaseFilter
	if memberID := c.Query("member_id"); memberID != "" {
		id, err := primitive.ObjectIDFromHex(memberID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID format"})
			return
		}
		filter.MemberID = id
	}
	if status := c.Query("rollover_status"); status != "" {
		filter.RolloverStatus = models.RolloverStatus(status)
	}

	purchases, total, err := h.purchaseService.ListPurchases(c, filter, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]*models.PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		items = append(items, models.NewPurchaseResponse(p))
	}
	c.JSON(http.StatusOK, listResponse(items, total, page, limit))
}

// ApplyRollover handles POST /purchases/:id/rollover. Forcing past the
// eligibility checks is reserved for privileged staff.
func (h *PurchaseHandler) ApplyRollover(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req applyRolloverRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if req.Force && !middleware.PrivilegedCaller(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forced rollover requires admin or manager role"})
		return
	}

	purchase, err := h.purchaseService.ApplyRollover(c, id, req.Force)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewPurchaseResponse(purchase))
}

// SweepRollovers handles POST /purchases/rollover-sweep
func (h *PurchaseHandler) SweepRollovers(c *gin.Context) {
	count, err := h.purchaseService.SweepExpiredRollovers(c)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expired": count})
}
