package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BranchHandler handles branch HTTP requests
type BranchHandler struct {
	branchService services.BranchService
}

// NewBranchHandler creates a new BranchHandler
func NewBranchHandler(branchService services.BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

type createBranchRequest struct {
	Name          string `json:"name" binding:"required"`
	Location      string `json:"location"`
	TotalStations int    `json:"totalStations"`
}

// CreateBranch handles POST /branches
func (h *BranchHandler) CreateBranch(c *gin.Context) {
	var req createBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	branch := &models.Branch{
		Name:          req.Name,
		Location:      req.Location,
		TotalStations: req.TotalStations,
		IsActive:      true,
	}
	if err := h.branchService.CreateBranch(c, branch); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, branch)
}

// GetBranchByID handles GET /branches/:id
func (h *BranchHandler) GetBranchByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	branch, err := h.branchService.GetBranchByID(c, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, branch)
}

// ListBranches handles GET /branches
func (h *BranchHandler) ListBranches(c *gin.Context) {
	branches, err := h.branchService.ListBranches(c)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, branches)
}
