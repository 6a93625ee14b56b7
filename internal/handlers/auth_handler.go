package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/untangle-ph/untangle-backend/internal/middleware"
	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler handles staff authentication HTTP requests
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.authService.Login(c, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Register handles POST /auth/register. Admin only; enforced by the route
// middleware.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staff, err := h.authService.Register(c, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, staff)
}

// Me handles GET /auth/me and returns the authenticated staff record.
func (h *AuthHandler) Me(c *gin.Context) {
	staffID, err := primitive.ObjectIDFromHex(middleware.StaffIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token subject"})
		return
	}

	staff, err := h.authService.GetStaffByID(c, staffID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, staff)
}
