package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/untangle-ph/untangle-backend/internal/middleware"
	"github.com/untangle-ph/untangle-backend/internal/repositories"
	"github.com/untangle-ph/untangle-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionHandler handles gaming-session HTTP requests
type SessionHandler struct {
	sessionService services.SessionService
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessionService services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

type startSessionRequest struct {
	MemberID  string `json:"memberId" binding:"required"`
	BranchID  string `json:"branchId"`
	Station   string `json:"station"`
	Activity  string `json:"activity"`
	StaffName string `json:"staffName"`
	Notes     string `json:"notes"`
}

type endSessionRequest struct {
	ManualHours *float64 `json:"manualHours"`
	Notes       string   `json:"notes"`
}

type voidSessionRequest struct {
	Reason string `json:"reason"`
}

// StartSession handles POST /sessions/start
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	memberID, err := primitive.ObjectIDFromHex(req.MemberID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID format"})
		return
	}

	in := services.StartSessionInput{
		MemberID:  memberID,
		Station:   req.Station,
		Activity:  req.Activity,
		StaffName: req.StaffName,
		Notes:     req.Notes,
	}
	if req.BranchID != "" {
		branchID, err := primitive.ObjectIDFromHex(req.BranchID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid branch ID format"})
			return
		}
		in.BranchID = branchID
	}
	if staffID, err := primitive.ObjectIDFromHex(middleware.StaffIDFromContext(c)); err == nil {
		in.CreatedBy = staffID
	}

	session, err := h.sessionService.StartSession(c, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// EndSession handles POST /sessions/:id/end. Manual hours are honored only
// for privileged staff; the role decision is made here and handed to the
// ledger as a flag.
func (h *SessionHandler) EndSession(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req endSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	session, err := h.sessionService.EndSession(c, id, services.EndSessionInput{
		ManualHours: req.ManualHours,
		Notes:       req.Notes,
		Privileged:  middleware.PrivilegedCaller(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// VoidSession handles POST /sessions/:id/void
func (h *SessionHandler) VoidSession(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req voidSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	session, err := h.sessionService.VoidSession(c, id, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetSessionByID handles GET /sessions/:id
func (h *SessionHandler) GetSessionByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	session, err := h.sessionService.GetSessionByID(c, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// GetActiveSessions handles GET /sessions/active
func (h *SessionHandler) GetActiveSessions(c *gin.Context) {
	sessions, err := h.sessionService.GetActiveSessions(c)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// ListSessions handles GET /sessions
func (h *SessionHandler) ListSessions(c *gin.Context) {
	page, limit := pagination(c)

	var filter repositories.SessionFilter
	if memberID := c.Query("member_id"); memberID != "" {
		id, err := primitive.ObjectIDFromHex(memberID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID format"})
			return
		}
		filter.MemberID = id
	}
	if branchID := c.Query("branch_id"); branchID != "" {
		id, err := primitive.ObjectIDFromHex(branchID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid branch ID format"})
			return
		}
		filter.BranchID = id
	}
	filter.ActiveOnly = c.Query("active_only") == "true"

	sessions, total, err := h.sessionService.ListSessions(c, filter, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, listResponse(sessions, total, page, limit))
}
