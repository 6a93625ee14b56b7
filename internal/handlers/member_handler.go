package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemberHandler handles member-related HTTP requests
type MemberHandler struct {
	memberService services.MemberService
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(memberService services.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

type createMemberRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Mobile   string `json:"mobile" binding:"required"`
	Email    string `json:"email"`
	BranchID string `json:"branchId"`
	Notes    string `json:"notes"`
}

type updateMemberRequest struct {
	FullName *string `json:"fullName"`
	Mobile   *string `json:"mobile"`
	Email    *string `json:"email"`
	BranchID *string `json:"branchId"`
	Notes    *string `json:"notes"`
}

// CreateMember handles POST /members
func (h *MemberHandler) CreateMember(c *gin.Context) {
	var req createMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := services.CreateMemberInput{
		FullName: req.FullName,
		Mobile:   req.Mobile,
		Email:    req.Email,
		Notes:    req.Notes,
	}
	if req.BranchID != "" {
		branchID, err := primitive.ObjectIDFromHex(req.BranchID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid branch ID format"})
			return
		}
		in.BranchID = branchID
	}

	member, err := h.memberService.CreateMember(c, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewMemberResponse(member))
}

// GetMemberByID handles GET /members/:id
func (h *MemberHandler) GetMemberByID(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	member, err := h.memberService.GetMemberByID(c, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewMemberResponse(member))
}

// GetMemberByMobile handles GET /members/mobile/:mobile
func (h *MemberHandler) GetMemberByMobile(c *gin.Context) {
	member, err := h.memberService.GetMemberByMobile(c, c.Param("mobile"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewMemberResponse(member))
}

// ListMembers handles GET /members
func (h *MemberHandler) ListMembers(c *gin.Context) {
	page, limit := pagination(c)
	search := c.Query("search")

	members, total, err := h.memberService.ListMembers(c, search, page, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]*models.MemberResponse, 0, len(members))
	for _, m := range members {
		items = append(items, models.NewMemberResponse(m))
	}
	c.JSON(http.StatusOK, listResponse(items, total, page, limit))
}

// UpdateMember handles PUT /members/:id
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	var req updateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := services.UpdateMemberInput{
		FullName: req.FullName,
		Mobile:   req.Mobile,
		Email:    req.Email,
		Notes:    req.Notes,
	}
	if req.BranchID != nil {
		branchID, err := primitive.ObjectIDFromHex(*req.BranchID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid branch ID format"})
			return
		}
		in.BranchID = &branchID
	}

	member, err := h.memberService.UpdateMember(c, id, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewMemberResponse(member))
}

// PurgeMember handles DELETE /members/:id. This removes the member together
// with their full purchase and session history.
func (h *MemberHandler) PurgeMember(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return
	}

	if err := h.memberService.PurgeMember(c, id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member and all history deleted"})
}
