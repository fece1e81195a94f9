package handlers

import (
	"net/http"

	"auditease-backend/models"
	"auditease-backend/service"

	"github.com/gin-gonic/gin"
)

// ShareHandler handles HTTP requests for audit sharing
type ShareHandler struct {
	shares Shares
}

// NewShareHandler creates a new share handler
func NewShareHandler(shares Shares) *ShareHandler {
	return &ShareHandler{shares: shares}
}

// InviteRequest represents the request body for sharing an audit
type InviteRequest struct {
	Email      string `json:"email" binding:"required"`
	Permission string `json:"permission"`
}

// Invite handles POST /api/audits/:id/shares
func (h *ShareHandler) Invite(c *gin.Context) {
	auditID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.shares.Invite(c.Request.Context(), service.InviteRequest{
		Owner:      callerFrom(c),
		AuditID:    auditID,
		Email:      req.Email,
		Permission: models.SharePermission(req.Permission),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, result)
}

// ListShares handles GET /api/audits/:id/shares
func (h *ShareHandler) ListShares(c *gin.Context) {
	auditID, ok := parseID(c, "id")
	if !ok {
		return
	}

	shares, err := h.shares.List(c.Request.Context(), callerFrom(c).UserID, auditID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, shares)
}

// RemoveShare handles DELETE /api/shares/:id
func (h *ShareHandler) RemoveShare(c *gin.Context) {
	shareID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.shares.Remove(c.Request.Context(), callerFrom(c).UserID, shareID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"deleted": true})
}

// ResolveShare handles GET /api/shares/:id where the parameter is a share token
func (h *ShareHandler) ResolveShare(c *gin.Context) {
	shared, err := h.shares.ResolveToken(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, shared)
}
