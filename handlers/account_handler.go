package handlers

import (
	"net/http"

	"auditease-backend/models"
	"auditease-backend/service"
	"auditease-backend/standards"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles the caller's subscription and profile
type AccountHandler struct {
	subscriptions Subscriptions
	profiles      Profiles
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(subscriptions Subscriptions, profiles Profiles) *AccountHandler {
	return &AccountHandler{subscriptions: subscriptions, profiles: profiles}
}

// GetSubscription handles GET /api/subscription
func (h *AccountHandler) GetSubscription(c *gin.Context) {
	view, err := h.subscriptions.Get(c.Request.Context(), callerFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view)
}

// UpgradeRequest represents the request body for a plan change
type UpgradeRequest struct {
	PlanTier      string `json:"plan_tier" binding:"required"`
	BillingPeriod string `json:"billing_period"`
}

// Upgrade handles POST /api/subscription/upgrade
func (h *AccountHandler) Upgrade(c *gin.Context) {
	var req UpgradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	view, err := h.subscriptions.Upgrade(c.Request.Context(), service.UpgradeRequest{
		UserID:        callerFrom(c).UserID,
		PlanTier:      models.PlanTier(req.PlanTier),
		BillingPeriod: models.BillingPeriod(req.BillingPeriod),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, view)
}

// GetProfile handles GET /api/profile
func (h *AccountHandler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), callerFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, profile)
}

// UpdateProfileRequest represents the request body for a profile update
type UpdateProfileRequest struct {
	OrganizationName string `json:"organization_name"`
}

// UpdateProfile handles PUT /api/profile
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	profile, err := h.profiles.UpdateOrganization(c.Request.Context(), callerFrom(c).UserID, req.OrganizationName)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, profile)
}

// ListStandards handles GET /api/standards
func ListStandards(c *gin.Context) {
	respondOK(c, http.StatusOK, standards.All())
}
