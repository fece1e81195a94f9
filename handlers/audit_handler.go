package handlers

import (
	"net/http"
	"strconv"

	"auditease-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditHandler handles HTTP requests for audits, gaps and the dashboard
type AuditHandler struct {
	audits Audits
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audits Audits) *AuditHandler {
	return &AuditHandler{audits: audits}
}

// parseID reads a UUID path parameter, answering 400 when it is malformed
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+param+" format")
		return uuid.Nil, false
	}
	return id, true
}

// CreateAuditRequest represents the request body for starting an audit
type CreateAuditRequest struct {
	StandardDocumentID *string `json:"standard_document_id"`
	StandardPreset     string  `json:"standard_preset"`
	SubjectDocumentID  string  `json:"subject_document_id" binding:"required"`
}

// CreateAudit handles POST /api/audits. The analysis runs in the background;
// clients poll GET /api/audits/:id.
func (h *AuditHandler) CreateAudit(c *gin.Context) {
	var req CreateAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	subjectID, err := uuid.Parse(req.SubjectDocumentID)
	if err != nil {
		respondFail(c, http.StatusBadRequest, "INVALID_ID", "Invalid subject_document_id format")
		return
	}

	caller := callerFrom(c)
	serviceReq := service.StartAuditRequest{
		UserID:            caller.UserID,
		StandardPreset:    req.StandardPreset,
		SubjectDocumentID: subjectID,
	}
	if req.StandardDocumentID != nil && *req.StandardDocumentID != "" {
		standardID, err := uuid.Parse(*req.StandardDocumentID)
		if err != nil {
			respondFail(c, http.StatusBadRequest, "INVALID_ID", "Invalid standard_document_id format")
			return
		}
		serviceReq.StandardDocumentID = &standardID
	}

	audit, err := h.audits.StartAudit(c.Request.Context(), serviceReq)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusAccepted, audit)
}

// ListAudits handles GET /api/audits?limit=&offset=
func (h *AuditHandler) ListAudits(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	audits, err := h.audits.ListAudits(c.Request.Context(), callerFrom(c).UserID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, audits)
}

// GetAudit handles GET /api/audits/:id
func (h *AuditHandler) GetAudit(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	detail, err := h.audits.GetAudit(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, detail)
}

// RewriteContract handles POST /api/audits/:id/rewrite
func (h *AuditHandler) RewriteContract(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	contract, err := h.audits.RewriteContract(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"compliant_contract": contract})
}

// CompareAudits handles GET /api/audits/compare?original=&revised=
func (h *AuditHandler) CompareAudits(c *gin.Context) {
	originalID, err := uuid.Parse(c.Query("original"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "INVALID_ID", "Invalid original audit ID format")
		return
	}
	revisedID, err := uuid.Parse(c.Query("revised"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, "INVALID_ID", "Invalid revised audit ID format")
		return
	}

	comparison, err := h.audits.CompareAudits(c.Request.Context(), callerFrom(c), originalID, revisedID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, comparison)
}

// UpdateGapRequest represents the request body for marking a gap
type UpdateGapRequest struct {
	IsApplied *bool `json:"is_applied" binding:"required"`
}

// UpdateGap handles PATCH /api/gaps/:id
func (h *AuditHandler) UpdateGap(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateGapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	gap, err := h.audits.MarkGapApplied(c.Request.Context(), callerFrom(c), id, *req.IsApplied)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gap)
}

// Dashboard handles GET /api/dashboard
func (h *AuditHandler) Dashboard(c *gin.Context) {
	stats, err := h.audits.Dashboard(c.Request.Context(), callerFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, stats)
}
