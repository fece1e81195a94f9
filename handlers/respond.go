package handlers

import (
	"errors"
	"net/http"

	"auditease-backend/llm"
	"auditease-backend/service"

	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondFail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

var notFoundErrors = []error{
	service.ErrDocumentNotFound,
	service.ErrAuditNotFound,
	service.ErrGapNotFound,
	service.ErrShareNotFound,
}

// respondError maps a service error to a status and error code. Unexpected
// errors are attached to the context for the request logger and reported
// without detail.
func respondError(c *gin.Context, err error) {
	switch {
	case service.IsValidation(err):
		respondFail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case isNotFound(err):
		respondFail(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrForbidden):
		respondFail(c, http.StatusForbidden, "FORBIDDEN", "You do not have access to this audit")
	case errors.Is(err, service.ErrQuotaExceeded):
		respondFail(c, http.StatusPaymentRequired, "QUOTA_EXCEEDED", "Free audit limit reached. Upgrade to continue.")
	case errors.Is(err, service.ErrAlreadyShared):
		respondFail(c, http.StatusConflict, "ALREADY_SHARED", err.Error())
	case errors.Is(err, llm.ErrAPIKeyRestricted):
		_ = c.Error(err)
		respondFail(c, http.StatusBadGateway, "LLM_KEY_RESTRICTED", "The AI provider rejected the configured API key")
	case errors.Is(err, llm.ErrAPIKeyMissing):
		respondFail(c, http.StatusServiceUnavailable, "LLM_UNAVAILABLE", "AI features are not configured on this server")
	default:
		_ = c.Error(err)
		respondFail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func isNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
