package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/school_fee_ledger/internal/apperrors"
	"github.com/SscSPs/school_fee_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// handleServiceError maps a service error onto an HTTP response.
// Unclassified errors are logged and answered with genericMsg.
func handleServiceError(c *gin.Context, logger *slog.Logger, err error, genericMsg string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn("Request rejected by validation", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn("Resource not found", slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		logger.Warn("Request conflicts with current state", slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		logger.Warn("Operation not permitted", slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error(genericMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": genericMsg})
	}
}

// requestScope pulls the tenant and caller out of the request, writing the error response itself on failure.
func requestScope(c *gin.Context) (tenantID string, userID string, logger *slog.Logger, ok bool) {
	logger = middleware.GetLoggerFromCtx(c.Request.Context())
	tenantID = c.Param("tenant_id")
	if tenantID == "" {
		logger.Error("Tenant ID missing from path")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tenant ID required in path"})
		return "", "", logger, false
	}
	userID, found := middleware.GetUserIDFromContext(c)
	if !found {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", "", logger, false
	}
	logger = logger.With(slog.String("tenant_id", tenantID))
	return tenantID, userID, logger, true
}
