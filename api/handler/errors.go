package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/lpaudit/models"
)

// toAuditError unwraps err to an AuditError, wrapping unknown errors as
// internal.
func toAuditError(err error) *models.AuditError {
	var auditErr *models.AuditError
	if errors.As(err, &auditErr) {
		return auditErr
	}
	return models.NewAuditError(models.ErrCodeInternal, err.Error(), err)
}

// badRequest writes a 400 with the binding or validation message.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Error: &models.ErrorDetail{
			Code:    models.ErrCodeInvalidInput,
			Message: err.Error(),
		},
	})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.AuditError) int {
	switch e.Code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation, models.ErrCodeFetch, models.ErrCodeTLS, models.ErrCodeTooManyRedirects:
		return http.StatusBadGateway // 502
	case models.ErrCodeBrowserCrash:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}
