package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/use-agent/lpaudit/models"
)

// categorizeError maps a pass failure to an AuditError whose Message is
// the text recorded in the report.
func categorizeError(err error, timeout time.Duration) *models.AuditError {
	var auditErr *models.AuditError
	switch {
	case errors.As(err, &auditErr):
		if auditErr.Err != nil && auditErr.Code == models.ErrCodeBrowserCrash {
			return models.NewAuditError(auditErr.Code,
				auditErr.Message+": "+auditErr.Err.Error(), auditErr.Err)
		}
		return auditErr
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewAuditError(models.ErrCodeTimeout,
			fmt.Sprintf("Page load timed out after %dms", timeout.Milliseconds()), err)
	case errors.Is(err, context.Canceled):
		return models.NewAuditError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewAuditError(models.ErrCodeNavigation, err.Error(), err)
	}
}
