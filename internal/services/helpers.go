package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/training-service/internal/cache"
	"github.com/SAP-F-2025/training-service/internal/repositories"
	"gorm.io/gorm"
)

const reportCachePattern = "report:*"

func departmentReportKey(departmentID uint) string {
	return fmt.Sprintf("report:department:%d", departmentID)
}

// inTx runs fn in a single transaction on the repository connection.
func inTx(ctx context.Context, repo repositories.Repository, fn func(tx *gorm.DB) error) error {
	return repo.DB().WithContext(ctx).Transaction(fn)
}

// mapNotFound swaps a store not-found for the entity's sentinel.
func mapNotFound(err error, sentinel error, action string) error {
	if err == nil {
		return nil
	}
	if repositories.IsNotFoundError(err) {
		return sentinel
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// duplicateAsValidation turns a unique-constraint violation into a field error
// so a lost race reads the same as a failed pre-check.
func duplicateAsValidation(err error, field, message string, value interface{}) error {
	if repositories.IsDuplicateError(err) {
		return fieldError(field, message, value)
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func invalidateReports(ctx context.Context, c cache.CacheService, logger *slog.Logger) {
	if err := c.DeletePattern(ctx, reportCachePattern); err != nil {
		logger.Warn("Failed to invalidate report cache", "error", err)
	}
}

// optionalID treats a zero id like an absent one.
func optionalID(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	v := *id
	return &v
}
