package worker

import (
	"context"
	"log"
	"time"

	"todo-app/backend/internal/models"

	"gorm.io/gorm"
)

// NewTokenCleanupHandler deletes refresh tokens that expired before now.
func NewTokenCleanupHandler(db *gorm.DB) JobHandler {
	return func(ctx context.Context, job *Job) error {
		result := db.WithContext(ctx).
			Where("expires_at < ?", time.Now()).
			Delete(&models.Token{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			log.Printf("Token cleanup removed %d expired tokens", result.RowsAffected)
		}
		return nil
	}
}

// NewCompletedSweepHandler deletes todos completed longer ago than
// maxAge, counted from their last update.
func NewCompletedSweepHandler(db *gorm.DB, maxAge time.Duration) JobHandler {
	return func(ctx context.Context, job *Job) error {
		cutoff := time.Now().Add(-maxAge)
		result := db.WithContext(ctx).
			Where("completed = ? AND updated_at < ?", true, cutoff).
			Delete(&models.Todo{})
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			log.Printf("Completed sweep removed %d stale todos", result.RowsAffected)
		}
		return nil
	}
}
