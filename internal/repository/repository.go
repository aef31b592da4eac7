package repository

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"support-pipeline-go/internal/model"
)

// Repository wraps the local bookkeeping database: pipeline run history and
// the processed-message table used for opt-in deduplication.
type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// IsMessageProcessed reports whether a source message id has already been
// appended to the record store.
func (r *Repository) IsMessageProcessed(messageID string) (bool, error) {
	var processed model.ProcessedMessage
	result := r.db.Where("message_id = ?", messageID).First(&processed)
	if result.Error == nil {
		return true, nil
	}
	if result.Error == gorm.ErrRecordNotFound {
		return false, nil
	}
	return false, fmt.Errorf("database error checking processed message: %w", result.Error)
}

// MarkMessageProcessed records a source message id as appended.
func (r *Repository) MarkMessageProcessed(messageID string) error {
	processed := model.ProcessedMessage{
		MessageID:   messageID,
		ProcessedAt: time.Now(),
	}
	result := r.db.Create(&processed)
	if result.Error != nil {
		return fmt.Errorf("failed to mark message as processed: %w", result.Error)
	}
	return nil
}

// RecordRun persists one run-history row.
func (r *Repository) RecordRun(trigger string, windowHours int, res model.RunResult) error {
	run := model.PipelineRun{
		Trigger:         trigger,
		WindowHours:     windowHours,
		EmailsFound:     res.EmailsFound,
		EmailsProcessed: res.EmailsProcessed,
		DigestSent:      res.DigestSent,
		ErrorMsg:        res.Error,
		CreatedAt:       time.Now(),
	}
	result := r.db.Create(&run)
	if result.Error != nil {
		return fmt.Errorf("failed to record run: %w", result.Error)
	}
	return nil
}

// ListRuns returns run-history rows, newest first, with the total count.
func (r *Repository) ListRuns(offset, limit int) ([]model.PipelineRun, int64, error) {
	var total int64
	if err := r.db.Model(&model.PipelineRun{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}

	var runs []model.PipelineRun
	if err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&runs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, total, nil
}
