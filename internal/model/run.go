package model

import (
	"time"

	"gorm.io/gorm"
)

// RunResult is the outcome of one pipeline run. It is returned to the caller
// and kept as the advisory "last run" snapshot.
type RunResult struct {
	EmailsFound     int    `json:"emails_found"`
	EmailsProcessed int    `json:"emails_processed"`
	DigestSent      bool   `json:"digest_sent"`
	Error           string `json:"error,omitempty"`
}

// PipelineRun is the persisted history row for one pipeline run.
type PipelineRun struct {
	ID              uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Trigger         string         `json:"trigger" gorm:"type:varchar(20);not null"` // scheduled, manual
	WindowHours     int            `json:"window_hours" gorm:"not null"`
	EmailsFound     int            `json:"emails_found" gorm:"not null"`
	EmailsProcessed int            `json:"emails_processed" gorm:"not null"`
	DigestSent      bool           `json:"digest_sent" gorm:"not null"`
	ErrorMsg        string         `json:"error_msg" gorm:"type:text"`
	CreatedAt       time.Time      `json:"created_at"`
	DeletedAt       gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// TableName specifies the table name for PipelineRun
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}

// ProcessedMessage marks a source message id that has already been appended
// to the record store. Only consulted when deduplication is enabled.
type ProcessedMessage struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	MessageID   string    `json:"message_id" gorm:"type:varchar(255);not null;uniqueIndex"`
	ProcessedAt time.Time `json:"processed_at"`
}

// TableName specifies the table name for ProcessedMessage
func (ProcessedMessage) TableName() string {
	return "processed_messages"
}
