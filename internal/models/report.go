package models

import (
	"time"

	"github.com/google/uuid"
)

// Report statuses.
const (
	ReportPending   = "pending"
	ReportCompleted = "completed"
	ReportFailed    = "failed"
)

// Report is an archived CSV export of a closed voting event.
type Report struct {
	ID          uuid.UUID  `json:"id"`
	EventID     uuid.UUID  `json:"event_id"`
	Status      string     `json:"status"`
	S3Key       string     `json:"s3_key,omitempty"`
	SizeBytes   int64      `json:"size_bytes"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
