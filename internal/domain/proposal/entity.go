package proposal

import (
	"time"

	"github.com/google/uuid"
)

// ExtractionStatus is the only externally visible progress signal for a
// proposal's line-item extraction
type ExtractionStatus string

const (
	ExtractionPending    ExtractionStatus = "pending"
	ExtractionProcessing ExtractionStatus = "processing"
	ExtractionCompleted  ExtractionStatus = "completed"
	ExtractionFailed     ExtractionStatus = "failed"
)

// FileType identifies the uploaded document format
type FileType string

const (
	FileTypePDF   FileType = "pdf"
	FileTypeExcel FileType = "excel"
)

// Proposal is an uploaded contractor proposal document
type Proposal struct {
	ID                    uuid.UUID        `db:"id"`
	ProjectID             uuid.UUID        `db:"project_id"`
	UserID                uuid.UUID        `db:"user_id"`
	ContractorName        string           `db:"contractor_name"`
	ContractorPartyID     *uuid.UUID       `db:"contractor_party_id"`
	TotalAmount           *float64         `db:"total_amount"`
	FileName              *string          `db:"file_name"`
	FilePath              *string          `db:"file_path"`
	FileType              *FileType        `db:"file_type"`
	ExtractionStatus      ExtractionStatus `db:"extraction_status"`
	ExtractionStartedAt   *time.Time       `db:"extraction_started_at"`
	ExtractionCompletedAt *time.Time       `db:"extraction_completed_at"`
	CreatedAt             time.Time        `db:"created_at"`
	UpdatedAt             time.Time        `db:"updated_at"`
}
