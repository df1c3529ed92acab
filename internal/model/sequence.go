package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DocumentSequence is the per-scope numbering counter. One row per
// (company, document type, year); incremented under a row lock so two
// concurrent creations can never draw the same number. Rows are never
// decremented: deleting a document does not free its number.
type DocumentSequence struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CompanyID    uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_sequences_scope" json:"company_id"`
	DocumentType DocumentType `gorm:"type:varchar(10);not null;uniqueIndex:idx_sequences_scope" json:"document_type"`
	Year         int          `gorm:"not null;uniqueIndex:idx_sequences_scope" json:"year"`
	LastValue    int64        `gorm:"not null;default:0" json:"last_value"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// FormatDocumentNumber renders PREFIX-YYYY-NNNN. The counter keeps growing
// past 9999; the padding just widens.
func FormatDocumentNumber(prefix string, year int, value int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, value)
}
