package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SequenceRepository hands out document numbers. Next must be called inside
// the transaction that creates the document so the number assignment commits
// or rolls back with it.
type SequenceRepository interface {
	Next(ctx context.Context, companyID uuid.UUID, docType model.DocumentType, year int) (int64, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next serializes concurrent callers on the scope row with SELECT ... FOR
// UPDATE, creating the row on first use. The unique index on the scope is the
// backstop for two first-use callers racing on the insert.
func (r *sequenceRepository) Next(ctx context.Context, companyID uuid.UUID, docType model.DocumentType, year int) (int64, error) {
	db := GetDB(ctx, r.db)

	var seq model.DocumentSequence
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&seq, "company_id = ? AND document_type = ? AND year = ?", companyID, docType, year).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = model.DocumentSequence{
			CompanyID:    companyID,
			DocumentType: docType,
			Year:         year,
			LastValue:    0,
		}
		if createErr := db.Create(&seq).Error; createErr != nil {
			// lost the insert race: another transaction created the scope row,
			// lock it and continue
			err = db.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&seq, "company_id = ? AND document_type = ? AND year = ?", companyID, docType, year).Error
			if err != nil {
				return 0, createErr
			}
		}
	} else if err != nil {
		return 0, err
	}

	seq.LastValue++
	if err := db.Model(&seq).Update("last_value", seq.LastValue).Error; err != nil {
		return 0, err
	}
	return seq.LastValue, nil
}
