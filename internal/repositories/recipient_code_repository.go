package repositories

import (
	stderrors "errors"
	"fmt"

	"kobopay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipientCodeRepository persists provider-issued payout recipient codes
// keyed by (provider, bank detail).
type RecipientCodeRepository struct {
	db *gorm.DB
}

func NewRecipientCodeRepository(db *gorm.DB) *RecipientCodeRepository {
	return &RecipientCodeRepository{db: db}
}

// Get reports the cached code for a bank detail, if one exists.
func (r *RecipientCodeRepository) Get(provider string, bankDetailID uint) (string, bool) {
	var rc models.RecipientCode
	err := r.db.Where("provider = ? AND bank_detail_id = ?", provider, bankDetailID).First(&rc).Error
	if err != nil {
		return "", false
	}
	return rc.Code, true
}

// Save upserts the code for a bank detail. A bank detail keeps exactly one
// code per provider; a fresh registration replaces the old one.
func (r *RecipientCodeRepository) Save(provider string, bankDetailID uint, code string) error {
	rc := models.RecipientCode{
		Provider:     provider,
		BankDetailID: bankDetailID,
		Code:         code,
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "bank_detail_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "updated_at"}),
	}).Create(&rc).Error
	if err != nil && !stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("failed to save recipient code: %w", err)
	}
	return nil
}
