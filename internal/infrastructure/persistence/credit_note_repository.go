package persistence

import (
	"context"
	"time"

	"github.com/fixdesk/backend/internal/domain/finance"
	"github.com/fixdesk/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCreditNoteRepository implements CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

func (r *GormCreditNoteRepository) withApplications(db *gorm.DB) *gorm.DB {
	return db.Preload("Applications", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("applied_at ASC")
	})
}

// FindByID finds a credit note with its applications
func (r *GormCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.CreditNote, error) {
	var model models.CreditNoteModel
	if err := r.withApplications(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "credit note", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a credit note and locks its row
func (r *GormCreditNoteRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.CreditNote, error) {
	var model models.CreditNoteModel
	if err := r.withApplications(forUpdate(r.db.WithContext(ctx))).First(&model, "id = ?", id).Error; err != nil {
		return nil, translate(err, "credit note", id)
	}
	return model.ToDomain(), nil
}

// FindByPurchaseReturn finds the note issued for a purchase return
func (r *GormCreditNoteRepository) FindByPurchaseReturn(ctx context.Context, purchaseReturnID uuid.UUID) (*finance.CreditNote, error) {
	var model models.CreditNoteModel
	if err := r.withApplications(r.db.WithContext(ctx)).
		First(&model, "purchase_return_id = ?", purchaseReturnID).Error; err != nil {
		return nil, translate(err, "credit note for purchase return", purchaseReturnID)
	}
	return model.ToDomain(), nil
}

// FindExpiringBefore returns pending notes with an expiry date at or before t
func (r *GormCreditNoteRepository) FindExpiringBefore(ctx context.Context, t time.Time) ([]finance.CreditNote, error) {
	var rows []models.CreditNoteModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", string(finance.CreditNoteStatusPending), t).
		Order("expiry_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	notes := make([]finance.CreditNote, len(rows))
	for i := range rows {
		notes[i] = *rows[i].ToDomain()
	}
	return notes, nil
}

// CountByNumberPrefix counts note numbers of the form prefix-N
func (r *GormCreditNoteRepository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CreditNoteModel{}).
		Where("credit_note_number LIKE ?", prefixPattern(prefix)).
		Count(&count).Error
	return count, err
}

// Save creates or updates a credit note. Applications are not touched.
func (r *GormCreditNoteRepository) Save(ctx context.Context, note *finance.CreditNote) error {
	return translateWrite(r.db.WithContext(ctx).Omit("Applications").Save(models.CreditNoteModelFromDomain(note)).Error, "credit note")
}

// CreateApplication appends an application row
func (r *GormCreditNoteRepository) CreateApplication(ctx context.Context, app *finance.CreditApplication) error {
	return r.db.WithContext(ctx).Create(models.CreditApplicationModelFromDomain(app)).Error
}

var _ finance.CreditNoteRepository = (*GormCreditNoteRepository)(nil)
