package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/clientdesk/clientdesk/pkg/model"
)

type TimeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

func (r *TimeEntryRepository) Create(ctx context.Context, entry *model.TimeEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *TimeEntryRepository) GetByID(ctx context.Context, id uint) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *TimeEntryRepository) ListByProject(ctx context.Context, projectID uint, limit, offset int) ([]model.TimeEntry, int64, error) {
	var entries []model.TimeEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&model.TimeEntry{}).Where("project_id = ?", projectID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("date DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error

	return entries, total, err
}

func (r *TimeEntryRepository) Update(ctx context.Context, entry *model.TimeEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *TimeEntryRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.TimeEntry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkInvoiced stamps the entry with the invoice that billed it.
func (r *TimeEntryRepository) MarkInvoiced(ctx context.Context, id uint, invoiceID uint) error {
	result := r.db.WithContext(ctx).Model(&model.TimeEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"invoiced":   true,
			"invoice_id": invoiceID,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
