package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/clientdesk/clientdesk/pkg/model"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *ClientRepository) GetByID(ctx context.Context, id uint) (*model.Client, error) {
	var client model.Client
	err := r.db.WithContext(ctx).
		Preload("Contacts").
		First(&client, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) List(ctx context.Context, search string, limit, offset int) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Client{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR company LIKE ? OR email LIKE ?", pattern, pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&clients).Error

	return clients, total, err
}

func (r *ClientRepository) Update(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

// SoftDelete flags the client deleted; the record stays recoverable.
func (r *ClientRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Client{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HardDelete removes the row permanently. Contacts, projects, time entries
// and quotes go with it through the database's cascade rules; quotes of a
// hard-deleted project keep their row with project_id nulled.
func (r *ClientRepository) HardDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Unscoped().Delete(&model.Client{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
