package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/clientdesk/clientdesk/pkg/model"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *ContactRepository) GetByID(ctx context.Context, id uint) (*model.Contact, error) {
	var contact model.Contact
	if err := r.db.WithContext(ctx).First(&contact, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *ContactRepository) ListByClient(ctx context.Context, clientID uint) ([]model.Contact, error) {
	var contacts []model.Contact
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("is_primary DESC, name ASC").
		Find(&contacts).Error
	return contacts, err
}

func (r *ContactRepository) Update(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *ContactRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Contact{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MakePrimary flags one contact as the client's primary and clears the
// flag on every other contact of the same client. A single UPDATE inside
// one transaction, so there is no window with zero or two primaries.
func (r *ContactRepository) MakePrimary(ctx context.Context, contactID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contact model.Contact
		if err := tx.First(&contact, "id = ?", contactID).Error; err != nil {
			return err
		}
		return tx.Model(&model.Contact{}).
			Where("client_id = ?", contact.ClientID).
			Update("is_primary", gorm.Expr("id = ?", contactID)).Error
	})
}
