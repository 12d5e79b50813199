package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/clientdesk/clientdesk/pkg/billing"
	"github.com/clientdesk/clientdesk/pkg/config"
	"github.com/clientdesk/clientdesk/pkg/model"
	"github.com/clientdesk/clientdesk/pkg/money"
)

type QuoteRepository struct {
	db  *gorm.DB
	cfg config.QuoteConfig
}

func NewQuoteRepository(db *gorm.DB, cfg config.QuoteConfig) *QuoteRepository {
	return &QuoteRepository{db: db, cfg: cfg}
}

// Create persists the quote, assigning the next free quote number for the
// current year when none is set. Numbering and insert share a transaction;
// a lost race on the unique index surfaces as gorm.ErrDuplicatedKey.
func (r *QuoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if quote.QuoteNumber == "" {
			number, err := r.nextQuoteNumber(tx, time.Now().Year())
			if err != nil {
				return err
			}
			quote.QuoteNumber = number
		}
		return tx.Create(quote).Error
	})
}

func (r *QuoteRepository) nextQuoteNumber(tx *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", r.cfg.NumberPrefix, year)

	// Soft-deleted quotes still hold their number, so search unscoped.
	var last string
	err := tx.Model(&model.Quote{}).Unscoped().
		Select("quote_number").
		Where("quote_number LIKE ?", prefix+"%").
		Order("quote_number DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	sequence := 1
	if last != "" {
		previous, err := money.SequenceOf(last)
		if err != nil {
			return "", err
		}
		sequence = previous + 1
	}

	return money.FormatDocumentNumber(r.cfg.NumberPrefix, year, sequence, r.cfg.NumberPadding), nil
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uint) (*model.Quote, error) {
	var quote model.Quote
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, id ASC")
		}).
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) List(ctx context.Context, clientID uint, status *model.QuoteStatus, limit, offset int) ([]model.Quote, int64, error) {
	var quotes []model.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Quote{})
	if clientID != 0 {
		query = query.Where("client_id = ?", clientID)
	}
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&quotes).Error

	return quotes, total, err
}

func (r *QuoteRepository) Update(ctx context.Context, quote *model.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

// Transition moves the quote to the given status, stamping sent_at and
// accepted_at as appropriate. Guarding which transitions are legal is the
// caller's job; the quote itself does not block writes.
func (r *QuoteRepository) Transition(ctx context.Context, id uint, status model.QuoteStatus) error {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	switch status {
	case model.QuoteSent:
		updates["sent_at"] = &now
	case model.QuoteAccepted:
		updates["accepted_at"] = &now
	}

	result := r.db.WithContext(ctx).Model(&model.Quote{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *QuoteRepository) SoftDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Quote{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HardDelete removes the quote permanently; its items go with it through
// the cascade rule.
func (r *QuoteRepository) HardDelete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Unscoped().Delete(&model.Quote{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *QuoteRepository) GetItem(ctx context.Context, itemID uint) (*model.QuoteItem, error) {
	var item model.QuoteItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveItem recomputes the line total, persists the item and brings the
// parent quote's subtotal, tax amount and total back in sync, all in one
// transaction.
func (r *QuoteRepository) SaveItem(ctx context.Context, item *model.QuoteItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item.Total = billing.ItemTotal(item.Quantity, item.UnitPrice)
		if err := tx.Save(item).Error; err != nil {
			return err
		}
		return recalculateTotals(tx, item.QuoteID)
	})
}

// DeleteItem removes the line without touching the quote's totals. This is
// the historical behavior; API write paths use DeleteItemAndRecalculate.
func (r *QuoteRepository) DeleteItem(ctx context.Context, itemID uint) error {
	result := r.db.WithContext(ctx).Delete(&model.QuoteItem{}, itemID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteItemAndRecalculate removes the line and re-totals the quote in the
// same transaction.
func (r *QuoteRepository) DeleteItemAndRecalculate(ctx context.Context, itemID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.QuoteItem
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.QuoteItem{}, itemID).Error; err != nil {
			return err
		}
		return recalculateTotals(tx, item.QuoteID)
	})
}

// RecalculateTotals re-derives subtotal, tax amount and total from the
// quote's current items.
func (r *QuoteRepository) RecalculateTotals(ctx context.Context, quoteID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return recalculateTotals(tx, quoteID)
	})
}

func recalculateTotals(tx *gorm.DB, quoteID uint) error {
	var quote model.Quote
	if err := tx.First(&quote, "id = ?", quoteID).Error; err != nil {
		return err
	}

	var items []model.QuoteItem
	if err := tx.Where("quote_id = ?", quoteID).Find(&items).Error; err != nil {
		return err
	}

	subtotal, taxAmount, total := billing.Totals(items, quote.TaxRate)

	return tx.Model(&model.Quote{}).
		Where("id = ?", quoteID).
		Updates(map[string]interface{}{
			"subtotal":   subtotal,
			"tax_amount": taxAmount,
			"total":      total,
			"updated_at": time.Now(),
		}).Error
}
