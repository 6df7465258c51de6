package repository

import (
	"context"
	"groupbuy-commerce/internal/model"
	"time"

	"gorm.io/gorm"
)

type PurchaseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, purchase *model.Purchase) error
	FindByBuyer(ctx context.Context, buyer string) ([]*model.Purchase, error)
	MarkReviewed(ctx context.Context, purchaseID, buyer string) error
}

type purchaseRepoImpl struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepoImpl{
		db: db,
	}
}

func (r *purchaseRepoImpl) Create(ctx context.Context, tx *gorm.DB, purchase *model.Purchase) error {
	return tx.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepoImpl) FindByBuyer(ctx context.Context, buyer string) ([]*model.Purchase, error) {
	var purchases []*model.Purchase
	err := r.db.WithContext(ctx).
		Where("buyer = ?", buyer).
		Order("created_at").
		Find(&purchases).Error
	if err != nil {
		return nil, err
	}

	return purchases, nil
}

// MarkReviewed is the only mutation allowed on a completed purchase.
func (r *purchaseRepoImpl) MarkReviewed(ctx context.Context, purchaseID, buyer string) error {
	result := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("id = ? AND buyer = ? AND status = ?", purchaseID, buyer, model.PurchaseStatusCompleted).
		Updates(map[string]interface{}{
			"reviewed":   true,
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
