package repository

import (
	"context"
	"groupbuy-commerce/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RevenueRepository interface {
	Add(ctx context.Context, tx *gorm.DB, currency string, amount int64) error
	Subtract(ctx context.Context, tx *gorm.DB, currency string, amount int64) error
	Totals(ctx context.Context) ([]*model.RevenueLedger, error)
}

type revenueRepoImpl struct {
	db *gorm.DB
}

func NewRevenueRepository(db *gorm.DB) RevenueRepository {
	return &revenueRepoImpl{db: db}
}

func (r *revenueRepoImpl) Add(ctx context.Context, tx *gorm.DB, currency string, amount int64) error {
	return tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "currency"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total":      gorm.Expr("revenue_ledgers.total + ?", amount),
			"updated_at": time.Now(),
		}),
	}).Create(&model.RevenueLedger{
		Currency:  currency,
		Total:     amount,
		UpdatedAt: time.Now(),
	}).Error
}

// Subtract refuses to drive a counter negative; a refund can never exceed
// what was previously counted.
func (r *revenueRepoImpl) Subtract(ctx context.Context, tx *gorm.DB, currency string, amount int64) error {
	result := tx.WithContext(ctx).Model(&model.RevenueLedger{}).
		Where("currency = ? AND total >= ?", currency, amount).
		Updates(map[string]interface{}{
			"total":      gorm.Expr("total - ?", amount),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRevenueUnderflow
	}

	return nil
}

func (r *revenueRepoImpl) Totals(ctx context.Context) ([]*model.RevenueLedger, error) {
	var totals []*model.RevenueLedger
	err := r.db.WithContext(ctx).
		Order("currency").
		Find(&totals).Error
	if err != nil {
		return nil, err
	}

	return totals, nil
}
