package repository

import (
	"context"
	"errors"
	"groupbuy-commerce/internal/model"
	"time"

	"gorm.io/gorm"
)

type PaymentRecordRepository interface {
	TryReserve(ctx context.Context, tx *gorm.DB, paymentID string) (bool, error)
	Exists(ctx context.Context, paymentID string) (bool, error)
}

type paymentRecordRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRecordRepository(db *gorm.DB) PaymentRecordRepository {
	return &paymentRecordRepoImpl{db: db}
}

// TryReserve marks a payment id processed exactly once. It must run inside
// the same transaction as the campaign or purchase mutation it guards, so a
// duplicate id rolls back with everything else.
func (r *paymentRecordRepoImpl) TryReserve(ctx context.Context, tx *gorm.DB, paymentID string) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.PaymentRecord{}).
		Where("id = ?", paymentID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	err = tx.WithContext(ctx).Create(&model.PaymentRecord{
		ID:          paymentID,
		ProcessedAt: time.Now(),
	}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

func (r *paymentRecordRepoImpl) Exists(ctx context.Context, paymentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PaymentRecord{}).
		Where("id = ?", paymentID).
		Count(&count).Error

	return count > 0, err
}
