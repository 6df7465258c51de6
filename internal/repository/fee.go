package repository

import (
	"context"
	"errors"
	"groupbuy-commerce/internal/model"
	"time"

	"gorm.io/gorm"
)

// FeeRepository reads the marketplace fee in effect at the moment of a sale
// or completion. Rate changes are staged with an EffectiveAt in the future by
// the governance process; this layer only ever reads the latest effective row.
type FeeRepository interface {
	CurrentRateBps(ctx context.Context, tx *gorm.DB) (int64, error)
	SetRate(ctx context.Context, rateBps int64, effectiveAt time.Time) error
	EnsureDefault(ctx context.Context, rateBps int64) error
}

type feeRepoImpl struct {
	db *gorm.DB
}

func NewFeeRepository(db *gorm.DB) FeeRepository {
	return &feeRepoImpl{db: db}
}

func (r *feeRepoImpl) CurrentRateBps(ctx context.Context, tx *gorm.DB) (int64, error) {
	var fee model.MarketplaceFee
	err := tx.WithContext(ctx).
		Where("effective_at <= ?", time.Now()).
		Order("effective_at DESC").
		First(&fee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	return fee.RateBps, nil
}

func (r *feeRepoImpl) SetRate(ctx context.Context, rateBps int64, effectiveAt time.Time) error {
	return r.db.WithContext(ctx).Create(&model.MarketplaceFee{
		RateBps:     rateBps,
		EffectiveAt: effectiveAt,
	}).Error
}

func (r *feeRepoImpl) EnsureDefault(ctx context.Context, rateBps int64) error {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.MarketplaceFee{}).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return r.SetRate(ctx, rateBps, time.Now())
}
