package service

import (
	"context"
	"fmt"
	"groupbuy-commerce/internal/model"
	"groupbuy-commerce/internal/repository"
	"time"

	"github.com/google/uuid"
)

const maxFeeRateBps = 1000

type MerchantService interface {
	CreateMerchant(ctx context.Context, name, payoutAccount string) (string, error)
	GetMerchant(ctx context.Context, id string) (*model.Merchant, error)
	RevenueTotals(ctx context.Context) ([]*model.RevenueLedger, error)
	SetFeeRate(ctx context.Context, rateBps int64) error
}

type merchantServiceImpl struct {
	merchantRepo repository.MerchantRepository
	revenueRepo  repository.RevenueRepository
	feeRepo      repository.FeeRepository
}

func NewMerchantService(
	merchantRepo repository.MerchantRepository,
	revenueRepo repository.RevenueRepository,
	feeRepo repository.FeeRepository,
) MerchantService {
	return &merchantServiceImpl{
		merchantRepo: merchantRepo,
		revenueRepo:  revenueRepo,
		feeRepo:      feeRepo,
	}
}

func (s *merchantServiceImpl) CreateMerchant(ctx context.Context, name, payoutAccount string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidProduct)
	}

	merchant := &model.Merchant{
		ID:            uuid.NewString(),
		Name:          name,
		PayoutAccount: payoutAccount,
	}
	if merchant.PayoutAccount == "" {
		merchant.PayoutAccount = merchant.ID
	}

	err := s.merchantRepo.Upsert(ctx, merchant)
	if err != nil {
		return "", err
	}

	return merchant.ID, nil
}

func (s *merchantServiceImpl) GetMerchant(ctx context.Context, id string) (*model.Merchant, error) {
	return s.merchantRepo.Get(ctx, id)
}

func (s *merchantServiceImpl) RevenueTotals(ctx context.Context) ([]*model.RevenueLedger, error) {
	return s.revenueRepo.Totals(ctx)
}

// SetFeeRate stages a new marketplace fee. The governance timelock lives
// outside this service; only the bounds are enforced here.
func (s *merchantServiceImpl) SetFeeRate(ctx context.Context, rateBps int64) error {
	if rateBps < 0 || rateBps > maxFeeRateBps {
		return ErrInvalidFeeRate
	}

	return s.feeRepo.SetRate(ctx, rateBps, time.Now())
}
