package service

import (
	"context"
	"fmt"
	"groupbuy-commerce/internal/dto"
	"groupbuy-commerce/internal/model"
	"groupbuy-commerce/internal/repository"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	maxCashbackBps     = 2000
	maxBulkDiscountBps = 5000
	maxGroupSizeLimit  = 1000
	minCampaignHours   = 1
	maxCampaignHours   = 30 * 24
)

// CatalogService creates products with their group-buying configuration and
// campaign in one transaction. The core engines only ever read what it writes,
// apart from stock changes on sale or completion.
type CatalogService interface {
	CreateProduct(ctx context.Context, merchantID string, req *dto.CreateProductRequest) (*model.Product, error)
	ListProducts(ctx context.Context) ([]*model.Product, error)
}

type catalogServiceImpl struct {
	db           *gorm.DB
	productRepo  repository.ProductRepository
	campaignRepo repository.CampaignRepository
	merchantRepo repository.MerchantRepository
}

func NewCatalogService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	campaignRepo repository.CampaignRepository,
	merchantRepo repository.MerchantRepository,
) CatalogService {
	return &catalogServiceImpl{
		db:           db,
		productRepo:  productRepo,
		campaignRepo: campaignRepo,
		merchantRepo: merchantRepo,
	}
}

func validateProductRequest(req *dto.CreateProductRequest) error {
	if req.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidProduct)
	}
	if req.Price <= 0 || req.Stock < 0 {
		return fmt.Errorf("%w: price and stock must be positive", ErrInvalidProduct)
	}
	if req.CashbackRateBps < 0 || req.CashbackRateBps > maxCashbackBps {
		return fmt.Errorf("%w: cashback rate out of bounds", ErrInvalidProduct)
	}
	if req.Currency == "" {
		return fmt.Errorf("%w: missing currency", ErrInvalidProduct)
	}

	switch model.ProductType(req.Type) {
	case model.ProductTypeSingle:
		return nil
	case model.ProductTypeBulk:
		if req.GroupBuying == nil || req.GroupBuying.DiscountThreshold <= 0 {
			return fmt.Errorf("%w: bulk product needs a discount threshold", ErrInvalidProduct)
		}
		if req.GroupBuying.BulkDiscountBps < 0 || req.GroupBuying.BulkDiscountBps > maxBulkDiscountBps {
			return fmt.Errorf("%w: bulk discount out of bounds", ErrInvalidProduct)
		}
		return nil
	case model.ProductTypeGroupBuying:
		gb := req.GroupBuying
		if gb == nil {
			return fmt.Errorf("%w: group-buying product needs a campaign config", ErrInvalidProduct)
		}
		if gb.MinGroupSize < 1 || gb.MaxGroupSize < gb.MinGroupSize || gb.MaxGroupSize > maxGroupSizeLimit {
			return fmt.Errorf("%w: group size bounds", ErrInvalidProduct)
		}
		if gb.DurationHours < minCampaignHours || gb.DurationHours > maxCampaignHours {
			return fmt.Errorf("%w: campaign duration out of bounds", ErrInvalidProduct)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidProduct, req.Type)
	}
}

func (s *catalogServiceImpl) CreateProduct(ctx context.Context, merchantID string, req *dto.CreateProductRequest) (*model.Product, error) {
	if err := validateProductRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.merchantRepo.Get(ctx, merchantID); err != nil {
		return nil, fmt.Errorf("load merchant: %w", err)
	}

	product := &model.Product{
		ID:              uuid.NewString(),
		MerchantID:      merchantID,
		Name:            req.Name,
		Price:           req.Price,
		Stock:           req.Stock,
		Type:            req.Type,
		CashbackRateBps: req.CashbackRateBps,
		Currency:        req.Currency,
		Active:          true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Create(ctx, tx, product); err != nil {
			return fmt.Errorf("store product: %w", err)
		}

		if req.GroupBuying == nil {
			return nil
		}

		gb := req.GroupBuying
		err := s.productRepo.CreateGroupConfig(ctx, tx, &model.GroupBuyingConfig{
			ProductID:         product.ID,
			MinGroupSize:      gb.MinGroupSize,
			MaxGroupSize:      gb.MaxGroupSize,
			DurationSeconds:   gb.DurationHours * 3600,
			DiscountThreshold: gb.DiscountThreshold,
			BulkDiscountBps:   gb.BulkDiscountBps,
		})
		if err != nil {
			return fmt.Errorf("store group config: %w", err)
		}

		if product.Type != string(model.ProductTypeGroupBuying) {
			return nil
		}

		campaign := &model.Campaign{
			ProductID: product.ID,
			Status:    string(model.CampaignStatusActive),
			Deadline:  time.Now().Add(time.Duration(gb.DurationHours) * time.Hour),
		}
		if err := s.campaignRepo.Create(ctx, tx, campaign); err != nil {
			return fmt.Errorf("open campaign: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context) ([]*model.Product, error) {
	return s.productRepo.List(ctx)
}
