package service

import (
	"context"
	"groupbuy-commerce/internal/dto"
	"groupbuy-commerce/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGroupProductOpensCampaign(t *testing.T) {
	env := newTestEnv(t)
	productID := env.createGroupProduct(t, 1000, 10, 500, 2, 10)

	campaign, contributions := env.campaignState(t, productID)
	assert.Equal(t, string(model.CampaignStatusActive), campaign.Status)
	assert.Empty(t, contributions)
	assert.False(t, campaign.Deadline.IsZero())
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	base := func() *dto.CreateProductRequest {
		return &dto.CreateProductRequest{
			Name:     "Deal",
			Price:    100,
			Stock:    10,
			Type:     string(model.ProductTypeGroupBuying),
			Currency: "USD",
			GroupBuying: &dto.GroupBuyingParams{
				MinGroupSize:  2,
				MaxGroupSize:  10,
				DurationHours: 24,
			},
		}
	}

	cases := []struct {
		name   string
		mutate func(*dto.CreateProductRequest)
	}{
		{"empty name", func(r *dto.CreateProductRequest) { r.Name = "" }},
		{"zero price", func(r *dto.CreateProductRequest) { r.Price = 0 }},
		{"cashback over cap", func(r *dto.CreateProductRequest) { r.CashbackRateBps = 2001 }},
		{"unknown type", func(r *dto.CreateProductRequest) { r.Type = "AUCTION" }},
		{"group too large", func(r *dto.CreateProductRequest) { r.GroupBuying.MaxGroupSize = 1001 }},
		{"max below min", func(r *dto.CreateProductRequest) { r.GroupBuying.MaxGroupSize = 1 }},
		{"duration too short", func(r *dto.CreateProductRequest) { r.GroupBuying.DurationHours = 0 }},
		{"duration too long", func(r *dto.CreateProductRequest) { r.GroupBuying.DurationHours = 31 * 24 }},
		{"missing campaign config", func(r *dto.CreateProductRequest) { r.GroupBuying = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base()
			tc.mutate(req)
			_, err := env.catalog.CreateProduct(ctx, env.merchant, req)
			assert.ErrorIs(t, err, ErrInvalidProduct)
		})
	}
}

func TestCreateBulkProductValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.catalog.CreateProduct(ctx, env.merchant, &dto.CreateProductRequest{
		Name:     "Crate",
		Price:    100,
		Stock:    10,
		Type:     string(model.ProductTypeBulk),
		Currency: "USD",
		GroupBuying: &dto.GroupBuyingParams{
			DiscountThreshold: 10,
			BulkDiscountBps:   5001, // over the 50% cap
		},
	})
	assert.ErrorIs(t, err, ErrInvalidProduct)

	_, err = env.catalog.CreateProduct(ctx, env.merchant, &dto.CreateProductRequest{
		Name:     "Crate",
		Price:    100,
		Stock:    10,
		Type:     string(model.ProductTypeBulk),
		Currency: "USD",
	})
	assert.ErrorIs(t, err, ErrInvalidProduct, "bulk product needs a discount threshold")
}

func TestCreateProductRequiresKnownMerchant(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.catalog.CreateProduct(context.Background(), "nobody", &dto.CreateProductRequest{
		Name:     "Deal",
		Price:    100,
		Stock:    10,
		Type:     string(model.ProductTypeSingle),
		Currency: "USD",
	})
	require.Error(t, err)
}
