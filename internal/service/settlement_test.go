package service

import (
	"context"
	"groupbuy-commerce/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyPaymentRoutesToCampaign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	settlement := NewSettlementService(env.productRepo, env.campaigns, env.purchases)
	productID := env.createGroupProduct(t, 100, 10, 0, 1, 10)

	result, err := settlement.ApplyPayment(ctx, ApplyPaymentParams{
		ProductID: productID,
		Buyer:     "alice",
		Amount:    100,
		Currency:  "USD",
		PaymentID: "0102030405060708090a0b0c0d0e0f10",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.Accepted)
	assert.True(t, result.Completed)

	campaign, _ := env.campaignState(t, productID)
	assert.Equal(t, string(model.CampaignStatusCompleted), campaign.Status)
}

func TestApplyPaymentRoutesToDirectSale(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	settlement := NewSettlementService(env.productRepo, env.campaigns, env.purchases)
	productID := env.createDirectProduct(t, string(model.ProductTypeSingle), 100, 5, 0, nil)

	result, err := settlement.ApplyPayment(ctx, ApplyPaymentParams{
		ProductID: productID,
		Buyer:     "dave",
		Quantity:  2,
		Amount:    200,
		Currency:  "USD",
		PaymentID: "0102030405060708090a0b0c0d0e0f10",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.PurchaseID)

	// the same payment id can fund at most one settlement
	_, err = settlement.ApplyPayment(ctx, ApplyPaymentParams{
		ProductID: productID,
		Buyer:     "dave",
		Quantity:  1,
		Amount:    100,
		Currency:  "USD",
		PaymentID: "0102030405060708090a0b0c0d0e0f10",
	})
	assert.ErrorIs(t, err, ErrDuplicatePayment)
}

func TestApplyPaymentRejectsMalformedPaymentID(t *testing.T) {
	env := newTestEnv(t)
	settlement := NewSettlementService(env.productRepo, env.campaigns, env.purchases)
	productID := env.createDirectProduct(t, string(model.ProductTypeSingle), 100, 5, 0, nil)

	for _, id := range []string{"", "zzzz", "0102", "0102030405060708090a0b0c0d0e0f1011"} {
		_, err := settlement.ApplyPayment(context.Background(), ApplyPaymentParams{
			ProductID: productID,
			Buyer:     "dave",
			Quantity:  1,
			Amount:    100,
			Currency:  "USD",
			PaymentID: id,
		})
		assert.ErrorIs(t, err, ErrInvalidPaymentID, "id %q", id)
	}
}
