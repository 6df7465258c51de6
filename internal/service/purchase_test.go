package service

import (
	"context"
	"groupbuy-commerce/internal/dto"
	"groupbuy-commerce/internal/model"
	"groupbuy-commerce/internal/repository"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDirectPurchaseSplitsFeeAndPaysCashback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.setFeeRate(t, 1000) // 10%
	productID := env.createDirectProduct(t, string(model.ProductTypeSingle), 1000, 10, 1000, nil)

	purchaseID, err := env.purchases.Buy(ctx, "dave", productID, 2, 2000, "USD", OriginDirect())
	require.NoError(t, err)
	require.NotEmpty(t, purchaseID)

	assert.Equal(t, int64(200), env.ledger.totalTo(testMarketplaceAccount))
	assert.Equal(t, int64(1800), env.ledger.totalTo(testPayoutAccount))
	assert.Equal(t, int64(180), env.ledger.totalTo("dave"), "cashback on the merchant-net amount")

	product, err := env.productRepo.Find(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), product.Stock)
	assert.Equal(t, int64(2000), env.revenueFor(t, "USD"))

	purchases, err := env.purchaseRepo.FindByBuyer(ctx, "dave")
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, int64(180), purchases[0].CashbackPaid)
}

func TestBulkDiscountAppliesAtThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID := env.createDirectProduct(t, string(model.ProductTypeBulk), 100, 50, 0, &dto.GroupBuyingParams{
		DiscountThreshold: 10,
		BulkDiscountBps:   2000, // 20%
	})

	// at the threshold the discount applies exactly once and the buyer pays
	// exactly price*quantity*(1 - rate)
	_, err := env.purchases.Buy(ctx, "dave", productID, 10, 1000, "USD", OriginDirect())
	require.NoError(t, err)

	assert.Equal(t, int64(800), env.ledger.totalTo(testPayoutAccount))
	assert.Equal(t, int64(200), env.ledger.totalTo("dave"), "overpayment refunded")
	assert.Equal(t, int64(800), env.revenueFor(t, "USD"))
}

func TestBulkDiscountSkippedBelowThreshold(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID := env.createDirectProduct(t, string(model.ProductTypeBulk), 100, 50, 0, &dto.GroupBuyingParams{
		DiscountThreshold: 10,
		BulkDiscountBps:   2000,
	})

	_, err := env.purchases.Buy(ctx, "dave", productID, 9, 900, "USD", OriginDirect())
	require.NoError(t, err)
	assert.Equal(t, int64(900), env.ledger.totalTo(testPayoutAccount))
}

func TestDirectPurchaseValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID := env.createDirectProduct(t, string(model.ProductTypeSingle), 100, 5, 0, nil)

	_, err := env.purchases.Buy(ctx, "dave", productID, 0, 100, "USD", OriginDirect())
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = env.purchases.Buy(ctx, "dave", productID, 6, 600, "USD", OriginDirect())
	assert.ErrorIs(t, err, repository.ErrInsufficientStock)

	_, err = env.purchases.Buy(ctx, "dave", productID, 2, 199, "USD", OriginDirect())
	assert.ErrorIs(t, err, ErrInsufficientPayment)

	_, err = env.purchases.Buy(ctx, "dave", productID, 1, 100, "EUR", OriginDirect())
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	groupProductID := env.createGroupProduct(t, 1000, 10, 0, 2, 10)
	_, err = env.purchases.Buy(ctx, "dave", groupProductID, 1, 1000, "USD", OriginDirect())
	assert.ErrorIs(t, err, ErrWrongProductType)

	// no partial writes from any rejection
	product, err := env.productRepo.Find(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), product.Stock)
	assert.Equal(t, int64(0), env.revenueFor(t, "USD"))
}

func TestOverpaymentRefundFailureAbortsPurchase(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID := env.createDirectProduct(t, string(model.ProductTypeSingle), 100, 5, 0, nil)
	env.ledger.failTransfersTo("dave")

	_, err := env.purchases.Buy(ctx, "dave", productID, 1, 150, "USD", OriginDirect())
	require.ErrorIs(t, err, ErrTransferFailed)

	product, err := env.productRepo.Find(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), product.Stock, "aborted purchase restores stock")

	purchases, err := env.purchaseRepo.FindByBuyer(ctx, "dave")
	require.NoError(t, err)
	assert.Empty(t, purchases)
	assert.Equal(t, int64(0), env.revenueFor(t, "USD"))
}

func TestProtocolOriginIsIdempotentPerPaymentID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID := env.createDirectProduct(t, string(model.ProductTypeSingle), 100, 5, 0, nil)
	paymentID := "ffeeddccbbaa99887766554433221100"

	_, err := env.purchases.Buy(ctx, "dave", productID, 1, 100, "USD", OriginProtocol(paymentID))
	require.NoError(t, err)

	_, err = env.purchases.Buy(ctx, "dave", productID, 1, 100, "USD", OriginProtocol(paymentID))
	assert.ErrorIs(t, err, ErrDuplicatePayment)

	product, err := env.productRepo.Find(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), product.Stock, "stock decremented exactly once")
}

func TestMarkReviewed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	productID := env.createDirectProduct(t, string(model.ProductTypeSingle), 100, 5, 0, nil)

	purchaseID, err := env.purchases.Buy(ctx, "dave", productID, 1, 100, "USD", OriginDirect())
	require.NoError(t, err)

	require.NoError(t, env.purchases.MarkReviewed(ctx, purchaseID, "dave"))

	purchases, err := env.purchaseRepo.FindByBuyer(ctx, "dave")
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.True(t, purchases[0].Reviewed)

	// only the buyer may flag their own purchase
	err = env.purchases.MarkReviewed(ctx, purchaseID, "mallory")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
