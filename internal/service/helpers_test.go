package service

import (
	"context"
	"errors"
	"fmt"
	"groupbuy-commerce/internal/dto"
	"groupbuy-commerce/internal/model"
	"groupbuy-commerce/internal/repository"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testMarketplaceAccount = "marketplace-treasury"
	testPayoutAccount      = "merchant-payout"
)

type transferRecord struct {
	To       string
	Amount   int64
	Currency string
}

// fakeLedger records transfers and can be told to fail for specific accounts.
type fakeLedger struct {
	mu        sync.Mutex
	transfers []transferRecord
	failFor   map[string]bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{failFor: make(map[string]bool)}
}

func (f *fakeLedger) Transfer(ctx context.Context, to string, amount int64, currency string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failFor[to] {
		return errors.New("counterparty rejected")
	}
	f.transfers = append(f.transfers, transferRecord{To: to, Amount: amount, Currency: currency})
	return nil
}

func (f *fakeLedger) failTransfersTo(account string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failFor[account] = true
}

func (f *fakeLedger) totalTo(account string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, tr := range f.transfers {
		if tr.To == account {
			sum += tr.Amount
		}
	}
	return sum
}

func (f *fakeLedger) countTo(account string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, tr := range f.transfers {
		if tr.To == account {
			n++
		}
	}
	return n
}

var testDBSeq atomic.Int64

type testEnv struct {
	db       *gorm.DB
	ledger   *fakeLedger
	merchant string

	productRepo       repository.ProductRepository
	campaignRepo      repository.CampaignRepository
	purchaseRepo      repository.PurchaseRepository
	paymentRecordRepo repository.PaymentRecordRepository
	revenueRepo       repository.RevenueRepository
	feeRepo           repository.FeeRepository

	catalog   CatalogService
	campaigns CampaignService
	purchases PurchaseService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Merchant{},
		&model.Product{},
		&model.GroupBuyingConfig{},
		&model.Campaign{},
		&model.Contribution{},
		&model.PaymentRecord{},
		&model.Purchase{},
		&model.RevenueLedger{},
		&model.MarketplaceFee{},
	))

	env := &testEnv{
		db:                db,
		ledger:            newFakeLedger(),
		productRepo:       repository.NewProductRepository(db),
		campaignRepo:      repository.NewCampaignRepository(db),
		purchaseRepo:      repository.NewPurchaseRepository(db),
		paymentRecordRepo: repository.NewPaymentRecordRepository(db),
		revenueRepo:       repository.NewRevenueRepository(db),
		feeRepo:           repository.NewFeeRepository(db),
	}
	merchantRepo := repository.NewMerchantRepository(db)

	issuer := NewIssuerService(env.purchaseRepo, env.revenueRepo, env.ledger)
	env.campaigns = NewCampaignService(
		db, env.campaignRepo, env.productRepo, merchantRepo,
		env.paymentRecordRepo, env.revenueRepo, env.feeRepo,
		issuer, env.ledger, testMarketplaceAccount,
	)
	env.purchases = NewPurchaseService(
		db, env.productRepo, merchantRepo, env.purchaseRepo,
		env.paymentRecordRepo, env.feeRepo,
		issuer, env.ledger, testMarketplaceAccount,
	)
	env.catalog = NewCatalogService(db, env.productRepo, env.campaignRepo, merchantRepo)

	ctx := context.Background()
	env.merchant = "merchant-1"
	require.NoError(t, merchantRepo.Upsert(ctx, &model.Merchant{
		ID:            env.merchant,
		Name:          "Test Merchant",
		PayoutAccount: testPayoutAccount,
	}))

	return env
}

func (e *testEnv) setFeeRate(t *testing.T, bps int64) {
	t.Helper()
	require.NoError(t, e.feeRepo.SetRate(context.Background(), bps, time.Now().Add(-time.Minute)))
}

func (e *testEnv) createGroupProduct(t *testing.T, price, stock, cashbackBps, minSize, maxSize int64) string {
	t.Helper()
	product, err := e.catalog.CreateProduct(context.Background(), e.merchant, &dto.CreateProductRequest{
		Name:            "Group Deal",
		Price:           price,
		Stock:           stock,
		Type:            string(model.ProductTypeGroupBuying),
		CashbackRateBps: cashbackBps,
		Currency:        "USD",
		GroupBuying: &dto.GroupBuyingParams{
			MinGroupSize:  minSize,
			MaxGroupSize:  maxSize,
			DurationHours: 24,
		},
	})
	require.NoError(t, err)
	return product.ID
}

func (e *testEnv) createDirectProduct(t *testing.T, typ string, price, stock, cashbackBps int64, gb *dto.GroupBuyingParams) string {
	t.Helper()
	product, err := e.catalog.CreateProduct(context.Background(), e.merchant, &dto.CreateProductRequest{
		Name:            "Direct Item",
		Price:           price,
		Stock:           stock,
		Type:            typ,
		CashbackRateBps: cashbackBps,
		Currency:        "USD",
		GroupBuying:     gb,
	})
	require.NoError(t, err)
	return product.ID
}

func (e *testEnv) expireCampaign(t *testing.T, productID string) {
	t.Helper()
	err := e.db.Model(&model.Campaign{}).
		Where("product_id = ?", productID).
		Update("deadline", time.Now().Add(-time.Hour)).Error
	require.NoError(t, err)
}

func (e *testEnv) campaignState(t *testing.T, productID string) (*model.Campaign, []*model.Contribution) {
	t.Helper()
	campaign, contributions, err := e.campaigns.Get(context.Background(), productID)
	require.NoError(t, err)
	return campaign, contributions
}

// requireInvariants checks the always-true campaign properties: recorded
// contributions sum to the running total, and the participant count matches
// the count of nonzero contributions.
func (e *testEnv) requireInvariants(t *testing.T, productID string) {
	t.Helper()
	campaign, contributions := e.campaignState(t, productID)

	var sum int64
	nonzero := 0
	for _, c := range contributions {
		sum += c.Amount
		if c.Amount > 0 {
			nonzero++
		}
	}
	require.Equal(t, campaign.TotalContributed, sum)
	require.Equal(t, len(contributions), nonzero, "zero-amount rows only allowed post-cancel")
}

func (e *testEnv) revenueFor(t *testing.T, currency string) int64 {
	t.Helper()
	totals, err := e.revenueRepo.Totals(context.Background())
	require.NoError(t, err)
	for _, entry := range totals {
		if entry.Currency == currency {
			return entry.Total
		}
	}
	return 0
}

func strptr(s string) *string { return &s }
