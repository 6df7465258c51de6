package service

import (
	"context"
	"fmt"
	"groupbuy-commerce/internal/client"
	"groupbuy-commerce/internal/model"
	"groupbuy-commerce/internal/repository"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IssueParams struct {
	Buyer     string
	ProductID string
	Quantity  int64
	Amount    int64 // amount paid, minor units
	Currency  string
	PaymentID *string

	CashbackRateBps int64
	// Post-fee amount the cashback is computed on.
	MerchantNet int64
	// Campaign allocations were already counted into revenue at contribution
	// intake; direct sales are counted here.
	RecordRevenue bool
}

// IssuerService converts a completed sale or campaign allocation into exactly
// one purchase record and pays cashback on the merchant-net amount.
type IssuerService interface {
	Issue(ctx context.Context, tx *gorm.DB, p IssueParams) (string, error)
}

type issuerServiceImpl struct {
	purchaseRepo repository.PurchaseRepository
	revenueRepo  repository.RevenueRepository
	ledgerClient client.LedgerClient
}

func NewIssuerService(
	purchaseRepo repository.PurchaseRepository,
	revenueRepo repository.RevenueRepository,
	ledgerClient client.LedgerClient,
) IssuerService {
	return &issuerServiceImpl{
		purchaseRepo: purchaseRepo,
		revenueRepo:  revenueRepo,
		ledgerClient: ledgerClient,
	}
}

func (s *issuerServiceImpl) Issue(ctx context.Context, tx *gorm.DB, p IssueParams) (string, error) {
	cashback := int64(0)
	if p.CashbackRateBps > 0 {
		var err error
		cashback, err = applyBps(p.MerchantNet, p.CashbackRateBps)
		if err != nil {
			return "", err
		}
	}

	if cashback > 0 {
		// Cashback is a bonus, not principal: a failed transfer is logged and
		// skipped, the purchase still commits.
		if err := s.ledgerClient.Transfer(ctx, p.Buyer, cashback, p.Currency); err != nil {
			log.Printf("cashback transfer to %s skipped: %v", p.Buyer, err)
			cashback = 0
		}
	}

	purchase := &model.Purchase{
		ID:           uuid.NewString(),
		ProductID:    p.ProductID,
		Buyer:        p.Buyer,
		Quantity:     p.Quantity,
		Amount:       p.Amount,
		Currency:     p.Currency,
		Status:       string(model.PurchaseStatusCompleted),
		CashbackPaid: cashback,
		PaymentID:    p.PaymentID,
	}
	if err := s.purchaseRepo.Create(ctx, tx, purchase); err != nil {
		return "", fmt.Errorf("store purchase: %w", err)
	}

	if p.RecordRevenue {
		if err := s.revenueRepo.Add(ctx, tx, p.Currency, p.Amount); err != nil {
			return "", fmt.Errorf("record revenue: %w", err)
		}
	}

	return purchase.ID, nil
}
