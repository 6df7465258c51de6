package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"groupbuy-commerce/internal/model"
	"groupbuy-commerce/internal/repository"
)

type ApplyPaymentParams struct {
	ProductID string
	Buyer     string
	Quantity  int64
	Amount    int64
	Currency  string
	PaymentID string // hex of the protocol's 16-byte payment id
}

type ApplyPaymentResult struct {
	PurchaseID string
	Accepted   int64
	Completed  bool
}

// SettlementService consumes the external payment protocol's callback. The
// caller identity is verified at the transport layer; here the payment is
// routed to the campaign engine or the direct-sale engine, idempotent per
// payment id either way.
type SettlementService interface {
	ApplyPayment(ctx context.Context, p ApplyPaymentParams) (*ApplyPaymentResult, error)
}

type settlementServiceImpl struct {
	productRepo     repository.ProductRepository
	campaignService CampaignService
	purchaseService PurchaseService
}

func NewSettlementService(
	productRepo repository.ProductRepository,
	campaignService CampaignService,
	purchaseService PurchaseService,
) SettlementService {
	return &settlementServiceImpl{
		productRepo:     productRepo,
		campaignService: campaignService,
		purchaseService: purchaseService,
	}
}

func normalizePaymentID(id string) (string, error) {
	raw, err := hex.DecodeString(id)
	if err != nil || len(raw) != 16 {
		return "", ErrInvalidPaymentID
	}

	return hex.EncodeToString(raw), nil
}

func (s *settlementServiceImpl) ApplyPayment(ctx context.Context, p ApplyPaymentParams) (*ApplyPaymentResult, error) {
	paymentID, err := normalizePaymentID(p.PaymentID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.Find(ctx, p.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}

	if product.Type == string(model.ProductTypeGroupBuying) {
		result, err := s.campaignService.Contribute(ctx, p.ProductID, p.Buyer, p.Amount, p.Currency, &paymentID)
		if err != nil {
			return nil, err
		}
		return &ApplyPaymentResult{
			Accepted:  result.Accepted,
			Completed: result.Completed,
		}, nil
	}

	purchaseID, err := s.purchaseService.Buy(ctx, p.Buyer, p.ProductID, p.Quantity, p.Amount, p.Currency, OriginProtocol(paymentID))
	if err != nil {
		return nil, err
	}

	return &ApplyPaymentResult{
		PurchaseID: purchaseID,
		Accepted:   p.Amount,
	}, nil
}
