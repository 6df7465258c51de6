package service

import (
	"context"
	"fmt"
	"groupbuy-commerce/internal/client"
	"groupbuy-commerce/internal/model"
	"groupbuy-commerce/internal/repository"

	"gorm.io/gorm"
)

// PaymentOrigin says how payment for a direct sale arrived. Protocol-relayed
// payments carry an externally issued payment id that must be reserved in the
// same transaction as the sale.
type PaymentOrigin struct {
	Protocol  bool
	PaymentID string
}

func OriginDirect() PaymentOrigin {
	return PaymentOrigin{}
}

func OriginProtocol(paymentID string) PaymentOrigin {
	return PaymentOrigin{Protocol: true, PaymentID: paymentID}
}

// PurchaseService handles direct (non-campaign) sales of SINGLE and BULK
// products.
type PurchaseService interface {
	Buy(ctx context.Context, buyer, productID string, quantity, payment int64, currency string, origin PaymentOrigin) (string, error)
	Purchases(ctx context.Context, buyer string) ([]*model.Purchase, error)
	MarkReviewed(ctx context.Context, purchaseID, buyer string) error
}

type purchaseServiceImpl struct {
	db                 *gorm.DB
	productRepo        repository.ProductRepository
	merchantRepo       repository.MerchantRepository
	purchaseRepo       repository.PurchaseRepository
	paymentRecordRepo  repository.PaymentRecordRepository
	feeRepo            repository.FeeRepository
	issuer             IssuerService
	ledgerClient       client.LedgerClient
	marketplaceAccount string
	locks              *keyedMutex
}

func NewPurchaseService(
	db *gorm.DB,
	productRepo repository.ProductRepository,
	merchantRepo repository.MerchantRepository,
	purchaseRepo repository.PurchaseRepository,
	paymentRecordRepo repository.PaymentRecordRepository,
	feeRepo repository.FeeRepository,
	issuer IssuerService,
	ledgerClient client.LedgerClient,
	marketplaceAccount string,
) PurchaseService {
	return &purchaseServiceImpl{
		db:                 db,
		productRepo:        productRepo,
		merchantRepo:       merchantRepo,
		purchaseRepo:       purchaseRepo,
		paymentRecordRepo:  paymentRecordRepo,
		feeRepo:            feeRepo,
		issuer:             issuer,
		ledgerClient:       ledgerClient,
		marketplaceAccount: marketplaceAccount,
		locks:              newKeyedMutex(),
	}
}

func (s *purchaseServiceImpl) Buy(ctx context.Context, buyer, productID string, quantity, payment int64, currency string, origin PaymentOrigin) (string, error) {
	unlock := s.locks.Lock(productID)
	defer unlock()

	var purchaseID string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.Get(ctx, tx, productID)
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}
		if !product.Active {
			return gorm.ErrRecordNotFound
		}
		if product.Type == string(model.ProductTypeGroupBuying) {
			return ErrWrongProductType
		}
		if currency != product.Currency {
			return ErrCurrencyMismatch
		}

		if quantity <= 0 {
			return ErrInvalidQuantity
		}
		if quantity > product.Stock {
			return repository.ErrInsufficientStock
		}

		base, err := checkedMul(product.Price, quantity)
		if err != nil {
			return err
		}
		total := base
		if product.Type == string(model.ProductTypeBulk) {
			cfg, err := s.productRepo.GetGroupConfig(ctx, tx, productID)
			if err != nil {
				return fmt.Errorf("load bulk config: %w", err)
			}
			if cfg.DiscountThreshold > 0 && quantity >= cfg.DiscountThreshold {
				discount, err := applyBps(base, cfg.BulkDiscountBps)
				if err != nil {
					return err
				}
				total = base - discount
			}
		}

		if payment < total {
			return ErrInsufficientPayment
		}

		if origin.Protocol {
			ok, err := s.paymentRecordRepo.TryReserve(ctx, tx, origin.PaymentID)
			if err != nil {
				return fmt.Errorf("reserve payment id: %w", err)
			}
			if !ok {
				return ErrDuplicatePayment
			}
		}

		if err := s.productRepo.DecrementStock(ctx, tx, productID, quantity); err != nil {
			return err
		}

		feeBps, err := s.feeRepo.CurrentRateBps(ctx, tx)
		if err != nil {
			return fmt.Errorf("read fee rate: %w", err)
		}
		fee, err := applyBps(total, feeBps)
		if err != nil {
			return err
		}
		if fee > 0 {
			if err := s.ledgerClient.Transfer(ctx, s.marketplaceAccount, fee, currency); err != nil {
				return fmt.Errorf("%w: marketplace fee: %v", ErrTransferFailed, err)
			}
		}

		merchant, err := s.merchantRepo.Get(ctx, product.MerchantID)
		if err != nil {
			return fmt.Errorf("load merchant: %w", err)
		}
		net := total - fee
		if net > 0 {
			if err := s.ledgerClient.Transfer(ctx, merchant.PayoutAccount, net, currency); err != nil {
				return fmt.Errorf("%w: merchant proceeds: %v", ErrTransferFailed, err)
			}
		}

		var paymentID *string
		if origin.Protocol {
			paymentID = &origin.PaymentID
		}
		purchaseID, err = s.issuer.Issue(ctx, tx, IssueParams{
			Buyer:           buyer,
			ProductID:       productID,
			Quantity:        quantity,
			Amount:          total,
			Currency:        currency,
			PaymentID:       paymentID,
			CashbackRateBps: product.CashbackRateBps,
			MerchantNet:     net,
			RecordRevenue:   true,
		})
		if err != nil {
			return err
		}

		// Overpayment is a return of principal, so a failed refund aborts the
		// whole purchase.
		if over := payment - total; over > 0 {
			if err := s.ledgerClient.Transfer(ctx, buyer, over, currency); err != nil {
				return fmt.Errorf("%w: overpayment refund: %v", ErrTransferFailed, err)
			}
		}

		return nil
	})
	if err != nil {
		return "", err
	}

	return purchaseID, nil
}

func (s *purchaseServiceImpl) Purchases(ctx context.Context, buyer string) ([]*model.Purchase, error) {
	return s.purchaseRepo.FindByBuyer(ctx, buyer)
}

func (s *purchaseServiceImpl) MarkReviewed(ctx context.Context, purchaseID, buyer string) error {
	return s.purchaseRepo.MarkReviewed(ctx, purchaseID, buyer)
}
