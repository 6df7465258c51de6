package service

import (
	"context"
	"errors"
	"fmt"
	"groupbuy-commerce/internal/client"
	"groupbuy-commerce/internal/model"
	"groupbuy-commerce/internal/repository"
	"time"

	"gorm.io/gorm"
)

type ContributeResult struct {
	Accepted  int64
	Completed bool
}

// CampaignService owns the group-buying state machine: contribution intake,
// capping, completion and cancellation, pro-rata allocation and refunds.
// Every mutating operation runs in one critical section per campaign and one
// database transaction, so a rejection leaves no partial writes.
type CampaignService interface {
	Contribute(ctx context.Context, productID, contributor string, amount int64, currency string, paymentID *string) (*ContributeResult, error)
	WithdrawContribution(ctx context.Context, productID, contributor string) (int64, error)
	Finalize(ctx context.Context, productID string) (model.CampaignStatus, error)
	Get(ctx context.Context, productID string) (*model.Campaign, []*model.Contribution, error)
}

type campaignServiceImpl struct {
	db                 *gorm.DB
	campaignRepo       repository.CampaignRepository
	productRepo        repository.ProductRepository
	merchantRepo       repository.MerchantRepository
	paymentRecordRepo  repository.PaymentRecordRepository
	revenueRepo        repository.RevenueRepository
	feeRepo            repository.FeeRepository
	issuer             IssuerService
	ledgerClient       client.LedgerClient
	marketplaceAccount string
	locks              *keyedMutex
}

func NewCampaignService(
	db *gorm.DB,
	campaignRepo repository.CampaignRepository,
	productRepo repository.ProductRepository,
	merchantRepo repository.MerchantRepository,
	paymentRecordRepo repository.PaymentRecordRepository,
	revenueRepo repository.RevenueRepository,
	feeRepo repository.FeeRepository,
	issuer IssuerService,
	ledgerClient client.LedgerClient,
	marketplaceAccount string,
) CampaignService {
	return &campaignServiceImpl{
		db:                 db,
		campaignRepo:       campaignRepo,
		productRepo:        productRepo,
		merchantRepo:       merchantRepo,
		paymentRecordRepo:  paymentRecordRepo,
		revenueRepo:        revenueRepo,
		feeRepo:            feeRepo,
		issuer:             issuer,
		ledgerClient:       ledgerClient,
		marketplaceAccount: marketplaceAccount,
		locks:              newKeyedMutex(),
	}
}

func (s *campaignServiceImpl) Contribute(ctx context.Context, productID, contributor string, amount int64, currency string, paymentID *string) (*ContributeResult, error) {
	unlock := s.locks.Lock(productID)
	defer unlock()

	result := &ContributeResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		campaign, err := s.campaignRepo.Get(ctx, tx, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCampaignNotFound
		}
		if err != nil {
			return fmt.Errorf("load campaign: %w", err)
		}

		if campaign.Status != string(model.CampaignStatusActive) {
			return ErrCampaignNotActive
		}
		if time.Now().After(campaign.Deadline) {
			return ErrCampaignExpired
		}

		existing, err := s.campaignRepo.GetContribution(ctx, tx, productID, contributor)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("check existing contribution: %w", err)
		}
		if existing != nil && existing.Amount > 0 {
			return ErrDuplicateParticipant
		}

		cfg, err := s.productRepo.GetGroupConfig(ctx, tx, productID)
		if err != nil {
			return fmt.Errorf("load group config: %w", err)
		}
		count, err := s.campaignRepo.CountContributions(ctx, tx, productID)
		if err != nil {
			return fmt.Errorf("count participants: %w", err)
		}
		if count >= cfg.MaxGroupSize {
			return ErrCampaignFull
		}

		// Settlement currency locks to the first contributor's currency.
		if campaign.Currency == "" {
			campaign.Currency = currency
		} else if campaign.Currency != currency {
			return ErrCurrencyMismatch
		}

		product, err := s.productRepo.Get(ctx, tx, productID)
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}

		// A campaign never holds more than the product price in aggregate.
		accepted := amount
		if remaining := product.Price - campaign.TotalContributed; accepted > remaining {
			accepted = remaining
		}
		if accepted <= 0 {
			return ErrContributionTooSmall
		}

		// Reserve the payment id before any mutation so a duplicate never
		// perturbs campaign totals.
		if paymentID != nil {
			ok, err := s.paymentRecordRepo.TryReserve(ctx, tx, *paymentID)
			if err != nil {
				return fmt.Errorf("reserve payment id: %w", err)
			}
			if !ok {
				return ErrDuplicatePayment
			}
		}

		position, err := s.campaignRepo.NextPosition(ctx, tx, productID)
		if err != nil {
			return fmt.Errorf("next position: %w", err)
		}
		err = s.campaignRepo.CreateContribution(ctx, tx, &model.Contribution{
			ProductID:   productID,
			Contributor: contributor,
			Amount:      accepted,
			Position:    position,
			PaymentID:   paymentID,
		})
		if err != nil {
			return fmt.Errorf("store contribution: %w", err)
		}

		campaign.TotalContributed += accepted
		if err := s.revenueRepo.Add(ctx, tx, currency, accepted); err != nil {
			return fmt.Errorf("record revenue: %w", err)
		}
		result.Accepted = accepted

		if count+1 >= cfg.MinGroupSize && campaign.TotalContributed >= product.Price {
			if err := s.complete(ctx, tx, campaign, product); err != nil {
				return err
			}
			result.Completed = true
		}

		return s.campaignRepo.Save(ctx, tx, campaign)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// complete settles a fully funded campaign: fee split, pro-rata share
// allocation in insertion order, per-participant purchase and cashback.
// Shares truncate (contribution * stock / total); the sub-unit remainder
// stays undistributed.
func (s *campaignServiceImpl) complete(ctx context.Context, tx *gorm.DB, campaign *model.Campaign, product *model.Product) error {
	total := campaign.TotalContributed

	feeBps, err := s.feeRepo.CurrentRateBps(ctx, tx)
	if err != nil {
		return fmt.Errorf("read fee rate: %w", err)
	}
	fee, err := applyBps(total, feeBps)
	if err != nil {
		return err
	}
	if fee > 0 {
		if err := s.ledgerClient.Transfer(ctx, s.marketplaceAccount, fee, campaign.Currency); err != nil {
			return fmt.Errorf("%w: marketplace fee: %v", ErrTransferFailed, err)
		}
	}

	merchant, err := s.merchantRepo.Get(ctx, product.MerchantID)
	if err != nil {
		return fmt.Errorf("load merchant: %w", err)
	}
	merchantProceeds := total - fee
	if merchantProceeds > 0 {
		if err := s.ledgerClient.Transfer(ctx, merchant.PayoutAccount, merchantProceeds, campaign.Currency); err != nil {
			return fmt.Errorf("%w: merchant proceeds: %v", ErrTransferFailed, err)
		}
	}

	contributions, err := s.campaignRepo.Contributions(ctx, tx, campaign.ProductID)
	if err != nil {
		return fmt.Errorf("load contributions: %w", err)
	}

	stock := product.Stock
	for _, c := range contributions {
		shares, err := mulDiv(c.Amount, stock, total)
		if err != nil {
			return err
		}
		participantMerchantAmount, err := mulDiv(merchantProceeds, c.Amount, total)
		if err != nil {
			return err
		}

		_, err = s.issuer.Issue(ctx, tx, IssueParams{
			Buyer:           c.Contributor,
			ProductID:       campaign.ProductID,
			Quantity:        shares,
			Amount:          c.Amount,
			Currency:        campaign.Currency,
			PaymentID:       c.PaymentID,
			CashbackRateBps: product.CashbackRateBps,
			MerchantNet:     participantMerchantAmount,
			RecordRevenue:   false,
		})
		if err != nil {
			return fmt.Errorf("issue purchase for %s: %w", c.Contributor, err)
		}

		if err := s.campaignRepo.SetContributionShares(ctx, tx, campaign.ProductID, c.Contributor, shares); err != nil {
			return fmt.Errorf("record allocation: %w", err)
		}
	}

	if err := s.productRepo.ZeroStock(ctx, tx, campaign.ProductID); err != nil {
		return fmt.Errorf("zero stock: %w", err)
	}

	campaign.Status = string(model.CampaignStatusCompleted)
	campaign.FundsDistributed = true
	return nil
}

// cancel refunds every participant their exact recorded contribution. A
// refund is a return of principal: any transfer failure aborts the whole
// cancellation so no contributor is left without a recorded claim.
func (s *campaignServiceImpl) cancel(ctx context.Context, tx *gorm.DB, campaign *model.Campaign) error {
	contributions, err := s.campaignRepo.Contributions(ctx, tx, campaign.ProductID)
	if err != nil {
		return fmt.Errorf("load contributions: %w", err)
	}

	refunded := false
	for _, c := range contributions {
		if c.Amount == 0 {
			continue
		}
		if err := s.ledgerClient.Transfer(ctx, c.Contributor, c.Amount, campaign.Currency); err != nil {
			return fmt.Errorf("%w: refund to %s: %v", ErrTransferFailed, c.Contributor, err)
		}
		if err := s.campaignRepo.ZeroContribution(ctx, tx, campaign.ProductID, c.Contributor); err != nil {
			return fmt.Errorf("zero contribution: %w", err)
		}
		if err := s.revenueRepo.Subtract(ctx, tx, campaign.Currency, c.Amount); err != nil {
			return fmt.Errorf("reverse revenue: %w", err)
		}
		refunded = true
	}

	campaign.TotalContributed = 0
	if refunded {
		campaign.Status = string(model.CampaignStatusCancelled)
	} else {
		campaign.Status = string(model.CampaignStatusExpired)
	}
	return nil
}

// Finalize resolves a campaign that passed its deadline while still active.
// Callable by anyone; the deadline is the only gate.
func (s *campaignServiceImpl) Finalize(ctx context.Context, productID string) (model.CampaignStatus, error) {
	unlock := s.locks.Lock(productID)
	defer unlock()

	var status model.CampaignStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		campaign, err := s.campaignRepo.Get(ctx, tx, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCampaignNotFound
		}
		if err != nil {
			return fmt.Errorf("load campaign: %w", err)
		}

		if campaign.Status != string(model.CampaignStatusActive) {
			return ErrCampaignFinalized
		}
		if !time.Now().After(campaign.Deadline) {
			return ErrStillActive
		}

		cfg, err := s.productRepo.GetGroupConfig(ctx, tx, productID)
		if err != nil {
			return fmt.Errorf("load group config: %w", err)
		}
		product, err := s.productRepo.Get(ctx, tx, productID)
		if err != nil {
			return fmt.Errorf("load product: %w", err)
		}
		count, err := s.campaignRepo.CountContributions(ctx, tx, productID)
		if err != nil {
			return fmt.Errorf("count participants: %w", err)
		}

		if count >= cfg.MinGroupSize && campaign.TotalContributed >= product.Price {
			err = s.complete(ctx, tx, campaign, product)
		} else {
			err = s.cancel(ctx, tx, campaign)
		}
		if err != nil {
			return err
		}

		status = model.CampaignStatus(campaign.Status)
		return s.campaignRepo.Save(ctx, tx, campaign)
	})
	if err != nil {
		return "", err
	}

	return status, nil
}

// WithdrawContribution returns the caller's full contribution while the
// campaign is still open. The row is deleted outright, so the same identity
// can contribute again later.
func (s *campaignServiceImpl) WithdrawContribution(ctx context.Context, productID, contributor string) (int64, error) {
	unlock := s.locks.Lock(productID)
	defer unlock()

	var refunded int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		campaign, err := s.campaignRepo.Get(ctx, tx, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCampaignNotFound
		}
		if err != nil {
			return fmt.Errorf("load campaign: %w", err)
		}

		if campaign.Status != string(model.CampaignStatusActive) {
			return ErrCampaignNotActive
		}
		if time.Now().After(campaign.Deadline) {
			return ErrCampaignExpired
		}

		contribution, err := s.campaignRepo.GetContribution(ctx, tx, productID, contributor)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoContribution
		}
		if err != nil {
			return fmt.Errorf("load contribution: %w", err)
		}
		if contribution.Amount == 0 {
			return ErrNoContribution
		}

		if err := s.ledgerClient.Transfer(ctx, contributor, contribution.Amount, campaign.Currency); err != nil {
			return fmt.Errorf("%w: withdraw refund: %v", ErrTransferFailed, err)
		}

		if err := s.campaignRepo.DeleteContribution(ctx, tx, productID, contributor); err != nil {
			return fmt.Errorf("remove contribution: %w", err)
		}
		campaign.TotalContributed -= contribution.Amount
		if err := s.revenueRepo.Subtract(ctx, tx, campaign.Currency, contribution.Amount); err != nil {
			return fmt.Errorf("reverse revenue: %w", err)
		}

		refunded = contribution.Amount
		return s.campaignRepo.Save(ctx, tx, campaign)
	})
	if err != nil {
		return 0, err
	}

	return refunded, nil
}

func (s *campaignServiceImpl) Get(ctx context.Context, productID string) (*model.Campaign, []*model.Contribution, error) {
	campaign, err := s.campaignRepo.Find(ctx, productID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrCampaignNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	contributions, err := s.campaignRepo.Contributions(ctx, s.db, productID)
	if err != nil {
		return nil, nil, err
	}

	return campaign, contributions, nil
}
