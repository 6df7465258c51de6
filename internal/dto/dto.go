package dto

import (
	"groupbuy-commerce/internal/model"

	"github.com/shopspring/decimal"
)

// Minor-unit exponent per currency; anything unlisted uses 2.
var currencyExponents = map[string]int32{
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
	"JPY": 0,
}

// DisplayAmount renders minor units as an exact decimal string, e.g.
// 12345 USD -> "123.45".
func DisplayAmount(amount int64, currency string) string {
	exp, ok := currencyExponents[currency]
	if !ok {
		exp = 2
	}

	return decimal.New(amount, -exp).StringFixed(exp)
}

type GroupBuyingParams struct {
	MinGroupSize      int64 `json:"min_group_size"`
	MaxGroupSize      int64 `json:"max_group_size"`
	DurationHours     int64 `json:"duration_hours"`
	DiscountThreshold int64 `json:"discount_threshold"`
	BulkDiscountBps   int64 `json:"bulk_discount_bps"`
}

type CreateProductRequest struct {
	Name            string             `json:"name"`
	Price           int64              `json:"price"` // minor units
	Stock           int64              `json:"stock"`
	Type            string             `json:"type"`
	CashbackRateBps int64              `json:"cashback_rate_bps"`
	Currency        string             `json:"currency"`
	GroupBuying     *GroupBuyingParams `json:"group_buying,omitempty"`
}

type ProductResponse struct {
	ID              string `json:"id"`
	MerchantID      string `json:"merchant_id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	DisplayPrice    string `json:"display_price"`
	Stock           int64  `json:"stock"`
	Type            string `json:"type"`
	CashbackRateBps int64  `json:"cashback_rate_bps"`
	Currency        string `json:"currency"`
}

func NewProductResponse(p *model.Product) *ProductResponse {
	return &ProductResponse{
		ID:              p.ID,
		MerchantID:      p.MerchantID,
		Name:            p.Name,
		Price:           p.Price,
		DisplayPrice:    DisplayAmount(p.Price, p.Currency),
		Stock:           p.Stock,
		Type:            p.Type,
		CashbackRateBps: p.CashbackRateBps,
		Currency:        p.Currency,
	}
}

type ContributeRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type ContributeResponse struct {
	Accepted        int64  `json:"accepted"`
	DisplayAccepted string `json:"display_accepted"`
	Completed       bool   `json:"completed"`
}

type ContributionResponse struct {
	Contributor     string `json:"contributor"`
	Amount          int64  `json:"amount"`
	AllocatedShares int64  `json:"allocated_shares"`
}

type CampaignResponse struct {
	ProductID        string                  `json:"product_id"`
	Status           string                  `json:"status"`
	Deadline         int64                   `json:"deadline"` // unix seconds
	TotalContributed int64                   `json:"total_contributed"`
	DisplayTotal     string                  `json:"display_total"`
	Currency         string                  `json:"currency"`
	Participants     []*ContributionResponse `json:"participants"`
}

func NewCampaignResponse(c *model.Campaign, contributions []*model.Contribution) *CampaignResponse {
	participants := make([]*ContributionResponse, len(contributions))
	for i, contribution := range contributions {
		participants[i] = &ContributionResponse{
			Contributor:     contribution.Contributor,
			Amount:          contribution.Amount,
			AllocatedShares: contribution.AllocatedShares,
		}
	}

	return &CampaignResponse{
		ProductID:        c.ProductID,
		Status:           c.Status,
		Deadline:         c.Deadline.Unix(),
		TotalContributed: c.TotalContributed,
		DisplayTotal:     DisplayAmount(c.TotalContributed, c.Currency),
		Currency:         c.Currency,
		Participants:     participants,
	}
}

type WithdrawResponse struct {
	Refunded        int64  `json:"refunded"`
	DisplayRefunded string `json:"display_refunded"`
}

type FinalizeResponse struct {
	Status string `json:"status"`
}

type BuyRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	Payment   int64  `json:"payment"` // minor units
	Currency  string `json:"currency"`
}

type BuyResponse struct {
	PurchaseID string `json:"purchase_id"`
}

type PurchaseResponse struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	Quantity      int64  `json:"quantity"`
	Amount        int64  `json:"amount"`
	DisplayAmount string `json:"display_amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	CashbackPaid  int64  `json:"cashback_paid"`
	Reviewed      bool   `json:"reviewed"`
}

func NewPurchaseResponse(p *model.Purchase) *PurchaseResponse {
	return &PurchaseResponse{
		ID:            p.ID,
		ProductID:     p.ProductID,
		Quantity:      p.Quantity,
		Amount:        p.Amount,
		DisplayAmount: DisplayAmount(p.Amount, p.Currency),
		Currency:      p.Currency,
		Status:        p.Status,
		CashbackPaid:  p.CashbackPaid,
		Reviewed:      p.Reviewed,
	}
}

type ApplyPaymentRequest struct {
	ProductID string `json:"product_id"`
	Buyer     string `json:"buyer"`
	Quantity  int64  `json:"quantity"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	PaymentID string `json:"payment_id"` // 16 bytes, hex encoded
}

type ApplyPaymentResponse struct {
	PurchaseID string `json:"purchase_id,omitempty"`
	Accepted   int64  `json:"accepted"`
	Completed  bool   `json:"completed"`
}

type CreateMerchantRequest struct {
	Name          string `json:"name"`
	PayoutAccount string `json:"payout_account"`
}

type RevenueEntry struct {
	Currency     string `json:"currency"`
	Total        int64  `json:"total"`
	DisplayTotal string `json:"display_total"`
}

type RevenueResponse struct {
	Entries []*RevenueEntry `json:"entries"`
}

type SetFeeRequest struct {
	RateBps int64 `json:"rate_bps"`
}
