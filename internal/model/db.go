package model

import "time"

type ProductType string

const (
	ProductTypeSingle      ProductType = "SINGLE"
	ProductTypeBulk        ProductType = "BULK"
	ProductTypeGroupBuying ProductType = "GROUP_BUYING"
)

type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "ACTIVE"
	CampaignStatusCompleted CampaignStatus = "COMPLETED"
	CampaignStatusCancelled CampaignStatus = "CANCELLED"
	CampaignStatusExpired   CampaignStatus = "EXPIRED"
)

type PurchaseStatus string

const (
	PurchaseStatusPending   PurchaseStatus = "PENDING"
	PurchaseStatusCompleted PurchaseStatus = "COMPLETED"
	PurchaseStatusRefunded  PurchaseStatus = "REFUNDED"
	PurchaseStatusExpired   PurchaseStatus = "EXPIRED"
)

type Merchant struct {
	ID            string `gorm:"primaryKey;size:64;not null"`
	Name          string `gorm:"size:128;not null"`
	PayoutAccount string `gorm:"size:128;not null"` // ledger account receiving sale proceeds
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Product struct {
	ID              string `gorm:"primaryKey;size:64;not null"`
	MerchantID      string `gorm:"size:64;index;not null"`
	Name            string `gorm:"size:128;not null"`
	Price           int64  `gorm:"not null"` // minor units
	Stock           int64  `gorm:"not null"`
	Type            string `gorm:"size:32;index;not null"` // SINGLE, BULK, GROUP_BUYING
	CashbackRateBps int64  `gorm:"not null"`               // 0..2000
	Currency        string `gorm:"size:8;not null"`        // preferred settlement currency
	Active          bool   `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// GroupBuyingConfig is created in the same transaction as its Product and is
// immutable afterwards.
type GroupBuyingConfig struct {
	ProductID         string `gorm:"primaryKey;size:64;not null"`
	MinGroupSize      int64  `gorm:"not null"`
	MaxGroupSize      int64  `gorm:"not null"` // <= 1000
	DurationSeconds   int64  `gorm:"not null"` // 1 hour .. 30 days
	DiscountThreshold int64  `gorm:"not null"` // BULK only
	BulkDiscountBps   int64  `gorm:"not null"` // BULK only, <= 5000
	CreatedAt         time.Time
}

type Campaign struct {
	ProductID        string `gorm:"primaryKey;size:64;not null"`
	Status           string `gorm:"size:16;index;not null"`
	Deadline         time.Time
	TotalContributed int64  `gorm:"not null"`
	Currency         string `gorm:"size:8"` // locked to the first contributor's currency
	FundsDistributed bool   `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Contribution rows are owned exclusively by the campaign engine.
// Position fixes the allocation order at completion.
type Contribution struct {
	ProductID       string  `gorm:"primaryKey;size:64;not null"`
	Contributor     string  `gorm:"primaryKey;size:64;not null"`
	Amount          int64   `gorm:"not null"`
	AllocatedShares int64   `gorm:"not null"`
	Position        int64   `gorm:"not null"`
	PaymentID       *string `gorm:"size:64"`
	CreatedAt       time.Time
}

// PaymentRecord deduplicates externally issued payment ids. A row is written
// exactly once; a second write with the same id is the rejection signal.
type PaymentRecord struct {
	ID          string `gorm:"primaryKey;size:64;not null"` // hex of the protocol's 16-byte id
	ProcessedAt time.Time
}

type Purchase struct {
	ID           string  `gorm:"primaryKey;size:64;not null"`
	ProductID    string  `gorm:"size:64;index;not null"`
	Buyer        string  `gorm:"size:64;index;not null"`
	Quantity     int64   `gorm:"not null"` // units bought or allocated shares
	Amount       int64   `gorm:"not null"` // amount paid, minor units
	Currency     string  `gorm:"size:8;not null"`
	Status       string  `gorm:"size:16;index;not null"`
	CashbackPaid int64   `gorm:"not null"` // 0 when the cashback transfer was skipped
	Reviewed     bool    `gorm:"not null"`
	PaymentID    *string `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type RevenueLedger struct {
	Currency  string `gorm:"primaryKey;size:8;not null"`
	Total     int64  `gorm:"not null"` // never negative
	UpdatedAt time.Time
}

type MarketplaceFee struct {
	ID          uint  `gorm:"primaryKey"`
	RateBps     int64 `gorm:"not null"` // 0..1000
	EffectiveAt time.Time
	CreatedAt   time.Time
}
