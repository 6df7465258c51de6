package repository

import (
	"context"
	"database/sql"
	"groupbuy-commerce/internal/model"
	"time"

	"gorm.io/gorm"
)

type CampaignRepository interface {
	Create(ctx context.Context, tx *gorm.DB, campaign *model.Campaign) error
	Get(ctx context.Context, tx *gorm.DB, productID string) (*model.Campaign, error)
	Find(ctx context.Context, productID string) (*model.Campaign, error)
	Save(ctx context.Context, tx *gorm.DB, campaign *model.Campaign) error

	CreateContribution(ctx context.Context, tx *gorm.DB, contribution *model.Contribution) error
	GetContribution(ctx context.Context, tx *gorm.DB, productID, contributor string) (*model.Contribution, error)
	Contributions(ctx context.Context, tx *gorm.DB, productID string) ([]*model.Contribution, error)
	CountContributions(ctx context.Context, tx *gorm.DB, productID string) (int64, error)
	NextPosition(ctx context.Context, tx *gorm.DB, productID string) (int64, error)
	SetContributionShares(ctx context.Context, tx *gorm.DB, productID, contributor string, shares int64) error
	ZeroContribution(ctx context.Context, tx *gorm.DB, productID, contributor string) error
	DeleteContribution(ctx context.Context, tx *gorm.DB, productID, contributor string) error
}

type campaignRepoImpl struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepoImpl{
		db: db,
	}
}

func (r *campaignRepoImpl) Create(ctx context.Context, tx *gorm.DB, campaign *model.Campaign) error {
	return tx.WithContext(ctx).Create(campaign).Error
}

func (r *campaignRepoImpl) Get(ctx context.Context, tx *gorm.DB, productID string) (*model.Campaign, error) {
	var campaign model.Campaign
	err := tx.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&campaign).Error
	if err != nil {
		return nil, err
	}

	return &campaign, nil
}

func (r *campaignRepoImpl) Find(ctx context.Context, productID string) (*model.Campaign, error) {
	return r.Get(ctx, r.db, productID)
}

func (r *campaignRepoImpl) Save(ctx context.Context, tx *gorm.DB, campaign *model.Campaign) error {
	result := tx.WithContext(ctx).Model(&model.Campaign{}).
		Where("product_id = ?", campaign.ProductID).
		Updates(map[string]interface{}{
			"status":            campaign.Status,
			"total_contributed": campaign.TotalContributed,
			"currency":          campaign.Currency,
			"funds_distributed": campaign.FundsDistributed,
			"updated_at":        time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *campaignRepoImpl) CreateContribution(ctx context.Context, tx *gorm.DB, contribution *model.Contribution) error {
	return tx.WithContext(ctx).Create(contribution).Error
}

func (r *campaignRepoImpl) GetContribution(ctx context.Context, tx *gorm.DB, productID, contributor string) (*model.Contribution, error) {
	var contribution model.Contribution
	err := tx.WithContext(ctx).
		Where("product_id = ? AND contributor = ?", productID, contributor).
		First(&contribution).Error
	if err != nil {
		return nil, err
	}

	return &contribution, nil
}

// Contributions returns a campaign's contributions in insertion order, the
// order pro-rata allocation walks at completion.
func (r *campaignRepoImpl) Contributions(ctx context.Context, tx *gorm.DB, productID string) ([]*model.Contribution, error) {
	var contributions []*model.Contribution
	err := tx.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("position").
		Find(&contributions).Error
	if err != nil {
		return nil, err
	}

	return contributions, nil
}

func (r *campaignRepoImpl) CountContributions(ctx context.Context, tx *gorm.DB, productID string) (int64, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.Contribution{}).
		Where("product_id = ?", productID).
		Count(&count).Error

	return count, err
}

func (r *campaignRepoImpl) NextPosition(ctx context.Context, tx *gorm.DB, productID string) (int64, error) {
	var max sql.NullInt64
	err := tx.WithContext(ctx).Model(&model.Contribution{}).
		Where("product_id = ?", productID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}

	return max.Int64 + 1, nil
}

func (r *campaignRepoImpl) SetContributionShares(ctx context.Context, tx *gorm.DB, productID, contributor string, shares int64) error {
	return tx.WithContext(ctx).Model(&model.Contribution{}).
		Where("product_id = ? AND contributor = ?", productID, contributor).
		Update("allocated_shares", shares).Error
}

func (r *campaignRepoImpl) ZeroContribution(ctx context.Context, tx *gorm.DB, productID, contributor string) error {
	return tx.WithContext(ctx).Model(&model.Contribution{}).
		Where("product_id = ? AND contributor = ?", productID, contributor).
		Update("amount", 0).Error
}

func (r *campaignRepoImpl) DeleteContribution(ctx context.Context, tx *gorm.DB, productID, contributor string) error {
	result := tx.WithContext(ctx).
		Where("product_id = ? AND contributor = ?", productID, contributor).
		Delete(&model.Contribution{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
