package repository

import (
	"context"
	"groupbuy-commerce/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository interface {
	Create(ctx context.Context, tx *gorm.DB, product *model.Product) error
	CreateGroupConfig(ctx context.Context, tx *gorm.DB, cfg *model.GroupBuyingConfig) error
	Get(ctx context.Context, tx *gorm.DB, productID string) (*model.Product, error)
	Find(ctx context.Context, productID string) (*model.Product, error)
	GetGroupConfig(ctx context.Context, tx *gorm.DB, productID string) (*model.GroupBuyingConfig, error)
	List(ctx context.Context) ([]*model.Product, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, productID string, quantity int64) error
	ZeroStock(ctx context.Context, tx *gorm.DB, productID string) error
	Seed(ctx context.Context) error
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Create(ctx context.Context, tx *gorm.DB, product *model.Product) error {
	return tx.WithContext(ctx).Create(product).Error
}

func (r *productRepoImpl) CreateGroupConfig(ctx context.Context, tx *gorm.DB, cfg *model.GroupBuyingConfig) error {
	return tx.WithContext(ctx).Create(cfg).Error
}

func (r *productRepoImpl) Get(ctx context.Context, tx *gorm.DB, productID string) (*model.Product, error) {
	var product model.Product
	err := tx.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) Find(ctx context.Context, productID string) (*model.Product, error) {
	return r.Get(ctx, r.db, productID)
}

func (r *productRepoImpl) GetGroupConfig(ctx context.Context, tx *gorm.DB, productID string) (*model.GroupBuyingConfig, error) {
	var cfg model.GroupBuyingConfig
	err := tx.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&cfg).Error
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (r *productRepoImpl) List(ctx context.Context) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

// DecrementStock only succeeds when enough stock remains; the guard and the
// decrement are one statement.
func (r *productRepoImpl) DecrementStock(ctx context.Context, tx *gorm.DB, productID string, quantity int64) error {
	result := tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

func (r *productRepoImpl) ZeroStock(ctx context.Context, tx *gorm.DB, productID string) error {
	return tx.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"stock":      0,
			"updated_at": time.Now(),
		}).Error
}

func (r *productRepoImpl) Seed(ctx context.Context) error {
	products := []model.Product{
		{ID: "sticker_pack", MerchantID: "demo-merchant", Name: "Sticker Pack", Price: 500, Stock: 200, Type: "SINGLE", CashbackRateBps: 100, Currency: "USD", Active: true},
		{ID: "tshirt_crate", MerchantID: "demo-merchant", Name: "T-Shirt Crate", Price: 12000, Stock: 80, Type: "BULK", CashbackRateBps: 200, Currency: "USD", Active: true},
	}

	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&products).Error
}
