package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type flashSaleGormRepository struct {
	db *gorm.DB
}

// DI
func NewFlashSaleGormRepository(db *gorm.DB) repo.FlashSaleRepository {
	return &flashSaleGormRepository{db: db}
}

func (r *flashSaleGormRepository) Create(ctx context.Context, sale model.FlashSale) (model.FlashSale, error) {
	if err := r.db.WithContext(ctx).Create(&sale).Error; err != nil {
		return model.FlashSale{}, err
	}
	return sale, nil
}

func (r *flashSaleGormRepository) Update(ctx context.Context, sale model.FlashSale) error {
	res := r.db.WithContext(ctx).
		Model(&model.FlashSale{}).
		Where("id = ?", sale.ID).
		Updates(map[string]interface{}{
			"name":             sale.Name,
			"discount_percent": sale.DiscountPercent,
			"starts_at":        sale.StartsAt,
			"ends_at":          sale.EndsAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 有効/無効の切り替え。日付範囲は見ない。
func (r *flashSaleGormRepository) SetActive(ctx context.Context, saleID int64, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.FlashSale{}).
		Where("id = ?", saleID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *flashSaleGormRepository) FindByID(ctx context.Context, saleID int64) (model.FlashSale, error) {
	var s model.FlashSale
	err := r.db.WithContext(ctx).First(&s, saleID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.FlashSale{}, repo.ErrNotFound
	}
	if err != nil {
		return model.FlashSale{}, err
	}
	return s, nil
}

func (r *flashSaleGormRepository) ListActive(ctx context.Context) ([]model.FlashSale, error) {
	var list []model.FlashSale
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("starts_at desc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// 対象商品の入れ替え（全削除→再作成）
func (r *flashSaleGormRepository) ReplaceProducts(ctx context.Context, saleID int64, productIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("flash_sale_id = ?", saleID).
			Delete(&model.FlashSaleProduct{}).Error; err != nil {
			return err
		}

		for _, pid := range productIDs {
			row := model.FlashSaleProduct{FlashSaleID: saleID, ProductID: pid}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *flashSaleGormRepository) ListProductIDs(ctx context.Context, saleID int64) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Model(&model.FlashSaleProduct{}).
		Where("flash_sale_id = ?", saleID).
		Order("product_id asc").
		Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
