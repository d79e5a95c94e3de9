package repository

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type wishlistGormRepository struct {
	db *gorm.DB
}

// DI
func NewWishlistGormRepository(db *gorm.DB) repo.WishlistRepository {
	return &wishlistGormRepository{db: db}
}

// ユーザーのwishlistを取得し、無ければ作成
func (r *wishlistGormRepository) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Wishlist, error) {
	var wl model.Wishlist

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.
			Where("user_id = ?", userID).
			First(&wl).Error

		if findErr == nil {
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		now := time.Now()
		newWl := model.Wishlist{
			UserID:    userID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&newWl).Error; err != nil {
			// user_idユニークなので同時作成は取り直す
			retryErr := tx.Where("user_id = ?", userID).First(&wl).Error
			if retryErr == nil {
				return nil
			}
			return err
		}

		wl = newWl
		return nil
	})

	if err != nil {
		return model.Wishlist{}, err
	}
	return wl, nil
}

func (r *wishlistGormRepository) ListItems(ctx context.Context, wishlistID int64) ([]model.WishlistItem, error) {
	var items []model.WishlistItem
	if err := r.db.WithContext(ctx).
		Where("wishlist_id = ?", wishlistID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.WishlistItem{}, err
	}
	return items, nil
}

// 重複はErrDuplicateItem
func (r *wishlistGormRepository) AddItem(ctx context.Context, wishlistID int64, productID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.WishlistItem
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
			First(&existing).Error

		if err == nil {
			return repo.ErrDuplicateItem
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		item := model.WishlistItem{
			WishlistID: wishlistID,
			ProductID:  productID,
			CreatedAt:  time.Now(),
		}
		return tx.Create(&item).Error
	})
}

func (r *wishlistGormRepository) RemoveItem(ctx context.Context, wishlistID int64, productID int64) error {
	res := r.db.WithContext(ctx).
		Where("wishlist_id = ? AND product_id = ?", wishlistID, productID).
		Delete(&model.WishlistItem{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
