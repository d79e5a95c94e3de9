package repository

import (
	"app/internal/domain/model"
	repo "app/internal/repository"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentOptionGormRepository struct {
	db *gorm.DB
}

// DI
func NewPaymentOptionGormRepository(db *gorm.DB) repo.PaymentOptionRepository {
	return &paymentOptionGormRepository{db: db}
}

func (r *paymentOptionGormRepository) Create(ctx context.Context, option model.PaymentOption) (model.PaymentOption, error) {
	if err := r.db.WithContext(ctx).Create(&option).Error; err != nil {
		return model.PaymentOption{}, err
	}
	return option, nil
}

func (r *paymentOptionGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.PaymentOption, error) {
	var list []model.PaymentOption
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *paymentOptionGormRepository) FindByID(ctx context.Context, optionID int64) (model.PaymentOption, error) {
	var o model.PaymentOption
	if err := r.db.WithContext(ctx).First(&o, optionID).Error; err != nil {
		return model.PaymentOption{}, err
	}
	return o, nil
}

func (r *paymentOptionGormRepository) Delete(ctx context.Context, optionID int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", optionID).
		Delete(&model.PaymentOption{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *paymentOptionGormRepository) IsOwnedByUser(ctx context.Context, optionID, userID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&model.PaymentOption{}).
		Where("id = ? AND user_id = ?", optionID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count == 1, nil
}

// デフォルト支払い方法を切り替える。住所のSetDefaultと同じ手順。
func (r *paymentOptionGormRepository) SetDefault(ctx context.Context, userID, optionID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o model.PaymentOption
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", optionID, userID).
			First(&o).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.PaymentOption{}).
			Where("user_id = ? AND is_default = TRUE", userID).
			Update("is_default", false).Error; err != nil {
			return err
		}

		result := tx.Model(&model.PaymentOption{}).
			Where("id = ? AND user_id = ?", optionID, userID).
			Update("is_default", true)

		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
