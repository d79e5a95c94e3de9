package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type brandGormRepository struct {
	db *gorm.DB
}

// DI
func NewBrandGormRepository(db *gorm.DB) repo.BrandRepository {
	return &brandGormRepository{db: db}
}

func (r *brandGormRepository) List(ctx context.Context) ([]model.Brand, error) {
	var list []model.Brand
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *brandGormRepository) FindByID(ctx context.Context, id int64) (model.Brand, error) {
	var b model.Brand
	err := r.db.WithContext(ctx).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Brand{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Brand{}, err
	}
	return b, nil
}

// 同名があればErrDuplicateName
func (r *brandGormRepository) Create(ctx context.Context, b model.Brand) (model.Brand, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Brand{}).
			Where("name = ?", b.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return repo.ErrDuplicateName
		}
		return tx.Create(&b).Error
	})
	if err != nil {
		return model.Brand{}, err
	}
	return b, nil
}

func (r *brandGormRepository) Update(ctx context.Context, b model.Brand) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Brand{}).
			Where("name = ? AND id <> ?", b.Name, b.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return repo.ErrDuplicateName
		}

		res := tx.Model(&model.Brand{}).
			Where("id = ?", b.ID).
			Updates(map[string]interface{}{
				"name":     b.Name,
				"logo_url": b.LogoURL,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

func (r *brandGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Brand{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
