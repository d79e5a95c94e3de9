package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type categoryGormRepository struct {
	db *gorm.DB
}

// DI
func NewCategoryGormRepository(db *gorm.DB) repo.CategoryRepository {
	return &categoryGormRepository{db: db}
}

func (r *categoryGormRepository) List(ctx context.Context) ([]model.Category, error) {
	var list []model.Category
	if err := r.db.WithContext(ctx).Order("name asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *categoryGormRepository) FindByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// 同名があればErrDuplicateName
func (r *categoryGormRepository) Create(ctx context.Context, c model.Category) (model.Category, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Category{}).
			Where("name = ?", c.Name).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return repo.ErrDuplicateName
		}
		return tx.Create(&c).Error
	})
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

func (r *categoryGormRepository) Update(ctx context.Context, c model.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Category{}).
			Where("name = ? AND id <> ?", c.Name, c.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return repo.ErrDuplicateName
		}

		res := tx.Model(&model.Category{}).
			Where("id = ?", c.ID).
			Update("name", c.Name)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

func (r *categoryGormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.Category{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
