package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type CategoryUsecase struct {
	categories repo.CategoryRepository
}

func NewCategoryUsecase(categories repo.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{categories: categories}
}

type CategoryInput struct {
	Name string
}

func (u *CategoryUsecase) List(ctx context.Context) ([]model.Category, error) {
	list, err := u.categories.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

func (u *CategoryUsecase) AdminCreate(ctx context.Context, adminUserID int64, in CategoryInput) (model.Category, error) {
	if adminUserID <= 0 {
		return model.Category{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	now := time.Now()
	created, err := u.categories.Create(ctx, model.Category{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err == repo.ErrDuplicateName {
		return model.Category{}, NewHTTPError(http.StatusConflict, "name already exists")
	}
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *CategoryUsecase) AdminUpdate(ctx context.Context, adminUserID int64, categoryID int64, in CategoryInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}

	err := u.categories.Update(ctx, model.Category{
		ID:        categoryID,
		Name:      name,
		UpdatedAt: time.Now(),
	})
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err == repo.ErrDuplicateName {
		return NewHTTPError(http.StatusConflict, "name already exists")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *CategoryUsecase) AdminDelete(ctx context.Context, adminUserID int64, categoryID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.categories.Delete(ctx, categoryID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		//商品が参照中などで消せない
		return NewHTTPError(http.StatusConflict, "category in use")
	}
	return nil
}
