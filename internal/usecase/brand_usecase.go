package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// Categoryと同じ形。名前の一意制約だけ守る。
type BrandUsecase struct {
	brands repo.BrandRepository
}

func NewBrandUsecase(brands repo.BrandRepository) *BrandUsecase {
	return &BrandUsecase{brands: brands}
}

type BrandInput struct {
	Name string
}

func (u *BrandUsecase) List(ctx context.Context) ([]model.Brand, error) {
	list, err := u.brands.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

func (u *BrandUsecase) AdminCreate(ctx context.Context, adminUserID int64, in BrandInput) (model.Brand, error) {
	if adminUserID <= 0 {
		return model.Brand{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.Brand{}, NewHTTPError(http.StatusBadRequest, "name required")
	}

	now := time.Now()
	created, err := u.brands.Create(ctx, model.Brand{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err == repo.ErrDuplicateName {
		return model.Brand{}, NewHTTPError(http.StatusConflict, "name already exists")
	}
	if err != nil {
		return model.Brand{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *BrandUsecase) AdminUpdate(ctx context.Context, adminUserID int64, brandID int64, in BrandInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if brandID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}

	err := u.brands.Update(ctx, model.Brand{
		ID:        brandID,
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

func (u *BrandUsecase) AdminDelete(ctx context.Context, adminUserID int64, brandID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if brandID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.brands.Delete(ctx, brandID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusConflict, "brand in use")
	}
	return nil
}
