package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

// FlashSaleUsecase は期間限定セールの公開一覧と管理CRUDです。
// is_activeは日付と独立したフラグで、期限切れの自動無効化はしない。
type FlashSaleUsecase struct {
	sales       repo.FlashSaleRepository
	productRepo repo.ProductRepository
}

func NewFlashSaleUsecase(sales repo.FlashSaleRepository, productRepo repo.ProductRepository) *FlashSaleUsecase {
	return &FlashSaleUsecase{sales: sales, productRepo: productRepo}
}

type FlashSaleInput struct {
	Name            string
	DiscountPercent int64
	StartsAt        time.Time
	EndsAt          time.Time
	ProductIDs      []int64
}

type FlashSaleProductOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	SalePrice int64  `json:"sale_price"`
	ImageURL  string `json:"image_url"`
}

type FlashSaleOutput struct {
	ID              int64                    `json:"id"`
	Name            string                   `json:"name"`
	DiscountPercent int64                    `json:"discount_percent"`
	StartsAt        time.Time                `json:"starts_at"`
	EndsAt          time.Time                `json:"ends_at"`
	IsActive        bool                     `json:"is_active"`
	Products        []FlashSaleProductOutput `json:"products"`
}

// ListActive は公開中のセールだけを返す。
func (u *FlashSaleUsecase) ListActive(ctx context.Context) ([]FlashSaleOutput, error) {
	sales, err := u.sales.ListActive(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	outs := make([]FlashSaleOutput, 0, len(sales))
	for _, s := range sales {
		out, err := u.buildOutput(ctx, s)
		if err != nil {
			return nil, err
		}
		outs = append(outs, out)
	}
	return outs, nil
}

func (u *FlashSaleUsecase) AdminGet(ctx context.Context, adminUserID int64, saleID int64) (FlashSaleOutput, error) {
	if adminUserID <= 0 {
		return FlashSaleOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if saleID <= 0 {
		return FlashSaleOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	s, err := u.sales.FindByID(ctx, saleID)
	if err == repo.ErrNotFound {
		return FlashSaleOutput{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return FlashSaleOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildOutput(ctx, s)
}

func (u *FlashSaleUsecase) AdminCreate(ctx context.Context, adminUserID int64, in FlashSaleInput) (FlashSaleOutput, error) {
	if adminUserID <= 0 {
		return FlashSaleOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateFlashSaleInput(in); err != nil {
		return FlashSaleOutput{}, err
	}

	now := time.Now()
	created, err := u.sales.Create(ctx, model.FlashSale{
		Name:            strings.TrimSpace(in.Name),
		DiscountPercent: in.DiscountPercent,
		StartsAt:        in.StartsAt,
		EndsAt:          in.EndsAt,
		IsActive:        false,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return FlashSaleOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if len(in.ProductIDs) > 0 {
		if err := u.sales.ReplaceProducts(ctx, created.ID, in.ProductIDs); err != nil {
			return FlashSaleOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	return u.buildOutput(ctx, created)
}

func (u *FlashSaleUsecase) AdminUpdate(ctx context.Context, adminUserID int64, saleID int64, in FlashSaleInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if saleID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateFlashSaleInput(in); err != nil {
		return err
	}

	s, err := u.sales.FindByID(ctx, saleID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	s.Name = strings.TrimSpace(in.Name)
	s.DiscountPercent = in.DiscountPercent
	s.StartsAt = in.StartsAt
	s.EndsAt = in.EndsAt
	s.UpdatedAt = time.Now()

	if err := u.sales.Update(ctx, s); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.sales.ReplaceProducts(ctx, saleID, in.ProductIDs); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// AdminSetActive は公開フラグだけを切り替える。
func (u *FlashSaleUsecase) AdminSetActive(ctx context.Context, adminUserID int64, saleID int64, active bool) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if saleID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.sales.SetActive(ctx, saleID, active)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func validateFlashSaleInput(in FlashSaleInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.DiscountPercent < 1 || in.DiscountPercent > 90 {
		return NewHTTPError(http.StatusBadRequest, "discount_percent must be 1-90")
	}
	if in.StartsAt.IsZero() || in.EndsAt.IsZero() || !in.EndsAt.After(in.StartsAt) {
		return NewHTTPError(http.StatusBadRequest, "invalid period")
	}
	return nil
}

func (u *FlashSaleUsecase) buildOutput(ctx context.Context, s model.FlashSale) (FlashSaleOutput, error) {
	ids, err := u.sales.ListProductIDs(ctx, s.ID)
	if err != nil {
		return FlashSaleOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	products := make([]FlashSaleProductOutput, 0, len(ids))
	for _, id := range ids {
		p, err := u.productRepo.FindByID(ctx, id)
		if err != nil {
			continue
		}
		if !p.IsActive {
			continue
		}
		products = append(products, FlashSaleProductOutput{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			SalePrice: p.Price - p.Price*s.DiscountPercent/100,
			ImageURL:  p.ImageURL,
		})
	}

	return FlashSaleOutput{
		ID:              s.ID,
		Name:            s.Name,
		DiscountPercent: s.DiscountPercent,
		StartsAt:        s.StartsAt,
		EndsAt:          s.EndsAt,
		IsActive:        s.IsActive,
		Products:        products,
	}, nil
}
