package usecase

import (
	"context"
	"net/http"

	repo "app/internal/repository"
)

type WishlistUsecase struct {
	wishlists   repo.WishlistRepository
	productRepo repo.ProductRepository
}

func NewWishlistUsecase(wishlists repo.WishlistRepository, productRepo repo.ProductRepository) *WishlistUsecase {
	return &WishlistUsecase{wishlists: wishlists, productRepo: productRepo}
}

type WishlistItemResponse struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"image_url"`
	InStock   bool   `json:"in_stock"`
}

type WishlistResponse struct {
	Items []WishlistItemResponse `json:"items"`
}

func (u *WishlistUsecase) Get(ctx context.Context, userID int64) (WishlistResponse, error) {
	if userID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	wl, err := u.wishlists.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	items, err := u.wishlists.ListItems(ctx, wl.ID)
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]WishlistItemResponse, 0, len(items))
	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err != nil {
			//消えた商品は一覧に出さない
			continue
		}
		if !p.IsActive {
			continue
		}
		respItems = append(respItems, WishlistItemResponse{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			InStock:   p.Stock > 0,
		})
	}

	return WishlistResponse{Items: respItems}, nil
}

func (u *WishlistUsecase) Add(ctx context.Context, userID int64, productID int64) (WishlistResponse, error) {
	if userID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	//商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return WishlistResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return WishlistResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	wl, err := u.wishlists.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.wishlists.AddItem(ctx, wl.ID, productID); err != nil {
		if err == repo.ErrDuplicateItem {
			return WishlistResponse{}, NewHTTPError(http.StatusConflict, "already in wishlist")
		}
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.Get(ctx, userID)
}

func (u *WishlistUsecase) Remove(ctx context.Context, userID int64, productID int64) (WishlistResponse, error) {
	if userID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return WishlistResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	wl, err := u.wishlists.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.wishlists.RemoveItem(ctx, wl.ID, productID); err != nil {
		if err == repo.ErrNotFound {
			return WishlistResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return WishlistResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.Get(ctx, userID)
}
