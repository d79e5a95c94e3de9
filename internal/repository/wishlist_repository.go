package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// すでに同じ商品が入っている
var ErrDuplicateItem = errors.New("duplicate item")

type WishlistRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Wishlist, error)
	ListItems(ctx context.Context, wishlistID int64) ([]model.WishlistItem, error)
	//重複はErrDuplicateItem
	AddItem(ctx context.Context, wishlistID int64, productID int64) error
	//無ければErrNotFound
	RemoveItem(ctx context.Context, wishlistID int64, productID int64) error
}
