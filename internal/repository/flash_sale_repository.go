package repository

import (
	"app/internal/domain/model"
	"context"
)

type FlashSaleRepository interface {
	Create(ctx context.Context, sale model.FlashSale) (model.FlashSale, error)
	Update(ctx context.Context, sale model.FlashSale) error
	SetActive(ctx context.Context, saleID int64, active bool) error
	FindByID(ctx context.Context, saleID int64) (model.FlashSale, error)
	//is_active=trueのものだけ
	ListActive(ctx context.Context) ([]model.FlashSale, error)
	//対象商品の入れ替え（全削除→再作成）
	ReplaceProducts(ctx context.Context, saleID int64, productIDs []int64) error
	ListProductIDs(ctx context.Context, saleID int64) ([]int64, error)
}
