package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error
	// 明細から再計算した合計を保存する。明細更新と同じTx内で呼ぶこと。
	UpdateTotal(ctx context.Context, cartID int64, total int64) error
	// 明細を全削除して合計を0にする
	Clear(ctx context.Context, cartID int64) error
}
