package repository

import (
	"app/internal/domain/model"
	"context"
)

// 支払い方法の保存・取得の窓口。Addressと同じ形。
type PaymentOptionRepository interface {
	Create(ctx context.Context, option model.PaymentOption) (model.PaymentOption, error)

	ListByUserID(ctx context.Context, userID int64) ([]model.PaymentOption, error)

	FindByID(ctx context.Context, optionID int64) (model.PaymentOption, error)

	Delete(ctx context.Context, optionID int64) error

	IsOwnedByUser(ctx context.Context, optionID, userID int64) (bool, error)

	//デフォルト支払い方法の切り替え。全件falseにしてから対象だけtrue。
	SetDefault(ctx context.Context, userID, optionID int64) error
}
