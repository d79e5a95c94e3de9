package repository

import (
	"app/internal/domain/model"
	"context"
)

// 住所(Address)を保存・取得する窓口
type AddressRepository interface {
	//作成後はaddress（IDなどが埋まったもの）を返す
	Create(ctx context.Context, address model.Address) (model.Address, error)

	//ユーザーが持つ住所一覧を返す
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)

	//住所IDから1件取得
	FindByID(ctx context.Context, addressID int64) (model.Address, error)

	Update(ctx context.Context, address model.Address) error

	Delete(ctx context.Context, addressID int64) error

	//住所がそのユーザーのものかを確認
	IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error)

	//デフォルト住所の切り替え。全件falseにしてから対象だけtrue。
	SetDefault(ctx context.Context, userID, addressID int64) error
}
