package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// ユーザーが見つからないことを統一して表す
var ErrUserNotFound = errors.New("user not found")

// 保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID int64) (*model.User, error)
	//メールからユーザーを1件取得する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ユーザー情報の更新=>アクティブかどうか・ロールの変更・最後のログイン更新など
	Update(ctx context.Context, user *model.User) error
	//管理画面用の一覧
	List(ctx context.Context, page int, limit int) ([]model.User, int64, error)
	//トークンのバージョンを＋1
	IncrementTokenVersion(ctx context.Context, userID int64) error
}
