package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

// 名前重複（カテゴリ・ブランド共通）
var ErrDuplicateName = errors.New("duplicate name")

type CategoryRepository interface {
	List(ctx context.Context) ([]model.Category, error)
	FindByID(ctx context.Context, id int64) (model.Category, error)
	Create(ctx context.Context, c model.Category) (model.Category, error)
	Update(ctx context.Context, c model.Category) error
	Delete(ctx context.Context, id int64) error
}
