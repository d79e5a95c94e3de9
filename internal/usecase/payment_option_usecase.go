package usecase

import (
	"context"
	"errors"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type PaymentOptionDTO struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Label     string `json:"label"`
	Holder    string `json:"holder"`
	Brand     string `json:"brand"`
	Last4     string `json:"last4"`
	ExpMonth  int    `json:"exp_month"`
	ExpYear   int    `json:"exp_year"`
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

type PaymentOptionCreateRequest struct {
	Label    string `json:"label"`
	Holder   string `json:"holder"`
	Brand    string `json:"brand"`
	Last4    string `json:"last4"`
	ExpMonth int    `json:"exp_month"`
	ExpYear  int    `json:"exp_year"`
}

// デフォルト切り替えは支払いに直結するので、パスワードを再確認する
type PaymentOptionSetDefaultRequest struct {
	Password string `json:"password"`
}

type PaymentOptionUsecase struct {
	options repository.PaymentOptionRepository
	users   repository.UserRepository
}

func NewPaymentOptionUsecase(
	options repository.PaymentOptionRepository,
	users repository.UserRepository,
) *PaymentOptionUsecase {
	return &PaymentOptionUsecase{options: options, users: users}
}

func (u *PaymentOptionUsecase) List(ctx context.Context, userID int64) ([]PaymentOptionDTO, error) {
	if userID <= 0 {
		return nil, ErrUnauthorized
	}

	list, err := u.options.ListByUserID(ctx, userID)
	if err != nil {
		return nil, ErrInternal
	}

	out := make([]PaymentOptionDTO, 0, len(list))
	for i := range list {
		out = append(out, toPaymentOptionDTO(&list[i]))
	}
	return out, nil
}

func (u *PaymentOptionUsecase) Create(ctx context.Context, userID int64, req PaymentOptionCreateRequest) (PaymentOptionDTO, error) {
	if userID <= 0 {
		return PaymentOptionDTO{}, ErrUnauthorized
	}

	//入力チェック
	if req.Label == "" || req.Holder == "" || len(req.Last4) != 4 {
		return PaymentOptionDTO{}, ErrValidation
	}
	if req.ExpMonth < 1 || req.ExpMonth > 12 {
		return PaymentOptionDTO{}, ErrValidation
	}
	if req.ExpYear < time.Now().Year() {
		return PaymentOptionDTO{}, ErrValidation
	}

	//1件目は自動でデフォルトにする
	existing, err := u.options.ListByUserID(ctx, userID)
	if err != nil {
		return PaymentOptionDTO{}, ErrInternal
	}
	isDefault := len(existing) == 0

	now := time.Now()
	p := model.PaymentOption{
		UserID:    userID,
		Label:     req.Label,
		Holder:    req.Holder,
		Brand:     req.Brand,
		Last4:     req.Last4,
		ExpMonth:  req.ExpMonth,
		ExpYear:   req.ExpYear,
		IsDefault: isDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := u.options.Create(ctx, p)
	if err != nil {
		return PaymentOptionDTO{}, ErrInternal
	}

	return toPaymentOptionDTO(&created), nil
}

func (u *PaymentOptionUsecase) Delete(ctx context.Context, userID int64, optionID int64) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if optionID <= 0 {
		return ErrValidation
	}

	owned, err := u.options.IsOwnedByUser(ctx, optionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	if !owned {
		return ErrForbidden
	}

	if err := u.options.Delete(ctx, optionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}

	return nil
}

// SetDefault はパスワード再確認つきのデフォルト切り替え。
func (u *PaymentOptionUsecase) SetDefault(ctx context.Context, userID int64, optionID int64, req PaymentOptionSetDefaultRequest) error {
	if userID <= 0 {
		return ErrUnauthorized
	}
	if optionID <= 0 {
		return ErrValidation
	}
	if req.Password == "" {
		return ErrValidation
	}

	//パスワード再確認
	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return ErrUnauthorized
	}

	owned, err := u.options.IsOwnedByUser(ctx, optionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}
	if !owned {
		return ErrForbidden
	}

	//user内でdefaultは1つ
	if err := u.options.SetDefault(ctx, userID, optionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return ErrInternal
	}

	return nil
}

func toPaymentOptionDTO(p *model.PaymentOption) PaymentOptionDTO {
	return PaymentOptionDTO{
		ID:        p.ID,
		UserID:    p.UserID,
		Label:     p.Label,
		Holder:    p.Holder,
		Brand:     p.Brand,
		Last4:     p.Last4,
		ExpMonth:  p.ExpMonth,
		ExpYear:   p.ExpYear,
		IsDefault: p.IsDefault,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
