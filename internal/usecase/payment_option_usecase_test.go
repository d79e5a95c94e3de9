package usecase_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type PayOptionRepoMock struct{ mock.Mock }

func (m *PayOptionRepoMock) Create(ctx context.Context, option model.PaymentOption) (model.PaymentOption, error) {
	args := m.Called(ctx, option)
	p, _ := args.Get(0).(model.PaymentOption)
	return p, args.Error(1)
}

func (m *PayOptionRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.PaymentOption, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.PaymentOption)
	return list, args.Error(1)
}

func (m *PayOptionRepoMock) FindByID(ctx context.Context, optionID int64) (model.PaymentOption, error) {
	panic("not used in PaymentOptionUsecase tests")
}

func (m *PayOptionRepoMock) Delete(ctx context.Context, optionID int64) error {
	args := m.Called(ctx, optionID)
	return args.Error(0)
}

func (m *PayOptionRepoMock) IsOwnedByUser(ctx context.Context, optionID, userID int64) (bool, error) {
	args := m.Called(ctx, optionID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *PayOptionRepoMock) SetDefault(ctx context.Context, userID, optionID int64) error {
	args := m.Called(ctx, userID, optionID)
	return args.Error(0)
}

func TestPaymentOptionUsecase_Create_InvalidLast4(t *testing.T) {
	repo := new(PayOptionRepoMock)
	uc := usecase.NewPaymentOptionUsecase(repo, new(AuthUserRepoMock))

	_, err := uc.Create(context.Background(), 1, usecase.PaymentOptionCreateRequest{
		Label:    "メインカード",
		Holder:   "TARO YAMADA",
		Last4:    "12345",
		ExpMonth: 12,
		ExpYear:  time.Now().Year() + 1,
	})
	assert.ErrorIs(t, err, usecase.ErrValidation)
}

func TestPaymentOptionUsecase_Create_FirstOptionBecomesDefault(t *testing.T) {
	ctx := context.Background()
	repo := new(PayOptionRepoMock)
	uc := usecase.NewPaymentOptionUsecase(repo, new(AuthUserRepoMock))

	repo.On("ListByUserID", mock.Anything, int64(1)).Return([]model.PaymentOption{}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p model.PaymentOption) bool {
		return p.UserID == 1 && p.IsDefault
	})).Return(model.PaymentOption{ID: 10, UserID: 1, IsDefault: true}, nil)

	out, err := uc.Create(ctx, 1, usecase.PaymentOptionCreateRequest{
		Label:    "メインカード",
		Holder:   "TARO YAMADA",
		Brand:    "visa",
		Last4:    "4242",
		ExpMonth: 12,
		ExpYear:  time.Now().Year() + 1,
	})
	assert.NoError(t, err)
	assert.True(t, out.IsDefault)

	repo.AssertExpectations(t)
}

func TestPaymentOptionUsecase_Create_SecondOptionIsNotDefault(t *testing.T) {
	ctx := context.Background()
	repo := new(PayOptionRepoMock)
	uc := usecase.NewPaymentOptionUsecase(repo, new(AuthUserRepoMock))

	repo.On("ListByUserID", mock.Anything, int64(1)).Return([]model.PaymentOption{
		{ID: 10, UserID: 1, IsDefault: true},
	}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(p model.PaymentOption) bool {
		return !p.IsDefault
	})).Return(model.PaymentOption{ID: 11, UserID: 1}, nil)

	out, err := uc.Create(ctx, 1, usecase.PaymentOptionCreateRequest{
		Label:    "サブカード",
		Holder:   "TARO YAMADA",
		Last4:    "0004",
		ExpMonth: 1,
		ExpYear:  time.Now().Year() + 2,
	})
	assert.NoError(t, err)
	assert.False(t, out.IsDefault)
}

func TestPaymentOptionUsecase_SetDefault_WrongPassword_Unauthorized(t *testing.T) {
	repo := new(PayOptionRepoMock)
	users := new(AuthUserRepoMock)
	uc := usecase.NewPaymentOptionUsecase(repo, users)

	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID:           1,
		PasswordHash: mustBcrypt(t, "correct-password"),
		IsActive:     true,
	}, nil)

	err := uc.SetDefault(context.Background(), 1, 10, usecase.PaymentOptionSetDefaultRequest{Password: "wrong"})
	assert.ErrorIs(t, err, usecase.ErrUnauthorized)

	repo.AssertNotCalled(t, "SetDefault", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentOptionUsecase_SetDefault_Success(t *testing.T) {
	repo := new(PayOptionRepoMock)
	users := new(AuthUserRepoMock)
	uc := usecase.NewPaymentOptionUsecase(repo, users)

	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID:           1,
		PasswordHash: mustBcrypt(t, "correct-password"),
		IsActive:     true,
	}, nil)
	repo.On("IsOwnedByUser", mock.Anything, int64(10), int64(1)).Return(true, nil)
	repo.On("SetDefault", mock.Anything, int64(1), int64(10)).Return(nil)

	err := uc.SetDefault(context.Background(), 1, 10, usecase.PaymentOptionSetDefaultRequest{Password: "correct-password"})
	assert.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestPaymentOptionUsecase_SetDefault_NotOwned_Forbidden(t *testing.T) {
	repo := new(PayOptionRepoMock)
	users := new(AuthUserRepoMock)
	uc := usecase.NewPaymentOptionUsecase(repo, users)

	users.On("FindByID", mock.Anything, int64(1)).Return(&model.User{
		ID:           1,
		PasswordHash: mustBcrypt(t, "correct-password"),
	}, nil)
	repo.On("IsOwnedByUser", mock.Anything, int64(10), int64(1)).Return(false, nil)

	err := uc.SetDefault(context.Background(), 1, 10, usecase.PaymentOptionSetDefaultRequest{Password: "correct-password"})
	assert.ErrorIs(t, err, usecase.ErrForbidden)
}
