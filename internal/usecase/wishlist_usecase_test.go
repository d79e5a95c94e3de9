package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type WishlistRepoMock struct{ mock.Mock }

func (m *WishlistRepoMock) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Wishlist, error) {
	args := m.Called(ctx, userID)
	wl, _ := args.Get(0).(model.Wishlist)
	return wl, args.Error(1)
}

func (m *WishlistRepoMock) ListItems(ctx context.Context, wishlistID int64) ([]model.WishlistItem, error) {
	args := m.Called(ctx, wishlistID)
	items, _ := args.Get(0).([]model.WishlistItem)
	return items, args.Error(1)
}

func (m *WishlistRepoMock) AddItem(ctx context.Context, wishlistID int64, productID int64) error {
	args := m.Called(ctx, wishlistID, productID)
	return args.Error(0)
}

func (m *WishlistRepoMock) RemoveItem(ctx context.Context, wishlistID int64, productID int64) error {
	args := m.Called(ctx, wishlistID, productID)
	return args.Error(0)
}

func TestWishlistUsecase_Get_SkipsGoneProductsAndFlagsStock(t *testing.T) {
	ctx := context.Background()

	wlRepo := new(WishlistRepoMock)
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewWishlistUsecase(wlRepo, pRepo)

	wlRepo.On("GetOrCreateByUserID", mock.Anything, int64(1)).Return(model.Wishlist{ID: 3, UserID: 1}, nil)
	wlRepo.On("ListItems", mock.Anything, int64(3)).Return([]model.WishlistItem{
		{ID: 1, WishlistID: 3, ProductID: 100},
		{ID: 2, WishlistID: 3, ProductID: 200},
		{ID: 3, WishlistID: 3, ProductID: 300},
	}, nil)

	pRepo.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Coffee", Price: 1200, Stock: 0, IsActive: true}, nil)
	pRepo.On("FindByID", mock.Anything, int64(200)).
		Return(model.Product{ID: 200, IsActive: false}, nil)
	pRepo.On("FindByID", mock.Anything, int64(300)).
		Return(model.Product{}, repo.ErrNotFound)

	out, err := uc.Get(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, int64(100), out.Items[0].ProductID)
	//在庫0はin_stock=false
	assert.False(t, out.Items[0].InStock)
}

func TestWishlistUsecase_Add_InactiveProduct_BadRequest(t *testing.T) {
	wlRepo := new(WishlistRepoMock)
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewWishlistUsecase(wlRepo, pRepo)

	pRepo.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, IsActive: false}, nil)

	_, err := uc.Add(context.Background(), 1, 100)
	assertHTTPStatus(t, err, 400)

	wlRepo.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything)
}

func TestWishlistUsecase_Add_Duplicate_Conflict(t *testing.T) {
	wlRepo := new(WishlistRepoMock)
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewWishlistUsecase(wlRepo, pRepo)

	pRepo.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Stock: 1, IsActive: true}, nil)
	wlRepo.On("GetOrCreateByUserID", mock.Anything, int64(1)).Return(model.Wishlist{ID: 3}, nil)
	wlRepo.On("AddItem", mock.Anything, int64(3), int64(100)).Return(repo.ErrDuplicateItem)

	_, err := uc.Add(context.Background(), 1, 100)
	assertHTTPStatus(t, err, 409)
}

func TestWishlistUsecase_Remove_NotFound(t *testing.T) {
	wlRepo := new(WishlistRepoMock)
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewWishlistUsecase(wlRepo, pRepo)

	wlRepo.On("GetOrCreateByUserID", mock.Anything, int64(1)).Return(model.Wishlist{ID: 3}, nil)
	wlRepo.On("RemoveItem", mock.Anything, int64(3), int64(100)).Return(repo.ErrNotFound)

	_, err := uc.Remove(context.Background(), 1, 100)
	assertHTTPStatus(t, err, 404)
}

func TestWishlistUsecase_Remove_Success_ReturnsRefreshedList(t *testing.T) {
	ctx := context.Background()

	wlRepo := new(WishlistRepoMock)
	pRepo := new(ProdProductRepoMock)
	uc := usecase.NewWishlistUsecase(wlRepo, pRepo)

	wlRepo.On("GetOrCreateByUserID", mock.Anything, int64(1)).Return(model.Wishlist{ID: 3}, nil)
	wlRepo.On("RemoveItem", mock.Anything, int64(3), int64(100)).Return(nil)
	wlRepo.On("ListItems", mock.Anything, int64(3)).Return([]model.WishlistItem{}, nil)

	out, err := uc.Remove(ctx, 1, 100)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(out.Items))

	wlRepo.AssertExpectations(t)
}
