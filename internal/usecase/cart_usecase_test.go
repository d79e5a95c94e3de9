package usecase_test

import (
	"context"
	"testing"

	"app/internal/domain/model"
	"app/internal/infra/session"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks (Cart向け：衝突回避)
// =====================

type CartTxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *CartTxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type CartTxReposMock struct {
	carts     repo.CartRepository
	cartItems repo.CartItemRepository
	products  repo.ProductRepository

	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	inventory  repo.InventoryRepository
}

func (r *CartTxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *CartTxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *CartTxReposMock) Carts() repo.CartRepository           { return r.carts }
func (r *CartTxReposMock) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *CartTxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *CartTxReposMock) Products() repo.ProductRepository     { return r.products }

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartRepoMock) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	panic("not used in CartUsecase tests")
}

func (m *CartRepoMock) UpdateTotal(ctx context.Context, cartID int64, total int64) error {
	args := m.Called(ctx, cartID, total)
	return args.Error(0)
}

func (m *CartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64, unitPriceSnapshot int64) error {
	args := m.Called(ctx, cartID, productID, addQty, unitPriceSnapshot)
	return args.Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	args := m.Called(ctx, cartItemID, userID)
	return args.Bool(0), args.Error(1)
}

type CartProductRepoMock struct{ mock.Mock }

func (m *CartProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CartProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in CartUsecase tests")
}

// memoryGuestStore はRedisの代わりのメモリ実装
type memoryGuestStore struct {
	data map[string][]session.GuestCartLine
}

func newMemoryGuestStore() *memoryGuestStore {
	return &memoryGuestStore{data: map[string][]session.GuestCartLine{}}
}

func (s *memoryGuestStore) Get(ctx context.Context, guestID string) ([]session.GuestCartLine, error) {
	return s.data[guestID], nil
}

func (s *memoryGuestStore) Save(ctx context.Context, guestID string, lines []session.GuestCartLine) error {
	s.data[guestID] = lines
	return nil
}

func (s *memoryGuestStore) Delete(ctx context.Context, guestID string) error {
	delete(s.data, guestID)
	return nil
}

func newCartMocks() (*CartTxManagerMock, *CartRepoMock, *CartItemRepoMock, *CartProductRepoMock) {
	tx := new(CartTxManagerMock)
	carts := new(CartRepoMock)
	items := new(CartItemRepoMock)
	products := new(CartProductRepoMock)
	tx.Repos = &CartTxReposMock{carts: carts, cartItems: items, products: products}
	tx.On("WithinTx", mock.Anything).Return(nil)
	return tx, carts, items, products
}

// =====================
// AddToCart
// =====================

func TestCartUsecase_AddToCart_InvalidQuantity(t *testing.T) {
	tx, _, _, _ := newCartMocks()
	uc := usecase.NewCartUsecase(tx, newMemoryGuestStore())

	_, err := uc.AddToCart(context.Background(), 1, usecase.AddCartInput{ProductID: 100, Quantity: 0})
	assertErrContains(t, err, "invalid quantity")
}

func TestCartUsecase_AddToCart_Success_PersistsRecomputedTotal(t *testing.T) {
	ctx := context.Background()
	tx, carts, items, products := newCartMocks()

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Coffee", Price: 1200, Stock: 10, IsActive: true}, nil)

	//追加前は空、追加後は1行
	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{}, nil).Once()
	items.On("UpsertByCartAndProduct", mock.Anything, int64(5), int64(100), int64(2), int64(1200)).Return(nil)
	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 1, CartID: 5, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 1200},
	}, nil).Once()

	//保存される合計は明細から再計算した値
	carts.On("UpdateTotal", mock.Anything, int64(5), int64(2400)).Return(nil)

	uc := usecase.NewCartUsecase(tx, newMemoryGuestStore())

	out, err := uc.AddToCart(ctx, 1, usecase.AddCartInput{ProductID: 100, Quantity: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(2400), out.Total)
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, int64(1200), out.Items[0].Price)

	carts.AssertExpectations(t)
	items.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_StockExceeded_WithExistingQuantity(t *testing.T) {
	ctx := context.Background()
	tx, carts, items, products := newCartMocks()

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Price: 1200, Stock: 10, IsActive: true}, nil)

	//既に8個入っているので +3 は在庫10を超える
	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 1, CartID: 5, ProductID: 100, Quantity: 8, UnitPriceSnapshot: 1200},
	}, nil)

	uc := usecase.NewCartUsecase(tx, newMemoryGuestStore())

	_, err := uc.AddToCart(ctx, 1, usecase.AddCartInput{ProductID: 100, Quantity: 3})
	assertErrContains(t, err, "stock exceeded")

	items.AssertNotCalled(t, "UpsertByCartAndProduct", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	carts.AssertNotCalled(t, "UpdateTotal", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	ctx := context.Background()
	tx, carts, _, products := newCartMocks()

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5}, nil)
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, IsActive: false}, nil)

	uc := usecase.NewCartUsecase(tx, newMemoryGuestStore())

	_, err := uc.AddToCart(ctx, 1, usecase.AddCartInput{ProductID: 100, Quantity: 1})
	assertHTTPStatus(t, err, 400)
}

// =====================
// UpdateCartItem / DeleteCartItem
// =====================

func TestCartUsecase_UpdateCartItem_NotOwned_NotFound(t *testing.T) {
	ctx := context.Background()
	tx, _, items, _ := newCartMocks()

	//他人の明細は存在しない扱い
	items.On("IsOwnedByUser", mock.Anything, int64(9), int64(1)).Return(false, nil)

	uc := usecase.NewCartUsecase(tx, newMemoryGuestStore())

	_, err := uc.UpdateCartItem(ctx, 1, 9, usecase.UpdateCartItemInput{Quantity: 2})
	assertHTTPStatus(t, err, 404)

	items.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_DeleteCartItem_PersistsRecomputedTotal(t *testing.T) {
	ctx := context.Background()
	tx, carts, items, products := newCartMocks()

	items.On("IsOwnedByUser", mock.Anything, int64(1), int64(1)).Return(true, nil)
	items.On("FindByID", mock.Anything, int64(1)).
		Return(model.CartItem{ID: 1, CartID: 5, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 1200}, nil)
	items.On("DeleteByID", mock.Anything, int64(1)).Return(nil)

	//削除後に残る明細
	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 2, CartID: 5, ProductID: 200, Quantity: 1, UnitPriceSnapshot: 500},
	}, nil)
	products.On("FindByID", mock.Anything, int64(200)).
		Return(model.Product{ID: 200, Name: "Tea", Price: 550, Stock: 5, IsActive: true}, nil)

	carts.On("UpdateTotal", mock.Anything, int64(5), int64(500)).Return(nil)

	uc := usecase.NewCartUsecase(tx, newMemoryGuestStore())

	out, err := uc.DeleteCartItem(ctx, 1, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(500), out.Total)

	carts.AssertExpectations(t)
	items.AssertExpectations(t)
}

func TestCartUsecase_GetCart_DeletesStaleLinesAndKeepsTotalConsistent(t *testing.T) {
	ctx := context.Background()
	tx, carts, items, products := newCartMocks()

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)

	//非公開になった商品と消えた商品の明細が残っている
	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 1, CartID: 5, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 10},
		{ID: 2, CartID: 5, ProductID: 200, Quantity: 1, UnitPriceSnapshot: 5},
		{ID: 3, CartID: 5, ProductID: 300, Quantity: 1, UnitPriceSnapshot: 7},
	}, nil)
	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Coffee", Price: 10, Stock: 9, IsActive: true}, nil)
	products.On("FindByID", mock.Anything, int64(200)).
		Return(model.Product{ID: 200, IsActive: false}, nil)
	products.On("FindByID", mock.Anything, int64(300)).
		Return(model.Product{}, repo.ErrNotFound)

	//見えない行は同じトランザクション内で物理削除される
	items.On("DeleteByID", mock.Anything, int64(2)).Return(nil)
	items.On("DeleteByID", mock.Anything, int64(3)).Return(nil)

	//保存される合計は残った明細と一致する
	carts.On("UpdateTotal", mock.Anything, int64(5), int64(20)).Return(nil)

	uc := usecase.NewCartUsecase(tx, newMemoryGuestStore())

	out, err := uc.GetCart(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(20), out.Total)
	assert.Equal(t, 1, len(out.Items))
	assert.Equal(t, int64(100), out.Items[0].ProductID)

	carts.AssertExpectations(t)
	items.AssertExpectations(t)
}

func TestCartUsecase_ClearCart(t *testing.T) {
	ctx := context.Background()
	tx, carts, _, _ := newCartMocks()

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5}, nil)
	carts.On("Clear", mock.Anything, int64(5)).Return(nil)

	uc := usecase.NewCartUsecase(tx, newMemoryGuestStore())

	out, err := uc.ClearCart(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), out.Total)
	assert.Equal(t, 0, len(out.Items))

	carts.AssertExpectations(t)
}

// =====================
// ゲストカート
// =====================

func TestCartUsecase_MergeGuestCart_CapsAtStockAndDeletesKey(t *testing.T) {
	ctx := context.Background()
	tx, carts, items, products := newCartMocks()

	store := newMemoryGuestStore()
	store.data["g-1"] = []session.GuestCartLine{
		{ProductID: 100, Quantity: 5}, //在庫3なので3に切り詰め
		{ProductID: 200, Quantity: 2}, //非公開なので捨てる
		{ProductID: 300, Quantity: 1}, //消えた商品なので捨てる
	}

	carts.On("GetOrCreateActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5}, nil)

	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{}, nil).Once()

	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Coffee", Price: 1000, Stock: 3, IsActive: true}, nil)
	products.On("FindByID", mock.Anything, int64(200)).
		Return(model.Product{ID: 200, IsActive: false}, nil)
	products.On("FindByID", mock.Anything, int64(300)).
		Return(model.Product{}, repo.ErrNotFound)

	items.On("UpsertByCartAndProduct", mock.Anything, int64(5), int64(100), int64(3), int64(1000)).Return(nil)

	items.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 1, CartID: 5, ProductID: 100, Quantity: 3, UnitPriceSnapshot: 1000},
	}, nil).Once()
	carts.On("UpdateTotal", mock.Anything, int64(5), int64(3000)).Return(nil)

	uc := usecase.NewCartUsecase(tx, store)

	err := uc.MergeGuestCart(ctx, 1, "g-1")
	assert.NoError(t, err)

	//取り込み後はゲストカートが消えている
	_, exists := store.data["g-1"]
	assert.False(t, exists)

	carts.AssertExpectations(t)
	items.AssertExpectations(t)
	products.AssertExpectations(t)
}

func TestCartUsecase_MergeGuestCart_EmptyGuestID_NoOp(t *testing.T) {
	tx, carts, _, _ := newCartMocks()
	uc := usecase.NewCartUsecase(tx, newMemoryGuestStore())

	err := uc.MergeGuestCart(context.Background(), 1, "  ")
	assert.NoError(t, err)

	carts.AssertNotCalled(t, "GetOrCreateActiveByUserID", mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToGuestCart_StockExceeded(t *testing.T) {
	ctx := context.Background()
	tx, _, _, products := newCartMocks()

	store := newMemoryGuestStore()
	store.data["g-1"] = []session.GuestCartLine{{ProductID: 100, Quantity: 1}}

	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Price: 1000, Stock: 2, IsActive: true}, nil)

	uc := usecase.NewCartUsecase(tx, store)

	_, err := uc.AddToGuestCart(ctx, "g-1", usecase.AddCartInput{ProductID: 100, Quantity: 2})
	assertErrContains(t, err, "stock exceeded")

	//失敗時はRedis側も増えない
	assert.Equal(t, int64(1), store.data["g-1"][0].Quantity)
}

func TestCartUsecase_AddToGuestCart_Success_UsesCurrentPrice(t *testing.T) {
	ctx := context.Background()
	tx, _, _, products := newCartMocks()

	store := newMemoryGuestStore()

	products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Coffee", Price: 1300, Stock: 10, IsActive: true}, nil)

	uc := usecase.NewCartUsecase(tx, store)

	out, err := uc.AddToGuestCart(ctx, "g-1", usecase.AddCartInput{ProductID: 100, Quantity: 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(2600), out.Total)
	assert.Equal(t, int64(2), store.data["g-1"][0].Quantity)
}

func TestCartUsecase_RemoveFromGuestCart_NotFound(t *testing.T) {
	tx, _, _, _ := newCartMocks()

	store := newMemoryGuestStore()
	store.data["g-1"] = []session.GuestCartLine{{ProductID: 100, Quantity: 1}}

	uc := usecase.NewCartUsecase(tx, store)

	_, err := uc.RemoveFromGuestCart(context.Background(), "g-1", 999)
	assertHTTPStatus(t, err, 404)
}
