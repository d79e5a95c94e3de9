package usecase_test

import (
	"context"
	"strings"
	"testing"

	"app/internal/config"
	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks (Order向け：衝突回避)
// =====================

type OrderTxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *OrderTxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type OrderTxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	carts      repo.CartRepository
	cartItems  repo.CartItemRepository
	inventory  repo.InventoryRepository
	products   repo.ProductRepository
}

func (r *OrderTxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *OrderTxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *OrderTxReposMock) Carts() repo.CartRepository           { return r.carts }
func (r *OrderTxReposMock) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *OrderTxReposMock) Inventory() repo.InventoryRepository  { return r.inventory }
func (r *OrderTxReposMock) Products() repo.ProductRepository     { return r.products }

// =====================
// Repository mocks
// =====================

type OrderOrderRepoMock struct{ mock.Mock }

func (m *OrderOrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderOrderRepoMock) FindByOrderNumber(ctx context.Context, orderNumber string) (model.Order, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderOrderRepoMock) ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderOrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderOrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderOrderRepoMock) UpdatePaymentStatus(ctx context.Context, orderID int64, status model.PaymentStatus) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderOrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderOrderRepoMock) ListAdmin(ctx context.Context, f repo.AdminOrderListFilter) ([]model.Order, int64, error) {
	panic("not used in OrderUsecase tests")
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type OrderCartRepoMock struct{ mock.Mock }

func (m *OrderCartRepoMock) GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderCartRepoMock) FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *OrderCartRepoMock) UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error {
	args := m.Called(ctx, cartID, status)
	return args.Error(0)
}

func (m *OrderCartRepoMock) UpdateTotal(ctx context.Context, cartID int64, total int64) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderCartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type OrderCartItemRepoMock struct{ mock.Mock }

func (m *OrderCartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *OrderCartItemRepoMock) UpsertByCartAndProduct(ctx context.Context, cartID int64, productID int64, addQty int64, unitPriceSnapshot int64) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderCartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderCartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderCartItemRepoMock) FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderCartItemRepoMock) IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error) {
	panic("not used in OrderUsecase tests")
}

type OrderInventoryRepoMock struct{ mock.Mock }

func (m *OrderInventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderInventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *OrderInventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderInventoryRepoMock) CreateAdjustment(ctx context.Context, adjustment model.InventoryAdjustment) error {
	panic("not used in OrderUsecase tests")
}

type OrderProductRepoMock struct{ mock.Mock }

func (m *OrderProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *OrderProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderProductRepoMock) Update(ctx context.Context, p model.Product) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	panic("not used in OrderUsecase tests")
}

type OrderAddressRepoMock struct{ mock.Mock }

func (m *OrderAddressRepoMock) Create(ctx context.Context, address model.Address) (model.Address, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderAddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderAddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *OrderAddressRepoMock) Update(ctx context.Context, address model.Address) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderAddressRepoMock) Delete(ctx context.Context, addressID int64) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderAddressRepoMock) IsOwnedByUser(ctx context.Context, addressID, userID int64) (bool, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderAddressRepoMock) SetDefault(ctx context.Context, userID, addressID int64) error {
	panic("not used in OrderUsecase tests")
}

type OrderUserRepoMock struct{ mock.Mock }

func (m *OrderUserRepoMock) Create(ctx context.Context, user *model.User) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderUserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *OrderUserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderUserRepoMock) Update(ctx context.Context, user *model.User) error {
	panic("not used in OrderUsecase tests")
}

func (m *OrderUserRepoMock) List(ctx context.Context, page int, limit int) ([]model.User, int64, error) {
	panic("not used in OrderUsecase tests")
}

func (m *OrderUserRepoMock) IncrementTokenVersion(ctx context.Context, userID int64) error {
	panic("not used in OrderUsecase tests")
}

type orderMocks struct {
	tx        *OrderTxManagerMock
	orders    *OrderOrderRepoMock
	items     *OrderItemRepoMock
	carts     *OrderCartRepoMock
	cartItems *OrderCartItemRepoMock
	inventory *OrderInventoryRepoMock
	products  *OrderProductRepoMock
	addresses *OrderAddressRepoMock
	users     *OrderUserRepoMock
}

func newOrderMocks() orderMocks {
	m := orderMocks{
		tx:        new(OrderTxManagerMock),
		orders:    new(OrderOrderRepoMock),
		items:     new(OrderItemRepoMock),
		carts:     new(OrderCartRepoMock),
		cartItems: new(OrderCartItemRepoMock),
		inventory: new(OrderInventoryRepoMock),
		products:  new(OrderProductRepoMock),
		addresses: new(OrderAddressRepoMock),
		users:     new(OrderUserRepoMock),
	}
	m.tx.Repos = &OrderTxReposMock{
		orders:     m.orders,
		orderItems: m.items,
		carts:      m.carts,
		cartItems:  m.cartItems,
		inventory:  m.inventory,
		products:   m.products,
	}
	m.tx.On("WithinTx", mock.Anything).Return(nil)
	return m
}

func newOrderUsecaseForTest(m orderMocks) *usecase.OrderUsecase {
	cfg := config.Config{ShippingFee: 500}
	//メール未設定の環境と同じ（確認メールはスキップされる）
	return usecase.NewOrderUsecase(cfg, m.tx, m.addresses, m.users, nil, nil)
}

// =====================
// PlaceOrder
// =====================

func TestOrderUsecase_PlaceOrder_ForeignAddress_Forbidden(t *testing.T) {
	m := newOrderMocks()

	//他人の住所
	m.addresses.On("FindByID", mock.Anything, int64(30)).Return(model.Address{ID: 30, UserID: 2}, nil)

	uc := newOrderUsecaseForTest(m)

	_, err := uc.PlaceOrder(context.Background(), 1, usecase.PlaceOrderInput{AddressID: 30, IdempotencyKey: "key-1"})
	assertHTTPStatus(t, err, 403)
}

func TestOrderUsecase_PlaceOrder_SameKey_ReturnsExistingOrder(t *testing.T) {
	ctx := context.Background()
	m := newOrderMocks()

	m.addresses.On("FindByID", mock.Anything, int64(30)).Return(model.Address{ID: 30, UserID: 1}, nil)

	existing := model.Order{
		ID:            77,
		OrderNumber:   "ORD-AAA",
		UserID:        1,
		OrderStatus:   model.OrderStatusProcessing,
		PaymentStatus: model.PaymentStatusPending,
		Subtotal:      2400,
		Shipping:      500,
		Total:         2900,
	}
	m.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(existing, true, nil)
	m.items.On("ListByOrderID", mock.Anything, int64(77)).Return([]model.OrderItem{}, nil)

	uc := newOrderUsecaseForTest(m)

	out, err := uc.PlaceOrder(ctx, 1, usecase.PlaceOrderInput{AddressID: 30, IdempotencyKey: "key-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(77), out.ID)
	assert.Equal(t, "ORD-AAA", out.OrderNumber)

	//既存があるなら在庫もカートも触らない
	m.inventory.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_CartEmpty(t *testing.T) {
	ctx := context.Background()
	m := newOrderMocks()

	m.addresses.On("FindByID", mock.Anything, int64(30)).Return(model.Address{ID: 30, UserID: 1}, nil)
	m.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	m.carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{}, repo.ErrNotFound)

	uc := newOrderUsecaseForTest(m)

	_, err := uc.PlaceOrder(ctx, 1, usecase.PlaceOrderInput{AddressID: 30, IdempotencyKey: "key-1"})
	assertErrContains(t, err, "cart empty")
}

func TestOrderUsecase_PlaceOrder_OutOfStock(t *testing.T) {
	ctx := context.Background()
	m := newOrderMocks()

	m.addresses.On("FindByID", mock.Anything, int64(30)).Return(model.Address{ID: 30, UserID: 1}, nil)
	m.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	m.carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)
	m.cartItems.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 1, CartID: 5, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 1200},
	}, nil)
	m.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Coffee", Stock: 1, IsActive: true}, nil)

	//確定時の在庫再チェックで足りない
	m.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(false, nil)

	uc := newOrderUsecaseForTest(m)

	_, err := uc.PlaceOrder(ctx, 1, usecase.PlaceOrderInput{AddressID: 30, IdempotencyKey: "key-1"})
	assertErrContains(t, err, "out of stock")

	m.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestOrderUsecase_PlaceOrder_Success_FixesTotalsAndChecksOutCart(t *testing.T) {
	ctx := context.Background()
	m := newOrderMocks()

	m.addresses.On("FindByID", mock.Anything, int64(30)).Return(model.Address{ID: 30, UserID: 1}, nil)
	m.orders.On("FindByIdempotencyKey", mock.Anything, int64(1), "key-1").Return(model.Order{}, false, nil)
	m.carts.On("FindActiveByUserID", mock.Anything, int64(1)).Return(model.Cart{ID: 5, UserID: 1}, nil)

	m.cartItems.On("ListByCartID", mock.Anything, int64(5)).Return([]model.CartItem{
		{ID: 1, CartID: 5, ProductID: 100, Quantity: 2, UnitPriceSnapshot: 1200},
		{ID: 2, CartID: 5, ProductID: 200, Quantity: 1, UnitPriceSnapshot: 500},
	}, nil)

	m.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Coffee", ImageURL: "https://img/coffee.png", Price: 1300, Stock: 10, IsActive: true}, nil)
	m.products.On("FindByID", mock.Anything, int64(200)).
		Return(model.Product{ID: 200, Name: "Tea", Price: 500, Stock: 5, IsActive: true}, nil)

	m.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(true, nil)
	m.inventory.On("DecreaseStockIfEnough", mock.Anything, int64(200), int64(1)).Return(true, nil)

	//小計はスナップショット価格（現在価格1300ではなく1200）で計算される
	m.orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.UserID == 1 &&
			o.AddressID == 30 &&
			o.OrderStatus == model.OrderStatusProcessing &&
			o.PaymentStatus == model.PaymentStatusPending &&
			o.Subtotal == 2900 &&
			o.Shipping == 500 &&
			o.Total == 3400 &&
			o.IdempotencyKey == "key-1" &&
			strings.HasPrefix(o.OrderNumber, "ORD-")
	})).Return(int64(77), nil)

	m.items.On("CreateBulk", mock.Anything, int64(77), mock.MatchedBy(func(items []model.OrderItem) bool {
		if len(items) != 2 {
			return false
		}
		first := items[0]
		return first.ProductID != nil && *first.ProductID == 100 &&
			first.ProductNameSnapshot == "Coffee" &&
			first.UnitPriceSnapshot == 1200 &&
			first.Quantity == 2
	})).Return(nil)

	//再注文防止
	m.carts.On("UpdateStatus", mock.Anything, int64(5), model.CartStatusCheckedOut).Return(nil)
	m.carts.On("Clear", mock.Anything, int64(5)).Return(nil)

	uc := newOrderUsecaseForTest(m)

	out, err := uc.PlaceOrder(ctx, 1, usecase.PlaceOrderInput{AddressID: 30, IdempotencyKey: "key-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(77), out.ID)
	assert.Equal(t, int64(2900), out.Subtotal)
	assert.Equal(t, int64(500), out.Shipping)
	assert.Equal(t, int64(3400), out.Total)
	assert.Equal(t, "processing", out.OrderStatus)
	assert.Equal(t, "pending", out.PaymentStatus)
	assert.Equal(t, 2, len(out.Items))

	m.orders.AssertExpectations(t)
	m.items.AssertExpectations(t)
	m.carts.AssertExpectations(t)
	m.inventory.AssertExpectations(t)
}

// =====================
// ListMyOrders / GetMyOrderDetail
// =====================

func TestOrderUsecase_ListMyOrders_Success(t *testing.T) {
	ctx := context.Background()
	m := newOrderMocks()

	orders := []model.Order{
		{ID: 1, UserID: 1, OrderStatus: model.OrderStatusProcessing},
		{ID: 2, UserID: 1, OrderStatus: model.OrderStatusShipped},
	}
	m.orders.On("ListByUserID", mock.Anything, int64(1), 1, 50).Return(orders, int64(2), nil)
	m.items.On("ListByOrderID", mock.Anything, int64(1)).Return([]model.OrderItem{}, nil)
	m.items.On("ListByOrderID", mock.Anything, int64(2)).Return([]model.OrderItem{}, nil)

	uc := newOrderUsecaseForTest(m)

	outs, err := uc.ListMyOrders(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(outs))

	m.orders.AssertExpectations(t)
	m.items.AssertExpectations(t)
}

func TestOrderUsecase_GetMyOrderDetail_ForeignOrder_NotFound(t *testing.T) {
	ctx := context.Background()
	m := newOrderMocks()

	//他人の注文は存在しない扱い
	m.orders.On("FindByID", mock.Anything, int64(77)).Return(model.Order{ID: 77, UserID: 2}, nil)

	uc := newOrderUsecaseForTest(m)

	_, err := uc.GetMyOrderDetail(ctx, 1, 77)
	assertHTTPStatus(t, err, 404)

	m.items.AssertNotCalled(t, "ListByOrderID", mock.Anything, mock.Anything)
}
