package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/infra/mail"
	"app/internal/logger"
	"app/internal/repository"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderUsecase struct {
	cfg       config.Config
	tx        repo.TransactionManager
	addresses repository.AddressRepository
	users     repository.UserRepository
	mailer    mail.Mailer
	log       *logger.Logger
}

func NewOrderUsecase(
	cfg config.Config,
	tx repo.TransactionManager,
	addresses repository.AddressRepository,
	users repository.UserRepository,
	mailer mail.Mailer,
	log *logger.Logger,
) *OrderUsecase {
	return &OrderUsecase{
		cfg:       cfg,
		tx:        tx,
		addresses: addresses,
		users:     users,
		mailer:    mailer,
		log:       log,
	}
}

type PlaceOrderInput struct {
	AddressID      int64
	IdempotencyKey string
}

type OrderItemOutput struct {
	ProductID *int64 `json:"product_id"`
	Name      string `json:"name"`
	ImageURL  string `json:"image_url"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID            int64             `json:"id"`
	OrderNumber   string            `json:"order_number"`
	UserID        int64             `json:"user_id"`
	OrderStatus   string            `json:"order_status"`
	PaymentStatus string            `json:"payment_status"`
	Subtotal      int64             `json:"subtotal"`
	Shipping      int64             `json:"shipping"`
	Total         int64             `json:"total"`
	CreatedAt     time.Time         `json:"created_at"`
	Items         []OrderItemOutput `json:"items"`
}

func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.AddressID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid address_id")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}

	//address_idの存在確認＋所有チェック
	addr, err := u.addresses.FindByID(ctx, in.AddressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, repo.ErrNotFound) {
			return OrderOutput{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	//所有チェック（他人の住所なら403）
	if addr.UserID != userID {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	var out OrderOutput
	createdNew := false

	//注文処理はトランザクション
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			//既存注文を返す
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(existing, items)
			return nil
		}

		//ACTIVEカート取得
		cart, err := r.Carts().FindActiveByUserID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カート明細取得
		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart empty")
		}

		//在庫を確定時に再チェックして減らす
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		var subtotal int64 = 0

		for _, ci := range cartItems {
			//商品取得
			p, err := r.Products().FindByID(ctx, ci.ProductID)
			if err == repo.ErrNotFound || (err == nil && !p.IsActive) {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			//在庫減算（足りないなら false）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, ci.ProductID, ci.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			//確定時スナップショット（商品が消えても履歴は残る）
			now := time.Now()
			productID := ci.ProductID
			orderItems = append(orderItems, model.OrderItem{
				ProductID:            &productID,
				ProductNameSnapshot:  p.Name,
				ProductImageSnapshot: p.ImageURL,
				UnitPriceSnapshot:    ci.UnitPriceSnapshot,
				Quantity:             ci.Quantity,
				CreatedAt:            now,
			})

			subtotal += ci.UnitPriceSnapshot * ci.Quantity
		}

		//合計は作成時に確定（以後再計算しない）
		shipping := u.cfg.ShippingFee
		total := subtotal + shipping

		// 注文作成
		now := time.Now()
		order := model.Order{
			OrderNumber:    newOrderNumber(),
			UserID:         userID,
			AddressID:      in.AddressID,
			OrderStatus:    model.OrderStatusProcessing,
			PaymentStatus:  model.PaymentStatusPending,
			Subtotal:       subtotal,
			Shipping:       shipping,
			Total:          total,
			IdempotencyKey: key,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		orderID, err := r.Orders().Create(ctx, order)
		if err != nil {
			//競合（同時で同じキーが入った等）はもう一回検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err2 == nil && found2 {
				items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
				if err3 != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				out = toOrderOutput(ex2, items2)
				return nil
			}
			return NewHTTPError(http.StatusBadRequest, "idempotency conflict")
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//カートをCHECKED_OUTにして、明細をクリア（再注文防止）
		if err := r.Carts().UpdateStatus(ctx, cart.ID, model.CartStatusCheckedOut); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		order.ID = orderID
		out = toOrderOutput(order, orderItems)
		createdNew = true
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//確認メールは投げっぱなし（失敗しても注文は成功）
	if createdNew {
		u.sendConfirmationMail(userID, out)
	}

	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	//ページングはまず固定で取る
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, 1, 50)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 注文確認メール。リクエストのcontextに縛られないよう別contextで送る。
func (u *OrderUsecase) sendConfirmationMail(userID int64, out OrderOutput) {
	if u.mailer == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := u.users.FindByID(ctx, userID)
		if err != nil || user == nil {
			if u.log != nil {
				u.log.Warn("order mail: user lookup failed", "user_id", userID, "error", err)
			}
			return
		}

		subject := fmt.Sprintf("ご注文ありがとうございます（%s）", out.OrderNumber)
		body := fmt.Sprintf("注文番号: %s\n合計金額: %d円\n", out.OrderNumber, out.Total)

		if err := u.mailer.Send(ctx, user.Email, subject, body); err != nil {
			if u.log != nil {
				u.log.Warn("order mail: send failed", "order_number", out.OrderNumber, "error", err)
			}
		}
	}()
}

func newOrderNumber() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:13])
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			ImageURL:  it.ProductImageSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		OrderStatus:   string(o.OrderStatus),
		PaymentStatus: string(o.PaymentStatus),
		Subtotal:      o.Subtotal,
		Shipping:      o.Shipping,
		Total:         o.Total,
		CreatedAt:     o.CreatedAt,
		Items:         outItems,
	}
}
