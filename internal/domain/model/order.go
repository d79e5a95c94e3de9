package model

import "time"

// 保存される文字列はそのまま外部契約なので変更しない。
type OrderStatus string

const (
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"
)

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusCancelled, OrderStatusReturned:
		return OrderStatus(s), true
	default:
		return "", false
	}
}

// delivered / cancelled / returned からは遷移できない
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return true
	default:
		return false
	}
}

// 注文ステータスの遷移表。
// processing -> shipped / cancelled / returned
// shipped    -> delivered / returned
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusProcessing:
		return next == OrderStatusShipped || next == OrderStatusCancelled || next == OrderStatusReturned
	case OrderStatusShipped:
		return next == OrderStatusDelivered || next == OrderStatusReturned
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed:
		return PaymentStatus(s), true
	default:
		return "", false
	}
}

// 注文。作成後に明細や金額が変わることは無い（削除もしない）。
// Totalは作成時に Subtotal + Shipping で確定し、以後再計算しない。
type Order struct {
	ID             int64         `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber    string        `gorm:"type:varchar(40);not null;uniqueIndex" json:"order_number"`
	UserID         int64         `gorm:"not null;index" json:"user_id"`
	AddressID      int64         `gorm:"not null" json:"address_id"`
	OrderStatus    OrderStatus   `gorm:"type:varchar(20);not null;index;column:order_status" json:"order_status"`
	PaymentStatus  PaymentStatus `gorm:"type:varchar(20);not null;index;column:payment_status" json:"payment_status"`
	Subtotal       int64         `gorm:"not null" json:"subtotal"`
	Shipping       int64         `gorm:"not null" json:"shipping"`
	Total          int64         `gorm:"not null" json:"total"`
	IdempotencyKey string        `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	CreatedAt      time.Time     `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
