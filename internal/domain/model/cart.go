package model

import "time"

type CartStatus string

const (
	CartStatusActive     CartStatus = "ACTIVE"
	CartStatusCheckedOut CartStatus = "CHECKED_OUT"
	CartStatusAbandoned  CartStatus = "ABANDONED"
)

// 1ユーザーにつきACTIVEは1つ。
// Totalは明細から再計算した値を常に同じトランザクション内で保存する
// （明細と独立に更新される経路は無い）。
type Cart struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64      `gorm:"not null;index" json:"user_id"`
	Status    CartStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Total     int64      `gorm:"not null;default:0" json:"total"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
