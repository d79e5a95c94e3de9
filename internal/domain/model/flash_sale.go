package model

import "time"

// 期間限定セール。
// IsActiveは日付範囲とは独立したフラグで、期限切れの自動無効化は行わない。
type FlashSale struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	DiscountPercent int64     `gorm:"not null" json:"discount_percent"`
	StartsAt        time.Time `gorm:"not null" json:"starts_at"`
	EndsAt          time.Time `gorm:"not null" json:"ends_at"`
	IsActive        bool      `gorm:"not null;default:false;index" json:"is_active"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// セール対象商品
type FlashSaleProduct struct {
	ID          int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	FlashSaleID int64 `gorm:"not null;index;uniqueIndex:ux_sale_product" json:"flash_sale_id"`
	ProductID   int64 `gorm:"not null;index;uniqueIndex:ux_sale_product" json:"product_id"`
}
