package model

import "time"

// お気に入り。1ユーザーにつき1つ。
type Wishlist struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 同じ商品は1件まで（wishlist_id + product_id でユニーク）
type WishlistItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	WishlistID int64     `gorm:"not null;index;uniqueIndex:ux_wishlist_product" json:"wishlist_id"`
	ProductID  int64     `gorm:"not null;index;uniqueIndex:ux_wishlist_product" json:"product_id"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
