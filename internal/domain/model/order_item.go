package model

import "time"

// 注文明細（確定時スナップショット）。
// 商品が後から削除されても履歴が残るよう、ProductIDはNULL可で
// 名前・価格・画像は非正規化して保存する。
type OrderItem struct {
	ID                   int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID              int64     `gorm:"not null;index" json:"order_id"`
	ProductID            *int64    `gorm:"index" json:"product_id"`
	ProductNameSnapshot  string    `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	ProductImageSnapshot string    `gorm:"type:varchar(1024)" json:"product_image_snapshot"`
	UnitPriceSnapshot    int64     `gorm:"not null" json:"unit_price_snapshot"`
	Quantity             int64     `gorm:"not null" json:"quantity"`
	CreatedAt            time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
