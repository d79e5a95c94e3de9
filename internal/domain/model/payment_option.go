package model

import "time"

// 支払い方法（カードなど）。カード番号そのものは持たず下4桁だけ保存する。
type PaymentOption struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//表示用ラベル（「メインカード」など）
	Label string `gorm:"type:varchar(255);not null" json:"label"`

	//名義人
	Holder string `gorm:"type:varchar(255);not null" json:"holder"`

	//ブランド（visa / mastercard など）
	Brand string `gorm:"type:varchar(50)" json:"brand"`

	//下4桁
	Last4 string `gorm:"type:varchar(4);not null" json:"last4"`

	ExpMonth int `gorm:"not null" json:"exp_month"`
	ExpYear  int `gorm:"not null" json:"exp_year"`

	//デフォルト支払い方法か（ユーザー内で最大1件）
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
