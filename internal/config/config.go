package config

import (
	"fmt"
	"os"
	"strconv"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5432）

	JWTSecret string // JWT署名シークレット

	RedisAddr string // ゲストカート保存先

	//決済コールバック用の共有キー
	PaymentWebhookKey string

	//注文の送料（固定額）
	ShippingFee int64

	//SendGrid
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	//画像ホスティング
	ImageHostBaseURL string
	ImageHostAPIKey  string

	//Googleログインで許可するaudience（client id）
	GoogleClientID string

	GoEnv string // dev/prod
}

// Loadは環境変数から設定を組み立てる
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	shippingFee := int64(500)
	if v := os.Getenv("SHIPPING_FEE"); v != "" {
		fee, err := strconv.ParseInt(v, 10, 64)
		if err != nil || fee < 0 {
			return Config{}, fmt.Errorf("SHIPPING_FEE must be a non-negative number")
		}
		shippingFee = fee
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr: os.Getenv("REDIS_ADDR"),

		PaymentWebhookKey: os.Getenv("PAYMENT_WEBHOOK_KEY"),

		ShippingFee: shippingFee,

		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail: os.Getenv("SENDGRID_FROM_EMAIL"),
		SendGridFromName:  os.Getenv("SENDGRID_FROM_NAME"),

		ImageHostBaseURL: os.Getenv("IMAGE_HOST_BASE_URL"),
		ImageHostAPIKey:  os.Getenv("IMAGE_HOST_API_KEY"),

		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),

		GoEnv: os.Getenv("GO_ENV"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.RedisAddr == "" {
		return Config{}, fmt.Errorf("REDIS_ADDR is required")
	}
	if cfg.PaymentWebhookKey == "" {
		return Config{}, fmt.Errorf("PAYMENT_WEBHOOK_KEY is required")
	}
	if cfg.GoEnv == "" {
		return Config{}, fmt.Errorf("GO_ENV is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}
