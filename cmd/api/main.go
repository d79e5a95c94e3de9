package main

import (
	"time"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	"app/internal/infra/googleauth"
	"app/internal/infra/imagehost"
	"app/internal/infra/mail"
	infraRepo "app/internal/infra/repository"
	"app/internal/infra/session"
	"app/internal/logger"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
)

func main() {
	//.envは無くても良い（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.GoEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatal("db connect failed", "error", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Address{},
		&model.PaymentOption{},
		&model.Category{},
		&model.Brand{},
		&model.Product{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Wishlist{},
		&model.WishlistItem{},
		&model.FlashSale{},
		&model.FlashSaleProduct{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		log.Fatal("db migrate failed", "error", err)
	}

	//ゲストカート（Redis）
	guestCarts, err := session.NewRedisGuestCartStore(cfg.RedisAddr, 14*24*time.Hour)
	if err != nil {
		log.Fatal("redis connect failed", "error", err)
	}

	//メール（未設定ならnilのまま＝送信スキップ）
	var mailer mail.Mailer
	if cfg.SendGridAPIKey != "" {
		mailer, err = mail.NewSendGridMailer(mail.Config{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		})
		if err != nil {
			log.Fatal("sendgrid init failed", "error", err)
		}
	} else {
		log.Warn("sendgrid not configured, order mail disabled")
	}

	//画像ホスト（未設定ならnil＝画像アップロード不可）
	var uploader imagehost.Uploader
	if cfg.ImageHostBaseURL != "" {
		uploader, err = imagehost.NewHTTPUploader(imagehost.Config{
			BaseURL: cfg.ImageHostBaseURL,
			APIKey:  cfg.ImageHostAPIKey,
		})
		if err != nil {
			log.Fatal("image host init failed", "error", err)
		}
	} else {
		log.Warn("image host not configured, product image upload disabled")
	}

	//Googleログイン（未設定ならnil＝無効）
	var google usecase.GoogleVerifier
	if cfg.GoogleClientID != "" {
		google, err = googleauth.NewClient(cfg.GoogleClientID)
		if err != nil {
			log.Fatal("google auth init failed", "error", err)
		}
	} else {
		log.Warn("google login not configured")
	}

	//repository
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	paymentOptionRepo := infraRepo.NewPaymentOptionGormRepository(gormDB)
	categoryRepo := infraRepo.NewCategoryGormRepository(gormDB)
	brandRepo := infraRepo.NewBrandGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	wishlistRepo := infraRepo.NewWishlistGormRepository(gormDB)
	flashSaleRepo := infraRepo.NewFlashSaleGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//usecase
	cartUC := usecase.NewCartUsecase(txManager, guestCarts)
	authUC := usecase.NewAuthUsecase(cfg, userRepo, rtRepo, validator.NewAuthValidator(userRepo), google, cartUC)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo, uploader)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo)
	brandUC := usecase.NewBrandUsecase(brandRepo)
	orderUC := usecase.NewOrderUsecase(cfg, txManager, addressRepo, userRepo, mailer, log)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, auditRepo)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	paymentOptionUC := usecase.NewPaymentOptionUsecase(paymentOptionRepo, userRepo)
	wishlistUC := usecase.NewWishlistUsecase(wishlistRepo, productRepo)
	flashSaleUC := usecase.NewFlashSaleUsecase(flashSaleRepo, productRepo)
	paymentUC := usecase.NewPaymentUsecase(orderRepo)

	//handler
	handlers := server.Handlers{
		Auth:          handler.NewAuthHandler(cfg, authUC),
		Product:       handler.NewProductHandler(productUC),
		AdminProduct:  handler.NewAdminProductHandler(productUC),
		Category:      handler.NewCategoryHandler(categoryUC),
		Brand:         handler.NewBrandHandler(brandUC),
		Cart:          handler.NewCartHandler(cartUC),
		GuestCart:     handler.NewGuestCartHandler(cartUC),
		Order:         handler.NewOrderHandler(orderUC),
		AdminOrder:    handler.NewAdminOrderHandler(adminOrderUC),
		AdminUser:     handler.NewAdminUserHandler(cfg, userRepo, adminUserUC, authUC),
		Address:       handler.NewAddressHandler(addressUC),
		PaymentOption: handler.NewPaymentOptionHandler(paymentOptionUC),
		Wishlist:      handler.NewWishlistHandler(wishlistUC),
		FlashSale:     handler.NewFlashSaleHandler(flashSaleUC),
		Payment:       handler.NewPaymentHandler(paymentUC),
	}

	e := server.New(log)
	server.RegisterRoutes(e, cfg, userRepo, handlers)

	log.Info("server starting", "port", cfg.Port)
	if err := server.Start(e, ":"+cfg.Port); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}
