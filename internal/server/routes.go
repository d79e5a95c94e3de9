package server

import (
	"app/internal/config"
	"app/internal/handler"
	"app/internal/middleware"
	"app/internal/repository"

	"github.com/labstack/echo/v4"
)

// ルーティングをまとめて登録するための束。
type Handlers struct {
	Auth          *handler.AuthHandler
	Product       *handler.ProductHandler
	AdminProduct  *handler.AdminProductHandler
	Category      *handler.CategoryHandler
	Brand         *handler.BrandHandler
	Cart          *handler.CartHandler
	GuestCart     *handler.GuestCartHandler
	Order         *handler.OrderHandler
	AdminOrder    *handler.AdminOrderHandler
	AdminUser     *handler.AdminUserHandler
	Address       *handler.AddressHandler
	PaymentOption *handler.PaymentOptionHandler
	Wishlist      *handler.WishlistHandler
	FlashSale     *handler.FlashSaleHandler
	Payment       *handler.PaymentHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	//認証
	h.Auth.RegisterRoutes(e, userRepo)

	//公開カタログ
	h.Product.RegisterRoutes(e)
	h.Category.RegisterRoutes(e, cfg, userRepo)
	h.Brand.RegisterRoutes(e, cfg, userRepo)
	h.FlashSale.RegisterRoutes(e, cfg, userRepo)

	//カート・注文・お気に入り
	h.Cart.RegisterRoutes(e, cfg, userRepo)
	h.GuestCart.RegisterRoutes(e)
	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.Wishlist.RegisterRoutes(e, cfg, userRepo)

	// /me 配下（住所・支払い方法）
	me := e.Group("/me")
	me.Use(middleware.AuthJWT(cfg))
	me.Use(middleware.TokenVersionGuard(userRepo))
	h.Address.RegisterRoutes(me)
	h.PaymentOption.RegisterRoutes(me)

	//管理画面
	h.AdminProduct.RegisterRoutes(e, cfg, userRepo)
	h.AdminOrder.RegisterRoutes(e, cfg, userRepo)
	h.AdminUser.RegisterRoutes(e)

	//決済コールバック
	h.Payment.RegisterRoutes(e, cfg)
}
