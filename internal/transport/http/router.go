package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/PANHAVORN22/Mini-mart/internal/handlers"
	"github.com/PANHAVORN22/Mini-mart/internal/handlers/admin"
	"github.com/PANHAVORN22/Mini-mart/internal/handlers/auth"
	"github.com/PANHAVORN22/Mini-mart/internal/handlers/beer"
	"github.com/PANHAVORN22/Mini-mart/internal/handlers/cart"
	"github.com/PANHAVORN22/Mini-mart/internal/handlers/order"
	"github.com/PANHAVORN22/Mini-mart/internal/handlers/subscription"
	"github.com/PANHAVORN22/Mini-mart/internal/jwtmiddleware"
	"github.com/PANHAVORN22/Mini-mart/internal/service/token"
)

type Deps struct {
	DB                  *gorm.DB
	JWTSecret           []byte
	AuthHandler         *auth.AuthHandler
	BeerHandler         *beer.BeerHandler
	CartHandler         *cart.CartHandler
	OrderHandler        *order.OrderHandler
	AdminHandler        *admin.AdminHandler
	SubscriptionHandler *subscription.SubscriptionHandler
	SearchHandler       *handlers.SearchHandler
	TokenService        *token.TokenService
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)
	v1.POST("/logout", d.AuthHandler.LogOut)
	v1.GET("/search", d.SearchHandler.Search)

	beers := v1.Group("/beers")
	beers.GET("", d.BeerHandler.GetBeers)
	beers.GET("/featured", d.BeerHandler.GetFeaturedBeers)
	beers.GET("/:id", d.BeerHandler.GetBeer)

	carts := v1.Group("/cart", d.TokenService.AutoRefreshMiddleware)
	carts.GET("", d.CartHandler.GetCart)
	carts.GET("/quote", d.CartHandler.GetQuote)
	carts.POST("", d.CartHandler.AddToCart)
	carts.PUT("/:beerID", d.CartHandler.SetQuantity)
	carts.DELETE("/:beerID", d.CartHandler.RemoveFromCart)
	carts.DELETE("", d.CartHandler.ClearCart)

	orders := v1.Group("/orders", d.TokenService.AutoRefreshMiddleware)
	orders.POST("", d.OrderHandler.Checkout)
	orders.GET("", d.OrderHandler.GetUserOrders)
	orders.GET("/:id", d.OrderHandler.GetOrder)

	subs := v1.Group("/subscription", d.TokenService.AutoRefreshMiddleware)
	subs.GET("", d.SubscriptionHandler.GetSubscription)
	subs.POST("", d.SubscriptionHandler.Subscribe)
	subs.DELETE("", d.SubscriptionHandler.Cancel)

	adm := v1.Group("/admin", d.TokenService.AutoRefreshMiddleware, d.TokenService.AdminOnlyMiddleware)
	adm.GET("/stats", d.AdminHandler.GetStats)
	adm.GET("/users", d.AdminHandler.ListUsers)
	adm.GET("/orders", d.AdminHandler.ListOrders)
	adm.POST("/beers", d.AdminHandler.CreateBeer)
	adm.PUT("/beers/:id", d.AdminHandler.UpdateBeer)
	adm.PATCH("/beers/:id/stock", d.AdminHandler.UpdateStockPrice)
	adm.DELETE("/beers/:id", d.AdminHandler.DeleteBeer)
	adm.POST("/beers/:id/image", d.AdminHandler.UploadBeerImage)
	adm.GET("/beers/export", d.AdminHandler.ExportBeers)
	adm.PATCH("/users/:id/premium", d.AdminHandler.ToggleUserPremium)
	adm.PATCH("/users/:id/role", d.AdminHandler.ChangeUserRole)
	adm.GET("/role-changes", d.AdminHandler.ListRoleChanges)

	// stateless JSON feed guarded by the access cookie alone
	feed := v1.Group("/admin/notifications", jwtmiddleware.CookieJWT(d.JWTSecret), jwtmiddleware.RequireRole("admin"))
	feed.GET("", d.AdminHandler.GetNotifications)
	feed.PATCH("/:id/read", d.AdminHandler.MarkNotificationRead)
}
