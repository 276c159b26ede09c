package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/northmart/backend-go/handlers"
	customMiddleware "github.com/northmart/backend-go/middleware"
)

// Handlers bundles everything SetupRoutes wires onto the router.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Products *handlers.ProductHandler
	Cart     *handlers.CartHandler
	Orders   *handlers.OrderHandler
	Payments *handlers.PaymentHandler
}

func SetupRoutes(e *echo.Echo, h Handlers, jwtSecret string) {
	auth := customMiddleware.Auth(jwtSecret)
	admin := customMiddleware.RequireAdmin()

	// Public routes
	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)

	e.GET("/products", h.Products.GetProducts)
	e.GET("/products/featured", h.Products.GetFeaturedProducts)
	e.GET("/products/:id", h.Products.GetProduct)

	// The webhook authenticates via the provider signature, not a token.
	e.POST("/payments/webhook", h.Payments.Webhook)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// User routes
	e.GET("/users/me", h.Auth.Me, auth)

	// Product routes (reviews require a user; mutations require admin)
	e.POST("/products/:id/reviews", h.Products.AddReview, auth)
	e.POST("/products", h.Products.CreateProduct, auth, admin)
	e.PUT("/products/:id", h.Products.UpdateProduct, auth, admin)
	e.DELETE("/products/:id", h.Products.DeleteProduct, auth, admin)
	e.POST("/products/:id/stock", h.Products.AdjustStock, auth, admin)

	// Cart routes
	cart := e.Group("/cart", auth)
	cart.GET("", h.Cart.GetCart)
	cart.POST("", h.Cart.AddToCart)
	cart.POST("/sync", h.Cart.SyncCartPrices)
	cart.PUT("/:itemId", h.Cart.UpdateCartItem)
	cart.DELETE("/:itemId", h.Cart.RemoveFromCart)
	cart.DELETE("", h.Cart.ClearCart)

	// Order routes
	orders := e.Group("/orders", auth)
	orders.POST("", h.Orders.CreateOrder)
	orders.GET("", h.Orders.GetUserOrders)
	orders.GET("/admin/all", h.Orders.GetAllOrders, admin)
	orders.GET("/:id", h.Orders.GetOrder)
	orders.PUT("/:id/cancel", h.Orders.CancelOrder)
	orders.PUT("/:id/status", h.Orders.UpdateOrderStatus, admin)

	// Payment routes
	payments := e.Group("/payments", auth)
	payments.POST("/intent", h.Payments.CreatePaymentIntent)
	payments.POST("/confirm", h.Payments.ConfirmPayment)
	payments.POST("/refund", h.Payments.ProcessRefund, admin)
	payments.GET("/order/:orderId", h.Payments.GetPaymentByOrder)
}
