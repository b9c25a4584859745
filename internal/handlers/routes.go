package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grocery-backend/internal/middleware"
	"grocery-backend/internal/notify"
	"grocery-backend/internal/service"
)

type Deps struct {
	Auth          *service.AuthService
	Addresses     *service.AddressService
	Carts         *service.CartService
	Orders        *service.OrderService
	Notifications *service.NotificationService
	Catalog       *service.CatalogService
	Hub           *notify.Hub
	Images        *ImageStore
	Ping          Pinger

	JWTSecret      string
	WebhookSecret  string
	PaymentSandbox bool
	CORSOrigins    []string
	PublicDir      string
	Log            *zap.Logger
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// NewRouter mounts every route on a fresh engine.
func NewRouter(d Deps) *gin.Engine {
	log := d.Log.Named("http")

	r := gin.New()
	r.Use(middleware.RequestLogger(d.Log), gin.Recovery(), cors.New(corsConfig(d.CORSOrigins)))
	r.MaxMultipartMemory = maxMultipartMemory
	if d.PublicDir != "" {
		r.Static("/public", d.PublicDir)
	}

	userAuth := middleware.UserAuth(d.JWTSecret, d.Log)
	adminAuth := middleware.AdminAuth(d.JWTSecret, d.Log)

	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/healthz") })
	r.GET("/healthz", Healthz(d.Ping, log))

	auth := r.Group("/auth")
	{
		auth.POST("/register", Register(d.Auth, log))
		auth.POST("/login", Login(d.Auth, log))
		auth.POST("/refresh", Refresh(d.Auth, log))
		auth.POST("/logout", Logout(d.Auth, log))
		auth.GET("/me", userAuth, GetMe(d.Auth, log))
	}
	r.POST("/admin/login", AdminLogin(d.Auth, log))

	r.GET("/products", GetProducts(d.Catalog, d.Ping, log))
	r.GET("/products/campaign", GetCampaignProducts(d.Catalog, log))
	r.GET("/categories", GetCategories(d.Catalog, d.Ping, log))

	r.POST("/payment/webhook",
		middleware.PaymentSignature(d.WebhookSecret, d.PaymentSandbox, d.Log),
		PaymentWebhook(d.Orders, log))

	order := r.Group("/order")
	order.GET("/getOrderStatistics", adminAuth, GetOrderStatistics(d.Orders, log))
	order.PUT("/updateOrderStatus/:id", adminAuth, UpdateOrderStatus(d.Orders, log))
	order.PUT("/confirmCashPayment/:id", adminAuth, ConfirmCashPayment(d.Orders, log))
	order.Use(userAuth)
	{
		order.POST("/placeOrder", PlaceOrder(d.Orders, log))
		order.GET("/getOrderDetails/:id", GetOrderDetails(d.Orders, log))
		order.GET("/getMyOrders", GetMyOrders(d.Orders, log))
		order.PUT("/cancelOrder/:id", CancelOrder(d.Orders, log))
	}

	address := r.Group("/address", userAuth)
	{
		address.POST("/createAddress", CreateAddress(d.Addresses, log))
		address.GET("/getAddresses", GetAddresses(d.Addresses, log))
		address.PUT("/updateAddress/:id", UpdateAddress(d.Addresses, log))
		address.DELETE("/deleteAddress/:id", DeleteAddress(d.Addresses, log))
		address.PUT("/setDefault/:id", SetDefaultAddress(d.Addresses, log))
	}

	cart := r.Group("/cart", userAuth)
	{
		cart.GET("", GetCart(d.Carts, log))
		cart.POST("/add", AddToCart(d.Carts, log))
		cart.PUT("/setQuantity", SetCartQuantity(d.Carts, log))
		cart.DELETE("/remove/:productId", RemoveFromCart(d.Carts, log))
		cart.DELETE("/clear", ClearCart(d.Carts, log))
	}

	notification := r.Group("/notification", userAuth)
	{
		notification.GET("", ListNotifications(d.Notifications, log))
		notification.PUT("/markRead/:id", MarkNotificationRead(d.Notifications, log))
		notification.DELETE("/clearRead", ClearReadNotifications(d.Notifications, log))
		notification.GET("/ws", NotificationSocket(d.Hub, log))
	}

	admin := r.Group("/admin/api", adminAuth)
	{
		admin.GET("/me", GetMe(d.Auth, log))

		admin.GET("/products", GetAllProducts(d.Catalog, log))
		admin.POST("/products", CreateProduct(d.Catalog, d.Images, log))
		admin.PUT("/products/:id", UpdateProduct(d.Catalog, d.Images, log))
		admin.DELETE("/products/:id", DeleteProduct(d.Catalog, log))

		admin.GET("/categories", GetAllCategories(d.Catalog, log))
		admin.POST("/categories", CreateCategory(d.Catalog, log))
		admin.PUT("/categories/:id", UpdateCategory(d.Catalog, log))
		admin.DELETE("/categories/:id", DeleteCategory(d.Catalog, log))

		admin.GET("/orders", ListOrders(d.Orders, log))
		admin.GET("/orders/export", ExportOrders(d.Orders, log))
		admin.DELETE("/orders/:id", DeleteOrder(d.Orders, log))
		admin.GET("/order/getOrderStatistics", GetOrderStatistics(d.Orders, log))
		admin.PUT("/order/updateOrderStatus/:id", UpdateOrderStatus(d.Orders, log))
		admin.PUT("/order/confirmCashPayment/:id", ConfirmCashPayment(d.Orders, log))

		admin.GET("/notifications", ListNotifications(d.Notifications, log))
		admin.PUT("/notifications/:id/read", MarkNotificationRead(d.Notifications, log))
		admin.DELETE("/notifications/read", ClearReadNotifications(d.Notifications, log))
		admin.GET("/notifications/ws", NotificationSocket(d.Hub, log))
	}

	return r
}
