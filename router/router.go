package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/befoodie/pos-backend/controllers"
	"github.com/befoodie/pos-backend/middlewares"
	"github.com/befoodie/pos-backend/realtime"
	"github.com/befoodie/pos-backend/services"
	"github.com/befoodie/pos-backend/utils"
)

// SetupRouter wires services, controllers and the tenant gate onto the
// tenant-scoped route tree. The hub is an explicit instance passed in from
// main; nothing here reaches for a global.
func SetupRouter(db *gorm.DB, tokens *utils.TokenCodec, hub *realtime.Hub, devices *services.DeviceSessionService, checkMode string) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	tableSessionSvc := services.NewTableSessionService(db, hub)
	opSessionSvc := services.NewOperationalSessionService(db, hub)
	orderSvc := services.NewOrderService(db, hub, tableSessionSvc)

	gate := middlewares.NewTenantGate(db, tokens, devices, checkMode)

	authCtrl := controllers.NewAuthController(db, tokens, devices, opSessionSvc)
	orderCtrl := controllers.NewOrderController(orderSvc)
	sessionCtrl := controllers.NewSessionController(tableSessionSvc, opSessionSvc)
	adminCtrl := controllers.NewAdminController(db, opSessionSvc, hub)
	menuCtrl := controllers.NewMenuController(db, hub)
	wsCtrl := controllers.NewWSController(hub)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/r/:slug/api")
	api.Use(middlewares.NewRateLimiter(300, 60).RateLimit())
	api.Use(gate.ResolveTenant())

	// Public routes: login screens and guest devices. Guests place orders
	// without logging in; the acceptance gate inside the order service
	// decides whether the restaurant takes them.
	api.POST("/auth/login", middlewares.NewStrictRateLimiter(), authCtrl.Login)
	api.GET("/auth/status", gate.OptionalAuth(), authCtrl.Status)
	api.GET("/menu", menuCtrl.GetMenu)
	api.GET("/categories", menuCtrl.GetCategories)
	api.GET("/session-status", sessionCtrl.SessionStatus)
	api.POST("/orders", orderCtrl.CreateOrder)

	// Staff or owner.
	auth := api.Group("")
	auth.Use(gate.RequireRole(utils.RoleOwner, utils.RoleStaff))
	{
		auth.POST("/auth/logout", authCtrl.Logout)
		auth.POST("/auth/heartbeat", authCtrl.Heartbeat)

		auth.GET("/orders", orderCtrl.GetAllOrders)
		auth.PUT("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)

		auth.GET("/sessions", sessionCtrl.GetAllSessions)
		auth.PUT("/sessions/pay", sessionCtrl.PaySession)

		auth.GET("/ws", wsCtrl.Subscribe)
	}

	// Owner only.
	admin := api.Group("/admin")
	admin.Use(gate.RequireRole(utils.RoleOwner))
	{
		admin.POST("/start-day", adminCtrl.StartDay)
		admin.POST("/close-day", adminCtrl.CloseDay)
		admin.POST("/pause-orders", adminCtrl.PauseOrders)
		admin.PUT("/security", adminCtrl.UpdateSecurity)
		admin.GET("/history", adminCtrl.GetHistory)

		admin.POST("/products", menuCtrl.CreateProduct)
		admin.PUT("/products/:product_id", menuCtrl.UpdateProduct)
		admin.DELETE("/products/:product_id", menuCtrl.DeleteProduct)
		admin.POST("/products/:product_id/toggle", menuCtrl.ToggleProduct)
		admin.POST("/categories", menuCtrl.CreateCategory)
		admin.PUT("/categories", menuCtrl.RenameCategory)
		admin.DELETE("/categories", menuCtrl.DeleteCategory)
	}

	return r
}
