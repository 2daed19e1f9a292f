package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"restaurant-pos-backend/internal/events"
	"restaurant-pos-backend/internal/mw"
	"restaurant-pos-backend/internal/report"
)

// RouterConfig tunes the middleware in front of the handlers.
type RouterConfig struct {
	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
	CORSOrigin      string
	// Limiter, when set, is used instead of a limiter built from
	// RateLimitPerSec and RateLimitBurst.
	Limiter *mw.IPRateLimiter
	// Bus flushes cached report responses on every domain event. Without it
	// reports are not cached.
	Bus *events.Bus
	Log logrus.FieldLogger
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.Logger(cfg.Log), mw.CORS(cfg.CORSOrigin))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	switch {
	case cfg.Limiter != nil:
		api.Use(cfg.Limiter.Middleware())
	case cfg.RateLimitPerSec > 0:
		api.Use(mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	}

	{
		api.GET("/tables", h.ListTables)
		api.POST("/tables", h.CreateTable)
		api.POST("/tables/transfer", h.TransferTable)
		api.POST("/tables/sync-configs", h.SyncTableConfigs)
		api.GET("/tables/:id", h.GetTable)
		api.PUT("/tables/:id", h.UpdateTable)
		api.DELETE("/tables/:id", h.DeleteTable)
		api.GET("/tables/:id/transitions", h.GetTransitions)
		api.PUT("/tables/:id/status", h.ChangeStatus)
		api.POST("/tables/:id/booking", h.BookTable)
		api.PUT("/tables/:id/order", h.ReplaceOrder)
		api.POST("/tables/:id/order/items", h.AddOrderItem)
		api.GET("/tables/:id/transfer-targets", h.GetTransferTargets)
		api.GET("/tables/:id/config", h.GetTableConfig)
		api.GET("/tables/:id/bill", h.QuoteTable)
		api.POST("/tables/:id/checkout", h.Checkout)

		api.GET("/floors", h.ListFloors)
		api.POST("/floors", h.CreateFloor)
		api.GET("/floors/:id", h.GetFloor)
		api.PUT("/floors/:id", h.UpdateFloor)
		api.DELETE("/floors/:id", h.DeleteFloor)

		api.GET("/table-categories", h.ListTableCategories)
		api.POST("/table-categories", h.CreateTableCategory)
		api.GET("/table-categories/:id", h.GetTableCategory)
		api.PUT("/table-categories/:id", h.UpdateTableCategory)
		api.DELETE("/table-categories/:id", h.DeleteTableCategory)

		api.GET("/table-configs", h.ListTableConfigs)
		api.POST("/table-configs", h.CreateTableConfig)
		api.PUT("/table-configs/:id", h.UpdateTableConfig)
		api.DELETE("/table-configs/:id", h.DeleteTableConfig)

		api.GET("/table-history", h.GetTableHistory)

		api.GET("/transfers", h.ListTransfers)
		api.POST("/transfers/prune", h.PruneTransfers)
		api.GET("/transfers/:id", h.GetTransfer)
		api.DELETE("/transfers/:id", h.DeleteTransfer)

		api.GET("/customers", h.ListCustomers)
		api.POST("/customers", h.CreateCustomer)
		api.GET("/customers/statistics", h.GetCustomerStatistics)
		api.GET("/customers/export", h.ExportCustomers)
		api.POST("/customers/import", h.ImportCustomers)
		api.POST("/customers/migrate", h.MigrateBookings)
		api.GET("/customers/by-phone/:phone", h.GetCustomerByPhone)
		api.GET("/customers/:id", h.GetCustomer)
		api.PUT("/customers/:id", h.UpdateCustomer)
		api.GET("/customers/:id/orders", h.GetCustomerOrders)
		api.POST("/customer-orders", h.CreateCustomerOrder)
		api.GET("/customer-orders/:id", h.GetCustomerOrder)

		api.GET("/menu", h.ListMenu)
		api.POST("/menu", h.CreateMenuItem)
		api.POST("/menu/reset", h.ResetMenu)
		api.GET("/menu/:id", h.GetMenuItem)
		api.PUT("/menu/:id", h.UpdateMenuItem)
		api.DELETE("/menu/:id", h.DeleteMenuItem)
		api.GET("/menu-categories", h.ListMenuCategories)
		api.POST("/menu-categories", h.CreateMenuCategory)
		api.PUT("/menu-categories/:id", h.UpdateMenuCategory)
		api.DELETE("/menu-categories/:id", h.DeleteMenuCategory)

		api.GET("/payments", h.ListPayments)
	}

	reports := api.Group("/reports")
	if cfg.Bus != nil && cfg.CacheTTL > 0 {
		cache := mw.NewResponseCache(cfg.CacheTTL)
		cache.FlushOn(cfg.Bus)
		reports.Use(cache.Middleware())
	}
	{
		reports.GET("/overview", reportHandler(h, (*report.Aggregator).Overview))
		reports.GET("/dishes", reportHandler(h, (*report.Aggregator).PopularDishes))
		reports.GET("/customers", reportHandler(h, (*report.Aggregator).Customers))
		reports.GET("/payment-methods", reportHandler(h, (*report.Aggregator).PaymentMethods))
		reports.GET("/revenue", reportHandler(h, (*report.Aggregator).RevenueByTime))
		reports.GET("/orders", reportHandler(h, (*report.Aggregator).Orders))
		reports.GET("/profit", reportHandler(h, (*report.Aggregator).Profit))
		reports.GET("/zones", reportHandler(h, (*report.Aggregator).Zones))
		reports.GET("/categories", reportHandler(h, (*report.Aggregator).Categories))
		reports.GET("/transfers", reportHandler(h, (*report.Aggregator).Transfers))
		reports.GET("/export", h.ExportReport)
	}

	return r
}
