// Package app wires the store, the event bus, the domain services and the
// HTTP router from a Config.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"restaurant-pos-backend/config"
	"restaurant-pos-backend/internal/api"
	"restaurant-pos-backend/internal/customer"
	"restaurant-pos-backend/internal/db"
	"restaurant-pos-backend/internal/events"
	"restaurant-pos-backend/internal/floorplan"
	"restaurant-pos-backend/internal/menu"
	"restaurant-pos-backend/internal/mw"
	"restaurant-pos-backend/internal/payment"
	"restaurant-pos-backend/internal/report"
	"restaurant-pos-backend/internal/store"
	"restaurant-pos-backend/internal/tables"
	"restaurant-pos-backend/internal/transfer"
)

// App is a fully wired backend.
type App struct {
	Config   *config.Config
	Store    store.Store
	Bus      *events.Bus
	Services api.Services
	Router   *gin.Engine
	// Limiter throttles /api per client IP; nil when rate limiting is off.
	Limiter *mw.IPRateLimiter

	log logrus.FieldLogger
}

type options struct {
	now func() time.Time
}

// Option configures New.
type Option func(*options)

// WithClock makes every service read time from now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New builds the services over s. Writes through s are announced on the bus
// as StoreChanged events.
func New(cfg *config.Config, s store.Store, log logrus.FieldLogger, opts ...Option) *App {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, opt := range opts {
		opt(&o)
	}

	bus := events.NewBus()
	if cfg.Store.CacheTTL > 0 {
		s = store.NewCachedStore(s, cfg.Store.CacheTTL)
	}
	s = store.NewObservedStore(s, bus)
	loc := cfg.Business.Location()

	registry := floorplan.NewRegistry(s, bus, log, floorplan.WithClock(o.now))
	transfers := transfer.NewLog(s, bus, log, transfer.WithClock(o.now))
	tableSvc := tables.NewService(s, registry, transfers, bus, log, tables.WithClock(o.now))
	ledger := customer.NewLedger(s, bus, log, customer.WithClock(o.now))
	menuSvc := menu.NewService(s, bus, log, menu.WithClock(o.now))
	history := payment.NewHistory(s)
	checkout := payment.NewService(tableSvc, ledger, history, bus, log,
		payment.WithClock(o.now),
		payment.WithTaxRate(cfg.Business.TaxRate),
		payment.WithLocation(loc),
	)
	reports := report.NewAggregator(history, transfers, registry,
		report.WithCostRatio(cfg.Business.CostRatio),
		report.WithLocation(loc),
	)

	services := api.Services{
		Tables:    tableSvc,
		Floorplan: registry,
		Transfers: transfers,
		Customers: ledger,
		Menu:      menuSvc,
		Payments:  checkout,
		History:   history,
		Reports:   reports,
	}
	var limiter *mw.IPRateLimiter
	if cfg.Server.RateLimitPerSec > 0 {
		limiter = mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)
	}
	handler := api.NewHandler(services, cfg.Business.DefaultActor, loc, log)
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		CacheTTL:        cfg.Server.CacheTTL,
		CORSOrigin:      cfg.Server.CORSOrigin,
		Limiter:         limiter,
		Bus:             bus,
		Log:             log,
	})

	return &App{
		Config:   cfg,
		Store:    s,
		Bus:      bus,
		Services: services,
		Router:   router,
		Limiter:  limiter,
		log:      log.WithField("component", "app"),
	}
}

// Seed writes the default floors, table categories and menu when absent and,
// with demo seeding enabled, the sample tables and payment history.
func (a *App) Seed(ctx context.Context) error {
	actor := a.Config.Business.DefaultActor
	if a.Config.Seed.Defaults {
		if err := a.Services.Floorplan.EnsureDefaults(ctx, actor); err != nil {
			return fmt.Errorf("seed floor plan: %w", err)
		}
		if err := a.Services.Menu.EnsureDefaults(ctx, actor); err != nil {
			return fmt.Errorf("seed menu: %w", err)
		}
	}
	if a.Config.Seed.Demo {
		if err := a.Services.Tables.EnsureDemoTables(ctx, actor); err != nil {
			return fmt.Errorf("seed demo tables: %w", err)
		}
		seeded, err := a.Services.History.EnsureDemo(ctx)
		if err != nil {
			return fmt.Errorf("seed demo payments: %w", err)
		}
		if seeded {
			a.log.Info("demo payment history written")
		}
		return nil
	}

	n, err := a.Services.Tables.SyncConfigs(ctx, actor)
	if err != nil {
		return fmt.Errorf("sync table configs: %w", err)
	}
	if n > 0 {
		a.log.WithField("created", n).Info("table configs synced")
	}
	return nil
}

// OpenStore connects the configured key-value backend. The returned func
// releases it.
func OpenStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (store.Store, func() error, error) {
	switch cfg.Store.Driver {
	case "memory":
		return store.NewMemoryStore(), func() error { return nil }, nil
	case "redis":
		rdb, err := store.DialRedis(ctx, cfg.Store.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRedisStore(rdb, cfg.Store.KeyPrefix), rdb.Close, nil
	case "sql", "":
		gormDB, err := db.Init(&cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gormDB.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		return store.NewGormStore(gormDB), sqlDB.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
