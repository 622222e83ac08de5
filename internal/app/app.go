package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bundl/bundl/internal/cache/ordercache"
	"github.com/bundl/bundl/internal/config"
	"github.com/bundl/bundl/internal/domain"
	"github.com/bundl/bundl/internal/engine/ledgerengine"
	"github.com/bundl/bundl/internal/engine/orderengine"
	"github.com/bundl/bundl/internal/events"
	"github.com/bundl/bundl/internal/expiry"
	"github.com/bundl/bundl/internal/handlers"
	opshandlers "github.com/bundl/bundl/internal/handlers/ops"
	ordershandlers "github.com/bundl/bundl/internal/handlers/orders"
	"github.com/bundl/bundl/internal/notify"
	"github.com/bundl/bundl/internal/pg"
	"github.com/bundl/bundl/internal/platform"
	"github.com/bundl/bundl/internal/repo"
	"github.com/bundl/bundl/pkg/auth"
	"github.com/bundl/bundl/pkg/clients"
	"github.com/bundl/bundl/pkg/logger"
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg    *config.Config
	api    *handlers.Handlers
	repo   *repo.Repositories
	engine *orderengine.Engine
	notify *notify.Dispatcher
	watch  *expiry.Watcher

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	if err := logger.InitLogger(cfg); err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)
	conn := pg.New(pool)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		zap.L().Error("redis ping failed", zap.Error(err))
		return fmt.Errorf("can't reach redis: %w", err)
	}

	a.cfg = cfg
	a.repo = repo.New(conn, txManager)

	cache := ordercache.New(rdb, cfg.CachePrefix)
	ledger := ledgerengine.New(a.repo.LedgerRepo)

	engineCfg := orderengine.Config{
		CreditCostPerAction:   cfg.CreditCostPerAction,
		DefaultOrderExpiry:    time.Duration(cfg.DefaultOrderExpirySec) * time.Second,
		DefaultSearchRadiusKm: cfg.DefaultSearchRadiusKm,
		OrderMinAmount:        cfg.OrderMinAmount,
		PledgeMinAmount:       cfg.PledgeMinAmount,
	}

	httpClient := clients.NewHTTPClient()
	pushSender := notify.NewHTTPPushSender(httpClient, cfg.PushGatewayAddress)
	dispatcher := notify.New(a.repo.UserRepo, pushSender)
	a.notify = dispatcher

	a.engine = orderengine.New(ledger, a.repo.OrderRepo, cache, a.repo.UserRepo, eventSink{dispatcher}, engineCfg)

	expiryChannel := fmt.Sprintf("__keyevent@%d__:expired", cfg.RedisDB)
	a.watch = expiry.New(rdb, cache, expiryChannel, a.engine.HandleExpiry)

	otp := platform.NewInMemoryOTPProvider()
	tokens := platform.NewJWTTokenIssuer(&auth.JWTService{}, rdb, cfg.CachePrefix)
	dashboard := platform.NewOpsDashboard(a.repo.OrderRepo)
	webhook := platform.NewCreditTopUpHandler(ledger, a.repo.IAPTopupRepo)

	a.api = handlers.New(handlers.Dependencies{
		OTP:            otp,
		Users:          a.repo.UserRepo,
		LedgerSeeder:   a.repo.LedgerRepo,
		Tokens:         tokens,
		DefaultCredits: cfg.DefaultUserCredits,
		Engine:         engineAdapter{a.engine},
		Dashboard:      dashboard,
		Webhook:        webhook,
	})

	if err := a.engine.Reconcile(ctx); err != nil {
		zap.L().Error("boot reconciliation failed", zap.Error(err))
	}

	if err := a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	dispatcher.Start(ctx)
	a.startExpiryWatcher(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

// eventSink adapts *notify.Dispatcher to orderengine.EventSink.
type eventSink struct{ d *notify.Dispatcher }

func (s eventSink) Post(evt events.Event) {
	s.d.Post(evt)
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)
	server := http.Server{
		Addr:    a.cfg.Address,
		Handler: router,
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startExpiryWatcher(ctx context.Context) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.watch.Start(ctx)
	}()
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}

// engineAdapter satisfies ordershandlers.Engine; kept as a thin shim so
// the HTTP layer never imports orderengine's concrete struct directly.
type engineAdapter struct {
	e *orderengine.Engine
}

func (a engineAdapter) CreateOrder(ctx context.Context, userID string, in orderengine.CreateOrderInput) (*domain.Order, error) {
	return a.e.CreateOrder(ctx, userID, in)
}

func (a engineAdapter) PledgeToOrder(ctx context.Context, userID, orderID string, amount decimal.Decimal) (*orderengine.PledgeResult, error) {
	return a.e.PledgeToOrder(ctx, userID, orderID, amount)
}

func (a engineAdapter) GetActiveOrdersNear(ctx context.Context, lat, lon, radiusKm float64) ([]*domain.Order, error) {
	return a.e.GetActiveOrdersNear(ctx, lat, lon, radiusKm)
}

func (a engineAdapter) GetOrderStatus(ctx context.Context, userID, orderID string) (*orderengine.OrderStatusView, error) {
	return a.e.GetOrderStatus(ctx, userID, orderID)
}

var _ ordershandlers.Engine = engineAdapter{}
var _ opshandlers.Dashboard = (*platform.OpsDashboard)(nil)
