package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"grocery-backend/internal/config"
	"grocery-backend/internal/database"
	"grocery-backend/internal/handlers"
	"grocery-backend/internal/lock"
	"grocery-backend/internal/logging"
	"grocery-backend/internal/notify"
	"grocery-backend/internal/payment"
	"grocery-backend/internal/service"
	"grocery-backend/internal/store"
	"grocery-backend/internal/store/memstore"
	"grocery-backend/internal/store/mongostore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	stores, closeStores, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStores()

	locker, closeLocker, err := openLocker(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeLocker()

	gateway := payment.NewHostedGateway(payment.Config{
		APIURL:     cfg.Payment.APIURL,
		StoreID:    cfg.Payment.StoreID,
		AuthKey:    cfg.Payment.AuthKey,
		Currency:   cfg.Payment.Currency,
		Test:       cfg.PaymentSandbox(),
		SuccessURL: cfg.Payment.SuccessURL,
		FailureURL: cfg.Payment.FailureURL,
		CancelURL:  cfg.Payment.CancelURL,
		Timeout:    cfg.Payment.Timeout,
	}, log.Named("payment"))

	hub := notify.NewHub(log.Named("notify").Named("hub"), cfg.CORSOrigins)
	notifications := service.NewNotificationService(stores.Notifications, hub, log.Named("notify"))

	deps := handlers.Deps{
		Auth: service.NewAuthService(stores.Users, stores.RefreshTokens, service.AuthConfig{
			Secret:     cfg.JWTSecret,
			AccessTTL:  cfg.AccessTokenTTL,
			RefreshTTL: cfg.RefreshTokenTTL,
		}, log.Named("auth")),
		Addresses: service.NewAddressService(stores.Addresses, locker, log.Named("address")),
		Carts:     service.NewCartService(stores.Carts, stores.Products, log.Named("cart")),
		Orders: service.NewOrderService(service.OrderDeps{
			Orders:        stores.Orders,
			Carts:         stores.Carts,
			Products:      stores.Products,
			Addresses:     stores.Addresses,
			Users:         stores.Users,
			Gateway:       gateway,
			Notifications: notifications,
			Locker:        locker,
			Policy:        service.StatusPolicy(cfg.Order.StatusPolicy),
			Log:           log.Named("order"),
		}),
		Notifications:  notifications,
		Catalog:        service.NewCatalogService(stores.Products, stores.Categories, log.Named("catalog")),
		Hub:            hub,
		Images:         handlers.NewImageStore(cfg.PublicDir, log.Named("images")),
		Ping:           stores.Ping,
		JWTSecret:      cfg.JWTSecret,
		WebhookSecret:  cfg.Payment.WebhookSecret,
		PaymentSandbox: cfg.PaymentSandbox(),
		CORSOrigins:    cfg.CORSOrigins,
		PublicDir:      cfg.PublicDir,
		Log:            log,
	}

	if cfg.Log.Encoding != "console" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", srv.Addr),
			zap.String("storage", cfg.StorageDriver), zap.String("statusPolicy", cfg.Order.StatusPolicy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStores(ctx context.Context, cfg config.Config, log *zap.Logger) (store.Stores, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		return memstore.New(), func() {}, nil
	}

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return store.Stores{}, nil, err
	}
	db := client.Database(cfg.DBName)
	log.Info("mongodb connected", zap.String("db", db.Name()))

	if err := database.EnsureIndexes(ctx, db, log.Named("indexes")); err != nil {
		log.Warn("index setup incomplete", zap.Error(err))
	}

	return mongostore.New(db), disconnect(client, log), nil
}

func disconnect(client *mongo.Client, log *zap.Logger) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Warn("mongo disconnect", zap.Error(err))
		}
	}
}

func openLocker(ctx context.Context, cfg config.Config, log *zap.Logger) (lock.Locker, func(), error) {
	client, err := database.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		log.Info("REDIS_ADDR not set; using in-process locks")
		return lock.NewMutexLocker(), func() {}, nil
	}
	log.Info("redis locks enabled", zap.String("addr", cfg.Redis.Addr))
	return lock.NewRedisLocker(client, cfg.Redis.LockTTL, log.Named("lock")), func() { _ = client.Close() }, nil
}
