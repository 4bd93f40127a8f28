package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"revcart-storefront/internal/address"
	"revcart-storefront/internal/api"
	"revcart-storefront/internal/auth"
	"revcart-storefront/internal/cart"
	"revcart-storefront/internal/checkout"
	"revcart-storefront/internal/config"
	"revcart-storefront/internal/coupon"
	"revcart-storefront/internal/db"
	"revcart-storefront/internal/domain"
	"revcart-storefront/internal/httpserver"
	"revcart-storefront/internal/logging"
	"revcart-storefront/internal/mirror"
	"revcart-storefront/internal/notify"
	"revcart-storefront/internal/storage"
	"revcart-storefront/internal/wishlist"
)

const toastDelay = 3 * time.Second

// toastNotifier renders cart events as toast messages.
type toastNotifier struct {
	toaster *notify.Toaster
}

func (n toastNotifier) Notify(e cart.Event) {
	if e.Quantity > 1 {
		n.toaster.Show(fmt.Sprintf("%s (%d) added to cart!", e.ProductName, e.Quantity))
		return
	}
	n.toaster.Show(fmt.Sprintf("%s added to cart!", e.ProductName))
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	var (
		store      storage.Store
		readyCheck func(ctx context.Context) error
	)
	if cfg.DBConnString != "" {
		pool, err := db.Connect(ctx, cfg.DBConnString)
		if err != nil {
			logger.Fatal("connect to db", zap.Error(err))
		}
		defer pool.Close()
		store = storage.NewPostgres(pool)
		readyCheck = pool.Ping
		logger.Info("using postgres mirror storage")
	} else {
		fileStore, err := storage.NewFileStore(cfg.StorageDir)
		if err != nil {
			logger.Fatal("init file storage", zap.Error(err))
		}
		store = fileStore
		logger.Info("using file mirror storage", zap.String("dir", cfg.StorageDir))
	}

	session := auth.NewSession(store)

	backend, err := api.New(cfg.BackendBaseURL, &http.Client{
		Timeout: cfg.HTTPTimeout(),
		Transport: &api.AuthTransport{
			Base:   http.DefaultTransport,
			Tokens: session,
			Logger: logger,
		},
	}, logger)
	if err != nil {
		logger.Fatal("init backend client", zap.Error(err))
	}

	toaster := notify.NewToaster(toastDelay)

	cartMirror := mirror.New[domain.CartLine](store, "cart", logger)
	cartSvc := cart.New(cartMirror, backend, session, toastNotifier{toaster}, logger, cfg.ReloadGrace())

	wishlistMirror := mirror.New[int](store, "wishlist", logger)
	wishlistSvc := wishlist.New(wishlistMirror, store, backend, session, toaster, logger)

	couponSvc := coupon.New(backend, logger)

	addressMirror := mirror.New[domain.Address](store, "addresses", logger)
	addressSvc := address.New(addressMirror, backend, session, logger)

	payments := checkout.NewPendingGateway()
	checkoutSvc := checkout.New(cartSvc, couponSvc, addressSvc, backend, payments, toaster, logger, checkout.Config{
		PaymentKey: cfg.PaymentKey,
		Currency:   cfg.PaymentCurrency,
		StoreName:  cfg.StoreName,
		Theme:      cfg.PaymentTheme,
	})

	startCtx, cancelStart := context.WithTimeout(ctx, cfg.HTTPTimeout())
	if err := cartSvc.Load(startCtx); err != nil {
		logger.Warn("initial cart load", zap.Error(err))
	}
	if err := wishlistSvc.Load(startCtx); err != nil {
		logger.Warn("initial wishlist load", zap.Error(err))
	}
	cancelStart()

	srv := httpserver.New(cfg.HTTPAddr, logger, httpserver.Deps{
		Cart:       cartSvc,
		Wishlist:   wishlistSvc,
		Coupons:    couponSvc,
		Checkout:   checkoutSvc,
		Payments:   payments,
		Addresses:  addressSvc,
		Auth:       backend,
		Session:    session,
		Toaster:    toaster,
		ReadyCheck: readyCheck,
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
