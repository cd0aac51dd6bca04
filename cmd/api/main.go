package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"figurinha-studio/internal/cache"
	"figurinha-studio/internal/config"
	"figurinha-studio/internal/db"
	"figurinha-studio/internal/httpserver"
	cartrepo "figurinha-studio/internal/repository/cart"
	categoryrepo "figurinha-studio/internal/repository/category"
	orderrepo "figurinha-studio/internal/repository/order"
	packrepo "figurinha-studio/internal/repository/pack"
	tokenrepo "figurinha-studio/internal/repository/token"
	userrepo "figurinha-studio/internal/repository/user"
	cartsvc "figurinha-studio/internal/service/cart"
	categorysvc "figurinha-studio/internal/service/category"
	identitysvc "figurinha-studio/internal/service/identity"
	"figurinha-studio/internal/service/notify"
	ordersvc "figurinha-studio/internal/service/order"
	packsvc "figurinha-studio/internal/service/pack"
	"figurinha-studio/internal/storage"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := config.LoadDotEnv(); err != nil {
		logger.Fatalf("load .env: %v", err)
	}
	cfg := config.FromEnv()
	if cfg.JWTSecret == "" {
		logger.Fatalf("JWT_SECRET is required")
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	var catalogCache packsvc.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Fatalf("connect to redis: %v", err)
		}
		defer rdb.Close()
		catalogCache = cache.NewCatalog(rdb, cfg.CatalogCacheTTL, logger)
		logger.Printf("catalog cache enabled addr=%s ttl=%s", cfg.RedisAddr, cfg.CatalogCacheTTL)
	}

	var sender notify.Sender = notify.LogSender{Logger: logger}
	if cfg.ResendAPIKey != "" {
		sender = notify.NewResendSender(cfg.ResendAPIKey)
	} else {
		logger.Printf("RESEND_API_KEY not set, auth emails are logged only")
	}
	mailer := notify.New(sender, cfg.EmailFrom, cfg.PublicSiteURL, logger)

	var hooks *notify.Verifier
	if cfg.AuthWebhookSecret != "" {
		if hooks, err = notify.NewVerifier(cfg.AuthWebhookSecret); err != nil {
			logger.Fatalf("init webhook verifier: %v", err)
		}
	}

	store, err := storage.NewLocal(cfg.StorageDir, cfg.FileURLHost, cfg.MaxUploadBytes)
	if err != nil {
		logger.Fatalf("init storage: %v", err)
	}

	packRepo := packrepo.NewPostgres(dbpool, logger)
	packService := packsvc.New(packRepo, catalogCache)
	categoryService := categorysvc.New(categoryrepo.NewPostgres(dbpool), packService)
	cartService := cartsvc.New(cartrepo.NewPostgres(dbpool), packRepo)
	orderService := ordersvc.New(orderrepo.NewPostgres(dbpool, logger), packRepo, packService)
	identityService := identitysvc.New(userrepo.NewPostgres(dbpool, logger), tokenrepo.NewPostgres(dbpool), mailer, cfg.JWTSecret)

	deps := httpserver.Deps{
		PackSvc:            packService,
		CategorySvc:        categoryService,
		CartSvc:            cartService,
		OrderSvc:           orderService,
		IdentitySvc:        identityService,
		Mailer:             mailer,
		Storage:            store,
		CORSOrigins:        cfg.CORSOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
	if hooks != nil {
		deps.Hooks = hooks
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, deps)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
