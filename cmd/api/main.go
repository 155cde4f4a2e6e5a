package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/umarxon/delivera-backend/api/routes"
	"github.com/umarxon/delivera-backend/internal/integrity"
	"github.com/umarxon/delivera-backend/internal/ledger"
	"github.com/umarxon/delivera-backend/internal/notifications"
	"github.com/umarxon/delivera-backend/internal/partner"
	"github.com/umarxon/delivera-backend/internal/returns"
	"github.com/umarxon/delivera-backend/internal/sync"
	deliverywebhook "github.com/umarxon/delivera-backend/internal/webhooks/delivery"
	"github.com/umarxon/delivera-backend/pkg/config"
	"github.com/umarxon/delivera-backend/pkg/db"
	"github.com/umarxon/delivera-backend/pkg/logger"
	"github.com/umarxon/delivera-backend/pkg/migrate"
	"github.com/umarxon/delivera-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	partnerClient, err := partner.NewHTTPClient(cfg.Partner, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create partner client", err)
		os.Exit(1)
	}

	syncService, err := sync.NewService(sync.NewRepository(dbClient.DB()), partnerClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	returnsService, err := returns.NewService(returns.NewRepository(dbClient.DB()), ledgerService, notificationsService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create returns service", err)
		os.Exit(1)
	}

	integrityService, err := integrity.NewService(integrity.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create integrity service", err)
		os.Exit(1)
	}

	webhookGuard, err := deliverywebhook.NewIdempotencyGuard(redisClient, cfg.Webhook.IdempotencyTTL, "delivery")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	webhookService, err := deliverywebhook.NewService(deliverywebhook.ServiceParams{
		Guard:         webhookGuard,
		SyncService:   syncService,
		ReturnService: returnsService,
		Logger:        logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:               cfg,
			Logger:               logg,
			DBPinger:             dbClient,
			RedisPinger:          redisClient,
			SyncService:          syncService,
			ReturnsService:       returnsService,
			LedgerService:        ledgerService,
			IntegrityService:     integrityService,
			NotificationsService: notificationsService,
			WebhookService:       webhookService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
