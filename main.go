package main

import (
	"artmarket/internal/config"
	"artmarket/internal/database/db_client"
	"artmarket/internal/http/http_server"
	"artmarket/internal/payments/stripe_client"
	"artmarket/internal/redis/bidfeed"
	"artmarket/internal/redis/redis_client"
	"artmarket/internal/redis/redis_functions"
	"artmarket/internal/redis/watcher/auctionwatcher"
	"artmarket/internal/services/auction"
	"artmarket/internal/services/checkout"
	"artmarket/internal/services/settlement"
	"artmarket/internal/syncdb"
	"artmarket/internal/ws"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

var (
	Log, _ = zap.NewDevelopment()
)

// @title			artmarket API
// @version		1.0
// @description	Checkout, bidding and Stripe settlement for the art marketplace.
func main() {
	defer Log.Sync()
	zap.ReplaceGlobals(Log)

	// 1. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		Log.Fatal("Failed to load configuration", zap.Error(err))
	}
	Log.Debug("Configuration loaded successfully", zap.Any("config", cfg))

	// 2. Context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGINT, syscall.SIGTERM,
	)
	defer stop()

	// 3. Postgres db client + schema
	pgDb, err := db_client.Open(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser,
		cfg.PostgresPassword, cfg.PostgresDb, cfg.PostgresSSLMode)
	if err != nil {
		Log.Fatal("pg-open", zap.Error(err))
	}
	defer pgDb.Close()

	if err := db_client.Migrate(ctx, pgDb); err != nil {
		Log.Fatal("pg-migrate", zap.Error(err))
	}

	// 4. Redis
	redisClient, err := redis_client.NewRedisClient(ctx, cfg.RedisHost, int(cfg.RedisPort))
	if err != nil {
		Log.Fatal("Failed to create Redis client", zap.Error(err))
	}
	defer redisClient.Close()

	if err := redis_functions.LoadAll(ctx, redisClient); err != nil {
		Log.Fatal("load-redis-scripts", zap.Error(err))
	}

	// 5. Stripe
	stripeClient := stripe_client.New(cfg.StripeSecretKey, cfg.StripeWebhookSecret)

	// 6. Services
	feed := bidfeed.NewPublisher(redisClient)
	auctionService := auction.NewAuctionService(pgDb, feed)
	checkoutService := checkout.NewCheckoutService(pgDb, stripeClient, cfg.CheckoutCurrency, cfg.PublicBaseURL)
	settlementService := settlement.NewSettlementService(pgDb, redisClient)

	// 7. Background: timer-key expiry ➜ "ended" event
	go auctionwatcher.Run(ctx, redisClient, feed)

	// 8. WebSockets hub + server
	hub := ws.NewHub()
	wsSrv := ws.NewWsServer(hub, redisClient, auctionService)

	// Background: 10 s snapshot repair for watched auctions
	syncdb.Run(ctx, pgDb, feed, hub.AuctionIDs)

	// 9. HTTP + WS server
	httpServer := http_server.NewHttpServer(ctx, cfg.HttpServerPort, http_server.Services{
		Checkout:   checkoutService,
		Auction:    auctionService,
		Settlement: settlementService,
		Events:     stripeClient,
		Ws:         wsSrv,
		Health: map[string]http_server.Pinger{
			"postgres": pgDb,
			"redis": http_server.PingerFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}),
		},
	})

	errCh := make(chan error, 1)
	go func() { errCh <- httpServer.Start() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			Log.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	case <-ctx.Done():
		Log.Info("shutting down")
		_ = httpServer.Dispose()
	}
}
