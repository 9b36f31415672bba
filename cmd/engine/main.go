package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-deposit-engine/config"
	solanaChain "solana-deposit-engine/internal/adapter/chain/solana"
	httpHandler "solana-deposit-engine/internal/adapter/http/handler"
	"solana-deposit-engine/internal/adapter/quote"
	pgStorage "solana-deposit-engine/internal/adapter/storage/postgres"
	redisStorage "solana-deposit-engine/internal/adapter/storage/redis"
	"solana-deposit-engine/internal/adapter/telegram"
	"solana-deposit-engine/internal/core/ports"
	"solana-deposit-engine/internal/service"
	"solana-deposit-engine/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Solana Deposit Engine")

	// Master seed. The vault holds the only copy; the mnemonic itself
	// is never logged.
	vault, err := service.NewSeedVault(cfg.Seed.Mnemonic)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize seed vault")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	walletRepo := pgStorage.NewWalletRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Chain and quote adapters
	chainClient := solanaChain.NewClient(cfg.Chain.RPCURL, cfg.Chain.RequestTimeout)
	quoteCache := redisStorage.NewQuoteCache(rdb)
	quoteClient := quote.NewClient(
		cfg.Quote.BaseURL,
		&http.Client{Timeout: cfg.Quote.RequestTimeout},
		quoteCache,
		cfg.Quote.CacheTTL,
		logger.WithComponent(log, "quote"),
	)

	// Telegram connection, shared by the dispatcher and the bot
	var notifier ports.Notifier
	var botAPI *tgbotapi.BotAPI
	if cfg.Telegram.Enabled {
		botAPI, err = telegram.Connect(cfg.Telegram.Token, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Telegram")
		}
		notifier = telegram.NewNotifier(botAPI, cfg.Telegram.AdminChatID, logger.WithComponent(log, "telegram"))
	} else {
		notifier = telegram.NewNopNotifier(log)
		log.Warn().Msg("Telegram disabled, notifications will be dropped")
	}

	// Core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	authSvc := service.NewAuthService(
		cfg.Auth.OperatorUsername,
		cfg.Auth.OperatorPasswordHash,
		hashSvc,
		tokenSvc,
		log,
	)

	notifySvc := service.NewNotificationService(ctx, ledgerRepo, notifier, logger.WithComponent(log, "notify"))
	walletSvc := service.NewWalletService(vault, walletRepo, ledgerRepo, transactor, notifySvc, log)
	depositSvc := service.NewDepositService(ledgerRepo, transactor, log)
	policySvc, err := service.NewPolicyService(
		ledgerRepo,
		quoteClient,
		cfg.Quote.Asset,
		cfg.Policy.MinBuyUSD,
		cfg.Policy.WithdrawalMultiplier,
		log,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid policy configuration")
	}
	snapshotSvc := service.NewSnapshotService(ledgerRepo, walletRepo)

	// Balance observer
	observer := service.NewObserverService(
		walletRepo,
		depositSvc,
		notifySvc,
		chainClient,
		cfg.Chain.PollInterval,
		logger.WithComponent(log, "observer"),
	)
	go observer.Run(ctx)

	// Telegram command loop
	if cfg.Telegram.Enabled {
		bot := telegram.NewBot(botAPI, walletSvc, policySvc, notifier, logger.WithComponent(log, "bot"))
		go bot.Run(ctx)
	}

	// Initialize rate limit store and health checkers
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		SnapshotSvc:    snapshotSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth, chainClient},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down...")

	cancel() // stops the observer, the bot, and pending announcement retries

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Engine exited")
}
