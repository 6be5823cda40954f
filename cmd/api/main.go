package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wallet-ledger/config"
	kafkaEvents "wallet-ledger/internal/adapter/events/kafka"
	httpHandler "wallet-ledger/internal/adapter/http/handler"
	"wallet-ledger/internal/adapter/lock/local"
	"wallet-ledger/internal/adapter/lock/redislock"
	"wallet-ledger/internal/adapter/storage/memory"
	pgStorage "wallet-ledger/internal/adapter/storage/postgres"
	redisStorage "wallet-ledger/internal/adapter/storage/redis"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/service"
	"wallet-ledger/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

// storage bundles the repositories of whichever backend is configured.
type storage struct {
	accounts     ports.AccountRepository
	methods      ports.PaymentMethodRepository
	transactions ports.TransactionRepository
	limits       ports.LimitRepository
	audits       ports.AuditRepository
	transactor   ports.DBTransactor
	health       ports.HealthChecker
	close        func()
}

func main() {
	configPath := pflag.String("config", "", "path to a YAML config file")
	issueToken := pflag.String("issue-token", "", "print a bearer token for the given operator subject and exit")
	pflag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt.secret is required")
	}
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	if *issueToken != "" {
		token, expiresAt, err := tokenSvc.Generate(*issueToken)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to issue token")
		}
		fmt.Println(token)
		log.Info().Str("subject", *issueToken).Time("expires_at", expiresAt).Msg("Token issued")
		return
	}

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("storage", cfg.Ledger.Storage).
		Str("lock_backend", cfg.Ledger.LockBackend).
		Msg("Starting Wallet Ledger")

	ctx := context.Background()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	defer store.close()

	healthCheckers := []ports.HealthChecker{store.health}

	// Redis backs idempotency, rate limiting and the distributed lock.
	var (
		rdb            *goredis.Client
		idempCache     ports.IdempotencyCache
		rateLimitStore *redisStorage.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err = redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		idempCache = redisStorage.NewIdempotencyCache(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
	} else {
		log.Warn().Msg("Redis disabled: idempotency keys and rate limiting are off")
	}

	var locker ports.AccountLocker
	switch cfg.Ledger.LockBackend {
	case config.LockRedis:
		locker = redislock.New(rdb, cfg.Ledger.LockTimeout, logger.Component(log, "redislock"))
	default:
		locker = local.New(cfg.Ledger.LockTimeout)
	}

	var publisher ports.SettlementPublisher
	if cfg.Kafka.Enabled {
		kp := kafkaEvents.NewPublisher(cfg.Kafka)
		defer kp.Close() //nolint:errcheck
		publisher = kp
		healthCheckers = append(healthCheckers, kafkaEvents.NewHealthCheck(cfg.Kafka.Brokers))
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka publisher enabled")
	}

	loc, err := cfg.Ledger.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid ledger timezone")
	}

	// Initialize core services
	ledgerSvc := service.NewLedgerService(store.accounts, store.transactor, locker, logger.Component(log, "ledger"))
	limitSvc := service.NewLimitService(store.limits, store.transactions, loc, logger.Component(log, "limits"))

	var limitGate ports.LimitEvaluator = limitSvc
	if !cfg.Ledger.EnforceLimits {
		limitGate = service.NoopLimitEvaluator{}
		log.Warn().Msg("Limit enforcement disabled")
	}

	txnSvc := service.NewTransactionService(
		store.accounts,
		store.methods,
		store.transactions,
		ledgerSvc,
		limitGate,
		store.transactor,
		locker,
		idempCache,
		publisher,
		logger.Component(log, "transactions"),
	)
	auditSvc := service.NewAuditService(store.audits, logger.Component(log, "audit"))

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		TxnSvc:         txnSvc,
		Ledger:         ledgerSvc,
		LimitSvc:       limitSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		AuditSvc:       auditSvc,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.Ledger.Storage == config.StorageMemory {
		store := memory.NewStore()
		if cfg.Ledger.Fixtures != "" {
			if err := store.LoadFixtures(ctx, cfg.Ledger.Fixtures); err != nil {
				return nil, fmt.Errorf("loading fixtures: %w", err)
			}
			log.Info().Str("path", cfg.Ledger.Fixtures).Msg("Memory store seeded from fixtures")
		}
		log.Warn().Msg("Using in-memory storage, balances are lost on restart")
		return &storage{
			accounts:     store.Accounts(),
			methods:      store.PaymentMethods(),
			transactions: store.Transactions(),
			limits:       store.Limits(),
			audits:       store.Audits(),
			transactor:   store,
			health:       store,
			close:        func() {},
		}, nil
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	log.Info().Msg("PostgreSQL connected")

	if cfg.Database.AutoMigrate {
		if err := pgStorage.Migrate(pool, cfg.Database.DBName, log); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrating schema: %w", err)
		}
	}

	return &storage{
		accounts:     pgStorage.NewAccountRepo(pool),
		methods:      pgStorage.NewPaymentMethodRepo(pool),
		transactions: pgStorage.NewTransactionRepo(pool),
		limits:       pgStorage.NewLimitRepo(pool),
		audits:       pgStorage.NewAuditRepo(pool),
		transactor:   pgStorage.NewTransactor(pool),
		health:       pgStorage.NewHealthCheck(pool),
		close:        pool.Close,
	}, nil
}
