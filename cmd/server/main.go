package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"bankledger/pkg/api"
	"bankledger/pkg/ledger"
	"bankledger/pkg/logging"
	promMetrics "bankledger/pkg/metrics/prometheus"
	"bankledger/pkg/report"
	"bankledger/pkg/store"
	"bankledger/pkg/store/memory"
	"bankledger/pkg/store/postgres"
	"bankledger/pkg/txcache"
)

func main() {
	logger, err := logging.NewLoggerFromEnv()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	logging.SetGlobal(logger)

	logger.Info("starting bankledger")

	collector := promMetrics.NewPrometheusCollector("bankledger")
	prometheus.MustRegister(collector)

	s, err := openStore(logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer s.Close()

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer bootCancel()

	var tier txcache.Tier
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisConfig := txcache.DefaultRedisConfig()
		redisConfig.Addr = addr
		redisConfig.Password = os.Getenv("REDIS_PASSWORD")
		redisTier, err := txcache.NewRedisTier(redisConfig)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		tier = txcache.NewResilientTier(redisTier, txcache.DefaultResilientConfig())
		logger.Info("redis transaction tier enabled", zap.String("addr", addr))
	}

	cacheConfig := txcache.DefaultConfig()
	cacheConfig.Metrics = collector
	cacheConfig.Logger = logger
	cache, err := txcache.New(bootCtx, s, tier, cacheConfig)
	if err != nil {
		logger.Fatal("failed to build transaction cache", zap.Error(err))
	}
	defer cache.Close()

	processor := ledger.NewProcessor(s, ledger.Config{
		LockTimeout: envDuration("LOCK_TIMEOUT", 5*time.Second),
		Metrics:     collector,
		Logger:      logger,
	})
	reports := report.NewEngine(s, collector)

	serverConfig := api.DefaultServerConfig()
	serverConfig.Address = ":" + getEnv("PORT", "8080")
	serverConfig.Metrics = collector
	serverConfig.Logger = logger
	server := api.NewServer(s, processor, reports, cache, serverConfig)
	server.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("server stopped")
}

// openStore picks the persistence backend from STORE_BACKEND: "memory"
// (default) or "postgres".
func openStore(logger *logging.Logger) (store.Store, error) {
	backend := getEnv("STORE_BACKEND", "memory")
	switch backend {
	case "postgres":
		cfg := postgres.DefaultConfig()
		cfg.Host = getEnv("POSTGRES_HOST", cfg.Host)
		cfg.Port = envInt("POSTGRES_PORT", cfg.Port)
		cfg.User = getEnv("POSTGRES_USER", cfg.User)
		cfg.Password = getEnv("POSTGRES_PASSWORD", cfg.Password)
		cfg.Database = getEnv("POSTGRES_DB", cfg.Database)
		cfg.SSLMode = getEnv("POSTGRES_SSLMODE", cfg.SSLMode)
		logger.Info("using postgres store",
			zap.String("host", cfg.Host),
			zap.String("database", cfg.Database),
		)
		return postgres.NewPostgresStore(cfg)
	default:
		logger.Info("using in-memory store")
		return memory.NewMemoryStore(), nil
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
