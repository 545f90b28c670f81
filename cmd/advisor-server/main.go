// cmd/advisor-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"housing-advisor/internal/common/config"
	"housing-advisor/internal/common/database"
	"housing-advisor/internal/common/logger"
	"housing-advisor/internal/contextstore"
	"housing-advisor/internal/decision"
	"housing-advisor/internal/orchestrator"
	"housing-advisor/internal/router"
	"housing-advisor/internal/server"
	"housing-advisor/internal/specialists"

	ds "housing-advisor/internal/specialists/decision-scoring"
	ge "housing-advisor/internal/specialists/grant-eligibility"
	lf "housing-advisor/internal/specialists/listing-filter"
	ps "housing-advisor/internal/specialists/property-search"
	rw "housing-advisor/internal/specialists/response-writer"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// specialistSettings reads the per-unit config section. An absent section
// means enabled with package defaults.
func specialistSettings(cfg *config.Config, name string) (bool, time.Duration, int) {
	sc, ok := cfg.Specialists[name]
	if !ok {
		return true, 0, 0
	}
	return sc.Enabled, time.Duration(sc.Timeout) * time.Millisecond, sc.MaxResults
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting advisor server...",
		zap.String("app", cfg.App.Name),
		zap.String("address", cfg.Server.Address),
	)

	ctx := context.Background()

	// --- Init Redis (session context store) with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis initialization")
	if err != nil {
		zapLog.Fatal("Redis unavailable", zap.Error(err))
	}
	defer redisClient.Close()

	// --- Init PostgreSQL (property listings) with retry ---
	var pgClient *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pgClient, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pgClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "PostgreSQL initialization")
	if err != nil {
		zapLog.Fatal("PostgreSQL unavailable", zap.Error(err))
	}
	defer pgClient.Close()

	// --- Init Elasticsearch (grant scheme knowledge) with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 10, 2*time.Second, zapLog, "Elasticsearch initialization")
	if err != nil {
		zapLog.Fatal("Elasticsearch unavailable", zap.Error(err))
	}

	// --- Context store ---
	ttl := time.Duration(cfg.Context.TTL) * time.Minute
	store := contextstore.NewRedisStore(redisClient.GetClient(), ttl, log)

	// --- Specialist registry ---
	registry := specialists.NewRegistry()

	if enabled, timeout, maxResults := specialistSettings(cfg, "property"); enabled {
		psCfg := ps.LoadConfig()
		if timeout > 0 {
			psCfg.Timeout = timeout
		}
		if maxResults > 0 {
			psCfg.MaxResults = maxResults
		}
		registry.Register(ps.NewHandler(psCfg, ps.NewPostgresListingSearch(pgClient.GetDB()), log))
	}

	if enabled, timeout, _ := specialistSettings(cfg, "grant"); enabled {
		geCfg := ge.LoadConfig()
		if timeout > 0 {
			geCfg.Timeout = timeout
		}
		geCfg.Index = cfg.Database.Elasticsearch.GrantIndex
		registry.Register(ge.NewHandler(geCfg, ge.NewElasticKnowledgeSearch(esClient.Client, geCfg.Index), log))
	}

	if enabled, timeout, maxResults := specialistSettings(cfg, "filter"); enabled {
		lfCfg := lf.LoadConfig()
		if timeout > 0 {
			lfCfg.Timeout = timeout
		}
		if maxResults > 0 {
			lfCfg.MaxResults = maxResults
		}
		registry.Register(lf.NewHandler(lfCfg, log))
	}

	if enabled, timeout, _ := specialistSettings(cfg, "decision"); enabled {
		dsCfg := ds.LoadConfig()
		if timeout > 0 {
			dsCfg.Timeout = timeout
		}
		engine := decision.NewEngine(cfg.Scoring.Weights, log)
		registry.Register(ds.NewHandler(dsCfg, engine, log))
	}

	if enabled, timeout, _ := specialistSettings(cfg, "writer"); enabled {
		rwCfg := rw.LoadConfig()
		if timeout > 0 {
			rwCfg.Timeout = timeout
		}
		registry.Register(rw.NewHandler(rwCfg, log))
	}

	zapLog.Info("Specialists registered", zap.Int("count", len(registry.Categories())))

	// --- Router and orchestrator ---
	advisorRouter := router.New(router.NewKeywordClassifier(), log)
	orch := orchestrator.New(store, advisorRouter, registry, cfg.Orchestrator, cfg.Context.HistoryLimit, log)

	// --- HTTP server ---
	srv := server.New(orch, store, log)
	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLog.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP shutdown failed", zap.Error(err))
	}
	zapLog.Info("Advisor server stopped")
}
