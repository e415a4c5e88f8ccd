// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"finda-workers/internal/assistant/extract"
	"finda-workers/internal/assistant/intent"
	"finda-workers/internal/common/camunda"
	"finda-workers/internal/common/config"
	"finda-workers/internal/common/database"
	"finda-workers/internal/common/logger"
	"finda-workers/internal/common/observability"
	"finda-workers/internal/conversation/history"
	"finda-workers/internal/models"
	"finda-workers/internal/shopping/aggregator"
	"finda-workers/internal/shopping/cache"
	"finda-workers/internal/shopping/dedupe"
	"finda-workers/internal/shopping/sources"
	"finda-workers/pkg/registry"

	aum "finda-workers/internal/workers/conversation/analyze-user-message"
	dfi "finda-workers/internal/workers/conversation/detect-flight-intent"
	rct "finda-workers/internal/workers/conversation/record-conversation-turn"
	sp "finda-workers/internal/workers/shopping/search-products"
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

type readinessCheck struct {
	name  string
	check func(context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()
	var checks []readinessCheck

	// --- Zeebe ---
	zeebe, err := camunda.NewClientWithConfig(&camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      10 * time.Second,
		RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
		RetryConfig:            &camunda.RetryConfig{MaxRetries: 10, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second},
	})
	if err != nil {
		zapLog.Fatal("Failed to connect to Zeebe", zap.Error(err))
	}
	defer zeebe.Close()
	checks = append(checks, readinessCheck{"zeebe", zeebe.HealthCheck})
	zapLog.Info("Connected to Zeebe", zap.String("address", cfg.Camunda.BrokerAddress))

	// --- Conversation history (PostgreSQL) ---
	var historyStore *history.PostgresStore
	if cfg.Database.Postgres.Enabled() {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			zapLog.Fatal("Failed to create PostgreSQL client", zap.Error(err))
		}
		defer pg.Close()

		err = retryWithBackoff(func() error { return pg.Ping(ctx) }, 5, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("PostgreSQL unreachable", zap.Error(err))
		}
		if _, err := pg.DB.ExecContext(ctx, history.Schema); err != nil {
			zapLog.Fatal("Failed to apply history schema", zap.Error(err))
		}
		historyStore = history.NewPostgresStore(pg.DB)
		checks = append(checks, readinessCheck{"postgres", pg.Ping})
		zapLog.Info("Conversation history enabled")
	} else {
		zapLog.Warn("PostgreSQL not configured, conversation history disabled")
	}

	// --- Product catalog (Elasticsearch) ---
	var catalogClient *elasticsearch.Client
	if cfg.Database.Elasticsearch.Enabled() {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("Failed to create Elasticsearch client", zap.Error(err))
		}
		if err := esClient.Ping(ctx); err != nil {
			zapLog.Warn("Elasticsearch unreachable, catalog source will report errors", zap.Error(err))
		}
		catalogClient = esClient.Client
		checks = append(checks, readinessCheck{"elasticsearch", esClient.Ping})
	}

	// --- Product cache ---
	ttl := time.Duration(cfg.Shopping.CacheTTL) * time.Millisecond
	var productCache cache.Cache
	switch cfg.Shopping.CacheBackend {
	case "redis":
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer rdb.Close()

		err = retryWithBackoff(func() error { return rdb.Ping(ctx) }, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("Redis unreachable", zap.Error(err))
		}
		productCache = cache.NewRedisCache(rdb.Client, cfg.Shopping.CacheKeyPrefix, ttl)
		checks = append(checks, readinessCheck{"redis", rdb.Ping})
	default:
		productCache = cache.NewMemoryCache(ttl, cache.WithMaxEntries(cfg.Shopping.CacheMaxEntries))
	}
	zapLog.Info("Product cache ready", zap.String("backend", cfg.Shopping.CacheBackend), zap.Duration("ttl", ttl))

	// --- Pipelines ---
	orchestrator := intent.NewOrchestrator(intent.StagesFromConfig(cfg.Providers), intent.Options{
		Extractor:        extract.New(cfg.Assistant.Extractor),
		MaxMessageLength: cfg.Assistant.MaxMessageLength,
		HistoryTurns:     cfg.Assistant.HistoryTurns,
	}, log)

	backfill := []sources.Source{}
	if catalogClient != nil {
		backfill = append(backfill, sources.NewCatalog(catalogClient, cfg.Shopping.CatalogIndex))
	}
	backfill = append(backfill, sources.NewFakeStore(cfg.Providers.FakeStore))

	products := aggregator.New(
		sources.NewSerpAPI(cfg.Providers.SerpAPI),
		backfill,
		productCache,
		aggregator.Options{
			MinResults:   cfg.Shopping.MinResults,
			CompareLimit: cfg.Shopping.CompareLimit,
			Deduplicator: dedupe.New(cfg.Shopping.DedupeStrategy, cfg.Shopping.SimilarityThreshold),
		},
		log,
	)

	// --- Activity registry ---
	reg, err := registry.LoadRegistry(cfg.Registry.Path)
	if err != nil {
		zapLog.Warn("Activity registry not loaded, job input will not be schema-validated",
			zap.String("path", cfg.Registry.Path), zap.Error(err))
	} else if missing := reg.Missing(aum.TaskType, dfi.TaskType, sp.TaskType, rct.TaskType); len(missing) > 0 {
		zapLog.Warn("Activities missing from registry", zap.Strings("taskTypes", missing))
	}

	// --- Workers ---
	var workers []*camunda.Worker
	startWorker := func(taskType string, handlerFunc camunda.JobHandler) {
		wcfg := cfg.Workers[taskType]
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}

		activity, _ := reg.Find(taskType)
		w, err := camunda.NewWorker(taskType, handlerFunc, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       time.Duration(wcfg.Timeout) * time.Millisecond,
		}, log).WithActivity(activity)
		if err != nil {
			zapLog.Fatal("invalid activity definition", zap.String("taskType", taskType), zap.Error(err))
		}
		w.WithObservability(obs).Open(zeebe.GetClient())
		workers = append(workers, w)
	}

	var historyReader aum.HistoryReader
	if historyStore != nil {
		historyReader = historyStore
	}
	analyzer := aum.NewHandler(aum.LoadConfig(cfg.Assistant), &timedAnalyzer{orchestrator, obs}, historyReader, log)
	startWorker(aum.TaskType, analyzer.Handle)

	flight := dfi.NewHandler(dfi.LoadConfig(cfg.Assistant), log)
	startWorker(dfi.TaskType, flight.Handle)

	search := sp.NewHandler(sp.LoadConfig(), &timedSearcher{products, obs}, log)
	startWorker(sp.TaskType, search.Handle)

	if historyStore != nil {
		record := rct.NewHandler(rct.LoadConfig(), historyStore, log)
		startWorker(rct.TaskType, record.Handle)
	} else {
		zapLog.Warn("record-conversation-turn not started: no history store")
	}

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"time": time.Now().Format(time.RFC3339)}
		code := http.StatusOK
		for _, c := range checks {
			if err := c.check(r.Context()); err != nil {
				status[c.name] = err.Error()
				code = http.StatusServiceUnavailable
				continue
			}
			status[c.name] = "ok"
		}
		status["status"] = "ready"
		if code != http.StatusOK {
			status["status"] = "not_ready"
		}
		writeStatus(w, code, status)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: cfg.Server.Address, Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func writeStatus(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// timedAnalyzer records the intent stage duration.
type timedAnalyzer struct {
	*intent.Orchestrator
	obs *observability.Observability
}

func (t *timedAnalyzer) Resolve(ctx context.Context, message string, turns []models.ConversationTurn) intent.Analysis {
	start := time.Now()
	defer func() { t.obs.RecordStage(ctx, "intent", time.Since(start)) }()
	return t.Orchestrator.Resolve(ctx, message, turns)
}

type timedSearcher struct {
	*aggregator.Aggregator
	obs *observability.Observability
}

func (t *timedSearcher) Search(ctx context.Context, req aggregator.Request) aggregator.Result {
	start := time.Now()
	defer func() { t.obs.RecordStage(ctx, "aggregate", time.Since(start)) }()
	return t.Aggregator.Search(ctx, req)
}
