// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finda-workers/internal/assistant/intent"
	"finda-workers/internal/common/camunda"
	"finda-workers/internal/common/config"
	"finda-workers/internal/common/database"
	"finda-workers/internal/common/logger"
	"finda-workers/internal/conversation/history"
	"finda-workers/internal/models"
	"finda-workers/internal/shopping/aggregator"
	"finda-workers/internal/shopping/cache"
	"finda-workers/internal/shopping/sources"
	"finda-workers/pkg/registry"

	aum "finda-workers/internal/workers/conversation/analyze-user-message"
	dfi "finda-workers/internal/workers/conversation/detect-flight-intent"
	rct "finda-workers/internal/workers/conversation/record-conversation-turn"
	sp "finda-workers/internal/workers/shopping/search-products"
)

// Requires the docker-compose stack (Zeebe, PostgreSQL, Redis). Run with E2E=1.

var zeebe *camunda.Client

func TestMain(m *testing.M) {
	if os.Getenv("E2E") != "1" {
		fmt.Println("skipping e2e tests; set E2E=1 to run them")
		os.Exit(0)
	}

	var err error
	zeebe, err = camunda.NewClient(envOr("ZEEBE_ADDRESS", "localhost:26500"))
	if err != nil {
		panic(fmt.Sprintf("❌ Failed to connect to Zeebe: %v", err))
	}

	code := m.Run()
	zeebe.Close()
	os.Exit(code)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)

	cfg.Database.Postgres.Host = envOr("DB_HOST", "localhost")
	cfg.Database.Postgres.User = envOr("DB_USER", "postgres")
	cfg.Database.Postgres.Password = envOr("DB_PASSWORD", "postgres")
	cfg.Database.Redis.Address = envOr("REDIS_ADDRESS", "localhost:6379")
	return cfg
}

type laptopSource struct{}

func (laptopSource) Name() string { return "e2e" }

func (laptopSource) Search(_ context.Context, _ string) ([]models.Product, error) {
	products := make([]models.Product, 0, 6)
	for i, site := range []string{"Trendyol", "Hepsiburada", "Amazon", "N11", "Teknosa", "MediaMarkt"} {
		products = append(products, models.Product{
			ID:    fmt.Sprintf("e2e_%d", i),
			Title: fmt.Sprintf("Lenovo IdeaPad Laptop %d", 14+i),
			Price: "25.000 TL",
			Site:  site,
			Link:  "https://example.com/laptop",
		})
	}
	return products, nil
}

// ==========================
// Connectivity
// ==========================
func TestServicesConnectivity(t *testing.T) {
	cfg := loadConfig(t)
	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err, "❌ PostgreSQL client creation failed")
	defer pg.Close()
	assert.NoError(t, pg.Ping(ctx), "❌ PostgreSQL ping failed")
	t.Log("✅ PostgreSQL connected")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err, "❌ Redis client creation failed")
	defer rdb.Close()
	assert.NoError(t, rdb.Ping(ctx), "❌ Redis ping failed")
	t.Log("✅ Redis connected")

	assert.NoError(t, zeebe.HealthCheck(ctx), "❌ Zeebe topology request failed")
	t.Log("✅ Zeebe connected")
}

// ==========================
// History store
// ==========================
func TestHistoryStore_RoundTrip(t *testing.T) {
	cfg := loadConfig(t)
	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()
	_, err = pg.DB.ExecContext(ctx, history.Schema)
	require.NoError(t, err)

	store := history.NewPostgresStore(pg.DB)
	session := fmt.Sprintf("e2e-%d", time.Now().UnixNano())

	for _, turn := range []models.ConversationTurn{
		{SessionID: session, Role: models.RoleUser, Content: "laptop öneri"},
		{SessionID: session, Role: models.RoleAssistant, Content: "5 ürün buldum", Summary: &models.IntentResult{Intent: models.IntentShopping, Query: "laptop"}},
	} {
		_, err := store.Append(ctx, turn)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	turns, err := store.Recent(ctx, session, 3)
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleUser, turns[0].Role)
	require.NotNil(t, turns[1].Summary)
	assert.Equal(t, "laptop", turns[1].Summary.Query)
}

// ==========================
// Redis product cache
// ==========================
func TestRedisCache_RoundTrip(t *testing.T) {
	cfg := loadConfig(t)
	ctx := context.Background()

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	defer rdb.Close()

	c := cache.NewRedisCache(rdb.Client, "e2e:products:", time.Minute)
	products, _ := laptopSource{}.Search(ctx, "laptop")

	key := cache.Key(fmt.Sprintf("laptop %d", time.Now().UnixNano()), false)
	require.NoError(t, c.Set(ctx, key, products))

	got, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, products, got)
}

// ==========================
// Process
// ==========================
func TestShoppingAssistantProcess(t *testing.T) {
	cfg := loadConfig(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	log := logger.NewTestLogger(t)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	defer pg.Close()
	_, err = pg.DB.ExecContext(ctx, history.Schema)
	require.NoError(t, err)
	store := history.NewPostgresStore(pg.DB)

	client := zeebe.GetClient()
	_, err = client.NewDeployResourceCommand().AddResourceFile("../../bpmn/shopping-assistant.bpmn").Send(ctx)
	require.NoError(t, err, "❌ BPMN deployment failed")
	t.Log("✅ Deployed shopping-assistant.bpmn")

	reg, err := registry.LoadRegistry("../../configs/activity-registry.json")
	require.NoError(t, err)

	orchestrator := intent.NewOrchestrator(nil, intent.Options{}, log)
	products := aggregator.New(laptopSource{}, []sources.Source{}, cache.NewMemoryCache(time.Minute), aggregator.Options{}, log)

	handlers := map[string]camunda.JobHandler{
		aum.TaskType: aum.NewHandler(aum.LoadConfig(cfg.Assistant), orchestrator, store, log).Handle,
		dfi.TaskType: dfi.NewHandler(dfi.LoadConfig(cfg.Assistant), log).Handle,
		sp.TaskType:  sp.NewHandler(sp.LoadConfig(), products, log).Handle,
		rct.TaskType: rct.NewHandler(rct.LoadConfig(), store, log).Handle,
	}
	for taskType, handle := range handlers {
		activity, ok := reg.Find(taskType)
		require.True(t, ok, taskType)
		w, err := camunda.NewWorker(taskType, handle, camunda.WorkerOptions{MaxJobsActive: 4}, log).WithActivity(activity)
		require.NoError(t, err)
		w.Open(client)
		defer w.Close()
	}

	tests := []struct {
		name           string
		message        string
		validateOutput func(t *testing.T, vars map[string]interface{})
	}{
		{
			name:    "small talk replies without search",
			message: "merhaba",
			validateOutput: func(t *testing.T, vars map[string]interface{}) {
				assert.Equal(t, "chat", vars["intent"])
				assert.Equal(t, false, vars["shouldSearch"])
				assert.NotEmpty(t, vars["response"])
			},
		},
		{
			name:    "shopping message searches products",
			message: "laptop öneri",
			validateOutput: func(t *testing.T, vars map[string]interface{}) {
				assert.Equal(t, "shopping", vars["intent"])
				assert.Equal(t, true, vars["found"])
				assert.NotEmpty(t, vars["products"])
				assert.NotEmpty(t, vars["reply"])
			},
		},
		{
			name:    "flight message routes to the flight form",
			message: "İstanbul'dan Ankara'ya uçak bileti",
			validateOutput: func(t *testing.T, vars map[string]interface{}) {
				assert.Equal(t, true, vars["routeToFlight"])
				assert.Nil(t, vars["intent"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vars := runProcess(ctx, t, client, map[string]interface{}{
				"sessionId": fmt.Sprintf("e2e-%d", time.Now().UnixNano()),
				"message":   tt.message,
			})
			tt.validateOutput(t, vars)
		})
	}
}

func runProcess(ctx context.Context, t *testing.T, client zbc.Client, variables map[string]interface{}) map[string]interface{} {
	t.Helper()
	cmd, err := client.NewCreateInstanceCommand().
		BPMNProcessId("shopping-assistant").
		LatestVersion().
		VariablesFromMap(variables)
	require.NoError(t, err)

	res, err := cmd.WithResult().Send(ctx)
	require.NoError(t, err, "❌ process instance failed")

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(res.GetVariables()), &out))
	return out
}
