package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/collabhub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:             "mongodb://localhost:27017",
		MongoDatabase:        "collabhub_test",
		SessionKey:           "test-session-key-0123456789abcdefghijkl",
		SessionName:          "collabhub-test",
		SessionMaxAge:        time.Hour,
		JoinRequestRate:      1,
		JoinRequestBurst:     5,
		LoginRate:            1,
		LoginBurst:           5,
		ResetTokenTTL:        time.Hour,
		ResetCleanupSchedule: "@every 15m",
		AuditLogAuth:         "all",
		AuditLogCollab:       "db",
		AuditRetention:       24 * time.Hour,
		JobTimeout:           time.Minute,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "valid", env: "dev", mutate: func(*AppConfig) {}},
		{name: "bad uri", env: "dev", mutate: func(c *AppConfig) { c.MongoURI = "postgres://nope" }, wantErr: true},
		{name: "empty session key", env: "dev", mutate: func(c *AppConfig) { c.SessionKey = "" }, wantErr: true},
		{name: "short key in prod", env: "prod", mutate: func(c *AppConfig) { c.SessionKey = "short" }, wantErr: true},
		{name: "short key in dev", env: "dev", mutate: func(c *AppConfig) { c.SessionKey = "short" }},
		{name: "zero join rate", env: "dev", mutate: func(c *AppConfig) { c.JoinRequestRate = 0 }, wantErr: true},
		{name: "zero join burst", env: "dev", mutate: func(c *AppConfig) { c.JoinRequestBurst = 0 }, wantErr: true},
		{name: "negative login rate", env: "dev", mutate: func(c *AppConfig) { c.LoginRate = -1 }, wantErr: true},
		{name: "zero reset ttl", env: "dev", mutate: func(c *AppConfig) { c.ResetTokenTTL = 0 }, wantErr: true},
		{name: "bad schedule", env: "dev", mutate: func(c *AppConfig) { c.ResetCleanupSchedule = "every so often" }, wantErr: true},
		{name: "bad audit destination", env: "dev", mutate: func(c *AppConfig) { c.AuditLogCollab = "everywhere" }, wantErr: true},
		{name: "negative retention", env: "dev", mutate: func(c *AppConfig) { c.AuditRetention = -time.Hour }, wantErr: true},
		{name: "cron expression", env: "dev", mutate: func(c *AppConfig) { c.ResetCleanupSchedule = "*/10 * * * *" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, testLogger())
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseRate(t *testing.T) {
	if v, err := parseRate(" 0.25 "); err != nil || v != 0.25 {
		t.Errorf("parseRate(0.25) = %v, %v", v, err)
	}
	if _, err := parseRate("fast"); err == nil {
		t.Error("expected error for non-numeric rate")
	}
}

func TestEnsureSchema_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	if err := EnsureSchema(ctx, &config.CoreConfig{Env: "test"}, validAppConfig(), deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	// Idempotent.
	if err := EnsureSchema(ctx, &config.CoreConfig{Env: "test"}, validAppConfig(), deps, testLogger()); err != nil {
		t.Fatalf("second EnsureSchema failed: %v", err)
	}

	cur, err := db.Collection("join_requests").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("list indexes: %v", err)
	}
	var specs []bson.M
	if err := cur.All(ctx, &specs); err != nil {
		t.Fatalf("decode indexes: %v", err)
	}
	found := false
	for _, s := range specs {
		if s["name"] == "uniq_joinreq_accepted_from_target" {
			found = true
		}
	}
	if !found {
		t.Error("expected uniq_joinreq_accepted_from_target index")
	}
}

func TestStartupShutdown_RunsScheduler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	t.Cleanup(func() { state = runtimeState{} })

	deps := DBDeps{MongoDatabase: db}
	coreCfg := &config.CoreConfig{Env: "test"}

	if err := Startup(ctx, coreCfg, validAppConfig(), deps, testLogger()); err != nil {
		t.Fatalf("Startup failed: %v", err)
	}
	if state.scheduler == nil || state.audit == nil || state.joinLimiter == nil || state.loginLimiter == nil {
		t.Fatal("expected Startup to populate runtime state")
	}

	if err := Shutdown(ctx, coreCfg, validAppConfig(), deps, testLogger()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if state.scheduler != nil {
		t.Error("expected scheduler cleared after Shutdown")
	}
}

func TestBuildHandler_MountsRoutes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { state = runtimeState{} })

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, validAppConfig(), deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler failed: %v", err)
	}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/projects", http.StatusOK},
		{http.MethodGet, "/startups", http.StatusOK},
		{http.MethodGet, "/teams", http.StatusOK},
		{http.MethodGet, "/users/me", http.StatusUnauthorized},
		{http.MethodGet, "/join-request?userId=abc", http.StatusUnauthorized},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Accept", "application/json")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, strings.TrimSpace(rec.Body.String()))
			}
		})
	}
}
