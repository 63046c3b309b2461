// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/collabhub/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// appConfigKeys are loaded from config files (mongo_uri), environment
// variables (COLLABHUB_MONGO_URI) and flags (--mongo_uri).
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "collabhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "collabhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},

	{Name: "join_request_rate", Default: "0.2", Desc: "Join requests per second allowed per user"},
	{Name: "join_request_burst", Default: 5, Desc: "Join request burst allowed per user"},
	{Name: "login_rate", Default: "0.5", Desc: "Login attempts per second allowed per client IP"},
	{Name: "login_burst", Default: 10, Desc: "Login attempt burst allowed per client IP"},

	{Name: "reset_token_ttl", Default: "1h", Desc: "Password reset token lifetime"},
	{Name: "reset_cleanup_schedule", Default: "@every 15m", Desc: "Cron schedule for clearing expired password resets"},
	{Name: "audit_log_auth", Default: "all", Desc: "Account event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_collab", Default: "all", Desc: "Project/join-request event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_retention", Default: "2160h", Desc: "How long audit events are kept (0 keeps forever)"},
	{Name: "job_timeout", Default: "2m", Desc: "Upper bound on a single background job run"},
}

// LoadConfig loads WAFFLE core config and CollabHub's app config.
// Precedence is flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "COLLABHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	joinRate, err := parseRate(appValues.String("join_request_rate"))
	if err != nil {
		return nil, AppConfig{}, fmt.Errorf("join_request_rate: %w", err)
	}
	loginRate, err := parseRate(appValues.String("login_rate"))
	if err != nil {
		return nil, AppConfig{}, fmt.Errorf("login_rate: %w", err)
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		JoinRequestRate:  joinRate,
		JoinRequestBurst: appValues.Int("join_request_burst"),
		LoginRate:        loginRate,
		LoginBurst:       appValues.Int("login_burst"),

		ResetTokenTTL:        appValues.Duration("reset_token_ttl", time.Hour),
		ResetCleanupSchedule: appValues.String("reset_cleanup_schedule"),
		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditLogCollab: appValues.String("audit_log_collab"),
		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),

		JobTimeout: appValues.Duration("job_timeout", 2*time.Minute),
	}

	return coreCfg, appCfg, nil
}

func parseRate(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// ValidateConfig rejects settings that would only fail later at runtime.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.SessionKey == "" {
		return errors.New("session_key must be set")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < 32 {
		return errors.New("session_key must be at least 32 bytes in prod")
	}
	if appCfg.JoinRequestRate <= 0 || appCfg.JoinRequestBurst <= 0 {
		return fmt.Errorf("join request limit must be positive (rate=%g burst=%d)", appCfg.JoinRequestRate, appCfg.JoinRequestBurst)
	}
	if appCfg.LoginRate <= 0 || appCfg.LoginBurst <= 0 {
		return fmt.Errorf("login limit must be positive (rate=%g burst=%d)", appCfg.LoginRate, appCfg.LoginBurst)
	}
	if appCfg.ResetTokenTTL <= 0 {
		return errors.New("reset_token_ttl must be positive")
	}
	for key, v := range map[string]string{"audit_log_auth": appCfg.AuditLogAuth, "audit_log_collab": appCfg.AuditLogCollab} {
		if !auditlog.ValidDestination(v) {
			return fmt.Errorf("%s must be all, db, log or off (got %q)", key, v)
		}
	}
	if appCfg.AuditRetention < 0 {
		return errors.New("audit_retention must not be negative")
	}
	if _, err := cron.ParseStandard(appCfg.ResetCleanupSchedule); err != nil {
		return fmt.Errorf("reset_cleanup_schedule %q: %w", appCfg.ResetCleanupSchedule, err)
	}
	return nil
}
