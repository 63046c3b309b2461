// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds CollabHub's own settings, loaded in LoadConfig.
// Framework-level settings (ports, TLS, logging, CORS) live in WAFFLE's
// CoreConfig instead.
type AppConfig struct {
	// MongoDB
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie
	SessionKey    string // signs session cookies and reset tokens; must be strong in production
	SessionName   string
	SessionDomain string // blank means current host
	SessionMaxAge time.Duration

	// Join-request submission limit, per signed-in user.
	JoinRequestRate  float64 // tokens per second
	JoinRequestBurst int

	// Login attempts, per client IP.
	LoginRate  float64
	LoginBurst int

	// Password reset
	ResetTokenTTL        time.Duration
	ResetCleanupSchedule string // cron spec

	// Audit logging destinations ("all", "db", "log", "off") and retention.
	AuditLogAuth   string
	AuditLogCollab string
	AuditRetention time.Duration // 0 keeps events forever

	JobTimeout time.Duration
}
