// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/collabhub/internal/app/store/audit"
	userstore "github.com/dalemusser/collabhub/internal/app/store/users"
	"github.com/dalemusser/collabhub/internal/app/system/auditlog"
	"github.com/dalemusser/collabhub/internal/app/system/ratelimit"
	"github.com/dalemusser/collabhub/internal/app/system/tasks"
	"github.com/dalemusser/collabhub/internal/app/system/timeouts"
	"github.com/dalemusser/collabhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// runtimeState is built in Startup and shared with BuildHandler and
// Shutdown, which WAFFLE calls with the same config but no return channel.
type runtimeState struct {
	audit        *auditlog.Logger
	joinLimiter  *ratelimit.Limiter
	loginLimiter *ratelimit.Limiter
	scheduler    *workers.Scheduler
}

var state runtimeState

// Startup configures timeouts, creates the shared limiters and starts the
// background job scheduler.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from env", zap.Int("count", n))
	}

	state.audit = newAuditLogger(appCfg, deps, logger)
	state.joinLimiter = ratelimit.New(appCfg.JoinRequestRate, appCfg.JoinRequestBurst)
	state.loginLimiter = ratelimit.New(appCfg.LoginRate, appCfg.LoginBurst)

	jobs := []tasks.Job{
		tasks.ResetNonceCleanupJob(userstore.New(deps.MongoDatabase), logger, appCfg.ResetCleanupSchedule),
		tasks.RateLimitSweepJob(logger, state.joinLimiter, state.loginLimiter),
	}
	if appCfg.AuditRetention > 0 {
		jobs = append(jobs, tasks.AuditRetentionJob(audit.New(deps.MongoDatabase), logger, appCfg.AuditRetention))
	}

	sched := workers.NewScheduler(logger, appCfg.JobTimeout)
	for _, job := range jobs {
		if err := sched.Add(job); err != nil {
			return err
		}
	}
	sched.Start()
	state.scheduler = sched

	return nil
}

func newAuditLogger(appCfg AppConfig, deps DBDeps, logger *zap.Logger) *auditlog.Logger {
	return auditlog.New(audit.New(deps.MongoDatabase), logger.Named("audit"), auditlog.Config{
		Auth:   appCfg.AuditLogAuth,
		Collab: appCfg.AuditLogCollab,
	})
}
