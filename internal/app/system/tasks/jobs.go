// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/collabhub/internal/app/store/audit"
	userstore "github.com/dalemusser/collabhub/internal/app/store/users"
	"github.com/dalemusser/collabhub/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Job is a named unit of background work run on a cron schedule.
type Job struct {
	Name     string
	Schedule string // robfig/cron spec, e.g. "@every 15m" or "0 * * * *"
	Run      func(ctx context.Context) error
}

// ResetNonceCleanupJob clears password-reset state whose expiry has passed.
// Expired nonces are already rejected on use; this keeps them from
// lingering on user documents.
func ResetNonceCleanupJob(users *userstore.Store, logger *zap.Logger, schedule string) Job {
	return Job{
		Name:     "reset-nonce-cleanup",
		Schedule: schedule,
		Run: func(ctx context.Context) error {
			count, err := users.ClearExpiredResetNonces(ctx, time.Now())
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("cleared expired password resets", zap.Int64("count", count))
			}
			return nil
		},
	}
}

// RateLimitSweepJob drops idle buckets from the given limiters so their
// maps do not grow without bound.
func RateLimitSweepJob(logger *zap.Logger, limiters ...*ratelimit.Limiter) Job {
	return Job{
		Name:     "ratelimit-sweep",
		Schedule: "@every 5m",
		Run: func(ctx context.Context) error {
			total := 0
			for _, l := range limiters {
				if l != nil {
					total += l.Sweep()
				}
			}
			if total > 0 {
				logger.Debug("swept idle rate-limit buckets", zap.Int("count", total))
			}
			return nil
		},
	}
}

// AuditRetentionJob deletes audit events older than retention.
func AuditRetentionJob(events *audit.Store, logger *zap.Logger, retention time.Duration) Job {
	return Job{
		Name:     "audit-retention",
		Schedule: "@daily",
		Run: func(ctx context.Context) error {
			n, err := events.DeleteBefore(ctx, time.Now().Add(-retention))
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("pruned audit events", zap.Int64("count", n), zap.Duration("retention", retention))
			}
			return nil
		},
	}
}
