// internal/app/features/accounts/handler.go
package accounts

import (
	"github.com/dalemusser/collabhub/internal/app/store/audit"
	userstore "github.com/dalemusser/collabhub/internal/app/store/users"
	"github.com/dalemusser/collabhub/internal/app/system/auditlog"
	"github.com/dalemusser/collabhub/internal/app/system/auth"
	"github.com/dalemusser/collabhub/internal/app/system/ratelimit"
	"github.com/dalemusser/collabhub/internal/app/system/resettoken"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns sign-up, sign-in and the signed-in user's account.
type Handler struct {
	Users        *userstore.Store
	SessionMgr   *auth.SessionManager
	Reset        *resettoken.Signer
	LoginLimiter *ratelimit.Limiter // keyed by client IP; nil disables
	Audit        *auditlog.Logger   // nil discards
	Events       *audit.Store
	Log          *zap.Logger

	// ExposeResetToken returns the reset token in the response body.
	// Only enabled in dev, where no mail is sent.
	ExposeResetToken bool
}

func NewHandler(
	db *mongo.Database,
	sessionMgr *auth.SessionManager,
	reset *resettoken.Signer,
	loginLimiter *ratelimit.Limiter,
	auditLog *auditlog.Logger,
	exposeResetToken bool,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:            userstore.New(db),
		SessionMgr:       sessionMgr,
		Reset:            reset,
		LoginLimiter:     loginLimiter,
		Audit:            auditLog,
		Events:           audit.New(db),
		ExposeResetToken: exposeResetToken,
		Log:              logger,
	}
}
