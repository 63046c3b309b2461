// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountsfeature "github.com/dalemusser/collabhub/internal/app/features/accounts"
	healthfeature "github.com/dalemusser/collabhub/internal/app/features/health"
	joinrequestsfeature "github.com/dalemusser/collabhub/internal/app/features/joinrequests"
	targetsfeature "github.com/dalemusser/collabhub/internal/app/features/targets"
	userstore "github.com/dalemusser/collabhub/internal/app/store/users"
	"github.com/dalemusser/collabhub/internal/app/system/auth"
	"github.com/dalemusser/collabhub/internal/app/system/ratelimit"
	"github.com/dalemusser/collabhub/internal/app/system/resettoken"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root router. WAFFLE calls it after Startup,
// so the shared limiters already exist.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies in production only; local dev runs over plain http.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	// Re-read the user on every request so deleted accounts lose their session.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	auditLog, joinLimiter, loginLimiter := state.audit, state.joinLimiter, state.loginLimiter
	if auditLog == nil {
		auditLog = newAuditLogger(appCfg, deps, logger)
	}
	if joinLimiter == nil {
		joinLimiter = ratelimit.New(appCfg.JoinRequestRate, appCfg.JoinRequestBurst)
	}
	if loginLimiter == nil {
		loginLimiter = ratelimit.New(appCfg.LoginRate, appCfg.LoginBurst)
	}

	r := chi.NewRouter()
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	resetSigner := resettoken.NewSigner([]byte(appCfg.SessionKey), appCfg.ResetTokenTTL)
	accountsHandler := accountsfeature.NewHandler(deps.MongoDatabase, sessionMgr, resetSigner, loginLimiter, auditLog, coreCfg.Env == "dev", logger)
	r.Mount("/users", accountsfeature.Routes(accountsHandler, sessionMgr))

	for _, kind := range models.TargetKinds {
		h := targetsfeature.NewHandler(deps.MongoDatabase, kind, auditLog, logger)
		r.Mount("/"+kind.Collection(), targetsfeature.Routes(h, sessionMgr))
	}

	joinHandler := joinrequestsfeature.NewHandler(deps.MongoDatabase, deps.MongoClient, joinLimiter, auditLog, logger)
	r.Mount("/join-request", joinrequestsfeature.Routes(joinHandler, sessionMgr))

	return r, nil
}
