package accounts

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/collabhub/internal/app/store/users"
	"github.com/dalemusser/collabhub/internal/app/system/auth"
	"github.com/dalemusser/collabhub/internal/app/system/jsonresp"
	"github.com/dalemusser/collabhub/internal/app/system/ratelimit"
	"github.com/dalemusser/collabhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleLogin handles POST /users/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ip := ratelimit.ClientIP(r)
	if h.LoginLimiter != nil && !h.LoginLimiter.Allow(ip) {
		h.Log.Warn("login rate limited", zap.String("ip", ip))
		h.Audit.LoginRateLimited(r.Context(), r)
		jsonresp.Error(w, http.StatusTooManyRequests, "rate_limited", "Too many sign-in attempts. Please wait a moment and try again.")
		return
	}

	var body loginBody
	if err := jsonresp.Decode(r, &body); err != nil {
		jsonresp.BadRequest(w, "Request body must be valid JSON.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, body.Email, body.Password)
	if errors.Is(err, userstore.ErrBadCredentials) {
		h.Log.Info("login failed", zap.String("ip", ip))
		h.Audit.LoginFailed(ctx, r, body.Email, "invalid credentials")
		jsonresp.Error(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password.")
		return
	}
	if err != nil {
		jsonresp.ServerError(w, h.Log, "login", err)
		return
	}

	if err := h.signIn(w, r, *u); err != nil {
		jsonresp.ServerError(w, h.Log, "login session", err)
		return
	}
	if h.LoginLimiter != nil {
		h.LoginLimiter.Reset(ip)
	}
	h.Log.Info("user logged in", zap.String("user_id", u.ID.Hex()))
	h.Audit.LoginSuccess(ctx, r, u.ID)
	jsonresp.OK(w, userResponse{User: *u})
}

// HandleLogout handles POST /users/logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Audit.Logout(r.Context(), r, u.ID)
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("logout: session save failed", zap.Error(err))
	}
	jsonresp.Message(w, "Signed out")
}
