package accounts

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/collabhub/internal/app/store/audit"
	userstore "github.com/dalemusser/collabhub/internal/app/store/users"
	"github.com/dalemusser/collabhub/internal/app/system/authz"
	"github.com/dalemusser/collabhub/internal/app/system/jsonresp"
	"github.com/dalemusser/collabhub/internal/app/system/paging"
	"github.com/dalemusser/collabhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ServeMe handles GET /users/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		jsonresp.Unauthorized(w, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonresp.NotFound(w, "Account not found.")
		return
	}
	if err != nil {
		jsonresp.ServerError(w, h.Log, "load profile", err)
		return
	}
	jsonresp.OK(w, userResponse{User: *u})
}

// HandleUpdateProfile handles PATCH /users/me. Omitted fields are kept.
func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		jsonresp.Unauthorized(w, "sign in required")
		return
	}

	var body profileBody
	if err := jsonresp.Decode(r, &body); err != nil {
		jsonresp.BadRequest(w, "Request body must be valid JSON.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, uid, userstore.ProfileUpdate{
		FullName:  body.Name,
		Degree:    body.Degree,
		RegNumber: body.RegNumber,
		Phone:     body.Phone,
	})
	switch {
	case userstore.IsValidationErr(err):
		jsonresp.BadRequest(w, err.Error())
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		jsonresp.NotFound(w, "Account not found.")
		return
	case err != nil:
		jsonresp.ServerError(w, h.Log, "update profile", err)
		return
	}

	// Keep the cached session name in step with the profile.
	if err := h.signIn(w, r, *u); err != nil {
		h.Log.Warn("update profile: session refresh failed", zap.Error(err))
	}
	jsonresp.OK(w, userResponse{User: *u})
}

// HandleDelete handles DELETE /users/me and signs the user out.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		jsonresp.Unauthorized(w, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	n, err := h.Users.Delete(ctx, uid)
	if err != nil {
		jsonresp.ServerError(w, h.Log, "delete account", err)
		return
	}
	if n == 0 {
		jsonresp.NotFound(w, "Account not found.")
		return
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("delete account: sign out failed", zap.Error(err))
	}
	h.Log.Info("account deleted", zap.String("user_id", uid.Hex()))
	h.Audit.AccountDeleted(ctx, r, uid)
	jsonresp.Message(w, "Account deleted")
}

// ServeActivity handles GET /users/me/activity: the caller's own audit
// trail, newest first.
func (h *Handler) ServeActivity(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		jsonresp.Unauthorized(w, "sign in required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Events.Query(ctx, audit.QueryFilter{
		UserID: &uid,
		Limit:  int64(paging.ParseLimit(r)),
	})
	if err != nil {
		jsonresp.ServerError(w, h.Log, "load activity", err)
		return
	}
	jsonresp.OK(w, events)
}
