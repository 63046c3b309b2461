package accounts

import (
	"context"
	"errors"
	"net/http"
	"time"

	userstore "github.com/dalemusser/collabhub/internal/app/store/users"
	"github.com/dalemusser/collabhub/internal/app/system/authz"
	"github.com/dalemusser/collabhub/internal/app/system/inputval"
	"github.com/dalemusser/collabhub/internal/app/system/jsonresp"
	"github.com/dalemusser/collabhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const resetSentMsg = "If that email is registered, a reset link has been sent."

// HandleChangePassword handles PATCH /users/me/password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	uid, ok := authz.UserID(r)
	if !ok {
		jsonresp.Unauthorized(w, "sign in required")
		return
	}

	var body passwordBody
	if err := jsonresp.Decode(r, &body); err != nil {
		jsonresp.BadRequest(w, "Request body must be valid JSON.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Users.ChangePassword(ctx, uid, body.CurrentPassword, body.NewPassword)
	switch {
	case err == nil:
	case errors.Is(err, userstore.ErrBadCredentials):
		jsonresp.BadRequest(w, "Current password is incorrect.")
		return
	case userstore.IsValidationErr(err):
		jsonresp.BadRequest(w, err.Error())
		return
	case errors.Is(err, mongo.ErrNoDocuments):
		jsonresp.NotFound(w, "Account not found.")
		return
	default:
		jsonresp.ServerError(w, h.Log, "change password", err)
		return
	}

	h.Log.Info("password changed", zap.String("user_id", uid.Hex()))
	h.Audit.PasswordChanged(ctx, r, uid)
	jsonresp.Message(w, "Password updated")
}

// HandleResetRequest handles POST /users/password-reset. The response is
// the same whether or not the email is known.
func (h *Handler) HandleResetRequest(w http.ResponseWriter, r *http.Request) {
	var body resetRequestBody
	if err := jsonresp.Decode(r, &body); err != nil {
		jsonresp.BadRequest(w, "Request body must be valid JSON.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, body.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonresp.OK(w, resetResponse{Message: resetSentMsg})
		return
	}
	if err != nil {
		jsonresp.ServerError(w, h.Log, "reset lookup", err)
		return
	}

	token, nonce, err := h.Reset.Issue(u.ID.Hex())
	if err != nil {
		jsonresp.ServerError(w, h.Log, "issue reset token", err)
		return
	}
	if _, err := h.Users.SetResetNonce(ctx, u.Email, nonce, time.Now().Add(h.Reset.TTL())); err != nil {
		jsonresp.ServerError(w, h.Log, "store reset nonce", err)
		return
	}

	h.Log.Info("password reset issued", zap.String("user_id", u.ID.Hex()))
	h.Audit.PasswordResetIssued(ctx, r, u.ID)
	resp := resetResponse{Message: resetSentMsg}
	if h.ExposeResetToken {
		resp.Token = token
	}
	jsonresp.OK(w, resp)
}

// HandleResetConfirm handles POST /users/password-reset/confirm.
func (h *Handler) HandleResetConfirm(w http.ResponseWriter, r *http.Request) {
	var body resetConfirmBody
	if err := jsonresp.Decode(r, &body); err != nil {
		jsonresp.BadRequest(w, "Request body must be valid JSON.")
		return
	}

	claims, err := h.Reset.Parse(body.Token)
	if err != nil {
		h.Audit.PasswordReset(r.Context(), r, nil, "token invalid")
		jsonresp.Error(w, http.StatusBadRequest, "reset_invalid", "This reset link is invalid or has expired.")
		return
	}
	uid, ok := inputval.ObjectID(claims.UserID)
	if !ok {
		jsonresp.Error(w, http.StatusBadRequest, "reset_invalid", "This reset link is invalid or has expired.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Users.ResetPassword(ctx, uid, claims.Nonce, body.Password)
	switch {
	case err == nil:
	case userstore.IsValidationErr(err):
		jsonresp.BadRequest(w, err.Error())
		return
	case errors.Is(err, userstore.ErrResetInvalid):
		h.Audit.PasswordReset(ctx, r, &uid, "nonce rejected")
		jsonresp.Error(w, http.StatusBadRequest, "reset_invalid", "This reset link is invalid or has expired.")
		return
	default:
		jsonresp.ServerError(w, h.Log, "reset password", err)
		return
	}

	h.Log.Info("password reset completed", zap.String("user_id", uid.Hex()))
	h.Audit.PasswordReset(ctx, r, &uid, "")
	jsonresp.Message(w, "Password updated")
}
