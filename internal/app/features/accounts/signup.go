package accounts

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/dalemusser/collabhub/internal/app/store/users"
	"github.com/dalemusser/collabhub/internal/app/system/auth"
	"github.com/dalemusser/collabhub/internal/app/system/jsonresp"
	"github.com/dalemusser/collabhub/internal/app/system/timeouts"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleSignup handles POST /users/signup and signs the new user in.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var body signupBody
	if err := jsonresp.Decode(r, &body); err != nil {
		jsonresp.BadRequest(w, "Request body must be valid JSON.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, userstore.NewUser{
		Email:     body.Email,
		FullName:  body.Name,
		Password:  body.Password,
		Degree:    body.Degree,
		RegNumber: body.RegNumber,
		Phone:     body.Phone,
	})
	switch {
	case userstore.IsValidationErr(err):
		jsonresp.BadRequest(w, err.Error())
		return
	case errors.Is(err, userstore.ErrDuplicateEmail):
		jsonresp.Error(w, http.StatusConflict, "email_taken", "An account with this email already exists.")
		return
	case err != nil:
		jsonresp.ServerError(w, h.Log, "signup", err)
		return
	}

	if err := h.signIn(w, r, u); err != nil {
		jsonresp.ServerError(w, h.Log, "signup session", err)
		return
	}
	h.Log.Info("user signed up", zap.String("user_id", u.ID.Hex()))
	h.Audit.Signup(ctx, r, u.ID)
	jsonresp.Created(w, userResponse{User: u})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, u models.User) error {
	return h.SessionMgr.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
	})
}
