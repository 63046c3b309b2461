// internal/app/features/accounts/routes.go
package accounts

import (
	"github.com/dalemusser/collabhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.HandleSignup)
	r.Post("/login", h.HandleLogin)
	r.Post("/logout", h.HandleLogout)
	r.Post("/password-reset", h.HandleResetRequest)
	r.Post("/password-reset/confirm", h.HandleResetConfirm)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Get("/me", h.ServeMe)
		pr.Patch("/me", h.HandleUpdateProfile)
		pr.Delete("/me", h.HandleDelete)
		pr.Patch("/me/password", h.HandleChangePassword)
		pr.Get("/me/activity", h.ServeActivity)
	})

	return r
}
