// internal/app/features/targets/routes.go
package targets

import (
	"github.com/dalemusser/collabhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	// Browsing is public.
	r.Get("/", h.ServeList)
	r.Get("/{id}", h.ServeView)

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		pr.Post("/", h.HandleCreate)
		pr.Patch("/{id}/recruiting", h.HandleSetRecruiting)
		pr.Delete("/{id}", h.HandleDelete)
	})

	return r
}
