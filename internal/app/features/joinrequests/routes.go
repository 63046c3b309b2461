package joinrequests

import (
	"github.com/dalemusser/collabhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts submit, list and decide. All of them need a session.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Post("/", h.Submit)
	r.Get("/", h.List)
	r.Patch("/", h.Decide)
	return r
}
