package targets

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/collabhub/internal/app/system/inputval"
	"github.com/dalemusser/collabhub/internal/app/system/jsonresp"
	"github.com/dalemusser/collabhub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ServeView handles GET /{id}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Store.GetByID(ctx, id)
	if errors.Is(err, mongo.ErrNoDocuments) {
		jsonresp.NotFound(w, "Not found.")
		return
	}
	if err != nil {
		jsonresp.ServerError(w, h.Log, "load "+string(h.Kind), err)
		return
	}
	jsonresp.OK(w, t)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, ok := inputval.ObjectID(chi.URLParam(r, "id"))
	if !ok {
		jsonresp.BadRequest(w, "Invalid id.")
	}
	return id, ok
}
