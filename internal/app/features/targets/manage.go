package targets

import (
	"context"
	"errors"
	"net/http"

	targetstore "github.com/dalemusser/collabhub/internal/app/store/targets"
	"github.com/dalemusser/collabhub/internal/app/system/authz"
	"github.com/dalemusser/collabhub/internal/app/system/jsonresp"
	"github.com/dalemusser/collabhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HandleSetRecruiting handles PATCH /{id}/recruiting.
func (h *Handler) HandleSetRecruiting(w http.ResponseWriter, r *http.Request) {
	leaderID, ok := authz.UserID(r)
	if !ok {
		jsonresp.Unauthorized(w, "sign in required")
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var body recruitingBody
	if err := jsonresp.Decode(r, &body); err != nil || body.IsRecruiting == nil {
		jsonresp.BadRequest(w, "isRecruiting (true or false) is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.SetRecruiting(ctx, id, leaderID, *body.IsRecruiting); err != nil {
		h.writeLeaderErr(w, "set recruiting", err)
		return
	}
	h.Log.Info("recruiting changed", zap.String("target_id", id.Hex()), zap.Bool("recruiting", *body.IsRecruiting))
	jsonresp.Message(w, "Recruiting status updated")
}

// HandleDelete handles DELETE /{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	leaderID, ok := authz.UserID(r)
	if !ok {
		jsonresp.Unauthorized(w, "sign in required")
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Store.Delete(ctx, id, leaderID); err != nil {
		h.writeLeaderErr(w, "delete", err)
		return
	}
	h.Log.Info("target deleted", zap.String("target_id", id.Hex()), zap.String("leader_id", leaderID.Hex()))
	h.Audit.TargetDeleted(ctx, r, leaderID, h.Kind, id)
	jsonresp.Message(w, "Deleted")
}

func (h *Handler) writeLeaderErr(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		jsonresp.NotFound(w, "Not found.")
	case errors.Is(err, targetstore.ErrNotLeader):
		jsonresp.Forbidden(w, "Only the leader can do that.")
	default:
		jsonresp.ServerError(w, h.Log, op+" "+string(h.Kind), err)
	}
}
