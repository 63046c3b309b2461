package targets

import (
	"context"
	"net/http"

	"github.com/dalemusser/collabhub/internal/app/system/authz"
	"github.com/dalemusser/collabhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/collabhub/internal/app/system/jsonresp"
	"github.com/dalemusser/collabhub/internal/app/system/normalize"
	"github.com/dalemusser/collabhub/internal/app/system/timeouts"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.uber.org/zap"
)

// HandleCreate handles POST /. The caller becomes the leader.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	leaderID, ok := authz.UserID(r)
	if !ok {
		jsonresp.Unauthorized(w, "sign in required")
		return
	}

	var body createBody
	if err := jsonresp.Decode(r, &body); err != nil {
		jsonresp.BadRequest(w, "Request body must be valid JSON.")
		return
	}

	name := normalize.Name(htmlsanitize.StripTags(body.Name))
	if name == "" {
		jsonresp.BadRequest(w, "name is required.")
		return
	}
	if body.TeamSize < 1 {
		jsonresp.BadRequest(w, "teamSize must be at least 1.")
		return
	}
	recruiting := true
	if body.IsRecruiting != nil {
		recruiting = *body.IsRecruiting
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	t, err := h.Store.Create(ctx, models.Target{
		Name:         name,
		Description:  htmlsanitize.Sanitize(htmlsanitize.Truncate(body.Description, MaxDescriptionLen)),
		LeaderID:     leaderID,
		TeamSize:     body.TeamSize,
		IsRecruiting: recruiting,
	})
	if err != nil {
		jsonresp.ServerError(w, h.Log, "create "+string(h.Kind), err)
		return
	}

	h.Log.Info("target created", zap.String("target_id", t.ID.Hex()), zap.String("leader_id", leaderID.Hex()))
	h.Audit.TargetCreated(ctx, r, leaderID, t)
	jsonresp.Created(w, t)
}
