package joinrequests

import (
	"time"

	joinrequeststore "github.com/dalemusser/collabhub/internal/app/store/joinrequests"
	"github.com/dalemusser/collabhub/internal/app/system/normalize"
	"github.com/dalemusser/collabhub/internal/domain/models"
)

// submitBody accepts the target id under the key matching its type.
// user and leader are optional echoes of the signed-in user and the
// target's leader.
type submitBody struct {
	Type      string `json:"type"`
	ProjectID string `json:"projectId"`
	StartupID string `json:"startupId"`
	TeamID    string `json:"teamId"`
	User      string `json:"user"`
	Leader    string `json:"leader"`
	Role      string `json:"role"`
	Message   string `json:"message"`
}

// targetID returns the id sent under the key matching the declared type.
// An unknown type yields "" and is rejected by validation.
func (b submitBody) targetID() string {
	kind, ok := models.ParseTargetKind(normalize.Kind(b.Type))
	if !ok {
		return ""
	}
	switch kind {
	case models.KindStartup:
		return b.StartupID
	case models.KindTeam:
		return b.TeamID
	default:
		return b.ProjectID
	}
}

type decideBody struct {
	RequestID string `json:"requestId"`
	Status    string `json:"status"`
	UserID    string `json:"userId"`
}

type submitResponse struct {
	JoinRequest models.JoinRequest `json:"joinRequest"`
}

type ref struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// pendingView is one inbox entry.
type pendingView struct {
	ID         string    `json:"_id"`
	FromUserID ref       `json:"FromUserId"`
	ProjectID  ref       `json:"projectId"`
	Type       string    `json:"type"`
	Role       string    `json:"role"`
	Message    string    `json:"message"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toPendingViews(rows []joinrequeststore.PendingRow) []pendingView {
	out := make([]pendingView, 0, len(rows))
	for _, r := range rows {
		out = append(out, pendingView{
			ID:         r.ID.Hex(),
			FromUserID: ref{ID: r.FromUserID.Hex(), Name: r.FromName},
			ProjectID:  ref{ID: r.TargetID.Hex(), Name: r.TargetName},
			Type:       string(r.Kind),
			Role:       r.Role,
			Message:    r.Message,
			Status:     r.Status,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out
}
