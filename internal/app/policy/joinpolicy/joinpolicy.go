// Package joinpolicy provides the rules around join requests.
//
// Rules:
//   - A user may not ask to join a target they were already accepted into.
//     Pending and declined requests do not block a new one.
//   - Only the target's leader (the request owner) can see a request in
//     their inbox or decide it.
package joinpolicy

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/collabhub/internal/app/system/authz"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrMissingID is returned when a required identifier is the zero ObjectID.
var ErrMissingID = errors.New("requester and target are required")

// AcceptedLookup is the slice of the join-request store the duplicate check needs.
type AcceptedLookup interface {
	HasAccepted(ctx context.Context, fromUserID, targetID primitive.ObjectID) (bool, error)
}

// HasAcceptedRequest reports whether requesterID already holds an accepted
// request for targetID.
func HasAcceptedRequest(ctx context.Context, lookup AcceptedLookup, requesterID, targetID primitive.ObjectID) (bool, error) {
	if requesterID.IsZero() || targetID.IsZero() {
		return false, ErrMissingID
	}
	return lookup.HasAccepted(ctx, requesterID, targetID)
}

// IsOwner reports whether actorID owns jr and so may accept or decline it.
func IsOwner(actorID primitive.ObjectID, jr models.JoinRequest) bool {
	return !actorID.IsZero() && actorID == jr.OwnerID
}

// CanListInbox reports whether the signed-in user may list pending
// requests addressed to ownerID.
func CanListInbox(r *http.Request, ownerID primitive.ObjectID) bool {
	return !ownerID.IsZero() && authz.IsSelf(r, ownerID.Hex())
}
