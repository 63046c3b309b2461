// internal/domain/models/joinrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Join request statuses. pending is the only non-terminal state.
const (
	StatusPending = "pending"
	StatusAccept  = "accept"
	StatusDecline = "decline"
)

// IsDecision reports whether s is a terminal status an owner may apply.
func IsDecision(s string) bool {
	return s == StatusAccept || s == StatusDecline
}

// JoinRequest is one user's petition to join one target.
//
// FromUserID and TargetID are lookup references only; the request does not
// own either document. OwnerID is copied from the target's leader at
// submission time.
type JoinRequest struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Kind       TargetKind         `bson:"kind" json:"type"`
	FromUserID primitive.ObjectID `bson:"from_user_id" json:"FromUserId"`
	TargetID   primitive.ObjectID `bson:"target_id" json:"projectId"`
	OwnerID    primitive.ObjectID `bson:"owner_id" json:"leader"`
	Message    string             `bson:"message" json:"message"`
	Role       string             `bson:"role,omitempty" json:"role,omitempty"`
	Status     string             `bson:"status" json:"status"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	DecidedAt *time.Time `bson:"decided_at,omitempty" json:"decidedAt,omitempty"`
}
