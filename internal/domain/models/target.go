// internal/domain/models/target.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetKind names the collaboration target a join request points at.
type TargetKind string

const (
	KindProject TargetKind = "project"
	KindStartup TargetKind = "startup"
	KindTeam    TargetKind = "team"
)

// TargetKinds lists every kind in a stable order.
var TargetKinds = []TargetKind{KindProject, KindStartup, KindTeam}

// ParseTargetKind returns the kind for s and whether it is known.
func ParseTargetKind(s string) (TargetKind, bool) {
	switch TargetKind(s) {
	case KindProject, KindStartup, KindTeam:
		return TargetKind(s), true
	}
	return "", false
}

// Collection returns the MongoDB collection that stores targets of this kind.
func (k TargetKind) Collection() string {
	switch k {
	case KindStartup:
		return "startups"
	case KindTeam:
		return "teams"
	default:
		return "projects"
	}
}

// RoleRequired reports whether a join request for this kind must name a role.
func (k TargetKind) RoleRequired() bool {
	return k == KindProject || k == KindStartup
}

// Member is one entry in a target's members array.
type Member struct {
	UserID primitive.ObjectID `bson:"user_id" json:"UserId"`
	Role   string             `bson:"role" json:"role"`
}

// Target is a project, startup, or team that students can ask to join.
// Projects, startups and teams share this shape and live in separate
// collections (see TargetKind.Collection).
//
// Members is owned by the target document; entries have no lifecycle of
// their own and are only appended when a join request is accepted.
type Target struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	Kind         TargetKind         `bson:"kind" json:"type"`
	Name         string             `bson:"name" json:"name"`
	NameCI       string             `bson:"name_ci" json:"-"`
	Description  string             `bson:"description" json:"description"`
	LeaderID     primitive.ObjectID `bson:"leader_id" json:"leader"`
	TeamSize     int                `bson:"team_size" json:"teamSize"`
	IsRecruiting bool               `bson:"is_recruiting" json:"isRecruiting"`
	Members      []Member           `bson:"members" json:"members"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
