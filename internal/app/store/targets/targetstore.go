// internal/app/store/targets/targetstore.go
package targetstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/collabhub/internal/app/system/paging"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotLeader is returned when a leader-only mutation is attempted by
// someone other than the target's leader.
var ErrNotLeader = errors.New("only the leader can modify this target")

// Store persists one kind of target. Projects, startups and teams share a
// shape but live in separate collections.
type Store struct {
	c    *mongo.Collection
	kind models.TargetKind
}

func New(db *mongo.Database, kind models.TargetKind) *Store {
	return &Store{c: db.Collection(kind.Collection()), kind: kind}
}

// Kind reports which target kind this store serves.
func (s *Store) Kind() models.TargetKind { return s.kind }

func (s *Store) Create(ctx context.Context, t models.Target) (models.Target, error) {
	now := time.Now().UTC()
	t.ID = primitive.NewObjectID()
	t.Kind = s.kind
	t.NameCI = text.Fold(t.Name)
	if t.Members == nil {
		t.Members = []models.Member{}
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Target{}, err
	}
	return t, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Target, error) {
	var t models.Target
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.Target{}, err
	}
	if t.Kind == "" {
		t.Kind = s.kind
	}
	return t, nil
}

// ListQuery selects one page of targets.
type ListQuery struct {
	RecruitingOnly bool
	After          string // cursor from the previous page
	Limit          int
}

// List returns one page of targets sorted by name, plus the cursor for the
// next page ("" on the last page). paging.ErrBadCursor is returned for a
// cursor that does not decode.
func (s *Store) List(ctx context.Context, q ListQuery) ([]models.Target, string, error) {
	ks, err := paging.NewKeyset("name_ci", q.After, q.Limit)
	if err != nil {
		return nil, "", err
	}
	filter := bson.M{}
	if q.RecruitingOnly {
		filter["is_recruiting"] = true
	}

	cur, err := s.c.Find(ctx, ks.Filter(filter), ks.FindOptions())
	if err != nil {
		return nil, "", err
	}
	defer cur.Close(ctx)

	out := []models.Target{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, "", err
	}
	next := paging.Trim(ks, &out,
		func(t models.Target) string { return t.NameCI },
		func(t models.Target) primitive.ObjectID { return t.ID })
	for i := range out {
		if out[i].Kind == "" {
			out[i].Kind = s.kind
		}
	}
	return out, next, nil
}

// SetRecruiting toggles the recruiting flag. Only the leader may do this.
func (s *Store) SetRecruiting(ctx context.Context, id, leaderID primitive.ObjectID, recruiting bool) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "leader_id": leaderID},
		bson.M{"$set": bson.M{"is_recruiting": recruiting, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.missOrNotLeader(ctx, id)
	}
	return nil
}

// AppendMember pushes m onto the target's members. Returns
// mongo.ErrNoDocuments when the target does not exist.
func (s *Store) AppendMember(ctx context.Context, id primitive.ObjectID, m models.Member) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"members": m},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes a target. Only the leader may do this.
func (s *Store) Delete(ctx context.Context, id, leaderID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "leader_id": leaderID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return s.missOrNotLeader(ctx, id)
	}
	return nil
}

func (s *Store) missOrNotLeader(ctx context.Context, id primitive.ObjectID) error {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return mongo.ErrNoDocuments
	}
	return ErrNotLeader
}
