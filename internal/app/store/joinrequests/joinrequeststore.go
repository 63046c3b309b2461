// internal/app/store/joinrequests/joinrequeststore.go
package joinrequeststore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/collabhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collection = "join_requests"

var (
	// ErrAlreadyDecided is returned by Decide when the request exists but is
	// no longer pending. The stored record is not touched.
	ErrAlreadyDecided = errors.New("request has already been processed")

	// ErrAcceptedExists is returned by Decide when accepting would create a
	// second accepted request for the same requester and target.
	ErrAcceptedExists = errors.New("an accepted request already exists for this user and target")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(collection)}
}

// Create inserts jr as a new pending request.
func (s *Store) Create(ctx context.Context, jr models.JoinRequest) (models.JoinRequest, error) {
	jr.ID = primitive.NewObjectID()
	jr.Status = models.StatusPending
	jr.CreatedAt = time.Now().UTC()
	jr.DecidedAt = nil
	if _, err := s.c.InsertOne(ctx, jr); err != nil {
		return models.JoinRequest{}, err
	}
	return jr, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.JoinRequest, error) {
	var jr models.JoinRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&jr); err != nil {
		return models.JoinRequest{}, err
	}
	return jr, nil
}

// HasAccepted reports whether fromUserID already has an accepted request
// for targetID.
func (s *Store) HasAccepted(ctx context.Context, fromUserID, targetID primitive.ObjectID) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"from_user_id": fromUserID,
		"target_id":    targetID,
		"status":       models.StatusAccept,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PendingRow is a pending request joined with the requester's and the
// target's display names. Either name is empty when the referenced
// document no longer exists.
type PendingRow struct {
	ID         primitive.ObjectID `bson:"_id"`
	Kind       models.TargetKind  `bson:"kind"`
	FromUserID primitive.ObjectID `bson:"from_user_id"`
	FromName   string             `bson:"from_name"`
	TargetID   primitive.ObjectID `bson:"target_id"`
	TargetName string             `bson:"target_name"`
	Role       string             `bson:"role"`
	Message    string             `bson:"message"`
	Status     string             `bson:"status"`
	CreatedAt  time.Time          `bson:"created_at"`
}

// ListPendingForOwner returns every pending request addressed to ownerID.
// Rows come back oldest first, though callers should not rely on it.
func (s *Store) ListPendingForOwner(ctx context.Context, ownerID primitive.ObjectID) ([]PendingRow, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"owner_id": ownerID, "status": models.StatusPending}}},
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}}},
		lookup("users", "from_user_id", "from_user"),
	}
	// The target may live in any of the three collections; only the one
	// matching kind will produce a hit.
	targetArrays := bson.A{}
	for _, k := range models.TargetKinds {
		as := "t_" + string(k)
		pipeline = append(pipeline, lookup(k.Collection(), "target_id", as))
		targetArrays = append(targetArrays, "$"+as)
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$addFields", Value: bson.M{
			"from_user": bson.M{"$arrayElemAt": bson.A{"$from_user", 0}},
			"target":    bson.M{"$arrayElemAt": bson.A{bson.M{"$concatArrays": targetArrays}, 0}},
		}}},
		bson.D{{Key: "$project", Value: bson.M{
			"kind":         1,
			"from_user_id": 1,
			"target_id":    1,
			"role":         1,
			"message":      1,
			"status":       1,
			"created_at":   1,
			"from_name":    bson.M{"$ifNull": bson.A{"$from_user.full_name", ""}},
			"target_name":  bson.M{"$ifNull": bson.A{"$target.name", ""}},
		}}},
	)

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	rows := []PendingRow{}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func lookup(from, localField, as string) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from":         from,
		"localField":   localField,
		"foreignField": "_id",
		"as":           as,
	}}}
}

// Decide moves a pending request to decision in a single conditional
// update and returns the updated record. It returns mongo.ErrNoDocuments
// when id is unknown and ErrAlreadyDecided when the request is no longer
// pending.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, decision string) (models.JoinRequest, error) {
	now := time.Now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var jr models.JoinRequest
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.StatusPending},
		bson.M{"$set": bson.M{"status": decision, "decided_at": now}},
		opts,
	).Decode(&jr)
	if err == nil {
		return jr, nil
	}
	if wafflemongo.IsDup(err) {
		return models.JoinRequest{}, ErrAcceptedExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.JoinRequest{}, err
	}

	n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if cerr != nil {
		return models.JoinRequest{}, cerr
	}
	if n == 0 {
		return models.JoinRequest{}, mongo.ErrNoDocuments
	}
	return models.JoinRequest{}, ErrAlreadyDecided
}
