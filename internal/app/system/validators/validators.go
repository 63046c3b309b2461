// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isUnsupported(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("users", usersSchema())
	for _, kind := range models.TargetKinds {
		ensure(kind.Collection(), targetsSchema())
	}
	ensure("join_requests", joinRequestsSchema())

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string) error {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err == nil && len(names) > 0 {
		return nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if hasCode(err, 48) || containsAny(err, "already exists", "namespace exists") {
			return nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

// isUnsupported matches "no such command" (59) and "not implemented" (115)
// style failures from servers without collMod validators.
func isUnsupported(err error) bool {
	return hasCode(err, 59, 115) ||
		containsAny(err, "no such command", "not implemented", "not supported")
}

func hasCode(err error, codes ...int32) bool {
	var ce mongo.CommandError
	if !errors.As(err, &ce) {
		return false
	}
	for _, c := range codes {
		if ce.Code == c {
			return true
		}
	}
	return false
}

func containsAny(err error, phrases ...string) bool {
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"email", "full_name", "password_hash"},
			"properties": bson.M{
				"email":            nonBlank,
				"full_name":        nonBlank,
				"full_name_ci":     bson.M{"bsonType": "string"},
				"password_hash":    nonBlank,
				"degree":           bson.M{"bsonType": "string"},
				"reg_number":       bson.M{"bsonType": "string"},
				"phone":            bson.M{"bsonType": "string"},
				"reset_nonce":      bson.M{"bsonType": "string"},
				"reset_expires_at": bson.M{"bsonType": "date"},
			},
		},
	}
}

func targetsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "leader_id", "team_size", "members"},
			"properties": bson.M{
				"kind":          bson.M{"enum": kindEnum()},
				"name":          nonBlank,
				"name_ci":       bson.M{"bsonType": "string"},
				"description":   bson.M{"bsonType": "string"},
				"leader_id":     bson.M{"bsonType": "objectId"},
				"team_size":     bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"is_recruiting": bson.M{"bsonType": "bool"},
				"members": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"user_id"},
						"properties": bson.M{
							"user_id": bson.M{"bsonType": "objectId"},
							"role":    bson.M{"bsonType": "string"},
						},
					},
				},
			},
		},
	}
}

func joinRequestsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"kind", "from_user_id", "target_id", "owner_id", "message", "status"},
			"properties": bson.M{
				"kind":         bson.M{"enum": kindEnum()},
				"from_user_id": bson.M{"bsonType": "objectId"},
				"target_id":    bson.M{"bsonType": "objectId"},
				"owner_id":     bson.M{"bsonType": "objectId"},
				"message":      nonBlank,
				"role":         bson.M{"bsonType": "string"},
				"status":       bson.M{"enum": bson.A{models.StatusPending, models.StatusAccept, models.StatusDecline}},
				"created_at":   bson.M{"bsonType": "date"},
				"decided_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func kindEnum() bson.A {
	out := bson.A{}
	for _, k := range models.TargetKinds {
		out = append(out, string(k))
	}
	return out
}
