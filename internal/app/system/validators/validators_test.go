package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/collabhub/internal/app/system/validators"
	"github.com/dalemusser/collabhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool)
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"users", "projects", "startups", "teams", "join_requests"} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestValidators(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	now := time.Now()
	tests := []struct {
		name       string
		collection string
		doc        bson.M
		wantErr    bool
	}{
		{
			name:       "user missing required fields",
			collection: "users",
			doc:        bson.M{"degree": "BSc"},
			wantErr:    true,
		},
		{
			name:       "valid user",
			collection: "users",
			doc:        bson.M{"email": "a@example.com", "full_name": "Ada", "full_name_ci": "ada", "password_hash": "x"},
		},
		{
			name:       "user with blank name",
			collection: "users",
			doc:        bson.M{"email": "b@example.com", "full_name": "   ", "password_hash": "x"},
			wantErr:    true,
		},
		{
			name:       "valid project",
			collection: "projects",
			doc: bson.M{
				"kind": "project", "name": "P1", "leader_id": primitive.NewObjectID(), "team_size": 4,
				"members": bson.A{bson.M{"user_id": primitive.NewObjectID(), "role": "frontend"}},
			},
		},
		{
			name:       "team with zero size",
			collection: "teams",
			doc:        bson.M{"name": "T", "leader_id": primitive.NewObjectID(), "team_size": 0, "members": bson.A{}},
			wantErr:    true,
		},
		{
			name:       "member without user id",
			collection: "startups",
			doc: bson.M{
				"name": "S", "leader_id": primitive.NewObjectID(), "team_size": 2,
				"members": bson.A{bson.M{"role": "cto"}},
			},
			wantErr: true,
		},
		{
			name:       "valid join request",
			collection: "join_requests",
			doc: bson.M{
				"kind": "project", "from_user_id": primitive.NewObjectID(), "target_id": primitive.NewObjectID(),
				"owner_id": primitive.NewObjectID(), "message": "hi", "status": "pending", "created_at": now,
			},
		},
		{
			name:       "join request with unknown status",
			collection: "join_requests",
			doc: bson.M{
				"kind": "project", "from_user_id": primitive.NewObjectID(), "target_id": primitive.NewObjectID(),
				"owner_id": primitive.NewObjectID(), "message": "hi", "status": "accepted",
			},
			wantErr: true,
		},
		{
			name:       "join request with unknown kind",
			collection: "join_requests",
			doc: bson.M{
				"kind": "competition", "from_user_id": primitive.NewObjectID(), "target_id": primitive.NewObjectID(),
				"owner_id": primitive.NewObjectID(), "message": "hi", "status": "pending",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := db.Collection(tt.collection).InsertOne(ctx, tt.doc)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("insert failed: %v", err)
			}
		})
	}
}
