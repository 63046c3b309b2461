package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "correct-horse-battery"

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user whose password is TestPassword.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash fixture password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		PasswordHash: string(hash),
		Degree:       "BSc Computer Science",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTarget inserts a recruiting target of the given kind led by leaderID.
func (f *Fixtures) CreateTarget(ctx context.Context, kind models.TargetKind, name string, leaderID primitive.ObjectID, teamSize int) models.Target {
	f.t.Helper()

	now := time.Now().UTC()
	target := models.Target{
		ID:           primitive.NewObjectID(),
		Kind:         kind,
		Name:         name,
		NameCI:       text.Fold(name),
		Description:  "Test " + string(kind) + " description",
		LeaderID:     leaderID,
		TeamSize:     teamSize,
		IsRecruiting: true,
		Members:      []models.Member{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection(kind.Collection()).InsertOne(ctx, target); err != nil {
		f.t.Fatalf("failed to create test %s: %v", kind, err)
	}
	return target
}

// CreateProject is CreateTarget for projects.
func (f *Fixtures) CreateProject(ctx context.Context, name string, leaderID primitive.ObjectID, teamSize int) models.Target {
	f.t.Helper()
	return f.CreateTarget(ctx, models.KindProject, name, leaderID, teamSize)
}

// CreateJoinRequest inserts a join request with the given status.
func (f *Fixtures) CreateJoinRequest(ctx context.Context, target models.Target, fromUserID primitive.ObjectID, role, status string) models.JoinRequest {
	f.t.Helper()

	jr := models.JoinRequest{
		ID:         primitive.NewObjectID(),
		Kind:       target.Kind,
		FromUserID: fromUserID,
		TargetID:   target.ID,
		OwnerID:    target.LeaderID,
		Message:    "hi",
		Role:       role,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	}

	if _, err := f.db.Collection("join_requests").InsertOne(ctx, jr); err != nil {
		f.t.Fatalf("failed to create test join request: %v", err)
	}
	return jr
}
