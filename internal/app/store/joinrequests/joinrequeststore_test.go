package joinrequeststore_test

import (
	"sync"
	"testing"

	joinrequeststore "github.com/dalemusser/collabhub/internal/app/store/joinrequests"
	"github.com/dalemusser/collabhub/internal/app/system/indexes"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"github.com/dalemusser/collabhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := joinrequeststore.New(db)
	jr, err := store.Create(ctx, models.JoinRequest{
		Kind:       models.KindProject,
		FromUserID: primitive.NewObjectID(),
		TargetID:   primitive.NewObjectID(),
		OwnerID:    primitive.NewObjectID(),
		Message:    "hi",
		Role:       "frontend",
		Status:     models.StatusAccept, // ignored
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if jr.Status != models.StatusPending {
		t.Errorf("Status: got %q, want pending", jr.Status)
	}
	if jr.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	got, err := store.GetByID(ctx, jr.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Role != "frontend" || got.Status != models.StatusPending {
		t.Errorf("unexpected stored request: %+v", got)
	}
}

func TestStore_HasAccepted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures := testutil.NewFixtures(t, db)

	leader := fixtures.CreateUser(ctx, "Lead", "lead@example.com")
	student := fixtures.CreateUser(ctx, "Student", "student@example.com")
	p := fixtures.CreateProject(ctx, "P1", leader.ID, 4)
	store := joinrequeststore.New(db)

	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{"pending does not count", models.StatusPending, false},
		{"decline does not count", models.StatusDecline, false},
		{"accept counts", models.StatusAccept, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixtures.CreateJoinRequest(ctx, p, student.ID, "frontend", tt.status)
			got, err := store.HasAccepted(ctx, student.ID, p.ID)
			if err != nil {
				t.Fatalf("HasAccepted failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasAccepted = %v, want %v", got, tt.want)
			}
		})
	}

	other, _ := store.HasAccepted(ctx, leader.ID, p.ID)
	if other {
		t.Error("expected no accepted request for a different requester")
	}
}

func TestStore_ListPendingForOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures := testutil.NewFixtures(t, db)

	leader := fixtures.CreateUser(ctx, "Lead One", "lead1@example.com")
	otherLeader := fixtures.CreateUser(ctx, "Lead Two", "lead2@example.com")
	student := fixtures.CreateUser(ctx, "Sam Student", "sam@example.com")

	p := fixtures.CreateProject(ctx, "Solar Car", leader.ID, 4)
	team := fixtures.CreateTarget(ctx, models.KindTeam, "Hackers", leader.ID, 3)
	foreign := fixtures.CreateProject(ctx, "Elsewhere", otherLeader.ID, 4)

	fixtures.CreateJoinRequest(ctx, p, student.ID, "frontend", models.StatusPending)
	fixtures.CreateJoinRequest(ctx, team, student.ID, "", models.StatusPending)
	fixtures.CreateJoinRequest(ctx, p, student.ID, "backend", models.StatusDecline)
	fixtures.CreateJoinRequest(ctx, foreign, student.ID, "design", models.StatusPending)

	rows, err := joinrequeststore.New(db).ListPendingForOwner(ctx, leader.ID)
	if err != nil {
		t.Fatalf("ListPendingForOwner failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 pending rows, got %d", len(rows))
	}

	names := map[primitive.ObjectID]string{}
	for _, r := range rows {
		if r.Status != models.StatusPending {
			t.Errorf("unexpected status %q", r.Status)
		}
		if r.FromName != "Sam Student" {
			t.Errorf("FromName: got %q", r.FromName)
		}
		names[r.TargetID] = r.TargetName
	}
	if names[p.ID] != "Solar Car" {
		t.Errorf("project name: got %q", names[p.ID])
	}
	if names[team.ID] != "Hackers" {
		t.Errorf("team name: got %q", names[team.ID])
	}
}

func TestStore_ListPendingForOwner_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rows, err := joinrequeststore.New(db).ListPendingForOwner(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("ListPendingForOwner failed: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", rows)
	}
}

func TestStore_Decide(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures := testutil.NewFixtures(t, db)

	p := fixtures.CreateProject(ctx, "P1", primitive.NewObjectID(), 4)
	jr := fixtures.CreateJoinRequest(ctx, p, primitive.NewObjectID(), "frontend", models.StatusPending)
	store := joinrequeststore.New(db)

	got, err := store.Decide(ctx, jr.ID, models.StatusDecline)
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if got.Status != models.StatusDecline || got.DecidedAt == nil {
		t.Errorf("unexpected decided request: %+v", got)
	}

	// A second decision is rejected and leaves the record as it was.
	if _, err := store.Decide(ctx, jr.ID, models.StatusAccept); err != joinrequeststore.ErrAlreadyDecided {
		t.Errorf("expected ErrAlreadyDecided, got %v", err)
	}
	stored, _ := store.GetByID(ctx, jr.ID)
	if stored.Status != models.StatusDecline {
		t.Errorf("status changed by second decision: %q", stored.Status)
	}

	if _, err := store.Decide(ctx, primitive.NewObjectID(), models.StatusAccept); err != mongo.ErrNoDocuments {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Decide_ConcurrentSingleWinner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures := testutil.NewFixtures(t, db)

	p := fixtures.CreateProject(ctx, "P1", primitive.NewObjectID(), 4)
	jr := fixtures.CreateJoinRequest(ctx, p, primitive.NewObjectID(), "frontend", models.StatusPending)
	store := joinrequeststore.New(db)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Decide(ctx, jr.ID, models.StatusAccept)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	wins := 0
	for err := range errs {
		switch err {
		case nil:
			wins++
		case joinrequeststore.ErrAlreadyDecided:
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly one successful decision, got %d", wins)
	}
}

func TestStore_Decide_SecondAcceptForPairRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures := testutil.NewFixtures(t, db)

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	p := fixtures.CreateProject(ctx, "P1", primitive.NewObjectID(), 4)
	student := primitive.NewObjectID()
	first := fixtures.CreateJoinRequest(ctx, p, student, "frontend", models.StatusPending)
	second := fixtures.CreateJoinRequest(ctx, p, student, "backend", models.StatusPending)
	store := joinrequeststore.New(db)

	if _, err := store.Decide(ctx, first.ID, models.StatusAccept); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}
	if _, err := store.Decide(ctx, second.ID, models.StatusAccept); err != joinrequeststore.ErrAcceptedExists {
		t.Errorf("expected ErrAcceptedExists, got %v", err)
	}
	if _, err := store.Decide(ctx, second.ID, models.StatusDecline); err != nil {
		t.Errorf("decline of the second request should succeed, got %v", err)
	}
}
