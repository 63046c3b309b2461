package joinrequests

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/collabhub/internal/app/policy/joinpolicy"
	joinrequeststore "github.com/dalemusser/collabhub/internal/app/store/joinrequests"
	targetstore "github.com/dalemusser/collabhub/internal/app/store/targets"
	"github.com/dalemusser/collabhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/collabhub/internal/app/system/normalize"
	"github.com/dalemusser/collabhub/internal/app/system/txn"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MaxMessageLen caps the stored message, in runes.
const MaxMessageLen = 1000

// Store is the persistence the service needs. *joinrequeststore.Store
// satisfies it.
type Store interface {
	Create(ctx context.Context, jr models.JoinRequest) (models.JoinRequest, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.JoinRequest, error)
	HasAccepted(ctx context.Context, fromUserID, targetID primitive.ObjectID) (bool, error)
	ListPendingForOwner(ctx context.Context, ownerID primitive.ObjectID) ([]joinrequeststore.PendingRow, error)
	Decide(ctx context.Context, id primitive.ObjectID, decision string) (models.JoinRequest, error)
}

// Targets reads targets and appends members across all target kinds.
type Targets interface {
	GetTarget(ctx context.Context, kind models.TargetKind, id primitive.ObjectID) (models.Target, error)
	AppendMember(ctx context.Context, kind models.TargetKind, id primitive.ObjectID, m models.Member) error
}

// TargetStores routes Targets calls to the per-kind target stores.
type TargetStores map[models.TargetKind]*targetstore.Store

// NewTargetStores builds a TargetStores for every kind.
func NewTargetStores(db *mongo.Database) TargetStores {
	ts := TargetStores{}
	for _, k := range models.TargetKinds {
		ts[k] = targetstore.New(db, k)
	}
	return ts
}

func (ts TargetStores) GetTarget(ctx context.Context, kind models.TargetKind, id primitive.ObjectID) (models.Target, error) {
	s, ok := ts[kind]
	if !ok {
		return models.Target{}, mongo.ErrNoDocuments
	}
	return s.GetByID(ctx, id)
}

func (ts TargetStores) AppendMember(ctx context.Context, kind models.TargetKind, id primitive.ObjectID, m models.Member) error {
	s, ok := ts[kind]
	if !ok {
		return mongo.ErrNoDocuments
	}
	return s.AppendMember(ctx, id, m)
}

// Service implements submit, list and decide.
type Service struct {
	store   Store
	targets Targets
	client  *mongo.Client // nil disables transactions
	log     *zap.Logger
}

func NewService(store Store, targets Targets, client *mongo.Client, logger *zap.Logger) *Service {
	return &Service{store: store, targets: targets, client: client, log: logger}
}

// SubmitInput is a request to join a target.
//
// OwnerID is optional. When set it must match the target's leader; the
// stored owner always comes from the target.
type SubmitInput struct {
	Kind        string
	TargetID    primitive.ObjectID
	RequesterID primitive.ObjectID
	OwnerID     primitive.ObjectID
	Role        string
	Message     string
}

// submitFields are the cleaned values of a SubmitInput.
type submitFields struct {
	kind models.TargetKind
	msg  string
	role string
}

func (in SubmitInput) clean() (submitFields, error) {
	kind, ok := models.ParseTargetKind(normalize.Kind(in.Kind))
	if !ok {
		return submitFields{}, invalid("type must be one of project, startup or team")
	}
	if in.TargetID.IsZero() {
		return submitFields{}, invalid("%sId is required", kind)
	}
	if in.RequesterID.IsZero() {
		return submitFields{}, invalid("user is required")
	}
	msg := htmlsanitize.StripTags(htmlsanitize.Truncate(in.Message, MaxMessageLen))
	if strings.TrimSpace(msg) == "" {
		return submitFields{}, invalid("message is required")
	}
	role := normalize.Role(htmlsanitize.StripTags(in.Role))
	if kind.RoleRequired() && role == "" {
		return submitFields{}, invalid("role is required for a %s", kind)
	}
	return submitFields{kind: kind, msg: msg, role: role}, nil
}

// Validate checks the fields of in without touching storage. It returns
// the same ValidationError Submit would.
func (in SubmitInput) Validate() error {
	_, err := in.clean()
	return err
}

// Submit validates in, runs the duplicate check and stores a pending request.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (models.JoinRequest, error) {
	f, err := in.clean()
	if err != nil {
		return models.JoinRequest{}, err
	}
	kind := f.kind

	target, err := s.targets.GetTarget(ctx, kind, in.TargetID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.JoinRequest{}, ErrTargetNotFound
	}
	if err != nil {
		return models.JoinRequest{}, storage("load target", err)
	}
	if !in.OwnerID.IsZero() && in.OwnerID != target.LeaderID {
		return models.JoinRequest{}, invalid("leader does not match this %s", kind)
	}
	if target.LeaderID == in.RequesterID {
		return models.JoinRequest{}, invalid("you already lead this %s", kind)
	}

	dup, err := joinpolicy.HasAcceptedRequest(ctx, s.store, in.RequesterID, target.ID)
	if err != nil {
		return models.JoinRequest{}, storage("duplicate check", err)
	}
	if dup {
		return models.JoinRequest{}, ErrDuplicateRequest
	}

	jr, err := s.store.Create(ctx, models.JoinRequest{
		Kind:       kind,
		FromUserID: in.RequesterID,
		TargetID:   target.ID,
		OwnerID:    target.LeaderID,
		Message:    f.msg,
		Role:       f.role,
	})
	if err != nil {
		return models.JoinRequest{}, storage("insert join request", err)
	}
	return jr, nil
}

// ListPending returns the pending requests addressed to ownerID.
func (s *Service) ListPending(ctx context.Context, ownerID primitive.ObjectID) ([]joinrequeststore.PendingRow, error) {
	if ownerID.IsZero() {
		return nil, invalid("userId is required")
	}
	rows, err := s.store.ListPendingForOwner(ctx, ownerID)
	if err != nil {
		return nil, storage("list pending", err)
	}
	return rows, nil
}

// DecideInput is an owner's decision on one request. RequesterID is
// optional; when set it must match the stored requester.
type DecideInput struct {
	RequestID   primitive.ObjectID
	Decision    string
	ActorID     primitive.ObjectID
	RequesterID primitive.ObjectID
}

// Decide moves a pending request to accept or decline. Accepting also
// appends the requester to the target's members; both writes share a
// transaction when the deployment supports one.
func (s *Service) Decide(ctx context.Context, in DecideInput) (models.JoinRequest, error) {
	decision := strings.ToLower(strings.TrimSpace(in.Decision))
	if !models.IsDecision(decision) {
		return models.JoinRequest{}, invalid("status must be accept or decline")
	}
	if in.RequestID.IsZero() {
		return models.JoinRequest{}, invalid("requestId is required")
	}

	jr, err := s.store.GetByID(ctx, in.RequestID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.JoinRequest{}, ErrNotFound
	}
	if err != nil {
		return models.JoinRequest{}, storage("load join request", err)
	}
	if !joinpolicy.IsOwner(in.ActorID, jr) {
		return models.JoinRequest{}, ErrForbidden
	}
	if !in.RequesterID.IsZero() && in.RequesterID != jr.FromUserID {
		return models.JoinRequest{}, invalid("userId does not match this request")
	}
	if jr.Status != models.StatusPending {
		return models.JoinRequest{}, ErrAlreadyDecided
	}

	if decision == models.StatusDecline {
		decided, err := s.store.Decide(ctx, jr.ID, decision)
		if err != nil {
			return models.JoinRequest{}, s.decideErr(err)
		}
		return decided, nil
	}

	var decided models.JoinRequest
	err = txn.Run(ctx, s.client, s.log, func(ctx context.Context) error {
		var err error
		decided, err = s.store.Decide(ctx, jr.ID, decision)
		if err != nil {
			return err
		}
		return s.targets.AppendMember(ctx, jr.Kind, jr.TargetID, models.Member{
			UserID: jr.FromUserID,
			Role:   jr.Role,
		})
	})
	if err != nil {
		return models.JoinRequest{}, s.decideErr(err)
	}
	return decided, nil
}

func (s *Service) decideErr(err error) error {
	switch {
	case errors.Is(err, joinrequeststore.ErrAlreadyDecided):
		return ErrAlreadyDecided
	case errors.Is(err, joinrequeststore.ErrAcceptedExists):
		return ErrDuplicateRequest
	case errors.Is(err, mongo.ErrNoDocuments):
		// The request was checked above, so a miss here is the target.
		return ErrTargetNotFound
	}
	return storage("decide join request", err)
}
