package joinrequests

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/collabhub/internal/app/policy/joinpolicy"
	joinrequeststore "github.com/dalemusser/collabhub/internal/app/store/joinrequests"
	"github.com/dalemusser/collabhub/internal/app/system/auditlog"
	"github.com/dalemusser/collabhub/internal/app/system/authz"
	"github.com/dalemusser/collabhub/internal/app/system/inputval"
	"github.com/dalemusser/collabhub/internal/app/system/jsonresp"
	"github.com/dalemusser/collabhub/internal/app/system/ratelimit"
	"github.com/dalemusser/collabhub/internal/app/system/timeouts"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves /join-request.
type Handler struct {
	Svc     *Service
	Limiter *ratelimit.Limiter // nil disables submit rate limiting
	Audit   *auditlog.Logger
	Log     *zap.Logger
}

// NewHandler wires the service to the database. client enables
// transactions for the accept path and may be nil.
func NewHandler(db *mongo.Database, client *mongo.Client, limiter *ratelimit.Limiter, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	svc := NewService(joinrequeststore.New(db), NewTargetStores(db), client, logger)
	return &Handler{Svc: svc, Limiter: limiter, Audit: auditLog, Log: logger}
}

// Submit handles POST /join-request.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := authz.UserID(r)
	if !ok {
		jsonresp.Unauthorized(w, "sign in required")
		return
	}

	var body submitBody
	if err := jsonresp.Decode(r, &body); err != nil {
		jsonresp.BadRequest(w, "Request body must be valid JSON.")
		return
	}
	if body.User != "" && body.User != userID.Hex() {
		jsonresp.Forbidden(w, "You can only send join requests as yourself.")
		return
	}

	rawTarget := body.targetID()
	targetID, ok := inputval.ObjectID(rawTarget)
	if rawTarget != "" && !ok {
		jsonresp.BadRequest(w, "The target id is not a valid id.")
		return
	}
	var ownerID primitive.ObjectID
	if body.Leader != "" {
		if ownerID, ok = inputval.ObjectID(body.Leader); !ok {
			jsonresp.BadRequest(w, "leader is not a valid id.")
			return
		}
	}

	in := SubmitInput{
		Kind:        body.Type,
		TargetID:    targetID,
		RequesterID: userID,
		OwnerID:     ownerID,
		Role:        body.Role,
		Message:     body.Message,
	}
	if err := in.Validate(); err != nil {
		h.writeErr(w, "submit join request", err)
		return
	}

	if h.Limiter != nil && !h.Limiter.Allow(userID.Hex()) {
		h.Log.Info("join request rate limited", zap.String("user_id", userID.Hex()))
		jsonresp.Error(w, http.StatusTooManyRequests, "rate_limited", "Too many join requests. Please wait a moment and try again.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	jr, err := h.Svc.Submit(ctx, in)
	if err != nil {
		h.writeErr(w, "submit join request", err)
		return
	}

	h.Log.Info("join request submitted",
		zap.String("request_id", jr.ID.Hex()),
		zap.String("type", string(jr.Kind)),
		zap.String("target_id", jr.TargetID.Hex()),
		zap.String("user_id", userID.Hex()))
	h.Audit.JoinRequestSubmitted(ctx, r, jr)
	jsonresp.Created(w, submitResponse{JoinRequest: jr})
}

// List handles GET /join-request?userId=ID.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("userId")
	if raw == "" {
		jsonresp.BadRequest(w, "userId is required.")
		return
	}
	ownerID, ok := inputval.ObjectID(raw)
	if !ok {
		jsonresp.BadRequest(w, "userId is not a valid id.")
		return
	}
	if !joinpolicy.CanListInbox(r, ownerID) {
		jsonresp.Forbidden(w, "You can only view your own requests.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Svc.ListPending(ctx, ownerID)
	if err != nil {
		h.writeErr(w, "list join requests", err)
		return
	}
	jsonresp.OK(w, toPendingViews(rows))
}

// Decide handles PATCH /join-request.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	actorID, ok := authz.UserID(r)
	if !ok {
		jsonresp.Unauthorized(w, "sign in required")
		return
	}

	var body decideBody
	if err := jsonresp.Decode(r, &body); err != nil {
		jsonresp.BadRequest(w, "Request body must be valid JSON.")
		return
	}
	requestID, ok := inputval.ObjectID(body.RequestID)
	if !ok {
		jsonresp.BadRequest(w, "A valid requestId is required.")
		return
	}
	var requesterID primitive.ObjectID
	if body.UserID != "" {
		if requesterID, ok = inputval.ObjectID(body.UserID); !ok {
			jsonresp.BadRequest(w, "userId is not a valid id.")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	jr, err := h.Svc.Decide(ctx, DecideInput{
		RequestID:   requestID,
		Decision:    body.Status,
		ActorID:     actorID,
		RequesterID: requesterID,
	})
	if err != nil {
		h.writeErr(w, "decide join request", err)
		return
	}

	h.Log.Info("join request decided",
		zap.String("request_id", jr.ID.Hex()),
		zap.String("status", jr.Status),
		zap.String("actor_id", actorID.Hex()))
	h.Audit.JoinRequestDecided(ctx, r, actorID, jr)

	if jr.Status == models.StatusAccept {
		jsonresp.Message(w, "Request accepted")
		return
	}
	jsonresp.Message(w, "Request declined")
}

// writeErr maps service errors onto the response envelope.
func (h *Handler) writeErr(w http.ResponseWriter, op string, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		jsonresp.BadRequest(w, ve.Msg)
	case errors.Is(err, ErrDuplicateRequest):
		h.Log.Info(op+": duplicate", zap.Error(err))
		jsonresp.Error(w, http.StatusBadRequest, "duplicate_request", "You have already been accepted for this team.")
	case errors.Is(err, ErrAlreadyDecided):
		jsonresp.Error(w, http.StatusBadRequest, "already_decided", "Request has already been processed")
	case errors.Is(err, ErrNotFound):
		jsonresp.NotFound(w, "Request not found")
	case errors.Is(err, ErrTargetNotFound):
		jsonresp.NotFound(w, "The team you asked to join no longer exists.")
	case errors.Is(err, ErrForbidden):
		h.Log.Warn(op+": forbidden", zap.Error(err))
		jsonresp.Forbidden(w, "Only the team leader can do that.")
	default:
		jsonresp.ServerError(w, h.Log, op, err)
	}
}
