// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/collabhub/internal/app/store/audit"
	"github.com/dalemusser/collabhub/internal/app/system/ratelimit"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination values for Config fields.
const (
	ToAll = "all" // MongoDB + zap
	ToDB  = "db"
	ToLog = "log"
	Off   = "off"
)

// Config selects where each category of event goes.
type Config struct {
	Auth   string
	Collab string
}

// ValidDestination reports whether v is a known destination.
func ValidDestination(v string) bool {
	switch v {
	case ToAll, ToDB, ToLog, Off:
		return true
	}
	return false
}

// Logger records audit events to the audit store and to zap.
// A nil *Logger is valid and discards everything.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the destination configured for its
// category. Unknown categories go everywhere. Store failures are logged,
// never returned: auditing must not fail the request it describes.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	dest := ToAll
	switch event.Category {
	case audit.CategoryAuth:
		dest = l.config.Auth
	case audit.CategoryCollab:
		dest = l.config.Collab
	}
	if dest == Off {
		return
	}

	if dest == ToAll || dest == ToLog {
		l.logToZap(event)
	}
	if (dest == ToAll || dest == ToDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func fromRequest(r *http.Request, category, eventType string) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   true,
	}
}

// --- Account events ---

func (l *Logger) Signup(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventSignup)
	e.UserID = &userID
	l.Log(ctx, e)
}

func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginSuccess)
	e.UserID = &userID
	l.Log(ctx, e)
}

// LoginFailed records a rejected login. The attempted email is kept in
// details since there may be no matching user.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, reason string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginFailed)
	e.Success = false
	e.FailureReason = reason
	e.Details = map[string]string{"email": email}
	l.Log(ctx, e)
}

func (l *Logger) LoginRateLimited(ctx context.Context, r *http.Request) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginRateLimited)
	e.Success = false
	e.FailureReason = "rate limited"
	l.Log(ctx, e)
}

func (l *Logger) Logout(ctx context.Context, r *http.Request, userIDHex string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLogout)
	if oid, err := primitive.ObjectIDFromHex(userIDHex); err == nil {
		e.UserID = &oid
	}
	l.Log(ctx, e)
}

func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventPasswordChanged)
	e.UserID = &userID
	l.Log(ctx, e)
}

func (l *Logger) PasswordResetIssued(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventPasswordResetIssued)
	e.UserID = &userID
	l.Log(ctx, e)
}

// PasswordReset records a reset confirmation. userID is nil when the token
// did not parse.
func (l *Logger) PasswordReset(ctx context.Context, r *http.Request, userID *primitive.ObjectID, failure string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventPasswordReset)
	e.UserID = userID
	if failure != "" {
		e.Success = false
		e.FailureReason = failure
	}
	l.Log(ctx, e)
}

func (l *Logger) AccountDeleted(ctx context.Context, r *http.Request, userID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventAccountDeleted)
	e.UserID = &userID
	l.Log(ctx, e)
}

// --- Collaboration events ---

func (l *Logger) TargetCreated(ctx context.Context, r *http.Request, leaderID primitive.ObjectID, t models.Target) {
	e := fromRequest(r, audit.CategoryCollab, audit.EventTargetCreated)
	e.UserID = &leaderID
	e.Details = map[string]string{"kind": string(t.Kind), "target_id": t.ID.Hex(), "name": t.Name}
	l.Log(ctx, e)
}

func (l *Logger) TargetDeleted(ctx context.Context, r *http.Request, leaderID primitive.ObjectID, kind models.TargetKind, targetID primitive.ObjectID) {
	e := fromRequest(r, audit.CategoryCollab, audit.EventTargetDeleted)
	e.UserID = &leaderID
	e.Details = map[string]string{"kind": string(kind), "target_id": targetID.Hex()}
	l.Log(ctx, e)
}

func (l *Logger) JoinRequestSubmitted(ctx context.Context, r *http.Request, jr models.JoinRequest) {
	e := fromRequest(r, audit.CategoryCollab, audit.EventJoinRequestSubmitted)
	e.UserID = &jr.FromUserID
	e.Details = joinRequestDetails(jr)
	l.Log(ctx, e)
}

// JoinRequestDecided records an owner's decision. The affected user is
// the requester; the actor is the owner.
func (l *Logger) JoinRequestDecided(ctx context.Context, r *http.Request, actorID primitive.ObjectID, jr models.JoinRequest) {
	eventType := audit.EventJoinRequestDeclined
	if jr.Status == models.StatusAccept {
		eventType = audit.EventJoinRequestAccepted
	}
	e := fromRequest(r, audit.CategoryCollab, eventType)
	e.UserID = &jr.FromUserID
	e.ActorID = &actorID
	e.Details = joinRequestDetails(jr)
	l.Log(ctx, e)
}

func joinRequestDetails(jr models.JoinRequest) map[string]string {
	d := map[string]string{
		"request_id": jr.ID.Hex(),
		"kind":       string(jr.Kind),
		"target_id":  jr.TargetID.Hex(),
	}
	if jr.Role != "" {
		d["role"] = jr.Role
	}
	return d
}
