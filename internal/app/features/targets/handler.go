// internal/app/features/targets/handler.go
package targets

import (
	targetstore "github.com/dalemusser/collabhub/internal/app/store/targets"
	"github.com/dalemusser/collabhub/internal/app/system/auditlog"
	"github.com/dalemusser/collabhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves one target kind (/projects, /startups or /teams).
type Handler struct {
	Kind  models.TargetKind
	Store *targetstore.Store
	Audit *auditlog.Logger
	Log   *zap.Logger
}

// NewHandler constructs a Handler for kind bound to db.
func NewHandler(db *mongo.Database, kind models.TargetKind, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Kind:  kind,
		Store: targetstore.New(db, kind),
		Audit: auditLog,
		Log:   logger.With(zap.String("kind", string(kind))),
	}
}
