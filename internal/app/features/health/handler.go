package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/collabhub/internal/app/system/jsonresp"
	"github.com/dalemusser/collabhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Handler reports whether the service can reach MongoDB.
type Handler struct {
	Client  *mongo.Client
	Log     *zap.Logger
	started time.Time
}

func NewHandler(client *mongo.Client, logger *zap.Logger) *Handler {
	return &Handler{Client: client, Log: logger, started: time.Now()}
}

type healthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	PingMS    int64  `json:"pingMs"`
	UptimeSec int64  `json:"uptimeSec"`
	Message   string `json:"message,omitempty"`
}

// Serve handles GET /health: 200 {"status":"ok"} when a primary answers a
// ping, 503 {"status":"error"} otherwise.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{UptimeSec: int64(time.Since(h.started).Seconds())}

	start := time.Now()
	err := h.Client.Ping(ctx, readpref.Primary())
	resp.PingMS = time.Since(start).Milliseconds()

	if err != nil {
		h.Log.Error("health-check: mongo ping failed", zap.Error(err))
		resp.Status, resp.Database, resp.Message = "error", "disconnected", "Database unavailable"
		jsonresp.Write(w, http.StatusServiceUnavailable, resp)
		return
	}

	resp.Status, resp.Database = "ok", "connected"
	jsonresp.OK(w, resp)
}
