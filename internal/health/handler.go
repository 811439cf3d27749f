package health

import (
	"context"
	"net/http"
	"time"

	"github.com/ardiland/ardilandcom/internal/telemetry/tracing"
	"github.com/ardiland/ardilandcom/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	ServiceConnected     = "connected"
	ServiceDisconnected  = "disconnected"
	ServiceNotConfigured = "not configured"
)

const pingTimeout = 2 * time.Second

type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

type Report struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
	Services  map[string]string `json:"services"`
}

type Handler struct {
	db          dbPinger
	rdb         redisPinger
	versionInfo string
	nowFunc     func() time.Time
}

// NewHandler creates the health handler. rdb may be nil, redis is then reported as not configured.
func NewHandler(db dbPinger, rdb redisPinger, versionInfo string) *Handler {
	return &Handler{
		db:          db,
		rdb:         rdb,
		versionInfo: versionInfo,
		nowFunc:     time.Now,
	}
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router) {
	mainRouter.HandleFunc("/health", handler.handleHealth).Methods("GET").Name("health")
	mainRouter.HandleFunc("/version", handler.handleVersion).Methods("GET").Name("version")
}

func (handler *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "healthHandler.health")
	defer span.End()

	report := handler.Check(ctx)
	status := http.StatusOK
	if report.Status != StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	pkg.WriteJSON(w, status, report)
}

// Check pings the database and redis. Only the database decides the overall status.
func (handler *Handler) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	report := Report{
		Status:    StatusHealthy,
		Timestamp: handler.nowFunc().UTC(),
		Version:   handler.versionInfo,
		Services: map[string]string{
			"database": ServiceConnected,
			"redis":    ServiceNotConfigured,
		},
	}

	if err := handler.db.Ping(ctx); err != nil {
		log.Errorf("health check, database ping: %s", err)
		report.Status = StatusUnhealthy
		report.Services["database"] = ServiceDisconnected
	}

	if handler.rdb != nil {
		if err := handler.rdb.Ping(ctx).Err(); err != nil {
			log.Warnf("health check, redis ping: %s", err)
			report.Services["redis"] = ServiceDisconnected
		} else {
			report.Services["redis"] = ServiceConnected
		}
	}

	return report
}

func (handler *Handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteSuccess(w, http.StatusOK, map[string]string{"version": handler.versionInfo})
}
