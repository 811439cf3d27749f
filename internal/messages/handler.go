package messages

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ardiland/ardilandcom/internal/telemetry/metrics"
	"github.com/ardiland/ardilandcom/internal/telemetry/tracing"
	"github.com/ardiland/ardilandcom/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=handler.go -destination=handler_mock_test.go -package=messages

type messageRepo interface {
	Create(ctx context.Context, m *ContactMessage) error
	All(ctx context.Context) ([]*ContactMessage, error)
	MarkRead(ctx context.Context, id string) (*ContactMessage, error)
	Delete(ctx context.Context, id string) error
}

type contactRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=200"`
	Email   string `json:"email" validate:"required,email,max=320"`
	Message string `json:"message" validate:"required,notblank,max=5000"`
}

type Handler struct {
	repo           messageRepo
	metricsManager *metrics.Manager
}

func NewHandler(repo messageRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:           repo,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) SetupRoutes(apiRouter, adminRouter *mux.Router) {
	apiRouter.HandleFunc("/contact", handler.handleContact).Methods("POST").Name("contact")

	adminRouter.HandleFunc("/messages", handler.handleAll).Methods("GET").Name("admin-messages")
	adminRouter.HandleFunc("/messages/{id}/read", handler.handleMarkRead).Methods("PUT").Name("admin-read-message")
	adminRouter.HandleFunc("/messages/{id}", handler.handleDelete).Methods("DELETE").Name("admin-delete-message")
}

func (handler *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "messagesHandler.contact")
	defer span.End()

	var req contactRequest
	if err := pkg.DecodeAndValidate(r, &req); err != nil {
		pkg.WriteBadRequest(w, err.Error())
		return
	}

	m := &ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
	}
	if err := handler.repo.Create(ctx, m); err != nil {
		log.Errorf("store contact message: %s", err)
		span.RecordError(err)
		pkg.WriteInternalError(w, "Failed to send message")
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterContactMessages.Inc()
	}
	log.Debugf("new contact message %s", m.ID)
	pkg.WriteSuccess(w, http.StatusCreated, m)
}

func (handler *Handler) handleAll(w http.ResponseWriter, r *http.Request) {
	list, err := handler.repo.All(r.Context())
	if err != nil {
		log.Errorf("get messages: %s", err)
		pkg.WriteInternalError(w, "Failed to fetch messages")
		return
	}
	pkg.WriteSuccess(w, http.StatusOK, list)
}

func (handler *Handler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	m, err := handler.repo.MarkRead(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handler.writeWriteError(w, err, "Failed to update message")
		return
	}
	pkg.WriteSuccess(w, http.StatusOK, m)
}

func (handler *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := handler.repo.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		handler.writeWriteError(w, err, "Failed to delete message")
		return
	}
	pkg.WriteSuccess(w, http.StatusOK, nil)
}

func (handler *Handler) writeWriteError(w http.ResponseWriter, err error, failMessage string) {
	if errors.Is(err, ErrMessageNotFound) {
		pkg.WriteNotFound(w, "Message not found")
		return
	}
	log.Errorf("%s: %s", failMessage, err)
	pkg.WriteInternalError(w, failMessage)
}
