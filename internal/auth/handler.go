package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/ardiland/ardilandcom/internal/telemetry/metrics"
	"github.com/ardiland/ardilandcom/internal/telemetry/tracing"
	"github.com/ardiland/ardilandcom/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type authService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	DeleteSession(ctx context.Context, token string) error
}

type Handler struct {
	service        authService
	metricsManager *metrics.Manager
}

func NewHandler(service authService, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		service:        service,
		metricsManager: metricsManager,
	}
}

// SetupRoutes registers the auth routes under /api/auth.
// authGate protects /me; loginLimiter may be nil, then logins are not throttled.
func (handler *Handler) SetupRoutes(
	apiRouter *mux.Router,
	authGate mux.MiddlewareFunc,
	loginLimiter mux.MiddlewareFunc,
) {
	authRouter := apiRouter.PathPrefix("/auth").Subrouter()

	var login http.Handler = http.HandlerFunc(handler.handleLogin)
	if loginLimiter != nil {
		login = loginLimiter(login)
	}
	authRouter.Handle("/login", login).Methods("POST").Name("login")
	authRouter.HandleFunc("/logout", handler.handleLogout).Methods("POST").Name("logout")
	authRouter.Handle("/me", authGate(http.HandlerFunc(handler.handleMe))).Methods("GET").Name("me")
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	var loginReq loginRequest
	if err := pkg.DecodeAndValidate(r, &loginReq); err != nil {
		log.Tracef("login, invalid request: %s", err)
		span.SetStatus(codes.Error, "invalid-request")
		pkg.WriteBadRequest(w, "Username and password are required")
		return
	}

	result, err := handler.service.Login(ctx, loginReq.Username, loginReq.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			log.Tracef("failed login attempt for user: %s", loginReq.Username)
			handler.countLogin(metrics.LoginResultInvalid)
			span.SetStatus(codes.Error, "invalid-credentials")
			pkg.WriteUnauthorized(w, "Invalid credentials")
			return
		}

		log.Errorf("login failed: %s", err)
		handler.countLogin(metrics.LoginResultError)
		span.SetStatus(codes.Error, "login-error")
		span.RecordError(err)
		pkg.WriteInternalError(w, "Login failed")
		return
	}

	log.Tracef("login success for user: %s", result.User.Username)
	handler.countLogin(metrics.LoginResultSuccess)
	span.SetStatus(codes.Ok, "ok")
	pkg.WriteSuccess(w, http.StatusOK, result)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	if token, ok := pkg.BearerToken(r); ok {
		if err := handler.service.DeleteSession(ctx, token); err != nil {
			// the caller is logged out client side either way
			log.Errorf("logout, delete session: %s", err)
			span.RecordError(err)
		}
	}

	pkg.WriteSuccess(w, http.StatusOK, nil)
}

type meResponse struct {
	Authenticated bool `json:"authenticated"`
}

func (handler *Handler) handleMe(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteSuccess(w, http.StatusOK, meResponse{Authenticated: true})
}

func (handler *Handler) countLogin(result string) {
	if handler.metricsManager == nil {
		return
	}
	handler.metricsManager.CounterLogins.WithLabelValues(result).Inc()
}
