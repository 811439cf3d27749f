package middleware

//go:generate mockgen -source=auth.go -destination=auth_mock_test.go -package=middleware_test

import (
	"context"
	"errors"
	"net/http"

	"github.com/ardiland/ardilandcom/internal/auth"
	"github.com/ardiland/ardilandcom/internal/telemetry/tracing"
	"github.com/ardiland/ardilandcom/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

type sessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*auth.Session, error)
}

type AuthMiddlewareHandler struct {
	sessionValidator sessionValidator
}

func NewAuthMiddlewareHandler(sessionValidator sessionValidator) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		sessionValidator: sessionValidator,
	}
}

// AuthCheck lets a request through only with a currently valid bearer session token.
func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			// preflight requests carry no credentials
			if r.Method == http.MethodOptions {
				span.SetStatus(codes.Ok, "options-ok")
				next.ServeHTTP(w, r)
				return
			}

			token, ok := pkg.BearerToken(r)
			if !ok {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				span.SetStatus(codes.Error, "missing-auth-token")
				pkg.WriteUnauthorized(w, "No token provided")
				return
			}

			if _, err := h.sessionValidator.ValidateSession(ctx, token); err != nil {
				if errors.Is(err, auth.ErrSessionNotFound) {
					log.Tracef("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
					span.SetStatus(codes.Error, "invalid-token")
					pkg.WriteUnauthorized(w, "Invalid or expired token")
					return
				}

				log.Errorf("[failed session check] => %s: %s", r.URL.Path, err)
				span.SetStatus(codes.Error, "check-session-err")
				span.RecordError(err)
				pkg.WriteInternalError(w, "Authentication check failed")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
