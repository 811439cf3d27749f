package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardiland/ardilandcom/internal/telemetry/tracing"
	"github.com/ardiland/ardilandcom/pkg"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultTTL = 24 * time.Hour
	// TokenBytes is the amount of random bytes behind each session token (256 bits)
	TokenBytes = 32
)

// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyPasswordHash is compared against when the username is unknown, so both
// failure paths cost one bcrypt run at pkg.DefaultPasswordHashCost.
// The password behind it was random and is not kept anywhere.
const dummyPasswordHash = "$2a$10$qGc94s.bewLf7t202/Ghu.TZgI5iIelY8RGAhwd27KQst8zZQExJq"

type adminStore interface {
	GetByUsername(ctx context.Context, username string) (*AdminUser, error)
}

type sessionStore interface {
	Create(ctx context.Context, session *Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByToken(ctx context.Context, token string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type LoginResult struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

type Service struct {
	admins   adminStore
	sessions sessionStore
	ttl      time.Duration

	// injectable clock and token generator (for unit and dev testing)
	NowFunc        func() time.Time
	RandStringFunc func(n int) (string, error)
}

func NewService(admins adminStore, sessions sessionStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		admins:         admins,
		sessions:       sessions,
		ttl:            ttl,
		NowFunc:        time.Now,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}

// ValidateCredentials returns the identity of the admin matching both username
// and password, or ErrInvalidCredentials. Other errors come from the store.
func (s *Service) ValidateCredentials(ctx context.Context, username, password string) (*Identity, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.ValidateCredentials")
	defer span.End()

	admin, err := s.admins.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) {
			pkg.CheckPasswordHash(password, dummyPasswordHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("validate credentials: %w", err)
	}

	if !pkg.CheckPasswordHash(password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	identity := admin.Identity()
	return &identity, nil
}

// CreateSession stores a new session for the user and returns its token.
// Existing sessions of the same user stay valid.
func (s *Service) CreateSession(ctx context.Context, userID string) (string, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.CreateSession")
	defer span.End()

	token, err := s.RandStringFunc(TokenBytes)
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	session := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: s.NowFunc().Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}

	return token, nil
}

// ValidateSession returns the active session for token, or ErrSessionNotFound.
// An expired session is deleted when it is found.
func (s *Service) ValidateSession(ctx context.Context, token string) (*Session, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.ValidateSession")
	defer span.End()

	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if session.Expired(s.NowFunc()) {
		span.SetAttributes(attribute.Bool("session.expired", true))
		if err := s.sessions.DeleteByID(ctx, session.ID); err != nil {
			return nil, err
		}
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// DeleteSession revokes the session. A missing session is not an error.
func (s *Service) DeleteSession(ctx context.Context, token string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.DeleteSession")
	defer span.End()

	if token == "" {
		return nil
	}

	deleted, err := s.sessions.DeleteByToken(ctx, token)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Bool("session.deleted", deleted))

	return nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	identity, err := s.ValidateCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.CreateSession(ctx, identity.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token: token,
		User:  *identity,
	}, nil
}

// PurgeExpired removes every session expired by now.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.NowFunc())
}

// RunSweeper purges expired sessions every interval until ctx is done.
// swept may be nil.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration, swept prometheus.Counter) {
	if interval <= 0 {
		return
	}

	log.Infof("session sweeper started, interval: %s", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infoln("session sweeper stopped")
			return
		case <-ticker.C:
			count, err := s.PurgeExpired(ctx)
			if err != nil {
				log.Errorf("purge expired sessions: %s", err)
				continue
			}
			if count > 0 {
				log.Debugf("purged %d expired sessions", count)
			}
			if swept != nil {
				swept.Add(float64(count))
			}
		}
	}
}
