package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardiland/ardilandcom/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSessionNotFound = errors.New("session not found")

type Session struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is no longer valid at t.
// A session expiring exactly at t is expired.
func (s *Session) Expired(t time.Time) bool {
	return !s.ExpiresAt.After(t)
}

var _ sessionStore = (*SessionRepo)(nil)

type SessionRepo struct {
	db *pgxpool.Pool
}

func NewSessionRepo(db *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{
		db: db,
	}
}

func (r *SessionRepo) Create(ctx context.Context, session *Session) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionRepo.Create")
	defer span.End()

	err := r.db.QueryRow(
		ctx,
		`INSERT INTO session (id, token, user_id, expires_at) VALUES ($1, $2, $3, $4) RETURNING created_at`,
		session.ID, session.Token, session.UserID, session.ExpiresAt,
	).Scan(&session.CreatedAt)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*Session, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionRepo.GetByToken")
	defer span.End()

	var s Session
	err := r.db.QueryRow(
		ctx,
		`SELECT id, token, user_id, expires_at, created_at FROM session WHERE token = $1`,
		token,
	).Scan(&s.ID, &s.Token, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	return &s, nil
}

// DeleteByID removes the session row, if it is still there.
func (r *SessionRepo) DeleteByID(ctx context.Context, id string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionRepo.DeleteByID")
	defer span.End()

	if _, err := r.db.Exec(ctx, `DELETE FROM session WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session by id: %w", err)
	}
	return nil
}

// DeleteByToken reports whether a row was removed.
func (r *SessionRepo) DeleteByToken(ctx context.Context, token string) (bool, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionRepo.DeleteByToken")
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM session WHERE token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("delete session by token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionRepo.DeleteExpired")
	defer span.End()

	tag, err := r.db.Exec(ctx, `DELETE FROM session WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
