package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ardiland/ardilandcom/internal/telemetry/tracing"
	"github.com/ardiland/ardilandcom/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrAdminNotFound = errors.New("admin user not found")
	ErrAdminExists   = errors.New("admin user already exists")
)

// AdminUser is a site administrator. Only provisioning creates them.
type AdminUser struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the public view of an admin user.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (a *AdminUser) Identity() Identity {
	return Identity{ID: a.ID, Username: a.Username}
}

var _ adminStore = (*AdminRepo)(nil)

type AdminRepo struct {
	db *pgxpool.Pool
}

func NewAdminRepo(db *pgxpool.Pool) *AdminRepo {
	return &AdminRepo{
		db: db,
	}
}

// GetByUsername looks the username up exactly as given, case-sensitive.
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*AdminUser, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "adminRepo.GetByUsername")
	defer span.End()

	var admin AdminUser
	err := r.db.QueryRow(
		ctx,
		`SELECT id, username, password_hash, created_at FROM admin_user WHERE username = $1`,
		username,
	).Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("get admin by username: %w", err)
	}

	return &admin, nil
}

// Create stores a new admin user with an already hashed password.
func (r *AdminRepo) Create(ctx context.Context, username, passwordHash string) (*AdminUser, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "adminRepo.Create")
	defer span.End()

	if username == "" || passwordHash == "" {
		return nil, errors.New("admin username or password hash empty")
	}

	admin := &AdminUser{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
	}
	err := r.db.QueryRow(
		ctx,
		`INSERT INTO admin_user (id, username, password_hash) VALUES ($1, $2, $3) RETURNING created_at`,
		admin.ID, admin.Username, admin.PasswordHash,
	).Scan(&admin.CreatedAt)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrAdminExists
		}
		return nil, fmt.Errorf("create admin: %w", err)
	}

	return admin, nil
}
