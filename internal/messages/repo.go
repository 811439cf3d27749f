package messages

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardiland/ardilandcom/internal/telemetry/tracing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var _ messageRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, m *ContactMessage) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "messagesRepo.Create")
	defer span.End()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO contact_message (id, name, email, message) VALUES ($1, $2, $3, $4) RETURNING read, created_at`,
		m.ID, m.Name, m.Email, m.Message,
	).Scan(&m.Read, &m.CreatedAt); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// All returns messages, newest first.
func (r *Repo) All(ctx context.Context) ([]*ContactMessage, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "messagesRepo.All")
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, email, message, read, created_at FROM contact_message ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	list := []*ContactMessage{}
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		list = append(list, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read messages: %w", err)
	}

	return list, nil
}

func (r *Repo) MarkRead(ctx context.Context, id string) (*ContactMessage, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "messagesRepo.MarkRead")
	defer span.End()

	if uuid.Validate(id) != nil {
		return nil, ErrMessageNotFound
	}

	var m ContactMessage
	err := r.db.QueryRow(
		ctx,
		`UPDATE contact_message SET read = true WHERE id = $1
		RETURNING id, name, email, message, read, created_at`,
		id,
	).Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Read, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("mark message read: %w", err)
	}

	return &m, nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "messagesRepo.Delete")
	defer span.End()

	if uuid.Validate(id) != nil {
		return ErrMessageNotFound
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM contact_message WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}
	return nil
}
