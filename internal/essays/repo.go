package essays

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardiland/ardilandcom/internal/telemetry/tracing"
	"github.com/ardiland/ardilandcom/pkg"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const essayColumns = `id, slug, title, summary, content, featured, sort_order, created_at, updated_at`

var _ essayRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns essays by sort order; limit <= 0 means all of them.
func (r *Repo) List(ctx context.Context, limit int) ([]*Essay, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "essaysRepo.List")
	span.SetAttributes(attribute.Int("limit", limit))
	defer span.End()

	query := `SELECT ` + essayColumns + ` FROM essay ORDER BY sort_order ASC, created_at ASC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query essays: %w", err)
	}
	return rows2essays(rows)
}

func (r *Repo) Featured(ctx context.Context, limit int) ([]*Essay, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "essaysRepo.Featured")
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+essayColumns+` FROM essay WHERE featured = true ORDER BY sort_order ASC, created_at ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query featured essays: %w", err)
	}
	return rows2essays(rows)
}

func (r *Repo) BySlug(ctx context.Context, slug string) (*Essay, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "essaysRepo.BySlug")
	defer span.End()

	rows, err := r.db.Query(ctx, `SELECT `+essayColumns+` FROM essay WHERE slug = $1`, slug)
	if err != nil {
		return nil, fmt.Errorf("query essay by slug: %w", err)
	}
	return singleEssay(rows)
}

func (r *Repo) ByID(ctx context.Context, id string) (*Essay, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "essaysRepo.ByID")
	defer span.End()

	if uuid.Validate(id) != nil {
		return nil, ErrEssayNotFound
	}

	rows, err := r.db.Query(ctx, `SELECT `+essayColumns+` FROM essay WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query essay by id: %w", err)
	}
	return singleEssay(rows)
}

func (r *Repo) Create(ctx context.Context, e *Essay) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "essaysRepo.Create")
	defer span.End()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	err := r.db.QueryRow(
		ctx,
		`INSERT INTO essay (id, slug, title, summary, content, featured, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		e.ID, e.Slug, e.Title, e.Summary, e.Content, e.Featured, e.SortOrder,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrEssaySlugExists
		}
		return fmt.Errorf("insert essay: %w", err)
	}

	return nil
}

func (r *Repo) Update(ctx context.Context, e *Essay) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "essaysRepo.Update")
	defer span.End()

	err := r.db.QueryRow(
		ctx,
		`UPDATE essay SET
			slug = $2, title = $3, summary = $4, content = $5, featured = $6, sort_order = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		e.ID, e.Slug, e.Title, e.Summary, e.Content, e.Featured, e.SortOrder,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEssayNotFound
		}
		if pkg.IsUniqueViolationError(err) {
			return ErrEssaySlugExists
		}
		return fmt.Errorf("update essay: %w", err)
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "essaysRepo.Delete")
	defer span.End()

	if uuid.Validate(id) != nil {
		return ErrEssayNotFound
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM essay WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete essay: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEssayNotFound
	}
	return nil
}

func singleEssay(rows pgx.Rows) (*Essay, error) {
	list, err := rows2essays(rows)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrEssayNotFound
	}
	return list[0], nil
}

func rows2essays(rows pgx.Rows) ([]*Essay, error) {
	defer rows.Close()

	list := []*Essay{}
	for rows.Next() {
		var e Essay
		if err := rows.Scan(
			&e.ID, &e.Slug, &e.Title, &e.Summary, &e.Content, &e.Featured, &e.SortOrder, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan essay: %w", err)
		}
		list = append(list, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read essays: %w", err)
	}

	return list, nil
}
