package products

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

const productColumns = `id, slug, name, description, status, why, problem, current_state, next,
	cta_label, cta_url, github_url, demo_url, featured, sort_order,
	icon_initials, icon_color, image, screenshots, tech_stack, created_at, updated_at`

var _ productRepo = (*Repo)(nil)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) All(ctx context.Context) ([]*Product, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "productsRepo.All")
	defer span.End()

	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM product ORDER BY sort_order ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	return rows2products(rows)
}

func (r *Repo) Featured(ctx context.Context, limit int) ([]*Product, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "productsRepo.Featured")
	span.SetAttributes(attribute.Int("limit", limit))
	defer span.End()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+productColumns+` FROM product WHERE featured = true ORDER BY sort_order ASC, created_at ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query featured products: %w", err)
	}
	return rows2products(rows)
}

func (r *Repo) BySlug(ctx context.Context, slug string) (*Product, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "productsRepo.BySlug")
	defer span.End()

	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM product WHERE slug = $1`, slug)
	if err != nil {
		return nil, fmt.Errorf("query product by slug: %w", err)
	}
	return singleProduct(rows)
}

func (r *Repo) ByID(ctx context.Context, id string) (*Product, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "productsRepo.ByID")
	defer span.End()

	if uuid.Validate(id) != nil {
		return nil, ErrProductNotFound
	}

	rows, err := r.db.Query(ctx, `SELECT `+productColumns+` FROM product WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}
	return singleProduct(rows)
}

func (r *Repo) Create(ctx context.Context, p *Product) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "productsRepo.Create")
	defer span.End()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	normalizeLists(p)

	err := r.db.QueryRow(
		ctx,
		`INSERT INTO product (
			id, slug, name, description, status, why, problem, current_state, next,
			cta_label, cta_url, github_url, demo_url, featured, sort_order,
			icon_initials, icon_color, image, screenshots, tech_stack
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING created_at, updated_at`,
		p.ID, p.Slug, p.Name, p.Description, p.Status, p.Why, p.Problem, p.CurrentState, p.Next,
		p.CtaLabel, p.CtaURL, p.GithubURL, p.DemoURL, p.Featured, p.SortOrder,
		p.IconInitials, p.IconColor, p.Image, p.Screenshots, p.TechStack,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrProductSlugExists
		}
		return fmt.Errorf("insert product: %w", err)
	}

	return nil
}

// Update overwrites every editable column of the product with the given id.
func (r *Repo) Update(ctx context.Context, p *Product) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "productsRepo.Update")
	defer span.End()

	normalizeLists(p)

	err := r.db.QueryRow(
		ctx,
		`UPDATE product SET
			slug = $2, name = $3, description = $4, status = $5, why = $6, problem = $7,
			current_state = $8, next = $9, cta_label = $10, cta_url = $11, github_url = $12,
			demo_url = $13, featured = $14, sort_order = $15, icon_initials = $16,
			icon_color = $17, image = $18, screenshots = $19, tech_stack = $20, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Slug, p.Name, p.Description, p.Status, p.Why, p.Problem,
		p.CurrentState, p.Next, p.CtaLabel, p.CtaURL, p.GithubURL,
		p.DemoURL, p.Featured, p.SortOrder, p.IconInitials,
		p.IconColor, p.Image, p.Screenshots, p.TechStack,
	).Scan(&p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		if pkg.IsUniqueViolationError(err) {
			return ErrProductSlugExists
		}
		return fmt.Errorf("update product: %w", err)
	}

	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "productsRepo.Delete")
	defer span.End()

	if uuid.Validate(id) != nil {
		return ErrProductNotFound
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM product WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func normalizeLists(p *Product) {
	if p.Screenshots == nil {
		p.Screenshots = []string{}
	}
	if p.TechStack == nil {
		p.TechStack = []string{}
	}
}

func singleProduct(rows pgx.Rows) (*Product, error) {
	products, err := rows2products(rows)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}
	return products[0], nil
}

func rows2products(rows pgx.Rows) ([]*Product, error) {
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID, &p.Slug, &p.Name, &p.Description, &p.Status, &p.Why, &p.Problem, &p.CurrentState, &p.Next,
			&p.CtaLabel, &p.CtaURL, &p.GithubURL, &p.DemoURL, &p.Featured, &p.SortOrder,
			&p.IconInitials, &p.IconColor, &p.Image, &p.Screenshots, &p.TechStack, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}

	return products, nil
}
