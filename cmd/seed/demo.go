package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardiland/ardilandcom/internal/essays"
	"github.com/ardiland/ardilandcom/internal/products"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

//go:embed demo_content.json
var demoContentJSON []byte

// demo essays are written in markdown and stored as sanitized HTML
type demoContent struct {
	Products []*products.Product `json:"products"`
	Essays   []*essays.Essay     `json:"essays"`
}

type productCreator interface {
	Create(ctx context.Context, p *products.Product) error
}

type essayCreator interface {
	Create(ctx context.Context, e *essays.Essay) error
}

type demoStores struct {
	products productCreator
	essays   essayCreator
}

func newDemoStores(dbPool *pgxpool.Pool) demoStores {
	return demoStores{
		products: products.NewRepo(dbPool),
		essays:   essays.NewRepo(dbPool),
	}
}

func loadDemoContent() (*demoContent, error) {
	var content demoContent
	if err := json.Unmarshal(demoContentJSON, &content); err != nil {
		return nil, fmt.Errorf("decode demo content: %w", err)
	}

	renderer := essays.NewContentRenderer()
	for _, e := range content.Essays {
		html, err := renderer.Render(e.Content, essays.FormatMarkdown)
		if err != nil {
			return nil, fmt.Errorf("render essay %s: %w", e.Slug, err)
		}
		e.Content = html
	}

	return &content, nil
}

// insert adds the demo content, skipping slugs already present.
func (c *demoContent) insert(ctx context.Context, stores demoStores) error {
	for _, p := range c.Products {
		if err := stores.products.Create(ctx, p); err != nil {
			if errors.Is(err, products.ErrProductSlugExists) {
				log.Debugf("product [%s] exists, skipped", p.Slug)
				continue
			}
			return fmt.Errorf("create product %s: %w", p.Slug, err)
		}
		log.Infof("product [%s] added", p.Slug)
	}

	for _, e := range c.Essays {
		if err := stores.essays.Create(ctx, e); err != nil {
			if errors.Is(err, essays.ErrEssaySlugExists) {
				log.Debugf("essay [%s] exists, skipped", e.Slug)
				continue
			}
			return fmt.Errorf("create essay %s: %w", e.Slug, err)
		}
		log.Infof("essay [%s] added", e.Slug)
	}

	return nil
}
