package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the bootstrap DDL. All statements are idempotent.
func Schema() string {
	return schemaSQL
}

// EnsureSchema creates missing tables and indexes. It does not alter existing ones.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Debugln("db schema ensured")
	return nil
}
