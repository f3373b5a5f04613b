package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sportsedge/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// Initialize creates a database connection pool and applies the schema.
func Initialize(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.ApplySchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"host": cfg.Database.Host,
		"name": cfg.Database.Name,
	}).Info("Database initialized")

	return db, nil
}

// ApplySchema creates the tables and indexes if they are missing.
func (db *DB) ApplySchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
