package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// HealthRepository checks the database for the health endpoints.
type HealthRepository struct {
	db *sqlx.DB
}

// NewHealthRepository constructs a HealthRepository.
func NewHealthRepository(db *sqlx.DB) *HealthRepository {
	return &HealthRepository{db: db}
}

// Ping verifies the connection is usable.
func (r *HealthRepository) Ping(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("database not configured")
	}
	return r.db.PingContext(ctx)
}

// Version returns the server version string.
func (r *HealthRepository) Version(ctx context.Context) (string, error) {
	var version string
	if err := r.db.GetContext(ctx, &version, "SELECT version()"); err != nil {
		return "", fmt.Errorf("query version: %w", err)
	}
	return version, nil
}
