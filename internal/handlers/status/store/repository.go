// Package store persists status records.
package store

import (
	"context"

	"maglinc-site/internal/models"
)

// MaxListLimit caps how many records one list call returns.
const MaxListLimit = 1000

// Repository stores status records.
type Repository interface {
	Create(ctx context.Context, rec *models.StatusRecord) error
	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]models.StatusRecord, error)
	Ping(ctx context.Context) error
	Name() string
}

// NormalizeLimit clamps limit into 1..MaxListLimit; zero or negative
// means MaxListLimit.
func NormalizeLimit(limit int) int {
	if limit <= 0 || limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}
