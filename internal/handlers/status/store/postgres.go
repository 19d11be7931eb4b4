package store

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"maglinc-site/internal/common/database"
	"maglinc-site/internal/common/errors"
	"maglinc-site/internal/common/observability"
	"maglinc-site/internal/models"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS status_checks (
	id          UUID PRIMARY KEY,
	client_name TEXT NOT NULL,
	timestamp   TIMESTAMPTZ NOT NULL
)`
	createIndexSQL = `CREATE INDEX IF NOT EXISTS status_checks_timestamp_idx ON status_checks (timestamp DESC)`

	insertSQL = `INSERT INTO status_checks (id, client_name, timestamp) VALUES ($1, $2, $3)`
	listSQL   = `SELECT id, client_name, timestamp FROM status_checks ORDER BY timestamp DESC LIMIT $1`
)

// Postgres stores records in the status_checks table.
type Postgres struct {
	client *database.PostgresClient
}

func NewPostgres(client *database.PostgresClient) *Postgres {
	return &Postgres{client: client}
}

// EnsureSchema creates the table and index when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createTableSQL, createIndexSQL} {
		if _, err := p.client.Exec(ctx, stmt); err != nil {
			return errors.NewStatusStoreFailedError("migrate", err)
		}
	}
	return nil
}

func (p *Postgres) Create(ctx context.Context, rec *models.StatusRecord) (err error) {
	ctx, span := observability.StartSpan(ctx, "status.store.create",
		attribute.String("db.system", "postgresql"),
		attribute.String("status.id", rec.ID),
	)
	defer func() { observability.EndSpan(span, err) }()

	if _, execErr := p.client.Exec(ctx, insertSQL, rec.ID, rec.ClientName, rec.Timestamp); execErr != nil {
		return errors.NewStatusStoreFailedError("insert", execErr)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]models.StatusRecord, error) {
	rows, err := p.client.Query(ctx, listSQL, NormalizeLimit(limit))
	if err != nil {
		return nil, errors.NewStatusStoreFailedError("list", err)
	}
	defer rows.Close()

	records := []models.StatusRecord{}
	for rows.Next() {
		var rec models.StatusRecord
		if err := rows.Scan(&rec.ID, &rec.ClientName, &rec.Timestamp); err != nil {
			return nil, errors.NewStatusStoreFailedError("scan", err)
		}
		rec.Timestamp = rec.Timestamp.UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStatusStoreFailedError("list", fmt.Errorf("row iteration: %w", err))
	}
	return records, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

func (p *Postgres) Name() string {
	return "postgres"
}
