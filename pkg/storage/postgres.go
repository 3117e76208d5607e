package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/opscart/vm-rightsizer/pkg/models"
)

//go:embed migrations/*.sql
var postgresFS embed.FS

// PostgresStore implements Store interface using PostgreSQL
type PostgresStore struct {
	db  *sql.DB
	dsn string
}

// NewPostgresStore creates a new PostgreSQL store
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{
		db:  db,
		dsn: dsn,
	}

	// Run migrations
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// migrate runs database migrations
func (s *PostgresStore) migrate(ctx context.Context) error {
	schema, err := postgresFS.ReadFile("migrations/001_postgres_schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// SaveRun saves a run, assigning an id when missing
func (s *PostgresStore) SaveRun(ctx context.Context, run *models.Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	query := `
		INSERT INTO runs (
			id, region, source, resources, valid, total_saving, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.ExecContext(ctx, query,
		run.ID, run.Region, run.Source, run.Resources, run.Valid,
		run.TotalSaving, run.StartedAt, run.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]*models.Run, error) {
	query := `
		SELECT id, region, source, resources, valid, total_saving, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		var run models.Run
		err := rows.Scan(
			&run.ID, &run.Region, &run.Source, &run.Resources, &run.Valid,
			&run.TotalSaving, &run.StartedAt, &run.FinishedAt,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, &run)
	}

	return runs, rows.Err()
}

// SaveAnalysis saves the verdict for one resource of a run
func (s *PostgresStore) SaveAnalysis(ctx context.Context, a *models.StoredAnalysis) error {
	if a.RunID == "" {
		return errors.New("analysis must belong to a run")
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO analyses (
			id, run_id, subscription_id, resource_id, current_sku, sku,
			valid, reason, annual_savings, candidates_scanned, source, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.RunID, a.SubscriptionID, a.ResourceID, a.CurrentSKU, a.SKU,
		a.Valid, nullString(a.Reason), nullFloat(a.AnnualSavings), a.CandidatesScanned,
		a.Source, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis for %s: %w", a.ResourceID, err)
	}
	return nil
}

// ListAnalyses retrieves the latest analyses of a subscription
func (s *PostgresStore) ListAnalyses(ctx context.Context, subscriptionID string, limit int) ([]*models.StoredAnalysis, error) {
	query := `
		SELECT id, run_id, subscription_id, resource_id, current_sku, sku,
			valid, reason, annual_savings, candidates_scanned, source, created_at
		FROM analyses
		WHERE subscription_id = $1
		ORDER BY created_at DESC, resource_id
		LIMIT $2
	`

	rows, err := s.db.QueryContext(ctx, query, subscriptionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*models.StoredAnalysis
	for rows.Next() {
		var a models.StoredAnalysis
		var reason sql.NullString
		var savings sql.NullFloat64

		err := rows.Scan(
			&a.ID, &a.RunID, &a.SubscriptionID, &a.ResourceID, &a.CurrentSKU, &a.SKU,
			&a.Valid, &reason, &savings, &a.CandidatesScanned, &a.Source, &a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		a.Reason = reason.String
		if savings.Valid {
			v := savings.Float64
			a.AnnualSavings = &v
		}

		analyses = append(analyses, &a)
	}

	return analyses, rows.Err()
}

// Ping checks database connectivity
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
