// Package postgres stores time-series points in a PostgreSQL table per
// measurement. TimescaleDB hypertables work unchanged.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/a3tai/mcp-bloodwork/internal/logging"
	"github.com/a3tai/mcp-bloodwork/internal/storage"
)

var pgLogger = logging.Logger(logging.SourceStorage, "backend", "postgres")

// Store implements storage.TimeSeries on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL.
func New(ctx context.Context, databaseURL string, maxConns, minConns int32) (*Store, error) {
	pool, err := NewPool(ctx, databaseURL, maxConns, minConns)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// EnsureSchema creates the table and index of measurement when missing.
func (s *Store) EnsureSchema(ctx context.Context, measurement string) error {
	table, err := tableName(measurement)
	if err != nil {
		return err
	}

	for _, stmt := range createTableSQL(table, measurement) {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema for %s: %w", measurement, err)
		}
	}

	pgLogger.Info("schema ready", "table", measurement)
	return nil
}

// WritePoints inserts all points in one transaction.
func (s *Store) WritePoints(ctx context.Context, points []storage.Point) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, p := range points {
		table, err := tableName(p.Measurement)
		if err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		args, err := insertArgs(p)
		if err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		if _, err := tx.Exec(ctx, insertSQL(table), args...); err != nil {
			return fmt.Errorf("failed to insert point %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit points: %w", err)
	}
	return nil
}

// Query returns the rows of measurement matching f, newest first.
func (s *Store) Query(ctx context.Context, measurement string, f storage.Filter) ([]storage.Row, error) {
	table, err := tableName(measurement)
	if err != nil {
		return nil, err
	}

	query, args := selectSQL(table, f)
	pgLogger.Debug("query", "sql", query, "args", len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", measurement, err)
	}
	defer rows.Close()

	result := []storage.Row{}
	for rows.Next() {
		var row storage.Row
		if err := rows.Scan(&row.Time, &row.PatientName, &row.TestName, &row.Unit, &row.ReferenceRange, &row.Value); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		row.Time = row.Time.UTC()
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

// Delete removes the points of measurement stamped exactly at.
func (s *Store) Delete(ctx context.Context, measurement string, at time.Time) (int64, error) {
	table, err := tableName(measurement)
	if err != nil {
		return 0, err
	}

	tag, err := s.pool.Exec(ctx, deleteSQL(table), at)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %s: %w", measurement, err)
	}
	return tag.RowsAffected(), nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// PoolStats is a snapshot of the connection pool.
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

// Stats returns connection pool statistics.
func (s *Store) Stats() PoolStats {
	stat := s.pool.Stat()
	return PoolStats{
		TotalConns:    stat.TotalConns(),
		IdleConns:     stat.IdleConns(),
		AcquiredConns: stat.AcquiredConns(),
		MaxConns:      stat.MaxConns(),
	}
}

// Close closes the pool.
func (s *Store) Close() {
	s.pool.Close()
}

var _ storage.TimeSeries = (*Store)(nil)
