package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"saferoute/pkg/geo"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS accident_reports (
	id               BIGSERIAL PRIMARY KEY,
	lat              DOUBLE PRECISION NOT NULL,
	lng              DOUBLE PRECISION NOT NULL,
	location_name    TEXT NOT NULL,
	severity         TEXT NOT NULL,
	vehicle_type     TEXT NOT NULL,
	casualties       INTEGER NOT NULL DEFAULT 0,
	description      TEXT NOT NULL DEFAULT '',
	reporter_name    TEXT NOT NULL,
	reporter_contact TEXT NOT NULL DEFAULT '',
	reported_at      TIMESTAMPTZ NOT NULL,
	files            JSONB NOT NULL DEFAULT '[]'::jsonb,
	status           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS accident_reports_reported_at_idx
	ON accident_reports (reported_at DESC, id DESC);`

// PostgresStore stores reports in the accident_reports table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn, pings the server and creates the
// schema if it does not exist.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Printf("Connected to PostgreSQL")
	return s, nil
}

// EnsureSchema creates the reports table and its index.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Create inserts r in a transaction: the row is written first to obtain
// the ID, then the files column is updated with keys derived from it.
func (s *PostgresStore) Create(ctx context.Context, r *Report) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO accident_reports
			(lat, lng, location_name, severity, vehicle_type, casualties,
			 description, reporter_name, reporter_contact, reported_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		r.Location.Lat, r.Location.Lng, r.Location.Name, string(r.Severity),
		r.VehicleType, r.Casualties, r.Description, r.Reporter.Name,
		r.Reporter.Contact, r.Timestamp, r.Status,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	assignKeys(r)
	files, err := json.Marshal(filesOrEmpty(r.Files))
	if err != nil {
		return fmt.Errorf("failed to encode files: %w", err)
	}
	if _, err := tx.Exec(ctx, `UPDATE accident_reports SET files = $1 WHERE id = $2`, string(files), r.ID); err != nil {
		return fmt.Errorf("failed to store files: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]Report, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, lat, lng, location_name, severity, vehicle_type, casualties,
		       description, reporter_name, reporter_contact, reported_at,
		       files::text, status
		FROM accident_reports
		ORDER BY reported_at DESC, id DESC
		LIMIT $1`, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var (
			r        Report
			severity string
			files    string
		)
		if err := rows.Scan(
			&r.ID, &r.Location.Lat, &r.Location.Lng, &r.Location.Name,
			&severity, &r.VehicleType, &r.Casualties, &r.Description,
			&r.Reporter.Name, &r.Reporter.Contact, &r.Timestamp, &files, &r.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		r.Severity = Severity(severity)
		r.Timestamp = r.Timestamp.UTC()
		if err := json.Unmarshal([]byte(files), &r.Files); err != nil {
			return nil, fmt.Errorf("failed to decode files of report %d: %w", r.ID, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reports: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM accident_reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) Locations(ctx context.Context) ([]geo.Coordinate, error) {
	rows, err := s.pool.Query(ctx, `SELECT lat, lng FROM accident_reports ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query report locations: %w", err)
	}
	defer rows.Close()

	var out []geo.Coordinate
	for rows.Next() {
		var c geo.Coordinate
		if err := rows.Scan(&c.Lat, &c.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func filesOrEmpty(f []File) []File {
	if f == nil {
		return []File{}
	}
	return f
}
