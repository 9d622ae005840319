package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"guardops_backend/internal/payroll/calc"
	"guardops_backend/platform/apperr"
)

const snapshotNotFoundMessage = "payroll rule snapshot not found"

// Repo implements the payroll rules repository on Postgres. The full
// snapshot is stored as a JSON document next to its version column; the
// document is the source of truth, the columns exist for ordering and
// lookup.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a payroll rules repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Insert stores a snapshot under the next version number. The version is
// assigned inside a transaction so concurrent publishes cannot collide.
func (r *Repo) Insert(ctx context.Context, snapshot calc.RuleSnapshot) (calc.RuleSnapshot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return calc.RuleSnapshot{}, fmt.Errorf("begin snapshot insert: %w", err)
	}
	defer tx.Rollback(ctx)

	var nextVersion int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) + 1 FROM payroll_rule_snapshots`,
	).Scan(&nextVersion); err != nil {
		return calc.RuleSnapshot{}, fmt.Errorf("next snapshot version: %w", err)
	}

	snapshot.Version = nextVersion
	snapshot.PublishedAt = time.Now().UTC()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return calc.RuleSnapshot{}, fmt.Errorf("marshal snapshot: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO payroll_rule_snapshots (version, published_at, data) VALUES ($1, $2, $3)`,
		snapshot.Version, snapshot.PublishedAt, data,
	); err != nil {
		return calc.RuleSnapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return calc.RuleSnapshot{}, fmt.Errorf("commit snapshot insert: %w", err)
	}

	return snapshot, nil
}

// Latest returns the highest published version.
func (r *Repo) Latest(ctx context.Context) (calc.RuleSnapshot, error) {
	return r.scanOne(ctx,
		`SELECT data FROM payroll_rule_snapshots ORDER BY version DESC LIMIT 1`)
}

// ByVersion returns one specific version.
func (r *Repo) ByVersion(ctx context.Context, version int) (calc.RuleSnapshot, error) {
	return r.scanOne(ctx,
		`SELECT data FROM payroll_rule_snapshots WHERE version = $1`, version)
}

// LatestVersion returns the highest version number, 0 when none exist.
func (r *Repo) LatestVersion(ctx context.Context) (int, error) {
	var version int
	if err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM payroll_rule_snapshots`,
	).Scan(&version); err != nil {
		return 0, fmt.Errorf("latest snapshot version: %w", err)
	}
	return version, nil
}

// List returns all versions, newest first.
func (r *Repo) List(ctx context.Context) ([]calc.RuleSnapshot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT data FROM payroll_rule_snapshots ORDER BY version DESC`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []calc.RuleSnapshot
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		var snapshot calc.RuleSnapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

func (r *Repo) scanOne(ctx context.Context, query string, args ...interface{}) (calc.RuleSnapshot, error) {
	var data []byte
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return calc.RuleSnapshot{}, apperr.NotFound(snapshotNotFoundMessage)
		}
		return calc.RuleSnapshot{}, fmt.Errorf("query snapshot: %w", err)
	}

	var snapshot calc.RuleSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return calc.RuleSnapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return snapshot, nil
}
