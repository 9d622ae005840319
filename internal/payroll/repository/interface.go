package repository

import (
	"context"

	"guardops_backend/internal/payroll/calc"
)

// Repository defines storage operations for payroll rule snapshots.
// Snapshots are append-only: a published version is never updated.
type Repository interface {
	// Insert stores a snapshot, assigning it the next version number.
	Insert(ctx context.Context, snapshot calc.RuleSnapshot) (calc.RuleSnapshot, error)
	// Latest returns the highest published version.
	Latest(ctx context.Context) (calc.RuleSnapshot, error)
	// ByVersion returns one specific version.
	ByVersion(ctx context.Context, version int) (calc.RuleSnapshot, error)
	// LatestVersion returns the highest version number, 0 when none exist.
	LatestVersion(ctx context.Context) (int, error)
	// List returns all versions, newest first.
	List(ctx context.Context) ([]calc.RuleSnapshot, error)
}
