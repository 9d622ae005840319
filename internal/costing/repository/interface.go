package repository

import (
	"context"

	"github.com/google/uuid"

	"guardops_backend/internal/costing/calc"
)

// Repository defines storage for quote positions, ancillary cost lines and
// the cached cost summary on the quote header. Every query is scoped by
// organization id.
type Repository interface {
	ListPositions(ctx context.Context, organizationID, quoteID uuid.UUID) ([]calc.Position, error)
	GetPosition(ctx context.Context, organizationID, id uuid.UUID) (calc.Position, error)
	InsertPosition(ctx context.Context, organizationID uuid.UUID, pos calc.Position) error
	UpdatePosition(ctx context.Context, organizationID uuid.UUID, pos calc.Position) error
	DeletePosition(ctx context.Context, organizationID, id uuid.UUID) error

	ListCostLines(ctx context.Context, organizationID, quoteID uuid.UUID) ([]calc.CostLine, error)
	GetCostLine(ctx context.Context, organizationID, id uuid.UUID) (calc.CostLine, error)
	InsertCostLine(ctx context.Context, organizationID uuid.UUID, line calc.CostLine) error
	UpdateCostLine(ctx context.Context, organizationID uuid.UUID, line calc.CostLine) error
	DeleteCostLine(ctx context.Context, organizationID, id uuid.UUID) error

	SaveQuoteSummary(ctx context.Context, organizationID, quoteID uuid.UUID, summary calc.Summary, salePriceCLP int64) error
}
