package repository

import (
	"context"

	"github.com/google/uuid"
)

// CostItem is a priced catalog entry ancillary cost lines reference for
// their base unit price.
type CostItem struct {
	ID             uuid.UUID `db:"id"`
	OrganizationID uuid.UUID `db:"organization_id"`
	Category       string    `db:"category"`
	Name           string    `db:"name"`
	Unit           string    `db:"unit"`
	UnitPriceCLP   int64     `db:"unit_price_clp"`
	Active         bool      `db:"active"`
	CreatedAt      string    `db:"created_at"`
	UpdatedAt      string    `db:"updated_at"`
}

// CreateCostItemParams contains data for creating a cost item.
type CreateCostItemParams struct {
	OrganizationID uuid.UUID
	Category       string
	Name           string
	Unit           string
	UnitPriceCLP   int64
}

// UpdateCostItemParams contains data for updating a cost item.
type UpdateCostItemParams struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           *string
	Unit           *string
	UnitPriceCLP   *int64
	Active         *bool
}

// ListCostItemsParams defines filters for listing cost items.
type ListCostItemsParams struct {
	OrganizationID uuid.UUID
	Category       string
	Search         string
	Offset         int
	Limit          int
	SortBy         string
	SortOrder      string
}

// Repository defines catalog storage operations.
type Repository interface {
	CreateCostItem(ctx context.Context, params CreateCostItemParams) (CostItem, error)
	UpdateCostItem(ctx context.Context, params UpdateCostItemParams) (CostItem, error)
	DeleteCostItem(ctx context.Context, organizationID uuid.UUID, id uuid.UUID) error
	GetCostItemByID(ctx context.Context, organizationID uuid.UUID, id uuid.UUID) (CostItem, error)
	GetCostItemsByIDs(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) ([]CostItem, error)
	ListCostItems(ctx context.Context, params ListCostItemsParams) ([]CostItem, int, error)
}
