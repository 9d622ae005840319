package repository

import (
	"context"

	"github.com/google/uuid"

	"guardops_backend/internal/costing/calc"
)

// Quote statuses.
const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Quote is a commercial quote header. The cost summary and sale price are
// caches written by the costing engine; positions and cost lines are the
// source of truth.
type Quote struct {
	ID             uuid.UUID `db:"id"`
	OrganizationID uuid.UUID `db:"organization_id"`
	Name           string    `db:"name"`
	ClientName     string    `db:"client_name"`
	Status         string    `db:"status"`

	Params              calc.QuoteParameters `db:"params"`
	CostSummary         *calc.Summary        `db:"cost_summary"`
	SalePriceMonthlyCLP int64                `db:"sale_price_monthly_clp"`
	RuleVersion         int                  `db:"rule_version"`

	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

// CreateQuoteParams contains data for creating a quote.
type CreateQuoteParams struct {
	OrganizationID uuid.UUID
	Name           string
	ClientName     string
	Params         calc.QuoteParameters
}

// UpdateQuoteParams contains data for updating a quote header. Nil fields
// are left unchanged.
type UpdateQuoteParams struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           *string
	ClientName     *string
	Status         *string
	Params         *calc.QuoteParameters
}

// ListQuotesParams defines filters for listing quotes.
type ListQuotesParams struct {
	OrganizationID uuid.UUID
	Status         string
	Search         string
	Offset         int
	Limit          int
}

// Repository defines quote header storage operations.
type Repository interface {
	Create(ctx context.Context, params CreateQuoteParams) (Quote, error)
	Update(ctx context.Context, params UpdateQuoteParams) (Quote, error)
	Delete(ctx context.Context, organizationID, id uuid.UUID) error
	GetByID(ctx context.Context, organizationID, id uuid.UUID) (Quote, error)
	List(ctx context.Context, params ListQuotesParams) ([]Quote, int, error)
}
