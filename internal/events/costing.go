package events

import "github.com/google/uuid"

// Event names for the costing domain.
const (
	EventQuoteCostsRecalculated = "costing.quote_costs_recalculated"
	EventPositionRecomputed     = "costing.position_recomputed"
)

// QuoteCostsRecalculated is published after a quote's cost summary has been
// rebuilt and the cached totals written to the quote header.
type QuoteCostsRecalculated struct {
	BaseEvent
	TenantID         uuid.UUID
	QuoteID          uuid.UUID
	MonthlyTotalCLP  int64
	SalePriceMonthly int64
	TotalGuards      int
}

// EventName identifies the event type.
func (QuoteCostsRecalculated) EventName() string { return EventQuoteCostsRecalculated }

// PositionRecomputed is published when a position's employer cost was
// recomputed (not on cache hits).
type PositionRecomputed struct {
	BaseEvent
	TenantID               uuid.UUID
	QuoteID                uuid.UUID
	PositionID             uuid.UUID
	MonthlyPositionCostCLP int64
	RuleVersion            int
}

// EventName identifies the event type.
func (PositionRecomputed) EventName() string { return EventPositionRecomputed }
