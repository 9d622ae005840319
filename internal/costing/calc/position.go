package calc

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	payrollcalc "guardops_backend/internal/payroll/calc"
)

// Position is one staffing line in a quote. CargoID and RolID are role
// classification tags; they carry no cost of their own but a change to them
// still invalidates the cached employer cost because role reclassification
// usually accompanies a pay review.
type Position struct {
	ID      uuid.UUID `json:"id"`
	QuoteID uuid.UUID `json:"quoteId"`

	PuestoTrabajoID uuid.UUID `json:"puestoTrabajoId"`
	CargoID         uuid.UUID `json:"cargoId"`
	RolID           uuid.UUID `json:"rolId"`

	Weekdays  string `json:"weekdays"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	NumGuards  int `json:"numGuards"`
	NumPuestos int `json:"numPuestos"`

	Salary payrollcalc.SalaryInput `json:"salary"`

	EmployerCost           Cached[payrollcalc.EmployerCostResult] `json:"employerCost"`
	MonthlyPositionCostCLP int64                                  `json:"monthlyPositionCostClp"`
}

// CostInputs are the position fields whose change invalidates the cached
// employer cost. Schedule and description edits are deliberately excluded so
// historical figures do not drift on cosmetic changes.
type CostInputs struct {
	BaseSalaryCLP int64
	AFPProvider   string
	HealthSystem  payrollcalc.HealthSystem
	HealthPlanPct decimal.Decimal
	CargoID       uuid.UUID
	RolID         uuid.UUID
}

// CostInputs extracts the cost-bearing fields of the position.
func (p Position) CostInputs() CostInputs {
	return CostInputs{
		BaseSalaryCLP: p.Salary.BaseSalaryCLP,
		AFPProvider:   p.Salary.AFPProvider,
		HealthSystem:  p.Salary.HealthSystem,
		HealthPlanPct: p.Salary.HealthPlanPct,
		CargoID:       p.CargoID,
		RolID:         p.RolID,
	}
}

// NeedsRecompute decides whether an update from prev to next requires a fresh
// employer-cost computation, or whether the previous cached result may be
// carried over.
func NeedsRecompute(prev, next Position, force bool) bool {
	if force {
		return true
	}
	if !next.EmployerCost.Valid {
		return true
	}
	a, b := prev.CostInputs(), next.CostInputs()
	return a.BaseSalaryCLP != b.BaseSalaryCLP ||
		a.AFPProvider != b.AFPProvider ||
		a.HealthSystem != b.HealthSystem ||
		!a.HealthPlanPct.Equal(b.HealthPlanPct) ||
		a.CargoID != b.CargoID ||
		a.RolID != b.RolID
}

// RecomputePosition refreshes the position's employer cost under the given
// rule snapshot. When force is false and the cached result is still valid for
// the snapshot's version, only the derived monthly cost is refreshed (guard
// and post counts may have changed without touching salary inputs). On
// computation failure the input position is returned unmodified so the
// previous cached value survives.
func RecomputePosition(pos Position, rules payrollcalc.RuleSnapshot, force bool) (Position, error) {
	if pos.NumGuards < 1 {
		return pos, ErrInvalidPosition
	}

	if !force && !pos.EmployerCost.StaleFor(rules.Version) {
		pos.MonthlyPositionCostCLP = monthlyPositionCost(pos.EmployerCost.Value.MonthlyEmployerCostCLP, pos.NumGuards, pos.NumPuestos)
		return pos, nil
	}

	result, err := payrollcalc.ComputeEmployerCost(pos.Salary, rules)
	if err != nil {
		return pos, err
	}

	pos.EmployerCost = NewCached(result, rules.Version, result.ComputedAt)
	pos.MonthlyPositionCostCLP = monthlyPositionCost(result.MonthlyEmployerCostCLP, pos.NumGuards, pos.NumPuestos)
	return pos, nil
}

// monthlyPositionCost multiplies the per-guard employer cost out to the whole
// line. numPuestos is floored at 1: a zero-post line is meaningless, not an
// error.
func monthlyPositionCost(employerCostCLP int64, numGuards, numPuestos int) int64 {
	if numPuestos < 1 {
		numPuestos = 1
	}
	return employerCostCLP * int64(numGuards) * int64(numPuestos)
}

// nowUTC is the clock for freshly built summaries. Overridable in tests.
var nowUTC = func() time.Time { return time.Now().UTC() }
