package transport

import (
	"github.com/google/uuid"

	"guardops_backend/internal/costing/calc"
)

// SalaryInputRequest carries one guard's compensation inputs. Percentages
// travel as decimal strings to avoid float drift on the wire.
type SalaryInputRequest struct {
	BaseSalaryCLP     int64  `json:"baseSalaryClp" validate:"gt=0"`
	TaxableBonusesCLP int64  `json:"taxableBonusesClp" validate:"gte=0"`
	ContractType      string `json:"contractType" validate:"required,oneof=indefinite fixed_term"`
	AFPProvider       string `json:"afpProvider" validate:"required"`
	HealthSystem      string `json:"healthSystem" validate:"required,oneof=fonasa isapre"`
	HealthPlanPct     string `json:"healthPlanPct" validate:"omitempty"`

	IncludeVacationProvision  bool    `json:"includeVacationProvision"`
	VacationProvisionPct      *string `json:"vacationProvisionPct,omitempty"`
	IncludeSeveranceProvision bool    `json:"includeSeveranceProvision"`
	SeveranceProvisionPct     *string `json:"severanceProvisionPct,omitempty"`
}

// PositionRequest is the request body for creating or replacing a position.
type PositionRequest struct {
	PuestoTrabajoID uuid.UUID `json:"puestoTrabajoId"`
	CargoID         uuid.UUID `json:"cargoId"`
	RolID           uuid.UUID `json:"rolId"`

	Weekdays  string `json:"weekdays" validate:"max=100"`
	StartTime string `json:"startTime" validate:"max=20"`
	EndTime   string `json:"endTime" validate:"max=20"`

	NumGuards  int `json:"numGuards" validate:"required,min=1"`
	NumPuestos int `json:"numPuestos" validate:"min=0"`

	Salary SalaryInputRequest `json:"salary" validate:"required"`

	// ForceRecalculate bypasses the cached employer cost on update.
	ForceRecalculate bool `json:"forceRecalculate"`
}

// CostLineRequest is the request body for creating or replacing an ancillary
// cost line. Category-specific fields are ignored by the other calculators.
type CostLineRequest struct {
	Category      string     `json:"category" validate:"required,oneof=uniform exam meal vehicle infrastructure item extra"`
	CatalogItemID *uuid.UUID `json:"catalogItemId,omitempty"`
	CalcMode      string     `json:"calcMode" validate:"omitempty,oneof=monthly annual amortized_stay"`

	Quantity             string `json:"quantity" validate:"omitempty"`
	UnitPriceOverrideCLP *int64 `json:"unitPriceOverrideClp" validate:"omitempty,gt=0"`

	IsEnabled  *bool  `json:"isEnabled,omitempty"`
	Visibility string `json:"visibility" validate:"omitempty,oneof=internal client_visible"`

	MonthlyRentCLP int64  `json:"monthlyRentClp" validate:"gte=0"`
	KmPerDay       string `json:"kmPerDay" validate:"omitempty"`
	DaysPerMonth   string `json:"daysPerMonth" validate:"omitempty"`
	KmPerLiter     string `json:"kmPerLiter" validate:"omitempty"`
	FuelPriceCLP   int64  `json:"fuelPriceClp" validate:"gte=0"`
	MaintenanceCLP int64  `json:"maintenanceClp" validate:"gte=0"`
	HasFuel        bool   `json:"hasFuel"`
}

// RecalculateRequest controls an explicit quote recomputation.
type RecalculateRequest struct {
	// Force recomputes every position even when its cached employer cost is
	// still valid for the active rule version.
	Force bool `json:"force"`
	// Async enqueues the recomputation on the worker instead of running it
	// inline.
	Async bool `json:"async"`
}

// PositionListResponse wraps a quote's positions.
type PositionListResponse struct {
	Positions []calc.Position `json:"positions"`
	Total     int             `json:"total"`
}

// QuoteCostsResponse is the computed cost structure of one quote.
type QuoteCostsResponse struct {
	QuoteID             uuid.UUID    `json:"quoteId"`
	Summary             calc.Summary `json:"summary"`
	SalePriceMonthlyCLP int64        `json:"salePriceMonthlyClp"`
	// DegradedCategories lists ancillary categories that failed to compute
	// and were zeroed in the summary.
	DegradedCategories []string `json:"degradedCategories,omitempty"`
}

// CostLineListResponse wraps a quote's ancillary cost lines.
type CostLineListResponse struct {
	Lines []calc.CostLine `json:"lines"`
	Total int             `json:"total"`
}

// RecalculateAcceptedResponse acknowledges an asynchronous recomputation.
type RecalculateAcceptedResponse struct {
	QuoteID uuid.UUID `json:"quoteId"`
	Status  string    `json:"status"`
}
