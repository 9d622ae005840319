package calc

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineCategory identifies which calculator prices a cost line.
type LineCategory string

const (
	CategoryUniform        LineCategory = "uniform"
	CategoryExam           LineCategory = "exam"
	CategoryMeal           LineCategory = "meal"
	CategoryVehicle        LineCategory = "vehicle"
	CategoryInfrastructure LineCategory = "infrastructure"
	CategoryItem           LineCategory = "item"
	CategoryExtra          LineCategory = "extra"
)

// CalcMode selects how a generic line's unit price is spread over a month.
type CalcMode string

const (
	// CalcModeMonthly charges quantity × unit price every month.
	CalcModeMonthly CalcMode = "monthly"
	// CalcModeAnnual amortizes quantity × unit price over twelve months.
	CalcModeAnnual CalcMode = "annual"
	// CalcModeAmortizedStay amortizes quantity × unit price over the average
	// guard stay, for per-hire expenses such as entry exams.
	CalcModeAmortizedStay CalcMode = "amortized_stay"
)

// Visibility controls whether a line appears on client-facing documents.
type Visibility string

const (
	VisibilityInternal      Visibility = "internal"
	VisibilityClientVisible Visibility = "client_visible"
)

// CostLine is one ancillary cost entry on a quote. A disabled line
// contributes zero to every total but is retained for audit and restore.
type CostLine struct {
	ID      uuid.UUID `json:"id"`
	QuoteID uuid.UUID `json:"quoteId"`

	Category      LineCategory `json:"category"`
	CatalogItemID *uuid.UUID   `json:"catalogItemId,omitempty"`
	CalcMode      CalcMode     `json:"calcMode"`

	// Quantity is the per-category count: guards for uniforms and exams,
	// rations for meals, units for generic items.
	Quantity decimal.Decimal `json:"quantity"`

	// UnitPriceOverrideCLP wins over the catalog item's base price.
	UnitPriceOverrideCLP *int64 `json:"unitPriceOverrideClp,omitempty"`

	IsEnabled  bool       `json:"isEnabled"`
	Visibility Visibility `json:"visibility"`

	// Vehicle and infrastructure parameters.
	MonthlyRentCLP    int64           `json:"monthlyRentClp"`
	KmPerDay          decimal.Decimal `json:"kmPerDay"`
	DaysPerMonth      decimal.Decimal `json:"daysPerMonth"`
	KmPerLiter        decimal.Decimal `json:"kmPerLiter"`
	FuelPriceCLP      int64           `json:"fuelPriceClp"`
	MaintenanceCLP    int64           `json:"maintenanceClp"`
	HasFuel           bool            `json:"hasFuel"`
}

// PriceIndex resolves catalog base prices for cost lines, keyed by item id.
// It is a plain map so calculators stay pure and testable without storage.
type PriceIndex map[uuid.UUID]int64

// unitPrice resolves the effective unit price for a line: the override when
// present, else the catalog base price.
func (prices PriceIndex) unitPrice(line CostLine) (int64, error) {
	if line.UnitPriceOverrideCLP != nil {
		return *line.UnitPriceOverrideCLP, nil
	}
	if line.CatalogItemID == nil {
		return 0, ErrMissingCatalogItem
	}
	price, ok := prices[*line.CatalogItemID]
	if !ok {
		return 0, ErrMissingCatalogItem
	}
	return price, nil
}

// QuoteParameters are the quote-wide knobs that shape every category
// calculation.
type QuoteParameters struct {
	MonthlyHoursStandard  decimal.Decimal `json:"monthlyHoursStandard"`
	AvgStayMonths         decimal.Decimal `json:"avgStayMonths"`
	UniformChangesPerYear decimal.Decimal `json:"uniformChangesPerYear"`

	// HolidayAdjustmentPct is a commercial buffer applied to the positions
	// total. Zero disables it.
	HolidayAdjustmentPct decimal.Decimal `json:"holidayAdjustmentPct"`

	FinancialEnabled bool            `json:"financialEnabled"`
	FinancialRatePct decimal.Decimal `json:"financialRatePct"`

	PolicyEnabled        bool            `json:"policyEnabled"`
	PolicyRatePct        decimal.Decimal `json:"policyRatePct"`
	PolicyAdminRatePct   decimal.Decimal `json:"policyAdminRatePct"`
	PolicyContractMonths int             `json:"policyContractMonths"`
	PolicyContractPct    decimal.Decimal `json:"policyContractPct"`

	MarginPct decimal.Decimal `json:"marginPct"`

	// SalePriceMonthlyCLP is a cache; values ≤ 0 are lazily back-solved.
	SalePriceMonthlyCLP int64 `json:"salePriceMonthlyClp"`
}
