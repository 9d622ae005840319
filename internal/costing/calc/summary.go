package calc

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the aggregate monthly cost structure of one quote. It is always
// derivable fresh from positions and cost lines; copies persisted on the
// quote header are caches, never the source of truth.
type Summary struct {
	MonthlyPositionsCLP         int64 `json:"monthlyPositionsClp"`
	MonthlyUniformsCLP          int64 `json:"monthlyUniformsClp"`
	MonthlyExamsCLP             int64 `json:"monthlyExamsClp"`
	MonthlyMealsCLP             int64 `json:"monthlyMealsClp"`
	MonthlyVehiclesCLP          int64 `json:"monthlyVehiclesClp"`
	MonthlyInfrastructureCLP    int64 `json:"monthlyInfrastructureClp"`
	MonthlyCostItemsCLP         int64 `json:"monthlyCostItemsClp"`
	MonthlyExtrasCLP            int64 `json:"monthlyExtrasClp"`
	MonthlyHolidayAdjustmentCLP int64 `json:"monthlyHolidayAdjustmentClp"`
	MonthlyFinancialCLP         int64 `json:"monthlyFinancialClp"`
	MonthlyPolicyCLP            int64 `json:"monthlyPolicyClp"`

	MonthlyTotalCLP int64 `json:"monthlyTotalClp"`
	TotalGuards     int   `json:"totalGuards"`

	RuleVersion int       `json:"ruleVersion"`
	ComputedAt  time.Time `json:"computedAt"`
}

// CostsBase is the delivery-cost base: every category except financial and
// policy. Margin is earned on this base only; financing and insurance are
// pass-throughs added after margin.
func (s Summary) CostsBase() int64 {
	return s.MonthlyTotalCLP - s.MonthlyFinancialCLP - s.MonthlyPolicyCLP
}

// CategoryError reports a single degraded category during summary assembly.
type CategoryError struct {
	Category LineCategory
	Err      error
}

// SummaryInput carries everything the summary builder needs, already fetched.
// Positions arrive with their monthly costs computed; the builder does no
// employer-cost math of its own.
type SummaryInput struct {
	Positions   []Position
	Lines       []CostLine
	Params      QuoteParameters
	Prices      PriceIndex
	RuleVersion int
}

// BuildSummary assembles the per-category totals and the grand total for one
// quote. Category calculators that fail are zeroed and reported in the
// returned slice; the caller decides whether degradation is acceptable.
// Positions cannot fail here since they arrive precomputed.
func BuildSummary(in SummaryInput) (Summary, []CategoryError) {
	s := Summary{RuleVersion: in.RuleVersion, ComputedAt: nowUTC()}

	for _, pos := range in.Positions {
		s.MonthlyPositionsCLP += pos.MonthlyPositionCostCLP
		s.TotalGuards += pos.NumGuards
	}

	byCategory := make(map[LineCategory][]CostLine, len(in.Lines))
	for _, line := range in.Lines {
		byCategory[line.Category] = append(byCategory[line.Category], line)
	}

	var degraded []CategoryError
	for _, cat := range AllCategories() {
		total, err := cat.MonthlyCost(byCategory[cat.Category()], in.Params, in.Prices)
		if err != nil {
			degraded = append(degraded, CategoryError{Category: cat.Category(), Err: err})
			total = 0
		}
		switch cat.Category() {
		case CategoryUniform:
			s.MonthlyUniformsCLP = total
		case CategoryExam:
			s.MonthlyExamsCLP = total
		case CategoryMeal:
			s.MonthlyMealsCLP = total
		case CategoryVehicle:
			s.MonthlyVehiclesCLP = total
		case CategoryInfrastructure:
			s.MonthlyInfrastructureCLP = total
		case CategoryItem:
			s.MonthlyCostItemsCLP = total
		case CategoryExtra:
			s.MonthlyExtrasCLP = total
		}
	}

	if in.Params.HolidayAdjustmentPct.GreaterThan(decimal.Zero) {
		s.MonthlyHolidayAdjustmentCLP = pctOf(s.MonthlyPositionsCLP, in.Params.HolidayAdjustmentPct)
	}

	costsBase := s.MonthlyPositionsCLP +
		s.MonthlyUniformsCLP +
		s.MonthlyExamsCLP +
		s.MonthlyMealsCLP +
		s.MonthlyVehiclesCLP +
		s.MonthlyInfrastructureCLP +
		s.MonthlyCostItemsCLP +
		s.MonthlyExtrasCLP +
		s.MonthlyHolidayAdjustmentCLP

	if in.Params.FinancialEnabled {
		s.MonthlyFinancialCLP = pctOf(costsBase, in.Params.FinancialRatePct)
	}
	if in.Params.PolicyEnabled {
		s.MonthlyPolicyCLP = monthlyPolicy(costsBase, in.Params)
	}

	s.MonthlyTotalCLP = costsBase + s.MonthlyFinancialCLP + s.MonthlyPolicyCLP
	return s, degraded
}

// monthlyPolicy amortizes the insurance policy over the contract term: the
// policy and admin rates on the cost base, plus the one-time contract
// surcharge, spread over policyContractMonths.
func monthlyPolicy(costsBaseCLP int64, params QuoteParameters) int64 {
	months := params.PolicyContractMonths
	if months < 1 {
		months = 1
	}
	base := decimal.NewFromInt(costsBaseCLP)
	rate := params.PolicyRatePct.
		Add(params.PolicyAdminRatePct).
		Add(params.PolicyContractPct)
	return base.
		Mul(rate).
		Div(oneHundred).
		Div(decimal.NewFromInt(int64(months))).
		Round(0).
		IntPart()
}

var oneHundred = decimal.NewFromInt(100)

func pctOf(amountCLP int64, ratePct decimal.Decimal) int64 {
	return decimal.NewFromInt(amountCLP).
		Mul(ratePct).
		Div(oneHundred).
		Round(0).
		IntPart()
}
