package calc

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestBuildSummary_UniformOnlyQuote(t *testing.T) {
	in := SummaryInput{
		Lines: []CostLine{{
			Category:             CategoryUniform,
			Quantity:             dec("2"),
			UnitPriceOverrideCLP: int64Ptr(30000),
			IsEnabled:            true,
		}},
		Params:      QuoteParameters{UniformChangesPerYear: dec("2")},
		RuleVersion: 3,
	}

	s, degraded := BuildSummary(in)
	if len(degraded) != 0 {
		t.Fatalf("unexpected degraded categories: %+v", degraded)
	}
	if s.MonthlyPositionsCLP != 0 {
		t.Fatalf("expected zero positions total, got %d", s.MonthlyPositionsCLP)
	}
	if s.MonthlyUniformsCLP != 10000 {
		t.Fatalf("expected uniforms 10000, got %d", s.MonthlyUniformsCLP)
	}
	if s.MonthlyTotalCLP != 10000 {
		t.Fatalf("expected total 10000, got %d", s.MonthlyTotalCLP)
	}
	if s.RuleVersion != 3 {
		t.Fatalf("expected rule version 3, got %d", s.RuleVersion)
	}
}

func TestBuildSummary_Additivity(t *testing.T) {
	positions := []Position{
		{NumGuards: 2, MonthlyPositionCostCLP: 1549950},
		{NumGuards: 1, MonthlyPositionCostCLP: 774975},
	}
	in := SummaryInput{
		Positions: positions,
		Lines: []CostLine{
			{Category: CategoryUniform, Quantity: dec("3"), UnitPriceOverrideCLP: int64Ptr(30000), IsEnabled: true},
			{Category: CategoryMeal, Quantity: dec("3"), DaysPerMonth: dec("30"), UnitPriceOverrideCLP: int64Ptr(3000), IsEnabled: true},
			{Category: CategoryVehicle, MonthlyRentCLP: 250000, MaintenanceCLP: 30000, IsEnabled: true},
			{Category: CategoryItem, Quantity: dec("2"), UnitPriceOverrideCLP: int64Ptr(15000), IsEnabled: true},
		},
		Params: QuoteParameters{
			UniformChangesPerYear: dec("2"),
			HolidayAdjustmentPct:  dec("1.5"),
			FinancialEnabled:      true,
			FinancialRatePct:      dec("2"),
			PolicyEnabled:         true,
			PolicyRatePct:         dec("1"),
			PolicyAdminRatePct:    dec("0.5"),
			PolicyContractMonths:  12,
			PolicyContractPct:     dec("0.6"),
		},
		RuleVersion: 3,
	}

	s, degraded := BuildSummary(in)
	if len(degraded) != 0 {
		t.Fatalf("unexpected degraded categories: %+v", degraded)
	}

	sum := s.MonthlyPositionsCLP +
		s.MonthlyUniformsCLP +
		s.MonthlyExamsCLP +
		s.MonthlyMealsCLP +
		s.MonthlyVehiclesCLP +
		s.MonthlyInfrastructureCLP +
		s.MonthlyCostItemsCLP +
		s.MonthlyExtrasCLP +
		s.MonthlyHolidayAdjustmentCLP +
		s.MonthlyFinancialCLP +
		s.MonthlyPolicyCLP
	if s.MonthlyTotalCLP != sum {
		t.Fatalf("monthly total %d does not equal the sum of its categories %d", s.MonthlyTotalCLP, sum)
	}

	if s.TotalGuards != 3 {
		t.Fatalf("expected 3 guards, got %d", s.TotalGuards)
	}
	if s.CostsBase() != s.MonthlyTotalCLP-s.MonthlyFinancialCLP-s.MonthlyPolicyCLP {
		t.Fatal("costs base must exclude financial and policy")
	}
	if s.MonthlyFinancialCLP == 0 || s.MonthlyPolicyCLP == 0 {
		t.Fatal("expected enabled financial and policy charges to be nonzero")
	}
}

func TestBuildSummary_DisabledLineNeutrality(t *testing.T) {
	lines := []CostLine{
		{Category: CategoryUniform, Quantity: dec("2"), UnitPriceOverrideCLP: int64Ptr(30000), IsEnabled: true},
		{Category: CategoryMeal, Quantity: dec("1"), DaysPerMonth: dec("30"), UnitPriceOverrideCLP: int64Ptr(3000), IsEnabled: true},
	}
	params := QuoteParameters{UniformChangesPerYear: dec("2")}

	before, _ := BuildSummary(SummaryInput{Lines: lines, Params: params})

	lines[1].IsEnabled = false
	after, _ := BuildSummary(SummaryInput{Lines: lines, Params: params})

	if after.MonthlyMealsCLP != 0 {
		t.Fatalf("expected meals zeroed, got %d", after.MonthlyMealsCLP)
	}
	if after.MonthlyUniformsCLP != before.MonthlyUniformsCLP {
		t.Fatal("disabling a meal line must not move the uniforms total")
	}
	if after.MonthlyTotalCLP != before.MonthlyTotalCLP-before.MonthlyMealsCLP {
		t.Fatalf("total must drop by exactly the meals amount: before %d, after %d", before.MonthlyTotalCLP, after.MonthlyTotalCLP)
	}
}

func TestBuildSummary_DegradedCategoryIsZeroed(t *testing.T) {
	missing := uuid.New()
	in := SummaryInput{
		Lines: []CostLine{
			{Category: CategoryUniform, Quantity: dec("2"), UnitPriceOverrideCLP: int64Ptr(30000), IsEnabled: true},
			{Category: CategoryExam, Quantity: dec("1"), CatalogItemID: &missing, IsEnabled: true},
		},
		Params: QuoteParameters{UniformChangesPerYear: dec("2"), AvgStayMonths: dec("6")},
		Prices: PriceIndex{},
	}

	s, degraded := BuildSummary(in)
	if len(degraded) != 1 {
		t.Fatalf("expected one degraded category, got %+v", degraded)
	}
	if degraded[0].Category != CategoryExam {
		t.Fatalf("expected exams degraded, got %s", degraded[0].Category)
	}
	if !errors.Is(degraded[0].Err, ErrMissingCatalogItem) {
		t.Fatalf("expected ErrMissingCatalogItem, got %v", degraded[0].Err)
	}
	if s.MonthlyExamsCLP != 0 {
		t.Fatalf("expected degraded exams zeroed, got %d", s.MonthlyExamsCLP)
	}
	if s.MonthlyUniformsCLP != 10000 {
		t.Fatalf("healthy categories must survive degradation, got uniforms %d", s.MonthlyUniformsCLP)
	}
}

func TestBuildSummary_PolicyAmortization(t *testing.T) {
	in := SummaryInput{
		Positions: []Position{{NumGuards: 1, MonthlyPositionCostCLP: 1200000}},
		Params: QuoteParameters{
			PolicyEnabled:        true,
			PolicyRatePct:        dec("2"),
			PolicyAdminRatePct:   dec("1"),
			PolicyContractMonths: 12,
			PolicyContractPct:    dec("0.6"),
		},
	}

	s, _ := BuildSummary(in)
	// (2 + 1 + 0.6)% of 1,200,000 spread over 12 months = 3,600.
	if s.MonthlyPolicyCLP != 3600 {
		t.Fatalf("expected policy 3600, got %d", s.MonthlyPolicyCLP)
	}
}

func TestBuildSummary_HolidayAdjustment(t *testing.T) {
	in := SummaryInput{
		Positions: []Position{{NumGuards: 1, MonthlyPositionCostCLP: 1000000}},
		Params:    QuoteParameters{HolidayAdjustmentPct: dec("2.5")},
	}

	s, _ := BuildSummary(in)
	if s.MonthlyHolidayAdjustmentCLP != 25000 {
		t.Fatalf("expected holiday adjustment 25000, got %d", s.MonthlyHolidayAdjustmentCLP)
	}
	if s.MonthlyTotalCLP != 1025000 {
		t.Fatalf("expected total 1025000, got %d", s.MonthlyTotalCLP)
	}
}

func TestBuildSummary_Deterministic(t *testing.T) {
	in := SummaryInput{
		Positions: []Position{{NumGuards: 2, MonthlyPositionCostCLP: 1549950}},
		Lines: []CostLine{
			{Category: CategoryUniform, Quantity: dec("2"), UnitPriceOverrideCLP: int64Ptr(30000), IsEnabled: true},
		},
		Params:      QuoteParameters{UniformChangesPerYear: dec("2"), FinancialEnabled: true, FinancialRatePct: dec("2")},
		RuleVersion: 3,
	}

	a, _ := BuildSummary(in)
	b, _ := BuildSummary(in)
	a.ComputedAt, b.ComputedAt = time.Time{}, time.Time{}
	if a != b {
		t.Fatalf("summaries differ across identical inputs:\n%+v\n%+v", a, b)
	}
}
