package calc

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testRules() RuleSnapshot {
	return RuleSnapshot{
		Version:     3,
		PublishedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		AFPRatesPct: map[string]decimal.Decimal{
			"habitat": decimal.NewFromInt(10),
			"capital": decimal.RequireFromString("11.44"),
		},
		FonasaRatePct: decimal.NewFromInt(7),
		IsapreMinPct:  decimal.NewFromInt(7),
		AFCEmployeePct: map[ContractType]decimal.Decimal{
			ContractIndefinite: decimal.RequireFromString("0.6"),
			ContractFixedTerm:  decimal.Zero,
		},
		AFCEmployerPct: map[ContractType]decimal.Decimal{
			ContractIndefinite: decimal.RequireFromString("2.4"),
			ContractFixedTerm:  decimal.RequireFromString("3.0"),
		},
		AccidentInsurancePct:  decimal.RequireFromString("0.93"),
		VacationProvisionPct:  decimal.RequireFromString("4.17"),
		SeveranceProvisionPct: decimal.RequireFromString("8.33"),
		GratificationPct:      decimal.NewFromInt(25),
		GratificationCapCLP:   202127,
		TaxBrackets: []TaxBracket{
			{UpperBoundCLP: 899565, MarginalRate: decimal.Zero},
			{UpperBoundCLP: 1999033, MarginalRate: decimal.NewFromInt(4)},
			{UpperBoundCLP: 3331722, MarginalRate: decimal.NewFromInt(8)},
			{UpperBoundCLP: 0, MarginalRate: decimal.RequireFromString("13.5")},
		},
	}
}

func baseInput() SalaryInput {
	return SalaryInput{
		BaseSalaryCLP: 600000,
		ContractType:  ContractIndefinite,
		AFPProvider:   "habitat",
		HealthSystem:  HealthFonasa,
	}
}

func TestComputeEmployerCost_BaseScenario(t *testing.T) {
	result, err := ComputeEmployerCost(baseInput(), testRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.GratificationCLP != 150000 {
		t.Errorf("gratification: expected 150000, got %d", result.GratificationCLP)
	}
	if result.TaxableIncomeCLP != 750000 {
		t.Errorf("taxable income: expected 750000, got %d", result.TaxableIncomeCLP)
	}
	if result.AFPDeductionCLP != 75000 {
		t.Errorf("AFP deduction: expected 75000, got %d", result.AFPDeductionCLP)
	}
	if result.HealthDeductionCLP != 52500 {
		t.Errorf("health deduction: expected 52500, got %d", result.HealthDeductionCLP)
	}
	if result.AFCEmployeeCLP != 4500 {
		t.Errorf("AFC employee: expected 4500, got %d", result.AFCEmployeeCLP)
	}
	if result.IncomeTaxCLP != 0 {
		t.Errorf("income tax: expected 0 below first bracket, got %d", result.IncomeTaxCLP)
	}
	if result.AFCEmployerCLP != 18000 {
		t.Errorf("AFC employer: expected 18000, got %d", result.AFCEmployerCLP)
	}
	if result.AccidentInsuranceCLP != 6975 {
		t.Errorf("accident insurance: expected 6975, got %d", result.AccidentInsuranceCLP)
	}

	// Employer cost excludes employee-side deductions.
	if result.MonthlyEmployerCostCLP != 774975 {
		t.Errorf("employer cost: expected 774975, got %d", result.MonthlyEmployerCostCLP)
	}
	if result.WorkerNetSalaryEstimateCLP != 618000 {
		t.Errorf("net salary: expected 618000, got %d", result.WorkerNetSalaryEstimateCLP)
	}
	if result.RuleVersion != 3 {
		t.Errorf("rule version: expected 3, got %d", result.RuleVersion)
	}
}

func TestComputeEmployerCost_Deterministic(t *testing.T) {
	input := baseInput()
	input.HealthSystem = HealthIsapre
	input.HealthPlanPct = decimal.RequireFromString("8.5")
	input.IncludeVacationProvision = true
	rules := testRules()

	first, err := ComputeEmployerCost(input, rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ComputeEmployerCost(input, rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first.ComputedAt = time.Time{}
	second.ComputedAt = time.Time{}
	if first != second {
		t.Errorf("results differ across calls:\n%+v\n%+v", first, second)
	}
}

func TestComputeEmployerCost_MonotonicInBaseSalary(t *testing.T) {
	rules := testRules()
	input := baseInput()

	var previous int64 = -1
	for salary := int64(300000); salary <= 3000000; salary += 137500 {
		input.BaseSalaryCLP = salary
		result, err := ComputeEmployerCost(input, rules)
		if err != nil {
			t.Fatalf("salary %d: unexpected error: %v", salary, err)
		}
		if result.MonthlyEmployerCostCLP < previous {
			t.Fatalf("employer cost decreased at salary %d: %d < %d", salary, result.MonthlyEmployerCostCLP, previous)
		}
		previous = result.MonthlyEmployerCostCLP
	}
}

func TestComputeEmployerCost_GratificationCapped(t *testing.T) {
	input := baseInput()
	input.BaseSalaryCLP = 2000000

	result, err := ComputeEmployerCost(input, testRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.GratificationCLP != 202127 {
		t.Errorf("expected gratification capped at 202127, got %d", result.GratificationCLP)
	}
}

func TestComputeEmployerCost_FixedTermContract(t *testing.T) {
	input := baseInput()
	input.ContractType = ContractFixedTerm

	result, err := ComputeEmployerCost(input, testRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AFCEmployeeCLP != 0 {
		t.Errorf("fixed-term employee AFC: expected 0, got %d", result.AFCEmployeeCLP)
	}
	// Employer share is still charged, at the fixed-term rate: 3% of 750000.
	if result.AFCEmployerCLP != 22500 {
		t.Errorf("fixed-term employer AFC: expected 22500, got %d", result.AFCEmployerCLP)
	}
}

func TestComputeEmployerCost_IsapreBelowMinimumClamped(t *testing.T) {
	input := baseInput()
	input.HealthSystem = HealthIsapre
	input.HealthPlanPct = decimal.NewFromInt(5)

	result, err := ComputeEmployerCost(input, testRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 5% is below the statutory 7% minimum, so 7% of 750000 applies.
	if result.HealthDeductionCLP != 52500 {
		t.Errorf("health deduction: expected clamped 52500, got %d", result.HealthDeductionCLP)
	}
}

func TestComputeEmployerCost_Provisions(t *testing.T) {
	override := decimal.NewFromInt(5)
	input := baseInput()
	input.IncludeVacationProvision = true
	input.VacationProvisionPct = &override
	input.IncludeSeveranceProvision = true

	result, err := ComputeEmployerCost(input, testRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Override: 5% of 750000. Severance falls back to the snapshot's 8.33%.
	if result.VacationProvisionCLP != 37500 {
		t.Errorf("vacation provision: expected 37500, got %d", result.VacationProvisionCLP)
	}
	if result.SeveranceProvisionCLP != 62475 {
		t.Errorf("severance provision: expected 62475, got %d", result.SeveranceProvisionCLP)
	}
	expected := int64(750000 + 18000 + 6975 + 37500 + 62475)
	if result.MonthlyEmployerCostCLP != expected {
		t.Errorf("employer cost with provisions: expected %d, got %d", expected, result.MonthlyEmployerCostCLP)
	}
}

func TestComputeEmployerCost_InputErrors(t *testing.T) {
	rules := testRules()

	input := baseInput()
	input.BaseSalaryCLP = 0
	if _, err := ComputeEmployerCost(input, rules); !errors.Is(err, ErrInvalidSalaryInput) {
		t.Errorf("zero salary: expected ErrInvalidSalaryInput, got %v", err)
	}

	input = baseInput()
	input.AFPProvider = "nonexistent"
	if _, err := ComputeEmployerCost(input, rules); !errors.Is(err, ErrUnknownAFPProvider) {
		t.Errorf("unknown AFP: expected ErrUnknownAFPProvider, got %v", err)
	}

	input = baseInput()
	input.HealthSystem = "mutual"
	if _, err := ComputeEmployerCost(input, rules); !errors.Is(err, ErrUnknownHealthSystem) {
		t.Errorf("unknown health system: expected ErrUnknownHealthSystem, got %v", err)
	}
}

func TestProgressiveTax(t *testing.T) {
	brackets := []TaxBracket{
		{UpperBoundCLP: 1000, MarginalRate: decimal.Zero},
		{UpperBoundCLP: 2000, MarginalRate: decimal.NewFromInt(10)},
		{UpperBoundCLP: 0, MarginalRate: decimal.NewFromInt(20)},
	}

	cases := []struct {
		name   string
		income int64
		want   int64
	}{
		{"negative", -100, 0},
		{"exempt", 800, 0},
		{"first bracket boundary", 1000, 0},
		{"inside second bracket", 1500, 50},
		{"second bracket boundary", 2000, 100},
		{"top bracket", 2500, 200},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := progressiveTax(decimal.NewFromInt(tc.income), brackets)
			if got.IntPart() != tc.want {
				t.Errorf("income %d: expected tax %d, got %s", tc.income, tc.want, got)
			}
		})
	}
}
