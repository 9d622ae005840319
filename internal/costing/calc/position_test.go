package calc

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	payrollcalc "guardops_backend/internal/payroll/calc"
)

func testRules() payrollcalc.RuleSnapshot {
	return payrollcalc.RuleSnapshot{
		Version:     3,
		PublishedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		AFPRatesPct: map[string]decimal.Decimal{
			"habitat": decimal.NewFromInt(10),
		},
		FonasaRatePct: decimal.NewFromInt(7),
		IsapreMinPct:  decimal.NewFromInt(7),
		AFCEmployeePct: map[payrollcalc.ContractType]decimal.Decimal{
			payrollcalc.ContractIndefinite: decimal.RequireFromString("0.6"),
			payrollcalc.ContractFixedTerm:  decimal.Zero,
		},
		AFCEmployerPct: map[payrollcalc.ContractType]decimal.Decimal{
			payrollcalc.ContractIndefinite: decimal.RequireFromString("2.4"),
			payrollcalc.ContractFixedTerm:  decimal.RequireFromString("3.0"),
		},
		AccidentInsurancePct:  decimal.RequireFromString("0.93"),
		VacationProvisionPct:  decimal.RequireFromString("4.17"),
		SeveranceProvisionPct: decimal.RequireFromString("8.33"),
		GratificationPct:      decimal.NewFromInt(25),
		GratificationCapCLP:   202127,
		TaxBrackets: []payrollcalc.TaxBracket{
			{UpperBoundCLP: 899565, MarginalRate: decimal.Zero},
			{UpperBoundCLP: 1999033, MarginalRate: decimal.NewFromInt(4)},
			{UpperBoundCLP: 3331722, MarginalRate: decimal.NewFromInt(8)},
			{UpperBoundCLP: 0, MarginalRate: decimal.RequireFromString("13.5")},
		},
	}
}

func testPosition(guards, puestos int) Position {
	return Position{
		ID:         uuid.New(),
		QuoteID:    uuid.New(),
		CargoID:    uuid.New(),
		RolID:      uuid.New(),
		NumGuards:  guards,
		NumPuestos: puestos,
		Salary: payrollcalc.SalaryInput{
			BaseSalaryCLP: 600000,
			ContractType:  payrollcalc.ContractIndefinite,
			AFPProvider:   "habitat",
			HealthSystem:  payrollcalc.HealthFonasa,
		},
	}
}

func TestRecomputePosition_MultipliesGuardsAndPosts(t *testing.T) {
	pos, err := RecomputePosition(testPosition(2, 3), testRules(), false)
	if err != nil {
		t.Fatalf("RecomputePosition: %v", err)
	}

	// Per-guard employer cost on 600,000 base is 774,975.
	if pos.EmployerCost.Value.MonthlyEmployerCostCLP != 774975 {
		t.Fatalf("employer cost: expected 774975, got %d", pos.EmployerCost.Value.MonthlyEmployerCostCLP)
	}
	if pos.MonthlyPositionCostCLP != 774975*2*3 {
		t.Fatalf("position cost: expected %d, got %d", int64(774975*2*3), pos.MonthlyPositionCostCLP)
	}
	if !pos.EmployerCost.Valid || pos.EmployerCost.RuleVersion != 3 {
		t.Fatalf("expected valid cache under rule version 3, got %+v", pos.EmployerCost)
	}
}

func TestRecomputePosition_ClampsPuestosToOne(t *testing.T) {
	pos, err := RecomputePosition(testPosition(1, 0), testRules(), false)
	if err != nil {
		t.Fatalf("RecomputePosition: %v", err)
	}
	if pos.MonthlyPositionCostCLP != 774975 {
		t.Fatalf("expected zero posts floored to one, got %d", pos.MonthlyPositionCostCLP)
	}
}

func TestRecomputePosition_CacheHitSkipsCalculator(t *testing.T) {
	rules := testRules()
	pos, err := RecomputePosition(testPosition(1, 1), rules, false)
	if err != nil {
		t.Fatalf("RecomputePosition: %v", err)
	}

	// Poison the salary so any recompute would fail. A cache hit must not
	// touch the calculator.
	pos.Salary.AFPProvider = "nonexistent"
	pos.NumGuards = 4

	again, err := RecomputePosition(pos, rules, false)
	if err != nil {
		t.Fatalf("expected cache hit, got error: %v", err)
	}
	if again.MonthlyPositionCostCLP != 774975*4 {
		t.Fatalf("expected derived cost refreshed to %d, got %d", int64(774975*4), again.MonthlyPositionCostCLP)
	}

	// Force must go back through the calculator and fail.
	if _, err := RecomputePosition(pos, rules, true); err == nil {
		t.Fatal("expected forced recompute to fail on unknown AFP provider")
	}
}

func TestRecomputePosition_StaleRuleVersionRecomputes(t *testing.T) {
	rules := testRules()
	pos, err := RecomputePosition(testPosition(1, 1), rules, false)
	if err != nil {
		t.Fatalf("RecomputePosition: %v", err)
	}

	newer := testRules()
	newer.Version = 4
	newer.AFPRatesPct["habitat"] = decimal.NewFromInt(11)

	pos, err = RecomputePosition(pos, newer, false)
	if err != nil {
		t.Fatalf("RecomputePosition: %v", err)
	}
	if pos.EmployerCost.RuleVersion != 4 {
		t.Fatalf("expected recompute under version 4, got %d", pos.EmployerCost.RuleVersion)
	}
}

func TestRecomputePosition_FailurePreservesCachedValue(t *testing.T) {
	rules := testRules()
	pos, err := RecomputePosition(testPosition(1, 1), rules, false)
	if err != nil {
		t.Fatalf("RecomputePosition: %v", err)
	}
	before := pos.EmployerCost

	pos.Salary.BaseSalaryCLP = -1
	after, err := RecomputePosition(pos, rules, true)
	if !errors.Is(err, payrollcalc.ErrInvalidSalaryInput) {
		t.Fatalf("expected ErrInvalidSalaryInput, got %v", err)
	}
	if after.EmployerCost != before {
		t.Fatal("failed recompute must not overwrite the cached employer cost")
	}
}

func TestRecomputePosition_RequiresGuards(t *testing.T) {
	_, err := RecomputePosition(testPosition(0, 1), testRules(), false)
	if !errors.Is(err, ErrInvalidPosition) {
		t.Fatalf("expected ErrInvalidPosition, got %v", err)
	}
}

func TestNeedsRecompute(t *testing.T) {
	base := testPosition(1, 1)
	base.EmployerCost = NewCached(payrollcalc.EmployerCostResult{}, 3, time.Now())

	same := base
	same.Weekdays = "mon,tue,wed"
	same.StartTime = "08:00"
	if NeedsRecompute(base, same, false) {
		t.Fatal("schedule-only edit must not trigger recompute")
	}

	salary := base
	salary.Salary.BaseSalaryCLP = 650000
	if !NeedsRecompute(base, salary, false) {
		t.Fatal("base salary change must trigger recompute")
	}

	cargo := base
	cargo.CargoID = uuid.New()
	if !NeedsRecompute(base, cargo, false) {
		t.Fatal("cargo change must trigger recompute")
	}

	if !NeedsRecompute(base, same, true) {
		t.Fatal("force must always trigger recompute")
	}

	uncached := same
	uncached.EmployerCost = Cached[payrollcalc.EmployerCostResult]{}
	if !NeedsRecompute(base, uncached, false) {
		t.Fatal("missing cached result must trigger recompute")
	}
}
