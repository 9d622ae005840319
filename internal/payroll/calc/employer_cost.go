package calc

import (
	"time"

	"github.com/shopspring/decimal"

	"guardops_backend/platform/apperr"
)

// Calculator errors. Compared by callers with errors.Is, so they are shared
// values, never mutated.
var (
	ErrInvalidSalaryInput  = apperr.Validation("base salary must be positive")
	ErrUnknownAFPProvider  = apperr.Validation("unknown AFP provider")
	ErrUnknownHealthSystem = apperr.Validation("unknown health system")
)

var oneHundred = decimal.NewFromInt(100)

// ComputeEmployerCost turns one guard's salary inputs and the active rule
// snapshot into the monthly employer cost and a net salary estimate.
// Deterministic for fixed inputs and rule version; no side effects.
func ComputeEmployerCost(input SalaryInput, rules RuleSnapshot) (EmployerCostResult, error) {
	if input.BaseSalaryCLP <= 0 {
		return EmployerCostResult{}, ErrInvalidSalaryInput
	}

	afpRate, ok := rules.AFPRatesPct[input.AFPProvider]
	if !ok {
		return EmployerCostResult{}, ErrUnknownAFPProvider
	}

	healthRate, err := healthRatePct(input, rules)
	if err != nil {
		return EmployerCostResult{}, err
	}

	base := decimal.NewFromInt(input.BaseSalaryCLP)

	gratification := base.Mul(rules.GratificationPct).Div(oneHundred)
	if cap := decimal.NewFromInt(rules.GratificationCapCLP); gratification.GreaterThan(cap) {
		gratification = cap
	}
	gratification = gratification.Round(0)

	taxable := base.Add(gratification).Add(decimal.NewFromInt(input.TaxableBonusesCLP))

	// Employee-side deductions, withheld from the worker.
	afp := pctOf(taxable, afpRate)
	health := pctOf(taxable, healthRate)
	afcEmployee := pctOf(taxable, rules.AFCEmployeePct[input.ContractType])

	incomeTax := progressiveTax(taxable.Sub(afp).Sub(health).Sub(afcEmployee), rules.TaxBrackets)

	// Employer-side charges. The employer AFC share applies to every
	// contract type, at a contract-dependent rate.
	afcEmployer := pctOf(taxable, rules.AFCEmployerPct[input.ContractType])
	accident := pctOf(taxable, rules.AccidentInsurancePct)

	vacation := decimal.Zero
	if input.IncludeVacationProvision {
		vacation = pctOf(taxable, provisionRate(input.VacationProvisionPct, rules.VacationProvisionPct))
	}
	severance := decimal.Zero
	if input.IncludeSeveranceProvision {
		severance = pctOf(taxable, provisionRate(input.SeveranceProvisionPct, rules.SeveranceProvisionPct))
	}

	taxableCLP := taxable.Round(0).IntPart()
	employerCharges := afcEmployer.Add(accident).Add(vacation).Add(severance)
	net := taxable.Sub(afp).Sub(health).Sub(afcEmployee).Sub(incomeTax)

	return EmployerCostResult{
		TaxableIncomeCLP:           taxableCLP,
		GratificationCLP:           gratification.IntPart(),
		AFPDeductionCLP:            afp.IntPart(),
		HealthDeductionCLP:         health.IntPart(),
		AFCEmployeeCLP:             afcEmployee.IntPart(),
		IncomeTaxCLP:               incomeTax.IntPart(),
		AFCEmployerCLP:             afcEmployer.IntPart(),
		AccidentInsuranceCLP:       accident.IntPart(),
		VacationProvisionCLP:       vacation.IntPart(),
		SeveranceProvisionCLP:      severance.IntPart(),
		MonthlyEmployerCostCLP:     taxableCLP + employerCharges.Round(0).IntPart(),
		WorkerNetSalaryEstimateCLP: net.Round(0).IntPart(),
		RuleVersion:                rules.Version,
		ComputedAt:                 time.Now().UTC(),
	}, nil
}

// healthRatePct resolves the health contribution percentage. An isapre plan
// below the statutory minimum is clamped up to it rather than rejected.
func healthRatePct(input SalaryInput, rules RuleSnapshot) (decimal.Decimal, error) {
	switch input.HealthSystem {
	case HealthFonasa:
		return rules.FonasaRatePct, nil
	case HealthIsapre:
		if input.HealthPlanPct.LessThan(rules.IsapreMinPct) {
			return rules.IsapreMinPct, nil
		}
		return input.HealthPlanPct, nil
	default:
		return decimal.Zero, ErrUnknownHealthSystem
	}
}

// pctOf applies a percentage rate and rounds to whole pesos.
func pctOf(amount, ratePct decimal.Decimal) decimal.Decimal {
	return amount.Mul(ratePct).Div(oneHundred).Round(0)
}

// progressiveTax walks the bracket table, charging each bracket's marginal
// rate on the income that falls inside it. A zero upper bound marks the
// unbounded top bracket. Negative income is taxed as zero.
func progressiveTax(income decimal.Decimal, brackets []TaxBracket) decimal.Decimal {
	if income.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	tax := decimal.Zero
	lower := decimal.Zero
	for _, bracket := range brackets {
		upper := decimal.NewFromInt(bracket.UpperBoundCLP)
		unbounded := bracket.UpperBoundCLP == 0

		slice := income.Sub(lower)
		if !unbounded && income.GreaterThan(upper) {
			slice = upper.Sub(lower)
		}
		if slice.LessThanOrEqual(decimal.Zero) {
			break
		}

		tax = tax.Add(slice.Mul(bracket.MarginalRate).Div(oneHundred))

		if unbounded || income.LessThanOrEqual(upper) {
			break
		}
		lower = upper
	}

	return tax.Round(0)
}

func provisionRate(override *decimal.Decimal, fallback decimal.Decimal) decimal.Decimal {
	if override != nil {
		return *override
	}
	return fallback
}
