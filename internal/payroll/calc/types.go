// Package calc implements the employer-cost calculation for a single guard.
// Everything here is pure: callers pass the active rule snapshot explicitly
// and no function touches storage or globals.
package calc

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractType distinguishes labor contracts for unemployment insurance.
type ContractType string

const (
	ContractIndefinite ContractType = "indefinite"
	ContractFixedTerm  ContractType = "fixed_term"
)

// HealthSystem is the worker's health insurance affiliation.
type HealthSystem string

const (
	HealthFonasa HealthSystem = "fonasa"
	HealthIsapre HealthSystem = "isapre"
)

// TaxBracket is one step of the progressive income tax table. An
// UpperBoundCLP of zero marks the unbounded top bracket.
type TaxBracket struct {
	UpperBoundCLP int64           `json:"upperBoundClp"`
	MarginalRate  decimal.Decimal `json:"marginalRatePct"`
}

// RuleSnapshot is an immutable, versioned set of jurisdiction constants.
// Published snapshots are never mutated; a new version supersedes them.
// Positions record the version that priced them so historical quotes stay
// reproducible.
type RuleSnapshot struct {
	Version     int       `json:"version"`
	PublishedAt time.Time `json:"publishedAt"`

	// AFPRatesPct maps provider name to the total employee contribution
	// percentage (pension plus commission).
	AFPRatesPct map[string]decimal.Decimal `json:"afpRatesPct"`

	// FonasaRatePct is the flat public-health contribution percentage.
	FonasaRatePct decimal.Decimal `json:"fonasaRatePct"`
	// IsapreMinPct is the statutory floor for private health plans.
	IsapreMinPct decimal.Decimal `json:"isapreMinPct"`

	// Unemployment insurance (AFC) percentages, split by contract type.
	AFCEmployeePct map[ContractType]decimal.Decimal `json:"afcEmployeePct"`
	AFCEmployerPct map[ContractType]decimal.Decimal `json:"afcEmployerPct"`

	// AccidentInsurancePct is the occupational-accident base rate.
	AccidentInsurancePct decimal.Decimal `json:"accidentInsurancePct"`

	// Default provisioning percentages, used when the salary input enables a
	// provision without its own override.
	VacationProvisionPct  decimal.Decimal `json:"vacationProvisionPct"`
	SeveranceProvisionPct decimal.Decimal `json:"severanceProvisionPct"`

	// Statutory gratification: a percentage of base salary bounded by a
	// monthly cap.
	GratificationPct    decimal.Decimal `json:"gratificationPct"`
	GratificationCapCLP int64           `json:"gratificationCapClp"`

	// TaxBrackets is the progressive income tax table, ordered by ascending
	// upper bound with the unbounded bracket last.
	TaxBrackets []TaxBracket `json:"taxBrackets"`
}

// SalaryInput carries one guard's compensation inputs for a position.
type SalaryInput struct {
	BaseSalaryCLP     int64        `json:"baseSalaryClp"`
	TaxableBonusesCLP int64        `json:"taxableBonusesClp"`
	ContractType      ContractType `json:"contractType"`
	AFPProvider       string       `json:"afpProvider"`
	HealthSystem      HealthSystem `json:"healthSystem"`

	// HealthPlanPct is only meaningful for isapre. Values below the statutory
	// minimum are clamped up, not rejected.
	HealthPlanPct decimal.Decimal `json:"healthPlanPct"`

	IncludeVacationProvision  bool             `json:"includeVacationProvision"`
	VacationProvisionPct      *decimal.Decimal `json:"vacationProvisionPct,omitempty"`
	IncludeSeveranceProvision bool             `json:"includeSeveranceProvision"`
	SeveranceProvisionPct     *decimal.Decimal `json:"severanceProvisionPct,omitempty"`
}

// EmployerCostResult is an immutable snapshot of one guard's monthly cost.
// It is recomputed whole, never patched in place.
type EmployerCostResult struct {
	TaxableIncomeCLP int64 `json:"taxableIncomeClp"`
	GratificationCLP int64 `json:"gratificationClp"`

	// Employee-side deductions, withheld from the worker.
	AFPDeductionCLP    int64 `json:"afpDeductionClp"`
	HealthDeductionCLP int64 `json:"healthDeductionClp"`
	AFCEmployeeCLP     int64 `json:"afcEmployeeClp"`
	IncomeTaxCLP       int64 `json:"incomeTaxClp"`

	// Employer-side charges on top of taxable income.
	AFCEmployerCLP        int64 `json:"afcEmployerClp"`
	AccidentInsuranceCLP  int64 `json:"accidentInsuranceClp"`
	VacationProvisionCLP  int64 `json:"vacationProvisionClp"`
	SeveranceProvisionCLP int64 `json:"severanceProvisionClp"`

	MonthlyEmployerCostCLP     int64 `json:"monthlyEmployerCostClp"`
	WorkerNetSalaryEstimateCLP int64 `json:"workerNetSalaryEstimateClp"`

	RuleVersion int       `json:"ruleVersion"`
	ComputedAt  time.Time `json:"computedAt"`
}
