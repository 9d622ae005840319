package transport

import "time"

// Percentages travel as decimal strings ("11.44") so no precision is lost
// between the API and the calculation engine.

// TaxBracketRequest is one step of the progressive tax table. A zero upper
// bound marks the unbounded top bracket and must come last.
type TaxBracketRequest struct {
	UpperBoundCLP int64  `json:"upperBoundClp" validate:"min=0"`
	MarginalRate  string `json:"marginalRatePct" validate:"required"`
}

// PublishRuleSnapshotRequest is the request body for publishing a new
// payroll rule version.
type PublishRuleSnapshotRequest struct {
	AFPRatesPct           map[string]string   `json:"afpRatesPct" validate:"required,min=1"`
	FonasaRatePct         string              `json:"fonasaRatePct" validate:"required"`
	IsapreMinPct          string              `json:"isapreMinPct" validate:"required"`
	AFCEmployeePct        map[string]string   `json:"afcEmployeePct" validate:"required"`
	AFCEmployerPct        map[string]string   `json:"afcEmployerPct" validate:"required"`
	AccidentInsurancePct  string              `json:"accidentInsurancePct" validate:"required"`
	VacationProvisionPct  string              `json:"vacationProvisionPct" validate:"required"`
	SeveranceProvisionPct string              `json:"severanceProvisionPct" validate:"required"`
	GratificationPct      string              `json:"gratificationPct" validate:"required"`
	GratificationCapCLP   int64               `json:"gratificationCapClp" validate:"gt=0"`
	TaxBrackets           []TaxBracketRequest `json:"taxBrackets" validate:"required,min=1,dive"`
}

// TaxBracketResponse mirrors TaxBracketRequest on the way out.
type TaxBracketResponse struct {
	UpperBoundCLP int64  `json:"upperBoundClp"`
	MarginalRate  string `json:"marginalRatePct"`
}

// RuleSnapshotResponse is the API representation of a published snapshot.
type RuleSnapshotResponse struct {
	Version               int                  `json:"version"`
	PublishedAt           time.Time            `json:"publishedAt"`
	AFPRatesPct           map[string]string    `json:"afpRatesPct"`
	FonasaRatePct         string               `json:"fonasaRatePct"`
	IsapreMinPct          string               `json:"isapreMinPct"`
	AFCEmployeePct        map[string]string    `json:"afcEmployeePct"`
	AFCEmployerPct        map[string]string    `json:"afcEmployerPct"`
	AccidentInsurancePct  string               `json:"accidentInsurancePct"`
	VacationProvisionPct  string               `json:"vacationProvisionPct"`
	SeveranceProvisionPct string               `json:"severanceProvisionPct"`
	GratificationPct      string               `json:"gratificationPct"`
	GratificationCapCLP   int64                `json:"gratificationCapClp"`
	TaxBrackets           []TaxBracketResponse `json:"taxBrackets"`
	Stale                 bool                 `json:"stale,omitempty"`
}

// RuleSnapshotListResponse wraps the version list.
type RuleSnapshotListResponse struct {
	Items []RuleSnapshotResponse `json:"items"`
	Total int                    `json:"total"`
}
