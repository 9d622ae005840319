package transport

import (
	"github.com/google/uuid"

	"guardops_backend/internal/costing/calc"
)

// QuoteParametersRequest carries the quote-wide knobs. Percentages and rates
// travel as decimal strings.
type QuoteParametersRequest struct {
	MonthlyHoursStandard  string `json:"monthlyHoursStandard" validate:"omitempty"`
	AvgStayMonths         string `json:"avgStayMonths" validate:"omitempty"`
	UniformChangesPerYear string `json:"uniformChangesPerYear" validate:"omitempty"`
	HolidayAdjustmentPct  string `json:"holidayAdjustmentPct" validate:"omitempty"`

	FinancialEnabled bool   `json:"financialEnabled"`
	FinancialRatePct string `json:"financialRatePct" validate:"omitempty"`

	PolicyEnabled        bool   `json:"policyEnabled"`
	PolicyRatePct        string `json:"policyRatePct" validate:"omitempty"`
	PolicyAdminRatePct   string `json:"policyAdminRatePct" validate:"omitempty"`
	PolicyContractMonths int    `json:"policyContractMonths" validate:"gte=0"`
	PolicyContractPct    string `json:"policyContractPct" validate:"omitempty"`

	MarginPct string `json:"marginPct" validate:"omitempty"`
}

// CreateQuoteRequest is the request body for creating a quote.
type CreateQuoteRequest struct {
	Name       string                  `json:"name" validate:"required,min=1,max=200"`
	ClientName string                  `json:"clientName" validate:"max=200"`
	Params     *QuoteParametersRequest `json:"params"`
}

// UpdateQuoteRequest is the request body for updating a quote header.
type UpdateQuoteRequest struct {
	Name       *string                 `json:"name" validate:"omitempty,min=1,max=200"`
	ClientName *string                 `json:"clientName" validate:"omitempty,max=200"`
	Status     *string                 `json:"status" validate:"omitempty,oneof=draft sent approved rejected"`
	Params     *QuoteParametersRequest `json:"params"`
}

// ListQuotesRequest defines query parameters for listing quotes.
type ListQuotesRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=draft sent approved rejected"`
	Search   string `form:"search"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// QuoteResponse is the API representation of a quote header.
type QuoteResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ClientName string    `json:"clientName"`
	Status     string    `json:"status"`

	Params              calc.QuoteParameters `json:"params"`
	CostSummary         *calc.Summary        `json:"costSummary,omitempty"`
	SalePriceMonthlyCLP int64                `json:"salePriceMonthlyClp"`
	RuleVersion         int                  `json:"ruleVersion"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// QuoteListResponse is a paginated list of quotes.
type QuoteListResponse struct {
	Quotes     []QuoteResponse `json:"quotes"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}
