package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"guardops_backend/internal/costing/calc"
	"guardops_backend/internal/quotes/repository"
	"guardops_backend/internal/quotes/transport"
	"guardops_backend/platform/apperr"
	"guardops_backend/platform/logger"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// Defaults applied when a quote is created without explicit parameters.
var (
	defaultMonthlyHours  = decimal.NewFromInt(180)
	defaultAvgStayMonths = decimal.NewFromInt(12)
	defaultUniformChange = decimal.NewFromInt(2)
)

// Service implements quote header business logic. It also serves as the
// quote source for the costing engine.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a quotes service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create opens a new draft quote.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, req transport.CreateQuoteRequest) (transport.QuoteResponse, error) {
	params, err := parseParams(req.Params)
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	quote, err := s.repo.Create(ctx, repository.CreateQuoteParams{
		OrganizationID: orgID,
		Name:           req.Name,
		ClientName:     req.ClientName,
		Params:         params,
	})
	if err != nil {
		return transport.QuoteResponse{}, fmt.Errorf("create quote: %w", err)
	}

	s.log.Info("quote created", "quoteId", quote.ID, "organizationId", orgID)

	return toResponse(quote), nil
}

// Update applies a partial update to a quote header.
func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, req transport.UpdateQuoteRequest) (transport.QuoteResponse, error) {
	update := repository.UpdateQuoteParams{
		ID:             id,
		OrganizationID: orgID,
		Name:           req.Name,
		ClientName:     req.ClientName,
		Status:         req.Status,
	}
	if req.Params != nil {
		params, err := parseParams(req.Params)
		if err != nil {
			return transport.QuoteResponse{}, err
		}
		update.Params = &params
	}

	quote, err := s.repo.Update(ctx, update)
	if err != nil {
		return transport.QuoteResponse{}, fmt.Errorf("update quote: %w", err)
	}

	s.log.Info("quote updated", "quoteId", id, "organizationId", orgID)

	return toResponse(quote), nil
}

// Delete removes a quote with its positions and cost lines.
func (s *Service) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}

	s.log.Info("quote deleted", "quoteId", id, "organizationId", orgID)

	return nil
}

// Get returns one quote header with its cached cost summary.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (transport.QuoteResponse, error) {
	quote, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return transport.QuoteResponse{}, fmt.Errorf("get quote: %w", err)
	}
	return toResponse(quote), nil
}

// List returns a filtered, paginated page of quotes.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, req transport.ListQuotesRequest) (transport.QuoteListResponse, error) {
	page := req.Page
	if page < 1 {
		page = defaultPage
	}
	size := req.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	quotes, total, err := s.repo.List(ctx, repository.ListQuotesParams{
		OrganizationID: orgID,
		Status:         req.Status,
		Search:         req.Search,
		Offset:         (page - 1) * size,
		Limit:          size,
	})
	if err != nil {
		return transport.QuoteListResponse{}, fmt.Errorf("list quotes: %w", err)
	}

	resp := transport.QuoteListResponse{
		Quotes:     make([]transport.QuoteResponse, 0, len(quotes)),
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
	}
	for _, quote := range quotes {
		resp.Quotes = append(resp.Quotes, toResponse(quote))
	}
	return resp, nil
}

// Parameters returns the costing knobs of one quote, including the cached
// sale price. This is the quote source the costing engine consumes.
func (s *Service) Parameters(ctx context.Context, orgID, quoteID uuid.UUID) (calc.QuoteParameters, error) {
	quote, err := s.repo.GetByID(ctx, orgID, quoteID)
	if err != nil {
		return calc.QuoteParameters{}, err
	}
	params := quote.Params
	params.SalePriceMonthlyCLP = quote.SalePriceMonthlyCLP
	return params, nil
}

func parseParams(req *transport.QuoteParametersRequest) (calc.QuoteParameters, error) {
	params := calc.QuoteParameters{
		MonthlyHoursStandard:  defaultMonthlyHours,
		AvgStayMonths:         defaultAvgStayMonths,
		UniformChangesPerYear: defaultUniformChange,
	}
	if req == nil {
		return params, nil
	}

	fields := []struct {
		raw    string
		target *decimal.Decimal
		name   string
	}{
		{req.MonthlyHoursStandard, &params.MonthlyHoursStandard, "monthlyHoursStandard"},
		{req.AvgStayMonths, &params.AvgStayMonths, "avgStayMonths"},
		{req.UniformChangesPerYear, &params.UniformChangesPerYear, "uniformChangesPerYear"},
		{req.HolidayAdjustmentPct, &params.HolidayAdjustmentPct, "holidayAdjustmentPct"},
		{req.FinancialRatePct, &params.FinancialRatePct, "financialRatePct"},
		{req.PolicyRatePct, &params.PolicyRatePct, "policyRatePct"},
		{req.PolicyAdminRatePct, &params.PolicyAdminRatePct, "policyAdminRatePct"},
		{req.PolicyContractPct, &params.PolicyContractPct, "policyContractPct"},
		{req.MarginPct, &params.MarginPct, "marginPct"},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(f.raw)
		if err != nil {
			return calc.QuoteParameters{}, apperr.Validation(fmt.Sprintf("%s must be a decimal number", f.name))
		}
		if d.IsNegative() {
			return calc.QuoteParameters{}, apperr.Validation(fmt.Sprintf("%s must not be negative", f.name))
		}
		*f.target = d
	}

	if params.MarginPct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return calc.QuoteParameters{}, apperr.Validation("marginPct must be below 100")
	}

	params.FinancialEnabled = req.FinancialEnabled
	params.PolicyEnabled = req.PolicyEnabled
	params.PolicyContractMonths = req.PolicyContractMonths
	return params, nil
}

func toResponse(quote repository.Quote) transport.QuoteResponse {
	return transport.QuoteResponse{
		ID:                  quote.ID,
		Name:                quote.Name,
		ClientName:          quote.ClientName,
		Status:              quote.Status,
		Params:              quote.Params,
		CostSummary:         quote.CostSummary,
		SalePriceMonthlyCLP: quote.SalePriceMonthlyCLP,
		RuleVersion:         quote.RuleVersion,
		CreatedAt:           quote.CreatedAt,
		UpdatedAt:           quote.UpdatedAt,
	}
}
