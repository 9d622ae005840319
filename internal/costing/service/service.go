package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"guardops_backend/internal/costing/calc"
	"guardops_backend/internal/costing/repository"
	"guardops_backend/internal/costing/transport"
	"guardops_backend/internal/events"
	payrollcalc "guardops_backend/internal/payroll/calc"
	"guardops_backend/platform/apperr"
	"guardops_backend/platform/logger"
)

// positionRecomputeParallelism bounds the fan-out when refreshing a quote's
// positions. Each recompute is pure CPU work, so a small bound is enough.
const positionRecomputeParallelism = 8

// RuleSource provides the active payroll rule snapshot.
type RuleSource interface {
	LatestSnapshot(ctx context.Context) (payrollcalc.RuleSnapshot, error)
}

// QuoteSource provides the quote-wide parameters the calculators need.
type QuoteSource interface {
	Parameters(ctx context.Context, organizationID, quoteID uuid.UUID) (calc.QuoteParameters, error)
}

// PriceSource resolves catalog base prices for the given item ids.
type PriceSource interface {
	Prices(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) (calc.PriceIndex, error)
}

// Enqueuer schedules an asynchronous quote recomputation on the worker.
type Enqueuer interface {
	EnqueueQuoteRecompute(ctx context.Context, organizationID, quoteID uuid.UUID, force bool) error
}

// Service orchestrates position updates, ancillary lines and quote cost
// summaries. The calculators themselves stay pure; all I/O happens here,
// before and after computation.
type Service struct {
	repo     repository.Repository
	rules    RuleSource
	quotes   QuoteSource
	prices   PriceSource
	bus      events.Bus
	enqueuer Enqueuer
	log      *logger.Logger
}

// New creates a costing service.
func New(repo repository.Repository, rules RuleSource, quotes QuoteSource, prices PriceSource, bus events.Bus, enqueuer Enqueuer, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		rules:    rules,
		quotes:   quotes,
		prices:   prices,
		bus:      bus,
		enqueuer: enqueuer,
		log:      log,
	}
}

// CreatePosition adds a staffing line to a quote and prices it immediately.
func (s *Service) CreatePosition(ctx context.Context, orgID, quoteID uuid.UUID, req transport.PositionRequest) (calc.Position, error) {
	// Resolving parameters doubles as an existence and tenancy check on the
	// quote before anything is written.
	if _, err := s.quotes.Parameters(ctx, orgID, quoteID); err != nil {
		return calc.Position{}, fmt.Errorf("resolve quote: %w", err)
	}

	pos, err := positionFromRequest(req)
	if err != nil {
		return calc.Position{}, err
	}
	pos.ID = uuid.New()
	pos.QuoteID = quoteID

	rules, err := s.rules.LatestSnapshot(ctx)
	if err != nil {
		return calc.Position{}, fmt.Errorf("load rule snapshot: %w", err)
	}

	pos, err = calc.RecomputePosition(pos, rules, true)
	if err != nil {
		return calc.Position{}, err
	}

	if err := s.repo.InsertPosition(ctx, orgID, pos); err != nil {
		return calc.Position{}, err
	}

	s.publishPositionRecomputed(ctx, orgID, pos)
	s.scheduleQuoteRecompute(ctx, orgID, quoteID, false)
	return pos, nil
}

// UpdatePosition replaces a position's fields. The cached employer cost is
// carried over unless a cost-bearing field changed or the caller forces a
// recompute; a failed recompute leaves the stored position untouched.
func (s *Service) UpdatePosition(ctx context.Context, orgID, id uuid.UUID, req transport.PositionRequest) (calc.Position, error) {
	prev, err := s.repo.GetPosition(ctx, orgID, id)
	if err != nil {
		return calc.Position{}, err
	}

	next, err := positionFromRequest(req)
	if err != nil {
		return calc.Position{}, err
	}
	next.ID = prev.ID
	next.QuoteID = prev.QuoteID
	next.EmployerCost = prev.EmployerCost

	rules, err := s.rules.LatestSnapshot(ctx)
	if err != nil {
		return calc.Position{}, fmt.Errorf("load rule snapshot: %w", err)
	}

	recomputed := calc.NeedsRecompute(prev, next, req.ForceRecalculate)
	next, err = calc.RecomputePosition(next, rules, recomputed)
	if err != nil {
		return calc.Position{}, err
	}

	if err := s.repo.UpdatePosition(ctx, orgID, next); err != nil {
		return calc.Position{}, err
	}

	if recomputed {
		s.publishPositionRecomputed(ctx, orgID, next)
	}
	s.scheduleQuoteRecompute(ctx, orgID, next.QuoteID, false)
	return next, nil
}

// DeletePosition removes a staffing line and forces the quote totals to be
// rebuilt.
func (s *Service) DeletePosition(ctx context.Context, orgID, id uuid.UUID) error {
	pos, err := s.repo.GetPosition(ctx, orgID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeletePosition(ctx, orgID, id); err != nil {
		return err
	}

	s.scheduleQuoteRecompute(ctx, orgID, pos.QuoteID, true)
	return nil
}

// ListPositions returns every position on a quote.
func (s *Service) ListPositions(ctx context.Context, orgID, quoteID uuid.UUID) (transport.PositionListResponse, error) {
	positions, err := s.repo.ListPositions(ctx, orgID, quoteID)
	if err != nil {
		return transport.PositionListResponse{}, err
	}
	if positions == nil {
		positions = []calc.Position{}
	}
	return transport.PositionListResponse{Positions: positions, Total: len(positions)}, nil
}

// GetPosition returns one position by id.
func (s *Service) GetPosition(ctx context.Context, orgID, id uuid.UUID) (calc.Position, error) {
	return s.repo.GetPosition(ctx, orgID, id)
}

// CreateCostLine adds an ancillary cost line to a quote.
func (s *Service) CreateCostLine(ctx context.Context, orgID, quoteID uuid.UUID, req transport.CostLineRequest) (calc.CostLine, error) {
	if _, err := s.quotes.Parameters(ctx, orgID, quoteID); err != nil {
		return calc.CostLine{}, fmt.Errorf("resolve quote: %w", err)
	}

	line, err := lineFromRequest(req)
	if err != nil {
		return calc.CostLine{}, err
	}
	line.ID = uuid.New()
	line.QuoteID = quoteID

	if err := s.repo.InsertCostLine(ctx, orgID, line); err != nil {
		return calc.CostLine{}, err
	}

	s.scheduleQuoteRecompute(ctx, orgID, quoteID, false)
	return line, nil
}

// UpdateCostLine replaces an ancillary cost line.
func (s *Service) UpdateCostLine(ctx context.Context, orgID, id uuid.UUID, req transport.CostLineRequest) (calc.CostLine, error) {
	prev, err := s.repo.GetCostLine(ctx, orgID, id)
	if err != nil {
		return calc.CostLine{}, err
	}

	line, err := lineFromRequest(req)
	if err != nil {
		return calc.CostLine{}, err
	}
	line.ID = prev.ID
	line.QuoteID = prev.QuoteID

	if err := s.repo.UpdateCostLine(ctx, orgID, line); err != nil {
		return calc.CostLine{}, err
	}

	s.scheduleQuoteRecompute(ctx, orgID, line.QuoteID, false)
	return line, nil
}

// DeleteCostLine removes an ancillary cost line.
func (s *Service) DeleteCostLine(ctx context.Context, orgID, id uuid.UUID) error {
	line, err := s.repo.GetCostLine(ctx, orgID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCostLine(ctx, orgID, id); err != nil {
		return err
	}

	s.scheduleQuoteRecompute(ctx, orgID, line.QuoteID, false)
	return nil
}

// ListCostLines returns every ancillary line on a quote.
func (s *Service) ListCostLines(ctx context.Context, orgID, quoteID uuid.UUID) (transport.CostLineListResponse, error) {
	lines, err := s.repo.ListCostLines(ctx, orgID, quoteID)
	if err != nil {
		return transport.CostLineListResponse{}, err
	}
	if lines == nil {
		lines = []calc.CostLine{}
	}
	return transport.CostLineListResponse{Lines: lines, Total: len(lines)}, nil
}

// ComputeQuoteCosts rebuilds the whole cost structure of a quote: refreshes
// every position under the active rule snapshot, prices every ancillary
// category, back-solves the sale price and caches the result on the quote
// header. Positions are critical; ancillary categories degrade to zero with
// a logged warning.
func (s *Service) ComputeQuoteCosts(ctx context.Context, orgID, quoteID uuid.UUID, force bool) (transport.QuoteCostsResponse, error) {
	params, err := s.quotes.Parameters(ctx, orgID, quoteID)
	if err != nil {
		return transport.QuoteCostsResponse{}, fmt.Errorf("resolve quote: %w", err)
	}

	rules, err := s.rules.LatestSnapshot(ctx)
	if err != nil {
		return transport.QuoteCostsResponse{}, fmt.Errorf("load rule snapshot: %w", err)
	}

	positions, err := s.refreshPositions(ctx, orgID, quoteID, rules, force)
	if err != nil {
		return transport.QuoteCostsResponse{}, err
	}

	lines, err := s.repo.ListCostLines(ctx, orgID, quoteID)
	if err != nil {
		return transport.QuoteCostsResponse{}, err
	}

	prices := s.resolvePrices(ctx, orgID, quoteID, lines)

	summary, degraded := calc.BuildSummary(calc.SummaryInput{
		Positions:   positions,
		Lines:       lines,
		Params:      params,
		Prices:      prices,
		RuleVersion: rules.Version,
	})
	degradedNames := make([]string, 0, len(degraded))
	for _, d := range degraded {
		s.log.CategoryDegraded(quoteID.String(), string(d.Category), d.Err)
		degradedNames = append(degradedNames, string(d.Category))
	}

	salePrice, err := s.resolveSalePrice(summary, params, force)
	if err != nil {
		return transport.QuoteCostsResponse{}, err
	}

	if err := s.repo.SaveQuoteSummary(ctx, orgID, quoteID, summary, salePrice); err != nil {
		return transport.QuoteCostsResponse{}, err
	}

	s.bus.Publish(ctx, events.QuoteCostsRecalculated{
		BaseEvent:        events.NewBaseEvent(),
		TenantID:         orgID,
		QuoteID:          quoteID,
		MonthlyTotalCLP:  summary.MonthlyTotalCLP,
		SalePriceMonthly: salePrice,
		TotalGuards:      summary.TotalGuards,
	})

	return transport.QuoteCostsResponse{
		QuoteID:             quoteID,
		Summary:             summary,
		SalePriceMonthlyCLP: salePrice,
		DegradedCategories:  degradedNames,
	}, nil
}

// refreshPositions recomputes all of a quote's positions under the given
// snapshot. Recomputations are independent, so they fan out; all must finish
// before the summary aggregates. Any failure aborts the refresh and nothing
// is persisted for the failed position.
func (s *Service) refreshPositions(ctx context.Context, orgID, quoteID uuid.UUID, rules payrollcalc.RuleSnapshot, force bool) ([]calc.Position, error) {
	positions, err := s.repo.ListPositions(ctx, orgID, quoteID)
	if err != nil {
		return nil, err
	}

	var g errgroup.Group
	g.SetLimit(positionRecomputeParallelism)

	refreshed := make([]calc.Position, len(positions))
	changed := make([]bool, len(positions))
	for i, pos := range positions {
		g.Go(func() error {
			wasStale := force || pos.EmployerCost.StaleFor(rules.Version)
			next, err := calc.RecomputePosition(pos, rules, force)
			if err != nil {
				return fmt.Errorf("recompute position %s: %w", pos.ID, err)
			}
			refreshed[i] = next
			changed[i] = wasStale || next.MonthlyPositionCostCLP != pos.MonthlyPositionCostCLP
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, pos := range refreshed {
		if !changed[i] {
			continue
		}
		if err := s.repo.UpdatePosition(ctx, orgID, pos); err != nil {
			return nil, err
		}
		s.publishPositionRecomputed(ctx, orgID, pos)
	}
	return refreshed, nil
}

// resolvePrices loads catalog base prices for every enabled line that has no
// override. A catalog failure degrades the affected categories instead of
// failing the summary.
func (s *Service) resolvePrices(ctx context.Context, orgID, quoteID uuid.UUID, lines []calc.CostLine) calc.PriceIndex {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, line := range lines {
		if !line.IsEnabled || line.UnitPriceOverrideCLP != nil || line.CatalogItemID == nil {
			continue
		}
		if _, ok := seen[*line.CatalogItemID]; ok {
			continue
		}
		seen[*line.CatalogItemID] = struct{}{}
		ids = append(ids, *line.CatalogItemID)
	}
	if len(ids) == 0 {
		return calc.PriceIndex{}
	}

	prices, err := s.prices.Prices(ctx, orgID, ids)
	if err != nil {
		s.log.Warn("catalog price lookup failed, degrading catalog-priced categories",
			"quoteId", quoteID,
			"error", err,
		)
		return calc.PriceIndex{}
	}
	return prices
}

// resolveSalePrice back-solves the sale price when the cached one is missing
// or a recomputation was forced; otherwise the cached price is kept.
func (s *Service) resolveSalePrice(summary calc.Summary, params calc.QuoteParameters, force bool) (int64, error) {
	if !force && params.SalePriceMonthlyCLP > 0 {
		return params.SalePriceMonthlyCLP, nil
	}
	return calc.ComputeSalePrice(
		summary.CostsBase(),
		summary.MonthlyFinancialCLP,
		summary.MonthlyPolicyCLP,
		params.MarginPct,
	)
}

// RecomputeQuote rebuilds a quote's costs, discarding the response body.
// This is the entry point the background worker drives.
func (s *Service) RecomputeQuote(ctx context.Context, orgID, quoteID uuid.UUID, force bool) error {
	_, err := s.ComputeQuoteCosts(ctx, orgID, quoteID, force)
	return err
}

// ScheduleRecompute enqueues an asynchronous quote recomputation.
func (s *Service) ScheduleRecompute(ctx context.Context, orgID, quoteID uuid.UUID, force bool) error {
	if s.enqueuer == nil {
		return apperr.Internal("background recomputation is not configured")
	}
	return s.enqueuer.EnqueueQuoteRecompute(ctx, orgID, quoteID, force)
}

// scheduleQuoteRecompute is the best-effort variant used after position and
// line mutations: when no worker is wired, or enqueueing fails, the stale
// cached totals are simply served until the next explicit recomputation.
func (s *Service) scheduleQuoteRecompute(ctx context.Context, orgID, quoteID uuid.UUID, force bool) {
	if s.enqueuer == nil {
		return
	}
	if err := s.enqueuer.EnqueueQuoteRecompute(ctx, orgID, quoteID, force); err != nil {
		s.log.Warn("failed to enqueue quote recomputation",
			"quoteId", quoteID,
			"organizationId", orgID,
			"error", err,
		)
	}
}

func (s *Service) publishPositionRecomputed(ctx context.Context, orgID uuid.UUID, pos calc.Position) {
	s.bus.Publish(ctx, events.PositionRecomputed{
		BaseEvent:              events.NewBaseEvent(),
		TenantID:               orgID,
		QuoteID:                pos.QuoteID,
		PositionID:             pos.ID,
		MonthlyPositionCostCLP: pos.MonthlyPositionCostCLP,
		RuleVersion:            pos.EmployerCost.RuleVersion,
	})
}

func positionFromRequest(req transport.PositionRequest) (calc.Position, error) {
	salary, err := salaryFromRequest(req.Salary)
	if err != nil {
		return calc.Position{}, err
	}
	return calc.Position{
		PuestoTrabajoID: req.PuestoTrabajoID,
		CargoID:         req.CargoID,
		RolID:           req.RolID,
		Weekdays:        req.Weekdays,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		NumGuards:       req.NumGuards,
		NumPuestos:      req.NumPuestos,
		Salary:          salary,
	}, nil
}

func salaryFromRequest(req transport.SalaryInputRequest) (payrollcalc.SalaryInput, error) {
	healthPlan, err := parseOptionalPct(req.HealthPlanPct, "healthPlanPct")
	if err != nil {
		return payrollcalc.SalaryInput{}, err
	}
	vacation, err := parseOptionalPctPtr(req.VacationProvisionPct, "vacationProvisionPct")
	if err != nil {
		return payrollcalc.SalaryInput{}, err
	}
	severance, err := parseOptionalPctPtr(req.SeveranceProvisionPct, "severanceProvisionPct")
	if err != nil {
		return payrollcalc.SalaryInput{}, err
	}

	return payrollcalc.SalaryInput{
		BaseSalaryCLP:             req.BaseSalaryCLP,
		TaxableBonusesCLP:         req.TaxableBonusesCLP,
		ContractType:              payrollcalc.ContractType(req.ContractType),
		AFPProvider:               req.AFPProvider,
		HealthSystem:              payrollcalc.HealthSystem(req.HealthSystem),
		HealthPlanPct:             healthPlan,
		IncludeVacationProvision:  req.IncludeVacationProvision,
		VacationProvisionPct:      vacation,
		IncludeSeveranceProvision: req.IncludeSeveranceProvision,
		SeveranceProvisionPct:     severance,
	}, nil
}

func lineFromRequest(req transport.CostLineRequest) (calc.CostLine, error) {
	quantity, err := parseOptionalDecimal(req.Quantity, "quantity")
	if err != nil {
		return calc.CostLine{}, err
	}
	kmPerDay, err := parseOptionalDecimal(req.KmPerDay, "kmPerDay")
	if err != nil {
		return calc.CostLine{}, err
	}
	daysPerMonth, err := parseOptionalDecimal(req.DaysPerMonth, "daysPerMonth")
	if err != nil {
		return calc.CostLine{}, err
	}
	kmPerLiter, err := parseOptionalDecimal(req.KmPerLiter, "kmPerLiter")
	if err != nil {
		return calc.CostLine{}, err
	}

	enabled := true
	if req.IsEnabled != nil {
		enabled = *req.IsEnabled
	}
	visibility := calc.Visibility(req.Visibility)
	if visibility == "" {
		visibility = calc.VisibilityInternal
	}

	return calc.CostLine{
		Category:             calc.LineCategory(req.Category),
		CatalogItemID:        req.CatalogItemID,
		CalcMode:             calc.CalcMode(req.CalcMode),
		Quantity:             quantity,
		UnitPriceOverrideCLP: req.UnitPriceOverrideCLP,
		IsEnabled:            enabled,
		Visibility:           visibility,
		MonthlyRentCLP:       req.MonthlyRentCLP,
		KmPerDay:             kmPerDay,
		DaysPerMonth:         daysPerMonth,
		KmPerLiter:           kmPerLiter,
		FuelPriceCLP:         req.FuelPriceCLP,
		MaintenanceCLP:       req.MaintenanceCLP,
		HasFuel:              req.HasFuel,
	}, nil
}

func parseOptionalDecimal(value, field string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, apperr.Validation(fmt.Sprintf("%s must be a decimal number", field))
	}
	if d.IsNegative() {
		return decimal.Decimal{}, apperr.Validation(fmt.Sprintf("%s must not be negative", field))
	}
	return d, nil
}

func parseOptionalPct(value, field string) (decimal.Decimal, error) {
	d, err := parseOptionalDecimal(value, field)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Decimal{}, apperr.Validation(fmt.Sprintf("%s must be between 0 and 100", field))
	}
	return d, nil
}

func parseOptionalPctPtr(value *string, field string) (*decimal.Decimal, error) {
	if value == nil {
		return nil, nil
	}
	d, err := parseOptionalPct(*value, field)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
