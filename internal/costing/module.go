// Package costing is the quote costing engine: staffing positions priced by
// the payroll calculator, ancillary cost categories, the quote cost summary
// and the margin-based sale price.
package costing

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	catalogrepo "guardops_backend/internal/catalog/repository"
	"guardops_backend/internal/costing/calc"
	"guardops_backend/internal/costing/handler"
	"guardops_backend/internal/costing/repository"
	"guardops_backend/internal/costing/service"
	"guardops_backend/internal/events"
	apphttp "guardops_backend/internal/http"
	"guardops_backend/platform/logger"
	"guardops_backend/platform/validator"
)

// Module represents the costing domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the costing module. The rule source comes from the
// payroll module, the quote source from the quotes module and prices from
// the catalog; the enqueuer may be nil when no worker is deployed.
func NewModule(
	pool *pgxpool.Pool,
	val *validator.Validator,
	log *logger.Logger,
	rules service.RuleSource,
	quotes service.QuoteSource,
	catalog catalogrepo.Repository,
	bus events.Bus,
	enqueuer service.Enqueuer,
) *Module {
	repo := repository.New(pool)
	svc := service.New(
		repo,
		rules,
		quotes,
		&catalogPriceSource{catalog: catalog},
		bus,
		enqueuer,
		log.WithModule("costing"),
	)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "costing"
}

// Service returns the service layer for the background worker.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)

// catalogPriceSource adapts the catalog repository to the price lookup the
// calculators need.
type catalogPriceSource struct {
	catalog catalogrepo.Repository
}

func (s *catalogPriceSource) Prices(ctx context.Context, organizationID uuid.UUID, ids []uuid.UUID) (calc.PriceIndex, error) {
	items, err := s.catalog.GetCostItemsByIDs(ctx, organizationID, ids)
	if err != nil {
		return nil, err
	}
	prices := make(calc.PriceIndex, len(items))
	for _, item := range items {
		if !item.Active {
			continue
		}
		prices[item.ID] = item.UnitPriceCLP
	}
	return prices, nil
}
