// Package quotes provides commercial quote headers: identity, status,
// quote-wide costing parameters and the cached cost totals written by the
// costing engine.
package quotes

import (
	apphttp "guardops_backend/internal/http"
	"guardops_backend/internal/quotes/handler"
	"guardops_backend/internal/quotes/repository"
	"guardops_backend/internal/quotes/service"
	"guardops_backend/platform/logger"
	"guardops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotes domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the quotes module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log.WithModule("quotes"))
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer; the costing module consumes it as its
// quote source.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/quotes"))
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
