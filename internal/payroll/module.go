// Package payroll provides the payroll rules domain module: versioned
// jurisdiction constants and the employer-cost calculation built on them.
package payroll

import (
	apphttp "guardops_backend/internal/http"
	"guardops_backend/internal/payroll/handler"
	"guardops_backend/internal/payroll/repository"
	"guardops_backend/internal/payroll/service"
	"guardops_backend/platform/logger"
	"guardops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the payroll rules domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the payroll module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log.WithModule("payroll"))
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "payroll"
}

// Service returns the service layer for cross-module use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes. Publishing a new rule
// version is admin-only; reads are available to any authenticated user.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/payroll/rules"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/payroll/rules"))
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
