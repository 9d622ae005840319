// Package catalog provides the tenant cost catalog: priced entries
// (uniforms, exams, meals, vehicle parts, infrastructure, generic items)
// that quote cost lines reference for unit prices.
package catalog

import (
	apphttp "guardops_backend/internal/http"
	"guardops_backend/internal/catalog/handler"
	"guardops_backend/internal/catalog/repository"
	"guardops_backend/internal/catalog/service"
	"guardops_backend/platform/logger"
	"guardops_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the catalog domain module.
type Module struct {
	handler    *handler.Handler
	repository repository.Repository
}

// NewModule creates the catalog module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log.WithModule("catalog"))
	h := handler.New(svc, val)

	return &Module{handler: h, repository: repo}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "catalog"
}

// Repository exposes catalog reads for the costing engine.
func (m *Module) Repository() repository.Repository {
	return m.repository
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/catalog/cost-items"))
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
