package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"guardops_backend/internal/costing/service"
	"guardops_backend/internal/costing/transport"
	"guardops_backend/platform/apperr"
	"guardops_backend/platform/httpkit"
	"guardops_backend/platform/validator"
)

// Handler exposes the costing endpoints: positions, ancillary cost lines and
// quote cost summaries.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a costing handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts costing routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/quotes/:id/positions", h.ListPositions)
	rg.POST("/quotes/:id/positions", h.CreatePosition)
	rg.GET("/positions/:id", h.GetPosition)
	rg.PUT("/positions/:id", h.UpdatePosition)
	rg.DELETE("/positions/:id", h.DeletePosition)

	rg.GET("/quotes/:id/cost-lines", h.ListCostLines)
	rg.POST("/quotes/:id/cost-lines", h.CreateCostLine)
	rg.PUT("/cost-lines/:id", h.UpdateCostLine)
	rg.DELETE("/cost-lines/:id", h.DeleteCostLine)

	rg.GET("/quotes/:id/costs", h.GetQuoteCosts)
	rg.POST("/quotes/:id/costs/recalculate", h.RecalculateQuote)
}

func (h *Handler) CreatePosition(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid quote id"))
		return
	}

	var req transport.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	pos, err := h.svc.CreatePosition(c.Request.Context(), orgID, quoteID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, pos)
}

func (h *Handler) UpdatePosition(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid position id"))
		return
	}

	var req transport.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	pos, err := h.svc.UpdatePosition(c.Request.Context(), orgID, id, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, pos)
}

func (h *Handler) DeletePosition(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid position id"))
		return
	}

	if err := h.svc.DeletePosition(c.Request.Context(), orgID, id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) GetPosition(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid position id"))
		return
	}

	pos, err := h.svc.GetPosition(c.Request.Context(), orgID, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, pos)
}

func (h *Handler) ListPositions(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid quote id"))
		return
	}

	resp, err := h.svc.ListPositions(c.Request.Context(), orgID, quoteID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) CreateCostLine(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid quote id"))
		return
	}

	var req transport.CostLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	line, err := h.svc.CreateCostLine(c.Request.Context(), orgID, quoteID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, line)
}

func (h *Handler) UpdateCostLine(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid cost line id"))
		return
	}

	var req transport.CostLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	line, err := h.svc.UpdateCostLine(c.Request.Context(), orgID, id, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, line)
}

func (h *Handler) DeleteCostLine(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid cost line id"))
		return
	}

	if err := h.svc.DeleteCostLine(c.Request.Context(), orgID, id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) ListCostLines(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid quote id"))
		return
	}

	resp, err := h.svc.ListCostLines(c.Request.Context(), orgID, quoteID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, resp)
}

// GetQuoteCosts computes the quote's cost structure fresh and refreshes the
// cached totals on the header.
func (h *Handler) GetQuoteCosts(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid quote id"))
		return
	}

	resp, err := h.svc.ComputeQuoteCosts(c.Request.Context(), orgID, quoteID, false)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, resp)
}

// RecalculateQuote rebuilds the quote's cost structure, either inline or on
// the worker.
func (h *Handler) RecalculateQuote(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid quote id"))
		return
	}

	var req transport.RecalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// An empty body means an inline, non-forced recomputation.
		req = transport.RecalculateRequest{}
	}

	if req.Async {
		if err := h.svc.ScheduleRecompute(c.Request.Context(), orgID, quoteID, req.Force); err != nil {
			httpkit.HandleError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, transport.RecalculateAcceptedResponse{QuoteID: quoteID, Status: "queued"})
		return
	}

	resp, err := h.svc.ComputeQuoteCosts(c.Request.Context(), orgID, quoteID, req.Force)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, resp)
}
