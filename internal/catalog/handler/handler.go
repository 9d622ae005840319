package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"guardops_backend/internal/catalog/service"
	"guardops_backend/internal/catalog/transport"
	"guardops_backend/platform/apperr"
	"guardops_backend/platform/httpkit"
	"guardops_backend/platform/validator"
)

// Handler exposes catalog endpoints.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a catalog handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts catalog routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListCostItems)
	rg.GET("/:id", h.GetCostItem)
	rg.POST("", h.CreateCostItem)
	rg.PATCH("/:id", h.UpdateCostItem)
	rg.DELETE("/:id", h.DeleteCostItem)
}

func (h *Handler) CreateCostItem(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	var req transport.CreateCostItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.svc.CreateCostItem(c.Request.Context(), orgID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, resp)
}

func (h *Handler) UpdateCostItem(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid cost item id"))
		return
	}

	var req transport.UpdateCostItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.svc.UpdateCostItem(c.Request.Context(), orgID, id, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) DeleteCostItem(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid cost item id"))
		return
	}

	if err := h.svc.DeleteCostItem(c.Request.Context(), orgID, id); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.NoContent(c)
}

func (h *Handler) GetCostItem(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.HandleError(c, apperr.Validation("invalid cost item id"))
		return
	}

	resp, err := h.svc.GetCostItem(c.Request.Context(), orgID, id)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) ListCostItems(c *gin.Context) {
	orgID, ok := httpkit.MustGetTenant(c)
	if !ok {
		return
	}

	var req transport.ListCostItemsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid query parameters")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.svc.ListCostItems(c.Request.Context(), orgID, req)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, resp)
}
