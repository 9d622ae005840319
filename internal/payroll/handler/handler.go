// Package handler exposes payroll rule snapshots over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"guardops_backend/internal/payroll/service"
	"guardops_backend/internal/payroll/transport"
	"guardops_backend/platform/httpkit"
	"guardops_backend/platform/validator"
)

const msgInvalidRequest = "invalid request"

// Handler handles HTTP requests for payroll rule snapshots.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a payroll rules handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts read endpoints on the authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/latest", h.Latest)
	rg.GET("/:version", h.ByVersion)
}

// RegisterAdminRoutes mounts the publish endpoint on the admin group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Publish)
}

func (h *Handler) Publish(c *gin.Context) {
	var req transport.PublishRuleSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.svc.Publish(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, result)
}

func (h *Handler) Latest(c *gin.Context) {
	result, err := h.svc.Latest(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) ByVersion(c *gin.Context) {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil || version < 1 {
		httpkit.Error(c, http.StatusBadRequest, "invalid version")
		return
	}

	result, err := h.svc.ByVersion(c.Request.Context(), version)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) List(c *gin.Context) {
	result, err := h.svc.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
