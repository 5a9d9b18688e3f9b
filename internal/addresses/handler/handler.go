package handler

import (
	"github.com/gin-gonic/gin"

	"realaddress_backend/internal/addresses/service"
	"realaddress_backend/internal/addresses/transport"
	"realaddress_backend/platform/apperr"
	"realaddress_backend/platform/httpkit"
	"realaddress_backend/platform/validator"
)

// Handler handles HTTP requests for address generation.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// New creates a new address generation handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// Generate handles query-string requests.
// GET /api/generate
func (h *Handler) Generate(c *gin.Context) {
	var req transport.GenerateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	h.generate(c, req)
}

// GenerateJSON handles JSON body requests.
// POST /api/generate
func (h *Handler) GenerateJSON(c *gin.Context) {
	var req transport.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	h.generate(c, req)
}

func (h *Handler) generate(c *gin.Context, req transport.GenerateRequest) {
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(msgValidationFailed).WithDetails(validator.FieldErrors(err)))
		return
	}

	result, err := h.svc.Generate(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
