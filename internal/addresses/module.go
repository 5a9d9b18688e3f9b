// Package addresses provides the address generation module: it pairs a
// synthetic persona with a real address resolved through the geocode
// cascade.
package addresses

import (
	"realaddress_backend/internal/addresses/handler"
	"realaddress_backend/internal/addresses/service"
	apphttp "realaddress_backend/internal/http"
	"realaddress_backend/platform/config"
	"realaddress_backend/platform/logger"
	"realaddress_backend/platform/validator"
)

// Module is the address generation module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the address generation module.
func NewModule(countries service.CountryNormalizer, resolver service.AddressResolver, personas service.PersonaGenerator, val *validator.Validator, cfg config.GeneratorConfig, log *logger.Logger) *Module {
	svc := service.New(countries, resolver, personas, cfg.GetDefaultCountry(), log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "addresses"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts address generation routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.GET("/generate", m.handler.Generate)
	ctx.API.POST("/generate", m.handler.GenerateJSON)
}
