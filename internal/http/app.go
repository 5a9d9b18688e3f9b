// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"realaddress_backend/platform/config"
	"realaddress_backend/platform/logger"
	"realaddress_backend/platform/metrics"
)

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP settings only).
	Config config.HTTPConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Metrics is the Prometheus collector. Nil disables /metrics.
	Metrics *metrics.Collector
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
