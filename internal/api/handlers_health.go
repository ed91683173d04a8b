// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/layout-editor/backend/internal/models"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	presets models.DevicePresets
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, presets models.DevicePresets) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		presets: presets,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": h.version,
	})
}

// HandleDevices returns the device presets offered by the viewport
func (h *HealthHandlerImpl) HandleDevices(c echo.Context) error {
	return c.JSON(http.StatusOK, h.presets)
}
