// Package echohealth exposes a health.Registry through echo.
package echohealth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jonwraymond/healthkit/health"
)

// Handler serves the aggregated report with status 200 or 503.
func Handler(reg *health.Registry, opts ...health.HandlerOption) echo.HandlerFunc {
	return func(c echo.Context) error {
		report := health.ReportFor(c.Request(), reg, opts...)
		c.Response().Header().Set("Cache-Control", "no-store")
		return c.JSON(report.HTTPStatus(), report)
	}
}

// CheckHandler serves the check named by the :name path parameter.
func CheckHandler(reg *health.Registry, opts ...health.HandlerOption) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "no-store")
		result, err := health.CheckFor(c.Request(), reg, c.Param("name"), opts...)
		if errors.Is(err, health.ErrCheckNotFound) {
			return c.JSON(http.StatusNotFound, health.ErrorBody{Error: err.Error()})
		}
		return c.JSON(result.HTTPStatus(), result)
	}
}

// LivenessHandler always answers 200.
func LivenessHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]health.Status{"status": health.StatusOK})
	}
}

// Register mounts /health, /health/ready, /health/live and
// /health/checks/:name on e.
func Register(e *echo.Echo, reg *health.Registry, opts ...health.HandlerOption) {
	report := Handler(reg, opts...)
	e.GET("/health", report)
	e.HEAD("/health", report)
	e.GET("/health/ready", report)
	e.GET("/health/live", LivenessHandler())
	e.GET("/health/checks/:name", CheckHandler(reg, opts...))
}
