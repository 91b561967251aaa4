// Package ginhealth exposes a health.Registry through gin.
package ginhealth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonwraymond/healthkit/health"
)

// Handler serves the aggregated report with status 200 or 503.
func Handler(reg *health.Registry, opts ...health.HandlerOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := health.ReportFor(c.Request, reg, opts...)
		c.Header("Cache-Control", "no-store")
		c.JSON(report.HTTPStatus(), report)
	}
}

// CheckHandler serves the check named by the :name path parameter.
func CheckHandler(reg *health.Registry, opts ...health.HandlerOption) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		result, err := health.CheckFor(c.Request, reg, c.Param("name"), opts...)
		if errors.Is(err, health.ErrCheckNotFound) {
			c.JSON(http.StatusNotFound, health.ErrorBody{Error: err.Error()})
			return
		}
		c.JSON(result.HTTPStatus(), result)
	}
}

// LivenessHandler always answers 200.
func LivenessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": health.StatusOK})
	}
}

// Register mounts /health, /health/ready, /health/live and
// /health/checks/:name on r.
func Register(r gin.IRoutes, reg *health.Registry, opts ...health.HandlerOption) {
	report := Handler(reg, opts...)
	r.GET("/health", report)
	r.HEAD("/health", report)
	r.GET("/health/ready", report)
	r.GET("/health/live", LivenessHandler())
	r.GET("/health/checks/:name", CheckHandler(reg, opts...))
}
