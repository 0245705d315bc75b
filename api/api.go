// Package api exposes the harmonic analysis pipeline over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"

	"github.com/harmonia-mir/harmonia/analyze"
	"github.com/harmonia-mir/harmonia/conf"
	"github.com/harmonia-mir/harmonia/logging"
)

// moduleName tags every response envelope from this service
const moduleName = "harmonic-analysis"

// Controller wires the API routes to the analysis pipeline
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	Settings *conf.Settings

	analyzer *analyze.HarmonicAnalyzer
	cache    *cache.Cache
	metrics  *Metrics
	schema   *resultSchema
	logger   logging.Logger
	version  string
}

// New creates the API controller and registers all routes on e. The
// metrics registry stays private to the controller.
func New(e *echo.Echo, settings *conf.Settings, version string) (*Controller, error) {
	if settings == nil {
		return nil, fmt.Errorf("api: settings must not be nil")
	}
	metrics, err := NewMetrics(nil)
	if err != nil {
		return nil, fmt.Errorf("api: registering metrics: %w", err)
	}
	schema, err := loadResultSchema()
	if err != nil {
		return nil, fmt.Errorf("api: parsing embedded schema: %w", err)
	}

	c := &Controller{
		Echo:     e,
		Settings: settings,
		analyzer: analyze.NewHarmonicAnalyzer(&settings.Analysis),
		cache:    cache.New(settings.Server.CacheTTL, 2*settings.Server.CacheTTL),
		metrics:  metrics,
		schema:   schema,
		logger: logging.WithFields(logging.Fields{
			"component": "api",
		}),
		version: version,
	}

	e.HTTPErrorHandler = c.httpErrorHandler
	c.Group = e.Group("/api/v1")
	c.initRoutes()
	return c, nil
}

// initRoutes registers all endpoints
func (c *Controller) initRoutes() {
	c.Echo.GET("/health", c.HealthCheck)
	c.Echo.GET("/metrics", c.metrics.Handler())

	c.Group.POST("/analyze", c.AnalyzeUpload)
	c.Group.GET("/schema", c.Schema)
	c.Group.POST("/validate", c.ValidateResult)
}

// HealthCheck reports service liveness
func (c *Controller) HealthCheck(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"status":  "healthy",
		"module":  moduleName,
		"version": c.version,
	})
}

// ErrorResponse is the error envelope every endpoint returns on failure
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Module string `json:"module"`
}

func newErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Status: analyze.StatusError,
		Error:  message,
		Module: moduleName,
	}
}

// handleError logs the failure and writes the error envelope
func (c *Controller) handleError(ctx echo.Context, code int, err error, message string) error {
	full := message
	if err != nil {
		full = fmt.Sprintf("%s: %v", message, err)
	}
	c.logger.Warn("request failed", logging.Fields{
		"path":   ctx.Request().URL.Path,
		"method": ctx.Request().Method,
		"code":   code,
		"error":  full,
	})
	return ctx.JSON(code, newErrorResponse(full))
}

// httpErrorHandler renders unmatched routes and other echo-level
// failures as the JSON envelope instead of echo's default body
func (c *Controller) httpErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if s, ok := httpErr.Message.(string); ok {
			message = s
		} else {
			message = http.StatusText(code)
		}
	}

	if writeErr := ctx.JSON(code, newErrorResponse(message)); writeErr != nil {
		c.logger.Error(writeErr, "writing error response")
	}
}
