package api

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/patrickmn/go-cache"

	"github.com/harmonia-mir/harmonia/analyze"
	"github.com/harmonia-mir/harmonia/logging"
	"github.com/harmonia-mir/harmonia/notation"
)

// analysisIDHeader carries the per-request analysis id for log
// correlation
const analysisIDHeader = "X-Analysis-ID"

// analysis outcome labels for the metrics counter
const (
	outcomeSuccess  = "success"
	outcomeRejected = "rejected"
	outcomeInvalid  = "invalid"
)

// AnalyzeUpload accepts a multipart score file, runs the full
// analysis and returns the result record. Identical uploads are
// served from a TTL cache keyed by content digest.
func (c *Controller) AnalyzeUpload(ctx echo.Context) error {
	analysisID := uuid.NewString()
	ctx.Response().Header().Set(analysisIDHeader, analysisID)
	logger := c.logger.WithFields(logging.Fields{"analysis_id": analysisID})

	file, err := ctx.FormFile("file")
	if err != nil {
		file, err = ctx.FormFile("xml_file")
	}
	if err != nil {
		return c.handleError(ctx, http.StatusBadRequest, nil, "no score file provided")
	}

	format, err := notation.DetectFormat(file.Filename)
	if err != nil {
		return c.handleError(ctx, http.StatusBadRequest, err, "unsupported score file")
	}

	maxSize := c.Settings.Server.MaxUploadSize
	if file.Size > maxSize {
		return c.handleError(ctx, http.StatusRequestEntityTooLarge, nil,
			fmt.Sprintf("file exceeds upload limit of %d bytes", maxSize))
	}

	src, err := file.Open()
	if err != nil {
		return c.handleError(ctx, http.StatusBadRequest, err, "reading upload")
	}
	defer src.Close()

	// re-check the size while reading: the multipart header is
	// client-supplied
	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return c.handleError(ctx, http.StatusBadRequest, err, "reading upload")
	}
	if int64(len(data)) > maxSize {
		return c.handleError(ctx, http.StatusRequestEntityTooLarge, nil,
			fmt.Sprintf("file exceeds upload limit of %d bytes", maxSize))
	}

	digest := fmt.Sprintf("%x", sha256.Sum256(data))
	if cached, found := c.cache.Get(digest); found {
		c.metrics.RecordCacheHit()
		logger.Debug("analysis served from cache", logging.Fields{"digest": digest})
		return ctx.JSON(http.StatusOK, cached)
	}
	c.metrics.RecordCacheMiss()

	start := time.Now()
	sc, err := notation.LoadReader(bytes.NewReader(data), format, file.Filename)
	if err != nil {
		c.metrics.RecordAnalysis(outcomeInvalid, time.Since(start).Seconds())
		return c.handleError(ctx, http.StatusUnprocessableEntity, err, "failed to load score")
	}

	result, err := c.analyzer.AnalyzeScore(ctx.Request().Context(), sc)
	seconds := time.Since(start).Seconds()
	if err != nil {
		var gateErr *analyze.PrecisionError
		if errors.As(err, &gateErr) {
			c.metrics.RecordAnalysis(outcomeRejected, seconds)
			c.metrics.RecordPrecision(gateErr.Score)
		} else {
			c.metrics.RecordAnalysis(outcomeInvalid, seconds)
		}
		return c.handleError(ctx, http.StatusUnprocessableEntity, err, "analysis failed")
	}

	c.metrics.RecordAnalysis(outcomeSuccess, seconds)
	c.metrics.RecordPrecision(result.PrecisionScore)
	c.cache.Set(digest, result, cache.DefaultExpiration)

	logger.Info("analysis served", logging.Fields{
		"file":      file.Filename,
		"digest":    digest,
		"precision": result.PrecisionScore,
		"duration":  seconds,
	})
	return ctx.JSON(http.StatusOK, result)
}

// ValidationReport is the response of the validate endpoint
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateResult checks a posted result document against the result
// schema. Malformed JSON is a 400; a well-formed document that misses
// the schema is a 422 with the violation list.
func (c *Controller) ValidateResult(ctx echo.Context) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return c.handleError(ctx, http.StatusBadRequest, err, "reading request body")
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return c.handleError(ctx, http.StatusBadRequest, err, "malformed JSON")
	}

	violations := c.schema.validate(doc)
	if len(violations) > 0 {
		return ctx.JSON(http.StatusUnprocessableEntity, &ValidationReport{
			Valid:  false,
			Errors: violations,
		})
	}
	return ctx.JSON(http.StatusOK, &ValidationReport{Valid: true})
}

// Schema serves the embedded JSON Schema of the result record
func (c *Controller) Schema(ctx echo.Context) error {
	return ctx.JSONBlob(http.StatusOK, resultSchemaJSON)
}
