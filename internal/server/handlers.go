package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/likhita8305/sales-dashboard-atomic/pkg/dashboard"
	"github.com/likhita8305/sales-dashboard-atomic/pkg/model"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Handler serves the dashboard API
type Handler struct {
	svc *dashboard.Service
	log *zap.Logger
}

// NewHandler creates a handler over the dashboard service
func NewHandler(svc *dashboard.Service, log *zap.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListRanges godoc
// @Summary List ranges
// @Description Lists stored dataset ranges and trailing window ranges, with the default marked
// @Tags ranges
// @Produce json
// @Success 200 {object} dashboard.RangesResponse
// @Failure 502 {object} ErrorResponse
// @Router /ranges [get]
func (h *Handler) ListRanges(c *gin.Context) {
	resp, err := h.svc.Ranges(c.Request.Context())
	if err != nil {
		h.sendError(c, http.StatusBadGateway, "Failed to list ranges", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Series godoc
// @Summary Get chart series
// @Description Filters the selected range by threshold and projects it for the chart kind.
// @Description Invalid thresholds count as 0, unknown charts as line, unknown ranges fall back to the default.
// @Tags series
// @Produce json
// @Param range query string false "Range key, e.g. 2024 or 12m"
// @Param threshold query number false "Minimum value"
// @Param chart query string false "area, bar, line, pie or radial"
// @Success 200 {object} model.DerivedSeries
// @Failure 502 {object} ErrorResponse
// @Router /series [get]
func (h *Handler) Series(c *gin.Context) {
	series, err := h.svc.Series(c.Request.Context(), viewParams(c))
	if err != nil {
		h.sendError(c, http.StatusBadGateway, "Failed to load dataset", err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// Summary godoc
// @Summary Get stat cards
// @Tags summary
// @Produce json
// @Param range query string false "Range key"
// @Success 200 {object} summary.Summary
// @Failure 502 {object} ErrorResponse
// @Router /summary [get]
func (h *Handler) Summary(c *gin.Context) {
	sum, err := h.svc.Summary(c.Request.Context(), c.Query("range"))
	if err != nil {
		h.sendError(c, http.StatusBadGateway, "Failed to load dataset", err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// Transactions godoc
// @Summary List latest transactions
// @Tags transactions
// @Produce json
// @Param limit query int false "Maximum rows, 0 for all"
// @Success 200 {array} model.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /transactions [get]
func (h *Handler) Transactions(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid limit", err)
		return
	}

	txs, err := h.svc.Transactions(c.Request.Context(), limit)
	if err != nil {
		h.sendError(c, http.StatusBadGateway, "Failed to load transactions", err)
		return
	}
	c.JSON(http.StatusOK, txs)
}

// Overview godoc
// @Summary Get everything the dashboard page shows
// @Tags overview
// @Produce json
// @Param range query string false "Range key"
// @Param threshold query number false "Minimum value"
// @Param chart query string false "Chart kind"
// @Param limit query int false "Transactions to include"
// @Success 200 {object} dashboard.Overview
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /overview [get]
func (h *Handler) Overview(c *gin.Context) {
	limit, err := intQuery(c, "limit", 4)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid limit", err)
		return
	}

	ov, err := h.svc.Overview(c.Request.Context(), viewParams(c), limit)
	if err != nil {
		h.sendError(c, http.StatusBadGateway, "Failed to load overview", err)
		return
	}
	c.JSON(http.StatusOK, ov)
}

// Similar godoc
// @Summary Find ranges shaped like a range
// @Tags ranges
// @Produce json
// @Param range path string true "Range key"
// @Param topk query int false "Number of matches"
// @Success 200 {object} dashboard.SimilarResult
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /ranges/{range}/similar [get]
func (h *Handler) Similar(c *gin.Context) {
	topK, err := intQuery(c, "topk", 5)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, "Invalid topk", err)
		return
	}

	res, err := h.svc.Similar(c.Request.Context(), c.Param("range"), topK)
	switch {
	case errors.Is(err, dashboard.ErrNoIndex):
		h.sendError(c, http.StatusServiceUnavailable, "Similarity search is not configured", err)
		return
	case err != nil:
		h.sendError(c, http.StatusBadGateway, "Failed to search similar ranges", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// viewParams reads the view parameters; bad values are normalized, never rejected
func viewParams(c *gin.Context) model.ViewParams {
	return model.ViewParams{
		Range:     c.Query("range"),
		Threshold: model.ParseThreshold(c.Query("threshold")),
		Chart:     model.ParseChartKind(c.Query("chart")),
	}
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "%s must be an integer", name)
	}
	return v, nil
}

// sendError logs the error and sends a JSON error response
func (h *Handler) sendError(c *gin.Context, statusCode int, message string, err error) {
	correlationID := GetCorrelationID(c)

	h.log.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.String("correlation_id", correlationID),
	)

	c.JSON(statusCode, ErrorResponse{
		Error:         message,
		CorrelationID: correlationID,
	})
}
