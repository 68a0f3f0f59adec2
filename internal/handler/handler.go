// internal/handler/handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/seriesml/forecast-service/internal/cache"
	"github.com/seriesml/forecast-service/internal/metrics"
	"github.com/seriesml/forecast-service/internal/middleware"
	"github.com/seriesml/forecast-service/internal/pipeline"
	"github.com/seriesml/forecast-service/internal/window"
)

// ResultPredictedValues tags a forecast response body. Other result kinds
// may exist in future model generations.
const ResultPredictedValues = "predicted_values"

// ForecastRequest is the wire form of one forecast request.
type ForecastRequest struct {
	Data window.DataWindow `json:"data"`
}

// ForecastResponse is the wire form of a successful forecast.
type ForecastResponse struct {
	Result      string                 `json:"result"`
	Predictions window.InferenceResult `json:"predictions"`
}

// Handler serves the forecast endpoint. It owns no model state of its own;
// each request flows through the pipeline independently.
type Handler struct {
	pipe   *pipeline.Pipeline
	cache  *cache.Cache
	logger *zap.Logger
}

// New creates a Handler. cache may be nil to disable result caching; a nil
// logger is replaced with a no-op logger.
func New(pipe *pipeline.Pipeline, cacheClient *cache.Cache, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		pipe:   pipe,
		cache:  cacheClient,
		logger: logger,
	}
}

// Forecast handles POST /v1/forecast.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()

	requestID := middleware.GetRequestID(ctx)
	if requestID == "" {
		requestID = "unknown"
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body: "+err.Error())
		return
	}
	if req.Data == nil {
		req.Data = window.DataWindow{}
	}

	metrics.RecordWindowSize(len(req.Data))
	metrics.AddDroppedObservations(countNonNumeric(req.Data))

	// Result cache lookup. Go marshals maps with sorted keys, so the
	// marshalled window is a canonical representation of the request.
	var cacheKey string
	if h.cache != nil {
		if canonical, err := json.Marshal(req.Data); err == nil {
			cacheKey = cache.Key(canonical)
			if payload, err := h.cache.GetForecast(ctx, cacheKey); err == nil && payload != "" {
				metrics.RecordCacheHit()
				h.logger.Debug("forecast served from cache",
					zap.String("request_id", requestID))
				writeJSON(w, http.StatusOK, []byte(payload))
				return
			}
		}
	}

	inferStart := time.Now()
	result, err := h.pipe.Handle(ctx, req.Data)
	metrics.RecordInferenceLatency(time.Since(inferStart).Seconds())

	if err != nil {
		status, code := pipelineStatus(err)
		h.logger.Error("forecast pipeline failed",
			zap.String("request_id", requestID),
			zap.String("code", code),
			zap.Error(err))
		writeError(w, status, code, err.Error())
		return
	}

	body, err := json.Marshal(ForecastResponse{
		Result:      ResultPredictedValues,
		Predictions: result,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "encoding response: "+err.Error())
		return
	}

	if h.cache != nil && cacheKey != "" {
		if err := h.cache.SetForecast(ctx, cacheKey, string(body)); err != nil {
			h.logger.Warn("failed to cache forecast",
				zap.String("request_id", requestID),
				zap.Error(err))
		}
	}

	h.logger.Info("forecast served",
		zap.String("request_id", requestID),
		zap.Int("observations", len(req.Data)),
		zap.Int("predictions", len(result)),
		zap.Duration("total", time.Since(start)))

	writeJSON(w, http.StatusOK, body)
}

func countNonNumeric(data window.DataWindow) int {
	n := 0
	for _, obs := range data {
		if _, ok := obs.Value.Number(); !ok {
			n++
		}
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
