// internal/handler/errors.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/seriesml/forecast-service/internal/inference"
	"github.com/seriesml/forecast-service/internal/tensor"
)

// ErrorResponse is the wire form of a failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// pipelineStatus maps a pipeline error to an HTTP status and a machine
// readable code. Shape mismatches are surfaced distinctly from transient
// backend failures: they indicate a broken model/configuration contract,
// not a fault a caller or operator can retry past.
func pipelineStatus(err error) (int, string) {
	switch {
	case errors.Is(err, tensor.ErrSeriesTooShort):
		return http.StatusUnprocessableEntity, "series_too_short"

	case errors.Is(err, tensor.ErrShapeMismatch):
		return http.StatusInternalServerError, "shape_mismatch"

	case errors.Is(err, inference.ErrModelLoad):
		return http.StatusInternalServerError, "model_load_failed"

	case errors.Is(err, inference.ErrGraphBuild):
		return http.StatusInternalServerError, "graph_build_failed"

	case errors.Is(err, inference.ErrInvocation):
		return http.StatusInternalServerError, "inference_failed"

	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Code: code, Message: message})
}
