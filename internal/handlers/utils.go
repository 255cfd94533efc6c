package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/svemula/chatvector/internal/adapter"
	"github.com/svemula/chatvector/internal/config"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response: %v", err)
	}
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		log := logRH.With("traceId", ctx.Value(config.TRACE_ID_KEY))
		log.Warn("context error", "error", ctx.Err())
		return false
	}
	return handlerInstance != nil
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(error, httpCode))
}
