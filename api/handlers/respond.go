package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/openlems/lems-backend/app/shared/results"
)

// commandResponse is the JSON envelope every command endpoint returns.
type commandResponse struct {
	OK    bool               `json:"ok"`
	Data  interface{}        `json:"data,omitempty"`
	Error *results.Rejection `json:"error,omitempty"`
}

// statusForRejection maps a rejection code to its HTTP status.
func statusForRejection(code string) int {
	switch code {
	case results.CodeNotFound:
		return http.StatusNotFound
	case results.CodeForbidden:
		return http.StatusForbidden
	case results.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusConflict
	}
}

// writeResult renders one OperationResult. Infrastructure errors become an
// opaque 500; rejections carry their code and reason to the operator UI.
func writeResult(w http.ResponseWriter, logger *slog.Logger, result results.OperationResult, err error) {
	w.Header().Set("Content-Type", "application/json")

	if err != nil {
		logger.Error("Command failed", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(commandResponse{
			OK:    false,
			Error: &results.Rejection{Code: "internal", Reason: "internal error"},
		})
		return
	}

	if rejection, ok := result.Failure.(*results.Rejection); ok {
		w.WriteHeader(statusForRejection(rejection.Code))
		_ = json.NewEncoder(w).Encode(commandResponse{OK: false, Error: rejection})
		return
	}

	_ = json.NewEncoder(w).Encode(commandResponse{OK: true, Data: result.Success})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", slog.Any("error", err))
	}
}

func writeBadRequest(w http.ResponseWriter, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(commandResponse{
		OK:    false,
		Error: &results.Rejection{Code: "bad_request", Reason: reason},
	})
}
