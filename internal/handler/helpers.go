package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var validation *domain.ErrValidation
	var notConfigured *domain.ErrNotConfigured
	var disabled *domain.ErrGatewayDisabled
	var incomplete *domain.ErrIncompleteCredentials
	var noActive *domain.ErrNoActiveGateway
	var unsupported *domain.ErrUnsupportedGateway
	var rejected *domain.ErrProviderRejected
	var authFailed *domain.ErrAuthenticationFailed
	var timeout *domain.ErrTimeout
	var transport *domain.ErrTransport

	switch {
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &notConfigured):
		logger.Warn("gateway not configured", zap.String("error", err.Error()))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &disabled):
		logger.Warn("gateway disabled", zap.String("error", err.Error()))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &incomplete):
		logger.Warn("incomplete credentials", zap.Strings("missing", incomplete.Fields))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &noActive):
		logger.Warn("no active gateway", zap.String("error", err.Error()))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &unsupported):
		logger.Warn("unsupported gateway", zap.String("gateway", unsupported.Gateway))
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &rejected):
		logger.Warn("provider rejected request",
			zap.String("operation", rejected.Operation),
			zap.Int("status_code", rejected.StatusCode),
		)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &authFailed):
		logger.Error("bank authentication failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &timeout):
		logger.Error("provider timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.As(err, &transport):
		logger.Error("provider unreachable", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
