package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
	"github.com/dizimoapp/payments-gateway-go/internal/port"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// resolveCompanyID picks the tenant for the request: the JWT claim when
// the auth middleware ran, the X-Company-Id header otherwise, and the
// server-wide default as a last resort (single-tenant deployments).
func resolveCompanyID(r *http.Request, fallback string) string {
	if id := CompanyIDFromContext(r.Context()); id != "" {
		return id
	}
	if id := r.Header.Get("X-Company-Id"); id != "" {
		return id
	}
	return fallback
}

// ============================================================
// PIX — create charge + query settlement state
// ============================================================

func pixCreateHandler(pixSvc port.PixPayments, defaultCompany string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/pix/cobrancas")
		defer span.End()

		var req domain.PixChargeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		charge, err := pixSvc.CreateCharge(ctx, resolveCompanyID(r, defaultCompany), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, charge)
	}
}

func pixQueryHandler(pixSvc port.PixPayments, defaultCompany string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/pix/cobrancas/{txid}")
		defer span.End()

		txid := chi.URLParam(r, "txid")
		if txid == "" {
			writeError(w, http.StatusBadRequest, "txid é obrigatório")
			return
		}

		result, err := pixSvc.QueryCharge(ctx, resolveCompanyID(r, defaultCompany), txid)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// ============================================================
// Boleto — register slip + query settlement state
// ============================================================

func boletoRegisterHandler(boletoSvc port.BoletoPayments, defaultCompany string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/boletos")
		defer span.End()

		var req domain.BoletoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		boleto, err := boletoSvc.Register(ctx, resolveCompanyID(r, defaultCompany), &req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, boleto)
	}
}

func boletoQueryHandler(boletoSvc port.BoletoPayments, defaultCompany string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/boletos/{nossoNumero}")
		defer span.End()

		nossoNumero := chi.URLParam(r, "nossoNumero")
		if nossoNumero == "" {
			writeError(w, http.StatusBadRequest, "nossoNumero é obrigatório")
			return
		}

		result, err := boletoSvc.Query(ctx, resolveCompanyID(r, defaultCompany), nossoNumero)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// ============================================================
// Gateway routing
// ============================================================

func activeGatewayHandler(routerSvc port.GatewayRouter, defaultCompany string, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/gateway")
		defer span.End()

		gateway, err := routerSvc.ActiveGateway(ctx, resolveCompanyID(r, defaultCompany))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"gateway": gateway})
	}
}
