package handler

import (
	"net/http"
	"time"

	"github.com/dizimoapp/payments-gateway-go/internal/infra/observability"
	"github.com/dizimoapp/payments-gateway-go/internal/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	Pix            port.PixPayments
	Boleto         port.BoletoPayments
	Router         port.GatewayRouter
	Store          port.GatewayConfigStore
	Metrics        *observability.Metrics
	JWTSecret      string
	DefaultCompany string
	Logger         *zap.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(deps.Logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(deps.Store, deps.Logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		// An empty secret disables authentication. Handlers then fall
		// back to the X-Company-Id header or the configured default
		// tenant, which is how local development runs.
		if deps.JWTSecret != "" {
			r.Use(JWTAuthMiddleware([]byte(deps.JWTSecret), deps.Logger))
		}

		r.Post("/pix/cobrancas", pixCreateHandler(deps.Pix, deps.DefaultCompany, deps.Logger))
		r.Get("/pix/cobrancas/{txid}", pixQueryHandler(deps.Pix, deps.DefaultCompany, deps.Logger))

		r.Post("/boletos", boletoRegisterHandler(deps.Boleto, deps.DefaultCompany, deps.Logger))
		r.Get("/boletos/{nossoNumero}", boletoQueryHandler(deps.Boleto, deps.DefaultCompany, deps.Logger))

		r.Get("/gateway", activeGatewayHandler(deps.Router, deps.DefaultCompany, deps.Logger))

		r.Get("/metrics/gateway", gatewayMetricsHandler(deps.Metrics))
	})

	return r
}

// ============================================================
// Health & metrics
// ============================================================

type serviceHealth struct {
	Name      string `json:"name"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
}

type healthStatus struct {
	Status   string          `json:"status"`
	Services []serviceHealth `json:"services"`
}

func healthzHandler(store port.GatewayConfigStore, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		services := []serviceHealth{
			{Name: "payments-gateway", Status: "healthy"},
		}

		if store != nil {
			start := time.Now()
			_, err := store.FindActiveProvider(ctx, "health-check")
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				status = "degraded"
			}
			services = append(services, serviceHealth{
				Name: "postgres", Status: status, LatencyMs: latency,
			})
		}

		overall := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, healthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func gatewayMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetSnapshot())
	}
}
