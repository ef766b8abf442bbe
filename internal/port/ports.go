// Package port defines the interfaces between layers: storage and
// audit-log collaborators consumed by the core, and the payment
// services consumed by the HTTP handlers.
package port

import (
	"context"
	"net/http"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
)

// TransportProvider hands out HTTP clients that present a
// configuration's client certificate during the TLS handshake.
type TransportProvider interface {
	ClientFor(cfg *domain.GatewayConfig) (*http.Client, error)
}

// GatewayConfigStore reads provider configuration from persistent
// storage. FindConfiguration returns (nil, nil) when no row exists for
// the pair; the caller decides how absence and inactivity map onto the
// error taxonomy.
type GatewayConfigStore interface {
	FindConfiguration(ctx context.Context, companyID, gateway string) (*domain.GatewayConfig, error)
	// FindActiveProvider returns the gateway name of the single active
	// row for the tenant, or "" when none is active.
	FindActiveProvider(ctx context.Context, companyID string) (string, error)
}

// AuditLogger records every outbound request/response pair. Calls are
// fire-and-forget: implementations must never fail the payment flow.
// Bodies arrive already redacted.
type AuditLogger interface {
	LogRequest(ctx context.Context, req domain.AuditRequest)
	LogResponse(ctx context.Context, resp domain.AuditResponse)
}

// PixPayments is the instant-payment surface exposed to handlers.
type PixPayments interface {
	CreateCharge(ctx context.Context, companyID string, req *domain.PixChargeRequest) (*domain.PixCharge, error)
	QueryCharge(ctx context.Context, companyID, txid string) (*domain.PixQueryResult, error)
}

// BoletoPayments is the registered-slip surface exposed to handlers.
type BoletoPayments interface {
	Register(ctx context.Context, companyID string, req *domain.BoletoRequest) (*domain.Boleto, error)
	Query(ctx context.Context, companyID, nossoNumero string) (*domain.BoletoQueryResult, error)
}

// GatewayRouter resolves which provider is currently active.
type GatewayRouter interface {
	ActiveGateway(ctx context.Context, companyID string) (string, error)
}
