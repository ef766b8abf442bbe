package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
	"github.com/dizimoapp/payments-gateway-go/internal/port"
)

var routerTracer = otel.Tracer("service/router")

// RouterService decides which provider collects for the tenant.
// Storage is expected to keep exactly one active row; ties are not
// arbitrated here.
type RouterService struct {
	store  port.GatewayConfigStore
	logger *zap.Logger
}

// NewRouterService creates the gateway router.
func NewRouterService(store port.GatewayConfigStore, logger *zap.Logger) *RouterService {
	return &RouterService{store: store, logger: logger}
}

// ActiveGateway returns the active provider name. No active row means
// the tenant has not enabled collection; an active row naming a
// provider this core does not implement (cards are handled elsewhere)
// is rejected explicitly.
func (s *RouterService) ActiveGateway(ctx context.Context, companyID string) (string, error) {
	ctx, span := routerTracer.Start(ctx, "RouterService.ActiveGateway")
	defer span.End()

	gateway, err := s.store.FindActiveProvider(ctx, companyID)
	if err != nil {
		s.logger.Error("failed to resolve active gateway",
			zap.String("company_id", companyID),
			zap.Error(err),
		)
		return "", err
	}
	if gateway == "" {
		return "", &domain.ErrNoActiveGateway{}
	}
	if gateway != domain.GatewayInter {
		s.logger.Warn("active gateway not supported by this service",
			zap.String("company_id", companyID),
			zap.String("gateway", gateway),
		)
		return "", &domain.ErrUnsupportedGateway{Gateway: gateway}
	}
	return gateway, nil
}
