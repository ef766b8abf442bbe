// Package service provides the business logic layer: configuration
// resolution, gateway routing and the PIX/boleto payment operations.
package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/cache"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/observability"
	"github.com/dizimoapp/payments-gateway-go/internal/port"
)

var configTracer = otel.Tracer("service/config")

// ConfigService resolves a gateway's credential set, memoizing it for
// a bounded time so payment operations skip the storage round-trip.
// Entries expire by TTL only; staleness inside the window is accepted.
type ConfigService struct {
	store   port.GatewayConfigStore
	cache   *cache.InMemory[*domain.GatewayConfig]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewConfigService creates the configuration cache over the store.
func NewConfigService(store port.GatewayConfigStore, ttl time.Duration, metrics *observability.Metrics, logger *zap.Logger) *ConfigService {
	return &ConfigService{
		store:   store,
		cache:   cache.New[*domain.GatewayConfig](ttl),
		metrics: metrics,
		logger:  logger,
	}
}

// Get returns the gateway configuration for the tenant. Absent rows,
// disabled rows and rows missing credentials each map onto their own
// error kind; all of them need an operator fix, not a retry. Only
// complete, active configurations are cached.
func (s *ConfigService) Get(ctx context.Context, companyID, gateway string) (*domain.GatewayConfig, error) {
	ctx, span := configTracer.Start(ctx, "ConfigService.Get")
	defer span.End()
	span.SetAttributes(attribute.String("gateway", gateway))

	key := companyID + "/" + gateway
	if cfg, ok := s.cache.Get(key); ok {
		s.metrics.IncrCacheHit("config")
		return cfg, nil
	}
	s.metrics.IncrCacheMiss("config")

	cfg, err := s.store.FindConfiguration(ctx, companyID, gateway)
	if err != nil {
		s.logger.Error("failed to load gateway configuration",
			zap.String("company_id", companyID),
			zap.String("gateway", gateway),
			zap.Error(err),
		)
		return nil, err
	}
	if cfg == nil {
		return nil, &domain.ErrNotConfigured{Gateway: gateway}
	}
	if !cfg.Active {
		return nil, &domain.ErrGatewayDisabled{Gateway: gateway}
	}
	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		s.logger.Warn("gateway configuration incomplete",
			zap.String("company_id", companyID),
			zap.String("gateway", gateway),
			zap.Strings("missing", missing),
		)
		return nil, &domain.ErrIncompleteCredentials{Gateway: gateway, Fields: missing}
	}

	s.cache.Set(key, cfg)
	return cfg, nil
}
