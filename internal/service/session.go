package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/bank"
	"github.com/dizimoapp/payments-gateway-go/internal/port"
)

// gatewaySession bundles everything a single payment operation needs:
// the resolved configuration, the environment endpoints, the
// certificate-bearing client and a live bearer token.
type gatewaySession struct {
	cfg       *domain.GatewayConfig
	endpoints bank.Endpoints
	client    *http.Client
	token     string
}

func (s *gatewaySession) jsonHeaders() http.Header {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.token)
	header.Set("Content-Type", "application/json")
	header.Set("Accept", "application/json")
	return header
}

// openGatewaySession walks the full chain: active provider →
// configuration → endpoints → mTLS client → bearer token. Each step's
// failure keeps its own error kind.
func openGatewaySession(ctx context.Context, companyID string, router port.GatewayRouter, configs *ConfigService, tokens *bank.TokenManager, transports port.TransportProvider) (*gatewaySession, error) {
	gateway, err := router.ActiveGateway(ctx, companyID)
	if err != nil {
		return nil, err
	}

	cfg, err := configs.Get(ctx, companyID, gateway)
	if err != nil {
		return nil, err
	}

	endpoints, err := bank.ResolveEndpoints(cfg.Environment)
	if err != nil {
		return nil, &domain.ErrIncompleteCredentials{Gateway: gateway, Fields: []string{"ambiente"}}
	}

	client, err := transports.ClientFor(cfg)
	if err != nil {
		return nil, &domain.ErrAuthenticationFailed{Gateway: gateway}
	}

	token, err := tokens.Token(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &gatewaySession{
		cfg:       cfg,
		endpoints: endpoints,
		client:    client,
		token:     token,
	}, nil
}

// do executes an authorized provider call. A 401 means the provider
// revoked the token before the cache expired it; the session drops the
// cached token and retries once with a fresh one before giving up.
func (s *gatewaySession) do(ctx context.Context, exec *bank.Executor, tokens *bank.TokenManager, req bank.Request) (*bank.Response, error) {
	req.Header = s.jsonHeaders()
	resp, err := exec.Do(ctx, s.client, req)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	tokens.Invalidate(s.cfg)
	fresh, err := tokens.Token(ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	s.token = fresh

	req.Header = s.jsonHeaders()
	return exec.Do(ctx, s.client, req)
}

func (s *PixService) openSession(ctx context.Context, companyID string) (*gatewaySession, error) {
	return openGatewaySession(ctx, companyID, s.router, s.configs, s.tokens, s.transports)
}

func (s *BoletoService) openSession(ctx context.Context, companyID string) (*gatewaySession, error) {
	return openGatewaySession(ctx, companyID, s.router, s.configs, s.tokens, s.transports)
}

// isConfigurationError reports whether the error needs an operator fix
// (configuration or routing). These propagate even from status
// queries, where everything else degrades to a pending result.
func isConfigurationError(err error) bool {
	var notConfigured *domain.ErrNotConfigured
	var disabled *domain.ErrGatewayDisabled
	var incomplete *domain.ErrIncompleteCredentials
	var noActive *domain.ErrNoActiveGateway
	var unsupported *domain.ErrUnsupportedGateway
	return errors.As(err, &notConfigured) ||
		errors.As(err, &disabled) ||
		errors.As(err, &incomplete) ||
		errors.As(err, &noActive) ||
		errors.As(err, &unsupported)
}
