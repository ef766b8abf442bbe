package bank

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/observability"
	"github.com/dizimoapp/payments-gateway-go/internal/port"
)

// tokenScopes requested on the client-credentials grant; covers PIX
// charge management and boleto registration/query.
const tokenScopes = "cob.write cob.read pix.read boleto-cobranca.write boleto-cobranca.read"

type oauthToken struct {
	accessToken string
	expiresAt   time.Time
}

func (t oauthToken) valid(now time.Time) bool {
	return t.accessToken != "" && now.Before(t.expiresAt)
}

// TokenManager obtains and caches OAuth2 bearer tokens via the
// client-credentials grant over the mutual-TLS transport. Concurrent
// callers that observe a missing or expired token coalesce into a
// single authentication round-trip.
type TokenManager struct {
	transports port.TransportProvider
	exec       *Executor
	metrics    *observability.Metrics
	logger     *zap.Logger
	// margin is subtracted from the server-declared lifetime so token
	// usage never races actual server-side expiry.
	margin time.Duration

	mu     sync.Mutex
	tokens map[string]oauthToken
	group  singleflight.Group
}

// NewTokenManager creates a token manager. margin defaults to one
// minute when zero.
func NewTokenManager(transports port.TransportProvider, exec *Executor, metrics *observability.Metrics, logger *zap.Logger, margin time.Duration) *TokenManager {
	if margin <= 0 {
		margin = time.Minute
	}
	return &TokenManager{
		transports: transports,
		exec:       exec,
		metrics:    metrics,
		logger:     logger,
		margin:     margin,
		tokens:     make(map[string]oauthToken),
	}
}

// tokenKey scopes a cached token to the exact configuration that
// earned it. The environment and a credential digest are part of the
// key so a tier switch or credential rotation inside the validity
// window never reuses the old token.
func tokenKey(cfg *domain.GatewayConfig) string {
	sum := sha256.Sum256([]byte(cfg.ClientID + "\x00" + cfg.ClientSecret + "\x00" + cfg.Certificate))
	return cfg.CompanyID + "/" + cfg.Gateway + "/" + string(cfg.Environment) + "/" + hex.EncodeToString(sum[:8])
}

// Token returns a valid bearer token for the configuration, reusing
// the cached one while it lives and refreshing transparently
// otherwise. A failed refresh is fatal for this call only; the next
// payment attempt triggers a fresh one.
func (m *TokenManager) Token(ctx context.Context, cfg *domain.GatewayConfig) (string, error) {
	key := tokenKey(cfg)

	m.mu.Lock()
	cached, ok := m.tokens[key]
	m.mu.Unlock()
	if ok && cached.valid(time.Now()) {
		m.metrics.IncrCacheHit("token")
		return cached.accessToken, nil
	}
	m.metrics.IncrCacheMiss("token")

	result, err, _ := m.group.Do(key, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have just
		// refreshed.
		m.mu.Lock()
		current, ok := m.tokens[key]
		m.mu.Unlock()
		if ok && current.valid(time.Now()) {
			return current.accessToken, nil
		}

		// The refresh serves every coalesced waiter, so it runs
		// detached from the initiating request's cancellation. The
		// executor still enforces its hard deadline.
		token, err := m.authenticate(context.WithoutCancel(ctx), cfg)
		if err != nil {
			return "", err
		}

		m.mu.Lock()
		m.tokens[key] = token
		m.mu.Unlock()
		return token.accessToken, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// authenticate performs the client-credentials round-trip. The sandbox
// tier expects client id/secret as form fields; production and staging
// want HTTP Basic auth with credentials omitted from the body. The
// partner varies this by environment, so both modes are kept.
func (m *TokenManager) authenticate(ctx context.Context, cfg *domain.GatewayConfig) (oauthToken, error) {
	endpoints, err := ResolveEndpoints(cfg.Environment)
	if err != nil {
		return oauthToken{}, &domain.ErrIncompleteCredentials{Gateway: cfg.Gateway, Fields: []string{"ambiente"}}
	}

	client, err := m.transports.ClientFor(cfg)
	if err != nil {
		m.logger.Error("failed to build mTLS transport",
			zap.String("gateway", cfg.Gateway),
			zap.String("company_id", cfg.CompanyID),
			zap.Error(err),
		)
		return oauthToken{}, &domain.ErrAuthenticationFailed{Gateway: cfg.Gateway}
	}

	header, body := buildAuthRequest(cfg)

	resp, err := m.exec.Do(ctx, client, Request{
		CompanyID: cfg.CompanyID,
		Operation: domain.AuditToken,
		Method:    http.MethodPost,
		URL:       endpoints.AuthURL,
		Header:    header,
		Body:      body,
	})
	if err != nil {
		return oauthToken{}, err
	}

	if !resp.OK() {
		// Detail stays in the audit log; callers get a stable,
		// credential-agnostic error.
		m.metrics.IncrProviderError("auth")
		m.logger.Warn("authentication rejected by provider",
			zap.String("gateway", cfg.Gateway),
			zap.String("company_id", cfg.CompanyID),
			zap.Int("status", resp.StatusCode),
		)
		return oauthToken{}, &domain.ErrAuthenticationFailed{Gateway: cfg.Gateway}
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(resp.Body, &parsed); err != nil || parsed.AccessToken == "" {
		m.logger.Warn("malformed token response",
			zap.String("gateway", cfg.Gateway),
			zap.Int("status", resp.StatusCode),
		)
		return oauthToken{}, &domain.ErrAuthenticationFailed{Gateway: cfg.Gateway}
	}

	lifetime := time.Duration(parsed.ExpiresIn) * time.Second
	expiresAt := time.Now().Add(lifetime - m.margin)

	m.metrics.IncrTokenRefresh()
	m.logger.Info("token refreshed",
		zap.String("gateway", cfg.Gateway),
		zap.String("company_id", cfg.CompanyID),
		zap.Duration("lifetime", lifetime),
	)

	return oauthToken{accessToken: parsed.AccessToken, expiresAt: expiresAt}, nil
}

// buildAuthRequest assembles the grant form and headers. The sandbox
// tier wants credentials in the body; production and staging take them
// via HTTP Basic auth and must not see them in the form.
func buildAuthRequest(cfg *domain.GatewayConfig) (http.Header, []byte) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", tokenScopes)

	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")

	if cfg.Environment == domain.EnvSandbox {
		form.Set("client_id", cfg.ClientID)
		form.Set("client_secret", cfg.ClientSecret)
	} else {
		header.Set("Authorization", "Basic "+basicAuth(cfg.ClientID, cfg.ClientSecret))
	}
	return header, []byte(form.Encode())
}

func basicAuth(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
}

// Invalidate drops the cached token so the next call authenticates
// again. Used when a data call answers 401 on a token the cache still
// considered live.
func (m *TokenManager) Invalidate(cfg *domain.GatewayConfig) {
	m.mu.Lock()
	delete(m.tokens, tokenKey(cfg))
	m.mu.Unlock()
}
