// Package postgres implements the storage-facing ports on a pgx
// connection pool: the gateway configuration table owned by the
// dashboard, and the audit trail of every outbound provider call.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
)

// Connect creates a pgx connection pool.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 5

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Store reads gateway configuration and writes audit entries.
type Store struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewStore creates a store over an established pool.
func NewStore(pool *pgxpool.Pool, logger *zap.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

// FindConfiguration returns the configuration row for (company,
// gateway) or (nil, nil) when none exists. Active rows win when the
// table holds more than one row for the pair.
func (s *Store) FindConfiguration(ctx context.Context, companyID, gateway string) (*domain.GatewayConfig, error) {
	row := s.pool.QueryRow(ctx, `
SELECT gateway, ambiente, client_id, client_secret, certificado, senha_certificado, chave_pix, ativo
FROM configuracoes_gateway
WHERE company_id = $1 AND gateway = $2
ORDER BY ativo DESC
LIMIT 1
`, companyID, gateway)

	cfg := domain.GatewayConfig{CompanyID: companyID}
	var ambiente string
	err := row.Scan(&cfg.Gateway, &ambiente, &cfg.ClientID, &cfg.ClientSecret,
		&cfg.Certificate, &cfg.CertificatePassword, &cfg.PixKey, &cfg.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cfg.Environment = domain.Environment(ambiente)
	return &cfg, nil
}

// FindActiveProvider returns the gateway name of the single active row
// for the tenant, or "" when none. Storage is expected to keep at most
// one active row; if it ever holds two, the first one wins.
func (s *Store) FindActiveProvider(ctx context.Context, companyID string) (string, error) {
	row := s.pool.QueryRow(ctx, `
SELECT gateway
FROM configuracoes_gateway
WHERE company_id = $1 AND ativo = true
ORDER BY gateway
LIMIT 1
`, companyID)

	var gateway string
	err := row.Scan(&gateway)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return gateway, nil
}

// auditTimeout bounds audit writes so a slow database never stalls a
// payment call.
const auditTimeout = 2 * time.Second

// LogRequest records an outbound request. Fire-and-forget: failures
// are logged and swallowed, and the write survives cancellation of the
// payment context.
func (s *Store) LogRequest(ctx context.Context, req domain.AuditRequest) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
INSERT INTO logs_gateway (id, company_id, direcao, tipo_operacao, metodo, endpoint, payment_id, request_body, criado_em)
VALUES ($1, $2, 'request', $3, $4, $5, NULLIF($6, ''), $7, now())
`, uuid.New().String(), req.CompanyID, string(req.Operation), req.Method, req.Endpoint, req.PaymentID, req.RequestBody)
	if err != nil {
		s.logger.Error("failed to write audit request entry",
			zap.String("operation", string(req.Operation)),
			zap.String("endpoint", req.Endpoint),
			zap.Error(err),
		)
	}
}

// LogResponse records the outcome of an outbound request. Same
// fire-and-forget discipline as LogRequest.
func (s *Store) LogResponse(ctx context.Context, resp domain.AuditResponse) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
INSERT INTO logs_gateway (id, company_id, direcao, tipo_operacao, metodo, endpoint, payment_id, status_code, response_body, error_message, criado_em)
VALUES ($1, $2, 'response', $3, $4, $5, NULLIF($6, ''), NULLIF($7, 0), $8, NULLIF($9, ''), now())
`, uuid.New().String(), resp.CompanyID, string(resp.Operation), resp.Method, resp.Endpoint,
		resp.PaymentID, resp.StatusCode, resp.ResponseBody, resp.ErrorMessage)
	if err != nil {
		s.logger.Error("failed to write audit response entry",
			zap.String("operation", string(resp.Operation)),
			zap.String("endpoint", resp.Endpoint),
			zap.Error(err),
		)
	}
}
