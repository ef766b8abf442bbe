package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/bank"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/observability"
	"github.com/dizimoapp/payments-gateway-go/internal/port"
)

var pixTracer = otel.Tracer("service/pix")

// pixExpirationSeconds is the charge lifetime sent to the provider.
const pixExpirationSeconds = 3600

// PixService creates instant-payment charges and polls their
// settlement status against the BACEN cob API.
type PixService struct {
	router     port.GatewayRouter
	configs    *ConfigService
	tokens     *bank.TokenManager
	transports port.TransportProvider
	exec       *bank.Executor
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewPixService creates the PIX service.
func NewPixService(router port.GatewayRouter, configs *ConfigService, tokens *bank.TokenManager, transports port.TransportProvider, exec *bank.Executor, metrics *observability.Metrics, logger *zap.Logger) *PixService {
	return &PixService{
		router:     router,
		configs:    configs,
		tokens:     tokens,
		transports: transports,
		exec:       exec,
		metrics:    metrics,
		logger:     logger,
	}
}

// cobPayload is the BACEN charge creation body.
type cobPayload struct {
	Calendario struct {
		Expiracao int `json:"expiracao"`
	} `json:"calendario"`
	Devedor struct {
		CPF  string `json:"cpf,omitempty"`
		CNPJ string `json:"cnpj,omitempty"`
		Nome string `json:"nome"`
	} `json:"devedor"`
	Valor struct {
		Original string `json:"original"`
	} `json:"valor"`
	Chave              string `json:"chave"`
	SolicitacaoPagador string `json:"solicitacaoPagador,omitempty"`
}

// cobResponse covers the fields this layer cares about across provider
// deployments; some embed the renderable charge, some only a location.
type cobResponse struct {
	Status        string `json:"status"`
	PixCopiaECola string `json:"pixCopiaECola"`
	Location      string `json:"location"`
	Loc           struct {
		Location string `json:"location"`
	} `json:"loc"`
	Pix []struct {
		EndToEndID string `json:"endToEndId"`
		Valor      string `json:"valor"`
		Horario    string `json:"horario"`
	} `json:"pix"`
}

// CreateCharge creates a PIX charge. The txid is generated locally
// before anything is sent, making the PUT idempotent toward the
// provider.
func (s *PixService) CreateCharge(ctx context.Context, companyID string, req *domain.PixChargeRequest) (*domain.PixCharge, error) {
	ctx, span := pixTracer.Start(ctx, "PixService.CreateCharge")
	defer span.End()
	span.SetAttributes(attribute.Float64("amount", req.Amount))

	if err := validatePixRequest(req); err != nil {
		return nil, err
	}

	session, err := s.openSession(ctx, companyID)
	if err != nil {
		s.metrics.IncrRequest("pix", "error")
		return nil, err
	}

	txid := GenerateTxID()
	span.SetAttributes(attribute.String("txid", txid))

	pixKey := req.PixKey
	if pixKey == "" {
		pixKey = session.cfg.PixKey
	}

	var payload cobPayload
	payload.Calendario.Expiracao = pixExpirationSeconds
	payload.Valor.Original = FormatAmount(req.Amount)
	payload.Chave = pixKey
	payload.SolicitacaoPagador = req.Description
	payload.Devedor.Nome = req.PayerName
	document := DigitsOnly(req.PayerDocument)
	if len(document) == 11 {
		payload.Devedor.CPF = document
	} else {
		payload.Devedor.CNPJ = document
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := session.do(ctx, s.exec, s.tokens, bank.Request{
		CompanyID: companyID,
		Operation: domain.AuditPix,
		Method:    http.MethodPut,
		URL:       session.endpoints.PixURL + "/v2/cob/" + txid,
		Body:      body,
		PaymentID: txid,
	})
	if err != nil {
		s.metrics.IncrRequest("pix", "error")
		return nil, err
	}
	if !resp.OK() {
		s.metrics.IncrRequest("pix", "error")
		s.metrics.IncrProviderError("rejected")
		return nil, bank.Rejection(domain.AuditPix, resp)
	}

	var parsed cobResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		s.metrics.IncrRequest("pix", "error")
		return nil, bank.Rejection(domain.AuditPix, resp)
	}

	charge := &domain.PixCharge{
		TxID:      txid,
		Status:    domain.PixStatusFromWire(parsed.Status),
		Location:  normalizeLocation(firstNonEmpty(parsed.Loc.Location, parsed.Location)),
		CopyPaste: parsed.PixCopiaECola,
	}

	// Some deployments omit the renderable charge from the creation
	// response; fetch it from the location resource, and fall back to
	// the location URL itself when everything else fails.
	if charge.CopyPaste == "" && charge.Location != "" {
		charge.CopyPaste, charge.QRCodeImage = s.fetchRenderable(ctx, session, companyID, txid, charge.Location)
		if charge.CopyPaste == "" {
			charge.CopyPaste = charge.Location
		}
	}

	s.metrics.IncrRequest("pix", "success")
	s.logger.Info("pix charge created",
		zap.String("company_id", companyID),
		zap.String("txid", txid),
		zap.String("amount", payload.Valor.Original),
	)
	return charge, nil
}

// fetchRenderable GETs the location resource for the copy-paste code
// and QR image. Different deployments answer JSON or plain text; both
// are tolerated and any failure is non-fatal.
func (s *PixService) fetchRenderable(ctx context.Context, session *gatewaySession, companyID, txid, location string) (copyPaste, qrImage string) {
	resp, err := session.do(ctx, s.exec, s.tokens, bank.Request{
		CompanyID: companyID,
		Operation: domain.AuditPix,
		Method:    http.MethodGet,
		URL:       location,
		PaymentID: txid,
	})
	if err != nil || !resp.OK() {
		s.logger.Warn("could not fetch renderable charge from location",
			zap.String("txid", txid),
			zap.Error(err),
		)
		return "", ""
	}

	var parsed struct {
		PixCopiaECola string `json:"pixCopiaECola"`
		QRCode        string `json:"qrcode"`
		ImagemQrcode  string `json:"imagemQrcode"`
	}
	if err := json.Unmarshal(resp.Body, &parsed); err == nil {
		return firstNonEmpty(parsed.PixCopiaECola, parsed.QRCode), parsed.ImagemQrcode
	}

	// Plain-text deployments answer the copy-paste code directly.
	text := strings.TrimSpace(string(resp.Body))
	return text, ""
}

// QueryCharge polls the settlement status of a charge. Any failure
// other than a configuration error degrades to a synthetic pending result instead
// of propagating, so a polling caller never crashes on a transient
// outage. The Degraded flag and a counter keep the downgrade visible
// to operators.
func (s *PixService) QueryCharge(ctx context.Context, companyID, txid string) (*domain.PixQueryResult, error) {
	ctx, span := pixTracer.Start(ctx, "PixService.QueryCharge")
	defer span.End()
	span.SetAttributes(attribute.String("txid", txid))

	if txid == "" {
		return nil, &domain.ErrValidation{Field: "txid", Message: "required"}
	}

	session, err := s.openSession(ctx, companyID)
	if err != nil {
		if isConfigurationError(err) {
			return nil, err
		}
		return s.degrade(txid), nil
	}

	resp, err := session.do(ctx, s.exec, s.tokens, bank.Request{
		CompanyID: companyID,
		Operation: domain.AuditConsulta,
		Method:    http.MethodGet,
		URL:       session.endpoints.PixURL + "/v2/cob/" + txid,
		PaymentID: txid,
	})
	if err != nil || !resp.OK() {
		return s.degrade(txid), nil
	}

	var parsed cobResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return s.degrade(txid), nil
	}

	result := &domain.PixQueryResult{
		TxID:   txid,
		Status: domain.PixStatusFromWire(parsed.Status),
	}
	if len(parsed.Pix) > 0 {
		settlement := parsed.Pix[0]
		result.EndToEndID = settlement.EndToEndID
		if amount, err := strconv.ParseFloat(settlement.Valor, 64); err == nil {
			result.PaidAmount = amount
		}
		if paidAt, err := time.Parse(time.RFC3339, settlement.Horario); err == nil {
			result.PaidAt = &paidAt
		}
	}
	return result, nil
}

func (s *PixService) degrade(txid string) *domain.PixQueryResult {
	s.metrics.IncrDegradedQuery("pix")
	s.logger.Warn("pix status query degraded to pending", zap.String("txid", txid))
	return &domain.PixQueryResult{TxID: txid, Status: domain.PixActive, Degraded: true}
}

func validatePixRequest(req *domain.PixChargeRequest) error {
	if req.Amount <= 0 {
		return &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}
	if req.PayerName == "" {
		return &domain.ErrValidation{Field: "payer_name", Message: "required"}
	}
	document := DigitsOnly(req.PayerDocument)
	if len(document) != 11 && len(document) != 14 {
		return &domain.ErrValidation{Field: "payer_document", Message: "must be a CPF or CNPJ"}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizeLocation prepends the scheme BACEN location payloads omit.
func normalizeLocation(location string) string {
	if location == "" || strings.Contains(location, "://") {
		return location
	}
	return "https://" + location
}
