package service

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/bank"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/observability"
	"github.com/dizimoapp/payments-gateway-go/internal/port"
)

var boletoTracer = otel.Tracer("service/boleto")

// boletoDueDays is the registration-to-due-date window, calendar days.
const boletoDueDays = 7

// BoletoService registers bank slips and polls their settlement
// status.
type BoletoService struct {
	router     port.GatewayRouter
	configs    *ConfigService
	tokens     *bank.TokenManager
	transports port.TransportProvider
	exec       *bank.Executor
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewBoletoService creates the boleto service.
func NewBoletoService(router port.GatewayRouter, configs *ConfigService, tokens *bank.TokenManager, transports port.TransportProvider, exec *bank.Executor, metrics *observability.Metrics, logger *zap.Logger) *BoletoService {
	return &BoletoService{
		router:     router,
		configs:    configs,
		tokens:     tokens,
		transports: transports,
		exec:       exec,
		metrics:    metrics,
		logger:     logger,
	}
}

// boletoPayload is the provider's slip registration body. Amounts
// travel as integer centavos.
type boletoPayload struct {
	NossoNumero    string `json:"nossoNumero"`
	ValorCentavos  int64  `json:"valorCentavos"`
	DataVencimento string `json:"dataVencimento"`
	Pagador        struct {
		Nome       string `json:"nome"`
		Documento  string `json:"documento"`
		Logradouro string `json:"logradouro"`
		Bairro     string `json:"bairro"`
		Cidade     string `json:"cidade"`
		UF         string `json:"uf"`
		CEP        string `json:"cep"`
	} `json:"pagador"`
}

type boletoResponse struct {
	NossoNumero    string `json:"nossoNumero"`
	LinhaDigitavel string `json:"linhaDigitavel"`
	CodigoBarras   string `json:"codigoBarras"`
	URL            string `json:"url"`
}

type boletoStatusResponse struct {
	Situacao      string  `json:"situacao"`
	ValorPago     float64 `json:"valorPago"`
	DataPagamento string  `json:"dataPagamento"`
}

// Register registers a slip due 7 calendar days from issuance. The
// nossoNumero is generated locally and doubles as the idempotency key.
func (s *BoletoService) Register(ctx context.Context, companyID string, req *domain.BoletoRequest) (*domain.Boleto, error) {
	ctx, span := boletoTracer.Start(ctx, "BoletoService.Register")
	defer span.End()
	span.SetAttributes(attribute.Float64("amount", req.Amount))

	if err := validateBoletoRequest(req); err != nil {
		return nil, err
	}

	session, err := s.openSession(ctx, companyID)
	if err != nil {
		s.metrics.IncrRequest("boleto", "error")
		return nil, err
	}

	nossoNumero := GenerateNossoNumero()
	span.SetAttributes(attribute.String("nosso_numero", nossoNumero))

	dueDate := time.Now().AddDate(0, 0, boletoDueDays).Format("2006-01-02")

	var payload boletoPayload
	payload.NossoNumero = nossoNumero
	payload.ValorCentavos = int64(math.Round(req.Amount * 100))
	payload.DataVencimento = dueDate
	payload.Pagador.Nome = req.PayerName
	payload.Pagador.Documento = DigitsOnly(req.PayerDocument)
	payload.Pagador.Logradouro = req.Address.Street
	payload.Pagador.Bairro = req.Address.District
	payload.Pagador.Cidade = req.Address.City
	payload.Pagador.UF = req.Address.State
	payload.Pagador.CEP = DigitsOnly(req.Address.ZIP)

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	resp, err := session.do(ctx, s.exec, s.tokens, bank.Request{
		CompanyID: companyID,
		Operation: domain.AuditBoleto,
		Method:    http.MethodPost,
		URL:       session.endpoints.APIURL + "/v1/boleto/registrar",
		Body:      body,
		PaymentID: nossoNumero,
	})
	if err != nil {
		s.metrics.IncrRequest("boleto", "error")
		return nil, err
	}
	if !resp.OK() {
		s.metrics.IncrRequest("boleto", "error")
		s.metrics.IncrProviderError("rejected")
		return nil, bank.Rejection(domain.AuditBoleto, resp)
	}

	var parsed boletoResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		s.metrics.IncrRequest("boleto", "error")
		return nil, bank.Rejection(domain.AuditBoleto, resp)
	}

	boleto := &domain.Boleto{
		NossoNumero:   firstNonEmpty(parsed.NossoNumero, nossoNumero),
		DigitableLine: parsed.LinhaDigitavel,
		Barcode:       parsed.CodigoBarras,
		URL:           parsed.URL,
		DueDate:       dueDate,
	}

	s.metrics.IncrRequest("boleto", "success")
	s.logger.Info("boleto registered",
		zap.String("company_id", companyID),
		zap.String("nosso_numero", boleto.NossoNumero),
		zap.Int64("amount_cents", payload.ValorCentavos),
		zap.String("due_date", dueDate),
	)
	return boleto, nil
}

// Query polls the settlement status of a slip. Same degrade-to-pending
// policy as the PIX query: only configuration errors propagate.
func (s *BoletoService) Query(ctx context.Context, companyID, nossoNumero string) (*domain.BoletoQueryResult, error) {
	ctx, span := boletoTracer.Start(ctx, "BoletoService.Query")
	defer span.End()
	span.SetAttributes(attribute.String("nosso_numero", nossoNumero))

	if nossoNumero == "" {
		return nil, &domain.ErrValidation{Field: "nosso_numero", Message: "required"}
	}

	session, err := s.openSession(ctx, companyID)
	if err != nil {
		if isConfigurationError(err) {
			return nil, err
		}
		return s.degrade(nossoNumero), nil
	}

	resp, err := session.do(ctx, s.exec, s.tokens, bank.Request{
		CompanyID: companyID,
		Operation: domain.AuditConsulta,
		Method:    http.MethodGet,
		URL:       session.endpoints.APIURL + "/v1/boleto/consultar/" + nossoNumero,
		PaymentID: nossoNumero,
	})
	if err != nil || !resp.OK() {
		return s.degrade(nossoNumero), nil
	}

	var parsed boletoStatusResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return s.degrade(nossoNumero), nil
	}

	result := &domain.BoletoQueryResult{
		NossoNumero: nossoNumero,
		Status:      domain.BoletoStatusFromWire(parsed.Situacao),
		PaidAmount:  parsed.ValorPago,
	}
	if parsed.DataPagamento != "" {
		if paidAt, err := time.Parse("2006-01-02", parsed.DataPagamento); err == nil {
			result.PaidAt = &paidAt
		}
	}
	return result, nil
}

func (s *BoletoService) degrade(nossoNumero string) *domain.BoletoQueryResult {
	s.metrics.IncrDegradedQuery("boleto")
	s.logger.Warn("boleto status query degraded to pending", zap.String("nosso_numero", nossoNumero))
	return &domain.BoletoQueryResult{NossoNumero: nossoNumero, Status: domain.BoletoOpen, Degraded: true}
}

func validateBoletoRequest(req *domain.BoletoRequest) error {
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
	if req.Address.Street == "" || req.Address.City == "" || req.Address.State == "" {
		return &domain.ErrValidation{Field: "address", Message: "street, city and state are required"}
	}
	if len(DigitsOnly(req.Address.ZIP)) != 8 {
		return &domain.ErrValidation{Field: "address.zip", Message: "must be an 8-digit CEP"}
	}
	return nil
}
