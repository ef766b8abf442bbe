package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
	"github.com/dizimoapp/payments-gateway-go/internal/handler"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/observability"
)

// --- Mocks ---

type mockPix struct {
	charge    *domain.PixCharge
	query     *domain.PixQueryResult
	err       error
	companyID string
}

func (m *mockPix) CreateCharge(_ context.Context, companyID string, _ *domain.PixChargeRequest) (*domain.PixCharge, error) {
	m.companyID = companyID
	return m.charge, m.err
}

func (m *mockPix) QueryCharge(_ context.Context, companyID, _ string) (*domain.PixQueryResult, error) {
	m.companyID = companyID
	return m.query, m.err
}

type mockBoleto struct {
	boleto *domain.Boleto
	query  *domain.BoletoQueryResult
	err    error
}

func (m *mockBoleto) Register(_ context.Context, _ string, _ *domain.BoletoRequest) (*domain.Boleto, error) {
	return m.boleto, m.err
}

func (m *mockBoleto) Query(_ context.Context, _, _ string) (*domain.BoletoQueryResult, error) {
	return m.query, m.err
}

type mockRouter struct {
	gateway string
	err     error
}

func (m *mockRouter) ActiveGateway(_ context.Context, _ string) (string, error) {
	return m.gateway, m.err
}

func newTestRouter(deps handler.Deps) http.Handler {
	if deps.Metrics == nil {
		deps.Metrics = observability.NewMetrics()
	}
	deps.Logger = zap.NewNop()
	deps.DefaultCompany = "company-1"
	return handler.NewRouter(deps)
}

// --- Operational endpoints ---

func TestHealthz(t *testing.T) {
	router := newTestRouter(handler.Deps{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newTestRouter(handler.Deps{})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(handler.Deps{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

// --- PIX ---

func TestCreatePixCharge(t *testing.T) {
	pix := &mockPix{charge: &domain.PixCharge{
		TxID:      "abc123",
		Status:    domain.PixActive,
		CopyPaste: "00020126...",
	}}
	router := newTestRouter(handler.Deps{Pix: pix})

	body := `{"amount":49.9,"payer_name":"Maria","payer_document":"12345678900"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/pix/cobrancas", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var charge domain.PixCharge
	if err := json.NewDecoder(rec.Body).Decode(&charge); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if charge.TxID != "abc123" {
		t.Errorf("expected txid abc123, got %q", charge.TxID)
	}
	if pix.companyID != "company-1" {
		t.Errorf("expected default company, got %q", pix.companyID)
	}
}

func TestCreatePixCharge_InvalidBody(t *testing.T) {
	router := newTestRouter(handler.Deps{Pix: &mockPix{}})

	req := httptest.NewRequest(http.MethodPost, "/v1/pix/cobrancas", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestQueryPixCharge(t *testing.T) {
	pix := &mockPix{query: &domain.PixQueryResult{
		TxID:   "abc123",
		Status: domain.PixCompleted,
	}}
	router := newTestRouter(handler.Deps{Pix: pix})

	req := httptest.NewRequest(http.MethodGet, "/v1/pix/cobrancas/abc123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "COMPLETED") {
		t.Errorf("expected completed status, got %s", rec.Body.String())
	}
}

// --- Boleto ---

func TestRegisterBoletoRoute(t *testing.T) {
	boleto := &mockBoleto{boleto: &domain.Boleto{
		NossoNumero:   "12345678901",
		DigitableLine: "34191...",
		DueDate:       "2026-09-08",
	}}
	router := newTestRouter(handler.Deps{Boleto: boleto})

	body := `{"amount":150,"payer_name":"João","payer_document":"12345678000190","address":{"street":"Rua A","city":"BH","state":"MG","zip":"30130010"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/boletos", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "12345678901") {
		t.Errorf("expected nosso numero in body, got %s", rec.Body.String())
	}
}

func TestQueryBoletoRoute(t *testing.T) {
	boleto := &mockBoleto{query: &domain.BoletoQueryResult{
		NossoNumero: "12345678901",
		Status:      domain.BoletoPaid,
	}}
	router := newTestRouter(handler.Deps{Boleto: boleto})

	req := httptest.NewRequest(http.MethodGet, "/v1/boletos/12345678901", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

// --- Error mapping ---

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &domain.ErrValidation{Field: "amount", Message: "must be positive"}, http.StatusBadRequest},
		{"not configured", &domain.ErrNotConfigured{Gateway: "inter"}, http.StatusUnprocessableEntity},
		{"disabled", &domain.ErrGatewayDisabled{Gateway: "inter"}, http.StatusUnprocessableEntity},
		{"no active gateway", &domain.ErrNoActiveGateway{}, http.StatusUnprocessableEntity},
		{"rejected", &domain.ErrProviderRejected{Operation: "pix", StatusCode: 400, Message: "valor inválido"}, http.StatusUnprocessableEntity},
		{"auth failed", &domain.ErrAuthenticationFailed{Gateway: "inter"}, http.StatusBadGateway},
		{"timeout", &domain.ErrTimeout{Operation: "pix"}, http.StatusGatewayTimeout},
		{"transport", &domain.ErrTransport{Operation: "pix"}, http.StatusBadGateway},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			router := newTestRouter(handler.Deps{Pix: &mockPix{err: c.err}})

			body := `{"amount":10,"payer_name":"x","payer_document":"12345678900"}`
			req := httptest.NewRequest(http.MethodPost, "/v1/pix/cobrancas", strings.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != c.want {
				t.Errorf("expected %d, got %d", c.want, rec.Code)
			}
		})
	}
}

// --- Gateway routing ---

func TestActiveGatewayRoute(t *testing.T) {
	router := newTestRouter(handler.Deps{Router: &mockRouter{gateway: domain.GatewayInter}})

	req := httptest.NewRequest(http.MethodGet, "/v1/gateway", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "inter") {
		t.Errorf("expected gateway name, got %s", rec.Body.String())
	}
}

// --- Auth ---

func signToken(t *testing.T, secret, companyID string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"company_id": companyID,
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestAuth_MissingToken(t *testing.T) {
	router := newTestRouter(handler.Deps{Pix: &mockPix{}, JWTSecret: "test-secret"})

	req := httptest.NewRequest(http.MethodGet, "/v1/pix/cobrancas/abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_InvalidToken(t *testing.T) {
	router := newTestRouter(handler.Deps{Pix: &mockPix{}, JWTSecret: "test-secret"})

	req := httptest.NewRequest(http.MethodGet, "/v1/pix/cobrancas/abc", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "wrong-secret", "company-2"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuth_ValidTokenCarriesCompany(t *testing.T) {
	pix := &mockPix{query: &domain.PixQueryResult{TxID: "abc", Status: domain.PixActive}}
	router := newTestRouter(handler.Deps{Pix: pix, JWTSecret: "test-secret"})

	req := httptest.NewRequest(http.MethodGet, "/v1/pix/cobrancas/abc", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "test-secret", "company-2"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if pix.companyID != "company-2" {
		t.Errorf("expected company from token claim, got %q", pix.companyID)
	}
}

func TestCompanyHeaderFallback(t *testing.T) {
	pix := &mockPix{query: &domain.PixQueryResult{TxID: "abc", Status: domain.PixActive}}
	router := newTestRouter(handler.Deps{Pix: pix})

	req := httptest.NewRequest(http.MethodGet, "/v1/pix/cobrancas/abc", nil)
	req.Header.Set("X-Company-Id", "company-9")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if pix.companyID != "company-9" {
		t.Errorf("expected header company, got %q", pix.companyID)
	}
}

// --- Metrics snapshot ---

func TestGatewayMetricsSnapshot(t *testing.T) {
	router := newTestRouter(handler.Deps{})

	req := httptest.NewRequest(http.MethodGet, "/v1/metrics/gateway", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
