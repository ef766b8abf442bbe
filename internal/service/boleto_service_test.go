package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/bank"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/observability"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/resilience"
	"github.com/dizimoapp/payments-gateway-go/internal/service"
)

func newBoletoService(store *mockStore) *service.BoletoService {
	metrics := observability.NewMetrics()
	logger := zap.NewNop()
	transports := bank.NewTransportCache()
	exec := bank.NewExecutor(nopAudit{}, metrics, logger, time.Second, resilience.NewCircuitBreaker("test"), resilience.NewBulkhead(2))
	tokens := bank.NewTokenManager(transports, exec, metrics, logger, time.Minute)
	configs := service.NewConfigService(store, time.Minute, metrics, logger)
	router := service.NewRouterService(store, logger)
	return service.NewBoletoService(router, configs, tokens, transports, exec, metrics, logger)
}

func validBoletoRequest() *domain.BoletoRequest {
	return &domain.BoletoRequest{
		Amount:        150,
		PayerName:     "João Pereira",
		PayerDocument: "12.345.678/0001-90",
		Address: domain.BoletoAddress{
			Street:   "Rua das Flores, 100",
			District: "Centro",
			City:     "Belo Horizonte",
			State:    "MG",
			ZIP:      "30130-010",
		},
	}
}

func TestRegisterBoleto_ValidatesZIP(t *testing.T) {
	svc := newBoletoService(&mockStore{})

	req := validBoletoRequest()
	req.Address.ZIP = "123"
	_, err := svc.Register(context.Background(), "company-1", req)

	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if validation.Field != "address.zip" {
		t.Errorf("expected address.zip field, got %q", validation.Field)
	}
}

func TestRegisterBoleto_ValidatesAddress(t *testing.T) {
	svc := newBoletoService(&mockStore{})

	req := validBoletoRequest()
	req.Address.City = ""
	_, err := svc.Register(context.Background(), "company-1", req)

	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRegisterBoleto_NoActiveGateway(t *testing.T) {
	svc := newBoletoService(&mockStore{})

	_, err := svc.Register(context.Background(), "company-1", validBoletoRequest())

	var noActive *domain.ErrNoActiveGateway
	if !errors.As(err, &noActive) {
		t.Fatalf("expected ErrNoActiveGateway, got %v", err)
	}
}

func TestQueryBoleto_RequiresNossoNumero(t *testing.T) {
	svc := newBoletoService(&mockStore{})

	_, err := svc.Query(context.Background(), "company-1", "")

	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestQueryBoleto_ConfigurationErrorPropagates(t *testing.T) {
	cfg := completeConfig()
	cfg.Active = false
	svc := newBoletoService(&mockStore{provider: domain.GatewayInter, cfg: cfg})

	_, err := svc.Query(context.Background(), "company-1", "12345678901")

	var disabled *domain.ErrGatewayDisabled
	if !errors.As(err, &disabled) {
		t.Fatalf("configuration errors must propagate from queries, got %v", err)
	}
}

func TestQueryBoleto_DegradesOnProviderFailure(t *testing.T) {
	svc := newBoletoService(&mockStore{provider: domain.GatewayInter, cfg: completeConfig()})

	result, err := svc.Query(context.Background(), "company-1", "12345678901")
	if err != nil {
		t.Fatalf("expected degraded result, got error %v", err)
	}
	if !result.Degraded {
		t.Error("expected Degraded flag")
	}
	if result.Status != domain.BoletoOpen {
		t.Errorf("expected synthetic OPEN status, got %s", result.Status)
	}
}
