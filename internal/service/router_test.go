package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
	"github.com/dizimoapp/payments-gateway-go/internal/service"
)

func TestActiveGateway_NoneActive(t *testing.T) {
	svc := service.NewRouterService(&mockStore{}, zap.NewNop())

	_, err := svc.ActiveGateway(context.Background(), "company-1")

	var noActive *domain.ErrNoActiveGateway
	if !errors.As(err, &noActive) {
		t.Fatalf("expected ErrNoActiveGateway, got %v", err)
	}
}

func TestActiveGateway_Unsupported(t *testing.T) {
	svc := service.NewRouterService(&mockStore{provider: "mercadopago"}, zap.NewNop())

	_, err := svc.ActiveGateway(context.Background(), "company-1")

	var unsupported *domain.ErrUnsupportedGateway
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected ErrUnsupportedGateway, got %v", err)
	}
	if unsupported.Gateway != "mercadopago" {
		t.Errorf("expected gateway name in error, got %q", unsupported.Gateway)
	}
}

func TestActiveGateway_Supported(t *testing.T) {
	svc := service.NewRouterService(&mockStore{provider: domain.GatewayInter}, zap.NewNop())

	gateway, err := svc.ActiveGateway(context.Background(), "company-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if gateway != domain.GatewayInter {
		t.Errorf("expected inter, got %q", gateway)
	}
}

func TestActiveGateway_StoreErrorPropagates(t *testing.T) {
	svc := service.NewRouterService(&mockStore{providerErr: errors.New("connection refused")}, zap.NewNop())

	if _, err := svc.ActiveGateway(context.Background(), "company-1"); err == nil {
		t.Fatal("expected store error to propagate")
	}
}
