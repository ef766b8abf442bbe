package domain_test

import (
	"testing"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
)

func TestPixStatusFromWire(t *testing.T) {
	cases := []struct {
		wire string
		want domain.PixChargeStatus
	}{
		{"ATIVA", domain.PixActive},
		{"CONCLUIDA", domain.PixCompleted},
		{"REMOVIDA_PELO_USUARIO_RECEBEDOR", domain.PixRemovedByPayee},
		{"REMOVIDA_PELO_PSP", domain.PixRemovedByPSP},
		{"SOMETHING_NEW", domain.PixActive},
	}
	for _, c := range cases {
		if got := domain.PixStatusFromWire(c.wire); got != c.want {
			t.Errorf("PixStatusFromWire(%q) = %s, want %s", c.wire, got, c.want)
		}
	}
}

func TestBoletoStatusFromWire(t *testing.T) {
	cases := []struct {
		wire string
		want domain.BoletoStatus
	}{
		{"EMABERTO", domain.BoletoOpen},
		{"PAGO", domain.BoletoPaid},
		{"LIQUIDADO", domain.BoletoPaid},
		{"BAIXADO", domain.BoletoCancelled},
		{"VENCIDO", domain.BoletoExpired},
		{"", domain.BoletoOpen},
	}
	for _, c := range cases {
		if got := domain.BoletoStatusFromWire(c.wire); got != c.want {
			t.Errorf("BoletoStatusFromWire(%q) = %s, want %s", c.wire, got, c.want)
		}
	}
}

func TestEnvironmentValid(t *testing.T) {
	for _, env := range []domain.Environment{domain.EnvProduction, domain.EnvStaging, domain.EnvSandbox} {
		if !env.Valid() {
			t.Errorf("expected %s to be valid", env)
		}
	}
	if domain.Environment("qa").Valid() {
		t.Error("unknown environment must be invalid")
	}
}

func TestMissingCredentials(t *testing.T) {
	cfg := &domain.GatewayConfig{
		ClientID: "id",
		PixKey:   "key",
	}

	missing := cfg.MissingCredentials()

	want := map[string]bool{"client_secret": true, "certificado": true, "senha_certificado": true}
	if len(missing) != len(want) {
		t.Fatalf("expected %d missing fields, got %v", len(want), missing)
	}
	for _, field := range missing {
		if !want[field] {
			t.Errorf("unexpected missing field %q", field)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !domain.IsRetryable(&domain.ErrTimeout{Operation: "pix"}) {
		t.Error("timeout must be retryable")
	}
	if !domain.IsRetryable(&domain.ErrTransport{Operation: "pix"}) {
		t.Error("transport failure must be retryable")
	}
	if domain.IsRetryable(&domain.ErrProviderRejected{StatusCode: 400}) {
		t.Error("provider rejection must not be retryable")
	}
	if domain.IsRetryable(&domain.ErrAuthenticationFailed{Gateway: "inter"}) {
		t.Error("authentication failure must not be retryable")
	}
	if domain.IsRetryable(nil) {
		t.Error("nil is not retryable")
	}
}
