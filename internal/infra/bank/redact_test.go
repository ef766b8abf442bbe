package bank_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/dizimoapp/payments-gateway-go/internal/infra/bank"
)

func TestRedact_JSONSecrets(t *testing.T) {
	body := `{"client_id":"abc","client_secret":"topsecret","valor":{"original":"100.00"}}`

	out := bank.Redact([]byte(body))

	if strings.Contains(out, "topsecret") {
		t.Errorf("secret leaked: %s", out)
	}
	if !strings.Contains(out, `"client_secret":"[REDACTED]"`) {
		t.Errorf("expected redacted client_secret, got %s", out)
	}
	if !strings.Contains(out, `"original":"100.00"`) {
		t.Errorf("non-sensitive field was lost: %s", out)
	}
}

func TestRedact_NestedJSON(t *testing.T) {
	body := `{"config":{"certificado":"MIIB...","senha_certificado":"pw"},"items":[{"access_token":"tok"}]}`

	out := bank.Redact([]byte(body))

	for _, secret := range []string{"MIIB...", `"pw"`, `"tok"`} {
		if strings.Contains(out, secret) {
			t.Errorf("secret %s leaked: %s", secret, out)
		}
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		t.Fatalf("redacted output is not valid JSON: %v", err)
	}
}

func TestRedact_FormBody(t *testing.T) {
	body := "grant_type=client_credentials&client_id=abc&client_secret=topsecret&scope=cob.write"

	out := bank.Redact([]byte(body))

	if strings.Contains(out, "topsecret") {
		t.Errorf("secret leaked: %s", out)
	}
	if !strings.Contains(out, "grant_type=client_credentials") {
		t.Errorf("non-sensitive field was lost: %s", out)
	}
}

func TestRedact_PlainText(t *testing.T) {
	body := "00020126580014br.gov.bcb.pix"
	if out := bank.Redact([]byte(body)); out != body {
		t.Errorf("plain text should pass through, got %s", out)
	}
}

func TestRedact_Empty(t *testing.T) {
	if out := bank.Redact(nil); out != "" {
		t.Errorf("expected empty string, got %q", out)
	}
}
