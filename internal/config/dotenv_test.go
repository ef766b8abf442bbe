package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dizimoapp/payments-gateway-go/internal/config"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing env file: %v", err)
	}
	return path
}

func TestLoadDotEnv_ParsesEntries(t *testing.T) {
	path := writeEnvFile(t, `
# gateway credentials
GATEWAY_CLIENT_ID=abc123
export GATEWAY_ENVIRONMENT=sandbox
GATEWAY_CLIENT_SECRET="s3cr3t="
BROKEN LINE WITHOUT EQUALS
`)

	for _, key := range []string{"GATEWAY_CLIENT_ID", "GATEWAY_ENVIRONMENT", "GATEWAY_CLIENT_SECRET"} {
		os.Unsetenv(key)
		t.Cleanup(func() { os.Unsetenv(key) })
	}

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := os.Getenv("GATEWAY_CLIENT_ID"); got != "abc123" {
		t.Errorf("GATEWAY_CLIENT_ID = %q", got)
	}
	if got := os.Getenv("GATEWAY_ENVIRONMENT"); got != "sandbox" {
		t.Errorf("expected export prefix stripped, got %q", got)
	}
	if got := os.Getenv("GATEWAY_CLIENT_SECRET"); got != "s3cr3t=" {
		t.Errorf("expected quotes stripped and value kept past the first =, got %q", got)
	}
}

func TestLoadDotEnv_EnvironmentWins(t *testing.T) {
	path := writeEnvFile(t, "GATEWAY_TOKEN_MARGIN=10s\nGATEWAY_JWT_SECRET=from-file\n")

	t.Setenv("GATEWAY_TOKEN_MARGIN", "90s")
	t.Setenv("GATEWAY_JWT_SECRET", "")

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := os.Getenv("GATEWAY_TOKEN_MARGIN"); got != "90s" {
		t.Errorf("expected real environment to win, got %q", got)
	}
	if got := os.Getenv("GATEWAY_JWT_SECRET"); got != "" {
		t.Errorf("expected set-but-empty variable to stay empty, got %q", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := config.LoadDotEnv(filepath.Join(t.TempDir(), "absent.env")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
