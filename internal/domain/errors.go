package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the gateway. Configuration and routing errors are
// fatal until an operator fixes the stored configuration; timeout and
// transport errors are retryable on the next attempt; a provider
// rejection means the specific payload was declined.

// ErrNotConfigured indicates no configuration row exists for the
// gateway.
type ErrNotConfigured struct {
	Gateway string
}

func (e *ErrNotConfigured) Error() string {
	return fmt.Sprintf("Gateway %s não configurado", e.Gateway)
}

// ErrGatewayDisabled indicates a configuration row exists but is
// switched off.
type ErrGatewayDisabled struct {
	Gateway string
}

func (e *ErrGatewayDisabled) Error() string {
	return fmt.Sprintf("Gateway %s está desativado", e.Gateway)
}

// ErrIncompleteCredentials indicates the stored configuration is
// missing required fields.
type ErrIncompleteCredentials struct {
	Gateway string
	Fields  []string
}

func (e *ErrIncompleteCredentials) Error() string {
	return fmt.Sprintf("Configuração do gateway %s incompleta: %d campo(s) ausente(s)", e.Gateway, len(e.Fields))
}

// ErrAuthenticationFailed indicates the provider refused the
// client-credentials exchange (bad credentials or certificate).
// Detail is written to the audit log, never echoed to the caller.
type ErrAuthenticationFailed struct {
	Gateway string
}

func (e *ErrAuthenticationFailed) Error() string {
	return "Falha na autenticação com o banco. Verifique as credenciais e o certificado"
}

// ErrTimeout indicates an outbound call exceeded its deadline.
type ErrTimeout struct {
	Operation string
}

func (e *ErrTimeout) Error() string {
	return fmt.Sprintf("Tempo limite excedido na operação %s", e.Operation)
}

// ErrTransport indicates a network-level failure (DNS, connection,
// TLS handshake) before an HTTP response was obtained.
type ErrTransport struct {
	Operation string
	Err       error
}

func (e *ErrTransport) Error() string {
	return fmt.Sprintf("Falha de comunicação com o banco na operação %s", e.Operation)
}

func (e *ErrTransport) Unwrap() error {
	return e.Err
}

// ErrProviderRejected indicates the provider answered with a non-2xx
// status. Message carries the parsed, user-safe detail; StatusCode the
// raw HTTP status.
type ErrProviderRejected struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *ErrProviderRejected) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// ErrNoActiveGateway indicates storage has no active gateway for the
// tenant.
type ErrNoActiveGateway struct{}

func (e *ErrNoActiveGateway) Error() string {
	return "Nenhum gateway de pagamento ativo"
}

// ErrUnsupportedGateway indicates the active row names a provider this
// core does not implement.
type ErrUnsupportedGateway struct {
	Gateway string
}

func (e *ErrUnsupportedGateway) Error() string {
	return fmt.Sprintf("Gateway %s não suportado", e.Gateway)
}

// ErrValidation indicates a caller-side validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// IsRetryable reports whether the caller may retry the same operation.
// Only timeouts and transport failures qualify; everything else needs
// either a different payload or an operator fix.
func IsRetryable(err error) bool {
	var timeout *ErrTimeout
	var transport *ErrTransport
	return errors.As(err, &timeout) || errors.As(err, &transport)
}
