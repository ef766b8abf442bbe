// Package domain holds the core types of the payments gateway:
// provider configuration, PIX charges, boleto registrations and the
// error taxonomy shared by every layer.
package domain

// Environment is the provider tier a configuration points at.
type Environment string

const (
	EnvProduction Environment = "production"
	EnvStaging    Environment = "staging"
	EnvSandbox    Environment = "sandbox"
)

// Valid reports whether the environment is one of the known tiers.
func (e Environment) Valid() bool {
	switch e {
	case EnvProduction, EnvStaging, EnvSandbox:
		return true
	}
	return false
}

// GatewayInter is the banking partner this core implements. Other
// gateways may exist in storage (cards are collected elsewhere) but are
// rejected by the router.
const GatewayInter = "inter"

// GatewayConfig is a provider's active credential set, read from
// storage. The certificate is a base64-encoded PFX bundle; together
// with its password it is sensitive material and must never reach logs
// or API responses.
type GatewayConfig struct {
	CompanyID           string
	Gateway             string
	Environment         Environment
	ClientID            string
	ClientSecret        string
	Certificate         string // base64 PFX
	CertificatePassword string
	PixKey              string
	Active              bool
}

// MissingCredentials returns the names of required fields that are
// empty. All of them must be present before any payment operation runs.
func (c *GatewayConfig) MissingCredentials() []string {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if c.Certificate == "" {
		missing = append(missing, "certificado")
	}
	if c.CertificatePassword == "" {
		missing = append(missing, "senha_certificado")
	}
	if c.PixKey == "" {
		missing = append(missing, "chave_pix")
	}
	return missing
}
