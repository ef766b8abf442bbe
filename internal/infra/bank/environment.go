// Package bank talks to the banking partner: environment resolution,
// the mutual-TLS transport, the OAuth2 token manager and the resilient
// request executor every payment service goes through.
package bank

import (
	"fmt"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
)

// Endpoints are the three base URLs a provider environment requires.
type Endpoints struct {
	AuthURL string // OAuth2 token endpoint
	APIURL  string // general API (boleto)
	PixURL  string // BACEN PIX API
}

// ResolveEndpoints maps a declared environment to the partner's base
// URLs. The mapping is pure; unknown environments are a configuration
// error.
func ResolveEndpoints(env domain.Environment) (Endpoints, error) {
	switch env {
	case domain.EnvProduction:
		return Endpoints{
			AuthURL: "https://cdpj.partners.bancointer.com.br/oauth/v2/token",
			APIURL:  "https://cdpj.partners.bancointer.com.br",
			PixURL:  "https://cdpj.partners.bancointer.com.br/pix",
		}, nil
	case domain.EnvStaging:
		return Endpoints{
			AuthURL: "https://cdpj-h.partners.bancointer.com.br/oauth/v2/token",
			APIURL:  "https://cdpj-h.partners.bancointer.com.br",
			PixURL:  "https://cdpj-h.partners.bancointer.com.br/pix",
		}, nil
	case domain.EnvSandbox:
		return Endpoints{
			AuthURL: "https://cdpj-sandbox.partners.uatinter.co/oauth/v2/token",
			APIURL:  "https://cdpj-sandbox.partners.uatinter.co",
			PixURL:  "https://cdpj-sandbox.partners.uatinter.co/pix",
		}, nil
	}
	return Endpoints{}, fmt.Errorf("unknown environment %q", env)
}
