package bank

import (
	"crypto/sha256"
	"crypto/tls"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/crypto/pkcs12"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
)

// TransportCache builds and reuses certificate-bearing HTTP transports.
// PFX parsing is comparatively expensive, so transports are keyed by a
// fingerprint of the certificate material and rebuilt only when the
// stored configuration changes.
type TransportCache struct {
	mu      sync.Mutex
	clients map[string]*http.Client
}

// NewTransportCache creates an empty transport cache.
func NewTransportCache() *TransportCache {
	return &TransportCache{clients: make(map[string]*http.Client)}
}

// ClientFor returns an HTTP client whose transport presents the
// configuration's client certificate during the TLS handshake. The
// client carries no timeout of its own; deadlines come from the
// request context set by the executor.
func (t *TransportCache) ClientFor(cfg *domain.GatewayConfig) (*http.Client, error) {
	key := fingerprint(cfg.Certificate, cfg.CertificatePassword)

	t.mu.Lock()
	defer t.mu.Unlock()

	if client, ok := t.clients[key]; ok {
		return client, nil
	}

	cert, err := loadCertificate(cfg.Certificate, cfg.CertificatePassword)
	if err != nil {
		return nil, err
	}

	client := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				Certificates: []tls.Certificate{cert},
				MinVersion:   tls.VersionTLS12,
			},
		},
	}
	t.clients[key] = client
	return client, nil
}

// loadCertificate decodes a base64 PFX bundle into a TLS client
// certificate. The decoded key material lives only inside the returned
// certificate; the intermediate buffers go out of scope immediately.
func loadCertificate(certB64, password string) (tls.Certificate, error) {
	pfx, err := base64.StdEncoding.DecodeString(certB64)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decode certificate: %w", err)
	}

	blocks, err := pkcs12.ToPEM(pfx, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("parse certificate: %w", err)
	}

	var pemData []byte
	for _, b := range blocks {
		pemData = append(pemData, pem.EncodeToMemory(b)...)
	}

	cert, err := tls.X509KeyPair(pemData, pemData)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("build key pair: %w", err)
	}
	return cert, nil
}

func fingerprint(certB64, password string) string {
	h := sha256.New()
	h.Write([]byte(certB64))
	h.Write([]byte{0})
	h.Write([]byte(password))
	return hex.EncodeToString(h.Sum(nil))
}
