package bank

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
)

// providerError is the structured error body the partner returns on
// non-2xx responses. PIX endpoints follow the BACEN problem shape
// (title/detail/violacoes); the boleto API uses message.
type providerError struct {
	Title     string `json:"title"`
	Detail    string `json:"detail"`
	Message   string `json:"message"`
	Violacoes []struct {
		Razao       string `json:"razao"`
		Propriedade string `json:"propriedade"`
	} `json:"violacoes"`
}

// Rejection turns a non-2xx provider response into an
// ErrProviderRejected with a user-safe message. When the body cannot
// be parsed the message falls back to the bare HTTP status.
func Rejection(op domain.AuditOperation, resp *Response) *domain.ErrProviderRejected {
	rejected := &domain.ErrProviderRejected{
		Operation:  string(op),
		StatusCode: resp.StatusCode,
	}

	var parsed providerError
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		rejected.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
		return rejected
	}

	if len(parsed.Violacoes) > 0 {
		reasons := make([]string, 0, len(parsed.Violacoes))
		for _, v := range parsed.Violacoes {
			if v.Razao == "" {
				continue
			}
			if v.Propriedade != "" {
				reasons = append(reasons, fmt.Sprintf("%s: %s", v.Propriedade, v.Razao))
			} else {
				reasons = append(reasons, v.Razao)
			}
		}
		if len(reasons) > 0 {
			rejected.Message = strings.Join(reasons, "; ")
			return rejected
		}
	}

	switch {
	case parsed.Detail != "":
		rejected.Message = parsed.Detail
	case parsed.Message != "":
		rejected.Message = parsed.Message
	case parsed.Title != "":
		rejected.Message = parsed.Title
	default:
		rejected.Message = fmt.Sprintf("HTTP %d", resp.StatusCode)
	}
	return rejected
}
