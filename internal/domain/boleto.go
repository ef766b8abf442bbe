package domain

import "time"

// BoletoStatus is the provider-agnostic lifecycle of a registered slip.
type BoletoStatus string

const (
	BoletoOpen      BoletoStatus = "OPEN"
	BoletoPaid      BoletoStatus = "PAID"
	BoletoCancelled BoletoStatus = "CANCELLED"
	BoletoExpired   BoletoStatus = "EXPIRED"
)

// BoletoStatusFromWire maps the provider's situacao field.
func BoletoStatusFromWire(s string) BoletoStatus {
	switch s {
	case "EMABERTO", "ABERTO":
		return BoletoOpen
	case "PAGO", "LIQUIDADO":
		return BoletoPaid
	case "BAIXADO", "CANCELADO":
		return BoletoCancelled
	case "VENCIDO", "EXPIRADO":
		return BoletoExpired
	}
	return BoletoOpen
}

// BoletoAddress is the payer address required for slip registration.
type BoletoAddress struct {
	Street   string `json:"street"`
	District string `json:"district"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZIP      string `json:"zip"`
}

// BoletoRequest is a request to register a bank slip.
type BoletoRequest struct {
	Amount        float64       `json:"amount"`
	PayerName     string        `json:"payer_name"`
	PayerDocument string        `json:"payer_document"`
	Address       BoletoAddress `json:"address"`
}

// Boleto is a registered slip. NossoNumero is generated locally and
// doubles as the idempotency key toward the provider.
type Boleto struct {
	NossoNumero   string `json:"nosso_numero"`
	DigitableLine string `json:"digitable_line"`
	Barcode       string `json:"barcode"`
	URL           string `json:"url,omitempty"`
	DueDate       string `json:"due_date"`
}

// BoletoQueryResult is the settlement state of a slip. Degraded has the
// same meaning as on PixQueryResult.
type BoletoQueryResult struct {
	NossoNumero string       `json:"nosso_numero"`
	Status      BoletoStatus `json:"status"`
	Degraded    bool         `json:"degraded,omitempty"`
	PaidAmount  float64      `json:"paid_amount,omitempty"`
	PaidAt      *time.Time   `json:"paid_at,omitempty"`
}
