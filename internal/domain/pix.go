package domain

import "time"

// PixChargeStatus is the provider-agnostic lifecycle of a PIX charge.
type PixChargeStatus string

const (
	PixActive         PixChargeStatus = "ACTIVE"
	PixCompleted      PixChargeStatus = "COMPLETED"
	PixRemovedByPayee PixChargeStatus = "REMOVED_BY_PAYEE"
	PixRemovedByPSP   PixChargeStatus = "REMOVED_BY_PSP"
)

// PixStatusFromWire maps a BACEN cob status to the domain status.
// Unknown values map to ACTIVE so a new provider status never breaks a
// polling loop.
func PixStatusFromWire(s string) PixChargeStatus {
	switch s {
	case "ATIVA":
		return PixActive
	case "CONCLUIDA":
		return PixCompleted
	case "REMOVIDA_PELO_USUARIO_RECEBEDOR":
		return PixRemovedByPayee
	case "REMOVIDA_PELO_PSP":
		return PixRemovedByPSP
	}
	return PixActive
}

// PixChargeRequest is a request to create an instant-payment charge.
type PixChargeRequest struct {
	Amount        float64 `json:"amount"`
	PayerName     string  `json:"payer_name"`
	PayerDocument string  `json:"payer_document"`
	// PixKey overrides the configured receiving key when set.
	PixKey      string `json:"pix_key,omitempty"`
	Description string `json:"description,omitempty"`
}

// PixCharge is the result of a successful charge creation. TxID is
// generated locally before the request goes out and doubles as the
// idempotency key toward the provider.
type PixCharge struct {
	TxID        string          `json:"txid"`
	Status      PixChargeStatus `json:"status"`
	Location    string          `json:"location,omitempty"`
	CopyPaste   string          `json:"copy_paste,omitempty"`
	QRCodeImage string          `json:"qr_code_image,omitempty"`
}

// PixQueryResult is the settlement state of a charge. Degraded marks a
// synthetic "still pending" answer produced when the provider could not
// be reached; telemetry uses it to tell outages apart from genuinely
// active charges.
type PixQueryResult struct {
	TxID       string          `json:"txid"`
	Status     PixChargeStatus `json:"status"`
	Degraded   bool            `json:"degraded,omitempty"`
	PaidAmount float64         `json:"paid_amount,omitempty"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	EndToEndID string          `json:"end_to_end_id,omitempty"`
}
