package domain

// AuditOperation classifies an outbound call in the audit trail.
type AuditOperation string

const (
	AuditToken    AuditOperation = "token"
	AuditPix      AuditOperation = "pix"
	AuditBoleto   AuditOperation = "boleto"
	AuditConsulta AuditOperation = "consulta"
)

// AuditRequest describes an outbound request about to be sent. Bodies
// must already be redacted of secrets by the caller; the sink stores
// them as-is.
type AuditRequest struct {
	CompanyID   string
	Operation   AuditOperation
	Method      string
	Endpoint    string
	PaymentID   string
	RequestBody string
}

// AuditResponse describes the outcome of an outbound request.
type AuditResponse struct {
	CompanyID    string
	Operation    AuditOperation
	Method       string
	Endpoint     string
	PaymentID    string
	StatusCode   int
	ResponseBody string
	ErrorMessage string
}
