package bank

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/dizimoapp/payments-gateway-go/internal/domain"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/observability"
	"github.com/dizimoapp/payments-gateway-go/internal/infra/resilience"
	"github.com/dizimoapp/payments-gateway-go/internal/port"
)

// Request is an outbound call to the banking partner.
type Request struct {
	CompanyID string
	Operation domain.AuditOperation
	Method    string
	URL       string
	Header    http.Header
	Body      []byte
	// PaymentID links the audit entry to a txid or nossoNumero.
	PaymentID string
}

// Response is the raw HTTP outcome. Non-2xx statuses are returned
// as-is so the caller can parse the provider's error body; only
// timeout and network failures surface as errors here.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Executor wraps every outbound call with a hard deadline, a circuit
// breaker, a concurrency bulkhead and redacted audit logging. It maps
// transport-level failures onto the error taxonomy; payload-level
// rejections stay with the payment services.
type Executor struct {
	audit    port.AuditLogger
	metrics  *observability.Metrics
	logger   *zap.Logger
	timeout  time.Duration
	cb       *gobreaker.CircuitBreaker
	bulkhead *resilience.Bulkhead
}

// NewExecutor creates an executor. timeout bounds each call end to end;
// the provider requires it to stay under 15s.
func NewExecutor(audit port.AuditLogger, metrics *observability.Metrics, logger *zap.Logger, timeout time.Duration, cb *gobreaker.CircuitBreaker, bulkhead *resilience.Bulkhead) *Executor {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Executor{
		audit:    audit,
		metrics:  metrics,
		logger:   logger,
		timeout:  timeout,
		cb:       cb,
		bulkhead: bulkhead,
	}
}

// Do executes the request over the given client (which carries the
// mutual-TLS transport). The caller's context propagates cancellation;
// the executor adds the hard deadline on top.
func (e *Executor) Do(ctx context.Context, client *http.Client, req Request) (*Response, error) {
	if err := e.bulkhead.Acquire(ctx); err != nil {
		return nil, &domain.ErrTransport{Operation: string(req.Operation), Err: err}
	}
	defer e.bulkhead.Release()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	e.audit.LogRequest(ctx, domain.AuditRequest{
		CompanyID:   req.CompanyID,
		Operation:   req.Operation,
		Method:      req.Method,
		Endpoint:    req.URL,
		PaymentID:   req.PaymentID,
		RequestBody: Redact(req.Body),
	})

	start := time.Now()
	resp, err := e.send(ctx, client, req)
	e.metrics.RecordRequestDuration(string(req.Operation), time.Since(start))

	if err != nil {
		mapped := e.classify(ctx, req, err)
		e.audit.LogResponse(ctx, domain.AuditResponse{
			CompanyID:    req.CompanyID,
			Operation:    req.Operation,
			Method:       req.Method,
			Endpoint:     req.URL,
			PaymentID:    req.PaymentID,
			ErrorMessage: err.Error(),
		})
		return nil, mapped
	}

	e.audit.LogResponse(ctx, domain.AuditResponse{
		CompanyID:    req.CompanyID,
		Operation:    req.Operation,
		Method:       req.Method,
		Endpoint:     req.URL,
		PaymentID:    req.PaymentID,
		StatusCode:   resp.StatusCode,
		ResponseBody: Redact(resp.Body),
	})
	return resp, nil
}

func (e *Executor) send(ctx context.Context, client *http.Client, req Request) (*Response, error) {
	result, err := e.cb.Execute(func() (any, error) {
		var bodyReader io.Reader
		if len(req.Body) > 0 {
			bodyReader = bytes.NewReader(req.Body)
		}

		httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
		if err != nil {
			return nil, err
		}
		for key, vals := range req.Header {
			for _, v := range vals {
				httpReq.Header.Add(key, v)
			}
		}

		httpResp, err := client.Do(httpReq)
		if err != nil {
			return nil, err
		}
		defer httpResp.Body.Close()

		body, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return nil, err
		}
		return &Response{StatusCode: httpResp.StatusCode, Body: body}, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*Response), nil
}

// classify maps a transport-level failure onto the taxonomy: deadline
// expiry is a Timeout, everything else (DNS, connection, TLS, open
// breaker) a TransportFailure.
func (e *Executor) classify(ctx context.Context, req Request, err error) error {
	op := string(req.Operation)

	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		e.metrics.IncrProviderError("timeout")
		e.logger.Warn("provider call timed out",
			zap.String("operation", op),
			zap.String("endpoint", req.URL),
			zap.Duration("timeout", e.timeout),
		)
		return &domain.ErrTimeout{Operation: op}
	}

	e.metrics.IncrProviderError("transport")
	e.logger.Warn("provider call failed",
		zap.String("operation", op),
		zap.String("endpoint", req.URL),
		zap.Error(err),
	)
	return &domain.ErrTransport{Operation: op, Err: err}
}
