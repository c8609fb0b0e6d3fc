// Package gateway talks HTTP to the SeguraPay card-processing gateway. Every
// call opens an interaction span with a masked copy of the traffic; the wire
// payload itself is never masked.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"oxygate/internal/interaction"
	"oxygate/internal/mask"
)

const (
	sandboxBaseURL    = "https://ap-dev.segura-pay.com/api/v1/payment-gateway"
	productionBaseURL = "https://api.segura-pay.com/api/v1/payment-gateway"
)

// InitFlow selects which init endpoint a payment starts on.
type InitFlow string

const (
	FlowInitialize    InitFlow = "initialize"
	FlowHostedPayment InitFlow = "hosted-payment"
)

// Credentials are the per-call merchant settings; Sandbox picks the upstream
// base address.
type Credentials struct {
	ClientID string
	Secret   string
	Sandbox  bool
}

// Config overrides the upstream base addresses, mainly for tests.
type Config struct {
	SandboxURL    string
	ProductionURL string
}

type Client struct {
	http   *http.Client
	cfg    Config
	logger *zap.SugaredLogger
}

func NewClient(cfg Config, logger *zap.SugaredLogger) *Client {
	if cfg.SandboxURL == "" {
		cfg.SandboxURL = sandboxBaseURL
	}
	if cfg.ProductionURL == "" {
		cfg.ProductionURL = productionBaseURL
	}
	return &Client{
		http:   &http.Client{Timeout: 30 * time.Second},
		cfg:    cfg,
		logger: logger,
	}
}

func (c *Client) baseURL(creds Credentials) string {
	if creds.Sandbox {
		return c.cfg.SandboxURL
	}
	return c.cfg.ProductionURL
}

// authHeaders sets the upstream's authkey header: base64(client_id:secret).
func authHeaders(req *http.Request, creds Credentials) {
	auth := base64.StdEncoding.EncodeToString([]byte(creds.ClientID + ":" + creds.Secret))
	req.Header.Set("authkey", auth)
	req.Header.Set("Content-Type", "application/json")
}

// Init starts a payment on the initialize or hosted-payment endpoint.
func (c *Client) Init(ctx context.Context, creds Credentials, req InitRequest, flow InitFlow, span *interaction.Span) (*Envelope[InitData], error) {
	url := fmt.Sprintf("%s/%s", c.baseURL(creds), flow)
	c.logger.Debugw("gateway payment init request", "url", url, "data", mask.Value(req))
	return send[InitData](ctx, c, http.MethodPost, url, creds, req, span)
}

// Process submits card data for a previously initialized payment.
func (c *Client) Process(ctx context.Context, creds Credentials, req ProcessRequest, span *interaction.Span) (*Envelope[ProcessData], error) {
	url := c.baseURL(creds) + "/process"
	c.logger.Debugw("gateway payment process request", "url", url, "data", mask.Value(req))
	return send[ProcessData](ctx, c, http.MethodPost, url, creds, req, span)
}

// Status polls the upstream for the current state of a payment reference.
func (c *Client) Status(ctx context.Context, creds Credentials, reference string, span *interaction.Span) (*Envelope[StatusData], error) {
	url := fmt.Sprintf("%s/status/%s", c.baseURL(creds), reference)
	c.logger.Debugw("gateway status request", "url", url)
	return send[StatusData](ctx, c, http.MethodGet, url, creds, nil, span)
}

// send runs one upstream round trip: record the masked request on the span,
// post the unmasked body, record the status code on receipt and the masked
// body after decoding. Failures leave the span partially populated; the
// caller still finalizes it into a usable log.
func send[T any](ctx context.Context, c *Client, method, url string, creds Credentials, body any, span *interaction.Span) (*Envelope[T], error) {
	span.SetRequest(url, mask.Value(body))

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	authHeaders(req, creds)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer res.Body.Close()
	span.SetResponseStatus(res.StatusCode)

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &DecodeError{Err: err}
	}
	secured := mask.Secure(decoded)
	span.SetResponse(secured)
	c.logger.Debugw("gateway response", "url", url, "status", res.StatusCode, "data", secured)

	// The upstream signals errors by body shape, not status code.
	var probe struct {
		ResponseCode *string `json:"responseCode"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil && probe.ResponseCode != nil {
		var upstream ErrorResponse
		if err := json.Unmarshal(raw, &upstream); err != nil {
			return nil, &DecodeError{Err: err}
		}
		return nil, &UpstreamError{Response: upstream}
	}

	var env Envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &env, nil
}
