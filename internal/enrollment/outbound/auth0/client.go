package auth0

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shandysiswandi/mfarelay/internal/enrollment/entity"
	"github.com/shandysiswandi/mfarelay/internal/pkg/instrument"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 1 << 20 // 1MB

	pathAssociate = "/mfa/associate"
	pathToken     = "/oauth/token"
)

var (
	ErrDomainRequired        = errors.New("auth0: domain is required")
	ErrInvalidAssociation    = errors.New("auth0: association response is not a json object")
	ErrInvalidTokenResponse  = errors.New("auth0: token response is not valid json")
	errUnexpectedFieldFormat = errors.New("auth0: unexpected field format")
)

// Config configures the provider client.
type Config struct {
	// Domain is the tenant domain, e.g. "tenant.eu.auth0.com". A value that
	// already carries a scheme is used as the base URL unchanged.
	Domain       string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	// Transport overrides the base round tripper, http.DefaultTransport when nil.
	Transport http.RoundTripper
}

// Client talks to the Auth0 MFA API.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
	ins          instrument.Instrumentation
}

// NewClient builds a client whose outbound requests are traced with otelhttp.
func NewClient(cfg Config, ins instrument.Instrumentation) (*Client, error) {
	base := BaseURL(cfg.Domain)
	if base == "" {
		return nil, ErrDomainRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rt := cfg.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}

	return &Client{
		baseURL:      base,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		http: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(rt,
				otelhttp.WithTracerProvider(ins.TracerProvider()),
				otelhttp.WithMeterProvider(ins.MeterProvider()),
			),
		},
		ins: ins,
	}, nil
}

// BaseURL turns a configured domain into the provider base URL.
func BaseURL(domain string) string {
	domain = strings.TrimRight(strings.TrimSpace(domain), "/")
	if domain == "" {
		return ""
	}
	if strings.Contains(domain, "://") {
		return domain
	}
	return "https://" + domain
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("enrollment.outbound.auth0").Start(ctx, name)
}

func (c *Client) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Associate registers a new OTP authenticator on behalf of the credential owner.
func (c *Client) Associate(ctx context.Context, credential string) (assoc *entity.Association, err error) {
	ctx, span := c.startSpan(ctx, "Associate")
	defer func() { c.endSpan(span, err) }()

	payload, err := json.Marshal(map[string][]string{"authenticator_types": {entity.AuthenticatorTypeOTP}})
	if err != nil {
		return nil, &entity.UpstreamError{Op: entity.OpAssociate, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathAssociate, bytes.NewReader(payload))
	if err != nil {
		return nil, &entity.UpstreamError{Op: entity.OpAssociate, Err: err}
	}
	req.Header.Set("Authorization", credential)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req, span)
	if err != nil {
		return nil, &entity.UpstreamError{Op: entity.OpAssociate, StatusCode: status, Body: body, Err: err}
	}
	if !isSuccess(status) {
		return nil, &entity.UpstreamError{Op: entity.OpAssociate, StatusCode: status, Code: errorCode(body), Body: body}
	}

	assoc, err = decodeAssociation(body)
	if err != nil {
		return nil, &entity.UpstreamError{Op: entity.OpAssociate, StatusCode: status, Body: body, Err: err}
	}

	return assoc, nil
}

// ExchangeOTP redeems the continuation token and OTP for the provider's tokens.
func (c *Client) ExchangeOTP(ctx context.Context, in entity.Confirmation) (grant *entity.Grant, err error) {
	ctx, span := c.startSpan(ctx, "ExchangeOTP")
	defer func() { c.endSpan(span, err) }()

	form := url.Values{}
	form.Set("grant_type", entity.GrantTypeMFAOTP)
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("mfa_token", in.ContinuationToken)
	form.Set("otp", in.OTP)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathToken, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &entity.UpstreamError{Op: entity.OpExchangeOTP, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req, span)
	if err != nil {
		return nil, &entity.UpstreamError{Op: entity.OpExchangeOTP, StatusCode: status, Body: body, Err: err}
	}
	if !isSuccess(status) {
		return nil, &entity.UpstreamError{Op: entity.OpExchangeOTP, StatusCode: status, Code: errorCode(body), Body: body}
	}

	tokens := bytes.TrimSpace(body)
	if !json.Valid(tokens) {
		return nil, &entity.UpstreamError{Op: entity.OpExchangeOTP, StatusCode: status, Body: body, Err: ErrInvalidTokenResponse}
	}

	return &entity.Grant{Tokens: json.RawMessage(tokens)}, nil
}

func (c *Client) do(req *http.Request, span trace.Span) (int, []byte, error) {
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		slog.WarnContext(req.Context(), "auth0 request failed", "path", req.URL.Path, "error", err)
		return 0, nil, err
	}
	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			slog.WarnContext(req.Context(), "failed to close auth0 response body", "error", errClose)
		}
	}()

	span.SetAttributes(attribute.Int("upstream.status_code", resp.StatusCode))

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("auth0: read response body: %w", err)
	}

	slog.DebugContext(req.Context(), "auth0 response received",
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

// errorCode extracts the provider's "error" member, "" when absent.
func errorCode(body []byte) string {
	var e struct {
		Error any `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	code, _ := e.Error.(string)
	return code
}

func decodeAssociation(body []byte) (*entity.Association, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, ErrInvalidAssociation
	}

	assoc := &entity.Association{Sent: make(map[string]json.RawMessage, 3)}
	if err := takeField(fields, assoc.Sent, entity.MemberSecret, &assoc.Secret); err != nil {
		return nil, err
	}
	if err := takeField(fields, assoc.Sent, entity.MemberOOBCode, &assoc.ContinuationToken); err != nil {
		return nil, err
	}
	if err := takeField(fields, assoc.Sent, entity.MemberRecoveryCodes, &assoc.RecoveryCodes); err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		assoc.Extra = fields
	}

	return assoc, nil
}

// takeField moves fields[key] into sent and decodes it into dst. A missing
// or null member leaves dst untouched; a null one is still kept in sent.
func takeField(fields, sent map[string]json.RawMessage, key string, dst any) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	delete(fields, key)
	sent[key] = raw

	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %s", errUnexpectedFieldFormat, key)
	}
	return nil
}
