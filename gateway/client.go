package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"paymaya-payments/logging"
	"paymaya-payments/models"
	"paymaya-payments/monitoring"
)

const (
	opTokenize = "tokenize"
	opPay      = "pay"
	opStatus   = "status"

	tracerName = "paymaya-payments/gateway"
)

// Client talks to the payments API of the gateway.
//
// A Client keeps the current payment token and redirect URLs between calls, so it
// must not be shared between goroutines without external locking.
type Client struct {
	key            string
	secret         string
	env            Environment
	endpoints      Endpoints
	httpClient     *http.Client
	logger         *zap.Logger
	tracer         trace.Tracer
	metrics        *monitoring.GatewayMetrics
	strictPayments bool

	token        models.Token
	redirectURLs *models.RedirectURLs
}

// NewClient creates a client authenticating with the public key for tokenization
// and the secret key for payments. env picks the sandbox or production host.
func NewClient(key, secret string, env Environment, opts ...Option) *Client {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	endpoints := EndpointsFor(env)
	if o.baseURL != "" {
		endpoints = EndpointsForBase(o.baseURL)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   o.timeout,
		}
	}

	logger := o.logger
	if logger == nil {
		logger = logging.GetLogger()
	}

	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	metrics := o.metrics
	if metrics == nil {
		// the global meter never fails to create instruments; nil metrics are a no-op anyway
		metrics, _ = monitoring.NewGatewayMetrics(nil)
	}

	return &Client{
		key:            key,
		secret:         secret,
		env:            env,
		endpoints:      endpoints,
		httpClient:     httpClient,
		logger:         logger.With(zap.String("environment", env.String())),
		tracer:         tracer,
		metrics:        metrics,
		strictPayments: o.strictPayments,
		redirectURLs:   o.redirectURLs,
	}
}

// Environment returns the environment the client was created for
func (c *Client) Environment() Environment {
	return c.env
}

// Endpoints returns the URLs the client sends requests to
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// Tokenize exchanges card data for a payment token and keeps a copy on the client.
// A response without paymentTokenId yields a *GatewayError holding the raw body.
func (c *Client) Tokenize(ctx context.Context, card *models.Card) (models.Token, error) {
	if err := validateCard(card); err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "gateway.tokenize")
	defer span.End()
	logger := logging.WithSpan(c.logger, span)

	status, body, err := c.do(ctx, opTokenize, http.MethodPost, c.endpoints.Tokens, c.key, &models.TokenRequest{Card: *card})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "tokenize request failed")
		logger.Error("Tokenization request failed", zap.Error(err))
		return nil, &GatewayError{Op: opTokenize, Body: fallbackBody, Err: err}
	}

	token, ok := decodeToken(body)
	if !ok {
		if len(bytes.TrimSpace(body)) == 0 {
			body = fallbackBody
		}
		span.SetStatus(codes.Error, "no payment token in response")
		logger.Warn("Tokenization rejected", zap.Int("status_code", status))
		return nil, &GatewayError{Op: opTokenize, StatusCode: status, Body: body}
	}

	c.token = maps.Clone(token)
	span.SetAttributes(attribute.Bool("payment.token_received", true))
	logger.Info("Card tokenized", zap.Int("status_code", status))

	return token, nil
}

// TokenID returns the current payment token id, or false when none is set
func (c *Client) TokenID() (string, bool) {
	return c.token.ID()
}

// SetTokenID sets the token id, keeping any other token fields
func (c *Client) SetTokenID(id string) {
	if c.token == nil {
		c.token = models.Token{}
	}
	c.token[models.TokenIDKey] = id
}

// Token returns a copy of the current token
func (c *Client) Token() models.Token {
	return maps.Clone(c.token)
}

// SetToken replaces the current token with a copy of token
func (c *Client) SetToken(token models.Token) {
	c.token = maps.Clone(token)
}

func (c *Client) RedirectURLs() *models.RedirectURLs {
	return c.redirectURLs
}

func (c *Client) SetRedirectURLs(urls *models.RedirectURLs) {
	c.redirectURLs = urls
}

// Pay submits a payment with the current token and returns the raw gateway
// response. Gateway rejections are not errors unless strict payments are enabled;
// transport failures always are. The token is kept, so Pay may be repeated.
func (c *Client) Pay(ctx context.Context, buyer *models.Buyer, amount models.Amount) (json.RawMessage, error) {
	tokenID, ok := c.TokenID()
	if !ok {
		return nil, ErrNoToken
	}

	ctx, span := c.tracer.Start(ctx, "gateway.pay")
	defer span.End()
	logger := logging.WithSpan(c.logger, span)

	span.SetAttributes(
		attribute.String("payment.amount", amount.Total.String()),
		attribute.String("payment.currency", amount.CurrencyCode),
	)
	req := models.NewPayRequest(tokenID, buyer, amount, c.redirectURLs)
	status, body, err := c.do(ctx, opPay, http.MethodPost, c.endpoints.Payments, c.secret, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "pay request failed")
		logger.Error("Payment request failed", zap.Error(err))
		return nil, fmt.Errorf("paymaya pay: %w", err)
	}

	logger.Info("Payment submitted",
		zap.Int("status_code", status),
		zap.String("currency", amount.CurrencyCode),
	)
	if isSuccess(status) {
		c.metrics.RecordPaymentAmount(ctx, amount.Total.InexactFloat64(), amount.CurrencyCode)
	}

	return c.classify(opPay, status, body, span)
}

// PaymentStatus fetches a payment by id and returns the raw gateway response.
// The id is not validated.
func (c *Client) PaymentStatus(ctx context.Context, id string) (json.RawMessage, error) {
	_, body, err := c.PaymentStatusWithCode(ctx, id)
	return body, err
}

// PaymentStatusWithCode is PaymentStatus that also returns the gateway's HTTP
// status code. The code is zero on transport failures.
func (c *Client) PaymentStatusWithCode(ctx context.Context, id string) (int, json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, "gateway.status")
	defer span.End()
	logger := logging.WithSpan(c.logger, span)

	span.SetAttributes(attribute.String("payment.id", id))

	status, body, err := c.do(ctx, opStatus, http.MethodGet, c.endpoints.StatusURL(id), c.secret, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "status request failed")
		logger.Error("Payment status request failed", zap.Error(err), zap.String("payment_id", id))
		return 0, nil, fmt.Errorf("paymaya status: %w", err)
	}

	logger.Info("Payment status fetched",
		zap.Int("status_code", status),
		zap.String("payment_id", id),
	)

	res, err := c.classify(opStatus, status, body, span)
	return status, res, err
}

func (c *Client) classify(op string, status int, body []byte, span trace.Span) (json.RawMessage, error) {
	if c.strictPayments && !isSuccess(status) {
		span.SetStatus(codes.Error, "gateway rejected request")
		return body, &GatewayError{Op: op, StatusCode: status, Body: body}
	}
	return body, nil
}

// do sends one request authenticated with credential and returns the status and raw body
func (c *Client) do(ctx context.Context, op, method, url, credential string, payload any) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("error marshaling %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("error creating %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(credential, "")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordCall(ctx, op, "error", time.Since(start))
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.RecordCall(ctx, op, "error", elapsed)
		return resp.StatusCode, nil, fmt.Errorf("error reading %s response: %w", op, err)
	}

	result := "success"
	if !isSuccess(resp.StatusCode) {
		result = "failed"
	}
	c.metrics.RecordCall(ctx, op, result, elapsed)

	c.logger.Debug("Gateway call finished",
		zap.String("operation", op),
		zap.Int("status_code", resp.StatusCode),
		zap.Duration("duration", elapsed),
	)

	return resp.StatusCode, body, nil
}

func decodeToken(body []byte) (models.Token, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var token models.Token
	if err := dec.Decode(&token); err != nil {
		return nil, false
	}
	if _, ok := token.ID(); !ok {
		return nil, false
	}
	return token, true
}

func validateCard(card *models.Card) error {
	if card == nil {
		return ErrInvalidInput
	}
	var missing []string
	if strings.TrimSpace(card.Number) == "" {
		missing = append(missing, "number")
	}
	if strings.TrimSpace(card.CVC) == "" {
		missing = append(missing, "cvc")
	}
	if strings.TrimSpace(card.ExpMonth) == "" {
		missing = append(missing, "expMonth")
	}
	if strings.TrimSpace(card.ExpYear) == "" {
		missing = append(missing, "expYear")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
