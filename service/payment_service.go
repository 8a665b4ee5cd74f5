package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"paymaya-payments/config"
	"paymaya-payments/gateway"
	"paymaya-payments/logging"
	"paymaya-payments/models"
	"paymaya-payments/monitoring"
)

var ErrInvalidAmount = errors.New("amount must be positive and carry a currency code")

// CheckoutRequest carries everything needed to tokenize a card and pay with it
type CheckoutRequest struct {
	Card         *models.Card         `json:"card"`
	Buyer        *models.Buyer        `json:"buyer"`
	Amount       models.Amount        `json:"amount"`
	RedirectURLs *models.RedirectURLs `json:"redirectUrls,omitempty"`
}

// CheckoutResult is returned once the payment was submitted
type CheckoutResult struct {
	Reference string          `json:"reference"`
	TokenID   string          `json:"paymentTokenId"`
	Payment   json.RawMessage `json:"payment"`
}

// PaymentService runs checkouts against the gateway. It creates one gateway
// client per call, so it is safe for concurrent use.
type PaymentService struct {
	tracer   trace.Tracer
	key      string
	secret   string
	env      gateway.Environment
	redirect *models.RedirectURLs
	opts     []gateway.Option
}

// NewPaymentService creates a new payment service from the gateway settings in cfg.
// Extra options are applied after the ones derived from cfg.
func NewPaymentService(tracer trace.Tracer, cfg *config.Config, opts ...gateway.Option) *PaymentService {
	if tracer == nil {
		tracer = otel.Tracer("paymaya-payments/service")
	}

	base := []gateway.Option{
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithStrictPayments(cfg.StrictPayments),
		gateway.WithTracer(tracer),
	}
	if cfg.BaseURL != "" {
		base = append(base, gateway.WithBaseURL(cfg.BaseURL))
	}
	if metrics, err := monitoring.NewGatewayMetrics(nil); err == nil {
		base = append(base, gateway.WithMetrics(metrics))
	} else {
		logging.Warn("Gateway metrics disabled", zap.Error(err))
	}

	redirect := &models.RedirectURLs{
		Success: cfg.SuccessURL,
		Failure: cfg.FailureURL,
		Cancel:  cfg.CancelURL,
	}
	if redirect.IsZero() {
		redirect = nil
	}

	return &PaymentService{
		tracer:   tracer,
		key:      cfg.PublicKey,
		secret:   cfg.SecretKey,
		env:      gateway.EnvironmentFromFlag(cfg.Production),
		redirect: redirect,
		opts:     append(base, opts...),
	}
}

func (s *PaymentService) newClient() *gateway.Client {
	return gateway.NewClient(s.key, s.secret, s.env, s.opts...)
}

// Checkout tokenizes the card and pays with the resulting token. When the gateway
// answers the payment, the result is returned even if err is set.
func (s *PaymentService) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "checkout")
	defer span.End()

	if !req.Amount.Total.IsPositive() || req.Amount.CurrencyCode == "" {
		return nil, ErrInvalidAmount
	}

	reference := uuid.NewString()
	span.SetAttributes(
		attribute.String("checkout.reference", reference),
		attribute.String("payment.amount", req.Amount.Total.String()),
		attribute.String("payment.currency", req.Amount.CurrencyCode),
	)

	logger := logging.WithTraceContext(span).With(zap.String("reference", reference))
	logger.Info("Processing checkout",
		zap.String("amount", req.Amount.Total.String()),
		zap.String("currency", req.Amount.CurrencyCode),
	)

	client := s.newClient()
	if !req.RedirectURLs.IsZero() {
		client.SetRedirectURLs(req.RedirectURLs)
	} else if s.redirect != nil {
		client.SetRedirectURLs(s.redirect)
	}

	token, err := client.Tokenize(ctx, req.Card)
	if err != nil {
		logger.Warn("Checkout tokenization failed", zap.Error(err))
		return nil, err
	}
	tokenID, _ := token.ID()

	payment, err := client.Pay(ctx, req.Buyer, req.Amount)
	result := &CheckoutResult{
		Reference: reference,
		TokenID:   tokenID,
		Payment:   payment,
	}
	if err != nil {
		logger.Error("Checkout payment failed", zap.Error(err))
		if payment == nil {
			return nil, err
		}
		return result, err
	}

	span.AddEvent("payment_submitted")
	logger.Info("Checkout submitted")

	return result, nil
}

// Tokenize exchanges card data for a payment token
func (s *PaymentService) Tokenize(ctx context.Context, card *models.Card) (models.Token, error) {
	return s.newClient().Tokenize(ctx, card)
}

// PaymentStatus returns the gateway's status code and raw view of a payment
func (s *PaymentService) PaymentStatus(ctx context.Context, id string) (int, json.RawMessage, error) {
	return s.newClient().PaymentStatusWithCode(ctx, id)
}
