package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"paymaya-payments/gateway"
	"paymaya-payments/logging"
	"paymaya-payments/models"
	"paymaya-payments/service"
)

// PaymentService is what the handlers need from the service layer
type PaymentService interface {
	Checkout(ctx context.Context, req *service.CheckoutRequest) (*service.CheckoutResult, error)
	Tokenize(ctx context.Context, card *models.Card) (models.Token, error)
	PaymentStatus(ctx context.Context, id string) (int, json.RawMessage, error)
}

// PaymentHandler handles HTTP requests for payments
type PaymentHandler struct {
	paymentService PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// Register mounts the payment routes on r
func (h *PaymentHandler) Register(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	api := r.Group("/api")
	api.POST("/payment-tokens", h.CreateToken)
	api.POST("/payments", h.ProcessPayment)
	api.GET("/payments/:id", h.GetPaymentStatus)
}

// CreateToken tokenizes the card in the request body
func (h *PaymentHandler) CreateToken(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		Card *models.Card `json:"card"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := h.paymentService.Tokenize(ctx, req.Card)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, token)
}

// ProcessPayment handles checkout requests: tokenize the card, then pay
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	ctx := c.Request.Context()
	span := trace.SpanFromContext(ctx)

	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.paymentService.Checkout(ctx, &req)
	if err != nil {
		logger := logging.WithTraceContext(span)
		logger.Error("Payment processing failed",
			zap.Error(err),
			zap.String("amount", req.Amount.Total.String()),
			zap.String("currency", req.Amount.CurrencyCode),
		)
		h.writeError(c, err)
		return
	}

	span.AddEvent("payment_processed_successfully")
	c.JSON(http.StatusOK, result)
}

// GetPaymentStatus relays the gateway's view of a payment with the gateway's status code
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	status, res, err := h.paymentService.PaymentStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Data(status, "application/json", res)
}

// HealthCheck handles health check requests
func (h *PaymentHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *PaymentHandler) writeError(c *gin.Context, err error) {
	var gerr *gateway.GatewayError
	switch {
	case errors.Is(err, gateway.ErrInvalidInput), errors.Is(err, gateway.ErrNoToken), errors.Is(err, service.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &gerr):
		if json.Valid(gerr.Body) {
			c.Data(http.StatusBadGateway, "application/json", gerr.Body)
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": string(gerr.Body)})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway unavailable"})
	}
}
