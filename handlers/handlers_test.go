package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"paymaya-payments/gateway"
	"paymaya-payments/models"
	"paymaya-payments/service"
)

type stubService struct {
	checkoutReq *service.CheckoutRequest
	checkoutRes *service.CheckoutResult
	token       models.Token
	status      json.RawMessage
	statusCode  int
	statusID    string
	err         error
}

func (s *stubService) Checkout(_ context.Context, req *service.CheckoutRequest) (*service.CheckoutResult, error) {
	s.checkoutReq = req
	return s.checkoutRes, s.err
}

func (s *stubService) Tokenize(_ context.Context, _ *models.Card) (models.Token, error) {
	return s.token, s.err
}

func (s *stubService) PaymentStatus(_ context.Context, id string) (int, json.RawMessage, error) {
	s.statusID = id
	code := s.statusCode
	if code == 0 {
		code = http.StatusOK
	}
	return code, s.status, s.err
}

func newRouter(svc PaymentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewPaymentHandler(svc).Register(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	w := do(newRouter(&stubService{}), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestProcessPayment(t *testing.T) {
	svc := &stubService{checkoutRes: &service.CheckoutResult{
		Reference: "ref-1",
		TokenID:   "abc123",
		Payment:   json.RawMessage(`{"id":"pay_1"}`),
	}}
	r := newRouter(svc)

	w := do(r, http.MethodPost, "/api/payments", `{
		"card": {"number":"4123450131001381","cvc":"123","expMonth":"12","expYear":"2030"},
		"buyer": {"firstName":"A","lastName":"B"},
		"amount": {"total":"100.00","currencyCode":"PHP"},
		"redirectUrls": {"success":"https://shop/ok"}
	}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"reference":"ref-1","paymentTokenId":"abc123","payment":{"id":"pay_1"}}`, w.Body.String())
	require.Equal(t, "PHP", svc.checkoutReq.Amount.CurrencyCode)
	require.Equal(t, "100", svc.checkoutReq.Amount.Total.String())
	require.Equal(t, "A", svc.checkoutReq.Buyer.FirstName)
	require.Equal(t, "B", svc.checkoutReq.Buyer.LastName)
	require.Equal(t, "https://shop/ok", svc.checkoutReq.RedirectURLs.Success)
}

func TestProcessPaymentBadJSON(t *testing.T) {
	w := do(newRouter(&stubService{}), http.MethodPost, "/api/payments", `{`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessPaymentErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"invalid card", gateway.ErrInvalidInput, http.StatusBadRequest, ""},
		{"invalid amount", service.ErrInvalidAmount, http.StatusBadRequest, ""},
		{"gateway json", &gateway.GatewayError{Op: "tokenize", Body: []byte(`{"error":"declined"}`)}, http.StatusBadGateway, `{"error":"declined"}`},
		{"gateway text", &gateway.GatewayError{Op: "tokenize", Body: []byte(`oops`)}, http.StatusBadGateway, `{"error":"oops"}`},
		{"transport", errors.New("dial tcp: refused"), http.StatusBadGateway, `{"error":"Payment gateway unavailable"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(newRouter(&stubService{err: tc.err}), http.MethodPost, "/api/payments", `{"amount":{"total":"1","currencyCode":"PHP"}}`)
			require.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				require.JSONEq(t, tc.body, w.Body.String())
			}
		})
	}
}

func TestCreateToken(t *testing.T) {
	svc := &stubService{token: models.Token{"paymentTokenId": "abc123"}}

	w := do(newRouter(svc), http.MethodPost, "/api/payment-tokens", `{"card":{"number":"4123450131001381","cvc":"123","expMonth":"12","expYear":"2030"}}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.JSONEq(t, `{"paymentTokenId":"abc123"}`, w.Body.String())
}

func TestGetPaymentStatus(t *testing.T) {
	svc := &stubService{status: json.RawMessage(`{"id":"pay_123","status":"PAYMENT_SUCCESS"}`)}

	w := do(newRouter(svc), http.MethodGet, "/api/payments/pay_123", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "pay_123", svc.statusID)
	require.JSONEq(t, `{"id":"pay_123","status":"PAYMENT_SUCCESS"}`, w.Body.String())
}

func TestCreateTokenErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"invalid card", gateway.ErrInvalidInput, http.StatusBadRequest, ""},
		{"gateway rejection", &gateway.GatewayError{Op: "tokenize", StatusCode: 401, Body: []byte(`{"code":"K001"}`)}, http.StatusBadGateway, `{"code":"K001"}`},
		{"transport", errors.New("dial tcp: refused"), http.StatusBadGateway, `{"error":"Payment gateway unavailable"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(newRouter(&stubService{err: tc.err}), http.MethodPost, "/api/payment-tokens", `{"card":{"number":"4123450131001381"}}`)
			require.Equal(t, tc.status, w.Code)
			if tc.body != "" {
				require.JSONEq(t, tc.body, w.Body.String())
			}
		})
	}
}

func TestGetPaymentStatusRelaysGatewayStatus(t *testing.T) {
	svc := &stubService{
		statusCode: http.StatusNotFound,
		status:     json.RawMessage(`{"message":"Payment not found"}`),
	}

	w := do(newRouter(svc), http.MethodGet, "/api/payments/missing", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "missing", svc.statusID)
	require.JSONEq(t, `{"message":"Payment not found"}`, w.Body.String())
}

func TestGetPaymentStatusErrors(t *testing.T) {
	w := do(newRouter(&stubService{err: errors.New("dial tcp: refused")}), http.MethodGet, "/api/payments/pay_1", "")
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.JSONEq(t, `{"error":"Payment gateway unavailable"}`, w.Body.String())

	gerr := &gateway.GatewayError{Op: "status", StatusCode: 500, Body: []byte(`{"message":"Something went wrong."}`)}
	w = do(newRouter(&stubService{err: gerr}), http.MethodGet, "/api/payments/pay_1", "")
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.JSONEq(t, `{"message":"Something went wrong."}`, w.Body.String())
}
