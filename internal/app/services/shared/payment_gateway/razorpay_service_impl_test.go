package payment_gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"telemed-service/internal/app/config"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/exceptions"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *razorpayService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	internalConfig := &config.InternalConfig{
		PaymentGateway: config.AppPaymentGateway{
			BaseUrl:                 server.URL,
			KeyID:                   "rzp_test_key",
			KeySecret:               "secret",
			RequestTimeoutInSeconds: 2,
		},
	}
	return NewRazorpayService(internalConfig, zap.NewNop()).(*razorpayService)
}

func TestRazorpayService_VerifySignature(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {})
	valid := ComputeSignature("order_1", "pay_1", "secret")

	assert.True(t, gateway.VerifySignature("order_1", "pay_1", valid))
	assert.False(t, gateway.VerifySignature("order_1", "pay_2", valid), "signature is bound to the payment id")
	assert.False(t, gateway.VerifySignature("order_1", "pay_1", ComputeSignature("order_1", "pay_1", "other")), "signature is bound to the secret")
	assert.False(t, gateway.VerifySignature("order_1", "pay_1", ""))
}

func TestRazorpayService_CreateOrder(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok, "basic auth should be set")
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)

		var body requests.GatewayOrder
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(65000), body.Amount)

		w.Header().Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
		w.Write([]byte(`{"id":"order_1","amount":65000,"currency":"INR","receipt":"r1","status":"created"}`))
	})

	order, err := gateway.CreateOrder(context.Background(), &requests.GatewayOrder{Amount: 65000, Currency: "INR", Receipt: "r1"})
	require.NoError(t, err)
	assert.Equal(t, "order_1", order.ID)
	assert.Equal(t, int64(65000), order.Amount)
}

func TestRazorpayService_FetchPayment(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/pay_1", r.URL.Path)
		w.Write([]byte(`{"id":"pay_1","order_id":"order_1","status":"captured","amount":65000,"amount_refunded":0,"method":"upi","created_at":1700000000}`))
	})

	payment, err := gateway.FetchPayment(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.Equal(t, "order_1", payment.OrderID)
	assert.Equal(t, constvars.GatewayPaymentStatusCaptured, payment.Status)
	require.NotNil(t, payment.CapturedAt, "captured payments carry a capture time")
	assert.Equal(t, int64(1700000000), payment.CapturedAt.Unix())
}

func TestRazorpayService_ErrorResponse(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"The payment has been fully refunded"}}`))
	})

	_, err := gateway.Refund(context.Background(), "pay_1", &requests.GatewayRefund{Amount: 100})
	require.Error(t, err)
	assert.True(t, exceptions.HasCode(err, exceptions.CodeGatewayError), "gateway failures carry the gateway error code")
	assert.Contains(t, err.Error(), "fully refunded")
}

func TestRazorpayService_NotConfigured(t *testing.T) {
	gateway := NewRazorpayService(&config.InternalConfig{}, zap.NewNop())

	assert.False(t, gateway.IsConfigured())
	_, err := gateway.FetchPayment(context.Background(), "pay_1")
	assert.True(t, exceptions.HasCode(err, exceptions.CodeConfigurationError))
}

func TestVerifyAuthorization(t *testing.T) {
	status := constvars.GatewayPaymentStatusCaptured
	orderID := "order_1"
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"pay_1","order_id":"` + orderID + `","status":"` + status + `","amount":65000}`))
	})
	signature := ComputeSignature("order_1", "pay_1", "secret")

	t.Run("captured payment is accepted", func(t *testing.T) {
		payment, err := VerifyAuthorization(context.Background(), gateway, "order_1", "pay_1", signature)
		require.NoError(t, err)
		assert.Equal(t, int64(65000), payment.Amount)
	})

	t.Run("bad signature is rejected before calling the gateway", func(t *testing.T) {
		_, err := VerifyAuthorization(context.Background(), gateway, "order_1", "pay_1", "deadbeef")
		assert.True(t, exceptions.HasCode(err, exceptions.CodeSignatureMismatch))
	})

	t.Run("uncaptured payment is rejected", func(t *testing.T) {
		status = "authorized"
		defer func() { status = constvars.GatewayPaymentStatusCaptured }()
		_, err := VerifyAuthorization(context.Background(), gateway, "order_1", "pay_1", signature)
		assert.True(t, exceptions.HasCode(err, exceptions.CodeGatewayError))
	})

	t.Run("payment from another order is rejected", func(t *testing.T) {
		orderID = "order_2"
		defer func() { orderID = "order_1" }()
		_, err := VerifyAuthorization(context.Background(), gateway, "order_1", "pay_1", signature)
		assert.True(t, exceptions.HasCode(err, exceptions.CodeSignatureMismatch))
	})
}
