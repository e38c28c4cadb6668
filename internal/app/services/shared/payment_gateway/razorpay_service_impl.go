// Package payment_gateway is an HTTP client for a Razorpay-compatible
// payment gateway.
package payment_gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
	"telemed-service/internal/pkg/exceptions"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type razorpayService struct {
	baseUrl    string
	keyID      string
	keySecret  string
	httpClient *http.Client
	Log        *zap.Logger
}

type gatewayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

type gatewayRefundBody struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

func NewRazorpayService(internalConfig *config.InternalConfig, logger *zap.Logger) contracts.PaymentGatewayService {
	timeout := time.Duration(internalConfig.PaymentGateway.RequestTimeoutInSeconds) * time.Second
	return &razorpayService{
		baseUrl:    strings.TrimRight(internalConfig.PaymentGateway.BaseUrl, "/"),
		keyID:      internalConfig.PaymentGateway.KeyID,
		keySecret:  internalConfig.PaymentGateway.KeySecret,
		httpClient: &http.Client{Timeout: timeout},
		Log:        logger,
	}
}

func (s *razorpayService) IsConfigured() bool {
	return s.keyID != "" && s.keySecret != ""
}

func (s *razorpayService) KeyID() string {
	return s.keyID
}

// VerifySignature compares the client supplied signature with
// HMAC-SHA256(orderID|paymentID) keyed by the gateway secret.
func (s *razorpayService) VerifySignature(orderID, paymentID, signature string) bool {
	if s.keySecret == "" {
		return false
	}
	expected := ComputeSignature(orderID, paymentID, s.keySecret)
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}

func (s *razorpayService) CreateOrder(ctx context.Context, request *requests.GatewayOrder) (*responses.GatewayOrder, error) {
	order := new(responses.GatewayOrder)
	err := s.do(ctx, http.MethodPost, "/orders", request, order)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *razorpayService) FetchPayment(ctx context.Context, paymentID string) (*responses.GatewayPayment, error) {
	payment := new(responses.GatewayPayment)
	err := s.do(ctx, http.MethodGet, "/payments/"+paymentID, nil, payment)
	if err != nil {
		return nil, err
	}
	if payment.Status == constvars.GatewayPaymentStatusCaptured && payment.CreatedAt > 0 {
		capturedAt := time.Unix(payment.CreatedAt, 0)
		payment.CapturedAt = &capturedAt
	}
	return payment, nil
}

func (s *razorpayService) Refund(ctx context.Context, paymentID string, request *requests.GatewayRefund) (*responses.GatewayRefund, error) {
	body := new(gatewayRefundBody)
	err := s.do(ctx, http.MethodPost, "/payments/"+paymentID+"/refund", request, body)
	if err != nil {
		return nil, err
	}
	return &responses.GatewayRefund{
		ID:        body.ID,
		PaymentID: body.PaymentID,
		Amount:    body.Amount,
		Status:    body.Status,
		CreatedAt: time.Unix(body.CreatedAt, 0),
	}, nil
}

func (s *razorpayService) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	if !s.IsConfigured() {
		return exceptions.ErrPaymentGatewayNotConfigured(nil)
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return exceptions.ErrCannotMarshalJSON(err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseUrl+path, body)
	if err != nil {
		return exceptions.ErrGatewayRequest(err)
	}
	req.SetBasicAuth(s.keyID, s.keySecret)
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.Log.Error("razorpayService.do request failed",
			zap.String(constvars.LoggingMethodKey, method),
			zap.String(constvars.LoggingEndpointKey, path),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
			zap.Error(err),
		)
		return exceptions.ErrGatewayRequest(err)
	}
	defer resp.Body.Close()

	s.Log.Debug("razorpayService.do response received",
		zap.String(constvars.LoggingMethodKey, method),
		zap.String(constvars.LoggingEndpointKey, path),
		zap.Int(constvars.LoggingStatusCodeKey, resp.StatusCode),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		errBody := new(gatewayErrorBody)
		_ = json.NewDecoder(resp.Body).Decode(errBody)
		return exceptions.ErrGatewayRequest(fmt.Errorf("status %d: %s %s", resp.StatusCode, errBody.Error.Code, errBody.Error.Description))
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return exceptions.ErrGatewayRequest(err)
	}
	return nil
}

func ComputeSignature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
