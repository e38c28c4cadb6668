package payment_gateway

import (
	"context"
	"fmt"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/responses"
	"telemed-service/internal/pkg/exceptions"
)

// VerifyAuthorization checks the checkout signature and then confirms with
// the gateway that the payment belongs to the order and was captured. It
// never trusts the client's claim of success on its own.
func VerifyAuthorization(ctx context.Context, gateway contracts.PaymentGatewayService, orderID, paymentID, signature string) (*responses.GatewayPayment, error) {
	if !gateway.IsConfigured() {
		return nil, exceptions.ErrPaymentGatewayNotConfigured(nil)
	}
	if !gateway.VerifySignature(orderID, paymentID, signature) {
		return nil, exceptions.ErrSignatureMismatch(nil)
	}

	payment, err := gateway.FetchPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.OrderID != "" && payment.OrderID != orderID {
		return nil, exceptions.ErrSignatureMismatch(fmt.Errorf("payment %s belongs to order %s", paymentID, payment.OrderID))
	}
	if payment.Status != constvars.GatewayPaymentStatusCaptured {
		return nil, exceptions.ErrPaymentNotEligible(nil, payment.Status)
	}
	return payment, nil
}
