package contracts

import (
	"context"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
)

type PaymentUsecase interface {
	CreateOrder(ctx context.Context, principal models.Principal, request *requests.CreateOrder) (*responses.CreateOrder, error)
	VerifyPayment(ctx context.Context, principal models.Principal, request *requests.VerifyPayment) (*responses.VerifyPayment, error)
	ProcessRefund(ctx context.Context, principal models.Principal, request *requests.ProcessRefund) (*models.Appointment, error)
}

type PaymentGatewayService interface {
	IsConfigured() bool
	KeyID() string
	VerifySignature(orderID, paymentID, signature string) bool
	CreateOrder(ctx context.Context, request *requests.GatewayOrder) (*responses.GatewayOrder, error)
	FetchPayment(ctx context.Context, paymentID string) (*responses.GatewayPayment, error)
	Refund(ctx context.Context, paymentID string, request *requests.GatewayRefund) (*responses.GatewayRefund, error)
}
