package contracts

import (
	"context"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/dto/requests"
)

type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *models.Withdrawal) (*models.Withdrawal, error)
	FindByID(ctx context.Context, withdrawalID string) (*models.Withdrawal, error)
	FindAll(ctx context.Context, filter *requests.WithdrawalFilter) ([]models.Withdrawal, error)
	// UpdateIfStatus writes the withdrawal only when the stored status equals
	// expectedStatus. It reports whether the write happened.
	UpdateIfStatus(ctx context.Context, withdrawal *models.Withdrawal, expectedStatus string) (bool, error)
}

type WithdrawalUsecase interface {
	RequestWithdrawal(ctx context.Context, principal models.Principal, request *requests.RequestWithdrawal) (*models.Withdrawal, error)
	Approve(ctx context.Context, principal models.Principal, request *requests.ApproveWithdrawal) (*models.Withdrawal, error)
	Reject(ctx context.Context, principal models.Principal, request *requests.RejectWithdrawal) (*models.Withdrawal, error)
	List(ctx context.Context, principal models.Principal, filter *requests.WithdrawalFilter) ([]models.Withdrawal, error)
}

type InvoiceGenerator interface {
	Generate(ctx context.Context, withdrawal *models.Withdrawal, doctor *models.Doctor) (string, error)
}
