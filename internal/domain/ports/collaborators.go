package ports

import (
	"context"

	"github.com/kevin07696/checkout-service/internal/domain"
)

// MethodLookup loads the payment method catalog and saved cards for a
// customer. Backed by the payment SDK's REST API in production and by a
// deterministic fake in tests.
type MethodLookup interface {
	ListMethods(ctx context.Context, customerID string) ([]domain.PaymentMethod, error)
	ListSavedCards(ctx context.Context, customerID string) ([]domain.SavedCard, error)
}

// SecretVerifier checks a transaction-authorization secret (MPIN, OTP)
// against the backend. The gate never learns the expected value.
type SecretVerifier interface {
	VerifySecret(ctx context.Context, channel domain.AuthorizationChannel, secret string) (bool, error)
}

// ProcessorResponse is the raw response from the payment backend
type ProcessorResponse struct {
	Status        domain.PaymentStatus
	TransactionID string
	Message       string
}

// PaymentProcessor submits a payment for a given method type. The single
// point where money moves; everything else in the core is bookkeeping.
type PaymentProcessor interface {
	ProcessPayment(ctx context.Context, methodType domain.MethodType, payload map[string]string) (*ProcessorResponse, error)
}

// EMIProviderSource supplies lender tenure/rate tables
type EMIProviderSource interface {
	GetProviders(ctx context.Context) ([]domain.EMIProvider, error)
}
