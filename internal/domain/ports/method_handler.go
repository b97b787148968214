package ports

import (
	"context"

	"github.com/kevin07696/checkout-service/internal/domain"
)

// PresentationData is what a handler needs the UI to render before the
// customer can submit: bank lists for net-banking, UPI apps, EMI plans.
// Exactly one of the optional fields is populated per method type.
type PresentationData struct {
	MethodType domain.MethodType
	Options    []PresentationOption
	EMIPlans   []domain.EMIPlan
	SavedCards []domain.SavedCard
}

// PresentationOption is a generic selectable entry (bank, wallet, UPI app)
type PresentationOption struct {
	ID      string
	Label   string
	Enabled bool
}

// MethodHandler is the per-payment-type adapter. The contract is uniform
// so the orchestrator only ever does a dispatch-table lookup.
type MethodHandler interface {
	Type() domain.MethodType
	Prepare(ctx context.Context, order domain.Order) (*PresentationData, error)
	Submit(ctx context.Context, input MethodInput) (*domain.PaymentResult, error)
}

// MethodInput carries method-specific submission data. EMI submissions
// identify the chosen plan through the provider_id and tenure fields; the
// handler re-derives the plan rather than trusting a client-built one.
type MethodInput struct {
	Order  domain.Order
	Fields map[string]string
	// Secret is the MPIN/OTP for handlers that gate submission on
	// authorization; empty for methods that do not require one.
	Secret string
}
