package methods

import (
	"context"
	"strconv"
	"strings"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
	"github.com/kevin07696/checkout-service/internal/services/emi"
)

// EMIHandler prepares installment plans through the EMI engine and
// validates the customer's choice before submitting. The plan is always
// re-derived from provider data, never trusted from the client.
type EMIHandler struct {
	processor ports.PaymentProcessor
	providers ports.EMIProviderSource
	logger    ports.Logger
}

// NewEMIHandler creates an EMI handler
func NewEMIHandler(processor ports.PaymentProcessor, providers ports.EMIProviderSource, logger ports.Logger) *EMIHandler {
	return &EMIHandler{
		processor: processor,
		providers: providers,
		logger:    logger,
	}
}

func (h *EMIHandler) Type() domain.MethodType {
	return domain.MethodEMI
}

func (h *EMIHandler) Prepare(ctx context.Context, order domain.Order) (*ports.PresentationData, error) {
	providers, err := h.providers.GetProviders(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeCheckoutInitFailed, "provider lookup failed", err)
	}
	plans, err := emi.GeneratePlans(order.Amount, providers)
	if err != nil {
		return nil, err
	}
	return &ports.PresentationData{
		MethodType: domain.MethodEMI,
		EMIPlans:   plans,
	}, nil
}

func (h *EMIHandler) Submit(ctx context.Context, input ports.MethodInput) (*domain.PaymentResult, error) {
	providerID := input.Fields["provider_id"]
	if providerID == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "provider_id is required")
	}
	tenure, err := strconv.Atoi(input.Fields["tenure"])
	if err != nil || tenure <= 0 {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed, "tenure must be a positive integer").
			WithDetail("tenure", input.Fields["tenure"])
	}

	providers, err := h.providers.GetProviders(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeCheckoutInitFailed, "provider lookup failed", err)
	}

	plan, err := h.derivePlan(input.Order, providers, providerID, tenure)
	if err != nil {
		return nil, err
	}

	if result := emi.ValidatePlan(*plan, providers); !result.Valid {
		return nil, domain.NewDomainError(domain.ErrorCodeEMIInvalidPlan, strings.Join(result.Errors, "; ")).
			WithDetail("provider_id", providerID).
			WithDetail("tenure", tenure)
	}

	payload := map[string]string{
		"provider_id": plan.ProviderID,
		"tenure":      strconv.Itoa(plan.Tenure),
		"emi_amount":  plan.EMIAmount.StringFixed(2),
		"plan_total":  plan.TotalAmount.StringFixed(2),
		"order_id":    input.Order.ID,
		"amount":      input.Order.Amount.StringFixed(2),
		"currency":    input.Order.Currency,
	}
	resp, err := h.processor.ProcessPayment(ctx, domain.MethodEMI, payload)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeProcessorError, "emi payment failed", err)
	}
	return &domain.PaymentResult{
		Status:        resp.Status,
		TransactionID: resp.TransactionID,
		Message:       resp.Message,
	}, nil
}

// derivePlan regenerates the plan set and picks the (provider, tenure)
// pair the customer selected
func (h *EMIHandler) derivePlan(order domain.Order, providers []domain.EMIProvider, providerID string, tenure int) (*domain.EMIPlan, error) {
	plans, err := emi.GeneratePlans(order.Amount, providers)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].ProviderID == providerID && plans[i].Tenure == tenure {
			return &plans[i], nil
		}
	}
	return nil, domain.NewDomainError(domain.ErrorCodeEMIInvalidPlan, "selected plan is not available for this amount").
		WithDetail("provider_id", providerID).
		WithDetail("tenure", tenure)
}
