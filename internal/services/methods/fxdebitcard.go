package methods

import (
	"context"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
	"github.com/kevin07696/checkout-service/internal/services/authorization"
)

// FXDebitCardHandler funds a payment from a multi-currency FX debit card.
// Submission is gated by OTP because the card may settle in a foreign
// currency wallet.
type FXDebitCardHandler struct {
	processor  ports.PaymentProcessor
	gate       *authorization.Gate
	logger     ports.Logger
	currencies []ports.PresentationOption
}

// NewFXDebitCardHandler creates an FX debit card handler with a fresh OTP gate
func NewFXDebitCardHandler(processor ports.PaymentProcessor, verifier ports.SecretVerifier, logger ports.Logger, currencies []ports.PresentationOption, otpLength, maxAttempts int) *FXDebitCardHandler {
	return &FXDebitCardHandler{
		processor:  processor,
		gate:       authorization.NewGate(verifier, logger, domain.ChannelOTP, otpLength, maxAttempts),
		logger:     logger,
		currencies: currencies,
	}
}

func (h *FXDebitCardHandler) Type() domain.MethodType {
	return domain.MethodFXDebitCard
}

// Gate exposes the OTP gate state for UI hints
func (h *FXDebitCardHandler) Gate() domain.AuthorizationAttemptState {
	return h.gate.State()
}

func (h *FXDebitCardHandler) Prepare(ctx context.Context, order domain.Order) (*ports.PresentationData, error) {
	return &ports.PresentationData{
		MethodType: domain.MethodFXDebitCard,
		Options:    h.currencies,
	}, nil
}

func (h *FXDebitCardHandler) Submit(ctx context.Context, input ports.MethodInput) (*domain.PaymentResult, error) {
	wallet := input.Fields["wallet_currency"]
	if wallet == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "wallet_currency is required")
	}

	state, err := h.gate.Submit(ctx, input.Secret)
	recordAuthOutcome(state.Channel, err)
	if err != nil {
		return nil, err
	}

	payload := map[string]string{
		"wallet_currency": wallet,
		"order_id":        input.Order.ID,
		"amount":          input.Order.Amount.StringFixed(2),
		"currency":        input.Order.Currency,
	}
	resp, err := h.processor.ProcessPayment(ctx, domain.MethodFXDebitCard, payload)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeProcessorError, "fx debit card payment failed", err)
	}
	return &domain.PaymentResult{
		Status:        resp.Status,
		TransactionID: resp.TransactionID,
		Message:       resp.Message,
	}, nil
}
