package methods

import (
	"context"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
	"github.com/kevin07696/checkout-service/internal/services/authorization"
)

// CardHandler processes saved-card payments gated by MPIN entry. One
// instance serves one checkout session so the authorization gate's attempt
// budget spans retries within that session.
type CardHandler struct {
	processor ports.PaymentProcessor
	lookup    ports.MethodLookup
	gate      *authorization.Gate
	logger    ports.Logger
}

// NewCardHandler creates a card handler with a fresh MPIN gate
func NewCardHandler(processor ports.PaymentProcessor, lookup ports.MethodLookup, verifier ports.SecretVerifier, logger ports.Logger, mpinLength, maxAttempts int) *CardHandler {
	return &CardHandler{
		processor: processor,
		lookup:    lookup,
		gate:      authorization.NewGate(verifier, logger, domain.ChannelMPIN, mpinLength, maxAttempts),
		logger:    logger,
	}
}

func (h *CardHandler) Type() domain.MethodType {
	return domain.MethodCard
}

// Gate exposes the MPIN gate state for UI hints (attempts remaining)
func (h *CardHandler) Gate() domain.AuthorizationAttemptState {
	return h.gate.State()
}

func (h *CardHandler) Prepare(ctx context.Context, order domain.Order) (*ports.PresentationData, error) {
	cards, err := h.lookup.ListSavedCards(ctx, order.CustomerID)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeCheckoutInitFailed, "saved card lookup failed", err)
	}
	return &ports.PresentationData{
		MethodType: domain.MethodCard,
		SavedCards: cards,
	}, nil
}

func (h *CardHandler) Submit(ctx context.Context, input ports.MethodInput) (*domain.PaymentResult, error) {
	token := input.Fields["card_token"]
	if token == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, "card_token is required")
	}

	state, err := h.gate.Submit(ctx, input.Secret)
	recordAuthOutcome(state.Channel, err)
	if err != nil {
		return nil, err
	}

	payload := map[string]string{
		"card_token": token,
		"order_id":   input.Order.ID,
		"amount":     input.Order.Amount.StringFixed(2),
		"currency":   input.Order.Currency,
	}
	resp, err := h.processor.ProcessPayment(ctx, domain.MethodCard, payload)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeProcessorError, "card payment failed", err)
	}
	return &domain.PaymentResult{
		Status:        resp.Status,
		TransactionID: resp.TransactionID,
		Message:       resp.Message,
	}, nil
}
