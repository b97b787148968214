package methods

import (
	"context"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
)

// optionHandler covers the payment types whose flow is "pick an option,
// submit": UPI, net-banking, and wallets. The option catalog (apps, banks,
// wallets) comes from the backend and is injected at construction.
type optionHandler struct {
	methodType domain.MethodType
	fieldName  string
	options    []ports.PresentationOption
	processor  ports.PaymentProcessor
	logger     ports.Logger
}

// NewUPIHandler creates a handler for UPI app payments
func NewUPIHandler(processor ports.PaymentProcessor, logger ports.Logger, apps []ports.PresentationOption) ports.MethodHandler {
	return &optionHandler{
		methodType: domain.MethodUPI,
		fieldName:  "upi_app_id",
		options:    apps,
		processor:  processor,
		logger:     logger,
	}
}

// NewNetBankingHandler creates a handler for net-banking payments
func NewNetBankingHandler(processor ports.PaymentProcessor, logger ports.Logger, banks []ports.PresentationOption) ports.MethodHandler {
	return &optionHandler{
		methodType: domain.MethodNetBanking,
		fieldName:  "bank_id",
		options:    banks,
		processor:  processor,
		logger:     logger,
	}
}

// NewWalletHandler creates a handler for wallet payments
func NewWalletHandler(processor ports.PaymentProcessor, logger ports.Logger, wallets []ports.PresentationOption) ports.MethodHandler {
	return &optionHandler{
		methodType: domain.MethodWallet,
		fieldName:  "wallet_id",
		options:    wallets,
		processor:  processor,
		logger:     logger,
	}
}

func (h *optionHandler) Type() domain.MethodType {
	return h.methodType
}

func (h *optionHandler) Prepare(ctx context.Context, order domain.Order) (*ports.PresentationData, error) {
	return &ports.PresentationData{
		MethodType: h.methodType,
		Options:    h.options,
	}, nil
}

func (h *optionHandler) Submit(ctx context.Context, input ports.MethodInput) (*domain.PaymentResult, error) {
	selected := input.Fields[h.fieldName]
	if selected == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationMissingField, h.fieldName+" is required")
	}
	if !h.optionEnabled(selected) {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed, "selected option is not available").
			WithDetail(h.fieldName, selected)
	}

	payload := map[string]string{
		h.fieldName: selected,
		"order_id":  input.Order.ID,
		"amount":    input.Order.Amount.StringFixed(2),
		"currency":  input.Order.Currency,
	}
	for k, v := range input.Fields {
		if _, exists := payload[k]; !exists {
			payload[k] = v
		}
	}

	resp, err := h.processor.ProcessPayment(ctx, h.methodType, payload)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeProcessorError, "payment failed", err)
	}
	return &domain.PaymentResult{
		Status:        resp.Status,
		TransactionID: resp.TransactionID,
		Message:       resp.Message,
	}, nil
}

func (h *optionHandler) optionEnabled(id string) bool {
	for _, opt := range h.options {
		if opt.ID == id {
			return opt.Enabled
		}
	}
	return false
}
