package mock

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
)

// Collaborators is a deterministic in-memory implementation of every
// external collaborator the core depends on. It stands in for the payment
// SDK backend during local development and in tests; responses are canned
// and returned instantly. NOT for production use.
type Collaborators struct {
	Catalog   []domain.PaymentMethod
	Cards     map[string][]domain.SavedCard
	Providers []domain.EMIProvider
	// Secrets maps channel to the one accepted secret per channel
	Secrets map[domain.AuthorizationChannel]string
}

// NewCollaborators builds the default development fixture: the full method
// catalog with one disabled entry, two EMI providers, one customer with
// saved cards, MPIN "1234" and OTP "123456".
func NewCollaborators() *Collaborators {
	return &Collaborators{
		Catalog: []domain.PaymentMethod{
			{ID: "pm_card", Type: domain.MethodCard, Name: "Saved Cards", Enabled: true},
			{ID: "pm_upi", Type: domain.MethodUPI, Name: "UPI", Enabled: true},
			{ID: "pm_netbanking", Type: domain.MethodNetBanking, Name: "Net Banking", Enabled: true},
			{ID: "pm_wallet", Type: domain.MethodWallet, Name: "Wallets", Enabled: true},
			{ID: "pm_emi", Type: domain.MethodEMI, Name: "EMI", Enabled: true},
			{ID: "pm_fxdebit", Type: domain.MethodFXDebitCard, Name: "FX Debit Card", Enabled: true},
			{ID: "pm_paylater", Type: domain.MethodWallet, Name: "Pay Later", Enabled: false},
		},
		Cards: map[string][]domain.SavedCard{
			"cust_1": {
				{Token: "tok_visa_4242", LastFour: "4242", Brand: "visa", ExpiryMonth: 12, ExpiryYear: 2027},
				{Token: "tok_mc_4444", LastFour: "4444", Brand: "mastercard", ExpiryMonth: 6, ExpiryYear: 2026},
			},
		},
		Providers: []domain.EMIProvider{
			{
				ID:               "hdfc",
				Name:             "HDFC Bank",
				MinAmount:        decimal.NewFromInt(1000),
				MaxAmount:        decimal.NewFromInt(500000),
				SupportedTenures: []int{3, 6, 9, 12},
				InterestRates: map[int]decimal.Decimal{
					3:  decimal.NewFromInt(12),
					6:  decimal.NewFromInt(13),
					9:  decimal.NewFromInt(14),
					12: decimal.NewFromInt(15),
				},
				ProcessingFee: decimal.NewFromInt(199),
				Enabled:       true,
			},
			{
				ID:               "icici",
				Name:             "ICICI Bank",
				MinAmount:        decimal.NewFromInt(3000),
				MaxAmount:        decimal.NewFromInt(300000),
				SupportedTenures: []int{3, 6, 12},
				InterestRates: map[int]decimal.Decimal{
					3:  decimal.NewFromFloat(11.5),
					6:  decimal.NewFromFloat(12.5),
					12: decimal.NewFromFloat(14.5),
				},
				ProcessingFee: decimal.NewFromInt(149),
				Enabled:       true,
			},
		},
		Secrets: map[domain.AuthorizationChannel]string{
			domain.ChannelMPIN: "1234",
			domain.ChannelOTP:  "123456",
		},
	}
}

// ListMethods returns the canned method catalog
func (c *Collaborators) ListMethods(ctx context.Context, customerID string) ([]domain.PaymentMethod, error) {
	return append([]domain.PaymentMethod(nil), c.Catalog...), nil
}

// ListSavedCards returns the canned cards for a customer
func (c *Collaborators) ListSavedCards(ctx context.Context, customerID string) ([]domain.SavedCard, error) {
	return append([]domain.SavedCard(nil), c.Cards[customerID]...), nil
}

// VerifySecret accepts only the configured secret for the channel
func (c *Collaborators) VerifySecret(ctx context.Context, channel domain.AuthorizationChannel, secret string) (bool, error) {
	return c.Secrets[channel] == secret, nil
}

// ProcessPayment approves everything unless the payload asks for a
// different outcome via the "simulate" field.
func (c *Collaborators) ProcessPayment(ctx context.Context, methodType domain.MethodType, payload map[string]string) (*ports.ProcessorResponse, error) {
	switch strings.ToLower(payload["simulate"]) {
	case "failure":
		return &ports.ProcessorResponse{
			Status:  domain.PaymentFailure,
			Message: "payment declined by simulation",
		}, nil
	case "requires_action":
		return &ports.ProcessorResponse{
			Status:        domain.PaymentRequiresAction,
			TransactionID: "txn_" + uuid.New().String(),
			Message:       "additional verification required",
		}, nil
	}
	return &ports.ProcessorResponse{
		Status:        domain.PaymentSuccess,
		TransactionID: "txn_" + uuid.New().String(),
		Message:       "approved",
	}, nil
}

// GetProviders returns the canned lender tables
func (c *Collaborators) GetProviders(ctx context.Context) ([]domain.EMIProvider, error) {
	return append([]domain.EMIProvider(nil), c.Providers...), nil
}

// UPIApps is the development UPI app catalog
func UPIApps() []ports.PresentationOption {
	return []ports.PresentationOption{
		{ID: "gpay", Label: "Google Pay", Enabled: true},
		{ID: "phonepe", Label: "PhonePe", Enabled: true},
		{ID: "paytm", Label: "Paytm", Enabled: true},
		{ID: "bhim", Label: "BHIM", Enabled: false},
	}
}

// Banks is the development net-banking catalog
func Banks() []ports.PresentationOption {
	return []ports.PresentationOption{
		{ID: "hdfc", Label: "HDFC Bank", Enabled: true},
		{ID: "icici", Label: "ICICI Bank", Enabled: true},
		{ID: "sbi", Label: "State Bank of India", Enabled: true},
		{ID: "kotak", Label: "Kotak Mahindra Bank", Enabled: true},
	}
}

// Wallets is the development wallet catalog
func Wallets() []ports.PresentationOption {
	return []ports.PresentationOption{
		{ID: "paytm_wallet", Label: "Paytm Wallet", Enabled: true},
		{ID: "amazon_pay", Label: "Amazon Pay", Enabled: true},
		{ID: "mobikwik", Label: "MobiKwik", Enabled: false},
	}
}

// FXCurrencies is the development FX wallet catalog
func FXCurrencies() []ports.PresentationOption {
	return []ports.PresentationOption{
		{ID: "USD", Label: "US Dollar", Enabled: true},
		{ID: "EUR", Label: "Euro", Enabled: true},
		{ID: "GBP", Label: "British Pound", Enabled: true},
	}
}
