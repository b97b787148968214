package methods

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
	"github.com/kevin07696/checkout-service/internal/testutil/fixtures"
	"github.com/kevin07696/checkout-service/internal/testutil/mocks"
)

// TestRegistry_LookupUnknownType fails with a dispatch error
func TestRegistry_LookupUnknownType(t *testing.T) {
	registry := NewRegistry()
	_, err := registry.Lookup(domain.MethodCard)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeCheckoutMethodUnknown))
}

// TestCardHandler_SubmitRequiresToken rejects submissions without a card
func TestCardHandler_SubmitRequiresToken(t *testing.T) {
	handler := NewCardHandler(&mocks.PaymentProcessor{}, &mocks.MethodLookup{},
		&mocks.SecretVerifier{Accept: "1234"}, mocks.NewLogger(), 4, 3)

	_, err := handler.Submit(context.Background(), ports.MethodInput{
		Order:  fixtures.Order("10000"),
		Fields: map[string]string{},
		Secret: "1234",
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeValidationMissingField))
}

// TestCardHandler_SubmitChargesAfterAuthorization calls the processor
// only once the MPIN gate authorizes
func TestCardHandler_SubmitChargesAfterAuthorization(t *testing.T) {
	processor := &mocks.PaymentProcessor{}
	handler := NewCardHandler(processor, &mocks.MethodLookup{},
		&mocks.SecretVerifier{Accept: "1234"}, mocks.NewLogger(), 4, 3)

	input := ports.MethodInput{
		Order:  fixtures.Order("10000"),
		Fields: map[string]string{"card_token": "tok_visa"},
		Secret: "0000",
	}
	_, err := handler.Submit(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, 0, processor.Calls)
	assert.Equal(t, 1, handler.Gate().AttemptsUsed)

	input.Secret = "1234"
	result, err := handler.Submit(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, result.Status)
	assert.Equal(t, 1, processor.Calls)
	assert.Equal(t, "10000.00", processor.LastPayload["amount"])
}

// TestCardHandler_PrepareListsSavedCards surfaces the customer's cards
func TestCardHandler_PrepareListsSavedCards(t *testing.T) {
	lookup := &mocks.MethodLookup{Cards: []domain.SavedCard{
		{Token: "tok_1", LastFour: "4242", Brand: "visa"},
	}}
	handler := NewCardHandler(&mocks.PaymentProcessor{}, lookup,
		&mocks.SecretVerifier{Accept: "1234"}, mocks.NewLogger(), 4, 3)

	data, err := handler.Prepare(context.Background(), fixtures.Order("10000"))
	require.NoError(t, err)
	assert.Equal(t, domain.MethodCard, data.MethodType)
	assert.Len(t, data.SavedCards, 1)
}

// TestOptionHandler_SubmitValidatesSelection rejects unknown and disabled
// options before touching the processor
func TestOptionHandler_SubmitValidatesSelection(t *testing.T) {
	processor := &mocks.PaymentProcessor{}
	handler := NewNetBankingHandler(processor, mocks.NewLogger(), []ports.PresentationOption{
		{ID: "hdfc", Label: "HDFC Bank", Enabled: true},
		{ID: "closed", Label: "Closed Bank", Enabled: false},
	})

	cases := []struct {
		name   string
		fields map[string]string
		code   domain.ErrorCode
	}{
		{"missing bank", map[string]string{}, domain.ErrorCodeValidationMissingField},
		{"unknown bank", map[string]string{"bank_id": "ghost"}, domain.ErrorCodeValidationFailed},
		{"disabled bank", map[string]string{"bank_id": "closed"}, domain.ErrorCodeValidationFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := handler.Submit(context.Background(), ports.MethodInput{
				Order:  fixtures.Order("10000"),
				Fields: tc.fields,
			})
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, tc.code))
		})
	}
	assert.Equal(t, 0, processor.Calls)
}

// TestOptionHandler_SubmitPassesExtraFields forwards method fields to the
// processor payload
func TestOptionHandler_SubmitPassesExtraFields(t *testing.T) {
	processor := &mocks.PaymentProcessor{}
	handler := NewUPIHandler(processor, mocks.NewLogger(), []ports.PresentationOption{
		{ID: "gpay", Label: "Google Pay", Enabled: true},
	})

	result, err := handler.Submit(context.Background(), ports.MethodInput{
		Order:  fixtures.Order("2500"),
		Fields: map[string]string{"upi_app_id": "gpay", "vpa": "user@bank"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, result.Status)
	assert.Equal(t, domain.MethodUPI, processor.LastType)
	assert.Equal(t, "user@bank", processor.LastPayload["vpa"])
	assert.Equal(t, "2500.00", processor.LastPayload["amount"])
}

// TestEMIHandler_PrepareReturnsPlans generates one plan per tenure
func TestEMIHandler_PrepareReturnsPlans(t *testing.T) {
	source := &mocks.EMIProviderSource{Providers: []domain.EMIProvider{fixtures.Provider("hdfc")}}
	handler := NewEMIHandler(&mocks.PaymentProcessor{}, source, mocks.NewLogger())

	data, err := handler.Prepare(context.Background(), fixtures.Order("10000"))
	require.NoError(t, err)
	assert.Len(t, data.EMIPlans, 3)
}

// TestEMIHandler_SubmitDerivesAndValidatesPlan charges with the derived
// plan details
func TestEMIHandler_SubmitDerivesAndValidatesPlan(t *testing.T) {
	processor := &mocks.PaymentProcessor{}
	source := &mocks.EMIProviderSource{Providers: []domain.EMIProvider{fixtures.Provider("hdfc")}}
	handler := NewEMIHandler(processor, source, mocks.NewLogger())

	result, err := handler.Submit(context.Background(), ports.MethodInput{
		Order:  fixtures.Order("10000"),
		Fields: map[string]string{"provider_id": "hdfc", "tenure": "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, result.Status)
	assert.Equal(t, "hdfc", processor.LastPayload["provider_id"])
	assert.Equal(t, "3", processor.LastPayload["tenure"])
	assert.Equal(t, "3400.22", processor.LastPayload["emi_amount"])
}

// TestEMIHandler_SubmitRejectsUnavailablePlan fails when the pair is not
// in the generated set
func TestEMIHandler_SubmitRejectsUnavailablePlan(t *testing.T) {
	processor := &mocks.PaymentProcessor{}
	source := &mocks.EMIProviderSource{Providers: []domain.EMIProvider{fixtures.Provider("hdfc")}}
	handler := NewEMIHandler(processor, source, mocks.NewLogger())

	cases := []struct {
		name   string
		fields map[string]string
	}{
		{"unsupported tenure", map[string]string{"provider_id": "hdfc", "tenure": "7"}},
		{"unknown provider", map[string]string{"provider_id": "ghost", "tenure": "3"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := handler.Submit(context.Background(), ports.MethodInput{
				Order:  fixtures.Order("10000"),
				Fields: tc.fields,
			})
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrorCodeEMIInvalidPlan))
		})
	}
	assert.Equal(t, 0, processor.Calls)
}

// TestFXDebitCardHandler_OTPFlow gates on OTP and forwards the wallet
// currency
func TestFXDebitCardHandler_OTPFlow(t *testing.T) {
	processor := &mocks.PaymentProcessor{}
	handler := NewFXDebitCardHandler(processor, &mocks.SecretVerifier{Accept: "123456"},
		mocks.NewLogger(), []ports.PresentationOption{{ID: "USD", Label: "US Dollar", Enabled: true}}, 6, 3)

	input := ports.MethodInput{
		Order:  fixtures.Order("10000"),
		Fields: map[string]string{"wallet_currency": "USD"},
		Secret: "000000",
	}
	_, err := handler.Submit(context.Background(), input)
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeAuthMismatch))

	input.Secret = "123456"
	result, err := handler.Submit(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, result.Status)
	assert.Equal(t, "USD", processor.LastPayload["wallet_currency"])
	assert.Equal(t, domain.MethodFXDebitCard, processor.LastType)
}
