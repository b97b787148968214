package checkout

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
	"github.com/kevin07696/checkout-service/internal/services/methods"
	"github.com/kevin07696/checkout-service/internal/testutil/fixtures"
	"github.com/kevin07696/checkout-service/internal/testutil/mocks"
)

func newTestOrchestrator(t *testing.T, lookup *mocks.MethodLookup, processor *mocks.PaymentProcessor) *Orchestrator {
	t.Helper()
	logger := mocks.NewLogger()
	registry := methods.NewRegistry(
		methods.NewCardHandler(processor, lookup, &mocks.SecretVerifier{Accept: "1234"}, logger, 4, 3),
		methods.NewUPIHandler(processor, logger, []ports.PresentationOption{
			{ID: "gpay", Label: "Google Pay", Enabled: true},
		}),
		methods.NewEMIHandler(processor, &mocks.EMIProviderSource{
			Providers: []domain.EMIProvider{fixtures.Provider("hdfc")},
		}, logger),
	)
	return NewOrchestrator(lookup, registry, logger)
}

func startedOrchestrator(t *testing.T, processor *mocks.PaymentProcessor) *Orchestrator {
	t.Helper()
	lookup := &mocks.MethodLookup{Methods: fixtures.Methods()}
	o := newTestOrchestrator(t, lookup, processor)
	require.NoError(t, o.StartCheckout(context.Background(), fixtures.Order("10000")))
	return o
}

func methodByID(t *testing.T, o *Orchestrator, id string) domain.PaymentMethod {
	t.Helper()
	for _, m := range o.State().Methods {
		if m.ID == id {
			return m
		}
	}
	t.Fatalf("method %s not in state", id)
	return domain.PaymentMethod{}
}

// TestStartCheckout_LoadsMethodsAndCards lands on the methods step with
// the enabled catalog
func TestStartCheckout_LoadsMethodsAndCards(t *testing.T) {
	lookup := &mocks.MethodLookup{
		Methods: fixtures.Methods(),
		Cards: []domain.SavedCard{
			{Token: "tok_1", LastFour: "4242", Brand: "visa", ExpiryMonth: 12, ExpiryYear: 2027},
		},
	}
	o := newTestOrchestrator(t, lookup, &mocks.PaymentProcessor{})

	require.NoError(t, o.StartCheckout(context.Background(), fixtures.Order("10000")))

	state := o.State()
	assert.Equal(t, domain.StepMethods, state.CurrentStep)
	assert.Equal(t, domain.ModeQuick, state.Mode)
	assert.Len(t, state.SavedCards, 1)
	for _, m := range state.Methods {
		assert.True(t, m.Enabled, "disabled methods must be filtered out")
	}
}

// TestStartCheckout_LookupFailureStaysIdle surfaces the failure and does
// not advance
func TestStartCheckout_LookupFailureStaysIdle(t *testing.T) {
	lookup := &mocks.MethodLookup{MethodsErr: mocks.ErrLookupDown}
	o := newTestOrchestrator(t, lookup, &mocks.PaymentProcessor{})

	err := o.StartCheckout(context.Background(), fixtures.Order("10000"))
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeCheckoutInitFailed))
	assert.Equal(t, domain.StepIdle, o.State().CurrentStep)
}

// TestStartCheckout_RejectsInvalidOrder validates amount and currency
func TestStartCheckout_RejectsInvalidOrder(t *testing.T) {
	o := newTestOrchestrator(t, &mocks.MethodLookup{Methods: fixtures.Methods()}, &mocks.PaymentProcessor{})

	order := fixtures.Order("0")
	err := o.StartCheckout(context.Background(), order)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeValidationAmount))

	order = fixtures.Order("100")
	order.Currency = ""
	err = o.StartCheckout(context.Background(), order)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeValidationMissingField))

	assert.Equal(t, domain.StepIdle, o.State().CurrentStep)
}

// TestSelectPaymentMethod_DisabledIsNoOp leaves the selection and step
// untouched
func TestSelectPaymentMethod_DisabledIsNoOp(t *testing.T) {
	o := startedOrchestrator(t, &mocks.PaymentProcessor{})

	disabled := domain.PaymentMethod{ID: "pm_disabled", Type: domain.MethodWallet, Name: "Pay Later", Enabled: false}
	selected, err := o.SelectPaymentMethod(disabled)
	require.NoError(t, err)
	assert.False(t, selected)

	state := o.State()
	assert.Nil(t, state.SelectedMethod)
	assert.Equal(t, domain.StepMethods, state.CurrentStep)
}

// TestSelectPaymentMethod_ReplacesSelection allows re-picking while on
// the payment step
func TestSelectPaymentMethod_ReplacesSelection(t *testing.T) {
	o := startedOrchestrator(t, &mocks.PaymentProcessor{})

	selected, err := o.SelectPaymentMethod(methodByID(t, o, "pm_card"))
	require.NoError(t, err)
	require.True(t, selected)
	assert.Equal(t, domain.StepPayment, o.State().CurrentStep)

	selected, err = o.SelectPaymentMethod(methodByID(t, o, "pm_upi"))
	require.NoError(t, err)
	require.True(t, selected)

	state := o.State()
	assert.Equal(t, domain.StepPayment, state.CurrentStep)
	assert.Equal(t, "pm_upi", state.SelectedMethod.ID)
}

// TestSelectPaymentMethod_RejectedAfterProcessing forbids selection once
// the session moved past payment
func TestSelectPaymentMethod_RejectedAfterProcessing(t *testing.T) {
	o := startedOrchestrator(t, &mocks.PaymentProcessor{})
	_, err := o.SelectPaymentMethod(methodByID(t, o, "pm_upi"))
	require.NoError(t, err)

	_, err = o.ProcessPayment(context.Background(), map[string]string{"upi_app_id": "gpay"}, "")
	require.NoError(t, err)

	_, err = o.SelectPaymentMethod(methodByID(t, o, "pm_card"))
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeCheckoutInvalidState))
}

// TestProcessPayment_RequiresPaymentStep rejects calls before a method is
// selected and never reaches the processor
func TestProcessPayment_RequiresPaymentStep(t *testing.T) {
	processor := &mocks.PaymentProcessor{}
	o := startedOrchestrator(t, processor)

	_, err := o.ProcessPayment(context.Background(), nil, "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeCheckoutInvalidState))
	assert.Equal(t, 0, processor.Calls)
	assert.Equal(t, domain.StepMethods, o.State().CurrentStep)
}

// TestProcessPayment_HappyPath lands on result with the processor's
// outcome
func TestProcessPayment_HappyPath(t *testing.T) {
	processor := &mocks.PaymentProcessor{}
	o := startedOrchestrator(t, processor)
	_, err := o.SelectPaymentMethod(methodByID(t, o, "pm_upi"))
	require.NoError(t, err)

	result, err := o.ProcessPayment(context.Background(), map[string]string{"upi_app_id": "gpay"}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, result.Status)
	assert.Equal(t, "txn_test", result.TransactionID)

	state := o.State()
	assert.Equal(t, domain.StepResult, state.CurrentStep)
	require.NotNil(t, state.SelectedMethod)
	assert.Equal(t, domain.MethodUPI, state.SelectedMethod.Type)
	require.NotNil(t, state.LastResult)
	assert.Equal(t, domain.PaymentSuccess, state.LastResult.Status)
}

// TestProcessPayment_CardWithMPIN authorizes through the gate before the
// processor is called
func TestProcessPayment_CardWithMPIN(t *testing.T) {
	processor := &mocks.PaymentProcessor{}
	o := startedOrchestrator(t, processor)
	_, err := o.SelectPaymentMethod(methodByID(t, o, "pm_card"))
	require.NoError(t, err)

	result, err := o.ProcessPayment(context.Background(),
		map[string]string{"card_token": "tok_1"}, "1234")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, result.Status)
	assert.Equal(t, domain.MethodCard, processor.LastType)
	assert.Equal(t, "tok_1", processor.LastPayload["card_token"])
}

// TestProcessPayment_WrongMPINReturnsToPayment keeps the session on the
// payment step so the customer can retry
func TestProcessPayment_WrongMPINReturnsToPayment(t *testing.T) {
	processor := &mocks.PaymentProcessor{}
	o := startedOrchestrator(t, processor)
	_, err := o.SelectPaymentMethod(methodByID(t, o, "pm_card"))
	require.NoError(t, err)

	_, err = o.ProcessPayment(context.Background(),
		map[string]string{"card_token": "tok_1"}, "9999")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeAuthMismatch))
	assert.Equal(t, 0, processor.Calls)
	assert.Equal(t, domain.StepPayment, o.State().CurrentStep)

	// Retry with the right MPIN succeeds from the same session
	result, err := o.ProcessPayment(context.Background(),
		map[string]string{"card_token": "tok_1"}, "1234")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSuccess, result.Status)
}

// TestProcessPayment_LockoutEndsOnResult treats attempt exhaustion as a
// terminal failure
func TestProcessPayment_LockoutEndsOnResult(t *testing.T) {
	processor := &mocks.PaymentProcessor{}
	o := startedOrchestrator(t, processor)
	_, err := o.SelectPaymentMethod(methodByID(t, o, "pm_card"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = o.ProcessPayment(context.Background(),
			map[string]string{"card_token": "tok_1"}, "9999")
		require.Error(t, err)
		assert.Equal(t, domain.StepPayment, o.State().CurrentStep)
	}

	result, err := o.ProcessPayment(context.Background(),
		map[string]string{"card_token": "tok_1"}, "9999")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeAuthLockedOut))
	require.NotNil(t, result)
	assert.Equal(t, domain.PaymentFailure, result.Status)
	assert.Equal(t, domain.StepResult, o.State().CurrentStep)
	assert.Equal(t, 0, processor.Calls)
}

// TestProcessPayment_RejectsConcurrentCalls allows exactly one in-flight
// payment
func TestProcessPayment_RejectsConcurrentCalls(t *testing.T) {
	release := make(chan struct{})
	lookup := &mocks.MethodLookup{Methods: fixtures.Methods()}
	logger := mocks.NewLogger()

	blocking := &blockingHandler{release: release, entered: make(chan struct{})}
	registry := methods.NewRegistry(blocking)
	o := NewOrchestrator(lookup, registry, logger)
	require.NoError(t, o.StartCheckout(context.Background(), fixtures.Order("10000")))
	_, err := o.SelectPaymentMethod(domain.PaymentMethod{ID: "pm_upi", Type: domain.MethodUPI, Enabled: true})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = o.ProcessPayment(context.Background(), nil, "")
	}()

	// Wait until the first call is inside the handler
	select {
	case <-blocking.entered:
	case <-time.After(time.Second):
		t.Fatal("first payment never started")
	}

	_, err = o.ProcessPayment(context.Background(), nil, "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrorCodeCheckoutAlreadyProcessing))

	close(release)
	wg.Wait()
	assert.Equal(t, domain.StepResult, o.State().CurrentStep)
}

// TestResetCheckout_ReturnsToIdle resets from any step
func TestResetCheckout_ReturnsToIdle(t *testing.T) {
	o := startedOrchestrator(t, &mocks.PaymentProcessor{})
	_, err := o.SelectPaymentMethod(methodByID(t, o, "pm_upi"))
	require.NoError(t, err)

	o.ResetCheckout()
	state := o.State()
	assert.Equal(t, domain.StepIdle, state.CurrentStep)
	assert.Nil(t, state.SelectedMethod)
	assert.Empty(t, state.Methods)
}

// TestResetCheckout_MidFlightDiscardsOutcome resets while a handler call
// is still running; the late completion must not move the fresh session
// to result
func TestResetCheckout_MidFlightDiscardsOutcome(t *testing.T) {
	release := make(chan struct{})
	lookup := &mocks.MethodLookup{Methods: fixtures.Methods()}
	logger := mocks.NewLogger()

	blocking := &blockingHandler{release: release, entered: make(chan struct{})}
	registry := methods.NewRegistry(blocking)
	o := NewOrchestrator(lookup, registry, logger)
	require.NoError(t, o.StartCheckout(context.Background(), fixtures.Order("10000")))
	_, err := o.SelectPaymentMethod(domain.PaymentMethod{ID: "pm_upi", Type: domain.MethodUPI, Enabled: true})
	require.NoError(t, err)

	var (
		wg     sync.WaitGroup
		result *domain.PaymentResult
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		result, _ = o.ProcessPayment(context.Background(), nil, "")
	}()

	select {
	case <-blocking.entered:
	case <-time.After(time.Second):
		t.Fatal("payment never started")
	}

	o.ResetCheckout()
	assert.Equal(t, domain.StepIdle, o.State().CurrentStep)

	close(release)
	wg.Wait()

	// The caller still gets the outcome, but the reset session is
	// untouched: no result step without a selected method.
	require.NotNil(t, result)
	assert.Equal(t, domain.PaymentSuccess, result.Status)
	state := o.State()
	assert.Equal(t, domain.StepIdle, state.CurrentStep)
	assert.Nil(t, state.SelectedMethod)
	assert.Nil(t, state.LastResult)

	// The session remains fully usable after the stale completion
	require.NoError(t, o.StartCheckout(context.Background(), fixtures.Order("10000")))
	assert.Equal(t, domain.StepMethods, o.State().CurrentStep)
}

// blockingHandler parks inside Submit until released
type blockingHandler struct {
	release <-chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (h *blockingHandler) Type() domain.MethodType { return domain.MethodUPI }

func (h *blockingHandler) Prepare(ctx context.Context, order domain.Order) (*ports.PresentationData, error) {
	return &ports.PresentationData{MethodType: domain.MethodUPI}, nil
}

func (h *blockingHandler) Submit(ctx context.Context, input ports.MethodInput) (*domain.PaymentResult, error) {
	h.once.Do(func() {
		if h.entered != nil {
			close(h.entered)
		}
	})
	<-h.release
	return &domain.PaymentResult{Status: domain.PaymentSuccess, TransactionID: "txn_blocked"}, nil
}
