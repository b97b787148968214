package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
	"github.com/kevin07696/checkout-service/internal/services/methods"
	"github.com/kevin07696/checkout-service/pkg/observability"
)

// Orchestrator sequences one checkout session through
// idle → methods → payment → processing → result. It owns the checkout
// state exclusively; callers observe it through State() snapshots. The
// orchestrator performs no I/O itself — the only external effects are the
// collaborator calls made by the active method handler.
type Orchestrator struct {
	mu       sync.Mutex
	lookup   ports.MethodLookup
	registry *methods.Registry
	logger   ports.Logger

	state      domain.CheckoutState
	processing bool
	generation uint64
}

// NewOrchestrator creates an idle orchestrator for a single session
func NewOrchestrator(lookup ports.MethodLookup, registry *methods.Registry, logger ports.Logger) *Orchestrator {
	return &Orchestrator{
		lookup:   lookup,
		registry: registry,
		logger:   logger,
		state:    domain.CheckoutState{CurrentStep: domain.StepIdle, Mode: domain.ModeFull},
	}
}

// State returns a copy of the current checkout state
func (o *Orchestrator) State() domain.CheckoutState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) snapshotLocked() domain.CheckoutState {
	state := o.state
	state.Methods = append([]domain.PaymentMethod(nil), o.state.Methods...)
	state.SavedCards = append([]domain.SavedCard(nil), o.state.SavedCards...)
	if o.state.SelectedMethod != nil {
		selected := *o.state.SelectedMethod
		state.SelectedMethod = &selected
	}
	if o.state.LastResult != nil {
		result := *o.state.LastResult
		state.LastResult = &result
	}
	return state
}

// StartCheckout resets the session, loads the method catalog and saved
// cards, and moves to the methods step. On lookup failure the session
// stays idle and the error is surfaced to the caller.
func (o *Orchestrator) StartCheckout(ctx context.Context, order domain.Order) error {
	if order.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.NewDomainError(domain.ErrorCodeValidationAmount, "order amount must be positive").
			WithDetail("amount", order.Amount.String())
	}
	if order.Currency == "" {
		return domain.NewDomainError(domain.ErrorCodeValidationMissingField, "currency is required")
	}

	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return domain.NewDomainError(domain.ErrorCodeCheckoutAlreadyProcessing, "a payment is already being processed")
	}
	o.state = domain.CheckoutState{CurrentStep: domain.StepIdle, Mode: domain.ModeFull, Loading: true}
	o.mu.Unlock()

	catalog, err := o.lookup.ListMethods(ctx, order.CustomerID)
	if err != nil {
		o.mu.Lock()
		o.state = domain.CheckoutState{CurrentStep: domain.StepIdle, Mode: domain.ModeFull}
		o.mu.Unlock()
		o.logger.Error("method lookup failed", ports.Err(err))
		return domain.WrapError(domain.ErrorCodeCheckoutInitFailed, "could not load payment methods", err)
	}

	var cards []domain.SavedCard
	if order.CustomerID != "" {
		cards, err = o.lookup.ListSavedCards(ctx, order.CustomerID)
		if err != nil {
			o.mu.Lock()
			o.state = domain.CheckoutState{CurrentStep: domain.StepIdle, Mode: domain.ModeFull}
			o.mu.Unlock()
			o.logger.Error("saved card lookup failed",
				ports.String("customer_id", order.CustomerID),
				ports.Err(err))
			return domain.WrapError(domain.ErrorCodeCheckoutInitFailed, "could not load saved cards", err)
		}
	}

	enabled := make([]domain.PaymentMethod, 0, len(catalog))
	for _, m := range catalog {
		if m.Enabled {
			enabled = append(enabled, m)
		}
	}

	mode := domain.ModeFull
	if len(cards) > 0 {
		mode = domain.ModeQuick
	}

	orderCopy := order
	o.mu.Lock()
	o.state = domain.CheckoutState{
		CurrentStep: domain.StepMethods,
		Methods:     enabled,
		SavedCards:  cards,
		Mode:        mode,
		Order:       &orderCopy,
	}
	o.mu.Unlock()

	o.logger.Info("checkout started",
		ports.String("order_id", order.ID),
		ports.String("currency", order.Currency),
		ports.Int("methods", len(enabled)),
		ports.Int("saved_cards", len(cards)))
	return nil
}

// SelectPaymentMethod sets the active method and moves to the payment
// step. Selecting a disabled method is a rejected no-op, not an error;
// the return value reports whether the selection was applied.
// Re-selecting while already in the payment step replaces the selection
// without touching anything else.
func (o *Orchestrator) SelectPaymentMethod(method domain.PaymentMethod) (bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state.CurrentStep != domain.StepMethods && o.state.CurrentStep != domain.StepPayment {
		return false, domain.NewDomainError(domain.ErrorCodeCheckoutInvalidState, "method selection is only allowed before payment").
			WithDetail("current_step", string(o.state.CurrentStep))
	}
	if !method.Enabled {
		o.logger.Debug("ignoring disabled payment method",
			ports.String("method_id", method.ID))
		return false, nil
	}

	selected := method
	o.state.SelectedMethod = &selected
	o.state.CurrentStep = domain.StepPayment
	return true, nil
}

// PrepareMethod returns what the UI needs to render the payment step for
// the currently selected method
func (o *Orchestrator) PrepareMethod(ctx context.Context) (*ports.PresentationData, error) {
	o.mu.Lock()
	if o.state.CurrentStep != domain.StepPayment || o.state.SelectedMethod == nil {
		step := o.state.CurrentStep
		o.mu.Unlock()
		return nil, domain.NewDomainError(domain.ErrorCodeCheckoutInvalidState, "no payment method selected").
			WithDetail("current_step", string(step))
	}
	methodType := o.state.SelectedMethod.Type
	order := *o.state.Order
	o.mu.Unlock()

	handler, err := o.registry.Lookup(methodType)
	if err != nil {
		return nil, err
	}
	return handler.Prepare(ctx, order)
}

// ProcessPayment runs the selected method handler and lands on the result
// step exactly once, whatever the outcome. Concurrent calls while a
// payment is in flight are rejected. User-recoverable input errors (wrong
// MPIN with attempts left, malformed secret, invalid plan choice, missing
// fields) return the session to the payment step so the customer can
// correct and resubmit.
func (o *Orchestrator) ProcessPayment(ctx context.Context, fields map[string]string, secret string) (*domain.PaymentResult, error) {
	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return nil, domain.NewDomainError(domain.ErrorCodeCheckoutAlreadyProcessing, "a payment is already being processed")
	}
	if o.state.CurrentStep != domain.StepPayment || o.state.SelectedMethod == nil {
		step := o.state.CurrentStep
		o.mu.Unlock()
		return nil, domain.NewDomainError(domain.ErrorCodeCheckoutInvalidState, "payment can only be processed from the payment step").
			WithDetail("current_step", string(step))
	}

	method := *o.state.SelectedMethod
	order := *o.state.Order
	gen := o.generation
	o.processing = true
	o.state.CurrentStep = domain.StepProcessing
	o.state.Loading = true
	o.mu.Unlock()

	start := time.Now()
	result, err := o.dispatch(ctx, method, order, fields, secret)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != gen {
		// The session was reset while the handler was in flight. The
		// outcome still goes back to the caller, but it must not touch
		// the state the reset produced.
		o.logger.Warn("dropping stale payment outcome after reset",
			ports.String("method", string(method.Type)))
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	o.processing = false
	o.state.Loading = false

	if err != nil {
		if recoverable(err) {
			// Back to the payment step; the selection and attempt
			// budget survive.
			o.state.CurrentStep = domain.StepPayment
			return nil, err
		}
		o.state.CurrentStep = domain.StepResult
		o.state.LastResult = &domain.PaymentResult{
			Status:  domain.PaymentFailure,
			Message: err.Error(),
		}
		observability.RecordPayment(string(method.Type), string(domain.PaymentFailure), time.Since(start))
		o.logger.Error("payment failed",
			ports.String("method", string(method.Type)),
			ports.Err(err))
		return o.state.LastResult, err
	}

	o.state.CurrentStep = domain.StepResult
	o.state.LastResult = result
	observability.RecordPayment(string(method.Type), string(result.Status), time.Since(start))
	o.logger.Info("payment processed",
		ports.String("method", string(method.Type)),
		ports.String("status", string(result.Status)),
		ports.String("transaction_id", result.TransactionID))
	return result, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, method domain.PaymentMethod, order domain.Order, fields map[string]string, secret string) (*domain.PaymentResult, error) {
	handler, err := o.registry.Lookup(method.Type)
	if err != nil {
		return nil, err
	}
	return handler.Submit(ctx, ports.MethodInput{
		Order:  order,
		Fields: fields,
		Secret: secret,
	})
}

// ResetCheckout returns the session to idle from any step. Also used to
// step back from payment to re-pick a method via a fresh StartCheckout.
func (o *Orchestrator) ResetCheckout() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	o.processing = false
	o.state = domain.CheckoutState{CurrentStep: domain.StepIdle, Mode: domain.ModeFull}
}

// recoverable reports whether the customer can fix the problem and retry
// from the payment step
func recoverable(err error) bool {
	code := domain.GetErrorCode(err)
	switch code {
	case domain.ErrorCodeSecretFormat,
		domain.ErrorCodeAuthMismatch,
		domain.ErrorCodeAuthBusy,
		domain.ErrorCodeEMIInvalidPlan,
		domain.ErrorCodeValidationFailed,
		domain.ErrorCodeValidationAmount,
		domain.ErrorCodeValidationMissingField:
		return true
	}
	return false
}
