package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutStep represents the current state of a checkout session
type CheckoutStep string

const (
	StepIdle       CheckoutStep = "idle"
	StepMethods    CheckoutStep = "methods"
	StepPayment    CheckoutStep = "payment"
	StepProcessing CheckoutStep = "processing"
	StepResult     CheckoutStep = "result"
)

// IsTerminal reports whether the step ends the payment attempt
func (s CheckoutStep) IsTerminal() bool {
	return s == StepResult
}

// MethodType represents the payment method used
type MethodType string

const (
	MethodCard        MethodType = "card"
	MethodUPI         MethodType = "upi"
	MethodNetBanking  MethodType = "netbanking"
	MethodWallet      MethodType = "wallet"
	MethodEMI         MethodType = "emi"
	MethodFXDebitCard MethodType = "fxdebitcard"
)

// CheckoutMode selects between the condensed and the full method list
type CheckoutMode string

const (
	ModeQuick CheckoutMode = "quick"
	ModeFull  CheckoutMode = "full"
)

// PaymentMethod is a catalog entry supplied by the method lookup
// collaborator. Read-only to the core.
type PaymentMethod struct {
	ID      string
	Type    MethodType
	Name    string
	Enabled bool
}

// SavedCard is a tokenized card on file for a customer
type SavedCard struct {
	Token       string
	LastFour    string
	Brand       string
	ExpiryMonth int
	ExpiryYear  int
}

// Order describes what the customer is paying for
type Order struct {
	ID         string
	Amount     decimal.Decimal
	Currency   string
	CustomerID string
	CreatedAt  time.Time
}

// PaymentStatus is the terminal status of a payment attempt
type PaymentStatus string

const (
	PaymentSuccess        PaymentStatus = "success"
	PaymentFailure        PaymentStatus = "failure"
	PaymentRequiresAction PaymentStatus = "requires_action"
)

// PaymentResult is what a method handler returns after submission
type PaymentResult struct {
	Status        PaymentStatus
	TransactionID string
	Message       string
}

// CheckoutState is the state owned by a single orchestrator instance.
// Mutated only through the orchestrator's transition functions.
type CheckoutState struct {
	CurrentStep    CheckoutStep
	SelectedMethod *PaymentMethod
	Loading        bool
	Methods        []PaymentMethod
	SavedCards     []SavedCard
	Mode           CheckoutMode
	Order          *Order
	LastResult     *PaymentResult
}
