package domain

import "github.com/shopspring/decimal"

// EMIProvider is the tenure/rate/fee table for one lender.
// Immutable reference data supplied by the provider source collaborator.
type EMIProvider struct {
	ID               string
	Name             string
	MinAmount        decimal.Decimal
	MaxAmount        decimal.Decimal
	SupportedTenures []int
	// InterestRates maps tenure in months to annual rate percent
	InterestRates map[int]decimal.Decimal
	ProcessingFee decimal.Decimal
	Enabled       bool
}

// SupportsTenure reports whether the provider offers the given tenure
func (p *EMIProvider) SupportsTenure(tenure int) bool {
	for _, t := range p.SupportedTenures {
		if t == tenure {
			return true
		}
	}
	return false
}

// InRange reports whether the amount falls within the provider's limits
func (p *EMIProvider) InRange(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(p.MinAmount) && amount.LessThanOrEqual(p.MaxAmount)
}

// EMIPlan is a concrete repayment option. Derived, never hand-constructed;
// treat as a value object.
type EMIPlan struct {
	ProviderID    string
	ProviderName  string
	Tenure        int
	InterestRate  decimal.Decimal
	EMIAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	ProcessingFee decimal.Decimal
}

// PaymentBreakdown is the output of the amortization formula
type PaymentBreakdown struct {
	MonthlyPayment decimal.Decimal
	TotalAmount    decimal.Decimal
	TotalInterest  decimal.Decimal
}

// EMIValidationResult reports plan validation outcomes. Returned, not
// thrown, so the caller can render inline feedback.
type EMIValidationResult struct {
	Valid  bool
	Errors []string
}

// EMIComparison contrasts an installment plan with paying in full
type EMIComparison struct {
	FullPaymentCost  decimal.Decimal
	EMITotalCost     decimal.Decimal
	ExtraCost        decimal.Decimal
	ExtraCostPercent decimal.Decimal
}
