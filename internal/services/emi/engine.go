package emi

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kevin07696/checkout-service/internal/domain"
)

// minorUnitPlaces is the rounding precision for currency amounts
const minorUnitPlaces = 2

// roundingTolerance is the accepted drift between emi*tenure and the plan
// total, one currency unit
var roundingTolerance = decimal.NewFromInt(1)

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// CalculateMonthlyPayment computes a reducing-balance amortization schedule
// summary. Rate is the annual percentage; a zero rate degenerates to a
// straight principal split.
func CalculateMonthlyPayment(principal, annualRatePercent decimal.Decimal, tenureMonths int) (*domain.PaymentBreakdown, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, domain.NewDomainError(domain.ErrorCodeEMIInvalidInput, "principal must be positive").
			WithDetail("principal", principal.String())
	}
	if tenureMonths <= 0 {
		return nil, domain.NewDomainError(domain.ErrorCodeEMIInvalidInput, "tenure must be at least one month").
			WithDetail("tenure_months", tenureMonths)
	}
	if annualRatePercent.IsNegative() {
		return nil, domain.NewDomainError(domain.ErrorCodeEMIInvalidInput, "interest rate cannot be negative").
			WithDetail("annual_rate_percent", annualRatePercent.String())
	}

	tenure := decimal.NewFromInt(int64(tenureMonths))

	var monthly decimal.Decimal
	if annualRatePercent.IsZero() {
		monthly = principal.Div(tenure).Round(minorUnitPlaces)
	} else {
		// r = annual / 12 / 100, payment = P*r*(1+r)^n / ((1+r)^n - 1)
		r := annualRatePercent.Div(twelve).Div(hundred)
		factor := decimal.NewFromInt(1).Add(r).Pow(tenure)
		monthly = principal.Mul(r).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1))).Round(minorUnitPlaces)
	}

	total := monthly.Mul(tenure).Round(minorUnitPlaces)
	return &domain.PaymentBreakdown{
		MonthlyPayment: monthly,
		TotalAmount:    total,
		TotalInterest:  total.Sub(principal).Round(minorUnitPlaces),
	}, nil
}

// GeneratePlans builds one plan per eligible (provider, tenure) pair and
// returns them sorted ascending by monthly payment, ties broken by tenure
// then provider id for deterministic ordering.
func GeneratePlans(amount decimal.Decimal, providers []domain.EMIProvider) ([]domain.EMIPlan, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.NewDomainError(domain.ErrorCodeEMIInvalidInput, "amount must be positive").
			WithDetail("amount", amount.String())
	}

	plans := make([]domain.EMIPlan, 0, len(providers)*4)
	for _, provider := range providers {
		if !provider.Enabled || !provider.InRange(amount) {
			continue
		}
		for _, tenure := range provider.SupportedTenures {
			rate, ok := provider.InterestRates[tenure]
			if !ok {
				continue
			}
			breakdown, err := CalculateMonthlyPayment(amount, rate, tenure)
			if err != nil {
				return nil, err
			}
			plans = append(plans, domain.EMIPlan{
				ProviderID:    provider.ID,
				ProviderName:  provider.Name,
				Tenure:        tenure,
				InterestRate:  rate,
				EMIAmount:     breakdown.MonthlyPayment,
				TotalAmount:   breakdown.TotalAmount.Add(provider.ProcessingFee),
				ProcessingFee: provider.ProcessingFee,
			})
		}
	}

	if len(plans) == 0 {
		return nil, noEligiblePlansError(amount, providers)
	}

	sort.Slice(plans, func(i, j int) bool {
		if !plans[i].EMIAmount.Equal(plans[j].EMIAmount) {
			return plans[i].EMIAmount.LessThan(plans[j].EMIAmount)
		}
		if plans[i].Tenure != plans[j].Tenure {
			return plans[i].Tenure < plans[j].Tenure
		}
		return plans[i].ProviderID < plans[j].ProviderID
	})
	return plans, nil
}

// noEligiblePlansError distinguishes "too small" from "too large" so the UI
// can tell the customer which bound they missed.
func noEligiblePlansError(amount decimal.Decimal, providers []domain.EMIProvider) *domain.DomainError {
	var lowestMin, highestMax decimal.Decimal
	enabled := 0
	for _, provider := range providers {
		if !provider.Enabled {
			continue
		}
		if enabled == 0 {
			lowestMin = provider.MinAmount
			highestMax = provider.MaxAmount
		} else {
			if provider.MinAmount.LessThan(lowestMin) {
				lowestMin = provider.MinAmount
			}
			if provider.MaxAmount.GreaterThan(highestMax) {
				highestMax = provider.MaxAmount
			}
		}
		enabled++
	}

	err := domain.NewDomainError(domain.ErrorCodeEMINoEligiblePlans, "no installment plans available for this amount").
		WithDetail("amount", amount.String())
	if enabled == 0 {
		return err.WithDetail("reason", "no_enabled_providers")
	}
	switch {
	case amount.LessThan(lowestMin):
		err = err.WithDetail("reason", "amount_too_small").
			WithDetail("min_amount", lowestMin.String())
		err.Message = fmt.Sprintf("minimum EMI amount is %s", lowestMin.StringFixed(minorUnitPlaces))
	case amount.GreaterThan(highestMax):
		err = err.WithDetail("reason", "amount_too_large").
			WithDetail("max_amount", highestMax.String())
		err.Message = fmt.Sprintf("maximum EMI amount is %s", highestMax.StringFixed(minorUnitPlaces))
	default:
		// Amount falls in a gap between provider ranges
		err = err.WithDetail("reason", "amount_out_of_range").
			WithDetail("min_amount", lowestMin.String()).
			WithDetail("max_amount", highestMax.String())
	}
	return err
}

// ValidatePlan runs structural and business checks over a plan before the
// UI is allowed to submit it. Returns findings instead of an error so the
// caller can render them inline.
func ValidatePlan(plan domain.EMIPlan, providers []domain.EMIProvider) domain.EMIValidationResult {
	var errs []string

	var provider *domain.EMIProvider
	for i := range providers {
		if providers[i].ID == plan.ProviderID {
			provider = &providers[i]
			break
		}
	}

	if provider == nil {
		errs = append(errs, fmt.Sprintf("unknown provider %q", plan.ProviderID))
	} else {
		if !provider.Enabled {
			errs = append(errs, fmt.Sprintf("provider %q is not enabled", plan.ProviderID))
		}
		if !provider.SupportsTenure(plan.Tenure) {
			errs = append(errs, fmt.Sprintf("tenure %d is not offered by provider %q", plan.Tenure, plan.ProviderID))
		}
	}

	if plan.Tenure <= 0 {
		errs = append(errs, "tenure must be positive")
	}
	if plan.EMIAmount.IsNegative() {
		errs = append(errs, "emi amount cannot be negative")
	}
	if plan.TotalAmount.IsNegative() {
		errs = append(errs, "total amount cannot be negative")
	}
	if plan.ProcessingFee.IsNegative() {
		errs = append(errs, "processing fee cannot be negative")
	}

	// emi * tenure must reconcile with total - fee within rounding drift
	if plan.Tenure > 0 && !plan.EMIAmount.IsNegative() && !plan.TotalAmount.IsNegative() {
		installments := plan.EMIAmount.Mul(decimal.NewFromInt(int64(plan.Tenure)))
		principal := plan.TotalAmount.Sub(plan.ProcessingFee)
		if installments.Sub(principal).Abs().GreaterThan(roundingTolerance) {
			errs = append(errs, fmt.Sprintf("installments (%s) do not reconcile with plan total (%s)",
				installments.StringFixed(minorUnitPlaces), principal.StringFixed(minorUnitPlaces)))
		}
	}

	return domain.EMIValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// CompareToFullPayment quantifies what the installment plan costs over
// paying the order amount outright. A negative extra cost means the plan
// was not produced by GeneratePlans and is reported as a violation.
func CompareToFullPayment(amount decimal.Decimal, plan domain.EMIPlan) (*domain.EMIComparison, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.NewDomainError(domain.ErrorCodeEMIInvalidInput, "amount must be positive").
			WithDetail("amount", amount.String())
	}

	extra := plan.TotalAmount.Sub(amount)
	if extra.IsNegative() {
		return nil, domain.NewDomainError(domain.ErrorCodeEMIComparison, "plan total is below the order amount").
			WithDetail("amount", amount.String()).
			WithDetail("plan_total", plan.TotalAmount.String())
	}

	return &domain.EMIComparison{
		FullPaymentCost:  amount,
		EMITotalCost:     plan.TotalAmount,
		ExtraCost:        extra,
		ExtraCostPercent: extra.Div(amount).Mul(hundred).Round(minorUnitPlaces),
	}, nil
}
