package fixtures

import (
	"github.com/shopspring/decimal"

	"github.com/kevin07696/checkout-service/internal/domain"
)

// Order returns a valid order for the given amount
func Order(amount string) domain.Order {
	amt, _ := decimal.NewFromString(amount)
	return domain.Order{
		ID:         "order_1",
		Amount:     amt,
		Currency:   "INR",
		CustomerID: "cust_1",
	}
}

// Methods returns a small catalog with one disabled entry
func Methods() []domain.PaymentMethod {
	return []domain.PaymentMethod{
		{ID: "pm_card", Type: domain.MethodCard, Name: "Saved Cards", Enabled: true},
		{ID: "pm_upi", Type: domain.MethodUPI, Name: "UPI", Enabled: true},
		{ID: "pm_emi", Type: domain.MethodEMI, Name: "EMI", Enabled: true},
		{ID: "pm_disabled", Type: domain.MethodWallet, Name: "Pay Later", Enabled: false},
	}
}

// Provider returns an enabled EMI provider covering 1000..500000 with
// tenures 3, 6, 12
func Provider(id string) domain.EMIProvider {
	return domain.EMIProvider{
		ID:               id,
		Name:             id,
		MinAmount:        decimal.NewFromInt(1000),
		MaxAmount:        decimal.NewFromInt(500000),
		SupportedTenures: []int{3, 6, 12},
		InterestRates: map[int]decimal.Decimal{
			3:  decimal.NewFromInt(12),
			6:  decimal.NewFromInt(13),
			12: decimal.NewFromInt(15),
		},
		ProcessingFee: decimal.NewFromInt(99),
		Enabled:       true,
	}
}
