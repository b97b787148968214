package mocks

import (
	"context"
	"errors"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
)

// MethodLookup is a scriptable lookup collaborator
type MethodLookup struct {
	Methods    []domain.PaymentMethod
	Cards      []domain.SavedCard
	MethodsErr error
	CardsErr   error

	ListMethodsCalls    int
	ListSavedCardsCalls int
}

func (m *MethodLookup) ListMethods(ctx context.Context, customerID string) ([]domain.PaymentMethod, error) {
	m.ListMethodsCalls++
	if m.MethodsErr != nil {
		return nil, m.MethodsErr
	}
	return m.Methods, nil
}

func (m *MethodLookup) ListSavedCards(ctx context.Context, customerID string) ([]domain.SavedCard, error) {
	m.ListSavedCardsCalls++
	if m.CardsErr != nil {
		return nil, m.CardsErr
	}
	return m.Cards, nil
}

// SecretVerifier accepts one configured secret and counts invocations
type SecretVerifier struct {
	Accept string
	Err    error
	Calls  int
}

func (v *SecretVerifier) VerifySecret(ctx context.Context, channel domain.AuthorizationChannel, secret string) (bool, error) {
	v.Calls++
	if v.Err != nil {
		return false, v.Err
	}
	return secret == v.Accept, nil
}

// PaymentProcessor records the last submission and returns a scripted
// response
type PaymentProcessor struct {
	Response *ports.ProcessorResponse
	Err      error

	Calls       int
	LastType    domain.MethodType
	LastPayload map[string]string
}

func (p *PaymentProcessor) ProcessPayment(ctx context.Context, methodType domain.MethodType, payload map[string]string) (*ports.ProcessorResponse, error) {
	p.Calls++
	p.LastType = methodType
	p.LastPayload = payload
	if p.Err != nil {
		return nil, p.Err
	}
	if p.Response != nil {
		return p.Response, nil
	}
	return &ports.ProcessorResponse{
		Status:        domain.PaymentSuccess,
		TransactionID: "txn_test",
		Message:       "approved",
	}, nil
}

// EMIProviderSource returns a fixed provider set
type EMIProviderSource struct {
	Providers []domain.EMIProvider
	Err       error
	Calls     int
}

func (s *EMIProviderSource) GetProviders(ctx context.Context) ([]domain.EMIProvider, error) {
	s.Calls++
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Providers, nil
}

// ErrLookupDown simulates an unreachable backend
var ErrLookupDown = errors.New("backend unavailable")
