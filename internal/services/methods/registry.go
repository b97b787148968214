package methods

import (
	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
)

// Registry is the dispatch table from method type to handler. The
// orchestrator never branches on payment type beyond a lookup here.
type Registry struct {
	handlers map[domain.MethodType]ports.MethodHandler
}

// NewRegistry builds a registry from the given handlers. Later handlers
// with a duplicate type replace earlier ones.
func NewRegistry(handlers ...ports.MethodHandler) *Registry {
	r := &Registry{handlers: make(map[domain.MethodType]ports.MethodHandler, len(handlers))}
	for _, h := range handlers {
		r.handlers[h.Type()] = h
	}
	return r
}

// Lookup returns the handler for a method type
func (r *Registry) Lookup(methodType domain.MethodType) (ports.MethodHandler, error) {
	h, ok := r.handlers[methodType]
	if !ok {
		return nil, domain.NewDomainError(domain.ErrorCodeCheckoutMethodUnknown, "no handler registered for payment method").
			WithDetail("method_type", string(methodType))
	}
	return h, nil
}
