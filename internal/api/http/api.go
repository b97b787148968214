package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
	"github.com/kevin07696/checkout-service/internal/services/emi"
)

// API is the HTTP binding for the checkout core. One checkout session per
// orchestrator; the session id travels in the URL.
type API struct {
	store     *SessionStore
	providers ports.EMIProviderSource
	logger    ports.Logger
}

// NewAPI creates the HTTP API
func NewAPI(store *SessionStore, providers ports.EMIProviderSource, logger ports.Logger) *API {
	return &API{
		store:     store,
		providers: providers,
		logger:    logger,
	}
}

// AppendRoutes mounts the API onto a chi router
func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/checkouts", func(r chi.Router) {
		r.Post("/", a.startCheckout)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", a.getState)
			r.Post("/method", a.selectMethod)
			r.Get("/method", a.prepareMethod)
			r.Post("/payment", a.processPayment)
			r.Post("/reset", a.resetCheckout)
			r.Delete("/", a.closeSession)
		})
	})
	r.Get("/emi/plans", a.listPlans)
	r.Get("/healthz", a.health)
}

type startCheckoutRequest struct {
	OrderID    string `json:"order_id"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	CustomerID string `json:"customer_id,omitempty"`
}

type selectMethodRequest struct {
	MethodID string `json:"method_id"`
}

type processPaymentRequest struct {
	Fields map[string]string `json:"fields"`
	Secret string            `json:"secret,omitempty"`
}

type stateResponse struct {
	SessionID      string                `json:"session_id"`
	Step           domain.CheckoutStep   `json:"step"`
	Mode           domain.CheckoutMode   `json:"mode"`
	Methods        []methodView          `json:"methods,omitempty"`
	SavedCards     []savedCardView       `json:"saved_cards,omitempty"`
	SelectedMethod *methodView           `json:"selected_method,omitempty"`
	LastResult     *domain.PaymentResult `json:"last_result,omitempty"`
}

type methodView struct {
	ID      string            `json:"id"`
	Type    domain.MethodType `json:"type"`
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
}

type savedCardView struct {
	Token    string `json:"token"`
	LastFour string `json:"last_four"`
	Brand    string `json:"brand"`
	Expiry   string `json:"expiry"`
}

type errorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (a *API) startCheckout(w http.ResponseWriter, r *http.Request) {
	var req startCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, domain.WrapError(domain.ErrorCodeValidationFailed, "malformed request body", err))
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		a.writeError(w, domain.NewDomainError(domain.ErrorCodeValidationAmount, "amount must be a decimal number").
			WithDetail("amount", req.Amount))
		return
	}

	session := a.store.Create()
	order := domain.Order{
		ID:         req.OrderID,
		Amount:     amount,
		Currency:   req.Currency,
		CustomerID: req.CustomerID,
	}
	if err := session.Orchestrator.StartCheckout(r.Context(), order); err != nil {
		a.store.Delete(session.ID)
		a.writeError(w, err)
		return
	}

	a.writeJSON(w, http.StatusCreated, a.stateView(session))
}

func (a *API) getState(w http.ResponseWriter, r *http.Request) {
	session := a.session(w, r)
	if session == nil {
		return
	}
	a.writeJSON(w, http.StatusOK, a.stateView(session))
}

func (a *API) selectMethod(w http.ResponseWriter, r *http.Request) {
	session := a.session(w, r)
	if session == nil {
		return
	}

	var req selectMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, domain.WrapError(domain.ErrorCodeValidationFailed, "malformed request body", err))
		return
	}

	state := session.Orchestrator.State()
	var method *domain.PaymentMethod
	for i := range state.Methods {
		if state.Methods[i].ID == req.MethodID {
			method = &state.Methods[i]
			break
		}
	}
	if method == nil {
		a.writeError(w, domain.NewDomainError(domain.ErrorCodeCheckoutMethodUnknown, "payment method not found").
			WithDetail("method_id", req.MethodID))
		return
	}

	selected, err := session.Orchestrator.SelectPaymentMethod(*method)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if !selected {
		a.writeError(w, domain.NewDomainError(domain.ErrorCodeValidationFailed, "payment method is not enabled").
			WithDetail("method_id", req.MethodID))
		return
	}

	a.writeJSON(w, http.StatusOK, a.stateView(session))
}

func (a *API) prepareMethod(w http.ResponseWriter, r *http.Request) {
	session := a.session(w, r)
	if session == nil {
		return
	}

	data, err := session.Orchestrator.PrepareMethod(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, data)
}

func (a *API) processPayment(w http.ResponseWriter, r *http.Request) {
	session := a.session(w, r)
	if session == nil {
		return
	}

	var req processPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, domain.WrapError(domain.ErrorCodeValidationFailed, "malformed request body", err))
		return
	}

	result, err := session.Orchestrator.ProcessPayment(r.Context(), req.Fields, req.Secret)
	if err != nil && result == nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, result)
}

func (a *API) resetCheckout(w http.ResponseWriter, r *http.Request) {
	session := a.session(w, r)
	if session == nil {
		return
	}
	session.Orchestrator.ResetCheckout()
	a.writeJSON(w, http.StatusOK, a.stateView(session))
}

func (a *API) closeSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	a.store.Delete(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listPlans(w http.ResponseWriter, r *http.Request) {
	amountParam := r.URL.Query().Get("amount")
	amount, err := decimal.NewFromString(amountParam)
	if err != nil {
		a.writeError(w, domain.NewDomainError(domain.ErrorCodeValidationAmount, "amount query parameter must be a decimal number").
			WithDetail("amount", amountParam))
		return
	}

	providers, err := a.providers.GetProviders(r.Context())
	if err != nil {
		a.writeError(w, domain.WrapError(domain.ErrorCodeCheckoutInitFailed, "provider lookup failed", err))
		return
	}

	plans, err := emi.GeneratePlans(amount, providers)
	if err != nil {
		a.writeError(w, err)
		return
	}

	type planView struct {
		domain.EMIPlan
		ExtraCost        string `json:"extra_cost"`
		ExtraCostPercent string `json:"extra_cost_percent"`
	}
	views := make([]planView, 0, len(plans))
	for _, plan := range plans {
		comparison, err := emi.CompareToFullPayment(amount, plan)
		if err != nil {
			a.writeError(w, err)
			return
		}
		views = append(views, planView{
			EMIPlan:          plan,
			ExtraCost:        comparison.ExtraCost.StringFixed(2),
			ExtraCostPercent: comparison.ExtraCostPercent.StringFixed(2),
		})
	}
	a.writeJSON(w, http.StatusOK, views)
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// session resolves the session from the URL, writing a 404 on miss
func (a *API) session(w http.ResponseWriter, r *http.Request) *Session {
	sessionID := chi.URLParam(r, "sessionID")
	session := a.store.Get(sessionID)
	if session == nil {
		a.writeError(w, domain.NewDomainError(domain.ErrorCodeCheckoutSessionNotFound, "checkout session not found").
			WithDetail("session_id", sessionID))
		return nil
	}
	return session
}

func (a *API) stateView(session *Session) stateResponse {
	state := session.Orchestrator.State()
	resp := stateResponse{
		SessionID:  session.ID,
		Step:       state.CurrentStep,
		Mode:       state.Mode,
		LastResult: state.LastResult,
	}
	for _, m := range state.Methods {
		resp.Methods = append(resp.Methods, methodView{ID: m.ID, Type: m.Type, Name: m.Name, Enabled: m.Enabled})
	}
	for _, c := range state.SavedCards {
		resp.SavedCards = append(resp.SavedCards, savedCardView{
			Token:    c.Token,
			LastFour: c.LastFour,
			Brand:    c.Brand,
			Expiry:   expiryString(c.ExpiryMonth, c.ExpiryYear),
		})
	}
	if state.SelectedMethod != nil {
		m := state.SelectedMethod
		resp.SelectedMethod = &methodView{ID: m.ID, Type: m.Type, Name: m.Name, Enabled: m.Enabled}
	}
	return resp
}

func expiryString(month, year int) string {
	if month <= 0 || year <= 0 {
		return ""
	}
	return fmt.Sprintf("%02d/%02d", month, year%100)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Error("response encoding failed", ports.Err(err))
	}
}

// writeError maps domain error codes to HTTP statuses
func (a *API) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	resp := errorResponse{Code: string(domain.ErrorCodeInternalError), Message: err.Error()}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		resp.Code = string(domainErr.Code)
		resp.Message = domainErr.Message
		resp.Details = domainErr.Details
		status = statusForCode(domainErr.Code)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.ErrorCodeCheckoutSessionNotFound, domain.ErrorCodeCheckoutMethodUnknown:
		return http.StatusNotFound
	case domain.ErrorCodeCheckoutInvalidState, domain.ErrorCodeCheckoutAlreadyProcessing, domain.ErrorCodeAuthBusy:
		return http.StatusConflict
	case domain.ErrorCodeAuthLockedOut:
		return http.StatusLocked
	case domain.ErrorCodeSecretFormat, domain.ErrorCodeAuthMismatch,
		domain.ErrorCodeEMIInvalidInput, domain.ErrorCodeEMIInvalidPlan,
		domain.ErrorCodeValidationFailed, domain.ErrorCodeValidationAmount,
		domain.ErrorCodeValidationMissingField:
		return http.StatusBadRequest
	case domain.ErrorCodeEMINoEligiblePlans:
		return http.StatusNotFound
	case domain.ErrorCodeCheckoutInitFailed, domain.ErrorCodeProcessorError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
