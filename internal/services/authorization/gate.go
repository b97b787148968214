package authorization

import (
	"context"
	"fmt"
	"sync"

	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/internal/domain/ports"
)

// DefaultMaxAttempts is the attempt ceiling used when the caller does not
// configure one
const DefaultMaxAttempts = 3

// Gate is a bounded-attempt secret verification state machine. One instance
// guards one authorization step of one flow; there is deliberately no way
// to reset the attempt counter — callers discard the instance and start a
// fresh flow instead.
type Gate struct {
	mu           sync.Mutex
	verifier     ports.SecretVerifier
	logger       ports.Logger
	channel      domain.AuthorizationChannel
	secretLength int
	attemptsUsed int
	maxAttempts  int
	status       domain.AuthorizationStatus
}

// NewGate creates a gate in the pending state. secretLength is the exact
// number of digits a well-formed secret must have.
func NewGate(verifier ports.SecretVerifier, logger ports.Logger, channel domain.AuthorizationChannel, secretLength, maxAttempts int) *Gate {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Gate{
		verifier:     verifier,
		logger:       logger,
		channel:      channel,
		secretLength: secretLength,
		maxAttempts:  maxAttempts,
		status:       domain.AuthorizationPending,
	}
}

// State returns a snapshot of the gate
func (g *Gate) State() domain.AuthorizationAttemptState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return domain.AuthorizationAttemptState{
		Channel:      g.channel,
		AttemptsUsed: g.attemptsUsed,
		MaxAttempts:  g.maxAttempts,
		Status:       g.status,
	}
}

// Submit verifies one secret. A malformed secret fails fast without
// consuming an attempt or touching the verifier; a mismatch consumes an
// attempt and locks the gate permanently once the budget is spent.
func (g *Gate) Submit(ctx context.Context, secret string) (domain.AuthorizationAttemptState, error) {
	g.mu.Lock()
	switch g.status {
	case domain.AuthorizationLocked:
		state := g.snapshotLocked()
		g.mu.Unlock()
		return state, domain.NewDomainError(domain.ErrorCodeAuthLockedOut, "authorization locked, no attempts remaining").
			WithDetail("channel", string(g.channel))
	case domain.AuthorizationAuthorized:
		state := g.snapshotLocked()
		g.mu.Unlock()
		return state, nil
	case domain.AuthorizationVerifying:
		state := g.snapshotLocked()
		g.mu.Unlock()
		return state, domain.NewDomainError(domain.ErrorCodeAuthBusy, "a verification is already in flight")
	}

	if !wellFormed(secret, g.secretLength) {
		state := g.snapshotLocked()
		g.mu.Unlock()
		return state, domain.NewDomainError(domain.ErrorCodeSecretFormat,
			fmt.Sprintf("secret must be exactly %d digits", g.secretLength)).
			WithDetail("channel", string(g.channel))
	}

	g.status = domain.AuthorizationVerifying
	g.mu.Unlock()

	ok, err := g.verifier.VerifySecret(ctx, g.channel, secret)

	g.mu.Lock()
	defer g.mu.Unlock()

	if err != nil {
		// Collaborator failure is not the customer's fault; no attempt
		// is consumed and the gate stays open.
		g.status = domain.AuthorizationPending
		g.logger.Error("secret verification failed",
			ports.String("channel", string(g.channel)),
			ports.Err(err))
		return g.snapshotLocked(), domain.WrapError(domain.ErrorCodeProcessorError, "verification unavailable", err)
	}

	if ok {
		g.status = domain.AuthorizationAuthorized
		g.logger.Info("authorization succeeded",
			ports.String("channel", string(g.channel)),
			ports.Int("attempts_used", g.attemptsUsed))
		return g.snapshotLocked(), nil
	}

	g.attemptsUsed++
	if g.attemptsUsed >= g.maxAttempts {
		g.status = domain.AuthorizationLocked
		g.logger.Warn("authorization locked out",
			ports.String("channel", string(g.channel)),
			ports.Int("attempts_used", g.attemptsUsed))
		return g.snapshotLocked(), domain.NewDomainError(domain.ErrorCodeAuthLockedOut, "authorization locked, no attempts remaining").
			WithDetail("channel", string(g.channel)).
			WithDetail("attempts_remaining", 0)
	}

	g.status = domain.AuthorizationPending
	remaining := g.maxAttempts - g.attemptsUsed
	return g.snapshotLocked(), domain.NewDomainError(domain.ErrorCodeAuthMismatch,
		fmt.Sprintf("incorrect %s, %d attempts remaining", g.channel, remaining)).
		WithDetail("channel", string(g.channel)).
		WithDetail("attempts_remaining", remaining)
}

// snapshotLocked builds a state snapshot; callers must hold g.mu
func (g *Gate) snapshotLocked() domain.AuthorizationAttemptState {
	return domain.AuthorizationAttemptState{
		Channel:      g.channel,
		AttemptsUsed: g.attemptsUsed,
		MaxAttempts:  g.maxAttempts,
		Status:       g.status,
	}
}

func wellFormed(secret string, length int) bool {
	if len(secret) != length {
		return false
	}
	for _, r := range secret {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
