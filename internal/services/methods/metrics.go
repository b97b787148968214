package methods

import (
	"github.com/kevin07696/checkout-service/internal/domain"
	"github.com/kevin07696/checkout-service/pkg/observability"
)

// recordAuthOutcome counts one gate submission outcome
func recordAuthOutcome(channel domain.AuthorizationChannel, err error) {
	outcome := "authorized"
	switch domain.GetErrorCode(err) {
	case "":
		if err != nil {
			outcome = "error"
		}
	case domain.ErrorCodeSecretFormat:
		outcome = "format_rejected"
	case domain.ErrorCodeAuthMismatch:
		outcome = "mismatch"
	case domain.ErrorCodeAuthLockedOut:
		outcome = "locked"
	default:
		outcome = "error"
	}
	observability.RecordAuthAttempt(string(channel), outcome)
}
