package domain

// AuthorizationStatus is the state of a bounded-attempt verification gate
type AuthorizationStatus string

const (
	AuthorizationPending    AuthorizationStatus = "pending"
	AuthorizationVerifying  AuthorizationStatus = "verifying"
	AuthorizationAuthorized AuthorizationStatus = "authorized"
	AuthorizationLocked     AuthorizationStatus = "locked"
)

// AuthorizationChannel identifies which secret the gate verifies
type AuthorizationChannel string

const (
	ChannelMPIN AuthorizationChannel = "mpin"
	ChannelOTP  AuthorizationChannel = "otp"
)

// AuthorizationAttemptState is a snapshot of a gate instance. Created when
// a flow enters an authorization step, discarded when it leaves.
type AuthorizationAttemptState struct {
	Channel      AuthorizationChannel
	AttemptsUsed int
	MaxAttempts  int
	Status       AuthorizationStatus
}

// AttemptsRemaining returns the attempt budget still available
func (s AuthorizationAttemptState) AttemptsRemaining() int {
	remaining := s.MaxAttempts - s.AttemptsUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}
