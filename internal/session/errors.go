package session

import "errors"

var (
	// ErrNoSession indicates there is no persisted or active session.
	ErrNoSession = errors.New("no active session")

	// ErrMalformedToken indicates the token could not be decoded.
	ErrMalformedToken = errors.New("malformed session token")

	// ErrRenewalNotExtended indicates a renewal returned a token that does
	// not expire later than the one it replaces.
	ErrRenewalNotExtended = errors.New("renewed token does not extend the session")

	// ErrInvalidTransition indicates an operation not allowed in the current state.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrSessionReplaced indicates the session changed while a call was in flight.
	ErrSessionReplaced = errors.New("session replaced during renewal")
)
