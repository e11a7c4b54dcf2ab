package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// WarningWindow is how long before expiry the renewal prompt appears.
const WarningWindow = 5 * time.Minute

// TickInterval is the cadence of the expiry check while a session exists.
const TickInterval = time.Second

// Remaining returns the time left until expiresAt.
func Remaining(expiresAt, now time.Time) time.Duration {
	return expiresAt.Sub(now)
}

// InWarningWindow reports whether remaining is at or inside the warning window.
func InWarningWindow(remaining time.Duration) bool {
	return remaining <= WarningWindow
}

// IsExpired reports whether remaining has reached zero.
func IsExpired(remaining time.Duration) bool {
	return remaining <= 0
}

// StateFor maps remaining time onto the clock-driven states.
func StateFor(remaining time.Duration) State {
	switch {
	case IsExpired(remaining):
		return StateExpired
	case InWarningWindow(remaining):
		return StateWarning
	default:
		return StateActive
	}
}

// Clamp never lets a negative duration reach the display.
func Clamp(remaining time.Duration) time.Duration {
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ExpiryFromToken reads the exp claim of a JWT without verifying its
// signature. Verification is the server's job.
func ExpiryFromToken(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", ErrMalformedToken)
	}
	return exp.Time, nil
}
