package fx

import "errors"

// Sentinel error kinds. Every failure of the FX source maps to
// ErrUnavailable; the other kinds narrow it down.
var (
	ErrUnavailable = errors.New("fx rates unavailable")
	ErrStatus      = errors.New("fx source returned non-200 status")
	ErrResult      = errors.New("fx source reported failure")
	ErrDecode      = errors.New("fx response decode failed")
)
