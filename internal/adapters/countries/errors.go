package countries

import "errors"

// Sentinel error kinds.
var (
	ErrUnavailable = errors.New("country dataset unavailable")
	ErrStatus      = errors.New("country source returned non-200 status")
	ErrDecode      = errors.New("country dataset decode failed")
	ErrEmpty       = errors.New("country dataset is empty")
)
