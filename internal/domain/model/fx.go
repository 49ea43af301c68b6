package model

import "time"

// FxRateTable maps a currency code to units of that currency per 1 USD.
// A nil table means rates are unavailable.
type FxRateTable map[string]float64

// Rate returns the rate for code. Non-positive entries count as missing.
func (t FxRateTable) Rate(code string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	r, ok := t[code]
	if !ok || r <= 0 {
		return 0, false
	}
	return r, true
}

// FxStatus describes the state of the last FX fetch.
type FxStatus string

const (
	FxStatusNone        FxStatus = "none"        // nothing fetched yet
	FxStatusOK          FxStatus = "ok"          // last fetch succeeded
	FxStatusUnavailable FxStatus = "unavailable" // last fetch failed; sticky until the next success
)

// FxSnapshot is the most recently committed FX state.
type FxSnapshot struct {
	Sequence  uint64
	Status    FxStatus
	Rates     FxRateTable
	FetchedAt time.Time
	Err       string
}

// Usable reports whether the snapshot carries rates.
func (s FxSnapshot) Usable() bool {
	return s.Status == FxStatusOK && s.Rates != nil
}
