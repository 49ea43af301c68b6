package repository

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/questline/pricing-planner/internal/domain/model"
)

// FxSnapshotHolder keeps the latest FX state under last-request-wins rules.
//
// Every fetch calls Begin first and reports its outcome with the returned
// sequence number. Only the most recently issued sequence may update the
// snapshot; results of superseded fetches are dropped. A failed latest fetch
// clears the rates, so a stale table is never served after an explicit
// refresh failed.
type FxSnapshotHolder struct {
	issued    atomic.Uint64
	committed atomic.Uint64
	stale     atomic.Uint64

	mu       sync.RWMutex
	snapshot model.FxSnapshot

	now func() time.Time
}

// NewFxSnapshotHolder returns a holder in the FxStatusNone state.
func NewFxSnapshotHolder(opts ...SnapshotOption) *FxSnapshotHolder {
	h := &FxSnapshotHolder{
		snapshot: model.FxSnapshot{Status: model.FxStatusNone},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Begin issues the sequence number for a new fetch.
func (h *FxSnapshotHolder) Begin(_ context.Context) uint64 {
	return h.issued.Add(1)
}

// Commit stores rates fetched under seq. It returns false, leaving the
// snapshot untouched, when a newer fetch has been issued since.
func (h *FxSnapshotHolder) Commit(_ context.Context, seq uint64, rates model.FxRateTable) bool {
	return h.apply(seq, model.FxSnapshot{
		Sequence:  seq,
		Status:    model.FxStatusOK,
		Rates:     maps.Clone(rates),
		FetchedAt: h.now(),
	})
}

// Fail records that the fetch under seq failed. Same staleness rule as Commit.
func (h *FxSnapshotHolder) Fail(_ context.Context, seq uint64, cause error) bool {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return h.apply(seq, model.FxSnapshot{
		Sequence:  seq,
		Status:    model.FxStatusUnavailable,
		FetchedAt: h.now(),
		Err:       msg,
	})
}

func (h *FxSnapshotHolder) apply(seq uint64, next model.FxSnapshot) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if seq != h.issued.Load() || seq <= h.snapshot.Sequence {
		h.stale.Add(1)
		return false
	}
	h.snapshot = next
	h.committed.Add(1)
	return true
}

// Current returns a copy of the last applied snapshot.
func (h *FxSnapshotHolder) Current(_ context.Context) model.FxSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := h.snapshot
	out.Rates = maps.Clone(h.snapshot.Rates)
	return out
}

// SnapshotStats are counters for /stats.
type SnapshotStats struct {
	Issued    uint64 `json:"issued"`
	Committed uint64 `json:"committed"`
	Stale     uint64 `json:"stale"`
}

// Stats returns the holder counters.
func (h *FxSnapshotHolder) Stats() SnapshotStats {
	return SnapshotStats{
		Issued:    h.issued.Load(),
		Committed: h.committed.Load(),
		Stale:     h.stale.Load(),
	}
}
