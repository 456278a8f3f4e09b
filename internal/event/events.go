package event

import (
	"github.com/shopspring/decimal"

	"github.com/YashMane007/Crypto-track-pappa/internal/domain"
)

// Type defines the type of event.
type Type uint16

const (
	EvTickBatch Type = iota + 1
	EvHoldingAdded
	EvHoldingRenamed
	EvHoldingResized
	EvHoldingRemoved
	EvRateChanged
	EvRefresh
)

// Event is the interface for everything that flows through the engine inbox.
// The inbox is the single task queue: for a given symbol, updates apply in
// the order their events are dequeued.
type Event interface {
	GetType() Type
}

// TickBatch carries one feed delivery: an unordered set of ticks covering the
// whole market, of which only tracked symbols survive filtering.
type TickBatch struct {
	Ticks []domain.Tick
}

func (e *TickBatch) GetType() Type { return EvTickBatch }

// Commit is embedded by mutation events. The gateway round-trip has already
// succeeded by the time a commit is enqueued; the engine loop closes Done
// once local state reflects it and the totals notification has gone out.
type Commit struct {
	Done chan struct{}
}

func NewCommit() Commit { return Commit{Done: make(chan struct{})} }

// HoldingAdded commits a gateway-confirmed create.
type HoldingAdded struct {
	Commit
	Holding domain.Holding
}

func (e *HoldingAdded) GetType() Type { return EvHoldingAdded }

// HoldingRenamed commits a symbol change. The valuation entry migrates keys:
// the old key is deleted and a fresh, unpriced entry appears under the new
// key in the same step.
type HoldingRenamed struct {
	Commit
	ID        string
	OldSymbol string
	NewSymbol string
}

func (e *HoldingRenamed) GetType() Type { return EvHoldingRenamed }

// HoldingResized commits a quantity change; totals recompute from the cached
// last price without waiting for the feed.
type HoldingResized struct {
	Commit
	ID       string
	Quantity decimal.Decimal
}

func (e *HoldingResized) GetType() Type { return EvHoldingResized }

// HoldingRemoved commits a delete of both the holding and its valuation entry.
type HoldingRemoved struct {
	Commit
	ID string
}

func (e *HoldingRemoved) GetType() Type { return EvHoldingRemoved }

// RateChanged commits a new exchange rate. This is the one event whose effect
// fans out across every cached entry.
type RateChanged struct {
	Commit
	Rate decimal.Decimal
}

func (e *RateChanged) GetType() Type { return EvRateChanged }

// Refresh asks the engine to rebroadcast the aggregate total. Posted by the
// periodic scheduler as a safety net; recomputation itself is pure.
type Refresh struct{}

func (e *Refresh) GetType() Type { return EvRefresh }
