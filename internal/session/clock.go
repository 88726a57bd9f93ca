package session

import "time"

// Ticker abstracts the wall-clock cadence driving the countdown so tests can
// advance time synchronously.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory builds the ticker a countdown runs on.
type TickerFactory func(interval time.Duration) Ticker

type wallTicker struct {
	ticker *time.Ticker
}

// NewWallTicker is the production TickerFactory, backed by time.Ticker.
func NewWallTicker(interval time.Duration) Ticker {
	return &wallTicker{ticker: time.NewTicker(interval)}
}

func (w *wallTicker) C() <-chan time.Time { return w.ticker.C }

func (w *wallTicker) Stop() { w.ticker.Stop() }

// ManualTicker is driven explicitly by tests.
type ManualTicker struct {
	ch chan time.Time
}

func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time, 1)}
}

func (m *ManualTicker) C() <-chan time.Time { return m.ch }

func (m *ManualTicker) Stop() {}

// Tick delivers one tick. It is dropped if nothing is listening anymore,
// which lets tests tick past expiry without blocking.
func (m *ManualTicker) Tick() {
	select {
	case m.ch <- time.Now():
	default:
	}
}
