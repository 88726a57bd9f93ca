package session

import (
	"sync"
	"time"
)

// Countdown decrements once per tick from a fixed starting duration and
// fires onExpire exactly once when it reaches zero. It never goes negative
// and never fires again, no matter how many ticks arrive afterwards. What
// happens on expiry is the caller's business.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	started   bool
	stopped   bool
	expired   bool
	newTicker TickerFactory
	onTick    func(remaining int)
	onExpire  func()
	done      chan struct{}
}

func NewCountdown(seconds int, newTicker TickerFactory, onTick func(int), onExpire func()) *Countdown {
	if seconds < 0 {
		seconds = 0
	}
	if newTicker == nil {
		newTicker = NewWallTicker
	}
	return &Countdown{
		remaining: seconds,
		newTicker: newTicker,
		onTick:    onTick,
		onExpire:  onExpire,
		done:      make(chan struct{}),
	}
}

// Start begins the countdown. Calling it again is a no-op: one session gets
// one ticker. A zero duration expires immediately without any tick.
func (c *Countdown) Start() {
	c.mu.Lock()
	if c.started || c.stopped {
		c.mu.Unlock()
		return
	}
	c.started = true
	if c.remaining == 0 {
		c.expired = true
		c.stopped = true
		onExpire := c.onExpire
		c.mu.Unlock()
		if onExpire != nil {
			onExpire()
		}
		return
	}
	ticker := c.newTicker(time.Second)
	c.mu.Unlock()

	go c.run(ticker)
}

func (c *Countdown) run(ticker Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C():
			c.mu.Lock()
			if c.stopped {
				c.mu.Unlock()
				return
			}
			c.remaining--
			remaining := c.remaining
			expired := false
			if remaining <= 0 {
				c.remaining = 0
				remaining = 0
				c.expired = true
				c.stopped = true
				expired = true
			}
			onTick, onExpire := c.onTick, c.onExpire
			c.mu.Unlock()

			if onTick != nil {
				onTick(remaining)
			}
			if expired {
				if onExpire != nil {
					onExpire()
				}
				return
			}
		case <-c.done:
			return
		}
	}
}

// Stop cancels the countdown without firing expiry. Idempotent.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.done)
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}
