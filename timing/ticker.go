package timing

import "time"

// Ticker paces frames with a time.Ticker: simple and consistent, less
// precise than Adaptive but sufficient for most interactive use.
type Ticker struct {
	ticker *time.Ticker
	ch     <-chan time.Time
}

// NewTicker returns a Ticker-backed Limiter firing at FrameDuration.
func NewTicker() *Ticker {
	t := time.NewTicker(FrameDuration())
	return &Ticker{ticker: t, ch: t.C}
}

func (t *Ticker) WaitForNextFrame() {
	<-t.ch
}

func (t *Ticker) Reset() {
	t.ticker.Reset(FrameDuration())
}

// Stop releases the underlying time.Ticker; callers that switch limiters
// or shut down must call this to avoid leaking the ticker goroutine.
func (t *Ticker) Stop() {
	t.ticker.Stop()
}
