// Package serial implements the Game Boy's link-cable serial port. No
// peer is ever connected, so the only consumer-visible implementation
// is LogSink, which completes transfers immediately and logs outgoing
// bytes as text.
package serial

import (
	"log/slog"

	"github.com/jrastelli/gbcore/addr"
	"github.com/jrastelli/gbcore/bit"
)

// Port is the minimal interface the bus needs from a serial device.
// Implementations MUST only accept reads/writes to addr.SB and addr.SC.
type Port interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
	Tick(cycles int)
	Reset()
}

// LogSink is a serial device that never exchanges bytes with a real
// peer: it completes every transfer on its own and logs the outgoing
// byte stream as text, which is enough to observe test ROMs that report
// results over serial.
type LogSink struct {
	irqHandler     func()
	sb, sc         uint8
	transferActive bool
	countdown      int
	logger         *slog.Logger

	immediate bool
	defaultRX uint8

	line []byte
}

// Option configures a LogSink at construction time.
type Option func(*LogSink)

// WithFixedTiming makes the sink complete transfers after the
// hardware-accurate ~4096 T-cycle delay instead of immediately.
func WithFixedTiming() Option { return func(s *LogSink) { s.immediate = false } }

// NewLogSink creates a serial device. irq is invoked when a transfer
// completes; wire it to request addr.SerialInterrupt.
func NewLogSink(irq func(), opts ...Option) *LogSink {
	s := &LogSink{
		irqHandler: irq,
		immediate:  true,
		defaultRX:  0xFF,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Write stores to SB or SC, starting a transfer on the SC write that
// sets both the start and internal-clock bits.
func (s *LogSink) Write(address uint16, value uint8) {
	switch address {
	case addr.SB:
		s.sb = value
	case addr.SC:
		s.sc = value
		s.maybeStartTransfer()
	default:
		panic("serial.LogSink: invalid write address")
	}
}

// Read returns the current value of SB or SC.
func (s *LogSink) Read(address uint16) uint8 {
	switch address {
	case addr.SB:
		return s.sb
	case addr.SC:
		return s.sc
	default:
		panic("serial.LogSink: invalid read address")
	}
}

// Tick advances a fixed-timing transfer's countdown.
func (s *LogSink) Tick(cycles int) {
	if s.immediate || !s.transferActive {
		return
	}
	s.countdown -= cycles
	if s.countdown <= 0 {
		s.completeTransfer()
		s.countdown = 0
	}
}

// Reset clears the port to its power-on state.
func (s *LogSink) Reset() {
	s.sb = 0x00
	s.sc = 0x00
	s.transferActive = false
	s.countdown = 0
	s.line = s.line[:0]
}

func (s *LogSink) maybeStartTransfer() {
	if s.transferActive {
		return
	}
	if !bit.IsSet(7, s.sc) || !bit.IsSet(0, s.sc) {
		return
	}

	b := s.sb
	if b == 0 || b == '\n' || b == '\r' {
		if len(s.line) > 0 {
			s.logger.Info("serial", "line", string(s.line))
			s.line = s.line[:0]
		}
	} else {
		s.line = append(s.line, b)
	}

	if s.immediate {
		s.completeTransfer()
		return
	}

	s.transferActive = true
	s.countdown = 4096
}

func (s *LogSink) completeTransfer() {
	s.sb = s.defaultRX
	s.sc = bit.Reset(7, s.sc)
	s.transferActive = false
	if s.irqHandler != nil {
		s.irqHandler()
	}
}
