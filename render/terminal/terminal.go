// Package terminal is the reference ScreenSink + InputSource pair: it
// draws the 160x144 framebuffer into a terminal using the half-block
// trick (two vertical game pixels per terminal cell, top pixel as
// foreground, bottom pixel as background) and polls keyboard state into
// the 8-boolean joypad snapshot.
package terminal

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/jrastelli/gbcore/input"
	"github.com/jrastelli/gbcore/video"
)

// holdWindow is how long a key reads as "held" after its last keypress
// event, since terminals report key-down events only, never key-up.
const holdWindow = 120 * time.Millisecond

// Backend is a video.ScreenSink and input.Source backed by a tcell
// terminal screen.
type Backend struct {
	screen tcell.Screen
	pixels [video.Size]video.Color

	mu       sync.Mutex
	lastSeen map[tcell.Key]time.Time
	lastRune map[rune]time.Time
	quit     chan struct{}
	quitOnce sync.Once
	quitReq  chan struct{}
}

// NewBackend initializes the terminal for raw input and returns a ready
// Backend. Call Close when done to restore the terminal.
func NewBackend() (*Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("initializing terminal: %w", err)
	}

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	b := &Backend{
		screen:   screen,
		lastSeen: make(map[tcell.Key]time.Time),
		lastRune: make(map[rune]time.Time),
		quit:     make(chan struct{}),
		quitReq:  make(chan struct{}),
	}

	go b.pollEvents()

	return b, nil
}

// QuitRequested is closed once the player presses Escape or Ctrl+C,
// signaling the driver loop to stop.
func (b *Backend) QuitRequested() <-chan struct{} {
	return b.quitReq
}

// Close restores the terminal to its normal mode.
func (b *Backend) Close() {
	close(b.quit)
	b.screen.Fini()
}

// WritePixel implements video.ScreenSink, buffering into the backend's
// own frame; the terminal is only redrawn on PresentFrame.
func (b *Backend) WritePixel(x, y int, c video.Color) {
	b.pixels[y*video.Width+x] = c
}

// PresentFrame implements video.ScreenSink: it renders the buffered
// frame to the terminal, two game pixel rows per terminal cell.
func (b *Backend) PresentFrame() {
	for cellY := 0; cellY < video.Height/2; cellY++ {
		topY := cellY * 2
		bottomY := topY + 1
		for x := 0; x < video.Width; x++ {
			top := b.pixels[topY*video.Width+x]
			bottom := b.pixels[bottomY*video.Width+x]
			style := tcell.StyleDefault.
				Foreground(toTcellColor(top)).
				Background(toTcellColor(bottom))
			b.screen.SetContent(x, cellY, '▀', nil, style) // ▀
		}
	}
	b.screen.Show()
}

func toTcellColor(c video.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// Poll implements input.Source: a key reads as held if a matching event
// arrived within the last holdWindow, approximating key-up on a terminal
// that only ever reports key-down.
func (b *Backend) Poll() input.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	held := func(k tcell.Key) bool {
		t, ok := b.lastSeen[k]
		return ok && time.Since(t) < holdWindow
	}
	heldRune := func(r rune) bool {
		t, ok := b.lastRune[r]
		return ok && time.Since(t) < holdWindow
	}

	return input.Snapshot{
		Right:  held(tcell.KeyRight),
		Left:   held(tcell.KeyLeft),
		Up:     held(tcell.KeyUp),
		Down:   held(tcell.KeyDown),
		Start:  held(tcell.KeyEnter),
		A:      heldRune('a'),
		B:      heldRune('s'),
		Select: heldRune('q'),
	}
}

func (b *Backend) pollEvents() {
	for {
		select {
		case <-b.quit:
			return
		default:
		}

		ev := b.screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
				b.quitOnce.Do(func() { close(b.quitReq) })
				continue
			}
			b.mu.Lock()
			b.lastSeen[ev.Key()] = time.Now()
			if ev.Key() == tcell.KeyRune {
				b.lastRune[ev.Rune()] = time.Now()
			}
			b.mu.Unlock()
		case *tcell.EventResize:
			b.screen.Sync()
		}
	}
}
