// Package input defines the external input contract a driver polls once
// per frame, decoupled from any particular keyboard/gamepad backend.
package input

// Snapshot is the 8-boolean joypad state of a single instant: true means
// the corresponding line is held down.
type Snapshot struct {
	Right, Left, Up, Down bool
	A, B, Select, Start   bool
}

// Source supplies one Snapshot per frame tick. Implementations poll
// whatever backend they wrap (a terminal keyboard, an SDL event queue, a
// replay file) and must not block.
type Source interface {
	Poll() Snapshot
}

// None is a Source that never reports any key held, useful for headless
// runs that exercise the core without a driving player.
type None struct{}

// Poll always returns the zero Snapshot.
func (None) Poll() Snapshot { return Snapshot{} }
