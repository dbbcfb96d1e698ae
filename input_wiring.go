package gbcore

import (
	"github.com/jrastelli/gbcore/input"
	"github.com/jrastelli/gbcore/memory"
)

// applyInput diffs snapshot against the previously applied one and turns
// each changed line into an MMU key press/release, since the MMU models
// discrete press/release transitions (for the joypad interrupt) rather
// than a level snapshot.
func (e *Emulator) applyInput(snapshot input.Snapshot) {
	diff := func(key memory.JoypadKey, was, is bool) {
		if is && !was {
			e.mem.HandleKeyPress(key)
		} else if was && !is {
			e.mem.HandleKeyRelease(key)
		}
	}

	diff(memory.JoypadRight, e.lastInput.Right, snapshot.Right)
	diff(memory.JoypadLeft, e.lastInput.Left, snapshot.Left)
	diff(memory.JoypadUp, e.lastInput.Up, snapshot.Up)
	diff(memory.JoypadDown, e.lastInput.Down, snapshot.Down)
	diff(memory.JoypadA, e.lastInput.A, snapshot.A)
	diff(memory.JoypadB, e.lastInput.B, snapshot.B)
	diff(memory.JoypadSelect, e.lastInput.Select, snapshot.Select)
	diff(memory.JoypadStart, e.lastInput.Start, snapshot.Start)

	e.lastInput = snapshot
}
