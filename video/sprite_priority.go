package video

// spritePriority resolves per-pixel sprite ownership for DMG drawing
// priority: https://gbdev.io/pandocs/OAM.html#drawing-priority. Lower X
// coordinate wins; ties go to the lower OAM index. Rather than sorting
// the scanline's sprites, each candidate sprite claims the pixels it
// covers during a selection pass, and only the winner draws each pixel
// during the render pass.
type spritePriority struct {
	ownerIndex [Width]int
	ownerX     [Width]int
}

// clear resets ownership for a new scanline.
func (s *spritePriority) clear() {
	for i := range s.ownerIndex {
		s.ownerIndex[i] = -1
		s.ownerX[i] = 0xFF
	}
}

// tryClaim attempts to give pixelX to spriteIndex at spriteX, returning
// whether the attempt won.
func (s *spritePriority) tryClaim(pixelX, spriteIndex, spriteX int) bool {
	if pixelX < 0 || pixelX >= Width {
		return false
	}

	owner := s.ownerIndex[pixelX]
	if owner == -1 {
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
		return true
	}

	ownerX := s.ownerX[pixelX]
	if spriteX < ownerX || (spriteX == ownerX && spriteIndex < owner) {
		s.ownerIndex[pixelX] = spriteIndex
		s.ownerX[pixelX] = spriteX
		return true
	}

	return false
}

// owner returns the sprite index owning pixelX, or -1 if none.
func (s *spritePriority) owner(pixelX int) int {
	if pixelX < 0 || pixelX >= Width {
		return -1
	}
	return s.ownerIndex[pixelX]
}
