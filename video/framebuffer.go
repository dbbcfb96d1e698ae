package video

// Framebuffer dimensions, fixed by the DMG LCD.
const (
	Width  = 160
	Height = 144
	Size   = Width * Height
)

// FrameBuffer holds one rendered frame as raw 2-bit color indices (0-3,
// same ordering as a BGP/OBPx palette nibble pair), plus the composited
// RGBA buffer a caller can read back without needing a ScreenSink.
type FrameBuffer struct {
	indices [Size]uint8
	pixels  [Size]Color
}

// NewFrameBuffer returns a FrameBuffer cleared to color index 0.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{}
}

// Set stores the color index and its resolved RGBA value for pixel (x, y).
func (fb *FrameBuffer) Set(x, y int, index uint8, c Color) {
	pos := y*Width + x
	fb.indices[pos] = index
	fb.pixels[pos] = c
}

// Index returns the raw 2-bit color index last written at (x, y).
func (fb *FrameBuffer) Index(x, y int) uint8 {
	return fb.indices[y*Width+x]
}

// Pixel returns the resolved RGBA color last written at (x, y).
func (fb *FrameBuffer) Pixel(x, y int) Color {
	return fb.pixels[y*Width+x]
}

// ToSlice returns the full frame as a row-major RGBA slice, suitable for
// tests or a backend that wants a whole-frame blit instead of per-pixel
// ScreenSink calls.
func (fb *FrameBuffer) ToSlice() []Color {
	out := make([]Color, Size)
	copy(out, fb.pixels[:])
	return out
}
