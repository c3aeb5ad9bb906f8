package hal

import "time"

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// KeyCode is a minimal key identifier.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyEnter
)

// KeyEvent is a keyboard event.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

// Keyboard provides key events (best-effort on each platform).
type Keyboard interface {
	Events() <-chan KeyEvent
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Input provides access to input devices (if available).
type Input interface {
	Keyboard() Keyboard
}

// Time provides a base tick stream.
//
// On the host one tick is one millisecond of real time.
type Time interface {
	Ticks() <-chan uint64
}

// Clock provides the wall-clock time used for calendar math and scheduling.
type Clock interface {
	Now() time.Time
}

// HAL provides the only contact point between the plugin host and the outside world.
type HAL interface {
	Logger() Logger
	Display() Display
	Input() Input
	Time() Time
	Clock() Clock
}
