//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const (
	defaultHostWidth  = 128
	defaultHostHeight = 64
)

// HostConfig describes the simulated panel of the host HAL.
type HostConfig struct {
	Width  int
	Height int

	// Now overrides the wall clock (nil = time.Now).
	Now func() time.Time

	// Log receives log lines (nil = stdout).
	Log io.Writer
}

type hostHAL struct {
	logger *hostLogger
	fb     *hostFramebuffer
	kbd    *hostKeyboard
	t      *hostTime
	clock  hostClock
}

// New returns a host HAL implementation with the default panel size.
func New() HAL {
	return NewHost(HostConfig{})
}

// NewHost returns a host HAL implementation for the given panel.
func NewHost(cfg HostConfig) HAL {
	return newHostHAL(cfg)
}

func newHostHAL(cfg HostConfig) *hostHAL {
	if cfg.Width <= 0 {
		cfg.Width = defaultHostWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultHostHeight
	}
	var w io.Writer = os.Stdout
	if cfg.Log != nil {
		w = cfg.Log
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &hostHAL{
		logger: &hostLogger{w: w},
		fb:     newHostFramebuffer(cfg.Width, cfg.Height),
		kbd:    newHostKeyboard(),
		t:      newHostTime(),
		clock:  hostClock{now: now},
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd} }
func (h *hostHAL) Time() Time       { return h.t }
func (h *hostHAL) Clock() Clock     { return h.clock }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }

type hostClock struct {
	now func() time.Time
}

func (c hostClock) Now() time.Time { return c.now() }

type hostLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}
