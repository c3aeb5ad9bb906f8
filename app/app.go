// Package app is the plugin host: it builds the registered plugins, rotates
// them on the display, fires their update ticks and plays transitions.
package app

import (
	"encoding/json"
	"io/fs"
	"time"

	"xmas/hal"
	"xmas/internal/buildinfo"
	"xmas/plugin"
	"xmas/plugins/christmas"
)

const (
	// errorHold is how long a plugin error screen stays up.
	errorHold = 3 * time.Second
)

// Factory builds a plugin from the host services and its raw configuration.
type Factory struct {
	ID  string
	New func(svc plugin.Services, raw []byte) plugin.Plugin
}

// DefaultFactories returns the bundled plugins in rotation order.
func DefaultFactories() []Factory {
	return []Factory{
		{ID: christmas.ID, New: func(svc plugin.Services, raw []byte) plugin.Plugin { return christmas.New(svc, raw) }},
	}
}

// Config configures the host.
type Config struct {
	// Plugins maps plugin IDs to their JSON configuration objects.
	Plugins map[string]json.RawMessage

	// Assets is handed to every plugin (nil = none).
	Assets fs.FS

	LogLevel plugin.Level

	// Factories builds the rotation (nil = DefaultFactories).
	Factories []Factory
}

type entry struct {
	p plugin.Plugin

	armed    bool
	nextTick uint64

	// failed is set once a hook panicked; the plugin is never called again.
	failed bool
}

func (e *entry) live() bool { return !e.failed && e.p.Enabled() }

type host struct {
	h   hal.HAL
	log *plugin.Logger

	entries []*entry
	current int
	prev    int
	shownAt uint64
	idle    bool

	ticks   <-chan uint64
	keys    <-chan hal.KeyEvent
	start   time.Time
	ms      uint64
	lastMs  uint64
	started bool

	trans     *transition
	holdUntil uint64
}

// New builds the configured plugins and returns the host step function.
func New(h hal.HAL, cfg Config) func() error {
	svc := plugin.Services{
		Display:  h.Display(),
		Clock:    h.Clock(),
		Logger:   h.Logger(),
		Assets:   cfg.Assets,
		LogLevel: cfg.LogLevel,
	}
	factories := cfg.Factories
	if factories == nil {
		factories = DefaultFactories()
	}
	plugins := make([]plugin.Plugin, 0, len(factories))
	for _, f := range factories {
		plugins = append(plugins, f.New(svc, cfg.Plugins[f.ID]))
	}
	s := newHost(h, cfg.LogLevel, plugins...)
	s.log.Infof("xmas %s", buildinfo.String())
	for id := range cfg.Plugins {
		if !s.known(id) {
			s.log.Warnf("config for unknown plugin %q ignored", id)
		}
	}
	return s.step
}

func newHost(h hal.HAL, level plugin.Level, plugins ...plugin.Plugin) *host {
	s := &host{
		h:       h,
		log:     plugin.NewLogger(h.Logger(), "host"),
		current: -1,
		prev:    -1,
	}
	s.log.SetLevel(level)
	for _, p := range plugins {
		s.entries = append(s.entries, &entry{p: p})
	}
	if t := h.Time(); t != nil {
		s.ticks = t.Ticks()
	}
	if in := h.Input(); in != nil {
		if kbd := in.Keyboard(); kbd != nil {
			s.keys = kbd.Events()
		}
	}
	s.log.Infof("%d plugin(s) registered", len(s.entries))
	return s
}

func (s *host) known(id string) bool {
	for _, e := range s.entries {
		if e.p.ID() == id {
			return true
		}
	}
	return false
}

func (s *host) framebuffer() hal.Framebuffer {
	if d := s.h.Display(); d != nil {
		return d.Framebuffer()
	}
	return nil
}

// step runs one host frame.
func (s *host) step() error {
	s.advance()
	s.handleKeys()
	s.tickDue()
	if s.ms < s.holdUntil {
		return nil
	}
	s.rotate()
	s.animate()
	return nil
}

// advance reads the newest tick sequence; without a tick stream it falls back
// to the wall clock. One tick is one millisecond.
func (s *host) advance() {
	s.lastMs = s.ms
	if s.ticks != nil {
		s.drainTicks()
	} else if c := s.h.Clock(); c != nil {
		now := c.Now()
		if s.start.IsZero() {
			s.start = now
		}
		s.ms = uint64(now.Sub(s.start) / time.Millisecond)
	}
	if !s.started {
		s.started = true
		s.lastMs = s.ms
	}
}

func (s *host) drainTicks() {
	for {
		select {
		case seq, ok := <-s.ticks:
			if !ok {
				s.ticks = nil
				return
			}
			s.ms = seq
		default:
			return
		}
	}
}

func (s *host) handleKeys() {
	if s.keys == nil {
		return
	}
	for {
		select {
		case ev := <-s.keys:
			if !ev.Press {
				continue
			}
			switch {
			case ev.Code == hal.KeyEnter:
				s.log.Debugf("skip requested")
				s.holdUntil = 0
				s.deactivate()
			case ev.Rune == 'u' || ev.Rune == 'U':
				s.log.Debugf("update requested")
				for _, e := range s.entries {
					e.nextTick = s.ms
				}
			}
		default:
			return
		}
	}
}

// tickDue fires OnTick for every enabled plugin whose update interval has
// elapsed. A plugin is ticked as soon as it becomes enabled.
func (s *host) tickDue() {
	for i, e := range s.entries {
		if !e.live() {
			e.armed = false
			continue
		}
		if !e.armed {
			e.armed = true
			e.nextTick = s.ms
		}
		if s.ms < e.nextTick || (s.trans != nil && i == s.current) {
			continue
		}
		if !s.call(e, "tick", e.p.OnTick) {
			continue
		}
		e.nextTick = s.ms + uint64(e.p.Schedule().UpdateInterval/time.Millisecond)
	}
}

// rotate ends the current activation once its display duration has elapsed
// and activates the next enabled plugin.
func (s *host) rotate() {
	if s.current >= 0 {
		e := s.entries[s.current]
		shown := time.Duration(s.ms-s.shownAt) * time.Millisecond
		if !e.live() || shown >= e.p.Schedule().DisplayDuration {
			s.deactivate()
		}
	}
	if s.current >= 0 {
		return
	}

	next := s.nextEnabled()
	if next < 0 {
		if !s.idle {
			s.idle = true
			s.log.Infof("no enabled plugins")
			if fb := s.framebuffer(); fb != nil {
				fb.ClearRGB(0, 0, 0)
				_ = fb.Present()
			}
		}
		return
	}
	s.idle = false
	s.activate(next)
}

func (s *host) nextEnabled() int {
	n := len(s.entries)
	for k := 1; k <= n; k++ {
		i := (s.last() + k) % n
		if s.entries[i].live() {
			return i
		}
	}
	return -1
}

// last is the index rotation continues from.
func (s *host) last() int {
	if s.current >= 0 {
		return s.current
	}
	return s.prev
}

func (s *host) deactivate() {
	if s.current < 0 {
		return
	}
	e := s.entries[s.current]
	s.prev = s.current
	s.current = -1
	s.trans = nil
	s.call(e, "deactivate", e.p.OnDeactivate)
}

func (s *host) activate(i int) {
	e := s.entries[i]
	fb := s.framebuffer()

	var prev []byte
	if fb != nil {
		prev = append([]byte(nil), fb.Buffer()...)
	}

	s.log.Debugf("activating %s", e.p.ID())
	if !s.call(e, "activate", e.p.OnActivate) {
		s.prev = i
		return
	}
	s.current = i
	s.shownAt = s.ms

	t := e.p.Schedule().Transition
	if fb == nil || !t.Enabled || t.Type == plugin.TransitionRedraw {
		return
	}
	next := append([]byte(nil), fb.Buffer()...)
	s.trans = newTransition(t, prev, next, fb.Width(), fb.Height(), fb.StrideBytes())
	s.trans.render(fb.Buffer())
	_ = fb.Present()
}

func (s *host) animate() {
	if s.trans == nil {
		return
	}
	fb := s.framebuffer()
	if fb == nil {
		s.trans = nil
		return
	}
	done := s.trans.update(float32(s.ms-s.lastMs) / 1000)
	s.trans.render(fb.Buffer())
	_ = fb.Present()
	if done {
		s.trans = nil
	}
}

// call runs a plugin hook. A panic disables the plugin, paints an error
// screen and reports false.
func (s *host) call(e *entry, hook string, fn func()) bool {
	info := guard(e.p.ID(), hook, fn)
	if info == nil {
		return true
	}
	logPanic(s.h.Logger(), info)
	if pp := guard(e.p.ID(), "disable", e.p.Disable); pp != nil {
		logPanic(s.h.Logger(), pp)
	}
	e.armed = false
	e.failed = true
	if s.current >= 0 && s.entries[s.current] == e {
		s.prev = s.current
		s.current = -1
	}
	s.trans = nil
	paintPanic(s.framebuffer(), info)
	s.holdUntil = s.ms + uint64(errorHold/time.Millisecond)
	return false
}
