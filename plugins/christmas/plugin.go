// Package christmas implements the Christmas countdown plugin: a tree logo
// above the number of days left until December 25, or a greeting during the
// last week of the year.
package christmas

import (
	"errors"
	"image"
	"io/fs"
	"time"

	"xmas/hal"
	"xmas/plugin"
)

// ID is the plugin identifier and its key in the host configuration file.
const ID = "christmas-countdown"

// State is the plugin lifecycle state.
type State uint8

const (
	StateDisabled State = iota
	StateIdle
	StateRendering
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "disabled"
	case StateIdle:
		return "idle"
	case StateRendering:
		return "rendering"
	default:
		return "unknown"
	}
}

// Info is a snapshot of the plugin for host UIs.
type Info struct {
	ID            string
	State         State
	Active        bool
	DaysRemaining int
	Merry         bool
	TextColor     RGB
	TreeColor     RGB
	TreeSize      int
	LastMessage   string

	// TreeAsset names the bitmap in use; empty means the procedural tree.
	TreeAsset string
}

// Plugin is the countdown plugin. It is driven by a single host goroutine.
type Plugin struct {
	svc plugin.Services
	log *plugin.Logger

	cfg       Config
	tree      treeRenderer
	treeAsset string

	state     State
	active    bool
	countdown CountdownState

	lastMessage string
	lastSize    image.Point
	lastDay     string
}

var _ plugin.Plugin = (*Plugin)(nil)

// New builds the plugin, loads the tree bitmap from svc.Assets and applies raw
// as its configuration.
func New(svc plugin.Services, raw []byte) *Plugin {
	p := &Plugin{
		svc: svc,
		log: plugin.NewLogger(svc.Logger, ID),
	}
	p.log.SetLevel(svc.LogLevel)

	img, name, err := LoadTree(svc.Assets)
	switch {
	case err == nil:
		p.tree.bitmap = img
		p.treeAsset = name
		p.log.Infof("using tree bitmap %s (%dx%d)", name, img.Bounds().Dx(), img.Bounds().Dy())
	case errors.Is(err, fs.ErrNotExist):
		p.log.Debugf("no tree bitmap, drawing procedurally")
	default:
		p.log.Warnf("tree bitmap unusable, drawing procedurally: %v", err)
	}

	p.Configure(raw)
	return p
}

func (p *Plugin) ID() string { return ID }

// Configure replaces the configuration. The next tick re-renders even if the
// message is unchanged.
func (p *Plugin) Configure(raw []byte) {
	cfg, problems := ParseConfig(raw)
	for _, msg := range problems {
		p.log.Warnf("%s", msg)
	}
	p.cfg = cfg
	p.tree.setColor(cfg.TreeColor.Color())
	p.lastMessage = ""

	if cfg.Enabled {
		p.Enable()
	} else {
		p.Disable()
	}
	p.log.Debugf("configured: display=%s update=%s transition=%s/%d/%t tree_size=%d",
		cfg.DisplayDuration, cfg.UpdateInterval,
		cfg.Transition.Type, cfg.Transition.Speed, cfg.Transition.Enabled, cfg.TreeSize)
}

func (p *Plugin) Enable() {
	p.cfg.Enabled = true
	if p.state == StateDisabled {
		p.state = StateIdle
	}
}

func (p *Plugin) Disable() {
	p.cfg.Enabled = false
	p.state = StateDisabled
	p.active = false
}

func (p *Plugin) Enabled() bool { return p.state != StateDisabled }

func (p *Plugin) Schedule() plugin.Schedule { return p.cfg.Schedule() }

// Config returns the active configuration.
func (p *Plugin) Config() Config { return p.cfg }

// OnTick recomputes the countdown. While the plugin is on screen it redraws
// only when the message or the canvas size changed.
func (p *Plugin) OnTick() {
	if !p.Enabled() {
		return
	}
	p.update()
	if !p.active {
		return
	}
	fb := p.framebuffer()
	if fb == nil {
		return
	}
	size := image.Pt(fb.Width(), fb.Height())
	if SelectText(p.countdown, size.X) == p.lastMessage && size == p.lastSize {
		return
	}
	p.render(fb)
}

// OnActivate always redraws.
func (p *Plugin) OnActivate() {
	if !p.Enabled() {
		return
	}
	p.active = true
	p.update()
	fb := p.framebuffer()
	if fb == nil {
		p.log.Warnf("no framebuffer, nothing to draw")
		return
	}
	p.render(fb)
}

func (p *Plugin) OnDeactivate() {
	p.active = false
}

// Info returns a snapshot of the plugin.
func (p *Plugin) Info() Info {
	return Info{
		ID:            ID,
		State:         p.state,
		Active:        p.active,
		DaysRemaining: p.countdown.DaysRemaining,
		Merry:         p.countdown.Merry,
		TextColor:     p.cfg.TextColor,
		TreeColor:     p.cfg.TreeColor,
		TreeSize:      p.cfg.TreeSize,
		LastMessage:   p.lastMessage,
		TreeAsset:     p.treeAsset,
	}
}

func (p *Plugin) now() time.Time {
	if p.svc.Clock == nil {
		return time.Now()
	}
	return p.svc.Clock.Now()
}

func (p *Plugin) framebuffer() hal.Framebuffer {
	if p.svc.Display == nil {
		return nil
	}
	return p.svc.Display.Framebuffer()
}

// update refreshes the countdown and logs it once per calendar day.
func (p *Plugin) update() {
	today := p.now()
	p.countdown = Countdown(today)

	day := today.Format(time.DateOnly)
	if day == p.lastDay {
		return
	}
	p.lastDay = day
	if p.countdown.Merry {
		p.log.Infof("Merry Christmas!")
	} else {
		p.log.Infof("Days until Christmas: %d", p.countdown.DaysRemaining)
	}
}

func (p *Plugin) render(fb hal.Framebuffer) {
	p.state = StateRendering
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("render: %v", r)
		}
		if p.state == StateRendering {
			p.state = StateIdle
		}
	}()

	w, h := fb.Width(), fb.Height()
	text := SelectText(p.countdown, w)
	l := Layout(w, h, p.cfg.TreeSize, text)

	fb.ClearRGB(0, 0, 0)
	c := newCanvas(fb)
	if !l.Tree.Empty() {
		c.drawImage(p.tree.image(l.Tree.Dx(), l.Tree.Dy()), l.Tree)
	}
	c.drawLines(l, p.cfg.TextColor.Color())
	if err := fb.Present(); err != nil {
		p.log.Warnf("present: %v", err)
	}

	p.lastMessage = text
	p.lastSize = image.Pt(w, h)
	p.log.Debugf("rendered %q tree=%v text=%v font=%s", text, l.Tree, l.Text, l.Font())
}
