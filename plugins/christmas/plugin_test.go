package christmas

import (
	"image/color"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"xmas/hal"
	"xmas/plugin"
)

type testFB struct {
	w, h     int
	buf      []byte
	presents int
}

func newTestFB(w, h int) *testFB {
	return &testFB{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *testFB) Width() int              { return f.w }
func (f *testFB) Height() int             { return f.h }
func (f *testFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *testFB) StrideBytes() int        { return f.w * 2 }
func (f *testFB) Buffer() []byte          { return f.buf }
func (f *testFB) Present() error          { f.presents++; return nil }

func (f *testFB) ClearRGB(r, g, b uint8) {
	p := hal.RGB565(color.RGBA{R: r, G: g, B: b})
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.buf[i] = byte(p)
		f.buf[i+1] = byte(p >> 8)
	}
}

func (f *testFB) count(c color.RGBA) int {
	want := hal.RGB565(c)
	n := 0
	for i := 0; i+1 < len(f.buf); i += 2 {
		if uint16(f.buf[i])|uint16(f.buf[i+1])<<8 == want {
			n++
		}
	}
	return n
}

type testDisplay struct{ fb *testFB }

func (d testDisplay) Framebuffer() hal.Framebuffer {
	if d.fb == nil {
		return nil
	}
	return d.fb
}

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

type testLog struct{ lines []string }

func (l *testLog) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *testLog) WriteLineBytes(b []byte)  { l.lines = append(l.lines, string(b)) }

func (l *testLog) count(substr string) int {
	n := 0
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

type harness struct {
	fb    *testFB
	clock *testClock
	log   *testLog
	p     *Plugin
}

func newHarness(w, h int, today time.Time, raw string) *harness {
	hs := &harness{
		fb:    newTestFB(w, h),
		clock: &testClock{now: today},
		log:   &testLog{},
	}
	hs.p = New(plugin.Services{
		Display: testDisplay{fb: hs.fb},
		Clock:   hs.clock,
		Logger:  hs.log,
	}, []byte(raw))
	return hs
}

func TestStateString(t *testing.T) {
	if StateDisabled.String() != "disabled" || StateIdle.String() != "idle" || StateRendering.String() != "rendering" {
		t.Fatal("unexpected state names")
	}
	if State(9).String() != "unknown" {
		t.Fatalf("expected unknown, got %s", State(9))
	}
}

func TestPluginLifecycle(t *testing.T) {
	hs := newHarness(128, 64, date(2026, time.October, 17), "")
	p := hs.p
	if p.ID() != ID {
		t.Fatalf("expected %s, got %s", ID, p.ID())
	}
	if p.Info().State != StateIdle || !p.Enabled() {
		t.Fatalf("expected idle, got %s", p.Info().State)
	}

	p.Configure([]byte(`{"enabled": false}`))
	if p.Enabled() || p.Info().State != StateDisabled {
		t.Fatalf("expected disabled, got %s", p.Info().State)
	}
	p.OnActivate()
	p.OnTick()
	if hs.fb.presents != 0 {
		t.Fatalf("expected no drawing while disabled, got %d presents", hs.fb.presents)
	}

	p.Enable()
	if p.Info().State != StateIdle {
		t.Fatalf("expected idle, got %s", p.Info().State)
	}
	p.OnActivate()
	info := p.Info()
	if hs.fb.presents != 1 || !info.Active || info.State != StateIdle {
		t.Fatalf("expected one render and idle, got %d presents, %+v", hs.fb.presents, info)
	}
	if info.DaysRemaining != 69 || info.LastMessage != "69 DAYS UNTIL CHRISTMAS" {
		t.Fatalf("expected 69 days, got %+v", info)
	}

	p.OnDeactivate()
	if p.Info().Active {
		t.Fatal("expected inactive after deactivate")
	}
	p.Disable()
	if p.Info().Active || p.Enabled() {
		t.Fatal("expected disabled and inactive")
	}
}

func TestPluginTickSuppressesRedraw(t *testing.T) {
	hs := newHarness(128, 64, date(2026, time.October, 17), "")
	p := hs.p

	p.OnTick()
	if hs.fb.presents != 0 {
		t.Fatalf("expected no render before activation, got %d", hs.fb.presents)
	}
	if p.Info().DaysRemaining != 69 {
		t.Fatalf("expected countdown update on tick, got %d", p.Info().DaysRemaining)
	}

	p.OnActivate()
	p.OnTick()
	p.OnTick()
	if hs.fb.presents != 1 {
		t.Fatalf("expected unchanged message to skip redraw, got %d presents", hs.fb.presents)
	}

	hs.clock.now = hs.clock.now.AddDate(0, 0, 1)
	p.OnTick()
	if hs.fb.presents != 2 || p.Info().LastMessage != "68 DAYS UNTIL CHRISTMAS" {
		t.Fatalf("expected redraw for new day, got %d presents, %q", hs.fb.presents, p.Info().LastMessage)
	}

	p.OnDeactivate()
	hs.clock.now = hs.clock.now.AddDate(0, 0, 1)
	p.OnTick()
	if hs.fb.presents != 2 {
		t.Fatalf("expected no redraw while off screen, got %d", hs.fb.presents)
	}
	if p.Info().DaysRemaining != 67 {
		t.Fatalf("expected 67, got %d", p.Info().DaysRemaining)
	}

	p.OnActivate()
	if hs.fb.presents != 3 {
		t.Fatalf("expected activation to redraw, got %d", hs.fb.presents)
	}
}

func TestPluginConfigureForcesRedraw(t *testing.T) {
	hs := newHarness(128, 64, date(2026, time.October, 17), "")
	hs.p.OnActivate()
	hs.p.Configure([]byte(`{"text_color": [0, 0, 255]}`))
	hs.p.OnTick()
	if hs.fb.presents != 2 {
		t.Fatalf("expected redraw after configure, got %d", hs.fb.presents)
	}
	if hs.fb.count(color.RGBA{B: 255}) == 0 {
		t.Fatal("expected text in the new color")
	}
}

func TestPluginDrawsTreeAndText(t *testing.T) {
	hs := newHarness(128, 64, date(2026, time.October, 17), "")
	hs.p.OnActivate()

	if n := hs.fb.count(DefaultTextColor.Color()); n == 0 {
		t.Fatal("expected text pixels")
	}
	if n := hs.fb.count(DefaultTreeColor.Color()); n == 0 {
		t.Fatal("expected tree pixels")
	}
	if n := hs.fb.count(color.RGBA{}); n == 0 {
		t.Fatal("expected black background")
	}
	if hs.p.Info().TreeAsset != "" {
		t.Fatalf("expected procedural tree, got %q", hs.p.Info().TreeAsset)
	}
}

func TestPluginTextSelection(t *testing.T) {
	cases := []struct {
		w, h  int
		today time.Time
		want  string
	}{
		{128, 64, date(2026, time.December, 24), "1 DAYS UNTIL CHRISTMAS"},
		{48, 48, date(2026, time.December, 20), "5 DAYS UNTIL XMAS"},
		{64, 32, date(2026, time.December, 26), "MERRY CHRISTMAS"},
		{32, 32, date(2027, time.January, 1), "358 DAYS UNTIL XMAS"},
	}
	for _, tc := range cases {
		hs := newHarness(tc.w, tc.h, tc.today, "")
		hs.p.OnActivate()
		if got := hs.p.Info().LastMessage; got != tc.want {
			t.Fatalf("%dx%d %s: expected %q, got %q", tc.w, tc.h, tc.today.Format(time.DateOnly), tc.want, got)
		}
	}
}

func TestPluginDayLogging(t *testing.T) {
	hs := newHarness(128, 64, date(2026, time.December, 23), "")
	hs.p.OnTick()
	hs.p.OnTick()
	hs.p.OnActivate()
	if n := hs.log.count("Days until Christmas: 2"); n != 1 {
		t.Fatalf("expected one countdown line, got %d", n)
	}

	hs.clock.now = date(2026, time.December, 25)
	hs.p.OnTick()
	hs.p.OnTick()
	if n := hs.log.count("Merry Christmas!"); n != 1 {
		t.Fatalf("expected one greeting line, got %d", n)
	}
}

func TestPluginConfigProblemsLogged(t *testing.T) {
	hs := newHarness(128, 64, date(2026, time.October, 17), `{"display_duration": 0, "tree_size": 2}`)
	if n := hs.log.count(ID + ": warn: display_duration"); n != 1 {
		t.Fatalf("expected display_duration warning, got %v", hs.log.lines)
	}
	if n := hs.log.count(ID + ": warn: tree_size"); n != 1 {
		t.Fatalf("expected tree_size warning, got %v", hs.log.lines)
	}
	if got := hs.p.Schedule().DisplayDuration; got != time.Second {
		t.Fatalf("expected clamp to 1s, got %s", got)
	}
}

func TestPluginSchedule(t *testing.T) {
	hs := newHarness(128, 64, date(2026, time.October, 17),
		`{"display_duration": 30, "update_interval": 120, "transition": {"type": "fade", "speed": 7, "enabled": true}}`)
	s := hs.p.Schedule()
	if s.DisplayDuration != 30*time.Second || s.UpdateInterval != 2*time.Minute {
		t.Fatalf("unexpected schedule %+v", s)
	}
	want := plugin.Transition{Type: plugin.TransitionFade, Speed: 7, Enabled: true}
	if s.Transition != want {
		t.Fatalf("expected %+v, got %+v", want, s.Transition)
	}
}

func TestPluginTreeAsset(t *testing.T) {
	icon := encodePNG(t, solid(16, 16, color.NRGBA{R: 10, G: 200, B: 10, A: 255}))
	log := &testLog{}
	fb := newTestFB(128, 64)
	p := New(plugin.Services{
		Display: testDisplay{fb: fb},
		Clock:   &testClock{now: date(2026, time.October, 17)},
		Logger:  log,
		Assets:  fstest.MapFS{"tree icon.png": &fstest.MapFile{Data: icon}},
	}, nil)
	if p.Info().TreeAsset != "tree icon.png" {
		t.Fatalf("expected bitmap in use, got %q", p.Info().TreeAsset)
	}
	p.OnActivate()
	if fb.count(color.RGBA{R: 10, G: 200, B: 10}) == 0 {
		t.Fatal("expected bitmap pixels on screen")
	}

	log = &testLog{}
	p = New(plugin.Services{
		Logger: log,
		Assets: fstest.MapFS{"tree icon.png": &fstest.MapFile{Data: []byte("junk")}},
	}, nil)
	if p.Info().TreeAsset != "" {
		t.Fatalf("expected procedural fallback, got %q", p.Info().TreeAsset)
	}
	if log.count("warn: tree bitmap unusable") != 1 {
		t.Fatalf("expected decode warning, got %v", log.lines)
	}
}

func TestPluginWithoutDisplay(t *testing.T) {
	log := &testLog{}
	p := New(plugin.Services{Logger: log}, nil)
	p.OnActivate()
	p.OnTick()
	if log.count("no framebuffer") != 1 {
		t.Fatalf("expected missing framebuffer warning, got %v", log.lines)
	}
	if p.Info().DaysRemaining < 0 {
		t.Fatalf("expected countdown from the system clock, got %d", p.Info().DaysRemaining)
	}
}
