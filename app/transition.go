package app

import (
	"time"

	"xmas/plugin"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// bayer4 is the ordered-dither matrix used by the dissolve effect.
var bayer4 = [4][4]uint8{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// transitionDuration maps a speed in [1,10] to the effect length: speed 1
// lasts one second, speed 10 a tenth of that.
func transitionDuration(speed int) time.Duration {
	speed = plugin.Clamp(speed, plugin.MinTransitionSpeed, plugin.MaxTransitionSpeed)
	return time.Duration(11-speed) * 100 * time.Millisecond
}

// transition animates between two RGB565 frames of the same geometry.
type transition struct {
	kind       plugin.TransitionType
	prev, next []byte
	w, h       int
	stride     int

	tween    *gween.Tween
	progress float32
}

func newTransition(t plugin.Transition, prev, next []byte, w, h, stride int) *transition {
	fn := ease.InOutQuad
	if t.Type == plugin.TransitionDissolve {
		fn = ease.Linear
	}
	return &transition{
		kind:   t.Type,
		prev:   prev,
		next:   next,
		w:      w,
		h:      h,
		stride: stride,
		tween:  gween.New(0, 1, float32(transitionDuration(t.Speed).Seconds()), fn),
	}
}

// update advances the effect by dt seconds and reports whether it finished.
func (t *transition) update(dt float32) bool {
	v, done := t.tween.Update(dt)
	t.progress = v
	if done {
		t.progress = 1
	}
	return done
}

// render writes the frame for the current progress into dst.
func (t *transition) render(dst []byte) {
	p := t.progress
	switch {
	case p <= 0:
		copy(dst, t.prev)
		return
	case p >= 1 || t.kind == plugin.TransitionRedraw:
		copy(dst, t.next)
		return
	}

	switch t.kind {
	case plugin.TransitionFade:
		t.fade(dst, p)
	case plugin.TransitionSlide:
		t.slide(dst, p)
	case plugin.TransitionWipe:
		t.wipe(dst, p)
	case plugin.TransitionDissolve:
		t.dissolve(dst, p)
	case plugin.TransitionPixelate:
		t.pixelate(dst, p)
	default:
		copy(dst, t.next)
	}
}

func (t *transition) pixel(src []byte, x, y int) uint16 {
	off := y*t.stride + x*2
	if off < 0 || off+1 >= len(src) {
		return 0
	}
	return uint16(src[off]) | uint16(src[off+1])<<8
}

func (t *transition) set(dst []byte, x, y int, p uint16) {
	off := y*t.stride + x*2
	if off < 0 || off+1 >= len(dst) {
		return
	}
	dst[off] = byte(p)
	dst[off+1] = byte(p >> 8)
}

func (t *transition) fade(dst []byte, p float32) {
	a := uint32(p * 256)
	mix := func(from, to uint32) uint32 { return (from*(256-a) + to*a) >> 8 }
	for y := 0; y < t.h; y++ {
		for x := 0; x < t.w; x++ {
			from, to := uint32(t.pixel(t.prev, x, y)), uint32(t.pixel(t.next, x, y))
			r := mix(from>>11&0x1F, to>>11&0x1F)
			g := mix(from>>5&0x3F, to>>5&0x3F)
			b := mix(from&0x1F, to&0x1F)
			t.set(dst, x, y, uint16(r<<11|g<<5|b))
		}
	}
}

// slide pushes the previous frame out to the left while the next one enters
// from the right.
func (t *transition) slide(dst []byte, p float32) {
	shift := int(p * float32(t.w))
	for y := 0; y < t.h; y++ {
		for x := 0; x < t.w; x++ {
			if sx := x + shift; sx < t.w {
				t.set(dst, x, y, t.pixel(t.prev, sx, y))
			} else {
				t.set(dst, x, y, t.pixel(t.next, sx-t.w, y))
			}
		}
	}
}

func (t *transition) wipe(dst []byte, p float32) {
	edge := int(p * float32(t.w))
	for y := 0; y < t.h; y++ {
		for x := 0; x < t.w; x++ {
			src := t.prev
			if x < edge {
				src = t.next
			}
			t.set(dst, x, y, t.pixel(src, x, y))
		}
	}
}

func (t *transition) dissolve(dst []byte, p float32) {
	for y := 0; y < t.h; y++ {
		for x := 0; x < t.w; x++ {
			src := t.prev
			if (float32(bayer4[y%4][x%4])+0.5)/16 < p {
				src = t.next
			}
			t.set(dst, x, y, t.pixel(src, x, y))
		}
	}
}

// pixelate coarsens the previous frame during the first half and refines the
// next one during the second.
func (t *transition) pixelate(dst []byte, p float32) {
	maxBlock := max(2, max(t.w, t.h)/8)
	src := t.prev
	amount := p * 2
	if p >= 0.5 {
		src = t.next
		amount = (1 - p) * 2
	}
	block := 1 + int(amount*float32(maxBlock-1))
	for y := 0; y < t.h; y++ {
		for x := 0; x < t.w; x++ {
			t.set(dst, x, y, t.pixel(src, x-x%block, y-y%block))
		}
	}
}
