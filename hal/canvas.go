package hal

import (
	"image/color"

	"tinygo.org/x/drivers"
)

var _ drivers.Displayer = (*Canvas)(nil)

// Canvas adapts an RGB565 framebuffer to drivers.Displayer so tinyfont and
// friends can draw into it. Out-of-bounds writes are dropped.
type Canvas struct {
	fb Framebuffer
}

func NewCanvas(fb Framebuffer) *Canvas { return &Canvas{fb: fb} }

func (c *Canvas) Size() (x, y int16) {
	if c.fb == nil {
		return 0, 0
	}
	return int16(c.fb.Width()), int16(c.fb.Height())
}

func (c *Canvas) offset(x, y int) (int, bool) {
	if c.fb == nil || c.fb.Format() != PixelFormatRGB565 {
		return 0, false
	}
	if x < 0 || x >= c.fb.Width() || y < 0 || y >= c.fb.Height() {
		return 0, false
	}
	off := y*c.fb.StrideBytes() + x*2
	if off < 0 || off+1 >= len(c.fb.Buffer()) {
		return 0, false
	}
	return off, true
}

func (c *Canvas) SetPixel(x, y int16, col color.RGBA) {
	off, ok := c.offset(int(x), int(y))
	if !ok {
		return
	}
	buf := c.fb.Buffer()
	p := RGB565(col)
	buf[off] = byte(p)
	buf[off+1] = byte(p >> 8)
}

// Pixel reads back the color at (x, y).
func (c *Canvas) Pixel(x, y int) (color.RGBA, bool) {
	off, ok := c.offset(x, y)
	if !ok {
		return color.RGBA{}, false
	}
	buf := c.fb.Buffer()
	r, g, b := rgb888From565(uint16(buf[off]) | uint16(buf[off+1])<<8)
	return color.RGBA{R: r, G: g, B: b, A: 0xFF}, true
}

func (c *Canvas) Display() error { return nil }
