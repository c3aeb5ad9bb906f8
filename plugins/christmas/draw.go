package christmas

import (
	"image"
	"image/color"

	"xmas/hal"

	"tinygo.org/x/tinyfont"
)

// canvas adds alpha compositing and text placement to hal.Canvas.
type canvas struct {
	*hal.Canvas
}

func newCanvas(fb hal.Framebuffer) canvas { return canvas{hal.NewCanvas(fb)} }

// blend composites a non-premultiplied pixel over the framebuffer.
func (d canvas) blend(x, y int, c color.NRGBA) {
	switch c.A {
	case 0:
		return
	case 0xFF:
		d.SetPixel(int16(x), int16(y), color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
		return
	}
	dst, ok := d.Pixel(x, y)
	if !ok {
		return
	}
	a := uint32(c.A)
	mix := func(src, dst uint8) uint8 {
		return uint8((uint32(src)*a + uint32(dst)*(255-a)) / 255)
	}
	d.SetPixel(int16(x), int16(y), color.RGBA{R: mix(c.R, dst.R), G: mix(c.G, dst.G), B: mix(c.B, dst.B), A: 0xFF})
}

// drawImage composites img centered inside r.
func (d canvas) drawImage(img *image.NRGBA, r image.Rectangle) {
	if img == nil {
		return
	}
	b := img.Bounds()
	x0 := r.Min.X + (r.Dx()-b.Dx())/2
	y0 := r.Min.Y + (r.Dy()-b.Dy())/2
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			d.blend(x0+x-b.Min.X, y0+y-b.Min.Y, img.NRGBAAt(x, y))
		}
	}
}

// drawLines writes each layout line centered inside the text rectangle.
func (d canvas) drawLines(l LayoutResult, c color.RGBA) {
	if l.face == nil {
		return
	}
	for i, line := range l.Lines {
		x := l.Text.Min.X + (l.Text.Dx()-l.face.width(line))/2
		baseline := l.Text.Min.Y + i*l.LineHeight() + l.face.ascent
		tinyfont.WriteLine(d, l.face.font, int16(x), int16(baseline), line, c)
	}
}
