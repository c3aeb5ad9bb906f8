package hal

import (
	"image"
	"image/color"
)

func rgb565(r, g, b uint8) uint16 {
	rr := uint16(r>>3) & 0x1F
	gg := uint16(g>>2) & 0x3F
	bb := uint16(b>>3) & 0x1F
	return (rr << 11) | (gg << 5) | bb
}

// RGB565 packs an opaque color into the framebuffer encoding.
func RGB565(c color.RGBA) uint16 { return rgb565(c.R, c.G, c.B) }

func rgb888From565(p uint16) (r, g, b uint8) {
	rr := (p >> 11) & 0x1F
	gg := (p >> 5) & 0x3F
	bb := p & 0x1F

	r = uint8((rr * 255) / 31)
	g = uint8((gg * 255) / 63)
	b = uint8((bb * 255) / 31)
	return r, g, b
}

// rgb565ToRGBA expands little-endian RGB565 pixels from src into dst (RGBA, 4 bytes per pixel).
func rgb565ToRGBA(dst, src []byte) {
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, g, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = g
		dst[j+2] = b
		dst[j+3] = 0xFF
	}
}

// Image converts the current framebuffer contents into an RGBA image.
//
// It returns nil for formats other than RGB565.
func Image(fb Framebuffer) *image.RGBA {
	if fb == nil || fb.Format() != PixelFormatRGB565 {
		return nil
	}
	w, h := fb.Width(), fb.Height()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := fb.Buffer()
	stride := fb.StrideBytes()
	for y := 0; y < h; y++ {
		row := y * stride
		end := row + w*2
		if end > len(buf) {
			break
		}
		rgb565ToRGBA(img.Pix[y*img.Stride:(y+1)*img.Stride], buf[row:end])
	}
	return img
}
