package christmas

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io/fs"

	"github.com/disintegration/imaging"
)

// treeAssets lists the bitmap locations tried, in order, inside the asset directory.
var treeAssets = []string{
	"tree icon.png",
	"assets/christmas_tree.png",
}

var (
	trunkColor    = color.RGBA{R: 101, G: 67, B: 33, A: 0xFF}
	starColor     = color.RGBA{R: 255, G: 255, A: 0xFF}
	ornamentColor = color.RGBA{R: 255, A: 0xFF}
)

// LoadTree decodes the first tree bitmap found in assets.
//
// It returns fs.ErrNotExist (wrapped) when no candidate exists. Each file is
// opened, decoded and closed before returning.
func LoadTree(assets fs.FS) (image.Image, string, error) {
	if assets == nil {
		return nil, "", fmt.Errorf("christmas: no asset directory: %w", fs.ErrNotExist)
	}
	for _, name := range treeAssets {
		img, err := decodeAsset(assets, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, name, err
		}
		return img, name, nil
	}
	return nil, "", fmt.Errorf("christmas: tree bitmap: %w", fs.ErrNotExist)
}

func decodeAsset(assets fs.FS, name string) (image.Image, error) {
	f, err := assets.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("christmas: decode %s: %w", name, err)
	}
	if b := img.Bounds(); b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("christmas: decode %s: empty image", name)
	}
	return img, nil
}

// fitImage scales img up or down to fit w x h, preserving the aspect ratio.
func fitImage(img image.Image, w, h int) *image.NRGBA {
	b := img.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 || sw <= 0 || sh <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	nw, nh := w, sh*w/sw
	if nh > h {
		nw, nh = sw*h/sh, h
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return imaging.Resize(img, nw, nh, imaging.Lanczos)
}

// treeRenderer produces the tree image for a given box, from the bitmap when
// one was loaded and procedurally otherwise. The last result is cached.
type treeRenderer struct {
	bitmap image.Image
	color  color.RGBA

	cacheSize image.Point
	cache     *image.NRGBA
}

func (r *treeRenderer) setColor(c color.RGBA) {
	if r.color != c {
		r.color = c
		r.cache = nil
	}
}

func (r *treeRenderer) image(w, h int) *image.NRGBA {
	size := image.Pt(w, h)
	if r.cache != nil && r.cacheSize == size {
		return r.cache
	}
	if r.bitmap != nil {
		r.cache = fitImage(r.bitmap, w, h)
	} else {
		r.cache = DrawTree(w, h, r.color)
	}
	r.cacheSize = size
	return r.cache
}

// DrawTree draws a stylized tree: stacked triangle layers in the foliage
// color with lighter highlights, a trunk, a star on top and, when the tree is
// large enough, a few ornaments. The background is transparent.
func DrawTree(w, h int, foliage color.RGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w <= 0 || h <= 0 {
		return img
	}
	foliage.A = 0xFF

	cx := w / 2
	trunkH := max(2, h/6)
	base := h - trunkH
	layers := max(3, h/8)

	layerY := func(i int) int { return base - i*h/(layers+2) }
	layerW := func(i int) int { return max(4, w-i*w/(layers+3)) }

	apex := base
	for i := 0; i < layers; i++ {
		y, lw := layerY(i), layerW(i)
		top := y - lw/2
		fillTriangle(img, cx, top, y, lw/2, foliage)
		if top < apex {
			apex = top
		}

		if i == 0 || lw <= 8 {
			continue
		}
		small := lw / 4
		for _, off := range []int{-small / 2, small / 2} {
			if abs(off) < lw/2-2 {
				fillTriangle(img, cx+off, y-small, y, small/2, highlight(foliage))
			}
		}
	}

	trunkW := max(2, w/6)
	fillRect(img, image.Rect(cx-trunkW/2, base, cx-trunkW/2+trunkW, h), trunkColor)

	star := max(1, min(w/8, h/10))
	sy := max(apex-star, star)
	fillCircle(img, cx, sy, star, starColor)

	if w >= 16 && h >= 20 {
		r := max(1, min(w/16, 3))
		for i := 1; i <= 3 && i < layers; i++ {
			y, lw := layerY(i), layerW(i)
			if lw <= 12 {
				continue
			}
			fillCircle(img, cx-lw/3, y, r, ornamentColor)
			if i%2 == 0 {
				fillCircle(img, cx+lw/3, y, r, ornamentColor)
			}
		}
	}
	return img
}

func highlight(c color.RGBA) color.RGBA {
	lift := func(v uint8) uint8 { return uint8(min(255, int(v)+20)) }
	return color.RGBA{R: lift(c.R), G: lift(c.G), B: lift(c.B), A: c.A}
}

// fillTriangle fills an upward isosceles triangle with its apex at (cx, top)
// and a base of half-width half on row bottom.
func fillTriangle(img *image.NRGBA, cx, top, bottom, half int, c color.RGBA) {
	if bottom < top {
		return
	}
	span := bottom - top
	for y := top; y <= bottom; y++ {
		hw := half
		if span > 0 {
			hw = (y - top) * half / span
		}
		for x := cx - hw; x <= cx+hw; x++ {
			img.Set(x, y, c)
		}
	}
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.RGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.Set(x, y, c)
		}
	}
}

func fillCircle(img *image.NRGBA, cx, cy, r int, c color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
