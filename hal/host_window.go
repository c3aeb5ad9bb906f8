//go:build !tinygo && cgo

package hal

import (
	"fmt"
	"image"
	"xmas/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// WindowConfig controls the desktop preview window.
type WindowConfig struct {
	Host  HostConfig
	Scale int
	Debug bool
}

// RunWindow starts a desktop window that displays the framebuffer and forwards keyboard input.
// It blocks until the window closes.
func RunWindow(newApp func(HAL) func() error, cfg WindowConfig) error {
	if cfg.Scale <= 0 {
		cfg.Scale = 4
	}
	h := newHostHAL(cfg.Host)
	step := newApp(h)

	g := &hostGame{h: h, step: step, debug: cfg.Debug}
	ebiten.SetWindowTitle("xmas (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*cfg.Scale, h.fb.height*cfg.Scale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	step    func() error
	debug   bool
}

func (g *hostGame) Update() error {
	g.h.kbd.poll()
	g.h.t.step()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.width || g.img.Bounds().Dy() != fb.height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	fb.snapshotRGB565(g.scratch)
	rgb565ToRGBA(g.img.Pix, g.scratch)

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)

	if g.debug {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("%.0f tps", ebiten.ActualTPS()))
	}
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
