//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var ebitenKeys = []struct {
	key  ebiten.Key
	code KeyCode
}{
	{ebiten.KeyEnter, KeyEnter},
}

// poll forwards this frame's typed runes and key edges.
func (k *hostKeyboard) poll() {
	for _, r := range ebiten.AppendInputChars(nil) {
		k.emit(KeyEvent{Press: true, Rune: r})
	}
	for _, m := range ebitenKeys {
		if inpututil.IsKeyJustPressed(m.key) {
			k.emit(KeyEvent{Code: m.code, Press: true})
		}
		if inpututil.IsKeyJustReleased(m.key) {
			k.emit(KeyEvent{Code: m.code, Press: false})
		}
	}
}
