package app

import (
	"fmt"
	"image/color"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	"xmas/hal"

	"tinygo.org/x/tinyfont"
)

// pluginPanic is a recovered panic from a plugin hook.
type pluginPanic struct {
	ID    string
	Hook  string
	Value any
	Stack []byte
}

// guard runs fn and converts a panic into a pluginPanic.
func guard(id, hook string, fn func()) (pp *pluginPanic) {
	defer func() {
		if r := recover(); r != nil {
			pp = &pluginPanic{ID: id, Hook: hook, Value: r, Stack: debug.Stack()}
		}
	}()
	fn()
	return nil
}

func logPanic(l hal.Logger, info *pluginPanic) {
	if l == nil {
		return
	}
	l.WriteLineString(fmt.Sprintf("host: error: plugin %s panicked in %s: %v", info.ID, info.Hook, info.Value))
	for _, line := range strings.Split(string(info.Stack), "\n") {
		if line == "" {
			continue
		}
		l.WriteLineString(line)
	}
}

// paintPanic draws a short error screen. Lines that do not fit are dropped.
func paintPanic(fb hal.Framebuffer, info *pluginPanic) {
	if fb == nil {
		return
	}
	fb.ClearRGB(255, 255, 255)

	font := &tinyfont.TomThumb
	lineHeight := int(font.GetYAdvance())
	if lineHeight <= 0 {
		_ = fb.Present()
		return
	}

	d := hal.NewCanvas(fb)
	fg := color.RGBA{A: 255}

	lines := []string{
		"Plugin Panic:",
		"plugin: " + info.ID,
		"hook: " + info.Hook,
		fmt.Sprintf("panic: %v", info.Value),
	}

	y := 0
	for _, line := range lines {
		for _, chunk := range wrapRunes(font, line, fb.Width()) {
			if y+lineHeight > fb.Height() {
				_ = fb.Present()
				return
			}
			tinyfont.WriteLine(d, font, 0, int16(y+lineHeight-1), chunk, fg)
			y += lineHeight
		}
	}

	_ = fb.Present()
}

// wrapRunes splits s into chunks no wider than maxW pixels. Every chunk holds
// at least one rune; leading spaces of continuation chunks are dropped.
func wrapRunes(font tinyfont.Fonter, s string, maxW int) []string {
	var out []string
	for s != "" {
		end := 0
		for i := range s {
			_, size := utf8.DecodeRuneInString(s[i:])
			next := i + size
			if _, w := tinyfont.LineWidth(font, s[:next]); end > 0 && int(w) > maxW {
				break
			}
			end = next
		}
		out = append(out, s[:end])
		s = strings.TrimLeft(s[end:], " ")
	}
	return out
}
