package christmas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"math"

	"xmas/plugin"
)

// Accepted range for an explicit tree_size, in pixels.
const (
	MinTreeSize = 8
	MaxTreeSize = 64
)

// RGB is a configured color.
type RGB struct {
	R, G, B uint8
}

// Color returns c as an opaque color.RGBA.
func (c RGB) Color() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

var (
	DefaultTextColor = RGB{R: 255}
	DefaultTreeColor = RGB{G: 128}
)

// Config is the full plugin configuration: the host-level keys plus the
// render settings.
type Config struct {
	plugin.Base

	TextColor RGB
	TreeColor RGB

	// TreeSize is the tree edge in pixels; 0 derives it from the canvas.
	TreeSize int
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Base:      plugin.DefaultBase(),
		TextColor: DefaultTextColor,
		TreeColor: DefaultTreeColor,
	}
}

type rawConfig struct {
	TextColor json.RawMessage `json:"text_color"`
	TreeColor json.RawMessage `json:"tree_color"`
	TreeSize  json.RawMessage `json:"tree_size"`
}

// ParseConfig decodes the plugin's JSON object. Like plugin.ParseBase it
// never fails and reports every substituted value in problems.
func ParseConfig(raw []byte) (Config, []string) {
	cfg := DefaultConfig()
	base, problems := plugin.ParseBase(raw)
	cfg.Base = base
	if len(bytes.TrimSpace(raw)) == 0 {
		return cfg, problems
	}

	var rc rawConfig
	if err := json.Unmarshal(raw, &rc); err != nil {
		// Already reported by ParseBase.
		return cfg, problems
	}

	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	cfg.TextColor = parseColor(rc.TextColor, "text_color", cfg.TextColor, report)
	cfg.TreeColor = parseColor(rc.TreeColor, "tree_color", cfg.TreeColor, report)

	if plugin.Present(rc.TreeSize) {
		v, ok := plugin.Number(rc.TreeSize)
		n := int(math.Round(v))
		switch {
		case !ok:
			report("tree_size: invalid value %s, using auto", rc.TreeSize)
		case n < MinTreeSize || n > MaxTreeSize:
			report("tree_size: %d out of range [%d,%d], using auto", n, MinTreeSize, MaxTreeSize)
		default:
			cfg.TreeSize = n
		}
	}
	return cfg, problems
}

// parseColor accepts [r, g, b] where each entry is a number or numeric
// string. Components outside 0-255 are clamped; anything else falls back to def.
func parseColor(raw json.RawMessage, key string, def RGB, report func(string, ...any)) RGB {
	if !plugin.Present(raw) {
		return def
	}
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) != 3 {
		report("%s: expected [r, g, b], got %s, using %v", key, raw, def)
		return def
	}

	var out [3]uint8
	for i, p := range parts {
		v, ok := plugin.Number(p)
		if !ok {
			report("%s: component %d is not numeric (%s), using %v", key, i, p, def)
			return def
		}
		n := int(math.Round(v))
		c := plugin.Clamp(n, 0, 255)
		if c != n {
			report("%s: component %d = %d out of range [0,255], clamped to %d", key, i, n, c)
		}
		out[i] = uint8(c)
	}
	return RGB{R: out[0], G: out[1], B: out[2]}
}
