package plugin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Ranges accepted for the host-level keys, in seconds.
const (
	MinDisplayDuration = 1
	MaxDisplayDuration = 300
	MinUpdateInterval  = 60
	MaxUpdateInterval  = 86400

	MinTransitionSpeed = 1
	MaxTransitionSpeed = 10

	DefaultDisplayDuration = 15 * time.Second
	DefaultUpdateInterval  = time.Hour
	DefaultTransitionSpeed = 5
)

// TransitionType selects the host effect played when a plugin comes on screen.
type TransitionType uint8

const (
	TransitionRedraw TransitionType = iota
	TransitionFade
	TransitionSlide
	TransitionWipe
	TransitionDissolve
	TransitionPixelate
)

var transitionNames = [...]string{
	TransitionRedraw:   "redraw",
	TransitionFade:     "fade",
	TransitionSlide:    "slide",
	TransitionWipe:     "wipe",
	TransitionDissolve: "dissolve",
	TransitionPixelate: "pixelate",
}

func (t TransitionType) String() string {
	if int(t) < len(transitionNames) {
		return transitionNames[t]
	}
	return "unknown"
}

// ParseTransitionType maps a config name to a TransitionType (case-insensitive).
func ParseTransitionType(s string) (TransitionType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range transitionNames {
		if name == s {
			return TransitionType(i), true
		}
	}
	return TransitionRedraw, false
}

// Transition is the per-plugin transition setting.
type Transition struct {
	Type    TransitionType
	Speed   int
	Enabled bool
}

// Base holds the configuration keys every plugin shares with the host.
type Base struct {
	Enabled         bool
	DisplayDuration time.Duration
	UpdateInterval  time.Duration
	Transition      Transition
}

// DefaultBase returns the documented defaults.
func DefaultBase() Base {
	return Base{
		Enabled:         true,
		DisplayDuration: DefaultDisplayDuration,
		UpdateInterval:  DefaultUpdateInterval,
		Transition: Transition{
			Type:  TransitionRedraw,
			Speed: DefaultTransitionSpeed,
		},
	}
}

// Schedule returns the host-facing part of the configuration.
func (b Base) Schedule() Schedule {
	return Schedule{
		DisplayDuration: b.DisplayDuration,
		UpdateInterval:  b.UpdateInterval,
		Transition:      b.Transition,
	}
}

type rawBase struct {
	Enabled         json.RawMessage `json:"enabled"`
	DisplayDuration json.RawMessage `json:"display_duration"`
	UpdateInterval  json.RawMessage `json:"update_interval"`
	Transition      json.RawMessage `json:"transition"`
}

type rawTransition struct {
	Type    json.RawMessage `json:"type"`
	Speed   json.RawMessage `json:"speed"`
	Enabled json.RawMessage `json:"enabled"`
}

// ParseBase decodes the shared keys from a plugin's JSON object.
//
// It never fails: malformed or out-of-range values are replaced by defaults or
// clamped, and each substitution is reported in problems.
func ParseBase(raw []byte) (b Base, problems []string) {
	b = DefaultBase()
	if len(bytes.TrimSpace(raw)) == 0 {
		return b, nil
	}

	var rb rawBase
	if err := json.Unmarshal(raw, &rb); err != nil {
		return b, []string{fmt.Sprintf("config: malformed object, using defaults: %v", err)}
	}

	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if Present(rb.Enabled) {
		if v, ok := Bool(rb.Enabled); ok {
			b.Enabled = v
		} else {
			report("enabled: invalid value %s, using %t", rb.Enabled, b.Enabled)
		}
	}

	b.DisplayDuration = seconds(rb.DisplayDuration, "display_duration",
		MinDisplayDuration, MaxDisplayDuration, b.DisplayDuration, report)
	b.UpdateInterval = seconds(rb.UpdateInterval, "update_interval",
		MinUpdateInterval, MaxUpdateInterval, b.UpdateInterval, report)

	if Present(rb.Transition) {
		var rt rawTransition
		if err := json.Unmarshal(rb.Transition, &rt); err != nil {
			report("transition: invalid value %s, using defaults", rb.Transition)
		} else {
			b.Transition = parseTransition(rt, b.Transition, report)
		}
	}
	return b, problems
}

func parseTransition(rt rawTransition, t Transition, report func(string, ...any)) Transition {
	if Present(rt.Type) {
		var name string
		if err := json.Unmarshal(rt.Type, &name); err != nil {
			report("transition.type: invalid value %s, using %s", rt.Type, t.Type)
		} else if typ, ok := ParseTransitionType(name); ok {
			t.Type = typ
		} else {
			report("transition.type: unknown %q, using %s", name, t.Type)
		}
	}
	if Present(rt.Speed) {
		if v, ok := Number(rt.Speed); ok {
			n := int(math.Round(v))
			c := Clamp(n, MinTransitionSpeed, MaxTransitionSpeed)
			if c != n {
				report("transition.speed: %d out of range [%d,%d], clamped to %d", n, MinTransitionSpeed, MaxTransitionSpeed, c)
			}
			t.Speed = c
		} else {
			report("transition.speed: invalid value %s, using %d", rt.Speed, t.Speed)
		}
	}
	if Present(rt.Enabled) {
		if v, ok := Bool(rt.Enabled); ok {
			t.Enabled = v
		} else {
			report("transition.enabled: invalid value %s, using %t", rt.Enabled, t.Enabled)
		}
	}
	return t
}

func seconds(raw json.RawMessage, key string, lo, hi int, def time.Duration, report func(string, ...any)) time.Duration {
	if !Present(raw) {
		return def
	}
	v, ok := Number(raw)
	if !ok {
		report("%s: invalid value %s, using %s", key, raw, def)
		return def
	}
	n := int(math.Round(v))
	c := Clamp(n, lo, hi)
	if c != n {
		report("%s: %d out of range [%d,%d], clamped to %d", key, n, lo, hi, c)
	}
	return time.Duration(c) * time.Second
}

// Present reports whether a raw JSON value was given and is not null.
func Present(raw json.RawMessage) bool {
	s := bytes.TrimSpace(raw)
	return len(s) > 0 && !bytes.Equal(s, []byte("null"))
}

// Number decodes a JSON number or a numeric string.
func Number(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, finite(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, finite(f)
}

// Bool decodes a JSON boolean or one of the strings "true"/"false".
func Bool(raw json.RawMessage) (bool, bool) {
	var v bool
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return false, false
	}
	v, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, false
	}
	return v, true
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
