// Package plugin defines the contract between the display host and the
// plugins it rotates through.
//
// A plugin is constructed with the host services it may use, configured from
// the host's JSON object, and then driven entirely by the host: OnTick every
// update interval, OnActivate when it is about to be shown and OnDeactivate
// when its display duration has elapsed. Hooks never return errors; problems
// are logged and the plugin degrades instead of failing the host loop.
package plugin

import (
	"io/fs"
	"time"

	"xmas/hal"
)

// Services are the host capabilities handed to a plugin at construction.
type Services struct {
	Display hal.Display
	Clock   hal.Clock
	Logger  hal.Logger

	// Assets is the plugin's asset directory (nil = no assets).
	Assets fs.FS

	// LogLevel is the minimum level the plugin logger emits.
	LogLevel Level
}

// Schedule is what the host needs to drive a plugin.
type Schedule struct {
	DisplayDuration time.Duration
	UpdateInterval  time.Duration
	Transition      Transition
}

// Plugin is implemented by everything the host can put on the display.
type Plugin interface {
	ID() string

	// Configure replaces the plugin configuration. Invalid values are
	// clamped or defaulted and logged.
	Configure(raw []byte)

	Enable()
	Disable()
	Enabled() bool

	Schedule() Schedule

	// OnTick is called every update interval while the plugin is enabled.
	OnTick()
	// OnActivate is called when the plugin is about to be displayed.
	OnActivate()
	// OnDeactivate is called when the display duration has elapsed.
	OnDeactivate()
}
