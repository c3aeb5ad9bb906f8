//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	Ticks   uint64
	Host    HostConfig

	// Snapshot, when set, receives a PNG of the final framebuffer.
	Snapshot string
}

// RunHeadless runs the plugin host without opening a window.
func RunHeadless(ctx context.Context, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}

	h := newHostHAL(cfg.Host)
	step := newApp(h)

	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	for {
		select {
		case <-ctx.Done():
			if err := saveSnapshot(h, cfg.Snapshot); err != nil {
				return err
			}
			return ctx.Err()
		case <-t.C:
			h.t.step()
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return saveSnapshot(h, cfg.Snapshot)
			}
		}
	}
}

func saveSnapshot(h *hostHAL, path string) error {
	if path == "" {
		return nil
	}
	if err := imaging.Save(Image(h.fb), path); err != nil {
		return fmt.Errorf("headless: snapshot %s: %w", path, err)
	}
	h.logger.WriteLineString("headless: snapshot written to " + path)
	return nil
}
