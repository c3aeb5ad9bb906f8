//go:build !tinygo

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"xmas/app"
	"xmas/hal"
	"xmas/plugin"
)

func main() {
	var cfg hal.HeadlessConfig
	var (
		scale      int
		configPath string
		assetsDir  string
		date       string
		debug      bool
	)
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.IntVar(&cfg.Host.Width, "width", 128, "Display width in pixels.")
	flag.IntVar(&cfg.Host.Height, "height", 64, "Display height in pixels.")
	flag.IntVar(&scale, "scale", 4, "Window scale factor.")
	flag.StringVar(&configPath, "config", "xmas.json", "Plugin configuration file (missing = defaults).")
	flag.StringVar(&assetsDir, "assets", ".", "Asset directory.")
	flag.StringVar(&date, "date", "", "Pretend today is YYYY-MM-DD.")
	flag.StringVar(&cfg.Snapshot, "snapshot", "", "Write the final frame to a PNG (headless only).")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging and the window TPS overlay.")
	flag.Parse()

	var plugins map[string]json.RawMessage
	if configPath != "" {
		var err error
		plugins, err = loadConfig(os.DirFS(filepath.Dir(configPath)), filepath.Base(configPath))
		if err != nil {
			fatalf("%v", err)
		}
	}
	if date != "" {
		now, err := fakeClock(date, time.Now)
		if err != nil {
			fatalf("%v", err)
		}
		cfg.Host.Now = now
	}

	appCfg := app.Config{
		Plugins:  plugins,
		Assets:   os.DirFS(assetsDir),
		LogLevel: plugin.LevelInfo,
	}
	if debug {
		appCfg.LogLevel = plugin.LevelDebug
	}
	newApp := func(h hal.HAL) func() error { return app.New(h, appCfg) }

	if cfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, newApp, cfg); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(newApp, hal.WindowConfig{Host: cfg.Host, Scale: scale, Debug: debug}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads {"<plugin id>": {...}} from fsys. A missing file yields
// no configuration.
func loadConfig(fsys fs.FS, path string) (map[string]json.RawMessage, error) {
	data, err := fs.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	var plugins map[string]json.RawMessage
	if err := json.Unmarshal(data, &plugins); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return plugins, nil
}

// fakeClock returns a clock that starts at the given date, at the current time
// of day, and then runs in real time.
func fakeClock(date string, now func() time.Time) (func() time.Time, error) {
	day, err := time.ParseInLocation(time.DateOnly, date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("date: %w", err)
	}
	start := now()
	h, m, s := start.Clock()
	base := day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second)
	return func() time.Time { return base.Add(now().Sub(start)) }, nil
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
