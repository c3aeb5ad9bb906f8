package christmas

import (
	"strings"
	"testing"
	"time"

	"xmas/plugin"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, problems := ParseConfig(nil)
	if len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.TextColor != (RGB{255, 0, 0}) || cfg.TreeColor != (RGB{0, 128, 0}) {
		t.Fatalf("unexpected default colors %+v %+v", cfg.TextColor, cfg.TreeColor)
	}
}

func TestParseConfigValues(t *testing.T) {
	raw := `{
		"enabled": true,
		"display_duration": 20,
		"text_color": ["255", "255", 255],
		"tree_color": [10, 200, 30],
		"tree_size": 24,
		"transition": {"type": "wipe", "speed": 3, "enabled": true}
	}`
	cfg, problems := ParseConfig([]byte(raw))
	if len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
	if cfg.TextColor != (RGB{255, 255, 255}) {
		t.Fatalf("unexpected text color %+v", cfg.TextColor)
	}
	if cfg.TreeColor != (RGB{10, 200, 30}) {
		t.Fatalf("unexpected tree color %+v", cfg.TreeColor)
	}
	if cfg.TreeSize != 24 {
		t.Fatalf("expected tree size 24, got %d", cfg.TreeSize)
	}
	if cfg.DisplayDuration != 20*time.Second {
		t.Fatalf("expected 20s, got %s", cfg.DisplayDuration)
	}
	if cfg.Transition.Type != plugin.TransitionWipe || cfg.Transition.Speed != 3 || !cfg.Transition.Enabled {
		t.Fatalf("unexpected transition %+v", cfg.Transition)
	}
}

func TestParseConfigSubstitutions(t *testing.T) {
	cases := []struct {
		raw     string
		check   func(Config) bool
		problem string
	}{
		{`{"text_color": [300, -5, 12]}`, func(c Config) bool { return c.TextColor == RGB{255, 0, 12} }, "text_color"},
		{`{"text_color": [1, 2]}`, func(c Config) bool { return c.TextColor == DefaultTextColor }, "text_color"},
		{`{"tree_color": "green"}`, func(c Config) bool { return c.TreeColor == DefaultTreeColor }, "tree_color"},
		{`{"tree_color": [0, "x", 0]}`, func(c Config) bool { return c.TreeColor == DefaultTreeColor }, "tree_color"},
		{`{"tree_size": 4}`, func(c Config) bool { return c.TreeSize == 0 }, "tree_size"},
		{`{"tree_size": 65}`, func(c Config) bool { return c.TreeSize == 0 }, "tree_size"},
		{`{"tree_size": "big"}`, func(c Config) bool { return c.TreeSize == 0 }, "tree_size"},
		{`{"update_interval": 1}`, func(c Config) bool { return c.UpdateInterval == time.Minute }, "update_interval"},
	}
	for _, tc := range cases {
		cfg, problems := ParseConfig([]byte(tc.raw))
		if !tc.check(cfg) {
			t.Fatalf("%s: unexpected config %+v", tc.raw, cfg)
		}
		found := false
		for _, p := range problems {
			if strings.HasPrefix(p, tc.problem) {
				found = true
			}
		}
		if !found {
			t.Fatalf("%s: expected a %s problem, got %v", tc.raw, tc.problem, problems)
		}
	}
}

func TestParseConfigMalformedJSON(t *testing.T) {
	cfg, problems := ParseConfig([]byte(`{"text_color": [1,2,3]`))
	if cfg != DefaultConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if len(problems) != 1 {
		t.Fatalf("expected exactly one problem, got %v", problems)
	}
}
