package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.RenderingBackend != BackendV2 {
		t.Fatalf("expected default backend v2, got %q", cfg.RenderingBackend)
	}
	if *cfg.Global.BorderWidth != DefaultBorderWidth {
		t.Fatalf("expected border_width %d, got %d", DefaultBorderWidth, *cfg.Global.BorderWidth)
	}
	if *cfg.Global.BorderOffset != DefaultBorderOffset {
		t.Fatalf("expected border_offset %d, got %d", DefaultBorderOffset, *cfg.Global.BorderOffset)
	}
	if *cfg.Global.InitializeDelay != DefaultInitializeDelay {
		t.Fatalf("expected initialize_delay %d, got %d", DefaultInitializeDelay, *cfg.Global.InitializeDelay)
	}
	if *cfg.Global.UnminimizeDelay != DefaultUnminimizeDelay {
		t.Fatalf("expected unminimize_delay %d, got %d", DefaultUnminimizeDelay, *cfg.Global.UnminimizeDelay)
	}
}

func TestDefaultYAML_Parses(t *testing.T) {
	cfg, err := Parse(DefaultYAML())
	if err != nil {
		t.Fatalf("embedded default config failed to parse: %v", err)
	}
	if *cfg.Global.BorderWidth != DefaultBorderWidth {
		t.Fatalf("expected border_width %d, got %d", DefaultBorderWidth, *cfg.Global.BorderWidth)
	}
}

func TestParse_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("# nothing here\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if *cfg.Global.BorderWidth != DefaultBorderWidth {
		t.Fatalf("expected border_width %d, got %d", DefaultBorderWidth, *cfg.Global.BorderWidth)
	}
	if cfg.Global.ActiveColor.Solid != "accent" {
		t.Fatalf("expected accent active color, got %q", cfg.Global.ActiveColor.Solid)
	}
}

func TestParse_ExplicitZeroWidthAndOffsetKept(t *testing.T) {
	cfg, err := Parse([]byte("global:\n  border_offset: 0\n  border_width: 0\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if *cfg.Global.BorderWidth != 0 {
		t.Fatalf("explicit border_width 0 became %d", *cfg.Global.BorderWidth)
	}
	if *cfg.Global.BorderOffset != 0 {
		t.Fatalf("explicit border_offset 0 became %d", *cfg.Global.BorderOffset)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero width/offset should validate, got %v", err)
	}
}

func TestBackendKind_String(t *testing.T) {
	if BackendV2.String() != "v2" || BackendLegacy.String() != "legacy" {
		t.Fatalf("unexpected backend names %q, %q", BackendV2.String(), BackendLegacy.String())
	}
}

func TestParse_StrictUnknownKeyErrors(t *testing.T) {
	_, err := Parse([]byte("global:\n  bordr_width: 4\n"))
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "bordr_width") {
		t.Fatalf("expected error to name the unknown key, got %v", err)
	}
}

func TestParse_LegacyKeyAliases(t *testing.T) {
	data := strings.Join([]string{
		"render_backend: legacy",
		"global:",
		"  init_delay: 50",
		"  restore_delay: 75",
		"",
	}, "\n")
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.RenderingBackend != BackendLegacy {
		t.Fatalf("expected legacy backend via render_backend alias, got %q", cfg.RenderingBackend)
	}
	if *cfg.Global.InitializeDelay != 50 {
		t.Fatalf("expected initialize_delay 50 via init_delay alias, got %d", *cfg.Global.InitializeDelay)
	}
	if *cfg.Global.UnminimizeDelay != 75 {
		t.Fatalf("expected unminimize_delay 75 via restore_delay alias, got %d", *cfg.Global.UnminimizeDelay)
	}
}

func TestParse_AnimationDefaultsApplied(t *testing.T) {
	data := strings.Join([]string{
		"global:",
		"  animations:",
		"    active:",
		"      - kind: fade",
		"",
	}, "\n")
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	specs := cfg.Global.Animations.Active
	if len(specs) != 1 {
		t.Fatalf("expected 1 animation, got %d", len(specs))
	}
	if specs[0].Duration != DefaultAnimDuration {
		t.Fatalf("expected default duration %d, got %d", DefaultAnimDuration, specs[0].Duration)
	}
	if specs[0].Easing != EaseLinear {
		t.Fatalf("expected linear easing, got %q", specs[0].Easing)
	}
	if cfg.Global.Animations.FPS != DefaultFPS {
		t.Fatalf("expected fps %d, got %d", DefaultFPS, cfg.Global.Animations.FPS)
	}
}

func TestParse_EasingNamesCanonicalized(t *testing.T) {
	data := strings.Join([]string{
		"global:",
		"  animations:",
		"    active:",
		"      - kind: fade",
		"        easing: EaseInOutQuad",
		"",
	}, "\n")
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := cfg.Global.Animations.Active[0].Easing; got != EaseInOutQuad {
		t.Fatalf("expected canonical easing %q, got %q", EaseInOutQuad, got)
	}
}

func TestParse_InvalidValuesRejected(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"bad backend", "rendering_backend: direct2d\n"},
		{"negative width", "global:\n  border_width: -1\n"},
		{"fps too high", "global:\n  animations:\n    fps: 500\n"},
		{"bad animation kind", "global:\n  animations:\n    active:\n      - kind: wobble\n"},
		{"bad easing", "global:\n  animations:\n    active:\n      - kind: fade\n        easing: bounce\n"},
		{"bad effect kind", "global:\n  effects:\n    active:\n      - kind: blur\n"},
		{"effect opacity out of range", "global:\n  effects:\n    active:\n      - kind: glow\n        opacity: 1.5\n"},
		{"rule missing name", "window_rules:\n  - match: class\n"},
		{"rule bad match", "window_rules:\n  - match: pid\n    name: x\n"},
		{"rule bad regex", "window_rules:\n  - match: class\n    name: \"[\"\n    strategy: regex\n"},
	}
	for _, tc := range cases {
		if _, err := Parse([]byte(tc.yaml)); err == nil {
			t.Fatalf("%s: expected parse error", tc.name)
		}
	}
}

func TestParse_RuleStrategyDefaultsToEquals(t *testing.T) {
	data := strings.Join([]string{
		"window_rules:",
		"  - match: class",
		"    name: firefox",
		"",
	}, "\n")
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.WindowRules[0].Strategy != StrategyEquals {
		t.Fatalf("expected equals strategy, got %q", cfg.WindowRules[0].Strategy)
	}
}

func TestRadius_UnmarshalForms(t *testing.T) {
	cases := []struct {
		yaml string
		want Radius
	}{
		{"border_radius: auto", Radius{Mode: RadiusAuto}},
		{"border_radius: square", Radius{Mode: RadiusSquare}},
		{"border_radius: round", Radius{Mode: RadiusRound}},
		{"border_radius: round-small", Radius{Mode: RadiusRoundSmall}},
		{"border_radius: RoundSmall", Radius{Mode: RadiusRoundSmall}},
		{"border_radius: round_small", Radius{Mode: RadiusRoundSmall}},
		{"border_radius: 12.5", Radius{Mode: RadiusCustom, Value: 12.5}},
		{"border_radius: 0", Radius{Mode: RadiusCustom, Value: 0}},
		{"border_radius: -1", Radius{Mode: RadiusAuto}},
	}
	for _, tc := range cases {
		cfg, err := Parse([]byte("global:\n  " + tc.yaml + "\n"))
		if err != nil {
			t.Fatalf("%s: parse: %v", tc.yaml, err)
		}
		if cfg.Global.BorderRadius != tc.want {
			t.Fatalf("%s: expected %+v, got %+v", tc.yaml, tc.want, cfg.Global.BorderRadius)
		}
	}

	if _, err := Parse([]byte("global:\n  border_radius: big\n")); err == nil {
		t.Fatalf("expected error for unknown radius name")
	}
}

func TestEnableMode_UnmarshalForms(t *testing.T) {
	cases := []struct {
		yaml string
		want EnableMode
	}{
		{"enabled: true", EnableTrue},
		{"enabled: false", EnableFalse},
		{"enabled: auto", EnableAuto},
	}
	for _, tc := range cases {
		data := "window_rules:\n  - match: class\n    name: x\n    " + tc.yaml + "\n"
		cfg, err := Parse([]byte(data))
		if err != nil {
			t.Fatalf("%s: parse: %v", tc.yaml, err)
		}
		if got := *cfg.WindowRules[0].Enabled; got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.yaml, tc.want, got)
		}
	}

	data := "window_rules:\n  - match: class\n    name: x\n    enabled: sometimes\n"
	if _, err := Parse([]byte(data)); err == nil {
		t.Fatalf("expected error for invalid enabled value")
	}
}

func TestColorSpec_UnmarshalSolidAndGradient(t *testing.T) {
	data := strings.Join([]string{
		"global:",
		"  active_color:",
		"    colors: [\"#ff0000\", \"#0000ff\"]",
		"    direction: 45deg",
		"  inactive_color: \"#333333\"",
		"",
	}, "\n")
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g := cfg.Global.ActiveColor.Gradient
	if g == nil {
		t.Fatalf("expected gradient active color")
	}
	if len(g.Colors) != 2 || g.Direction.Angle != "45deg" {
		t.Fatalf("unexpected gradient: %+v", g)
	}
	if cfg.Global.InactiveColor.Solid != "#333333" {
		t.Fatalf("expected solid inactive color, got %+v", cfg.Global.InactiveColor)
	}
}

func TestColorSpec_UnmarshalCoordinateDirection(t *testing.T) {
	data := strings.Join([]string{
		"global:",
		"  active_color:",
		"    colors: [\"#ff0000\", \"#0000ff\"]",
		"    direction:",
		"      start: [0.0, 0.0]",
		"      end: [1.0, 1.0]",
		"",
	}, "\n")
	cfg, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	coords := cfg.Global.ActiveColor.Gradient.Direction.Coordinates
	if coords == nil {
		t.Fatalf("expected coordinate direction")
	}
	if coords.Start != [2]float64{0, 0} || coords.End != [2]float64{1, 1} {
		t.Fatalf("unexpected coordinates: %+v", coords)
	}
}

func TestAnimationsConfig_EffectiveFPS(t *testing.T) {
	var nilCfg *AnimationsConfig
	if got := nilCfg.EffectiveFPS(); got != DefaultFPS {
		t.Fatalf("expected nil config to yield %d, got %d", DefaultFPS, got)
	}
	if got := (&AnimationsConfig{FPS: 0}).EffectiveFPS(); got != DefaultFPS {
		t.Fatalf("expected fps 0 to inherit %d, got %d", DefaultFPS, got)
	}
	if got := (&AnimationsConfig{FPS: 144}).EffectiveFPS(); got != 144 {
		t.Fatalf("expected fps 144, got %d", got)
	}
}

func TestLoadFromPath_ErrorIncludesPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("rendering_backend: nope\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for invalid backend")
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}
