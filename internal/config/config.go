package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// BackendKind selects which rendering backend paints borders.
type BackendKind string

const (
	BackendLegacy BackendKind = "legacy" // solid colors, square corners
	BackendV2     BackendKind = "v2"     // gradients, rounded corners, effects
)

func (b BackendKind) String() string { return string(b) }

// MatchKind is the window attribute a rule tests against.
type MatchKind string

const (
	MatchClass   MatchKind = "class"
	MatchTitle   MatchKind = "title"
	MatchProcess MatchKind = "process"
)

// MatchStrategy is how a rule's pattern is compared.
type MatchStrategy string

const (
	StrategyEquals   MatchStrategy = "equals"
	StrategyContains MatchStrategy = "contains"
	StrategyRegex    MatchStrategy = "regex"
)

// AnimationKind names a border transition animation.
type AnimationKind string

const (
	AnimFade          AnimationKind = "fade"
	AnimSpiral        AnimationKind = "spiral"
	AnimReverseSpiral AnimationKind = "reverse-spiral"
)

// EffectKind names a visual effect layered onto the border.
type EffectKind string

const (
	EffectGlow   EffectKind = "glow"
	EffectShadow EffectKind = "shadow"
)

// EasingKind names an easing curve for animation progress.
type EasingKind string

const (
	EaseLinear     EasingKind = "linear"
	EaseInQuad     EasingKind = "ease-in-quad"
	EaseOutQuad    EasingKind = "ease-out-quad"
	EaseInOutQuad  EasingKind = "ease-in-out-quad"
	EaseInCubic    EasingKind = "ease-in-cubic"
	EaseOutCubic   EasingKind = "ease-out-cubic"
	EaseInOutCubic EasingKind = "ease-in-out-cubic"
)

// RadiusMode distinguishes the named corner-radius policies from a custom
// pixel value.
type RadiusMode int

const (
	RadiusAuto RadiusMode = iota
	RadiusSquare
	RadiusRound
	RadiusRoundSmall
	RadiusCustom
)

// Radius is the corner radius policy for a border. Auto derives the radius
// from the window's reported corner style at paint time.
type Radius struct {
	Mode  RadiusMode
	Value float64 // only meaningful for RadiusCustom
}

// UnmarshalYAML accepts either a named policy or a bare number.
func (r *Radius) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		switch normalizeKey(s) {
		case "auto":
			*r = Radius{Mode: RadiusAuto}
			return nil
		case "square":
			*r = Radius{Mode: RadiusSquare}
			return nil
		case "round":
			*r = Radius{Mode: RadiusRound}
			return nil
		case "roundsmall":
			*r = Radius{Mode: RadiusRoundSmall}
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			*r = customRadius(f)
			return nil
		}
		return fmt.Errorf("invalid border_radius %q", s)
	}

	var f float64
	if err := value.Decode(&f); err != nil {
		return fmt.Errorf("invalid border_radius: %w", err)
	}
	*r = customRadius(f)
	return nil
}

// customRadius maps a numeric radius to a policy. -1 is kept as an alias
// for Auto so old configs keep working.
func customRadius(f float64) Radius {
	if f == -1 {
		return Radius{Mode: RadiusAuto}
	}
	return Radius{Mode: RadiusCustom, Value: f}
}

func (r Radius) String() string {
	switch r.Mode {
	case RadiusAuto:
		return "auto"
	case RadiusSquare:
		return "square"
	case RadiusRound:
		return "round"
	case RadiusRoundSmall:
		return "round-small"
	default:
		return strconv.FormatFloat(r.Value, 'g', -1, 64)
	}
}

// EnableMode is the tri-state enabled flag on a window rule: force on,
// force off, or inherit the default eligibility.
type EnableMode int

const (
	EnableAuto EnableMode = iota
	EnableTrue
	EnableFalse
)

// UnmarshalYAML accepts true/false or the string "auto".
func (e *EnableMode) UnmarshalYAML(value *yaml.Node) error {
	var b bool
	if err := value.Decode(&b); err == nil {
		if b {
			*e = EnableTrue
		} else {
			*e = EnableFalse
		}
		return nil
	}
	var s string
	if err := value.Decode(&s); err == nil && normalizeKey(s) == "auto" {
		*e = EnableAuto
		return nil
	}
	return fmt.Errorf("invalid enabled value: want true, false, or auto")
}

// GradientCoordinates are normalized start/end points of a linear gradient,
// both in [0,1] space relative to the border rect.
type GradientCoordinates struct {
	Start [2]float64 `yaml:"start"`
	End   [2]float64 `yaml:"end"`
}

// GradientDirection is either an angle string like "45deg" or explicit
// start/end coordinates.
type GradientDirection struct {
	Angle       string
	Coordinates *GradientCoordinates
}

func (d *GradientDirection) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		d.Angle = s
		d.Coordinates = nil
		return nil
	}
	var coords GradientCoordinates
	if err := value.Decode(&coords); err != nil {
		return fmt.Errorf("invalid gradient direction: %w", err)
	}
	d.Angle = ""
	d.Coordinates = &coords
	return nil
}

// GradientSpec describes a linear gradient fill.
type GradientSpec struct {
	Colors    []string          `yaml:"colors"`
	Direction GradientDirection `yaml:"direction"`
}

// ColorSpec is either a solid color (hex string or "accent") or a gradient.
type ColorSpec struct {
	Solid    string
	Gradient *GradientSpec
}

func (c *ColorSpec) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		c.Solid = s
		c.Gradient = nil
		return nil
	}
	var g GradientSpec
	if err := value.Decode(&g); err != nil {
		return fmt.Errorf("invalid color: want hex string, \"accent\", or gradient")
	}
	c.Solid = ""
	c.Gradient = &g
	return nil
}

// IsZero reports whether the spec was left unset in the config.
func (c ColorSpec) IsZero() bool {
	return c.Solid == "" && c.Gradient == nil
}

// AnimationSpec is one animation entry. Multiple entries per trigger run
// concurrently and compose by parameter.
type AnimationSpec struct {
	Kind     AnimationKind `yaml:"kind"`
	Duration int           `yaml:"duration"` // milliseconds, 0 = default
	Easing   EasingKind    `yaml:"easing"`   // empty = linear
}

// AnimationsConfig configures the animation layer.
type AnimationsConfig struct {
	Enabled  *bool           `yaml:"enabled"`
	FPS      int             `yaml:"fps"`
	Active   []AnimationSpec `yaml:"active"`
	Inactive []AnimationSpec `yaml:"inactive"`
}

// IsEnabled defaults to true when the flag is omitted.
func (a *AnimationsConfig) IsEnabled() bool {
	return a == nil || a.Enabled == nil || *a.Enabled
}

// EffectiveFPS returns the configured frame rate, falling back to the
// default for missing or nonsensical values.
func (a *AnimationsConfig) EffectiveFPS() int {
	if a == nil || a.FPS <= 0 {
		return DefaultFPS
	}
	return a.FPS
}

// EffectSpec is one effect entry (glow or shadow).
type EffectSpec struct {
	Kind              EffectKind `yaml:"kind"`
	StandardDeviation float64    `yaml:"standard_deviation"`
	Opacity           float64    `yaml:"opacity"`
	Translation       Vec2       `yaml:"translation"`
}

// Vec2 is a pixel offset.
type Vec2 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// EffectsConfig configures the effect layer. Effects and animations are
// independently togglable layers that compose additively.
type EffectsConfig struct {
	Enabled  *bool        `yaml:"enabled"`
	Active   []EffectSpec `yaml:"active"`
	Inactive []EffectSpec `yaml:"inactive"`
}

// IsEnabled defaults to true when the flag is omitted.
func (e *EffectsConfig) IsEnabled() bool {
	return e == nil || e.Enabled == nil || *e.Enabled
}

// Global is the configuration applied to every window that no rule
// overrides.
type Global struct {
	BorderWidth     *int              `yaml:"border_width"`
	BorderOffset    *int              `yaml:"border_offset"`
	BorderRadius    Radius            `yaml:"border_radius"`
	ActiveColor     ColorSpec         `yaml:"active_color"`
	InactiveColor   ColorSpec         `yaml:"inactive_color"`
	Animations      *AnimationsConfig `yaml:"animations"`
	Effects         *EffectsConfig    `yaml:"effects"`
	InitializeDelay *int              `yaml:"initialize_delay"` // milliseconds
	UnminimizeDelay *int              `yaml:"unminimize_delay"` // milliseconds
}

// WindowRule overrides parts of the global config for matching windows.
// Unset fields inherit from global.
type WindowRule struct {
	Match           MatchKind         `yaml:"match"`
	Name            string            `yaml:"name"`
	Strategy        MatchStrategy     `yaml:"strategy"`
	Enabled         *EnableMode       `yaml:"enabled"`
	BorderWidth     *int              `yaml:"border_width"`
	BorderOffset    *int              `yaml:"border_offset"`
	BorderRadius    *Radius           `yaml:"border_radius"`
	ActiveColor     *ColorSpec        `yaml:"active_color"`
	InactiveColor   *ColorSpec        `yaml:"inactive_color"`
	Animations      *AnimationsConfig `yaml:"animations"`
	Effects         *EffectsConfig    `yaml:"effects"`
	InitializeDelay *int              `yaml:"initialize_delay"`
	UnminimizeDelay *int              `yaml:"unminimize_delay"`
}

// Config is the root of config.yaml.
type Config struct {
	WatchConfigChanges bool         `yaml:"watch_config_changes"`
	RenderingBackend   BackendKind  `yaml:"rendering_backend"`
	LogLevel           string       `yaml:"log_level"`
	Global             Global       `yaml:"global"`
	WindowRules        []WindowRule `yaml:"window_rules"`
}

// Defaults matching upstream behavior: borders show even with an empty
// config file.
const (
	DefaultBorderWidth     = 4
	DefaultBorderOffset    = -1
	DefaultInitializeDelay = 250 // ms
	DefaultUnminimizeDelay = 200 // ms
	DefaultFPS             = 60
	DefaultAnimDuration    = 450 // ms
)

// DefaultConfig returns the configuration used when no file exists or a
// section is omitted.
func DefaultConfig() *Config {
	cfg := &Config{
		RenderingBackend: BackendV2,
		Global: Global{
			ActiveColor:   ColorSpec{Solid: "accent"},
			InactiveColor: ColorSpec{Solid: "accent"},
		},
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills unset fields after decoding. Width and offset are
// pointers so an explicit 0 in the file is distinguishable from an omitted
// key.
func (c *Config) applyDefaults() {
	if c.RenderingBackend == "" {
		c.RenderingBackend = BackendV2
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	g := &c.Global
	if g.BorderWidth == nil {
		g.BorderWidth = intPtr(DefaultBorderWidth)
	}
	if g.BorderOffset == nil {
		g.BorderOffset = intPtr(DefaultBorderOffset)
	}
	if g.ActiveColor.IsZero() {
		g.ActiveColor = ColorSpec{Solid: "accent"}
	}
	if g.InactiveColor.IsZero() {
		g.InactiveColor = ColorSpec{Solid: "accent"}
	}
	if g.InitializeDelay == nil {
		g.InitializeDelay = intPtr(DefaultInitializeDelay)
	}
	if g.UnminimizeDelay == nil {
		g.UnminimizeDelay = intPtr(DefaultUnminimizeDelay)
	}
	if g.Animations == nil {
		g.Animations = &AnimationsConfig{}
	}
	if g.Animations.FPS == 0 {
		g.Animations.FPS = DefaultFPS
	}
	applyAnimationDefaults(g.Animations)
	if g.Effects == nil {
		g.Effects = &EffectsConfig{}
	}
	for i := range c.WindowRules {
		if r := c.WindowRules[i].Animations; r != nil {
			applyAnimationDefaults(r)
		}
	}
}

func applyAnimationDefaults(a *AnimationsConfig) {
	for _, list := range [][]AnimationSpec{a.Active, a.Inactive} {
		for i := range list {
			if list[i].Duration == 0 {
				list[i].Duration = DefaultAnimDuration
			}
			if list[i].Easing == "" {
				list[i].Easing = EaseLinear
			}
		}
	}
}

func intPtr(v int) *int { return &v }

// normalizeKey lowercases and strips separators so config enums accept
// "RoundSmall", "round-small", and "round_small" alike.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}
