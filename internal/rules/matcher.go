// Package rules decides, per window, whether it gets a border and with
// what configuration. Matching is deterministic and order-sensitive: rules
// are tested in declared order and the first match wins.
package rules

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/1broseidon/framelight/internal/colors"
	"github.com/1broseidon/framelight/internal/config"
	"github.com/1broseidon/framelight/internal/wm"
)

// brushPair is a resolved active/inactive brush set.
type brushPair struct {
	active   colors.Brush
	inactive colors.Brush
}

// compiledRule is a window rule with its pattern pre-compiled and its
// colors pre-resolved, so the hot resolve path never parses anything.
type compiledRule struct {
	rule    *config.WindowRule
	pattern *regexp.Regexp // only for the regex strategy
	colors  brushPair      // global colors with rule overrides applied
}

// Matcher resolves window identities against an immutable config snapshot.
// Build one per loaded config; resolve is pure and safe for concurrent use.
type Matcher struct {
	cfg      *config.Config
	global   brushPair
	compiled []compiledRule
}

// NewMatcher compiles the rule list. Invalid colors are reported here, at
// load time, so resolve can never fail; the caller rejects the whole
// config on error, keeping reloads atomic.
func NewMatcher(cfg *config.Config) (*Matcher, error) {
	global, err := resolveBrushes(cfg.Global.ActiveColor, cfg.Global.InactiveColor)
	if err != nil {
		return nil, fmt.Errorf("global: %w", err)
	}

	m := &Matcher{cfg: cfg, global: global}
	for i := range cfg.WindowRules {
		rule := &cfg.WindowRules[i]
		cr := compiledRule{rule: rule}

		if rule.Strategy == config.StrategyRegex {
			re, err := regexp.Compile(rule.Name)
			if err != nil {
				return nil, fmt.Errorf("window_rules[%d]: invalid regex %q: %w", i, rule.Name, err)
			}
			cr.pattern = re
		}

		activeSpec := cfg.Global.ActiveColor
		if rule.ActiveColor != nil {
			activeSpec = *rule.ActiveColor
		}
		inactiveSpec := cfg.Global.InactiveColor
		if rule.InactiveColor != nil {
			inactiveSpec = *rule.InactiveColor
		}
		pair, err := resolveBrushes(activeSpec, inactiveSpec)
		if err != nil {
			return nil, fmt.Errorf("window_rules[%d]: %w", i, err)
		}
		cr.colors = pair

		m.compiled = append(m.compiled, cr)
	}
	return m, nil
}

// Config returns the snapshot the matcher was built from.
func (m *Matcher) Config() *config.Config {
	return m.cfg
}

// Resolve maps a window identity to its effective configuration. It never
// fails and has no side effects; identical inputs yield identical outputs.
func (m *Matcher) Resolve(id wm.Identity) Effective {
	for i := range m.compiled {
		cr := &m.compiled[i]
		if cr.matches(id) {
			return m.merge(cr)
		}
	}
	return m.fromGlobal()
}

// matches tests one rule against the identity.
func (cr *compiledRule) matches(id wm.Identity) bool {
	var subject string
	switch cr.rule.Match {
	case config.MatchClass:
		subject = id.Class
	case config.MatchTitle:
		subject = id.Title
	case config.MatchProcess:
		subject = id.Process
	default:
		return false
	}

	switch cr.rule.Strategy {
	case config.StrategyContains:
		return strings.Contains(strings.ToLower(subject), strings.ToLower(cr.rule.Name))
	case config.StrategyRegex:
		return cr.pattern.MatchString(subject)
	default: // equals
		return strings.EqualFold(subject, cr.rule.Name)
	}
}

// fromGlobal builds the effective config with no rule applied.
func (m *Matcher) fromGlobal() Effective {
	g := &m.cfg.Global
	anims := g.Animations
	return Effective{
		Enabled:           true,
		Width:             intOr(g.BorderWidth, config.DefaultBorderWidth),
		Offset:            intOr(g.BorderOffset, config.DefaultBorderOffset),
		Radius:            g.BorderRadius,
		ActiveColor:       m.global.active,
		InactiveColor:     m.global.inactive,
		InitializeDelay:   msDuration(g.InitializeDelay, config.DefaultInitializeDelay),
		UnminimizeDelay:   msDuration(g.UnminimizeDelay, config.DefaultUnminimizeDelay),
		AnimationsEnabled: anims.IsEnabled(),
		FPS:               animFPS(anims),
		ActiveAnims:       anims.Active,
		InactiveAnims:     anims.Inactive,
		EffectsEnabled:    g.Effects.IsEnabled(),
		ActiveEffects:     g.Effects.Active,
		InactiveEffects:   g.Effects.Inactive,
		Backend:           m.cfg.RenderingBackend,
	}
}

// merge layers one rule's overrides on top of the global config.
// Override wins per field; unset fields inherit.
func (m *Matcher) merge(cr *compiledRule) Effective {
	eff := m.fromGlobal()
	rule := cr.rule

	// enabled=auto inherits default eligibility rather than forcing a
	// value.
	if rule.Enabled != nil {
		switch *rule.Enabled {
		case config.EnableTrue:
			eff.Enabled = true
		case config.EnableFalse:
			eff.Enabled = false
		}
	}

	if rule.BorderWidth != nil {
		eff.Width = *rule.BorderWidth
	}
	if rule.BorderOffset != nil {
		eff.Offset = *rule.BorderOffset
	}
	if rule.BorderRadius != nil {
		eff.Radius = *rule.BorderRadius
	}

	eff.ActiveColor = cr.colors.active
	eff.InactiveColor = cr.colors.inactive

	if rule.InitializeDelay != nil {
		eff.InitializeDelay = time.Duration(*rule.InitializeDelay) * time.Millisecond
	}
	if rule.UnminimizeDelay != nil {
		eff.UnminimizeDelay = time.Duration(*rule.UnminimizeDelay) * time.Millisecond
	}

	if rule.Animations != nil {
		eff.AnimationsEnabled = rule.Animations.IsEnabled()
		eff.ActiveAnims = rule.Animations.Active
		eff.InactiveAnims = rule.Animations.Inactive
		if rule.Animations.FPS > 0 {
			eff.FPS = rule.Animations.FPS
		}
	}
	if rule.Effects != nil {
		eff.EffectsEnabled = rule.Effects.IsEnabled()
		eff.ActiveEffects = rule.Effects.Active
		eff.InactiveEffects = rule.Effects.Inactive
	}
	return eff
}

func resolveBrushes(active, inactive config.ColorSpec) (brushPair, error) {
	a, err := resolveBrush(active, true)
	if err != nil {
		return brushPair{}, fmt.Errorf("active_color: %w", err)
	}
	i, err := resolveBrush(inactive, false)
	if err != nil {
		return brushPair{}, fmt.Errorf("inactive_color: %w", err)
	}
	return brushPair{active: a, inactive: i}, nil
}

func resolveBrush(spec config.ColorSpec, active bool) (colors.Brush, error) {
	if spec.Gradient != nil {
		var coords *[2][2]float64
		if c := spec.Gradient.Direction.Coordinates; c != nil {
			coords = &[2][2]float64{c.Start, c.End}
		}
		return colors.NewGradientBrush(spec.Gradient.Colors, spec.Gradient.Direction.Angle, coords, active)
	}
	solid := spec.Solid
	if solid == "" {
		solid = "accent"
	}
	return colors.NewSolidBrush(solid, active)
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func msDuration(ms *int, def int) time.Duration {
	if ms == nil {
		return time.Duration(def) * time.Millisecond
	}
	return time.Duration(*ms) * time.Millisecond
}

func animFPS(a *config.AnimationsConfig) int {
	return a.EffectiveFPS()
}
