package config

import (
	"fmt"
	"regexp"
)

// Validate checks the whole config and returns the first problem found.
// Regex patterns are compiled here so the matcher never fails at resolve
// time; a config that fails validation is rejected atomically and the
// previous snapshot stays active.
func (c *Config) Validate() error {
	switch BackendKind(normalizeKey(string(c.RenderingBackend))) {
	case BackendLegacy:
		c.RenderingBackend = BackendLegacy
	case BackendV2:
		c.RenderingBackend = BackendV2
	default:
		return fmt.Errorf("invalid rendering_backend %q (want legacy or v2)", c.RenderingBackend)
	}

	if err := validateGlobal(&c.Global); err != nil {
		return err
	}

	for i := range c.WindowRules {
		if err := validateRule(&c.WindowRules[i]); err != nil {
			return fmt.Errorf("window_rules[%d]: %w", i, err)
		}
	}
	return nil
}

func validateGlobal(g *Global) error {
	if g.BorderWidth != nil && *g.BorderWidth < 0 {
		return fmt.Errorf("border_width must be >= 0, got %d", *g.BorderWidth)
	}
	if g.InitializeDelay != nil && *g.InitializeDelay < 0 {
		return fmt.Errorf("initialize_delay must be >= 0, got %d", *g.InitializeDelay)
	}
	if g.UnminimizeDelay != nil && *g.UnminimizeDelay < 0 {
		return fmt.Errorf("unminimize_delay must be >= 0, got %d", *g.UnminimizeDelay)
	}
	if err := validateAnimations(g.Animations); err != nil {
		return err
	}
	return validateEffects(g.Effects)
}

func validateRule(r *WindowRule) error {
	switch normalizedMatchKind(r.Match) {
	case MatchClass, MatchTitle, MatchProcess:
		r.Match = normalizedMatchKind(r.Match)
	case "":
		return fmt.Errorf("missing match (want class, title, or process)")
	default:
		return fmt.Errorf("invalid match %q (want class, title, or process)", r.Match)
	}

	if r.Name == "" {
		return fmt.Errorf("missing name")
	}

	switch normalizedStrategy(r.Strategy) {
	case StrategyEquals, StrategyContains:
		r.Strategy = normalizedStrategy(r.Strategy)
	case StrategyRegex:
		r.Strategy = StrategyRegex
		if _, err := regexp.Compile(r.Name); err != nil {
			return fmt.Errorf("invalid regex %q: %w", r.Name, err)
		}
	case "":
		r.Strategy = StrategyEquals
	default:
		return fmt.Errorf("invalid strategy %q (want equals, contains, or regex)", r.Strategy)
	}

	if r.BorderWidth != nil && *r.BorderWidth < 0 {
		return fmt.Errorf("border_width must be >= 0, got %d", *r.BorderWidth)
	}
	if err := validateAnimations(r.Animations); err != nil {
		return err
	}
	return validateEffects(r.Effects)
}

func validateAnimations(a *AnimationsConfig) error {
	if a == nil {
		return nil
	}
	// FPS 0 inherits the global rate.
	if a.FPS < 0 || a.FPS > 240 {
		return fmt.Errorf("animations.fps must be between 0 and 240, got %d", a.FPS)
	}
	for _, list := range [][]AnimationSpec{a.Active, a.Inactive} {
		for i := range list {
			spec := &list[i]
			switch AnimationKind(normalizeKey(string(spec.Kind))) {
			case AnimationKind("fade"):
				spec.Kind = AnimFade
			case AnimationKind("spiral"):
				spec.Kind = AnimSpiral
			case AnimationKind("reversespiral"):
				spec.Kind = AnimReverseSpiral
			default:
				return fmt.Errorf("invalid animation kind %q", spec.Kind)
			}
			if spec.Duration < 0 {
				return fmt.Errorf("animation duration must be >= 0, got %d", spec.Duration)
			}
			eased, ok := normalizeEasing(spec.Easing)
			if !ok {
				return fmt.Errorf("invalid easing %q", spec.Easing)
			}
			spec.Easing = eased
		}
	}
	return nil
}

func validateEffects(e *EffectsConfig) error {
	if e == nil {
		return nil
	}
	for _, list := range [][]EffectSpec{e.Active, e.Inactive} {
		for i := range list {
			spec := &list[i]
			switch EffectKind(normalizeKey(string(spec.Kind))) {
			case EffectKind("glow"):
				spec.Kind = EffectGlow
			case EffectKind("shadow"):
				spec.Kind = EffectShadow
			default:
				return fmt.Errorf("invalid effect kind %q", spec.Kind)
			}
			if spec.StandardDeviation < 0 {
				return fmt.Errorf("effect standard_deviation must be >= 0, got %v", spec.StandardDeviation)
			}
			if spec.Opacity < 0 || spec.Opacity > 1 {
				return fmt.Errorf("effect opacity must be in [0, 1], got %v", spec.Opacity)
			}
		}
	}
	return nil
}

func normalizedMatchKind(k MatchKind) MatchKind {
	return MatchKind(normalizeKey(string(k)))
}

func normalizedStrategy(s MatchStrategy) MatchStrategy {
	return MatchStrategy(normalizeKey(string(s)))
}

// normalizeEasing canonicalizes an easing name; the second return is false
// for unknown curves.
func normalizeEasing(e EasingKind) (EasingKind, bool) {
	switch EasingKind(normalizeKey(string(e))) {
	case "", EasingKind("linear"):
		return EaseLinear, true
	case EasingKind("easeinquad"):
		return EaseInQuad, true
	case EasingKind("easeoutquad"):
		return EaseOutQuad, true
	case EasingKind("easeinoutquad"):
		return EaseInOutQuad, true
	case EasingKind("easeincubic"):
		return EaseInCubic, true
	case EasingKind("easeoutcubic"):
		return EaseOutCubic, true
	case EasingKind("easeinoutcubic"):
		return EaseInOutCubic, true
	default:
		return e, false
	}
}

// NormalizeEasing is the exported form used by the animation engine when
// mapping config easing names to curves.
func NormalizeEasing(e EasingKind) EasingKind {
	n, _ := normalizeEasing(e)
	return n
}
