package effects

import (
	"testing"

	"github.com/1broseidon/framelight/internal/config"
)

func TestFromSpecs_Empty(t *testing.T) {
	if got := FromSpecs(nil); got != nil {
		t.Fatalf("expected nil for no specs, got %+v", got)
	}
}

func TestFromSpecs_KindsAndDefaults(t *testing.T) {
	specs := []config.EffectSpec{
		{Kind: config.EffectGlow, StandardDeviation: 8},
		{Kind: config.EffectShadow, StandardDeviation: 4, Translation: config.Vec2{X: 2, Y: 2}},
	}
	got := FromSpecs(specs)
	if len(got) != 2 {
		t.Fatalf("expected 2 params, got %d", len(got))
	}

	if got[0].Kind != Glow || got[0].StdDev != 8 {
		t.Fatalf("unexpected glow params: %+v", got[0])
	}
	// Omitted opacity falls back to the per-kind default.
	if got[0].Opacity != 0.4 {
		t.Fatalf("expected default glow opacity 0.4, got %v", got[0].Opacity)
	}

	if got[1].Kind != Shadow || got[1].Translation != (config.Vec2{X: 2, Y: 2}) {
		t.Fatalf("unexpected shadow params: %+v", got[1])
	}
	if got[1].Opacity != 0.3 {
		t.Fatalf("expected default shadow opacity 0.3, got %v", got[1].Opacity)
	}
}

func TestFromSpecs_ExplicitOpacityKept(t *testing.T) {
	got := FromSpecs([]config.EffectSpec{
		{Kind: config.EffectGlow, StandardDeviation: 8, Opacity: 0.9},
	})
	if got[0].Opacity != 0.9 {
		t.Fatalf("expected opacity 0.9, got %v", got[0].Opacity)
	}
}
