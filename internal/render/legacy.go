package render

// legacyBackend is the low-fidelity fallback: the whole border is painted
// one uniform color, gradients collapse to their average, corners stay
// square, and effects are skipped.
type legacyBackend struct{}

func (b *legacyBackend) Name() string          { return "legacy" }
func (b *legacyBackend) SupportsEffects() bool { return false }

func (b *legacyBackend) Paint(s Surface, f Frame) error {
	if err := s.SetGeometry(f.Outer, f.Thickness); err != nil {
		return err
	}
	color := f.Fill.Average().WithAlpha(f.Opacity)
	if err := s.FillUniform(color.ARGB()); err != nil {
		return err
	}
	return s.Raise()
}
