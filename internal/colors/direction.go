package colors

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// anglePoints converts an angle like "45deg" into gradient start/end
// points in [0,1] space. The line through the center (0.5, 0.5) with the
// angle's slope is intersected with the unit square, mirroring how the
// angle form is defined in the config reference.
func anglePoints(angle string) (start, end [2]float64, err error) {
	raw, ok := strings.CutSuffix(strings.TrimSpace(angle), "deg")
	if !ok {
		return start, end, fmt.Errorf("invalid gradient direction %q (want e.g. \"45deg\")", angle)
	}
	degree, perr := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if perr != nil {
		return start, end, fmt.Errorf("invalid gradient direction %q: %w", angle, perr)
	}

	// Screen coordinates have their origin at the top left, so the angle
	// is negated to keep "45deg" meaning up-and-to-the-right visually.
	rad := -degree * math.Pi / 180

	// Slope of the gradient line. At 90/270 the slope is infinite; a very
	// large finite value keeps the intersection math well behaved.
	var m float64
	switch math.Mod(math.Abs(degree), 360) {
	case 90, 270:
		m = math.Copysign(math.MaxFloat64, degree)
	default:
		m = math.Sin(rad) / math.Cos(rad)
	}

	// y-intercept so the line passes through the center point.
	b := -m*0.5 + 0.5
	plugIn := func(x float64) float64 { return m*x + b }

	// Which side of the square the gradient starts on flips as the angle
	// crosses 90 and 270 degrees.
	var xs, xe float64
	switch deg := math.Mod(math.Abs(degree), 360); {
	case deg < 90:
		xs, xe = 0, 1
	case deg < 270:
		xs, xe = 1, 0
	default:
		xs, xe = 0, 1
	}

	// Clamp the intersection to the unit square: if the line exits
	// through the top or bottom edge before reaching x, solve for the x
	// at that edge instead.
	point := func(x float64) [2]float64 {
		y := plugIn(x)
		switch {
		case y >= 0 && y <= 1:
			return [2]float64{x, y}
		case y > 1:
			return [2]float64{(1 - b) / m, 1}
		default:
			return [2]float64{-b / m, 0}
		}
	}

	return point(xs), point(xe), nil
}
