package animation

import (
	"fmt"
	"math"
	"slices"

	"github.com/go-drift/motion/pkg/errors"
)

// EaseFunc maps linear progress t in [0, 1] to eased progress.
// Eased values may leave [0, 1] (back, elastic) but must return 0 at t=0
// and 1 at t=1 so steps converge on their declared end values.
type EaseFunc func(t float64) float64

// Eases is a table of named ease functions. Steps resolve their ease by name
// through the table when they are defined, not when they run.
type Eases map[string]EaseFunc

// Lookup returns the ease registered under name. An empty name resolves to
// "linear". Unknown names return an error wrapping [errors.ErrUnknownEase].
func (e Eases) Lookup(name string) (EaseFunc, error) {
	if name == "" {
		name = "linear"
	}
	if fn, ok := e[name]; ok && fn != nil {
		return fn, nil
	}
	return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEase, name)
}

// Names returns the registered ease names in sorted order.
func (e Eases) Names() []string {
	names := make([]string, 0, len(e))
	for name := range e {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Clone returns a copy of the table that can be extended without affecting e.
func (e Eases) Clone() Eases {
	out := make(Eases, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// DefaultEases returns a new table with the standard ease set: linear, the
// Penner families (quad, cubic, quart, quint, sine, expo, circ, back,
// elastic, bounce) in In, Out and InOut forms, and the CSS curves ease,
// easeIn, easeOut and easeInOut.
func DefaultEases() Eases {
	e := Eases{
		"linear":    LinearCurve,
		"ease":      Ease,
		"easeIn":    EaseIn,
		"easeOut":   EaseOut,
		"easeInOut": EaseInOut,
	}
	families := map[string]EaseFunc{
		"quad":    func(t float64) float64 { return t * t },
		"cubic":   func(t float64) float64 { return t * t * t },
		"quart":   func(t float64) float64 { return t * t * t * t },
		"quint":   func(t float64) float64 { return t * t * t * t * t },
		"sine":    func(t float64) float64 { return 1 - math.Cos(t*math.Pi/2) },
		"expo":    expoIn,
		"circ":    func(t float64) float64 { return 1 - math.Sqrt(1-t*t) },
		"back":    backIn,
		"elastic": elasticIn,
		"bounce":  func(t float64) float64 { return 1 - bounceOut(1-t) },
	}
	for name, in := range families {
		e[name+"In"] = in
		e[name+"Out"] = outOf(in)
		e[name+"InOut"] = inOutOf(in)
	}
	return e
}

func outOf(in EaseFunc) EaseFunc {
	return func(t float64) float64 { return 1 - in(1-t) }
}

func inOutOf(in EaseFunc) EaseFunc {
	return func(t float64) float64 {
		if t < 0.5 {
			return in(2*t) / 2
		}
		return 1 - in(2-2*t)/2
	}
}

func expoIn(t float64) float64 {
	if t <= 0 {
		return 0
	}
	return math.Pow(2, 10*(t-1))
}

func backIn(t float64) float64 {
	const s = 1.70158
	return t * t * ((s+1)*t - s)
}

func elasticIn(t float64) float64 {
	if t <= 0 || t >= 1 {
		return clampUnit(t)
	}
	return -math.Pow(2, 10*(t-1)) * math.Sin((t-1.075)*(2*math.Pi)/0.3)
}

func bounceOut(t float64) float64 {
	const n, d = 7.5625, 2.75
	switch {
	case t < 1/d:
		return n * t * t
	case t < 2/d:
		t -= 1.5 / d
		return n*t*t + 0.75
	case t < 2.5/d:
		t -= 2.25 / d
		return n*t*t + 0.9375
	default:
		t -= 2.625 / d
		return n*t*t + 0.984375
	}
}

// LinearCurve returns linear progress (no easing).
func LinearCurve(t float64) float64 {
	return t
}

// Ease is a standard cubic bezier curve for general-purpose easing.
// Equivalent to CSS ease.
var Ease = CubicBezier(0.25, 0.1, 0.25, 1.0)

// EaseIn starts slowly and accelerates. Equivalent to CSS ease-in.
var EaseIn = CubicBezier(0.42, 0.0, 1.0, 1.0)

// EaseOut starts quickly and decelerates. Equivalent to CSS ease-out.
var EaseOut = CubicBezier(0.0, 0.0, 0.58, 1.0)

// EaseInOut starts and ends slowly with acceleration in the middle.
// Equivalent to CSS ease-in-out.
var EaseInOut = CubicBezier(0.42, 0.0, 0.58, 1.0)

// CubicBezier returns a cubic-bezier easing function matching CSS cubic-bezier().
// The parameters define the two control points (x1,y1) and (x2,y2) of the curve.
// The curve starts at (0,0) and ends at (1,1).
func CubicBezier(x1, y1, x2, y2 float64) EaseFunc {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}

		u := t
		// Newton-Raphson converges quickly for most values.
		for range 8 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				return sampleCurve(y1, y2, clampUnit(u))
			}
			dx := sampleCurveDerivative(x1, x2, u)
			if math.Abs(dx) < 1e-7 {
				break
			}
			u -= x / dx
		}

		// Bisection keeps u inside [0,1] when Newton stalls.
		lo, hi := 0.0, 1.0
		u = clampUnit(u)
		for range 12 {
			x := sampleCurve(x1, x2, u) - t
			if math.Abs(x) < 1e-7 {
				break
			}
			if x > 0 {
				hi = u
			} else {
				lo = u
			}
			u = (lo + hi) * 0.5
		}

		return sampleCurve(y1, y2, u)
	}
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

func clampUnit(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
