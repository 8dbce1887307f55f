package aim

// minSmoothing keeps the divisor at or above 1 so a misconfigured factor can
// neither invert nor amplify the motion.
const minSmoothing = 1.0

type Vector struct {
	X float64
	Y float64
}

func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

func (v Vector) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Params are the static gains of the displacement formula for one session.
type Params struct {
	SmoothingFactor  float64
	Speed            float64
	YSpeedMultiplier float64
}

// EffectiveSmoothing returns the smoothing divisor actually applied.
func (p Params) EffectiveSmoothing() float64 {
	if p.SmoothingFactor < minSmoothing {
		return minSmoothing
	}
	return p.SmoothingFactor
}

// Compute returns the pointer displacement for the current frame:
//
//	dx = target.X / smoothing * speed
//	dy = target.Y / smoothing * speed * ySpeedMultiplier
//
// A disabled aim or a missing target yields a zero vector. Nothing carries
// over from the previous frame.
func Compute(enabled bool, target Vector, found bool, p Params) Vector {
	if !enabled || !found {
		return Vector{}
	}

	smooth := p.EffectiveSmoothing()

	return Vector{
		X: (target.X / smooth) * p.Speed,
		Y: (target.Y / smooth) * p.Speed * p.YSpeedMultiplier,
	}
}
