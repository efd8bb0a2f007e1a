// Package vmath provides the small fixed-size vector algebra used by the
// simulator and the planner. Values are immutable; every operation returns a
// new vector.
package vmath

import (
	"fmt"
	"math"
)

// Vector2 is a point or direction on the ground plane.
type Vector2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vector3 is a point or direction in arena space. Z points up.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Up is the arena's vertical unit vector.
var Up = Vector3{Z: 1}

// V2 builds a Vector2.
func V2(x, y float64) Vector2 { return Vector2{X: x, Y: y} }

// V3 builds a Vector3.
func V3(x, y, z float64) Vector3 { return Vector3{X: x, Y: y, Z: z} }

// IsZero reports whether both components are exactly zero.
func (v Vector2) IsZero() bool { return v.X == 0 && v.Y == 0 }

// Add returns v + o.
func (v Vector2) Add(o Vector2) Vector2 { return Vector2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vector2) Sub(o Vector2) Vector2 { return Vector2{v.X - o.X, v.Y - o.Y} }

// Scaled multiplies both components by s.
func (v Vector2) Scaled(s float64) Vector2 { return Vector2{v.X * s, v.Y * s} }

// Dot returns the dot product.
func (v Vector2) Dot(o Vector2) float64 { return v.X*o.X + v.Y*o.Y }

// MagnitudeSquared avoids the square root when only comparisons are needed.
func (v Vector2) MagnitudeSquared() float64 { return v.X*v.X + v.Y*v.Y }

// Magnitude returns the Euclidean length.
func (v Vector2) Magnitude() float64 { return math.Sqrt(v.MagnitudeSquared()) }

// Distance returns |v - o|.
func (v Vector2) Distance(o Vector2) float64 { return v.Sub(o).Magnitude() }

// Normalized returns the unit vector of v. The zero vector normalizes to itself.
func (v Vector2) Normalized() Vector2 {
	m := v.Magnitude()
	if m == 0 {
		return Vector2{}
	}
	return v.Scaled(1 / m)
}

// TryNormalize is Normalized with an explicit flag for the zero vector.
func (v Vector2) TryNormalize() (Vector2, bool) {
	if v.IsZero() {
		return Vector2{}, false
	}
	return v.Normalized(), true
}

// ScaledToMagnitude rescales v to the given length. A negative magnitude flips
// the direction. The zero vector stays zero.
func (v Vector2) ScaledToMagnitude(magnitude float64) Vector2 {
	return v.Normalized().Scaled(magnitude)
}

// Project returns the component of v along onto.
func (v Vector2) Project(onto Vector2) Vector2 {
	d := onto.MagnitudeSquared()
	if d == 0 {
		return Vector2{}
	}
	return onto.Scaled(v.Dot(onto) / d)
}

// CorrectionAngle returns the signed rotation in radians that turns v onto
// ideal. Positive is counter-clockwise. The result is within [-π, π].
func (v Vector2) CorrectionAngle(ideal Vector2) float64 {
	current := math.Atan2(v.Y, v.X)
	target := math.Atan2(ideal.Y, ideal.X)

	if math.Abs(current-target) > math.Pi {
		if current < 0 {
			current += 2 * math.Pi
		}
		if target < 0 {
			target += 2 * math.Pi
		}
	}
	return target - current
}

// Angle returns the unsigned angle between a and b, in [0, π].
func Angle(a, b Vector2) float64 {
	return math.Abs(a.CorrectionAngle(b))
}

// ToVector3 lifts v onto the ground plane.
func (v Vector2) ToVector3() Vector3 { return Vector3{X: v.X, Y: v.Y} }

func (v Vector2) String() string { return fmt.Sprintf("(%.2f, %.2f)", v.X, v.Y) }

// IsZero reports whether all components are exactly zero.
func (v Vector3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vector3) Sub(o Vector3) Vector3 { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scaled multiplies all components by s.
func (v Vector3) Scaled(s float64) Vector3 { return Vector3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product.
func (v Vector3) Dot(o Vector3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the right-handed cross product v × o.
func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// MagnitudeSquared avoids the square root when only comparisons are needed.
func (v Vector3) MagnitudeSquared() float64 { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }

// Magnitude returns the Euclidean length.
func (v Vector3) Magnitude() float64 { return math.Sqrt(v.MagnitudeSquared()) }

// Distance returns |v - o|.
func (v Vector3) Distance(o Vector3) float64 { return v.Sub(o).Magnitude() }

// Normalized returns the unit vector of v. The zero vector normalizes to itself.
func (v Vector3) Normalized() Vector3 {
	m := v.Magnitude()
	if m == 0 {
		return Vector3{}
	}
	return v.Scaled(1 / m)
}

// TryNormalize is Normalized with an explicit flag for the zero vector.
func (v Vector3) TryNormalize() (Vector3, bool) {
	if v.IsZero() {
		return Vector3{}, false
	}
	return v.Normalized(), true
}

// ScaledToMagnitude rescales v to the given length.
func (v Vector3) ScaledToMagnitude(magnitude float64) Vector3 {
	return v.Normalized().Scaled(magnitude)
}

// Project returns the vector projection of v onto onto.
func (v Vector3) Project(onto Vector3) Vector3 {
	d := onto.MagnitudeSquared()
	if d == 0 {
		return Vector3{}
	}
	return onto.Scaled(v.Dot(onto) / d)
}

// ProjectToPlane removes the component of v along the plane normal.
func (v Vector3) ProjectToPlane(normal Vector3) Vector3 {
	return v.Sub(v.Project(normal))
}

// Flatten drops the vertical component.
func (v Vector3) Flatten() Vector2 { return Vector2{X: v.X, Y: v.Y} }

// FlatDistance is the ground-plane distance between v and o.
func (v Vector3) FlatDistance(o Vector3) float64 { return v.Flatten().Distance(o.Flatten()) }

// Lerp interpolates between a and b; t=0 gives a, t=1 gives b.
func Lerp(a, b Vector3, t float64) Vector3 {
	return a.Scaled(1 - t).Add(b.Scaled(t))
}

// IsFinite reports whether no component is NaN or infinite.
func (v Vector3) IsFinite() bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func (v Vector3) String() string { return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z) }

// Signum returns -1, 0 or 1 with the sign of f.
func Signum(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return 0
	}
}

// NonZeroSignum is Signum with zero mapped to 1.
func NonZeroSignum(f float64) float64 {
	if f < 0 {
		return -1
	}
	return 1
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
