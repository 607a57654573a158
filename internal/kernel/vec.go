// Package kernel implements the fixed-timestep capsule character controller
// shared bit-for-bit between the server and the client predictor.
package kernel

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a world-space or velocity vector. It is a thin alias over
// gonum's r3.Vec so the kernel can use gonum's vector algebra directly
// while keeping its own name for the quantity it represents.
type Vec3 = r3.Vec

// Zero3 is the zero vector.
var Zero3 = Vec3{}

// Add returns a+b.
func Add(a, b Vec3) Vec3 { return r3.Add(a, b) }

// Sub returns a-b.
func Sub(a, b Vec3) Vec3 { return r3.Sub(a, b) }

// Scale returns v scaled by s.
func Scale(s float64, v Vec3) Vec3 { return r3.Scale(s, v) }

// Dot returns the inner product of a and b.
func Dot(a, b Vec3) float64 { return r3.Dot(a, b) }

// Norm returns the Euclidean length of v.
func Norm(v Vec3) float64 { return r3.Norm(v) }

// Normalize returns v scaled to unit length, or the zero vector if v is
// (numerically) zero.
func Normalize(v Vec3) Vec3 {
	n := Norm(v)
	if n < 1e-9 {
		return Zero3
	}
	return Scale(1/n, v)
}

// WithY returns v with its Y component replaced.
func WithY(v Vec3, y float64) Vec3 {
	v.Y = y
	return v
}

// Horizontal zeroes the Y component, projecting v onto the XZ plane.
func Horizontal(v Vec3) Vec3 {
	return Vec3{X: v.X, Y: 0, Z: v.Z}
}

// NormalizeYaw wraps yaw into (-pi, pi].
func NormalizeYaw(yaw float64) float64 {
	yaw = math.Mod(yaw+math.Pi, 2*math.Pi)
	if yaw <= 0 {
		yaw += 2 * math.Pi
	}
	return yaw - math.Pi
}

// YawToForward converts a yaw angle (radians, 0 = +Z, increasing
// counter-clockwise viewed from +Y) into a unit forward vector on the XZ
// plane.
func YawToForward(yaw float64) Vec3 {
	return Vec3{X: math.Sin(yaw), Y: 0, Z: math.Cos(yaw)}
}

// YawToRight returns the unit right vector for a given yaw (90 degrees
// clockwise from forward on the XZ plane).
func YawToRight(yaw float64) Vec3 {
	return Vec3{X: math.Cos(yaw), Y: 0, Z: -math.Sin(yaw)}
}

// RotateAroundY rotates v around the Y axis by angle radians (matches the
// handedness of YawToForward/YawToRight).
func RotateAroundY(v Vec3, angle float64) Vec3 {
	s, c := math.Sin(angle), math.Cos(angle)
	return Vec3{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// ViewDirection converts (yaw, pitch) into a unit look vector. Pitch is
// measured up from the horizontal plane.
func ViewDirection(yaw, pitch float64) Vec3 {
	cp := math.Cos(pitch)
	return Vec3{
		X: math.Sin(yaw) * cp,
		Y: math.Sin(pitch),
		Z: math.Cos(yaw) * cp,
	}
}

// sanitizeScalar clamps NaN/Inf inputs to a safe default rather than
// letting a single corrupt input command poison the authoritative state.
func sanitizeScalar(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// SanitizeVec3 clamps any NaN/Inf component of v to zero.
func SanitizeVec3(v Vec3) Vec3 {
	return Vec3{
		X: sanitizeScalar(v.X, 0),
		Y: sanitizeScalar(v.Y, 0),
		Z: sanitizeScalar(v.Z, 0),
	}
}

// SanitizeYaw clamps a NaN/Inf yaw to identity (zero).
func SanitizeYaw(yaw float64) float64 {
	return NormalizeYaw(sanitizeScalar(yaw, 0))
}
