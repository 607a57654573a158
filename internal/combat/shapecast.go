// Package combat implements the authoritative projectile and melee combat
// systems: shape-cast sweeps, the pierce/despawn decision
// tree, and the melee arc+segment test. It generalizes the 2D
// broad-phase(AABB)-then-narrow-phase(exact test) shape
// (physics_engine.go: aabbOverlap, detectCircleCollision,
// detectPolygonCollision) into 3D sphere/AABB/plane sweeps.
package combat

import (
	"math"

	"github.com/elderford/realmcore/internal/kernel"
)

// DamageableCandidate is a sweep/melee target: a player or training dummy,
// reduced to the geometry combat needs (no behavior, no mutation).
type DamageableCandidate struct {
	NID      uint32
	Position kernel.Vec3
	Radius   float64
}

// Geometry is the static world a projectile can strike: the ground plane
// plus every platform's current AABB. Platform yaw rotation is ignored for
// collision purposes (the same simplification internal/kernel/grounding.go
// makes for grounding — an axis-aligned box is a cheap, good-enough stand-in
// for a rotating walkway's collision footprint).
type Geometry struct {
	GroundY   float64
	Platforms []PlatformBox
}

// PlatformBox is one platform's world-space AABB at the sweep's start time.
type PlatformBox struct {
	PID uint16
	Min kernel.Vec3
	Max kernel.Vec3
}

// HitKind classifies what a sweep struck.
type HitKind int

const (
	HitNone HitKind = iota
	HitWorld
	HitDamageable
)

// SweepResult is the outcome of sweeping a sphere through Geometry and a
// candidate list.
type SweepResult struct {
	Kind       HitKind
	Position   kernel.Vec3 // point of impact, or the swept end point if no hit
	TargetNID  uint32      // valid only if Kind == HitDamageable
	PlatformID uint16      // valid only if Kind == HitWorld and it was a platform
	TravelTime float64     // seconds actually traveled before impact (== requested duration if no hit)
}

// SweepSphere marches a sphere of the given radius from origin along
// velocity for 'duration' seconds, testing against the static geometry and
// the damageable candidate list. ownerNID is
// excluded from the candidate list — a projectile cannot damage its owner.
func SweepSphere(origin, velocity kernel.Vec3, radius float64, duration float64, geo Geometry, candidates []DamageableCandidate, ownerNID uint32) SweepResult {
	best := duration
	kind := HitNone
	var targetNID uint32
	var platformID uint16

	if t, hit := sweepPlane(origin, velocity, radius, geo.GroundY); hit && t < best {
		best, kind = t, HitWorld
	}
	for _, box := range geo.Platforms {
		if t, hit := sweepAABB(origin, velocity, radius, box.Min, box.Max); hit && t < best {
			best, kind, platformID = t, HitWorld, box.PID
		}
	}
	for _, cand := range candidates {
		if cand.NID == ownerNID {
			continue
		}
		if t, hit := sweepSphereSphere(origin, velocity, radius, cand.Position, cand.Radius, duration); hit && t < best {
			best, kind, targetNID = t, HitDamageable, cand.NID
		}
	}

	impact := kernel.Add(origin, kernel.Scale(best, velocity))
	return SweepResult{Kind: kind, Position: impact, TargetNID: targetNID, PlatformID: platformID, TravelTime: best}
}

// sweepSphereSphere returns the earliest time in [0, duration] at which a
// sphere of 'radius' moving from origin at 'velocity' first touches a
// stationary sphere of 'otherRadius' centered at 'otherPos'.
func sweepSphereSphere(origin, velocity kernel.Vec3, radius float64, otherPos kernel.Vec3, otherRadius, duration float64) (float64, bool) {
	d0 := kernel.Sub(origin, otherPos)
	combined := radius + otherRadius

	a := kernel.Dot(velocity, velocity)
	b := 2 * kernel.Dot(d0, velocity)
	c := kernel.Dot(d0, d0) - combined*combined

	if c <= 0 {
		return 0, true // already overlapping
	}
	if a == 0 {
		return 0, false // no relative motion, never overlapping
	}

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := (-b - sq) / (2 * a)
	if t < 0 || t > duration {
		return 0, false
	}
	return t, true
}

// sweepPlane returns the earliest time at which a sphere's bottom touches
// the infinite ground plane y == groundY while descending.
func sweepPlane(origin, velocity kernel.Vec3, radius, groundY float64) (float64, bool) {
	bottom := origin.Y - radius
	if bottom <= groundY {
		return 0, true
	}
	if velocity.Y >= 0 {
		return 0, false
	}
	t := (groundY - bottom) / velocity.Y
	return t, true
}

// sweepAABB tests a moving sphere against a Minkowski-expanded (by radius)
// axis-aligned box using the standard slab method, returning the earliest
// entry time in [0, +inf) — the caller clamps against its own duration.
func sweepAABB(origin, velocity kernel.Vec3, radius float64, min, max kernel.Vec3) (float64, bool) {
	emin := kernel.Vec3{X: min.X - radius, Y: min.Y - radius, Z: min.Z - radius}
	emax := kernel.Vec3{X: max.X + radius, Y: max.Y + radius, Z: max.Z + radius}

	tmin, tmax := 0.0, math.Inf(1)
	axes := []struct{ o, v, lo, hi float64 }{
		{origin.X, velocity.X, emin.X, emax.X},
		{origin.Y, velocity.Y, emin.Y, emax.Y},
		{origin.Z, velocity.Z, emin.Z, emax.Z},
	}
	for _, ax := range axes {
		if ax.v == 0 {
			if ax.o < ax.lo || ax.o > ax.hi {
				return 0, false
			}
			continue
		}
		t1 := (ax.lo - ax.o) / ax.v
		t2 := (ax.hi - ax.o) / ax.v
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}
	if tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return 0, true // already inside
	}
	return tmin, true
}
