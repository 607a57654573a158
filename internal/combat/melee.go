package combat

import (
	"math"

	"github.com/elderford/realmcore/internal/kernel"
)

// MeleeParams are the ability's melee profile values.
type MeleeParams struct {
	Damage     int
	Radius     float64
	Range      float64
	ArcDegrees float64
}

// Attacker is the geometry needed to evaluate one melee swing.
type Attacker struct {
	Position kernel.Vec3
	Yaw      float64
	Pitch    float64
}

// Blocker is a collider that can occlude line of sight between the
// attacker and a candidate target (world geometry, or another damageable
// standing in between).
type Blocker struct {
	Position kernel.Vec3
	Radius   float64
}

// Resolve evaluates one melee attack — range/radius filter, arc test,
// segment distance, then line-of-sight — and returns the nid of the
// single target hit, or ok=false if nothing qualifies.
func Resolve(attacker Attacker, params MeleeParams, candidates []DamageableCandidate, blockers []Blocker) (hitNID uint32, ok bool) {
	// 1. View direction from (yaw, pitch).
	dir := kernel.ViewDirection(attacker.Yaw, attacker.Pitch)
	cosHalfArc := math.Cos(params.ArcDegrees * math.Pi / 360)

	segEnd := kernel.Add(attacker.Position, kernel.Scale(params.Range, dir))

	bestNID := uint32(0)
	bestProjection := math.Inf(1)
	found := false

	for _, cand := range candidates {
		toTarget := kernel.Sub(cand.Position, attacker.Position)
		dist := kernel.Norm(toTarget)

		// 2a. Capped range filter: straight-line distance to the target
		// center against range plus target radius.
		if dist > params.Range+cand.Radius {
			continue
		}
		if dist >= 1e-9 {
			// 2b. Angular test: dot product >= cos(arc/2).
			toTargetDir := kernel.Scale(1/dist, toTarget)
			if kernel.Dot(toTargetDir, dir) < cosHalfArc {
				continue
			}
		}
		// dist < 1e-9: target sits on the attacker's origin, always within
		// arc and segment distance — fall through.

		// 3. Segment-segment distance test (targets are modeled as
		// vertical capsules whose horizontal cross-section is a circle of
		// cand.Radius, so segment-to-point distance at the attack height
		// stands in for segment-to-axis distance).
		if segmentPointDistance(attacker.Position, segEnd, cand.Position) > params.Radius+cand.Radius {
			continue
		}

		// 4. Among survivors, track the smallest forward projection that
		// also passes line of sight.
		projection := kernel.Dot(toTarget, dir)
		if projection >= bestProjection {
			continue
		}
		if !hasLineOfSight(attacker.Position, cand.Position, blockers) {
			continue
		}

		bestNID = cand.NID
		bestProjection = projection
		found = true
	}

	return bestNID, found
}

// segmentPointDistance returns the minimum distance from point p to the
// segment [a,b].
func segmentPointDistance(a, b, p kernel.Vec3) float64 {
	ab := kernel.Sub(b, a)
	length2 := kernel.Dot(ab, ab)
	if length2 < 1e-12 {
		return kernel.Norm(kernel.Sub(p, a))
	}
	t := kernel.Dot(kernel.Sub(p, a), ab) / length2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	closest := kernel.Add(a, kernel.Scale(t, ab))
	return kernel.Norm(kernel.Sub(p, closest))
}

// hasLineOfSight reports whether the straight line from 'from' to the
// target's position is unobstructed by any other blocker.
func hasLineOfSight(from, targetPos kernel.Vec3, blockers []Blocker) bool {
	toTarget := kernel.Sub(targetPos, from)
	dist := kernel.Norm(toTarget)
	if dist < 1e-9 {
		return true
	}
	dirN := kernel.Scale(1/dist, toTarget)

	for _, b := range blockers {
		t, hit := sweepSphereSphere(from, dirN, 0, b.Position, b.Radius, dist)
		if hit && t < dist-1e-6 {
			return false
		}
	}
	return true
}
