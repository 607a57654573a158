package kernel

import "math"

// wallClass is how a horizontal platform contact's surface normal
// behaves against the capsule controller's climb/slide slope bounds.
type wallClass int

const (
	wallClimbable wallClass = iota // shallow enough to walk; left for the grounding solver
	wallBlocked                    // too steep to climb but short of the full-slide bound
	wallSlide                      // at or past the full-slide bound
)

// classifyWallNormal buckets a contact's vertical normal component
// (normalY = dot(normal, up)) against MaxClimbSlopeCos/MinSlideSlopeCos.
// A cuboid's side faces are always exactly vertical (normalY == 0), which
// always lands in wallSlide; wallClimbable and wallBlocked only become
// reachable once a platform kind with sloped faces exists.
func classifyWallNormal(normalY float64) wallClass {
	switch {
	case normalY >= MaxClimbSlopeCos:
		return wallClimbable
	case normalY <= MinSlideSlopeCos:
		return wallSlide
	default:
		return wallBlocked
	}
}

// resolveWallContacts pushes pos out of any platform side face the
// capsule's XZ footprint has penetrated and cancels the inward component
// of vel along each contact's normal, so movement slides along a wall
// instead of stopping dead or passing through it. Zero friction on the
// capsule means the tangential component is never damped — wallBlocked
// and wallSlide both resolve the same way today since nothing currently
// falls between them. Only a platform's vertical column below its top
// surface counts as a wall; standing on top is the grounding solver's
// job and is left untouched here.
func resolveWallContacts(idx *PlatformIndex, simTime float64, pos, vel Vec3) (Vec3, Vec3) {
	bodyTop := pos.Y + CapsuleHalfHeight
	bodyBottom := pos.Y - CapsuleHalfHeight

	for _, plat := range idx.platforms {
		pose := plat.Sample(simTime)
		platTop := pose.Position.Y + plat.HalfExtent.Y
		platBottom := pose.Position.Y - plat.HalfExtent.Y
		if bodyTop <= platBottom || bodyBottom >= platTop {
			continue // capsule's cylindrical section doesn't reach this platform's height range
		}

		localX := pos.X - pose.Position.X
		localZ := pos.Z - pose.Position.Z
		closestX := clampToRange(localX, -plat.HalfExtent.X, plat.HalfExtent.X)
		closestZ := clampToRange(localZ, -plat.HalfExtent.Z, plat.HalfExtent.Z)
		dx, dz := localX-closestX, localZ-closestZ

		distSq := dx*dx + dz*dz
		if distSq >= CapsuleRadius*CapsuleRadius || distSq < 1e-9 {
			// Not penetrating, or the capsule's center sits on or inside the
			// footprint (dx = dz = 0) — a degenerate case left to the ground solver.
			continue
		}

		dist := math.Sqrt(distSq)
		normal := Vec3{X: dx / dist, Z: dz / dist}
		if classifyWallNormal(normal.Y) == wallClimbable {
			continue
		}

		penetration := CapsuleRadius - dist
		pos.X += normal.X * penetration
		pos.Z += normal.Z * penetration

		inward := vel.X*normal.X + vel.Z*normal.Z
		if inward < 0 {
			vel.X -= inward * normal.X
			vel.Z -= inward * normal.Z
		}
	}

	return pos, vel
}

func clampToRange(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
