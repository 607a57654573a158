package kernel

import "math"

// PlatformIndex is a minimal 2D (XZ) AABB spatial index over platform
// definitions, queried once per tick per player by
// FindGroundedPlatformPID. At the scale this system targets (a few tens
// of concurrent players per instance) a flat scan with an AABB
// prefilter is the same complexity budget physics_engine.go's own broad
// phase uses (the aabbOverlap double loop) — no grid/BVH is
// warranted.
type PlatformIndex struct {
	platforms map[uint16]Platform
}

// NewPlatformIndex builds an index over the given platform definitions.
func NewPlatformIndex(platforms []Platform) *PlatformIndex {
	idx := &PlatformIndex{platforms: make(map[uint16]Platform, len(platforms))}
	for _, p := range platforms {
		idx.platforms[p.PID] = p
	}
	return idx
}

// Get returns the platform definition for pid, if present.
func (idx *PlatformIndex) Get(pid uint16) (Platform, bool) {
	p, ok := idx.platforms[pid]
	return p, ok
}

// candidate is an internal scratch record for a platform's current top
// surface under the foot position being tested.
type candidate struct {
	pid      uint16
	topY     float64
	vertDist float64
}

// FindGroundedPlatformPID queries the platform index for the platform
// whose top surface is closest to bodyPos's foot (bodyPos.Y -
// CapsuleHalfHeight - CapsuleRadius) within a vertical tolerance window:
// GroundTolerance normally, widened to PreferredGroundTolerance for
// preferredPID (hysteresis against chatter between adjacent platforms).
// Platforms whose surface sits more than MaxFootAboveSurface above the
// foot are rejected outright.
func (idx *PlatformIndex) FindGroundedPlatformPID(simTime float64, bodyPos Vec3, preferredPID *uint16) *uint16 {
	footY := bodyPos.Y - CapsuleHalfHeight - CapsuleRadius

	var best *candidate
	for pid, plat := range idx.platforms {
		pose := plat.Sample(simTime)
		localX := bodyPos.X - pose.Position.X
		localZ := bodyPos.Z - pose.Position.Z
		if math.Abs(localX) > plat.HalfExtent.X || math.Abs(localZ) > plat.HalfExtent.Z {
			continue
		}

		topY := pose.Position.Y + plat.HalfExtent.Y
		vertDist := footY - topY // positive: foot above surface

		if -vertDist > MaxFootAboveSurface {
			// surface is more than MaxFootAboveSurface above the foot
			continue
		}

		tolerance := GroundTolerance
		if preferredPID != nil && *preferredPID == pid {
			tolerance = PreferredGroundTolerance
		}
		if math.Abs(vertDist) > tolerance {
			continue
		}

		c := candidate{pid: pid, topY: topY, vertDist: vertDist}
		if best == nil || math.Abs(c.vertDist) < math.Abs(best.vertDist) {
			best = &c
		}
	}

	if best == nil {
		return nil
	}
	pid := best.pid
	return &pid
}

// KinematicStepResult is the output of ResolveKinematicPostStepState.
type KinematicStepResult struct {
	Grounded           bool
	GroundedPlatformPID *uint16
	VY                 float64
	Position           Vec3
}

// ResolveKinematicPostStepState combines the horizontal/vertical solver
// output with a grounding query and enforces two invariants:
//
//	vy is ignored when grounded && groundedPlatformPid != none.
//	groundedPlatformPid != none => grounded.
func ResolveKinematicPostStepState(
	idx *PlatformIndex,
	simTime float64,
	candidatePos Vec3,
	vy float64,
	solverGrounded bool,
	preferredPID *uint16,
) KinematicStepResult {
	pos := SanitizeVec3(candidatePos)
	vy = sanitizeFloat(vy)

	var groundedPlatform *uint16
	if solverGrounded {
		groundedPlatform = idx.FindGroundedPlatformPID(simTime, pos, preferredPID)
	}

	grounded := solverGrounded
	if groundedPlatform != nil {
		grounded = true
		vy = 0
	}

	return KinematicStepResult{
		Grounded:            grounded,
		GroundedPlatformPID: groundedPlatform,
		VY:                  vy,
		Position:            pos,
	}
}

func sanitizeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
