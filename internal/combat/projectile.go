package combat

import "github.com/elderford/realmcore/internal/kernel"

// ProjectileState is the subset of world.Projectile the integrator reads
// and writes. combat doesn't import internal/world directly so world stays
// the single owner of entity lifetime; the server package adapts
// *world.Projectile to and from this shape each tick.
type ProjectileState struct {
	Position kernel.Vec3
	Velocity kernel.Vec3
	Radius   float64
	Damage   int

	TTLSeconds     float64
	RemainingRange float64

	Gravity  float64
	Drag     float64
	MaxSpeed float64
	MinSpeed float64

	RemainingPierces       int
	DespawnOnDamageableHit bool
	DespawnOnWorldHit      bool
	Depleted               bool

	OwnerNID uint32
}

// Outcome reports what StepProjectile decided should happen this tick.
type Outcome struct {
	Remove    bool
	Damaged   bool
	HitNID    uint32 // valid when Damaged is true
	NextState ProjectileState
}

// nudgeDistance is the forward nudge applied after a non-terminal hit, so
// the projectile's next sweep starts clear of the surface it just struck
// instead of immediately re-colliding with it.
const nudgeDistance = 0.002

// StepProjectile advances one projectile by one tick: decay ttl, apply
// gravity/drag, sweep for the earliest collision in the remaining travel
// time, then resolve the pierce/despawn decision for whatever it hit.
func StepProjectile(s ProjectileState, dt float64, geo Geometry, candidates []DamageableCandidate) Outcome {
	// 1. Decrement ttl; remove if <= 0.
	s.TTLSeconds -= dt
	if s.TTLSeconds <= 0 {
		return Outcome{Remove: true}
	}

	// 2. Apply gravity, drag, clamp to max_speed.
	s.Velocity.Y += s.Gravity * dt
	dragFactor := 1 - s.Drag*dt
	if dragFactor < 0 {
		dragFactor = 0
	}
	s.Velocity = kernel.Scale(dragFactor, s.Velocity)
	speed := kernel.Norm(s.Velocity)
	if speed > s.MaxSpeed && s.MaxSpeed > 0 {
		s.Velocity = kernel.Scale(s.MaxSpeed/speed, s.Velocity)
		speed = s.MaxSpeed
	}

	// 3. Compute max travel time for this tick; remove if zero.
	travelTime := dt
	if speed > 0 {
		if rangeTime := s.RemainingRange / speed; rangeTime < travelTime {
			travelTime = rangeTime
		}
	}
	if travelTime <= 0 || speed <= 0 {
		return Outcome{Remove: true}
	}

	// A depleted projectile can no longer strike anything damageable; it
	// still flies until ttl/range/world collision ends it.
	sweepCandidates := candidates
	if s.Depleted {
		sweepCandidates = nil
	}

	// 4. Shape-cast sweep.
	result := SweepSphere(s.Position, s.Velocity, s.Radius, travelTime, geo, sweepCandidates, s.OwnerNID)
	s.RemainingRange -= speed * result.TravelTime

	switch result.Kind {
	case HitNone:
		// 5. No hit: advance by v * travel_time.
		s.Position = kernel.Add(s.Position, kernel.Scale(result.TravelTime, s.Velocity))
		return Outcome{Remove: s.RemainingRange <= 0, NextState: s}

	case HitWorld:
		s.Position = result.Position
		if s.DespawnOnWorldHit {
			return Outcome{Remove: true, NextState: s}
		}
		s.Position = kernel.Add(s.Position, kernel.Scale(nudgeDistance, kernel.Normalize(s.Velocity)))
		return Outcome{NextState: s}

	default: // HitDamageable
		s.Position = result.Position
		if s.RemainingPierces > 0 {
			s.RemainingPierces--
			s.Position = kernel.Add(s.Position, kernel.Scale(nudgeDistance, kernel.Normalize(s.Velocity)))
			return Outcome{Damaged: true, HitNID: result.TargetNID, NextState: s}
		}
		if !s.DespawnOnDamageableHit {
			s.Depleted = true
			s.Position = kernel.Add(s.Position, kernel.Scale(nudgeDistance, kernel.Normalize(s.Velocity)))
			return Outcome{Damaged: true, HitNID: result.TargetNID, NextState: s}
		}
		return Outcome{Remove: true, Damaged: true, HitNID: result.TargetNID, NextState: s}
	}
}
