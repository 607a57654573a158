package combat

import (
	"testing"

	"github.com/elderford/realmcore/internal/kernel"
	"github.com/stretchr/testify/require"
)

const testTick = 1.0 / 60.0

func flatGeometry() Geometry {
	return Geometry{GroundY: -1000} // keep the ground out of the way for these tests
}

// runUntilDamageOrRemoved steps a projectile forward tick by tick (as the
// server's tick loop would) until it reports a hit or is removed, or the
// tick budget runs out.
func runUntilDamageOrRemoved(t *testing.T, state ProjectileState, geo Geometry, candidates []DamageableCandidate, maxTicks int) Outcome {
	t.Helper()
	var last Outcome
	for i := 0; i < maxTicks; i++ {
		last = StepProjectile(state, testTick, geo, candidates)
		if last.Damaged || last.Remove {
			return last
		}
		state = last.NextState
	}
	return last
}

func TestProjectileHitsStationaryDummyExactlyOnce(t *testing.T) {
	state := ProjectileState{
		Position:               kernel.Vec3{X: 0, Y: 1, Z: 0},
		Velocity:               kernel.Vec3{X: 0, Y: 0, Z: 20},
		Radius:                 0.1,
		Damage:                 10,
		TTLSeconds:             5,
		RemainingRange:         100,
		MaxSpeed:               50,
		DespawnOnDamageableHit: true,
		OwnerNID:               1,
	}
	dummy := []DamageableCandidate{{NID: 99, Position: kernel.Vec3{X: 0, Y: 1, Z: 5}, Radius: 0.5}}

	outcome := runUntilDamageOrRemoved(t, state, flatGeometry(), dummy, 60)
	require.True(t, outcome.Damaged)
	require.Equal(t, uint32(99), outcome.HitNID)
	require.True(t, outcome.Remove)
}

func TestProjectileCannotDamageOwner(t *testing.T) {
	state := ProjectileState{
		Position:       kernel.Vec3{X: 0, Y: 1, Z: 0},
		Velocity:       kernel.Vec3{X: 0, Y: 0, Z: 20},
		Radius:         0.1,
		TTLSeconds:     5,
		RemainingRange: 100,
		MaxSpeed:       50,
		OwnerNID:       7,
	}
	owner := []DamageableCandidate{{NID: 7, Position: kernel.Vec3{X: 0, Y: 1, Z: 1}, Radius: 2}}

	outcome := runUntilDamageOrRemoved(t, state, flatGeometry(), owner, 60)
	require.False(t, outcome.Damaged)
}

func TestProjectilePierceSurvivesAndDecrements(t *testing.T) {
	state := ProjectileState{
		Position:               kernel.Vec3{X: 0, Y: 1, Z: 0},
		Velocity:               kernel.Vec3{X: 0, Y: 0, Z: 20},
		Radius:                 0.1,
		TTLSeconds:             5,
		RemainingRange:         100,
		MaxSpeed:               50,
		RemainingPierces:       2,
		DespawnOnDamageableHit: true,
		OwnerNID:               1,
	}
	target := []DamageableCandidate{{NID: 42, Position: kernel.Vec3{X: 0, Y: 1, Z: 5}, Radius: 0.5}}

	outcome := runUntilDamageOrRemoved(t, state, flatGeometry(), target, 60)
	require.True(t, outcome.Damaged)
	require.False(t, outcome.Remove)
	require.Equal(t, 1, outcome.NextState.RemainingPierces)
}

func TestProjectileDepletedStopsDamagingButKeepsFlying(t *testing.T) {
	state := ProjectileState{
		Position:               kernel.Vec3{X: 0, Y: 1, Z: 0},
		Velocity:               kernel.Vec3{X: 0, Y: 0, Z: 20},
		Radius:                 0.1,
		TTLSeconds:             5,
		RemainingRange:         100,
		MaxSpeed:               50,
		RemainingPierces:       0,
		DespawnOnDamageableHit: false,
		OwnerNID:               1,
	}
	target := []DamageableCandidate{{NID: 42, Position: kernel.Vec3{X: 0, Y: 1, Z: 5}, Radius: 0.5}}

	outcome := runUntilDamageOrRemoved(t, state, flatGeometry(), target, 60)
	require.True(t, outcome.Damaged)
	require.False(t, outcome.Remove)
	require.True(t, outcome.NextState.Depleted)

	// Next tick: still overlapping the same target, but must not re-damage.
	again := StepProjectile(outcome.NextState, testTick, flatGeometry(), target)
	require.False(t, again.Damaged)
}

func TestProjectileRemovedWhenTTLExpires(t *testing.T) {
	state := ProjectileState{TTLSeconds: 0.001, RemainingRange: 10, MaxSpeed: 10}
	outcome := StepProjectile(state, testTick, flatGeometry(), nil)
	require.True(t, outcome.Remove)
}

func TestProjectileHitsWorldAndDespawns(t *testing.T) {
	state := ProjectileState{
		Position:          kernel.Vec3{X: 0, Y: 0.05, Z: 0},
		Velocity:          kernel.Vec3{X: 0, Y: -20, Z: 0},
		Radius:            0.1,
		TTLSeconds:        5,
		RemainingRange:    100,
		MaxSpeed:          50,
		DespawnOnWorldHit: true,
	}
	geo := Geometry{GroundY: 0}
	outcome := StepProjectile(state, testTick, geo, nil)
	require.True(t, outcome.Remove)
	require.False(t, outcome.Damaged)
}
