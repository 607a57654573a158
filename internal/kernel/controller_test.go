package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Step is pure with respect to its inputs: calling it twice with identical
// arguments must produce identical output. This is the property
// server/client movement parity ultimately rests on — both sides
// literally call this function with the same arguments.
func TestStepIsDeterministic(t *testing.T) {
	idx := NewPlatformIndex(nil)
	state := KinematicState{Position: Vec3{X: 0, Y: CapsuleHalfHeight + CapsuleRadius, Z: 0}, Grounded: true}
	in := MovementInput{Forward: 1, Yaw: 0}

	a := Step(idx, state, in, 0, 1.0/60)
	b := Step(idx, state, in, 0, 1.0/60)

	require.Equal(t, a, b)
}

func TestStepGroundedWalkAdvancesForward(t *testing.T) {
	idx := NewPlatformIndex(nil)
	state := KinematicState{Position: Vec3{X: 0, Y: CapsuleHalfHeight + CapsuleRadius, Z: 0}, Grounded: true}
	in := MovementInput{Forward: 1, Yaw: 0}

	for i := 0; i < 120; i++ {
		r := Step(idx, state, in, float64(i)/60, 1.0/60)
		state = r.State
	}

	require.Greater(t, state.Position.Z, 1.0)
	require.True(t, state.Grounded)
}

func TestJumpRisesThenLands(t *testing.T) {
	idx := NewPlatformIndex(nil)
	state := KinematicState{Position: Vec3{X: 0, Y: CapsuleHalfHeight + CapsuleRadius, Z: 0}, Grounded: true}

	jumpTick := Step(idx, state, MovementInput{Jump: true}, 0, 1.0/60)
	require.False(t, jumpTick.State.Grounded)
	require.Greater(t, jumpTick.State.Velocity.Y, 0.0)

	state = jumpTick.State
	maxY := state.Position.Y
	for i := 1; i < 600; i++ {
		r := Step(idx, state, MovementInput{}, float64(i)/60, 1.0/60)
		state = r.State
		if state.Position.Y > maxY {
			maxY = state.Position.Y
		}
		if state.Grounded {
			break
		}
	}

	require.True(t, state.Grounded)
	require.Greater(t, maxY, CapsuleHalfHeight+CapsuleRadius+0.1)
}

func TestGroundedPlatformClearsInvariantsHold(t *testing.T) {
	plat := Platform{
		PID:        1,
		Kind:       PlatformRotating,
		HalfExtent: Vec3{X: 5, Y: 0.5, Z: 5},
		Origin:     Vec3{X: 0, Y: CapsuleHalfHeight + CapsuleRadius - 0.5, Z: 0},
		AngularSpeed: 0.5,
	}
	idx := NewPlatformIndex([]Platform{plat})

	state := KinematicState{
		Position: Vec3{X: 0, Y: CapsuleHalfHeight + CapsuleRadius, Z: 0},
		Grounded: true,
	}
	pid := uint16(1)
	state.GroundedPlatformPID = &pid

	r := Step(idx, state, MovementInput{}, 0, 1.0/60)

	if r.State.GroundedPlatformPID != nil {
		require.True(t, r.State.Grounded, "I2: groundedPlatformPid != none implies grounded")
	}
}

func TestNormalizeYawRange(t *testing.T) {
	require.InDelta(t, 0.0, NormalizeYaw(0), 1e-9)
	y := NormalizeYaw(3 * 3.141592653589793)
	require.Greater(t, y, -3.141592653589793-1e-9)
	require.LessOrEqual(t, y, 3.141592653589793+1e-9)
}
