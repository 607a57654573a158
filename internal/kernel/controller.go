package kernel

// GroundPlaneY is the world's flat ground plane height. Procedural terrain
// meshing lives outside the kernel entirely; the kernel's own ground test
// is intentionally this single flat plane plus the platform index,
// mirroring physics_engine.go's own `WorldBounds` simplification
// rather than a full static-geometry raycast.
const GroundPlaneY = 0.0

// KinematicState is the subset of player state the kernel steps.
type KinematicState struct {
	Position            Vec3
	Velocity            Vec3
	Grounded            bool
	GroundedPlatformPID *uint16
	MovementMode        MovementMode
}

// StepResult is the next KinematicState. Its GroundedPlatformPID (if any)
// is what the following step passes as the "preferred" pid for grounding
// hysteresis.
type StepResult struct {
	State KinematicState
}

// Step advances state by one fixed tick using in and the platform index's
// poses at simTime and simTime+dt. Both the server and the client
// predictor call this exact function, so a replayed input produces the
// same position on both sides down to the bit.
func Step(idx *PlatformIndex, state KinematicState, in MovementInput, simTime, dt float64) StepResult {
	dt = ClampDeltaTime(dt)
	in.Yaw = SanitizeYaw(in.Yaw)
	state.Velocity = SanitizeVec3(state.Velocity)
	state.Position = SanitizeVec3(state.Position)

	if state.MovementMode == MovementFlying {
		return stepFlying(state, in, dt)
	}

	wasGroundedPlatform := state.GroundedPlatformPID

	// 1. Horizontal acceleration toward target velocity.
	newVel := StepHorizontalMovement(state.Velocity, in, state.Grounded, dt)

	// 2. Vertical: jump / gravity, honoring I1.
	newVel.Y = ApplyVerticalMovement(newVel.Y, state.Grounded, wasGroundedPlatform != nil, in.Jump, dt)

	// 3. Integrate position.
	candidate := Add(state.Position, Scale(dt, newVel))

	// 4. Platform carry: if riding a platform last tick, carry the body
	// through that platform's rigid-transform delta before testing ground
	// again. If the preferred platform vanished mid-step, carry is zero
	// and groundedPlatformPid clears — the next grounding query starts
	// from a clean slate instead of chasing a platform that's gone.
	if wasGroundedPlatform != nil {
		if plat, ok := idx.Get(*wasGroundedPlatform); ok {
			prevPose := plat.Sample(simTime)
			curPose := plat.Sample(simTime + dt)
			candidate = ApplyPlatformCarry(prevPose, curPose, candidate)
		} else {
			wasGroundedPlatform = nil
		}
	}

	// 4.5. Wall collision: push the capsule out of any platform side face
	// it has penetrated horizontally and slide along it instead of
	// clipping through, before testing the ground below.
	candidate, newVel = resolveWallContacts(idx, simTime+dt, candidate, newVel)

	// 5. Snap-to-ground: if the foot is at most SnapToGroundDistance above
	// the flat ground plane (or below it) and moving downward or level,
	// clamp to the ground plane and mark grounded. Platform surfaces are
	// not snapped to here: step 6 marks the body grounded on a platform
	// within its tolerance window but leaves its position as is. This substitutes
	// for a full shape sweep against static geometry (out of scope, see
	// GroundPlaneY doc).
	solverGrounded := false
	groundY := GroundPlaneY
	if candidate.Y-CapsuleHalfHeight-CapsuleRadius <= groundY+SnapToGroundDistance && newVel.Y <= 0 {
		candidate.Y = groundY + CapsuleHalfHeight + CapsuleRadius
		newVel.Y = 0
		solverGrounded = true
	}

	// 6. Grounding resolution against the platform index, enforcing
	// I1/I2.
	res := ResolveKinematicPostStepState(idx, simTime+dt, candidate, newVel.Y, solverGrounded || state.Grounded && newVel.Y <= 0, wasGroundedPlatform)
	if res.GroundedPlatformPID != nil {
		solverGrounded = true
	}
	res.Grounded = res.Grounded || solverGrounded

	newVel.Y = res.VY

	return StepResult{State: KinematicState{
		Position:            res.Position,
		Velocity:            newVel,
		Grounded:            res.Grounded,
		GroundedPlatformPID: res.GroundedPlatformPID,
		MovementMode:        state.MovementMode,
	}}
}

func stepFlying(state KinematicState, in MovementInput, dt float64) StepResult {
	forward := YawToForward(in.Yaw)
	right := YawToRight(in.Yaw)
	wish := Add(Scale(in.Forward, forward), Scale(in.Strafe, right))
	vy := 0.0
	if in.Jump {
		vy = WalkSpeed
	}
	vel := Scale(WalkSpeed, Normalize(wish))
	vel.Y = vy
	pos := Add(state.Position, Scale(dt, vel))
	return StepResult{State: KinematicState{
		Position:     SanitizeVec3(pos),
		Velocity:     vel,
		Grounded:     false,
		MovementMode: MovementFlying,
	}}
}
