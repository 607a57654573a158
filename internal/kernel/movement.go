package kernel

// MovementMode selects which stepping function kernel.Step dispatches to.
type MovementMode int

const (
	MovementGrounded MovementMode = iota
	MovementFlying
)

// MovementInput is the subset of an InputCommand the kernel needs to step
// horizontal movement and jumping. netcode.InputCommand converts down to
// this so the kernel package stays free of the wire schema.
type MovementInput struct {
	Forward float64 // -1..1
	Strafe  float64 // -1..1
	Jump    bool
	Sprint  bool
	Yaw     float64
}

// StepHorizontalMovement accelerates vPrev toward the input-derived target
// velocity on the horizontal (XZ) plane. It is a pure vector transform: it
// never reads world/physics state.
//
// grounded selects the ground/air acceleration and target-speed tables;
// sprint scales the grounded target speed only (sprinting in the air does
// not grant extra target speed; the single-drag-rate
// simplicity of physics_engine.go generalizes here into two accel tables
// instead of one).
func StepHorizontalMovement(vPrev Vec3, in MovementInput, grounded bool, dt float64) Vec3 {
	dt = ClampDeltaTime(dt)

	forward := YawToForward(in.Yaw)
	right := YawToRight(in.Yaw)

	wish := Add(Scale(in.Forward, forward), Scale(in.Strafe, right))
	wish = Horizontal(wish)
	if n := Norm(wish); n > 1e-9 {
		wish = Scale(1/n, wish)
	}

	targetSpeed := WalkSpeed
	if grounded && in.Sprint {
		targetSpeed *= SprintMultiplier
	}
	targetVel := Scale(targetSpeed, wish)

	accel := AirAccel
	if grounded {
		accel = GroundAccel
	}

	vHoriz := Horizontal(vPrev)
	delta := Sub(targetVel, vHoriz)
	maxStep := accel * dt
	if Norm(delta) > maxStep {
		delta = Scale(maxStep/Norm(delta), delta)
	}

	newHoriz := Add(vHoriz, delta)
	return Vec3{X: newHoriz.X, Y: vPrev.Y, Z: newHoriz.Z}
}

// ApplyVerticalMovement applies jump and gravity to the vertical (Y)
// velocity component. groundedPlatform reports whether the player is
// currently riding a platform: vy is ignored in that case, the carry
// transform supplies vertical motion instead.
func ApplyVerticalMovement(vy float64, grounded, groundedPlatform, jumpPressed bool, dt float64) float64 {
	dt = ClampDeltaTime(dt)

	if groundedPlatform {
		return 0
	}

	if grounded && jumpPressed {
		return JumpVelocity
	}

	if grounded && !jumpPressed {
		return 0
	}

	return vy + Gravity*dt
}
