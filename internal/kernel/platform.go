package kernel

// PlatformKind selects which deterministic time->pose function a platform
// samples from.
type PlatformKind int

const (
	PlatformLinear PlatformKind = iota
	PlatformRotating
)

// PlatformPose is the output of Platform.sample(t): a rigid pose at a
// point in simulation time.
type PlatformPose struct {
	Position Vec3
	Yaw      float64
}

// Platform is the static, process-wide-immutable definition of a moving
// platform. Its pose is a pure function of simulation time,
// which is why both server and client can predict carry without any
// additional replicated state.
type Platform struct {
	PID        uint16
	Kind       PlatformKind
	HalfExtent Vec3

	// Linear platforms oscillate along Axis between Origin-Amplitude*Axis
	// and Origin+Amplitude*Axis with the given period. Rotating platforms
	// spin around their own Y axis at AngularSpeed (radians/sec) centered
	// at Origin; LinearAxis/Amplitude/Period are unused for them.
	Origin       Vec3
	LinearAxis   Vec3
	Amplitude    float64
	PeriodSec    float64
	AngularSpeed float64
}

// Sample evaluates the platform's deterministic time->pose function.
func (p Platform) Sample(simTime float64) PlatformPose {
	switch p.Kind {
	case PlatformRotating:
		return PlatformPose{Position: p.Origin, Yaw: NormalizeYaw(p.AngularSpeed * simTime)}
	default: // PlatformLinear
		if p.PeriodSec <= 0 {
			return PlatformPose{Position: p.Origin}
		}
		phase := triangleWave(simTime / p.PeriodSec)
		offset := Scale(p.Amplitude*phase, Normalize(p.LinearAxis))
		return PlatformPose{Position: Add(p.Origin, offset)}
	}
}

// triangleWave returns a value in [-1,1] that rises and falls linearly
// with period 1 in x, starting at 0 and rising — a smooth, deterministic,
// closed-form oscillation suitable for a shared sample(t) function.
func triangleWave(x float64) float64 {
	// Shift by a quarter period so the wave starts at 0 and rises.
	y := x + 0.25
	frac := y - float64(int64(y))
	if frac < 0 {
		frac += 1
	}
	// x's phase in [0,1) maps to a triangle that is 0 at 0, 1 at 0.25, 0 at
	// 0.5, -1 at 0.75, back to 0 at 1.
	return 4*triangleBase(frac) - 1
}

func triangleBase(frac float64) float64 {
	// folds [0,1) into a sawtooth-then-mirror used by triangleWave; kept
	// as a separate step for readability over the closed form.
	if frac < 0.5 {
		return frac
	}
	return 1 - frac
}

// ApplyPlatformCarry moves bodyPos through the rigid-transform delta
// between prevPose and curPose: translate by the position delta, then
// rotate the remaining offset from the platform's previous origin about
// the platform's Y axis by the yaw delta. This is the standard
// "translate then rotate about pivot" carry used by both the server and
// the client predictor.
func ApplyPlatformCarry(prevPose, curPose PlatformPose, bodyPos Vec3) Vec3 {
	yawDelta := NormalizeYaw(curPose.Yaw - prevPose.Yaw)

	offsetFromPlatform := Sub(bodyPos, prevPose.Position)
	rotated := RotateAroundY(offsetFromPlatform, yawDelta)

	return Add(curPose.Position, rotated)
}
