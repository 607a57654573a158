package client

import (
	"math"

	"github.com/elderford/realmcore/internal/kernel"
)

// SmoothingOffset is the reconciliation error rendered as a decaying
// positional offset rather than an instant snap. While
// the body is grounded on a rotating platform the offset is held in that
// platform's own rotating frame, so the platform's yaw carry doesn't
// re-introduce drift into an offset that was already settling.
type SmoothingOffset struct {
	offset kernel.Vec3

	localFrame   bool
	platformPID  uint16
	referenceYaw float64
}

// Reset clears the offset, used on a hard snap.
func (s *SmoothingOffset) Reset() {
	*s = SmoothingOffset{}
}

// Accumulate folds an additional reconciliation delta into the offset,
// expressed in whatever frame the body currently occupies.
func (s *SmoothingOffset) Accumulate(delta kernel.Vec3, platformPID *uint16, idx *kernel.PlatformIndex, simTime float64) {
	world := kernel.Add(s.worldOffset(idx, simTime), delta)
	s.store(world, platformPID, idx, simTime)
}

// Tick decays the offset by one render frame's worth of exponential
// decay and returns the resulting world-space offset.
func (s *SmoothingOffset) Tick(dt float64, platformPID *uint16, idx *kernel.PlatformIndex, simTime float64) kernel.Vec3 {
	world := kernel.Scale(math.Exp(-smoothingDecayRate*dt), s.worldOffset(idx, simTime))
	s.store(world, platformPID, idx, simTime)
	return world
}

// worldOffset converts the stored offset (which may be expressed in a
// platform's local frame) back into world space at simTime.
func (s *SmoothingOffset) worldOffset(idx *kernel.PlatformIndex, simTime float64) kernel.Vec3 {
	if !s.localFrame {
		return s.offset
	}
	plat, ok := idx.Get(s.platformPID)
	if !ok {
		return s.offset
	}
	yawDelta := kernel.NormalizeYaw(plat.Sample(simTime).Yaw - s.referenceYaw)
	return kernel.RotateAroundY(s.offset, yawDelta)
}

// store records world (already-current) as the live offset, re-entering
// the platform-local frame if the body is grounded on a rotating
// platform, or staying world-frame otherwise.
func (s *SmoothingOffset) store(world kernel.Vec3, platformPID *uint16, idx *kernel.PlatformIndex, simTime float64) {
	if platformPID != nil {
		if plat, ok := idx.Get(*platformPID); ok && plat.Kind == kernel.PlatformRotating {
			s.localFrame = true
			s.platformPID = *platformPID
			s.referenceYaw = plat.Sample(simTime).Yaw
			s.offset = world
			return
		}
	}
	s.localFrame = false
	s.offset = world
}
