// Package client implements the symmetrical client-side half of the
// movement protocol: prediction through the shared kernel, ack-triggered
// rewind/replay reconciliation, hard-snap/smoothing-offset error
// handling, and a render snapshot assembler that blends the predicted
// local pose with interpolated remote entities. The
// teacher is server-only, so this package is new code built directly
// against `internal/kernel`/`internal/netcode` so replay stays bit-exact
// with the server's own stepping.
package client

import (
	"math"

	"github.com/elderford/realmcore/internal/kernel"
	"github.com/elderford/realmcore/internal/netcode"
)

// hardSnapDistance and hardSnapYaw are the reconciliation-error
// thresholds: exceed either and the predicted pose jumps instead of
// smoothing.
const (
	hardSnapDistance = 2.5
	hardSnapYaw      = 0.75 * math.Pi

	// smoothingDecayRate is the smoothing offset's exponential decay
	// rate-constant, roughly 14 per second.
	smoothingDecayRate = 14.0
)

// PendingInput is one not-yet-acknowledged command the predictor has
// already stepped locally.
type PendingInput struct {
	Sequence uint16
	Input    kernel.MovementInput
	DT       float64
	SimTime  float64 // simulation time this input was originally stepped at
}

// Predictor is the client-side mirror of the server's per-player
// kinematic state: it steps ahead of the network immediately on local
// input, then rewinds and replays against each arriving ack.
type Predictor struct {
	platforms *kernel.PlatformIndex

	state   kernel.KinematicState
	simTime float64

	// carryYaw accumulates the rotational heading imparted by riding
	// platforms, standing in for the "yaw" half of the hard-snap test —
	// the ack protocol carries no facing yaw of its own,
	// but a large, unexpected platform-carry correction should still snap
	// rather than smooth, the same way a large positional one does.
	carryYaw float64

	pending []PendingInput

	lastAckedSequence uint16
	hasAcked          bool

	smoothing SmoothingOffset
}

// NewPredictor constructs a predictor seeded with the player's initial
// spawn state.
func NewPredictor(platforms *kernel.PlatformIndex, initial kernel.KinematicState, simTime float64) *Predictor {
	return &Predictor{platforms: platforms, state: initial, simTime: simTime}
}

// State returns the current predicted kinematic state (pre-smoothing).
func (p *Predictor) State() kernel.KinematicState { return p.state }

// Predict steps the predictor forward by one local input, recording it
// as pending until an ack confirms or supersedes it.
func (p *Predictor) Predict(sequence uint16, in kernel.MovementInput, dt float64) kernel.KinematicState {
	dt = kernel.ClampDeltaTime(dt)
	result := kernel.Step(p.platforms, p.state, in, p.simTime, dt)
	p.carryYaw = p.nextCarryYaw(in, dt, result.State)

	p.pending = append(p.pending, PendingInput{Sequence: sequence, Input: in, DT: dt, SimTime: p.simTime})
	p.state = result.State
	p.simTime += dt
	return p.state
}

// nextCarryYaw advances the carry-yaw tracker: it accumulates the
// platform's own yaw delta over dt whenever the body is riding a
// platform this step, and holds steady otherwise.
func (p *Predictor) nextCarryYaw(in kernel.MovementInput, dt float64, next kernel.KinematicState) float64 {
	if next.GroundedPlatformPID == nil {
		return p.carryYaw
	}
	plat, ok := p.platforms.Get(*next.GroundedPlatformPID)
	if !ok {
		return p.carryYaw
	}
	prevPose := plat.Sample(p.simTime)
	curPose := plat.Sample(p.simTime + dt)
	return kernel.NormalizeYaw(p.carryYaw + kernel.NormalizeYaw(curPose.Yaw-prevPose.Yaw))
}

// Reconcile applies a server ack: drops every pending input at or behind
// the acked sequence, rewinds to the ack's authoritative state, and
// replays the remaining pending inputs through the identical kernel.
// Stale or out-of-order acks are ignored.
func (p *Predictor) Reconcile(ack netcode.InputAckMessage) {
	if p.hasAcked && netcode.IsStale(ack.Sequence, p.lastAckedSequence) {
		return
	}
	p.lastAckedSequence = ack.Sequence
	p.hasAcked = true

	preState := p.state
	preCarryYaw := p.carryYaw

	ackState := kernel.KinematicState{
		Position:            kernel.Vec3{X: ack.X, Y: ack.Y, Z: ack.Z},
		Velocity:            kernel.Vec3{X: ack.VX, Y: ack.VY, Z: ack.VZ},
		Grounded:            ack.Grounded,
		GroundedPlatformPID: ack.GroundedPlatformPID,
		MovementMode:        kernel.MovementMode(ack.MovementMode),
	}

	remaining := p.pending[:0:0]
	for _, in := range p.pending {
		if netcode.IsStale(in.Sequence, ack.Sequence) {
			continue
		}
		remaining = append(remaining, in)
	}

	replaySimTime := p.simTime - sumDT(remaining)
	replayState := ackState
	carryYaw := preCarryYaw
	for _, in := range remaining {
		result := kernel.Step(p.platforms, replayState, in.Input, replaySimTime, in.DT)
		carryYaw = carryYawDelta(p.platforms, replayState, result.State, replaySimTime, in.DT, carryYaw)
		replayState = result.State
		replaySimTime += in.DT
	}

	p.pending = remaining

	posError := kernel.Norm(kernel.Sub(preState.Position, replayState.Position))
	yawError := math.Abs(kernel.NormalizeYaw(preCarryYaw - carryYaw))

	if posError > hardSnapDistance || yawError > hardSnapYaw {
		p.smoothing.Reset()
	} else {
		p.smoothing.Accumulate(kernel.Sub(preState.Position, replayState.Position), replayState.GroundedPlatformPID, p.platforms, replaySimTime)
	}

	p.state = replayState
	p.carryYaw = carryYaw
}

// RenderPosition returns the position to draw this frame: the predicted
// pose plus the decaying smoothing offset. Call once
// per render tick with the frame's dt so the offset decays at a steady
// rate independent of the simulation tick rate.
func (p *Predictor) RenderPosition(dt float64) kernel.Vec3 {
	offset := p.smoothing.Tick(dt, p.state.GroundedPlatformPID, p.platforms, p.simTime)
	return kernel.Add(p.state.Position, offset)
}

func sumDT(inputs []PendingInput) float64 {
	var total float64
	for _, in := range inputs {
		total += in.DT
	}
	return total
}

// carryYawDelta mirrors nextCarryYaw for use during replay, where the
// "previous" state is the replay's running state rather than the
// predictor's own last-committed state.
func carryYawDelta(idx *kernel.PlatformIndex, prev, next kernel.KinematicState, simTime, dt, carryYaw float64) float64 {
	if next.GroundedPlatformPID == nil {
		return carryYaw
	}
	plat, ok := idx.Get(*next.GroundedPlatformPID)
	if !ok {
		return carryYaw
	}
	prevPose := plat.Sample(simTime)
	curPose := plat.Sample(simTime + dt)
	return kernel.NormalizeYaw(carryYaw + kernel.NormalizeYaw(curPose.Yaw-prevPose.Yaw))
}
