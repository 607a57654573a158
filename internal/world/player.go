// Package world holds the authoritative data model: Player,
// Platform, Projectile, TrainingDummy and Ability definitions. It
// generalizes the PlayerData/ObjectData/Persisted* structs
// (game.go, database_manager.go) into typed records owned by exactly one
// authority: the tick loop.
package world

import "github.com/elderford/realmcore/internal/kernel"

// NID is a per-connection network id, recycled across connections.
type NID uint32

// HotbarSize is the number of hotbar slots.
const HotbarSize = 10

// Player is the authoritative per-connection player record.
type Player struct {
	AccountID string // stable, persisted across sessions
	NID       NID    // per-connection, recycled

	Position Vec3
	Yaw      float64
	Pitch    float64
	Velocity Vec3

	Grounded            bool
	GroundedPlatformPID *uint16
	MovementMode        kernel.MovementMode

	Health    float64
	MaxHealth float64

	LastProcessedSequence uint16

	HotbarAbilityIDs   [HotbarSize]uint16
	PrimaryMouseSlot   int // index into HotbarAbilityIDs
	SecondaryMouseSlot int

	UnlockedAbilityIDs map[uint16]struct{}

	// Dirty is set on respawn. Nothing reads it: replication diffs compare
	// each tick's snapshot field by field, so a respawn is replicated
	// either way.
	Dirty bool
}

// Vec3 aliases kernel.Vec3 so callers outside internal/kernel don't need
// to import it directly for plain field declarations.
type Vec3 = kernel.Vec3

// NewPlayer constructs a Player at spawnPos with defaults satisfying the
// kernel's grounded/velocity invariants vacuously at creation.
func NewPlayer(accountID string, nid NID, spawnPos Vec3, maxHealth float64) *Player {
	return &Player{
		AccountID:          accountID,
		NID:                nid,
		Position:           spawnPos,
		Grounded:           true,
		MovementMode:       kernel.MovementGrounded,
		Health:             maxHealth,
		MaxHealth:          maxHealth,
		UnlockedAbilityIDs: make(map[uint16]struct{}),
	}
}

// KinematicState extracts the subset of Player the kernel's Step function
// consumes/produces.
func (p *Player) KinematicState() kernel.KinematicState {
	return kernel.KinematicState{
		Position:            p.Position,
		Velocity:            p.Velocity,
		Grounded:            p.Grounded,
		GroundedPlatformPID: p.GroundedPlatformPID,
		MovementMode:        p.MovementMode,
	}
}

// ApplyKinematicState writes a kernel.KinematicState back onto the player,
// enforcing that a platform-grounded player has zero vertical velocity
// (the kernel already does this; this is defense in depth).
func (p *Player) ApplyKinematicState(s kernel.KinematicState) {
	p.Position = s.Position
	p.Velocity = s.Velocity
	p.Grounded = s.Grounded
	p.GroundedPlatformPID = s.GroundedPlatformPID
	if p.GroundedPlatformPID != nil {
		p.Grounded = true
		p.Velocity.Y = 0
	}
	p.MovementMode = s.MovementMode
}

// Respawn resets the player to spawnPos with full health.
func (p *Player) Respawn(spawnPos Vec3) {
	p.Position = spawnPos
	p.Velocity = Vec3{}
	p.Grounded = true
	p.GroundedPlatformPID = nil
	p.MovementMode = kernel.MovementGrounded
	p.Health = p.MaxHealth
	p.Dirty = true
}

// ApplyDamage applies integer damage, clamping health at zero, and
// triggers a respawn if health reaches zero. Returns
// true if the player died from this hit.
func (p *Player) ApplyDamage(damage int, spawnPos Vec3) (died bool) {
	p.Health -= float64(damage)
	if p.Health <= 0 {
		p.Health = 0
		p.Respawn(spawnPos)
		return true
	}
	return false
}
