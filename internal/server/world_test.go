package server

import (
	"testing"

	"github.com/elderford/realmcore/internal/ability"
	"github.com/elderford/realmcore/internal/config"
	"github.com/elderford/realmcore/internal/kernel"
	"github.com/elderford/realmcore/internal/netcode"
	"github.com/elderford/realmcore/internal/world"
	"github.com/stretchr/testify/require"
)

const testTick = 1.0 / 60.0

func TestStepConsumesInputAndProducesAck(t *testing.T) {
	w := NewWorld(nil, kernel.Vec3{}, nil, nil)
	p := w.AddPlayer(1, "acct-1", 100)
	require.Equal(t, kernel.Vec3{}, p.Position)

	w.Enqueue(1, netcode.InputCommand{Sequence: 1, Forward: 1, Yaw: 0})

	out := w.Step(testTick)

	ack, ok := out.Acks[1]
	require.True(t, ok)
	require.Equal(t, uint16(1), ack.Sequence)
	require.Equal(t, int64(0), ack.ServerTick)
	require.Greater(t, ack.Z, 0.0) // forward input with yaw 0 moves along +Z
}

func TestStepWithNoQueuedCommandProducesNoAck(t *testing.T) {
	w := NewWorld(nil, kernel.Vec3{}, nil, nil)
	w.AddPlayer(2, "acct-2", 100)

	out := w.Step(testTick)
	_, ok := out.Acks[2]
	require.False(t, ok)
}

func TestStepProducesReplicationFrameForOwner(t *testing.T) {
	w := NewWorld(nil, kernel.Vec3{}, nil, nil)
	w.AddPlayer(1, "acct-1", 100)

	out := w.Step(testTick)
	frame, ok := out.Diffs[1]
	require.True(t, ok)
	// G4: the owner's own entity is always created/visible even with no
	// other entities around and no movement this tick.
	require.Len(t, frame.Create, 1)
	require.Equal(t, uint32(1), uint32(frame.Create[0].NID))
}

func TestRemovePlayerDropsOwnedProjectiles(t *testing.T) {
	w := NewWorld(nil, kernel.Vec3{}, nil, nil)
	w.AddPlayer(1, "acct-1", 100)

	w.projectiles[1] = &world.Projectile{EID: 1, Owner: 1, TTLSeconds: 5, RemainingRange: 100}
	w.projectiles[2] = &world.Projectile{EID: 2, Owner: 99, TTLSeconds: 5, RemainingRange: 100}

	w.RemovePlayer(1)

	_, stillOwned := w.projectiles[1]
	require.False(t, stillOwned)
	_, otherSurvives := w.projectiles[2]
	require.True(t, otherSurvives)
	_, hasPlayer := w.players[1]
	require.False(t, hasPlayer)
}

func TestFireMeleeAbilityDamagesDummyInFront(t *testing.T) {
	abilities := map[uint16]*world.Ability{
		1: {
			ID:       1,
			Category: world.CategoryMelee,
			Melee:    &world.MeleeProfile{Damage: 10, Radius: 1, Range: 3, ArcDegrees: 90},
		},
	}
	w := NewWorld(nil, kernel.Vec3{}, abilities, nil)
	p := w.AddPlayer(1, "acct-1", 100)
	p.HotbarAbilityIDs[0] = 1
	p.PrimaryMouseSlot = 0

	d := w.AddDummy(kernel.Vec3{X: 0, Y: 0, Z: 1.5}, 0, 50)

	w.Enqueue(1, netcode.InputCommand{Sequence: 1, Yaw: 0, UsePrimaryPressed: true})
	out := w.Step(testTick)

	require.Len(t, out.AbilityUses, 1)
	require.Equal(t, float64(40), d.Health)
}

func TestFireProjectileAbilitySpawnsProjectile(t *testing.T) {
	abilities := map[uint16]*world.Ability{
		2: {
			ID:       2,
			Category: world.CategoryProjectile,
			Projectile: &world.ProjectileProfile{
				Kind: "bolt", Speed: 20, Damage: 5, Radius: 0.2, LifetimeSec: 3,
			},
		},
	}
	w := NewWorld(nil, kernel.Vec3{}, abilities, nil)
	p := w.AddPlayer(1, "acct-1", 100)
	p.HotbarAbilityIDs[0] = 2
	p.PrimaryMouseSlot = 0

	w.Enqueue(1, netcode.InputCommand{Sequence: 1, UsePrimaryPressed: true})
	out := w.Step(testTick)

	require.Len(t, out.AbilityUses, 1)
	require.Len(t, w.projectiles, 1)
}

func TestApplyAbilityCreatorCommandWithoutEnableIsUnhandled(t *testing.T) {
	w := NewWorld(nil, kernel.Vec3{}, nil, nil)
	w.AddPlayer(1, "acct-1", 100)

	_, created, handled := w.ApplyAbilityCreatorCommand(1, netcode.AbilityCreatorCommand{Field: "name", Value: "X"})
	require.False(t, handled)
	require.Nil(t, created)
}

func TestApplyAbilityCreatorCommandSubmitRegistersAbility(t *testing.T) {
	w := NewWorld(nil, kernel.Vec3{}, nil, nil)
	w.AddPlayer(1, "acct-1", 100)
	w.EnableAbilityCreator(ability.NewTiers(config.TuningData{
		AbilityTiers: []config.AbilityTierTuning{
			{Name: ability.DefaultTierName, TotalPoints: 40, UpsideSlots: 2, DownsideMax: 20, AttributeSlots: 2},
		},
	}))

	w.ApplyAbilityCreatorCommand(1, netcode.AbilityCreatorCommand{Field: "name", Value: "Frostbolt"})
	w.ApplyAbilityCreatorCommand(1, netcode.AbilityCreatorCommand{Field: "category", Value: "projectile"})
	state, created, handled := w.ApplyAbilityCreatorCommand(1, netcode.AbilityCreatorCommand{Submit: true})

	require.True(t, handled)
	require.NotNil(t, created)
	require.True(t, state.Valid)

	registered, ok := w.abilities[created.ID]
	require.True(t, ok)
	require.Equal(t, "Frostbolt", registered.Name)
}

func TestApplyLoadoutCommandOnUnknownPlayerReturnsFalse(t *testing.T) {
	w := NewWorld(nil, kernel.Vec3{}, nil, nil)
	_, ok := w.ApplyLoadoutCommand(99, netcode.LoadoutCommand{})
	require.False(t, ok)
}

func TestGeometrySamplesPlatformAtCurrentSimTime(t *testing.T) {
	platforms := []world.Platform{
		{PID: 7, Kind: kernel.PlatformLinear, HalfExtent: kernel.Vec3{X: 1, Y: 1, Z: 1}, Origin: kernel.Vec3{X: 0, Y: 0, Z: 0}},
	}
	w := NewWorld(platforms, kernel.Vec3{}, nil, nil)
	geo := w.geometry()
	require.Len(t, geo.Platforms, 1)
	require.Equal(t, uint16(7), geo.Platforms[0].PID)
	require.Equal(t, -1.0, geo.Platforms[0].Min.X)
	require.Equal(t, 1.0, geo.Platforms[0].Max.X)
}
