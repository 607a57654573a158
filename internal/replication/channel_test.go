package replication

import (
	"testing"

	"github.com/elderford/realmcore/internal/kernel"
	"github.com/stretchr/testify/require"
)

func TestOwnerAlwaysVisibleRegardlessOfViewBox(t *testing.T) {
	owner := NID(1)
	ch := NewUserChannel(owner, ViewBox{Center: kernel.Vec3{}, HalfWidth: 1, HalfHeight: 1, HalfDepth: 1})

	current := map[NID]Snapshot{
		owner: {NID: owner, ModelID: "player", Position: kernel.Vec3{X: 1000, Y: 0, Z: 1000}},
	}

	frame := ch.Compute(current)
	require.Len(t, frame.Create, 1)
	require.Equal(t, owner, frame.Create[0].NID)
}

func TestEntityEntersAndLeavesView(t *testing.T) {
	owner := NID(1)
	remote := NID(2)
	ch := NewUserChannel(owner, ViewBox{Center: kernel.Vec3{}, HalfWidth: 10, HalfHeight: 10, HalfDepth: 10})

	// Tick 1: remote far away, not visible.
	frame := ch.Compute(map[NID]Snapshot{
		owner:  {NID: owner, ModelID: "player"},
		remote: {NID: remote, ModelID: "player", Position: kernel.Vec3{X: 100}},
	})
	require.Len(t, frame.Create, 1) // only owner

	// Tick 2: remote enters view -> create.
	frame = ch.Compute(map[NID]Snapshot{
		owner:  {NID: owner, ModelID: "player"},
		remote: {NID: remote, ModelID: "player", Position: kernel.Vec3{X: 1}},
	})
	require.Len(t, frame.Create, 1)
	require.Equal(t, remote, frame.Create[0].NID)

	// Tick 3: remote leaves view -> delete within one tick.
	frame = ch.Compute(map[NID]Snapshot{
		owner:  {NID: owner, ModelID: "player"},
		remote: {NID: remote, ModelID: "player", Position: kernel.Vec3{X: 100}},
	})
	require.Contains(t, frame.Delete, remote)
}

func TestUpdateOnlyCarriesChangedFields(t *testing.T) {
	owner := NID(1)
	ch := NewUserChannel(owner, ViewBox{HalfWidth: 5, HalfHeight: 5, HalfDepth: 5})

	ch.Compute(map[NID]Snapshot{owner: {NID: owner, ModelID: "player", Health: 100, MaxHealth: 100}})

	frame := ch.Compute(map[NID]Snapshot{owner: {NID: owner, ModelID: "player", Health: 90, MaxHealth: 100}})
	require.Empty(t, frame.Create)
	require.Len(t, frame.Update, 1)
	require.Equal(t, "health", frame.Update[0].Prop)
}

func TestCreateBeforeUpdateBeforeDeleteOrdering(t *testing.T) {
	owner := NID(1)
	a, b := NID(2), NID(3)
	ch := NewUserChannel(owner, ViewBox{HalfWidth: 1000, HalfHeight: 1000, HalfDepth: 1000})

	ch.Compute(map[NID]Snapshot{
		owner: {NID: owner, ModelID: "player"},
		a:     {NID: a, ModelID: "dummy", Health: 10},
	})

	frame := ch.Compute(map[NID]Snapshot{
		owner: {NID: owner, ModelID: "player"},
		a:     {NID: a, ModelID: "dummy", Health: 5}, // update
		b:     {NID: b, ModelID: "dummy", Health: 10}, // create
		// a is removed by omission in the follow-up tick below
	})
	require.Len(t, frame.Create, 1)
	require.Equal(t, b, frame.Create[0].NID)
	require.Len(t, frame.Update, 1)
	require.Equal(t, a, frame.Update[0].NID)
	require.Empty(t, frame.Delete)

	frame = ch.Compute(map[NID]Snapshot{
		owner: {NID: owner, ModelID: "player"},
		b:     {NID: b, ModelID: "dummy", Health: 10},
	})
	require.Empty(t, frame.Create)
	require.Empty(t, frame.Update)
	require.Equal(t, []NID{a}, frame.Delete)
}
