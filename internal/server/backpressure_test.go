package server

import (
	"testing"

	"github.com/elderford/realmcore/internal/kernel"
	"github.com/elderford/realmcore/internal/netcode"
	"github.com/elderford/realmcore/internal/replication"
	"github.com/stretchr/testify/require"
)

func TestDiffMergerCoalescesAcrossTicks(t *testing.T) {
	m := newDiffMerger()

	m.Add(netcode.EntityDiff{
		Create: []netcode.ReplicatedEntity{{NID: 1, ModelID: "player"}},
	})
	m.Add(netcode.EntityDiff{
		Update: []netcode.EntityFieldUpdate{{NID: 2, Prop: "health", Value: 80.0}},
	})
	m.Add(netcode.EntityDiff{
		Update: []netcode.EntityFieldUpdate{{NID: 2, Prop: "health", Value: 60.0}},
	})

	out := m.Flush()
	require.Len(t, out.Create, 1)
	require.Equal(t, uint32(1), out.Create[0].NID)
	require.Len(t, out.Update, 1)
	require.Equal(t, 60.0, out.Update[0].Value) // later tick wins
	require.True(t, m.Empty())
}

func TestDiffMergerDeleteClearsPendingCreateAndUpdate(t *testing.T) {
	m := newDiffMerger()
	m.Add(netcode.EntityDiff{Create: []netcode.ReplicatedEntity{{NID: 3}}})
	m.Add(netcode.EntityDiff{Update: []netcode.EntityFieldUpdate{{NID: 3, Prop: "health", Value: 10.0}}})
	m.Add(netcode.EntityDiff{Delete: []uint32{3}})

	out := m.Flush()
	require.Empty(t, out.Create)
	require.Empty(t, out.Update)
	require.Equal(t, []uint32{3}, out.Delete)
}

func TestDiffMergerRecreateAfterDeleteClearsDeleteMarker(t *testing.T) {
	m := newDiffMerger()
	m.Add(netcode.EntityDiff{Delete: []uint32{4}})
	m.Add(netcode.EntityDiff{Create: []netcode.ReplicatedEntity{{NID: 4}}})

	out := m.Flush()
	require.Len(t, out.Create, 1)
	require.Empty(t, out.Delete)
}

func TestToWireDiffConvertsSnapshotsAndUpdates(t *testing.T) {
	frame := replication.Frame{
		Create: []replication.Snapshot{{NID: 5, ModelID: "dummy", Position: kernel.Vec3{X: 1, Y: 2, Z: 3}}},
		Update: []replication.FieldUpdate{{NID: 5, Prop: "health", Value: 50.0}},
		Delete: []replication.NID{6},
	}

	out := toWireDiff(frame)
	require.Len(t, out.Create, 1)
	require.Equal(t, [3]float64{1, 2, 3}, out.Create[0].Position)
	require.Len(t, out.Update, 1)
	require.Equal(t, uint32(5), out.Update[0].NID)
	require.Equal(t, []uint32{6}, out.Delete)
}
