package client

import (
	"testing"

	"github.com/elderford/realmcore/internal/netcode"
	"github.com/stretchr/testify/require"
)

func TestApplyFrameCreateThenInterpolateBeforeSecondSample(t *testing.T) {
	s := NewRemoteStore()
	s.ApplyFrame(0, netcode.EntityDiff{
		Create: []netcode.ReplicatedEntity{{NID: 1, ModelID: "dummy", Position: [3]float64{1, 0, 0}}},
	})

	snap, ok := s.Interpolate(1, 0)
	require.True(t, ok)
	require.Equal(t, 1.0, snap.Position.X)
}

func TestApplyFrameInterpolatesBetweenTwoSamples(t *testing.T) {
	s := NewRemoteStore()
	s.ApplyFrame(0, netcode.EntityDiff{
		Create: []netcode.ReplicatedEntity{{NID: 1, Position: [3]float64{0, 0, 0}}},
	})
	s.ApplyFrame(1, netcode.EntityDiff{
		Update: []netcode.EntityFieldUpdate{{NID: 1, Prop: "position", Value: [3]float64{10, 0, 0}}},
	})

	snap, ok := s.Interpolate(1, 0.5)
	require.True(t, ok)
	require.InDelta(t, 5.0, snap.Position.X, 1e-9)
}

func TestApplyFrameDeleteRemovesEntity(t *testing.T) {
	s := NewRemoteStore()
	s.ApplyFrame(0, netcode.EntityDiff{
		Create: []netcode.ReplicatedEntity{{NID: 1}},
	})
	s.ApplyFrame(1, netcode.EntityDiff{Delete: []uint32{1}})

	_, ok := s.Interpolate(1, 1)
	require.False(t, ok)
}

func TestInterpolateClampsPastLatestSample(t *testing.T) {
	s := NewRemoteStore()
	s.ApplyFrame(0, netcode.EntityDiff{Create: []netcode.ReplicatedEntity{{NID: 1, Position: [3]float64{0, 0, 0}}}})
	s.ApplyFrame(1, netcode.EntityDiff{Update: []netcode.EntityFieldUpdate{{NID: 1, Prop: "position", Value: [3]float64{10, 0, 0}}}})

	snap, ok := s.Interpolate(1, 50)
	require.True(t, ok)
	require.Equal(t, 10.0, snap.Position.X)
}
