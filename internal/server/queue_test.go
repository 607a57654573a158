package server

import (
	"testing"

	"github.com/elderford/realmcore/internal/netcode"
	"github.com/stretchr/testify/require"
)

func TestQueueConsumesOldestFirst(t *testing.T) {
	q := NewInputQueue()
	q.Push(netcode.InputCommand{Sequence: 1})
	q.Push(netcode.InputCommand{Sequence: 2})
	q.Push(netcode.InputCommand{Sequence: 3})

	cmd, ok := q.PopOldestNonStale()
	require.True(t, ok)
	require.Equal(t, uint16(1), cmd.Sequence)
}

func TestQueueDropsStaleCommands(t *testing.T) {
	q := NewInputQueue()
	q.Push(netcode.InputCommand{Sequence: 5})
	first, ok := q.PopOldestNonStale()
	require.True(t, ok)
	require.Equal(t, uint16(5), first.Sequence)

	// A late-arriving, already-superseded command must be dropped, not
	// returned, and a fresh one behind it should still be consumed.
	q.Push(netcode.InputCommand{Sequence: 3})
	q.Push(netcode.InputCommand{Sequence: 6})

	cmd, ok := q.PopOldestNonStale()
	require.True(t, ok)
	require.Equal(t, uint16(6), cmd.Sequence)
}

func TestQueueOneCommandPerPop(t *testing.T) {
	q := NewInputQueue()
	q.Push(netcode.InputCommand{Sequence: 1})
	q.Push(netcode.InputCommand{Sequence: 2})

	_, ok := q.PopOldestNonStale()
	require.True(t, ok)

	// A second pop in the same tick should still return the next command;
	// it's the caller's (the tick loop's) job to only call once per tick.
	cmd, ok := q.PopOldestNonStale()
	require.True(t, ok)
	require.Equal(t, uint16(2), cmd.Sequence)
}

func TestQueueEmptyReturnsNotOK(t *testing.T) {
	q := NewInputQueue()
	_, ok := q.PopOldestNonStale()
	require.False(t, ok)
}

func TestQueueDropsOldestWhenOverCapacity(t *testing.T) {
	q := NewInputQueue()
	for i := 0; i < inputQueueCap+5; i++ {
		q.Push(netcode.InputCommand{Sequence: uint16(i)})
	}
	require.Len(t, q.pending, inputQueueCap)
	require.Equal(t, uint16(5), q.pending[0].Sequence)
}
