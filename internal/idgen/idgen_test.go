package idgen

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecyclerReusesReleasedIDs(t *testing.T) {
	r := NewRecycler(1)
	a := r.Acquire()
	b := r.Acquire()
	require.NotEqual(t, a, b)

	r.Release(a)
	c := r.Acquire()
	require.Equal(t, a, c)
}

func TestTicketIDsAreUnique(t *testing.T) {
	require.NotEqual(t, TicketID(), TicketID())
}
