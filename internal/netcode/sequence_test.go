package netcode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSequenceWrapAround(t *testing.T) {
	require.True(t, IsAhead(65535, 0))
	require.True(t, IsAhead(0, 1))
	require.False(t, IsAhead(0, 0))
	require.False(t, IsAhead(1, 0))
}

func TestIsStaleMonotonic(t *testing.T) {
	require.True(t, IsStale(5, 10))
	require.True(t, IsStale(10, 10))
	require.False(t, IsStale(11, 10))
	// wrap-around: 10 then 65530 should be stale (massive negative jump).
	require.True(t, IsStale(65530, 10))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cmd := InputCommand{Sequence: 42, Forward: 1, Yaw: 1.5}
	env, err := Encode(OpInputCommand, cmd)
	require.NoError(t, err)
	require.Equal(t, OpInputCommand, env.Op)

	frame, err := MarshalFrame(env)
	require.NoError(t, err)

	decoded, err := UnmarshalFrame(frame)
	require.NoError(t, err)
	require.Equal(t, OpInputCommand, decoded.Op)

	var out InputCommand
	require.NoError(t, Decode(decoded, &out))
	require.Equal(t, cmd, out)
}
