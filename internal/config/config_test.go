package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMapConfigRequiresPortAndSecret(t *testing.T) {
	t.Setenv("MAP_TEST_PORT", "")
	t.Setenv("ORCH_INTERNAL_RPC_SECRET", "")

	_, err := LoadMapConfig("MAP_TEST_PORT")
	require.Error(t, err)
}

func TestLoadMapConfigReadsValues(t *testing.T) {
	t.Setenv("MAP_TEST_PORT", "9001")
	t.Setenv("ORCH_INTERNAL_RPC_SECRET", "shh")
	t.Setenv("SERVER_TICK_LOG", "true")

	cfg, err := LoadMapConfig("MAP_TEST_PORT")
	require.NoError(t, err)
	require.Equal(t, 9001, cfg.Port)
	require.Equal(t, "shh", cfg.InternalRPCSecret)
	require.True(t, cfg.TickLog)
	require.Equal(t, 60, cfg.TickRate)
}

func TestLoadOrchestratorConfigDefaultsTicketTTL(t *testing.T) {
	t.Setenv("ORCH_INTERNAL_RPC_SECRET", "shh")
	t.Setenv("ORCH_JOIN_TICKET_TTL_MS", "")
	t.Setenv("ORCH_PORT", "")
	t.Setenv("ORCH_DATA_PATH", "")

	cfg, err := LoadOrchestratorConfig()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 250*1000*1000, int(cfg.JoinTicketTTL))
}
