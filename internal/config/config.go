// Package config reads the process's environment variables and overlays
// map/ability tuning data from a YAML file, the same split
// pthm-soup/config/config.go uses for its simulation tunables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// MapConfig is one map-server process's configuration, sourced from the
// environment.
type MapConfig struct {
	Port            int
	InternalRPCSecret string
	OrchestratorURL string
	TickRate        int
	TickLog         bool
}

// OrchestratorConfig is the orchestrator process's configuration.
type OrchestratorConfig struct {
	Port             int
	InternalRPCSecret string
	DataPath         string
	JoinTicketTTL    time.Duration
	TickLog          bool
}

// LoadMapConfig reads MAP_*_PORT, ORCH_INTERNAL_RPC_SECRET, SERVER_TICK_LOG
// and SERVER_TICK_RATE from the environment.
func LoadMapConfig(portEnvVar string) (MapConfig, error) {
	port, err := envInt(portEnvVar, 0)
	if err != nil {
		return MapConfig{}, err
	}
	if port == 0 {
		return MapConfig{}, fmt.Errorf("config: %s is required", portEnvVar)
	}

	secret := os.Getenv("ORCH_INTERNAL_RPC_SECRET")
	if secret == "" {
		return MapConfig{}, fmt.Errorf("config: ORCH_INTERNAL_RPC_SECRET is required")
	}

	tickRate, err := envInt("SERVER_TICK_RATE", 60)
	if err != nil {
		return MapConfig{}, err
	}

	return MapConfig{
		Port:              port,
		InternalRPCSecret: secret,
		OrchestratorURL:   os.Getenv("ORCH_URL"),
		TickRate:          tickRate,
		TickLog:           envBool("SERVER_TICK_LOG", false),
	}, nil
}

// LoadOrchestratorConfig reads ORCH_PORT, ORCH_INTERNAL_RPC_SECRET,
// ORCH_DATA_PATH, ORCH_JOIN_TICKET_TTL_MS and SERVER_TICK_LOG.
func LoadOrchestratorConfig() (OrchestratorConfig, error) {
	port, err := envInt("ORCH_PORT", 8080)
	if err != nil {
		return OrchestratorConfig{}, err
	}

	secret := os.Getenv("ORCH_INTERNAL_RPC_SECRET")
	if secret == "" {
		return OrchestratorConfig{}, fmt.Errorf("config: ORCH_INTERNAL_RPC_SECRET is required")
	}

	dataPath := os.Getenv("ORCH_DATA_PATH")
	if dataPath == "" {
		dataPath = "./orchestrator.db"
	}

	ttlMS, err := envInt("ORCH_JOIN_TICKET_TTL_MS", 250)
	if err != nil {
		return OrchestratorConfig{}, err
	}

	return OrchestratorConfig{
		Port:              port,
		InternalRPCSecret: secret,
		DataPath:          dataPath,
		JoinTicketTTL:     time.Duration(ttlMS) * time.Millisecond,
		TickLog:           envBool("SERVER_TICK_LOG", false),
	}, nil
}

func envInt(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", name, err)
	}
	return n, nil
}

func envBool(name string, fallback bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// TuningData is the YAML-overlaid map/ability tier tuning data: the
// stat-budget tables and per-map spawn point.
type TuningData struct {
	AbilityTiers []AbilityTierTuning `yaml:"abilityTiers"`
	SpawnPoint   [3]float64          `yaml:"spawnPoint"`
}

// AbilityTierTuning is one creator tier's stat budget:
// total stat points allowed, the per-stat upside cap as a multiple of the
// baseline stat value (a stat may rise at most UpsideSlots*baseline above
// the baseline; 0 means no per-stat cap), and the largest single downside
// (a stat pushed below baseline to free up budget) a draft may take.
type AbilityTierTuning struct {
	Name          string `yaml:"name"`
	TotalPoints   int    `yaml:"totalPoints"`
	UpsideSlots   int    `yaml:"upsideSlots"`
	DownsideMax   int    `yaml:"downsideMax"`
	AttributeSlots int   `yaml:"attributeSlots"`
}

// LoadTuningData parses a YAML tuning file at path.
func LoadTuningData(path string) (TuningData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TuningData{}, err
	}
	var t TuningData
	if err := yaml.Unmarshal(data, &t); err != nil {
		return TuningData{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return t, nil
}
