// Command mapserver runs one authoritative map instance: the fixed-rate
// tick loop (internal/server), its websocket transport, and the
// orchestrator handshake that turns a join ticket into a live session.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/elderford/realmcore/internal/ability"
	"github.com/elderford/realmcore/internal/config"
	"github.com/elderford/realmcore/internal/idgen"
	"github.com/elderford/realmcore/internal/kernel"
	"github.com/elderford/realmcore/internal/orchestrator"
	"github.com/elderford/realmcore/internal/server"
	"github.com/elderford/realmcore/internal/telemetry"
	"github.com/elderford/realmcore/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	instanceID := pflag.String("instance-id", "", "map instance id this process was launched as (used by the orchestrator's internal RPC)")
	tuningPath := pflag.String("tuning", "", "path to a YAML tuning file overriding ability-tier and spawn-point defaults")
	portEnv := pflag.String("port-env", "MAP_DEFAULT_PORT", "environment variable naming this instance's listen port")
	pflag.Parse()

	cfg, cfgErr := config.LoadMapConfig(*portEnv)

	log, err := telemetry.NewLogger(os.Getenv("SERVER_DEBUG") == "true" || cfg.TickLog)
	if err != nil {
		fmt.Fprintln(os.Stderr, "mapserver: building logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfgErr != nil {
		log.Fatalw("loading map config", "err", cfgErr)
	}

	tuning := config.TuningData{}
	if *tuningPath != "" {
		tuning, err = config.LoadTuningData(*tuningPath)
		if err != nil {
			log.Fatalw("loading tuning data", "err", err)
		}
	}

	spawn := kernel.Vec3{X: tuning.SpawnPoint[0], Y: tuning.SpawnPoint[1], Z: tuning.SpawnPoint[2]}
	w := server.NewWorld(nil, spawn, nil, log)
	if len(tuning.AbilityTiers) > 0 {
		w.EnableAbilityCreator(ability.NewTiers(tuning))
	}

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	hub := server.NewHub(w, cfg.TickRate, log, metrics)
	go hub.Run()
	defer hub.Stop()

	nids := idgen.NewRecycler(1)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/connect", connectHandler(hub, nids, *instanceID, cfg, log))

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Infow("map instance listening", "addr", addr, "instanceId", *instanceID, "tickRate", cfg.TickRate)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalw("serving", "err", err)
	}
}

// connectHandler validates the join ticket a client presents against the
// orchestrator's internal RPC before upgrading to a websocket session —
// the map process never trusts a client-presented identity directly.
func connectHandler(hub *server.Hub, nids *idgen.Recycler, instanceID string, cfg config.MapConfig, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticket := r.URL.Query().Get("joinTicket")
		if ticket == "" || cfg.OrchestratorURL == "" {
			http.Error(w, "missing joinTicket", http.StatusUnauthorized)
			return
		}

		accountID, _, err := validateJoinTicket(cfg.OrchestratorURL, cfg.InternalRPCSecret, ticket, instanceID)
		if err != nil {
			log.Errorw("connect: ticket validation failed", "err", err)
			http.Error(w, "invalid join ticket", http.StatusUnauthorized)
			return
		}

		nid := world.NID(nids.Acquire())
		hub.ServeHTTP(w, r, nid, accountID, 100)
	}
}

func validateJoinTicket(orchURL, secret, ticket, instanceID string) (accountID string, snapshot *orchestrator.PlayerSnapshot, err error) {
	body, err := json.Marshal(map[string]string{"joinTicket": ticket, "mapInstanceId": instanceID})
	if err != nil {
		return "", nil, err
	}

	req, err := http.NewRequest(http.MethodPost, orchURL+"/orch/validate-join-ticket", bytes.NewReader(body))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-orch-secret", secret)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	var out struct {
		OK             bool                         `json:"ok"`
		Error          string                       `json:"error"`
		AccountID      string                       `json:"accountId"`
		PlayerSnapshot *orchestrator.PlayerSnapshot `json:"playerSnapshot"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", nil, err
	}
	if !out.OK {
		return "", nil, fmt.Errorf("mapserver: ticket rejected: %s", out.Error)
	}
	return out.AccountID, out.PlayerSnapshot, nil
}
