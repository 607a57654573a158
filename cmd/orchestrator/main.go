// Command orchestrator runs the bootstrap/ticket/transfer process:
// it owns the SQLite ticket store, supervises one
// subprocess per map instance, and exposes the /bootstrap,
// /orch/validate-join-ticket, /orch/request-transfer, /health and
// /orch/debug/crash-map HTTP endpoints.
package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/elderford/realmcore/internal/config"
	"github.com/elderford/realmcore/internal/orchestrator"
	"github.com/elderford/realmcore/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
)

func main() {
	mapBinary := pflag.String("map-binary", "", "path to the mapserver executable the supervisor forks one copy of per instance")
	defaultInstance := pflag.String("default-instance", "default", "instance id of the always-on default map instance /bootstrap targets")
	defaultMapPort := pflag.Int("default-map-port", 9100, "listen port the default map instance is started on")
	wsHost := pflag.String("ws-host", "ws://localhost", "host prefix used to build the wsUrl returned from /bootstrap")
	debugEndpoints := pflag.Bool("debug-endpoints", false, "enable /orch/debug/crash-map (never set in production)")
	extraInstances := pflag.StringSlice("instance", nil, "additional instanceId:port pairs to keep running alongside the default instance")
	pflag.Parse()

	log, err := telemetry.NewLogger(os.Getenv("ORCH_DEBUG") == "true")
	if err != nil {
		fmt.Fprintln(os.Stderr, "orchestrator: building logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.LoadOrchestratorConfig()
	if err != nil {
		log.Fatalw("loading orchestrator config", "err", err)
	}

	store, err := orchestrator.Open(cfg.DataPath)
	if err != nil {
		log.Fatalw("opening ticket store", "err", err)
	}
	defer store.Close()

	if *mapBinary == "" {
		log.Fatalw("--map-binary is required")
	}
	supervisor := orchestrator.NewSupervisor(*mapBinary, nil, log)

	if err := supervisor.EnsureInstance(*defaultInstance, *defaultMapPort); err != nil {
		log.Fatalw("starting default map instance", "err", err)
	}
	for _, pair := range *extraInstances {
		id, port, err := parseInstancePair(pair)
		if err != nil {
			log.Fatalw("parsing --instance", "value", pair, "err", err)
		}
		if err := supervisor.EnsureInstance(id, port); err != nil {
			log.Fatalw("starting map instance", "instanceId", id, "err", err)
		}
	}

	registry := prometheus.NewRegistry()
	metrics := telemetry.NewMetrics(registry)

	orch := orchestrator.New(store, supervisor, cfg, metrics, log, *wsHost, *defaultInstance, *defaultMapPort, *debugEndpoints)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	orch.Routes(mux)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Infow("orchestrator listening", "addr", addr, "defaultInstance", *defaultInstance)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalw("serving", "err", err)
	}
}

func parseInstancePair(pair string) (id string, port int, err error) {
	parts := strings.SplitN(pair, ":", 2)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("expected instanceId:port, got %q", pair)
	}
	var p int
	if _, err := fmt.Sscanf(parts[1], "%d", &p); err != nil {
		return "", 0, fmt.Errorf("invalid port in %q: %w", pair, err)
	}
	return parts[0], p, nil
}
