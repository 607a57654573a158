package orchestrator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elderford/realmcore/internal/config"
	"github.com/elderford/realmcore/internal/telemetry"
	"go.uber.org/zap"
)

// Orchestrator wires the ticket store and the map-instance supervisor
// behind the HTTP surface: /bootstrap,
// /orch/validate-join-ticket, /orch/request-transfer, /health, and the
// feature-flagged /orch/debug/crash-map.
type Orchestrator struct {
	store      *Store
	supervisor *Supervisor
	cfg        config.OrchestratorConfig
	metrics    *telemetry.Metrics
	log        *zap.SugaredLogger

	defaultInstanceID string
	defaultMapPort    int
	wsHost            string

	debugEnabled bool
}

// New wires an Orchestrator around an already-open Store and Supervisor.
// defaultInstanceID/defaultMapPort describe the single always-on map
// instance /bootstrap hands new connections to, mirroring the
// "always keep one default open-world match running" policy
// (game.go:EnsureDefaultMatch).
func New(store *Store, supervisor *Supervisor, cfg config.OrchestratorConfig, metrics *telemetry.Metrics, log *zap.SugaredLogger, wsHost, defaultInstanceID string, defaultMapPort int, debugEnabled bool) *Orchestrator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Orchestrator{
		store:             store,
		supervisor:        supervisor,
		cfg:               cfg,
		metrics:           metrics,
		log:               log,
		defaultInstanceID: defaultInstanceID,
		defaultMapPort:    defaultMapPort,
		wsHost:            wsHost,
		debugEnabled:      debugEnabled,
	}
}

// Routes registers every endpoint on mux.
func (o *Orchestrator) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/bootstrap", o.handleBootstrap)
	mux.HandleFunc("/orch/validate-join-ticket", o.handleValidateJoinTicket)
	mux.HandleFunc("/orch/request-transfer", o.handleRequestTransfer)
	mux.HandleFunc("/health", o.handleHealth)
	mux.HandleFunc("/orch/debug/crash-map", o.handleCrashMap)
}

type bootstrapRequest struct {
	AuthKey string `json:"authKey"`
}

type bootstrapResponse struct {
	OK         bool   `json:"ok"`
	WSUrl      string `json:"wsUrl"`
	JoinTicket string `json:"joinTicket"`
	MapConfig  any    `json:"mapConfig"`
}

// handleBootstrap registers/looks up the account,
// ensures the default map instance is running, and issues a single-use
// join ticket bound to it.
func (o *Orchestrator) handleBootstrap(w http.ResponseWriter, r *http.Request) {
	var req bootstrapRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	accountID, err := o.store.EnsureAccount(req.AuthKey)
	if err != nil {
		o.log.Errorw("bootstrap: ensure account", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "internal_error"})
		return
	}

	if err := o.supervisor.EnsureInstance(o.defaultInstanceID, o.defaultMapPort); err != nil {
		o.log.Errorw("bootstrap: ensure map instance", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "map_unavailable"})
		return
	}

	ticketID, err := o.store.IssueTicket(accountID, o.defaultInstanceID, o.cfg.JoinTicketTTL)
	if err != nil {
		o.log.Errorw("bootstrap: issue ticket", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "internal_error"})
		return
	}
	if o.metrics != nil {
		o.metrics.TicketsIssued.Inc()
	}

	writeJSON(w, http.StatusOK, bootstrapResponse{
		OK:         true,
		WSUrl:      fmt.Sprintf("%s:%d", o.wsHost, o.defaultMapPort),
		JoinTicket: ticketID,
		MapConfig:  map[string]any{"instanceId": o.defaultInstanceID},
	})
}

type validateTicketRequest struct {
	JoinTicket   string `json:"joinTicket"`
	MapInstanceID string `json:"mapInstanceId"`
}

// handleValidateJoinTicket is the internal RPC, gated
// by the per-instance secret on the x-orch-secret header, that atomically
// consumes a ticket and returns the bound account plus any persisted
// snapshot.
func (o *Orchestrator) handleValidateJoinTicket(w http.ResponseWriter, r *http.Request) {
	var req validateTicketRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	expected, ok := o.supervisor.Secret(req.MapInstanceID)
	if !ok || r.Header.Get("x-orch-secret") != expected {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "unauthorized"})
		return
	}

	accountID, snapshot, err := o.store.ValidateAndConsumeTicket(req.JoinTicket, req.MapInstanceID)
	outcome := ticketOutcome(err)
	if o.metrics != nil {
		o.metrics.TicketsValidated.WithLabelValues(outcome).Inc()
	}
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":             true,
		"accountId":      accountID,
		"playerSnapshot": snapshot,
	})
}

func ticketOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTicketNotFound):
		return "not_found"
	case errors.Is(err, ErrTicketExpired):
		return "expired"
	case errors.Is(err, ErrTicketAlreadyConsumed):
		return "already_consumed"
	case errors.Is(err, ErrMapInstanceMismatch):
		return "map_mismatch"
	default:
		return "error"
	}
}

type transferRequest struct {
	AuthKey           string         `json:"authKey"`
	AccountID         string         `json:"accountId"`
	FromMapInstanceID string         `json:"fromMapInstanceId"`
	ToMapInstanceID   string         `json:"toMapInstanceId"`
	PlayerSnapshot    PlayerSnapshot `json:"playerSnapshot"`
}

// handleRequestTransfer persists the outgoing
// map's snapshot and issues a fresh ticket for the destination instance.
func (o *Orchestrator) handleRequestTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	accountID, err := o.store.EnsureAccount(req.AuthKey)
	if err != nil || accountID != req.AccountID {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"ok": false, "error": "unauthorized"})
		return
	}

	if err := o.supervisor.EnsureInstance(req.ToMapInstanceID, o.defaultMapPort); err != nil {
		o.log.Errorw("transfer: ensure destination instance", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "map_unavailable"})
		return
	}

	ticketID, err := o.store.IssueTransferTicket(req.AccountID, req.ToMapInstanceID, req.PlayerSnapshot, o.cfg.JoinTicketTTL)
	if err != nil {
		o.log.Errorw("transfer: issue ticket", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "internal_error"})
		return
	}
	if o.metrics != nil {
		o.metrics.TicketsIssued.Inc()
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "joinTicket": ticketID})
}

// handleHealth implements GET /health.
func (o *Orchestrator) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"maps": o.supervisor.Health()})
}

type crashMapRequest struct {
	InstanceID string `json:"instanceId"`
}

// handleCrashMap implements the feature-flagged debug endpoint,
// disabled by default so production deployments can't be crashed
// remotely.
func (o *Orchestrator) handleCrashMap(w http.ResponseWriter, r *http.Request) {
	if !o.debugEnabled {
		http.NotFound(w, r)
		return
	}
	var req crashMapRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := o.supervisor.Crash(req.InstanceID); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "malformed_request"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RequestTimeout is a 15s bound for one /bootstrap request. Nothing in
// this module applies it: neither the handlers nor cmd/orchestrator's
// HTTP server set a timeout from it.
const RequestTimeout = 15 * time.Second
