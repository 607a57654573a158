package orchestrator

import (
	"fmt"
	"os/exec"
	"sync"

	"github.com/elderford/realmcore/internal/idgen"
	"go.uber.org/zap"
)

// instance tracks one map subprocess's live state.
type instance struct {
	port   int
	secret string
	cmd    *exec.Cmd
	ready  bool
}

// InstanceHealth is one map instance's status, as reported by GET /health.
type InstanceHealth struct {
	InstanceID string `json:"instanceId"`
	PID        int    `json:"pid"`
	Ready      bool   `json:"ready"`
}

// Supervisor forks and restarts one OS subprocess per map instance,
// modeled on the EnsureDefaultMatch/CreateDefaultMatch
// "idempotent ensure running" idiom (game.go), generalized from Nakama
// match creation to real child processes since there's no host runtime
// here to schedule matches for us.
type Supervisor struct {
	mu        sync.Mutex
	binary    string
	baseArgs  []string
	instances map[string]*instance
	log       *zap.SugaredLogger
}

// NewSupervisor creates a supervisor that launches binary (the map-server
// executable) with baseArgs for every instance. Each child's environment
// holds exactly two variables: MAP_<instanceID>_PORT and
// ORCH_INTERNAL_RPC_SECRET.
func NewSupervisor(binary string, baseArgs []string, log *zap.SugaredLogger) *Supervisor {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Supervisor{
		binary:    binary,
		baseArgs:  baseArgs,
		instances: make(map[string]*instance),
		log:       log,
	}
}

// EnsureInstance starts instanceID on port if it isn't already running,
// idempotently — calling it for an already-running instance is a no-op.
func (sv *Supervisor) EnsureInstance(instanceID string, port int) error {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	if inst, ok := sv.instances[instanceID]; ok && inst.cmd.ProcessState == nil {
		return nil
	}

	inst := &instance{port: port, secret: idgen.InternalRPCSecret()}
	sv.instances[instanceID] = inst
	return sv.spawnLocked(instanceID, inst)
}

// spawnLocked starts inst's subprocess and watches it for exit, restarting
// with a new pid on crash while every other instance keeps running.
// Callers must hold sv.mu.
func (sv *Supervisor) spawnLocked(instanceID string, inst *instance) error {
	cmd := exec.Command(sv.binary, sv.baseArgs...)
	cmd.Env = append(cmd.Env,
		fmt.Sprintf("MAP_%s_PORT=%d", instanceID, inst.port),
		fmt.Sprintf("ORCH_INTERNAL_RPC_SECRET=%s", inst.secret),
	)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("orchestrator: starting map instance %s: %w", instanceID, err)
	}
	inst.cmd = cmd
	inst.ready = true

	go func() {
		_ = cmd.Wait()

		sv.mu.Lock()
		defer sv.mu.Unlock()
		// Only restart if this instance record hasn't since been replaced
		// by a newer spawn (e.g. a fast double-crash).
		if sv.instances[instanceID] != inst {
			return
		}
		sv.log.Warnw("map instance exited, restarting", "instanceId", instanceID, "pid", cmd.Process.Pid)
		next := &instance{port: inst.port, secret: inst.secret}
		sv.instances[instanceID] = next
		if err := sv.spawnLocked(instanceID, next); err != nil {
			sv.log.Errorw("restarting map instance", "instanceId", instanceID, "err", err)
		}
	}()

	return nil
}

// Secret returns the internal RPC secret instanceID's current subprocess
// was started with, so the orchestrator's validate-join-ticket handler
// can authenticate requests per-instance.
func (sv *Supervisor) Secret(instanceID string) (string, bool) {
	sv.mu.Lock()
	defer sv.mu.Unlock()
	inst, ok := sv.instances[instanceID]
	if !ok {
		return "", false
	}
	return inst.secret, true
}

// Health reports every tracked instance's {instanceId, pid, ready}.
func (sv *Supervisor) Health() []InstanceHealth {
	sv.mu.Lock()
	defer sv.mu.Unlock()

	out := make([]InstanceHealth, 0, len(sv.instances))
	for id, inst := range sv.instances {
		pid := 0
		if inst.cmd != nil && inst.cmd.Process != nil {
			pid = inst.cmd.Process.Pid
		}
		out = append(out, InstanceHealth{InstanceID: id, PID: pid, Ready: inst.ready})
	}
	return out
}

// Crash kills instanceID's subprocess, exercised by the feature-flagged
// POST /orch/debug/crash-map endpoint and by chaos tests.
// The watch goroutine spawnLocked started will restart it.
func (sv *Supervisor) Crash(instanceID string) error {
	sv.mu.Lock()
	inst, ok := sv.instances[instanceID]
	sv.mu.Unlock()
	if !ok {
		return fmt.Errorf("orchestrator: no such instance %q", instanceID)
	}
	if inst.cmd == nil || inst.cmd.Process == nil {
		return fmt.Errorf("orchestrator: instance %q has no running process", instanceID)
	}
	return inst.cmd.Process.Kill()
}
