package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/elderford/realmcore/internal/netcode"
	"github.com/elderford/realmcore/internal/telemetry"
	"github.com/elderford/realmcore/internal/world"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub owns one map instance's World and every connected Session, and
// drives the fixed-rate tick loop. Modeled on the
// GameMatch/MatchLoop pairing (game.go), generalized from Nakama's
// runtime-driven match loop into a standalone ticker goroutine this
// process owns directly.
type Hub struct {
	mu       sync.Mutex
	world    *World
	sessions map[world.NID]*Session

	tickRate int
	log      *zap.SugaredLogger
	metrics  *telemetry.Metrics

	stop chan struct{}
}

// NewHub constructs a Hub around an already-configured World.
func NewHub(w *World, tickRate int, log *zap.SugaredLogger, metrics *telemetry.Metrics) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		world:    w,
		sessions: make(map[world.NID]*Session),
		tickRate: tickRate,
		log:      log,
		metrics:  metrics,
		stop:     make(chan struct{}),
	}
}

// Run starts the fixed-rate tick loop. Blocks until Stop is called.
func (h *Hub) Run() {
	dt := 1.0 / float64(h.tickRate)
	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.step(dt)
		case <-h.stop:
			return
		}
	}
}

// Stop ends the tick loop.
func (h *Hub) Stop() {
	close(h.stop)
}

func (h *Hub) step(dt float64) {
	start := time.Now()

	h.mu.Lock()
	out := h.world.Step(dt)
	sessions := make(map[world.NID]*Session, len(h.sessions))
	for nid, s := range h.sessions {
		sessions[nid] = s
	}
	h.mu.Unlock()

	for nid, ack := range out.Acks {
		if s, ok := sessions[nid]; ok {
			s.Send(msgAck, ack)
		}
	}
	for nid, frame := range out.Diffs {
		// Empty frames still go through SendDiff so a diff held back by
		// the limiter is flushed on the next allowed tick.
		if s, ok := sessions[nid]; ok {
			s.SendDiff(frame)
		}
	}
	for _, use := range out.AbilityUses {
		h.broadcast(msgAbilityUse, use, sessions)
	}

	if h.metrics != nil {
		h.metrics.TickDuration.Observe(time.Since(start).Seconds())
	}
	if h.log != nil {
		h.log.Debugw("tick", "tick", h.world.Tick, "durationMs", time.Since(start).Milliseconds())
	}
}

func (h *Hub) broadcast(msgType string, payload any, sessions map[world.NID]*Session) {
	for _, s := range sessions {
		s.Send(msgType, payload)
	}
}

// ServeHTTP upgrades the request to a websocket connection, registers a
// new Session for nid/accountID against the Hub's World, and runs its
// pumps until the connection closes. Modeled on the
// serveWebsocket handler (niceyeti-tabular/server/server.go), generalized
// to carry an authenticated identity instead of serving one shared
// anonymous view.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request, nid world.NID, accountID string, maxHealth float64) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("websocket upgrade", "err", err)
		return
	}

	h.mu.Lock()
	h.world.AddPlayer(nid, accountID, maxHealth)
	session := NewSession(nid, accountID, conn, h.world, h.log)
	h.sessions[nid] = session
	h.mu.Unlock()

	session.Send(msgIdentity, netcode.IdentityMessage{AccountID: accountID, NID: uint32(nid)})

	defer func() {
		h.mu.Lock()
		delete(h.sessions, nid)
		h.mu.Unlock()
	}()

	session.Run()
}
