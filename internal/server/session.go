package server

import (
	"encoding/json"
	"time"

	"github.com/elderford/realmcore/internal/ability"
	"github.com/elderford/realmcore/internal/netcode"
	"github.com/elderford/realmcore/internal/replication"
	"github.com/elderford/realmcore/internal/world"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 20 * time.Second
	pingPeriod = (pongWait * 8) / 10
	maxMessageSize = 4096

	// outboundBuffer is the per-connection send channel depth. A slow
	// reader backs up here before the session starts merging diffs
	// rather than the write pump blocking the whole world tick.
	outboundBuffer = 64
)

// envelope is the wire wrapper every inbound/outbound message carries, so
// a single read/write pump can dispatch on a type tag without per-message
// connections (generalized from a single-purpose
// ws.WriteJSON(updates) into a tagged multi-message protocol).
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

const (
	msgInput                 = "input"
	msgAck                   = "ack"
	msgDiff                  = "diff"
	msgIdentity              = "identity"
	msgAbilityUse            = "abilityUse"
	msgLoadoutCommand        = "loadoutCommand"
	msgAbilityState          = "abilityState"
	msgAbilityCreatorCommand = "abilityCreatorCommand"
	msgAbilityCreatorState   = "abilityCreatorState"
	msgAbilityDefinition     = "abilityDefinition"
	msgAbilityOwnership      = "abilityOwnership"
)

// Session is one connected player's transport-layer state: the socket,
// the world it's attached to, its assigned nid, and the diff-send rate
// limiter that gates SendDiff.
type Session struct {
	NID       world.NID
	AccountID string

	conn *websocket.Conn
	w    *World
	log  *zap.SugaredLogger

	outbound chan envelope
	closed   chan struct{}

	limiter *rate.Limiter
	merger  *diffMerger
}

// NewSession wraps an upgraded websocket connection for nid/accountID,
// attached to world w. Call Run to start its read/write pumps.
func NewSession(nid world.NID, accountID string, conn *websocket.Conn, w *World, log *zap.SugaredLogger) *Session {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Session{
		NID:       nid,
		AccountID: accountID,
		conn:      conn,
		w:         w,
		log:       log,
		outbound:  make(chan envelope, outboundBuffer),
		closed:    make(chan struct{}),
		limiter:   rate.NewLimiter(rate.Limit(60), 60), // diff sends/sec, gates SendDiff
		merger:    newDiffMerger(),
	}
}

// SendDiff delivers one tick's replication frame, gated by the
// per-connection rate limiter. When the limiter is
// exhausted the frame is folded into the merge buffer instead of sent,
// and flushed as one coalesced diff the next tick the limiter allows —
// "buffered and merged into the next tick's diff rather than dropped".
func (s *Session) SendDiff(frame replication.Frame) {
	s.merger.Add(toWireDiff(frame))
	if s.merger.Empty() || !s.limiter.Allow() {
		return
	}

	raw, err := json.Marshal(s.merger.Flush())
	if err != nil {
		s.log.Errorw("marshal diff", "nid", s.NID, "err", err)
		return
	}
	select {
	case s.outbound <- envelope{Type: msgDiff, Payload: raw}:
	default:
		// Outbound channel itself is saturated (slow reader): put the
		// just-flushed diff back so it merges with whatever arrives next
		// tick instead of vanishing.
		var refill netcode.EntityDiff
		_ = json.Unmarshal(raw, &refill)
		s.merger.Add(refill)
	}
}

// Run starts the read and write pumps and blocks until the connection
// closes. Modeled on the serveWebsocket/closeWebsocket pump
// pair (niceyeti-tabular/server/server.go), generalized from a single
// publish loop into a bidirectional pump. Inbound messages are not rate
// limited; the session's only limiter gates outbound diffs (SendDiff).
func (s *Session) Run() {
	go s.writePump()
	s.readPump()
}

// Send enqueues an outbound message, dropping the session (closing it) if
// the outbound channel is completely saturated — a slow consumer that
// can't even keep up with the merged-diff backpressure path is treated as
// gone.
func (s *Session) Send(msgType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Errorw("marshal outbound message", "type", msgType, "err", err)
		return
	}
	select {
	case s.outbound <- envelope{Type: msgType, Payload: raw}:
	default:
		s.log.Warnw("outbound buffer full, closing session", "nid", s.NID)
		s.Close()
	}
}

// Close idempotently tears down the session.
func (s *Session) Close() {
	select {
	case <-s.closed:
		return
	default:
		close(s.closed)
	}
	s.w.RemovePlayer(s.NID)
	_ = s.conn.Close()
}

func (s *Session) readPump() {
	defer s.Close()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}

		switch env.Type {
		case msgInput:
			var cmd netcode.InputCommand
			if err := json.Unmarshal(env.Payload, &cmd); err != nil {
				continue
			}
			s.w.Enqueue(s.NID, cmd)

		case msgLoadoutCommand:
			var cmd netcode.LoadoutCommand
			if err := json.Unmarshal(env.Payload, &cmd); err != nil {
				continue
			}
			if state, ok := s.w.ApplyLoadoutCommand(s.NID, cmd); ok {
				s.Send(msgAbilityState, state)
			}

		case msgAbilityCreatorCommand:
			var cmd netcode.AbilityCreatorCommand
			if err := json.Unmarshal(env.Payload, &cmd); err != nil {
				continue
			}
			state, created, handled := s.w.ApplyAbilityCreatorCommand(s.NID, cmd)
			if !handled {
				continue
			}
			s.Send(msgAbilityCreatorState, state)
			if created != nil {
				if p, ok := s.w.Player(s.NID); ok {
					ability.Unlock(p, created)
					s.Send(msgAbilityDefinition, ability.DefinitionMessage(created))
					s.Send(msgAbilityOwnership, ability.OwnershipMessage(p))
				}
			}

		default:
			continue
		}
	}
}

func (s *Session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer s.Close()

	for {
		select {
		case env, ok := <-s.outbound:
			if !ok {
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.closed:
			return
		}
	}
}
