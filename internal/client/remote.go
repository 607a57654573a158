package client

import (
	"github.com/elderford/realmcore/internal/kernel"
	"github.com/elderford/realmcore/internal/netcode"
)

// EntitySnapshot is the client-side mirror of netcode.ReplicatedEntity,
// kept as a single polymorphic shape shared by every replicated kind.
type EntitySnapshot struct {
	NID       uint32
	ModelID   string
	Position  kernel.Vec3
	Yaw       float64
	Pitch     float64
	Grounded  bool
	Health    float64
	MaxHealth float64
	Fields    map[string]any
}

type sample struct {
	t    float64
	snap EntitySnapshot
	set  bool
}

// RemoteStore is the client's per-connection snapshot store: it applies
// incoming EntityDiffs and answers an interpolated pose
// for any remote entity at an arbitrary render time between the two most
// recently received samples.
type RemoteStore struct {
	current map[uint32]EntitySnapshot
	history map[uint32][2]sample
}

// NewRemoteStore constructs an empty store.
func NewRemoteStore() *RemoteStore {
	return &RemoteStore{
		current: make(map[uint32]EntitySnapshot),
		history: make(map[uint32][2]sample),
	}
}

// ApplyFrame folds one tick's wire-level EntityDiff into the store,
// timestamped at t (the client's local receipt clock, monotonic and
// caller-supplied so interpolation stays deterministic and testable).
func (s *RemoteStore) ApplyFrame(t float64, diff netcode.EntityDiff) {
	for _, c := range diff.Create {
		e := fromWire(c)
		s.current[c.NID] = e
		s.pushSample(c.NID, t, e)
	}
	for _, u := range diff.Update {
		e, ok := s.current[u.NID]
		if !ok {
			continue
		}
		applyFieldUpdate(&e, u)
		s.current[u.NID] = e
		s.pushSample(u.NID, t, e)
	}
	for _, nid := range diff.Delete {
		delete(s.current, nid)
		delete(s.history, nid)
	}
}

func (s *RemoteStore) pushSample(nid uint32, t float64, e EntitySnapshot) {
	h := s.history[nid]
	h[0] = h[1]
	h[1] = sample{t: t, snap: e, set: true}
	s.history[nid] = h
}

// Interpolate returns nid's pose at renderTime, linearly blended between
// the two most recent samples (or the single known sample if only one
// has arrived yet). renderTime is typically held slightly behind the
// latest received tick so interpolation never has to extrapolate.
func (s *RemoteStore) Interpolate(nid uint32, renderTime float64) (EntitySnapshot, bool) {
	h, ok := s.history[nid]
	if !ok || !h[1].set {
		return EntitySnapshot{}, false
	}
	if !h[0].set {
		return h[1].snap, true
	}

	span := h[1].t - h[0].t
	if span <= 0 {
		return h[1].snap, true
	}
	alpha := (renderTime - h[0].t) / span
	switch {
	case alpha < 0:
		alpha = 0
	case alpha > 1:
		alpha = 1
	}
	return lerpSnapshot(h[0].snap, h[1].snap, alpha), true
}

// Visible lists every nid currently tracked (in view last frame).
func (s *RemoteStore) Visible() []uint32 {
	nids := make([]uint32, 0, len(s.current))
	for nid := range s.current {
		nids = append(nids, nid)
	}
	return nids
}

func fromWire(e netcode.ReplicatedEntity) EntitySnapshot {
	return EntitySnapshot{
		NID:       e.NID,
		ModelID:   e.ModelID,
		Position:  kernel.Vec3{X: e.Position[0], Y: e.Position[1], Z: e.Position[2]},
		Yaw:       e.Rotation[0],
		Pitch:     e.Rotation[1],
		Grounded:  e.Grounded,
		Health:    e.Health,
		MaxHealth: e.MaxHealth,
		Fields:    e.Fields,
	}
}

func applyFieldUpdate(e *EntitySnapshot, u netcode.EntityFieldUpdate) {
	switch u.Prop {
	case "position":
		switch v := u.Value.(type) {
		case [3]float64:
			e.Position = kernel.Vec3{X: v[0], Y: v[1], Z: v[2]}
		case []any:
			// JSON-decoded arrays land as []any of float64s.
			if len(v) == 3 {
				x, xok := v[0].(float64)
				y, yok := v[1].(float64)
				z, zok := v[2].(float64)
				if xok && yok && zok {
					e.Position = kernel.Vec3{X: x, Y: y, Z: z}
				}
			}
		}
	case "yaw":
		if v, ok := u.Value.(float64); ok {
			e.Yaw = v
		}
	case "pitch":
		if v, ok := u.Value.(float64); ok {
			e.Pitch = v
		}
	case "grounded":
		if v, ok := u.Value.(bool); ok {
			e.Grounded = v
		}
	case "health":
		if v, ok := u.Value.(float64); ok {
			e.Health = v
		}
	case "maxHealth":
		if v, ok := u.Value.(float64); ok {
			e.MaxHealth = v
		}
	default:
		if u.Value == nil {
			delete(e.Fields, u.Prop)
			return
		}
		if e.Fields == nil {
			e.Fields = make(map[string]any)
		}
		e.Fields[u.Prop] = u.Value
	}
}

func lerpSnapshot(a, b EntitySnapshot, alpha float64) EntitySnapshot {
	out := b
	out.Position = kernel.Add(kernel.Scale(1-alpha, a.Position), kernel.Scale(alpha, b.Position))
	out.Yaw = lerpYaw(a.Yaw, b.Yaw, alpha)
	out.Pitch = a.Pitch + (b.Pitch-a.Pitch)*alpha
	return out
}

// lerpYaw interpolates along the shorter arc between two normalized
// yaws, matching the carry-yaw convention used by the predictor.
func lerpYaw(a, b, alpha float64) float64 {
	delta := kernel.NormalizeYaw(b - a)
	return kernel.NormalizeYaw(a + delta*alpha)
}
