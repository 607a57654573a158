package server

import (
	"github.com/elderford/realmcore/internal/kernel"
	"github.com/elderford/realmcore/internal/netcode"
	"github.com/elderford/realmcore/internal/replication"
)

// diffMerger accumulates wire-level replication diffs a session couldn't
// send yet (its rate limiter denied the send, or its outbound buffer was
// full), coalescing them into one diff
// that still satisfies the per-nid ordering and bounded-update guarantees
// once the connection catches up, rather than dropping the tick's diff
// outright.
type diffMerger struct {
	creates map[uint32]netcode.ReplicatedEntity
	updates map[uint32]map[string]any
	deletes map[uint32]struct{}
}

func newDiffMerger() *diffMerger {
	return &diffMerger{
		creates: make(map[uint32]netcode.ReplicatedEntity),
		updates: make(map[uint32]map[string]any),
		deletes: make(map[uint32]struct{}),
	}
}

// Add folds one tick's diff into the merge buffer. Later ticks override
// earlier ones for the same nid+prop, so the eventually-sent diff always
// reflects the most recent authoritative state (G1).
func (m *diffMerger) Add(diff netcode.EntityDiff) {
	for _, c := range diff.Create {
		delete(m.deletes, c.NID)
		delete(m.updates, c.NID)
		m.creates[c.NID] = c
	}
	for _, u := range diff.Update {
		// An update for a nid with a buffered create is kept too: Flush
		// emits creates before updates, so the client applies it on top.
		delete(m.deletes, u.NID)
		fields, ok := m.updates[u.NID]
		if !ok {
			fields = make(map[string]any)
			m.updates[u.NID] = fields
		}
		fields[u.Prop] = u.Value
	}
	for _, nid := range diff.Delete {
		delete(m.creates, nid)
		delete(m.updates, nid)
		m.deletes[nid] = struct{}{}
	}
}

// Empty reports whether the merge buffer currently holds nothing to send.
func (m *diffMerger) Empty() bool {
	return len(m.creates) == 0 && len(m.updates) == 0 && len(m.deletes) == 0
}

// Flush drains the buffer into a single EntityDiff, ordered create before
// update before delete per G2, and resets the merger for the next cycle.
func (m *diffMerger) Flush() netcode.EntityDiff {
	var out netcode.EntityDiff

	for _, c := range m.creates {
		out.Create = append(out.Create, c)
	}
	for nid, fields := range m.updates {
		for prop, value := range fields {
			out.Update = append(out.Update, netcode.EntityFieldUpdate{NID: nid, Prop: prop, Value: value})
		}
	}
	for nid := range m.deletes {
		out.Delete = append(out.Delete, nid)
	}

	m.creates = make(map[uint32]netcode.ReplicatedEntity)
	m.updates = make(map[uint32]map[string]any)
	m.deletes = make(map[uint32]struct{})

	return out
}

// toWireDiff converts a domain replication.Frame into the wire-level
// EntityDiff shape, keyed by uint32 nid and the unified ReplicatedEntity
// polymorphic record shared by every replicated kind.
func toWireDiff(frame replication.Frame) netcode.EntityDiff {
	var out netcode.EntityDiff

	for _, snap := range frame.Create {
		out.Create = append(out.Create, toWireEntity(snap))
	}
	for _, u := range frame.Update {
		out.Update = append(out.Update, netcode.EntityFieldUpdate{
			NID:   uint32(u.NID),
			Prop:  u.Prop,
			Value: wireFieldValue(u.Prop, u.Value),
		})
	}
	for _, nid := range frame.Delete {
		out.Delete = append(out.Delete, uint32(nid))
	}

	return out
}

// wireFieldValue normalizes a diffed field's value into the same shape
// create payloads use for the same property (a position update must
// carry the [3]float64 array form, matching ReplicatedEntity.Position,
// rather than the bare kernel.Vec3 struct diff.go stores internally).
func wireFieldValue(prop string, value any) any {
	if prop == "position" {
		if v, ok := value.(kernel.Vec3); ok {
			return [3]float64{v.X, v.Y, v.Z}
		}
	}
	return value
}

func toWireEntity(snap replication.Snapshot) netcode.ReplicatedEntity {
	return netcode.ReplicatedEntity{
		NID:       uint32(snap.NID),
		ModelID:   snap.ModelID,
		Position:  [3]float64{snap.Position.X, snap.Position.Y, snap.Position.Z},
		Rotation:  [2]float64{snap.Yaw, snap.Pitch},
		Grounded:  snap.Grounded,
		Health:    snap.Health,
		MaxHealth: snap.MaxHealth,
		Fields:    snap.Fields,
	}
}
