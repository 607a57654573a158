package replication

import "github.com/elderford/realmcore/internal/kernel"

// NID is re-declared here (rather than imported from world) to keep
// replication decoupled from the world package's ownership types — the
// channel only ever sees snapshots, never live pointers, holding weak
// references to the authoritative entities rather than owning them.
type NID uint32

// Snapshot is the replicated slice of one entity at one tick: the unified
// polymorphic shape every replicated entity carries {nid, modelId,
// position, rotation, grounded, health, maxHealth, plus per-kind fields}.
type Snapshot struct {
	NID       NID
	ModelID   string
	Position  kernel.Vec3
	Yaw       float64
	Pitch     float64
	Grounded  bool
	Health    float64
	MaxHealth float64
	// Fields carries per-kind extras (e.g. a projectile's ownerNid, a
	// platform's pid) as plain values so the diff engine can compare them
	// generically without type-switching on entity kind.
	Fields map[string]any
}

// clone returns a deep-enough copy for diff comparison (Fields map is
// copied so later mutation of the source snapshot doesn't corrupt the
// "last emitted" record the channel keeps).
func (s Snapshot) clone() Snapshot {
	c := s
	if s.Fields != nil {
		c.Fields = make(map[string]any, len(s.Fields))
		for k, v := range s.Fields {
			c.Fields[k] = v
		}
	}
	return c
}
